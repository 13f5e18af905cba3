//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package transformer

import (
	"fmt"
	"io"
	"regexp"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/streambuf"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// StripBefore strips all text occurring before the first match of the
// configured expression. With inclusive, the matched text is stripped too.
// Without a configured expression the handler logs and copies content
// unchanged.
type StripBefore struct {
	handler.Base
	textTransformer
	pattern   *regexp.Regexp
	inclusive bool
}

// NewStripBefore creates a StripBefore transformer. An invalid expression is
// a construction-time error; an empty one makes the handler a logged no-op.
func NewStripBefore(expression string, inclusive, caseSensitive bool, opts ...Option) (*StripBefore, error) {
	pattern, err := compileContentPattern("stripBefore", expression, caseSensitive)
	if err != nil {
		return nil, err
	}
	return &StripBefore{
		Base:            handler.NewBase("stripBefore"),
		textTransformer: newTextTransformer(opts...),
		pattern:         pattern,
		inclusive:       inclusive,
	}, nil
}

// Transform rewrites the content stream.
func (s *StripBefore) Transform(reference string, in io.Reader, out io.Writer,
	md document.Metadata, parsed bool) error {
	if s.pattern == nil {
		log.Errorf("stripBefore: no expression configured, content of %q left unchanged", reference)
		return passthrough(in, out)
	}
	return s.run(reference, in, out, md, parsed, s.chunk)
}

func (s *StripBefore) chunk(reference string, buf *streambuf.Buffer,
	md document.Metadata, parsed, partial bool) error {
	content := buf.String()
	loc := s.pattern.FindStringIndex(content)
	if loc == nil {
		return nil
	}
	if s.inclusive {
		buf.Replace(content[loc[1]:])
	} else {
		buf.Replace(content[loc[0]:])
	}
	return nil
}

// compileContentPattern compiles a content expression for find semantics,
// with DOTALL so patterns can span lines. An empty expression yields a nil
// pattern; an invalid one is a configuration error.
func compileContentPattern(name, expression string, caseSensitive bool) (*regexp.Regexp, error) {
	if expression == "" {
		return nil, nil
	}
	flags := "(?s)"
	if !caseSensitive {
		flags = "(?si)"
	}
	pattern, err := regexp.Compile(flags + expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s expression %q: %v", handler.ErrConfiguration, name, expression, err)
	}
	return pattern, nil
}
