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
	"io"
	"regexp"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/streambuf"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// StripAfter strips all text occurring after the first match of the
// configured expression. With inclusive, the matched text is stripped too.
// Without a configured expression the handler logs and copies content
// unchanged.
type StripAfter struct {
	handler.Base
	textTransformer
	pattern   *regexp.Regexp
	inclusive bool
}

// NewStripAfter creates a StripAfter transformer. An invalid expression is
// a construction-time error; an empty one makes the handler a logged no-op.
func NewStripAfter(expression string, inclusive, caseSensitive bool, opts ...Option) (*StripAfter, error) {
	pattern, err := compileContentPattern("stripAfter", expression, caseSensitive)
	if err != nil {
		return nil, err
	}
	return &StripAfter{
		Base:            handler.NewBase("stripAfter"),
		textTransformer: newTextTransformer(opts...),
		pattern:         pattern,
		inclusive:       inclusive,
	}, nil
}

// Transform rewrites the content stream.
func (s *StripAfter) Transform(reference string, in io.Reader, out io.Writer,
	md document.Metadata, parsed bool) error {
	if s.pattern == nil {
		log.Errorf("stripAfter: no expression configured, content of %q left unchanged", reference)
		return passthrough(in, out)
	}
	return s.run(reference, in, out, md, parsed, s.chunk)
}

func (s *StripAfter) chunk(reference string, buf *streambuf.Buffer,
	md document.Metadata, parsed, partial bool) error {
	content := buf.String()
	loc := s.pattern.FindStringIndex(content)
	if loc == nil {
		return nil
	}
	if s.inclusive {
		buf.Replace(content[:loc[0]])
	} else {
		buf.Replace(content[:loc[1]])
	}
	return nil
}
