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

// Replacement is one pattern-to-text substitution. The replacement text may
// reference capture groups with $1, $2, ...
type Replacement struct {
	Pattern       string
	Replacement   string
	CaseSensitive bool
}

// Replace applies ordered regex substitutions to the content. Without any
// configured replacement the handler logs and copies content unchanged.
type Replace struct {
	handler.Base
	textTransformer
	rules []replaceRule
}

type replaceRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewReplace creates a Replace transformer. An invalid pattern is a
// construction-time error.
func NewReplace(replacements []Replacement, opts ...Option) (*Replace, error) {
	r := &Replace{
		Base:            handler.NewBase("replace"),
		textTransformer: newTextTransformer(opts...),
	}
	for _, repl := range replacements {
		pattern, err := compileContentPattern("replace", repl.Pattern, repl.CaseSensitive)
		if err != nil {
			return nil, err
		}
		if pattern == nil {
			continue
		}
		r.rules = append(r.rules, replaceRule{pattern: pattern, replacement: repl.Replacement})
	}
	return r, nil
}

// Transform rewrites the content stream.
func (r *Replace) Transform(reference string, in io.Reader, out io.Writer,
	md document.Metadata, parsed bool) error {
	if len(r.rules) == 0 {
		log.Errorf("replace: no replacements configured, content of %q left unchanged", reference)
		return passthrough(in, out)
	}
	return r.run(reference, in, out, md, parsed, r.chunk)
}

func (r *Replace) chunk(reference string, buf *streambuf.Buffer,
	md document.Metadata, parsed, partial bool) error {
	content := buf.String()
	for _, rule := range r.rules {
		content = rule.pattern.ReplaceAllString(content, rule.replacement)
	}
	buf.Replace(content)
	return nil
}
