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

// ReduceConsecutives reduces consecutive occurrences of each configured
// text to a single one, e.g. collapsing runs of blank lines or spaces.
// Without any configured text the handler logs and copies content
// unchanged.
type ReduceConsecutives struct {
	handler.Base
	textTransformer
	rules []reduceRule
}

type reduceRule struct {
	pattern *regexp.Regexp
	text    string
}

// NewReduceConsecutives creates a ReduceConsecutives transformer over the
// given texts. Texts are matched literally; caseSensitive governs the
// comparison. Empty texts are ignored.
func NewReduceConsecutives(texts []string, caseSensitive bool, opts ...Option) (*ReduceConsecutives, error) {
	r := &ReduceConsecutives{
		Base:            handler.NewBase("reduceConsecutives"),
		textTransformer: newTextTransformer(opts...),
	}
	for _, text := range texts {
		if text == "" {
			continue
		}
		pattern, err := compileContentPattern(
			"reduceConsecutives", "(?:"+regexp.QuoteMeta(text)+"){2,}", caseSensitive)
		if err != nil {
			// QuoteMeta makes the expression valid by construction.
			return nil, err
		}
		r.rules = append(r.rules, reduceRule{pattern: pattern, text: text})
	}
	return r, nil
}

// Transform rewrites the content stream.
func (r *ReduceConsecutives) Transform(reference string, in io.Reader, out io.Writer,
	md document.Metadata, parsed bool) error {
	if len(r.rules) == 0 {
		log.Errorf("reduceConsecutives: no text configured, content of %q left unchanged", reference)
		return passthrough(in, out)
	}
	return r.run(reference, in, out, md, parsed, r.chunk)
}

func (r *ReduceConsecutives) chunk(reference string, buf *streambuf.Buffer,
	md document.Metadata, parsed, partial bool) error {
	content := buf.String()
	for _, rule := range r.rules {
		content = rule.pattern.ReplaceAllString(content, rule.text)
	}
	buf.Replace(content)
	return nil
}

// handler.Transformer conformance checks.
var (
	_ handler.Transformer = (*StripBefore)(nil)
	_ handler.Transformer = (*StripAfter)(nil)
	_ handler.Transformer = (*Replace)(nil)
	_ handler.Transformer = (*ReduceConsecutives)(nil)
)
