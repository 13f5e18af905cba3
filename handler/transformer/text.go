//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package transformer provides the stock streaming text handlers. Each one
// resolves the document charset once, decodes the content, runs its rewrite
// over bounded chunks and re-encodes the result in the source charset.
package transformer

import (
	"bufio"
	"io"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/charset"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/streambuf"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// ChunkFunc rewrites one chunk of decoded text in place. partial reports
// whether more content follows; a rewrite whose correctness spans chunks
// may miss at a split point when content is large enough to force chunking.
type ChunkFunc func(reference string, buf *streambuf.Buffer, md document.Metadata, parsed bool, partial bool) error

// Option configures the streaming composition shared by the package's
// transformers.
type Option func(*textTransformer)

// WithSourceCharset forces the source encoding instead of detecting it.
func WithSourceCharset(name string) Option {
	return func(t *textTransformer) {
		t.sourceCharset = name
	}
}

// WithStreamOptions passes options to the stream buffer built for each
// transform invocation, such as an injected memory budget.
func WithStreamOptions(opts ...streambuf.Option) Option {
	return func(t *textTransformer) {
		t.streamOpts = append(t.streamOpts, opts...)
	}
}

// textTransformer is the composition every streaming text handler embeds.
type textTransformer struct {
	sourceCharset string
	streamOpts    []streambuf.Option
}

func newTextTransformer(opts ...Option) textTransformer {
	var t textTransformer
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// run decodes in, drives a fresh stream buffer over fn and re-encodes the
// output in the resolved source charset.
func (t textTransformer) run(reference string, in io.Reader, out io.Writer,
	md document.Metadata, parsed bool, fn ChunkFunc) error {
	br := bufio.NewReaderSize(in, charset.SampleSize)
	decision := charset.Resolve(t.sourceCharset, md.First(document.FieldContentEncoding), br, parsed)
	log.Debugf("transforming %q as %s (%s)", reference, decision.Name, decision.Provenance)

	reader := charset.NewReader(br, decision.Name)
	writer := charset.NewWriter(out, decision.Name)
	runner := streambuf.New(t.streamOpts...)
	err := runner.Run(reference, reader, writer, func(buf *streambuf.Buffer, partial bool) error {
		return fn(reference, buf, md, parsed, partial)
	})
	if err != nil {
		return err
	}
	return writer.Close()
}

// passthrough copies content unchanged; used when a handler's runtime
// configuration is unusable and it must fail open.
func passthrough(in io.Reader, out io.Writer) error {
	_, err := io.Copy(out, in)
	return err
}
