//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package importer orchestrates document imports: a pre-parse pipeline over
// the raw content, an external extraction collaborator normalizing it to
// UTF-8 text plus metadata, and a post-parse pipeline over the result.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

const (
	// sniffSize is how many bytes of lookahead content-type sniffing reads.
	sniffSize = 3072

	defaultParallelism = 4
)

// Extractor is the external content-extraction collaborator. It consumes a
// document's raw content and returns a UTF-8 text stream, merging any
// metadata it extracted into md. The importer never parses binary formats
// itself.
type Extractor interface {
	Extract(ctx context.Context, reference string, content io.Reader, md document.Metadata) (io.Reader, error)
}

// Importer runs documents through the configured pipelines. It is safe for
// concurrent use: each document is processed entirely on its calling
// goroutine, and documents are never shared between goroutines.
type Importer struct {
	pre         *handler.Pipeline
	post        *handler.Pipeline
	extractor   Extractor
	parallelism int
}

// Option configures an Importer.
type Option func(*Importer)

// WithPreParsePipeline sets the pipeline applied to raw content before
// extraction.
func WithPreParsePipeline(p *handler.Pipeline) Option {
	return func(im *Importer) {
		im.pre = p
	}
}

// WithPostParsePipeline sets the pipeline applied to the extracted UTF-8
// text.
func WithPostParsePipeline(p *handler.Pipeline) Option {
	return func(im *Importer) {
		im.post = p
	}
}

// WithExtractor sets the content-extraction collaborator. Without one,
// documents flow through the pre-parse pipeline only and keep their
// parsed flag untouched.
func WithExtractor(e Extractor) Option {
	return func(im *Importer) {
		im.extractor = e
	}
}

// WithParallelism sets how many documents ImportBatch processes at once.
func WithParallelism(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.parallelism = n
		}
	}
}

// New creates an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{parallelism: defaultParallelism}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import runs one document through pre-parse handlers, extraction and
// post-parse handlers. Blank references get a generated one; a missing
// content type is sniffed from the content before the first pipeline runs,
// so restriction rules can match on it.
func (im *Importer) Import(ctx context.Context, doc *document.Document) error {
	if doc.Metadata == nil {
		doc.Metadata = document.Metadata{}
	}
	if doc.Reference == "" {
		doc.Reference = uuid.NewString()
		log.Debugf("generated reference %q for anonymous document", doc.Reference)
	}
	doc.Metadata.Set(document.FieldReference, doc.Reference)
	im.sniffContentType(doc)

	if im.pre != nil {
		if err := im.pre.Process(doc); err != nil {
			return fmt.Errorf("pre-parse pipeline: %w", err)
		}
	}
	if im.extractor != nil && !doc.Parsed {
		content := doc.Content
		if content == nil {
			content = strings.NewReader("")
		}
		text, err := im.extractor.Extract(ctx, doc.Reference, content, doc.Metadata)
		if err != nil {
			return fmt.Errorf("extract %q: %w", doc.Reference, err)
		}
		doc.Content = text
		doc.Parsed = true
	}
	if im.post != nil {
		if err := im.post.Process(doc); err != nil {
			return fmt.Errorf("post-parse pipeline: %w", err)
		}
	}
	return nil
}

// sniffContentType fills document.contentType from a content lookahead when
// upstream did not provide it. The sniffed bytes stay in the stream.
func (im *Importer) sniffContentType(doc *document.Document) {
	if doc.Metadata.Has(document.FieldContentType) || doc.Content == nil {
		return
	}
	br, ok := doc.Content.(*bufio.Reader)
	if !ok || br.Size() < sniffSize {
		br = bufio.NewReaderSize(doc.Content, sniffSize)
		doc.Content = br
	}
	data, err := br.Peek(sniffSize)
	if len(data) == 0 {
		if err != nil && err != io.EOF {
			log.Debugf("cannot sniff content type of %q: %v", doc.Reference, err)
		}
		return
	}
	// Keep the bare media type: mimetype appends parameters such as
	// "; charset=utf-8", which would break exact-type restriction rules.
	typ := mimetype.Detect(data).String()
	if i := strings.Index(typ, ";"); i >= 0 {
		typ = strings.TrimSpace(typ[:i])
	}
	doc.Metadata.Set(document.FieldContentType, typ)
}

// ImportBatch processes documents concurrently on a worker pool, each
// document confined to one worker. The returned slice holds one error per
// document, in input order.
func (im *Importer) ImportBatch(ctx context.Context, docs []*document.Document) ([]error, error) {
	pool, err := ants.NewPool(im.parallelism)
	if err != nil {
		return nil, fmt.Errorf("create import pool: %w", err)
	}
	defer pool.Release()

	errs := make([]error, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			errs[i] = im.Import(ctx, doc)
		}); submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit import of %q: %w", doc.Reference, submitErr)
		}
	}
	wg.Wait()
	return errs, nil
}
