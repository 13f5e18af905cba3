//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package handler

import (
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
	"trpc.group/trpc-go/trpc-docpipe-go/telemetry"
)

// Pipeline runs an ordered list of handlers against a document. The list is
// fixed at construction: no handler may be inserted or removed while a
// document traverses it. A pipeline holds no per-document state, but each
// document must be processed by a single goroutine.
type Pipeline struct {
	handlers []Handler
}

// NewPipeline creates a pipeline over the given handlers, in order.
// A nil handler or one exposing neither capability is a configuration error.
func NewPipeline(handlers ...Handler) (*Pipeline, error) {
	for i, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("%w: handler %d is nil", ErrConfiguration, i)
		}
		switch h.(type) {
		case Transformer, Tagger:
		default:
			return nil, fmt.Errorf("%w: handler %q exposes neither a tagger nor a transformer entry point",
				ErrConfiguration, h.Name())
		}
	}
	return &Pipeline{handlers: handlers}, nil
}

// Handlers returns the pipeline's handlers in execution order.
func (p *Pipeline) Handlers() []Handler {
	return append([]Handler(nil), p.handlers...)
}

// Process runs the document through every handler in order. Handlers whose
// restrictions reject the document are skipped and leave it untouched.
// Stream failures abort processing and carry the document reference.
func (p *Pipeline) Process(doc *document.Document) error {
	if doc.Metadata == nil {
		doc.Metadata = document.Metadata{}
	}
	for _, h := range p.handlers {
		if !h.Restrictions().Matches(doc.Metadata) {
			log.Debugf("handler %q does not apply to %q (parsed=%v)",
				h.Name(), doc.Reference, doc.Parsed)
			telemetry.IncHandlerRejected(h.Name(), doc.Parsed)
			continue
		}
		switch t := h.(type) {
		case Transformer:
			in := doc.Content
			if in == nil {
				in = strings.NewReader("")
			}
			spool := newContentSpool(spoolMemoryLimit)
			if err := t.Transform(doc.Reference, in, spool, doc.Metadata, doc.Parsed); err != nil {
				spool.discard()
				return fmt.Errorf("handler %q failed on %q: %w", h.Name(), doc.Reference, err)
			}
			content, err := spool.content()
			if err != nil {
				return fmt.Errorf("buffer output of %q for %q: %w", h.Name(), doc.Reference, err)
			}
			doc.Content = content
		case Tagger:
			if err := t.Tag(doc.Reference, doc.Metadata, doc.Parsed); err != nil {
				return fmt.Errorf("handler %q failed on %q: %w", h.Name(), doc.Reference, err)
			}
		}
	}
	return nil
}
