//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the document unit flowing through the pipeline:
// an opaque reference, a content stream and a multi-valued metadata map.
package document

import "io"

// Well-known metadata field names set by the importer and consumed by handlers.
const (
	// FieldContentType carries the document media type (e.g. "text/html").
	FieldContentType = "document.contentType"
	// FieldContentEncoding carries the character encoding declared upstream,
	// used as a detection hint before the document is parsed.
	FieldContentEncoding = "document.contentEncoding"
	// FieldReference mirrors the document reference into metadata so
	// restriction rules can match on it.
	FieldReference = "document.reference"
)

// Document is one unit of work. It is owned by the caller of the pipeline;
// handlers receive it by reference and mutate Metadata and Content in place.
// A document must stay confined to the goroutine processing it.
type Document struct {
	// Reference is an opaque identifier (file path, URL, ...).
	Reference string

	// Content is the document's byte or character stream. Transforming
	// handlers replace it as they run. Raw bytes before parsing, UTF-8
	// text after.
	Content io.Reader

	// Metadata holds the document's named, multi-valued string fields.
	Metadata Metadata

	// Parsed reports whether upstream extraction already normalized
	// Content to UTF-8 text.
	Parsed bool
}

// New creates a document over the given content stream with empty metadata.
func New(reference string, content io.Reader) *Document {
	return &Document{
		Reference: reference,
		Content:   content,
		Metadata:  Metadata{},
	}
}
