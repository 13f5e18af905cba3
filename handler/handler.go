//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package handler defines the contracts document handlers satisfy and the
// pipeline that runs them in order against a document.
package handler

import (
	"errors"
	"io"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/restriction"
)

// ErrConfiguration marks a construction-time configuration defect, such as
// an invalid restriction pattern or a malformed handler option. It fails
// pipeline construction rather than surfacing at runtime.
var ErrConfiguration = errors.New("invalid handler configuration")

// Handler is one unit of document mutation. Every handler exposes its
// restriction set; an empty set makes the handler unconditional.
type Handler interface {
	// Name identifies the handler in logs and metrics.
	Name() string

	// Restrictions returns the handler's mutable restriction set.
	Restrictions() *restriction.Set
}

// Tagger is a handler operating purely on structured metadata. Mutations
// are visible to all subsequent handlers in the same pass.
type Tagger interface {
	Handler

	// Tag mutates the shared metadata map in place.
	Tag(reference string, md document.Metadata, parsed bool) error
}

// Transformer is a handler operating on the document's content stream,
// reading the current content from in and writing the replacement to out.
// It may also consult and mutate metadata.
type Transformer interface {
	Handler

	// Transform rewrites the document content.
	Transform(reference string, in io.Reader, out io.Writer, md document.Metadata, parsed bool) error
}

// Base carries the identity and restriction set shared by every handler.
// Concrete handlers embed it; shared behavior is composed, not inherited.
type Base struct {
	name         string
	restrictions *restriction.Set
}

// NewBase creates the common handler state with the given initial rules.
func NewBase(name string, rules ...restriction.Rule) Base {
	return Base{name: name, restrictions: restriction.NewSet(rules...)}
}

// Name returns the handler identity.
func (b Base) Name() string { return b.name }

// Restrictions returns the handler's restriction set. The set is live:
// rules may be added or removed while documents are being evaluated.
func (b Base) Restrictions() *restriction.Set { return b.restrictions }
