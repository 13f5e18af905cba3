//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package tagger

import (
	"fmt"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
)

// Rename moves the values of one metadata field under another name.
// By default the values are appended to any the target already holds;
// with overwrite, they replace them.
type Rename struct {
	handler.Base
	from      string
	to        string
	overwrite bool
}

// RenameOption configures a Rename tagger.
type RenameOption func(*Rename)

// WithRenameOverwrite makes the rename replace the target field's values
// instead of appending to them.
func WithRenameOverwrite() RenameOption {
	return func(r *Rename) {
		r.overwrite = true
	}
}

// NewRename creates a Rename tagger. Both field names are required.
func NewRename(from, to string, opts ...RenameOption) (*Rename, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: rename tagger requires both field names", handler.ErrConfiguration)
	}
	r := &Rename{
		Base: handler.NewBase("rename"),
		from: from,
		to:   to,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Tag moves the source field's values to the target field.
func (r *Rename) Tag(reference string, md document.Metadata, parsed bool) error {
	values := md.Get(r.from)
	if len(values) == 0 {
		return nil
	}
	if r.overwrite {
		md.Set(r.to, values...)
	} else {
		md.Add(r.to, values...)
	}
	md.Remove(r.from)
	return nil
}
