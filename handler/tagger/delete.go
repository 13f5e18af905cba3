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
	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// Delete removes the configured metadata fields. Field names are matched
// exactly.
type Delete struct {
	handler.Base
	fields []string
}

// NewDelete creates a Delete tagger for the given fields.
func NewDelete(fields ...string) *Delete {
	return &Delete{
		Base:   handler.NewBase("delete"),
		fields: fields,
	}
}

// Tag deletes each configured field from the metadata.
func (d *Delete) Tag(reference string, md document.Metadata, parsed bool) error {
	for _, field := range d.fields {
		if md.Remove(field) {
			log.Debugf("delete: removed field %q from %q", field, reference)
		}
	}
	return nil
}
