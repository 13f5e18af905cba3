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

// Constant adds constant values to a metadata field, keeping any values the
// field already holds.
type Constant struct {
	handler.Base
	field  string
	values []string
}

// NewConstant creates a Constant tagger. The field name is required.
func NewConstant(field string, values ...string) (*Constant, error) {
	if field == "" {
		return nil, fmt.Errorf("%w: constant tagger requires a field name", handler.ErrConfiguration)
	}
	return &Constant{
		Base:   handler.NewBase("constant"),
		field:  field,
		values: values,
	}, nil
}

// Tag appends the constant values to the configured field.
func (c *Constant) Tag(reference string, md document.Metadata, parsed bool) error {
	md.Add(c.field, c.values...)
	return nil
}
