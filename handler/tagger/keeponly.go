//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package tagger provides the stock metadata handlers: each one mutates a
// document's metadata map and leaves the content stream alone.
package tagger

import (
	"fmt"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// KeepOnly keeps only the configured metadata fields and deletes all other
// ones. Fields to keep are exact names (case-insensitive) and/or a pattern
// matching one or many field names. With nothing configured, all metadata
// is cleared.
//
// Unless there is a good reason to do otherwise, run this handler as one of
// the last ones, so earlier handlers still see the fields they need.
type KeepOnly struct {
	handler.Base
	fields  []string
	pattern *regexp.Regexp
}

// KeepOnlyOption configures a KeepOnly tagger.
type KeepOnlyOption func(*keepOnlyOptions)

type keepOnlyOptions struct {
	fields     []string
	fieldsExpr string
}

// WithKeepOnlyFields adds exact field names to keep (case-insensitive).
func WithKeepOnlyFields(fields ...string) KeepOnlyOption {
	return func(o *keepOnlyOptions) {
		o.fields = append(o.fields, fields...)
	}
}

// WithKeepOnlyFieldsPattern keeps every field whose name fully matches the
// given expression.
func WithKeepOnlyFieldsPattern(expression string) KeepOnlyOption {
	return func(o *keepOnlyOptions) {
		o.fieldsExpr = expression
	}
}

// NewKeepOnly creates a KeepOnly tagger. An invalid fields pattern is a
// construction-time error.
func NewKeepOnly(opts ...KeepOnlyOption) (*KeepOnly, error) {
	var o keepOnlyOptions
	for _, opt := range opts {
		opt(&o)
	}
	k := &KeepOnly{
		Base:   handler.NewBase("keepOnly"),
		fields: o.fields,
	}
	if o.fieldsExpr != "" {
		pattern, err := regexp.Compile(`\A(?:` + o.fieldsExpr + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("%w: fields pattern %q: %v", handler.ErrConfiguration, o.fieldsExpr, err)
		}
		k.pattern = pattern
	}
	return k, nil
}

// Tag deletes every metadata field not selected by the configuration.
func (k *KeepOnly) Tag(reference string, md document.Metadata, parsed bool) error {
	if len(k.fields) == 0 && k.pattern == nil {
		log.Debugf("keepOnly: clearing all metadata of %q", reference)
		md.Clear()
		return nil
	}
	var removed []string
	for _, field := range md.Keys() {
		if k.keeps(field) {
			continue
		}
		md.Remove(field)
		removed = append(removed, field)
	}
	if len(removed) > 0 {
		log.Debugf("keepOnly: removed fields %q from %q", strings.Join(removed, ","), reference)
	}
	return nil
}

func (k *KeepOnly) keeps(field string) bool {
	for _, f := range k.fields {
		if strings.EqualFold(strings.TrimSpace(f), strings.TrimSpace(field)) {
			return true
		}
	}
	return k.pattern != nil && k.pattern.MatchString(field)
}
