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
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/log"
)

// Single-value actions.
const (
	// ActionKeepFirst keeps the first occurrence found.
	ActionKeepFirst = "keepFirst"
	// ActionKeepLast keeps the last occurrence found.
	ActionKeepLast = "keepLast"
	// ActionMergeWith merges all occurrences, joining them with the
	// separator following the colon, e.g. "mergeWith:;".
	ActionMergeWith = "mergeWith:"
)

// SingleValue forces configured metadata fields to hold a single value.
// When no action is specified, or the configured action matches none of
// the recognized keywords, all occurrences are merged with a comma.
type SingleValue struct {
	handler.Base
	actions map[string]string
}

// SingleValueOption configures a SingleValue tagger.
type SingleValueOption func(*SingleValue)

// WithSingleValueField registers a field with the action collapsing it.
func WithSingleValueField(field, action string) SingleValueOption {
	return func(s *SingleValue) {
		if field != "" {
			s.actions[field] = action
		}
	}
}

// NewSingleValue creates a SingleValue tagger.
func NewSingleValue(opts ...SingleValueOption) *SingleValue {
	s := &SingleValue{
		Base:    handler.NewBase("singleValue"),
		actions: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tag collapses each configured multi-valued field to one value.
func (s *SingleValue) Tag(reference string, md document.Metadata, parsed bool) error {
	fields := make([]string, 0, len(s.actions))
	for field := range s.actions {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		values := md.Get(field)
		if len(values) == 0 {
			continue
		}
		md.Set(field, s.collapse(s.actions[field], values))
	}
	return nil
}

func (s *SingleValue) collapse(action string, values []string) string {
	switch {
	case strings.EqualFold(action, ActionKeepFirst):
		return values[0]
	case strings.EqualFold(action, ActionKeepLast):
		return values[len(values)-1]
	case len(action) >= len(ActionMergeWith) &&
		strings.EqualFold(action[:len(ActionMergeWith)], ActionMergeWith):
		return strings.Join(values, action[len(ActionMergeWith):])
	default:
		if action != "" {
			log.Debugf("singleValue: unrecognized action %q, merging with a comma", action)
		}
		return strings.Join(values, ",")
	}
}
