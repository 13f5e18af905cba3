//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package config builds handler pipelines from declarative records. Handler
// kinds are resolved through a builder registry, so applications can
// register their own handlers next to the stock catalog.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/restriction"
)

// Restriction is the declarative form of a restriction rule.
type Restriction struct {
	Field         string `json:"field"`
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// Handler is one declarative handler record: the kind resolving the
// builder, the restriction triples gating the handler, and kind-specific
// options.
type Handler struct {
	Kind         string          `json:"kind"`
	Restrictions []Restriction   `json:"restrictions,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
}

// Builder constructs a handler from its declarative options.
type Builder func(options json.RawMessage) (handler.Handler, error)

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

var globalRegistry = &registry{
	builders: make(map[string]Builder),
}

// RegisterBuilder registers a handler builder under the given kind,
// replacing any previous registration.
func RegisterBuilder(kind string, builder Builder) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.builders[kind] = builder
}

func getBuilder(kind string) (Builder, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	builder, ok := globalRegistry.builders[kind]
	return builder, ok
}

// BuildPipeline constructs a pipeline from the records, in order. Unknown
// kinds, malformed options and invalid restriction patterns all fail
// construction: a configuration defect never becomes a runtime surprise.
func BuildPipeline(records []Handler) (*handler.Pipeline, error) {
	handlers := make([]handler.Handler, 0, len(records))
	for i, record := range records {
		builder, ok := getBuilder(record.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown handler kind %q (record %d)",
				handler.ErrConfiguration, record.Kind, i)
		}
		h, err := builder(record.Options)
		if err != nil {
			return nil, err
		}
		for _, r := range record.Restrictions {
			rule, err := restriction.NewRule(r.Field, r.Pattern, r.CaseSensitive)
			if err != nil {
				return nil, fmt.Errorf("%w: handler %q: %v", handler.ErrConfiguration, record.Kind, err)
			}
			h.Restrictions().Add(rule)
		}
		handlers = append(handlers, h)
	}
	return handler.NewPipeline(handlers...)
}

// LoadPipeline decodes a JSON array of handler records and builds the
// pipeline.
func LoadPipeline(r io.Reader) (*handler.Pipeline, error) {
	var records []Handler
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode handler records: %v", handler.ErrConfiguration, err)
	}
	return BuildPipeline(records)
}

func decodeOptions(kind string, raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s options: %v", handler.ErrConfiguration, kind, err)
	}
	return nil
}
