//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"encoding/json"

	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/tagger"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/transformer"
)

// Stock handler kinds.
const (
	KindKeepOnly           = "keepOnly"
	KindSingleValue        = "singleValue"
	KindConstant           = "constant"
	KindRename             = "rename"
	KindDelete             = "delete"
	KindStripBefore        = "stripBefore"
	KindStripAfter         = "stripAfter"
	KindReplace            = "replace"
	KindReduceConsecutives = "reduceConsecutives"
)

func init() {
	RegisterBuilder(KindKeepOnly, buildKeepOnly)
	RegisterBuilder(KindSingleValue, buildSingleValue)
	RegisterBuilder(KindConstant, buildConstant)
	RegisterBuilder(KindRename, buildRename)
	RegisterBuilder(KindDelete, buildDelete)
	RegisterBuilder(KindStripBefore, buildStripBefore)
	RegisterBuilder(KindStripAfter, buildStripAfter)
	RegisterBuilder(KindReplace, buildReplace)
	RegisterBuilder(KindReduceConsecutives, buildReduceConsecutives)
}

func buildKeepOnly(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Fields        []string `json:"fields"`
		FieldsPattern string   `json:"fieldsPattern"`
	}
	if err := decodeOptions(KindKeepOnly, raw, &o); err != nil {
		return nil, err
	}
	var opts []tagger.KeepOnlyOption
	if len(o.Fields) > 0 {
		opts = append(opts, tagger.WithKeepOnlyFields(o.Fields...))
	}
	if o.FieldsPattern != "" {
		opts = append(opts, tagger.WithKeepOnlyFieldsPattern(o.FieldsPattern))
	}
	return tagger.NewKeepOnly(opts...)
}

func buildSingleValue(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Fields []struct {
			Field  string `json:"field"`
			Action string `json:"action"`
		} `json:"fields"`
	}
	if err := decodeOptions(KindSingleValue, raw, &o); err != nil {
		return nil, err
	}
	opts := make([]tagger.SingleValueOption, 0, len(o.Fields))
	for _, f := range o.Fields {
		opts = append(opts, tagger.WithSingleValueField(f.Field, f.Action))
	}
	return tagger.NewSingleValue(opts...), nil
}

func buildConstant(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Field  string   `json:"field"`
		Values []string `json:"values"`
	}
	if err := decodeOptions(KindConstant, raw, &o); err != nil {
		return nil, err
	}
	return tagger.NewConstant(o.Field, o.Values...)
}

func buildRename(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		From      string `json:"from"`
		To        string `json:"to"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := decodeOptions(KindRename, raw, &o); err != nil {
		return nil, err
	}
	var opts []tagger.RenameOption
	if o.Overwrite {
		opts = append(opts, tagger.WithRenameOverwrite())
	}
	return tagger.NewRename(o.From, o.To, opts...)
}

func buildDelete(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Fields []string `json:"fields"`
	}
	if err := decodeOptions(KindDelete, raw, &o); err != nil {
		return nil, err
	}
	return tagger.NewDelete(o.Fields...), nil
}

type stripOptions struct {
	Expression    string `json:"expression"`
	Inclusive     bool   `json:"inclusive"`
	CaseSensitive bool   `json:"caseSensitive"`
	Charset       string `json:"charset"`
}

func (o stripOptions) textOptions() []transformer.Option {
	var opts []transformer.Option
	if o.Charset != "" {
		opts = append(opts, transformer.WithSourceCharset(o.Charset))
	}
	return opts
}

func buildStripBefore(raw json.RawMessage) (handler.Handler, error) {
	var o stripOptions
	if err := decodeOptions(KindStripBefore, raw, &o); err != nil {
		return nil, err
	}
	return transformer.NewStripBefore(o.Expression, o.Inclusive, o.CaseSensitive, o.textOptions()...)
}

func buildStripAfter(raw json.RawMessage) (handler.Handler, error) {
	var o stripOptions
	if err := decodeOptions(KindStripAfter, raw, &o); err != nil {
		return nil, err
	}
	return transformer.NewStripAfter(o.Expression, o.Inclusive, o.CaseSensitive, o.textOptions()...)
}

func buildReplace(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Replacements []struct {
			Pattern       string `json:"pattern"`
			Replacement   string `json:"replacement"`
			CaseSensitive bool   `json:"caseSensitive"`
		} `json:"replacements"`
		Charset string `json:"charset"`
	}
	if err := decodeOptions(KindReplace, raw, &o); err != nil {
		return nil, err
	}
	replacements := make([]transformer.Replacement, 0, len(o.Replacements))
	for _, r := range o.Replacements {
		replacements = append(replacements, transformer.Replacement{
			Pattern:       r.Pattern,
			Replacement:   r.Replacement,
			CaseSensitive: r.CaseSensitive,
		})
	}
	var opts []transformer.Option
	if o.Charset != "" {
		opts = append(opts, transformer.WithSourceCharset(o.Charset))
	}
	return transformer.NewReplace(replacements, opts...)
}

func buildReduceConsecutives(raw json.RawMessage) (handler.Handler, error) {
	var o struct {
		Texts         []string `json:"texts"`
		CaseSensitive bool     `json:"caseSensitive"`
		Charset       string   `json:"charset"`
	}
	if err := decodeOptions(KindReduceConsecutives, raw, &o); err != nil {
		return nil, err
	}
	var opts []transformer.Option
	if o.Charset != "" {
		opts = append(opts, transformer.WithSourceCharset(o.Charset))
	}
	return transformer.NewReduceConsecutives(o.Texts, o.CaseSensitive, opts...)
}
