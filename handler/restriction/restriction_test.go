//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package restriction_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/restriction"
)

func TestNewRuleInvalidPattern(t *testing.T) {
	_, err := restriction.NewRule("document.contentType", "^text/(.*$", false)
	require.Error(t, err)
}

func TestEmptySetMatchesEverything(t *testing.T) {
	s := restriction.NewSet()
	assert.True(t, s.Matches(document.Metadata{}))
	assert.True(t, s.Matches(document.Metadata{"any": {"value"}}))
}

func TestRuleMatching(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		expression    string
		caseSensitive bool
		metadata      document.Metadata
		want          bool
	}{
		{
			name:       "content type matches prefix pattern",
			field:      "document.contentType",
			expression: "^text/.*$",
			metadata:   document.Metadata{"document.contentType": {"text/html"}},
			want:       true,
		},
		{
			name:       "content type does not match",
			field:      "document.contentType",
			expression: "^text/.*$",
			metadata:   document.Metadata{"document.contentType": {"application/pdf"}},
			want:       false,
		},
		{
			name:       "full match not substring",
			field:      "lang",
			expression: "en",
			metadata:   document.Metadata{"lang": {"en-US"}},
			want:       false,
		},
		{
			name:       "any value of a multi-valued field",
			field:      "lang",
			expression: "fr",
			metadata:   document.Metadata{"lang": {"en", "fr"}},
			want:       true,
		},
		{
			name:          "case insensitive value",
			field:         "lang",
			expression:    "EN",
			caseSensitive: false,
			metadata:      document.Metadata{"lang": {"en"}},
			want:          true,
		},
		{
			name:          "case sensitive value",
			field:         "lang",
			expression:    "EN",
			caseSensitive: true,
			metadata:      document.Metadata{"lang": {"en"}},
			want:          false,
		},
		{
			name:       "padded value is matched as stored, not trimmed",
			field:      "document.contentType",
			expression: "^text/html$",
			metadata:   document.Metadata{"document.contentType": {"  text/html  "}},
			want:       false,
		},
		{
			name:       "missing field",
			field:      "lang",
			expression: ".*",
			metadata:   document.Metadata{},
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := restriction.NewRule(tt.field, tt.expression, tt.caseSensitive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, restriction.NewSet(rule).Matches(tt.metadata))
		})
	}
}

func TestFieldCaseInsensitiveLookup(t *testing.T) {
	rule := restriction.MustNewRule("Content-Type", "^text/.*$", false)
	md := document.Metadata{"content-type": {"text/plain"}}

	assert.False(t, restriction.NewSet(rule).Matches(md))
	assert.True(t, restriction.NewSet(rule.FieldCaseInsensitive()).Matches(md))
}

// Adding a rule never revokes applicability established by another rule.
func TestAddingRuleIsMonotonic(t *testing.T) {
	md := document.Metadata{"document.contentType": {"text/html"}}
	matching := restriction.MustNewRule("document.contentType", "^text/.*$", false)
	other := restriction.MustNewRule("author", "nobody", true)

	s := restriction.NewSet(matching)
	require.True(t, s.Matches(md))
	s.Add(other)
	assert.True(t, s.Matches(md))
}

func TestRemovingOnlyMatchingRuleFlipsResult(t *testing.T) {
	md := document.Metadata{"document.contentType": {"text/html"}}
	matching := restriction.MustNewRule("document.contentType", "^text/.*$", false)
	other := restriction.MustNewRule("author", "nobody", true)

	s := restriction.NewSet(matching, other)
	require.True(t, s.Matches(md))

	require.True(t, s.Remove(matching))
	assert.False(t, s.Matches(md))
	assert.Equal(t, 1, s.Len())
}

// RemoveField compares field names per each rule's own case-sensitivity
// flag: case-insensitive rules are removed on a case-insensitive name
// match, case-sensitive rules only on an exact one.
func TestRemoveFieldPerRuleCaseSensitivity(t *testing.T) {
	insensitive := restriction.MustNewRule("Author", ".*", false)
	sensitive := restriction.MustNewRule("Author", ".*", true)

	s := restriction.NewSet(insensitive, sensitive)
	assert.Equal(t, 1, s.RemoveField("author")) // only the case-insensitive rule goes
	assert.Equal(t, 1, s.Len())

	assert.Equal(t, 1, s.RemoveField("Author"))
	assert.Equal(t, 0, s.Len())
}

func TestClear(t *testing.T) {
	s := restriction.NewSet(
		restriction.MustNewRule("a", ".*", false),
		restriction.MustNewRule("b", ".*", false),
	)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Matches(document.Metadata{}))
}

// Mutations from one goroutine must be safe while another evaluates.
// The relaxed consistency guarantee means no assertion on intermediate
// results, only that nothing races or panics.
func TestConcurrentMutationAndEvaluate(t *testing.T) {
	md := document.Metadata{"document.contentType": {"text/html"}}
	s := restriction.NewSet(restriction.MustNewRule("document.contentType", "^text/.*$", false))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r := restriction.MustNewRule("author", "nobody", true)
			s.Add(r)
			s.Remove(r)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Matches(md)
		}
	}()
	wg.Wait()

	assert.True(t, s.Matches(md))
}
