//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package handler_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/restriction"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/tagger"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/transformer"
)

func textOnly(t *testing.T) restriction.Rule {
	t.Helper()
	rule, err := restriction.NewRule(document.FieldContentType, "^text/.*$", false)
	require.NoError(t, err)
	return rule
}

func newDoc(content string, contentType string) *document.Document {
	doc := document.New("test-doc", strings.NewReader(content))
	doc.Parsed = true
	if contentType != "" {
		doc.Metadata.Set(document.FieldContentType, contentType)
	}
	return doc
}

func readContent(t *testing.T, doc *document.Document) string {
	t.Helper()
	data, err := io.ReadAll(doc.Content)
	require.NoError(t, err)
	return string(data)
}

// A restricted transformer runs for a matching content type.
func TestPipelineAppliesMatchingHandler(t *testing.T) {
	strip, err := transformer.NewStripBefore("<!--content-->", true, false)
	require.NoError(t, err)
	strip.Restrictions().Add(textOnly(t))

	p, err := handler.NewPipeline(strip)
	require.NoError(t, err)

	doc := newDoc("header junk<!--content-->the real body", "text/html")
	require.NoError(t, p.Process(doc))
	assert.Equal(t, "the real body", readContent(t, doc))
}

// A restricted transformer skips a non-matching document, leaving content
// and metadata untouched.
func TestPipelineSkipsNonMatchingHandler(t *testing.T) {
	strip, err := transformer.NewStripBefore("<!--content-->", true, false)
	require.NoError(t, err)
	strip.Restrictions().Add(textOnly(t))

	p, err := handler.NewPipeline(strip)
	require.NoError(t, err)

	const content = "header junk<!--content-->the real body"
	doc := newDoc(content, "application/pdf")
	before := doc.Metadata.Clone()

	require.NoError(t, p.Process(doc))
	assert.Equal(t, content, readContent(t, doc))
	assert.True(t, before.Equal(doc.Metadata))
}

// Forcing multi-valued fields to single values, action by action.
func TestPipelineSingleValueActions(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   string
	}{
		{"keep first", "keepFirst", "Jane"},
		{"merge with separator", "mergeWith:;", "Jane;John"},
		{"no action merges with comma", "", "Jane,John"},
		{"unrecognized action merges with comma", "doTheRightThing", "Jane,John"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := handler.NewPipeline(tagger.NewSingleValue(
				tagger.WithSingleValueField("author", tt.action)))
			require.NoError(t, err)

			doc := newDoc("", "")
			doc.Metadata.Set("author", "Jane", "John")
			require.NoError(t, p.Process(doc))
			assert.Equal(t, []string{tt.want}, doc.Metadata.Get("author"))
		})
	}
}

// Keep-only leaves exactly the configured fields.
func TestPipelineKeepOnly(t *testing.T) {
	keep, err := tagger.NewKeepOnly(tagger.WithKeepOnlyFields("title"))
	require.NoError(t, err)
	p, err := handler.NewPipeline(keep)
	require.NoError(t, err)

	doc := newDoc("", "")
	doc.Metadata.Set("title", "A Title")
	doc.Metadata.Set("author", "Jane")
	doc.Metadata.Set("custom", "x", "y")

	require.NoError(t, p.Process(doc))
	assert.Equal(t, []string{"title"}, doc.Metadata.Keys())
	assert.Equal(t, []string{"A Title"}, doc.Metadata.Get("title"))
}

// Metadata mutations by earlier handlers are visible to later handlers'
// restrictions in the same pass.
func TestPipelineMutationsVisibleDownstream(t *testing.T) {
	constant, err := tagger.NewConstant("stage", "tagged")
	require.NoError(t, err)

	gated := tagger.NewDelete("victim")
	gated.Restrictions().Add(restriction.MustNewRule("stage", "tagged", true))

	p, err := handler.NewPipeline(constant, gated)
	require.NoError(t, err)

	doc := newDoc("", "")
	doc.Metadata.Set("victim", "v")
	require.NoError(t, p.Process(doc))
	assert.False(t, doc.Metadata.Has("victim"))
}

type bareHandler struct {
	handler.Base
}

func TestNewPipelineRejectsInvalidHandlers(t *testing.T) {
	_, err := handler.NewPipeline(nil)
	require.ErrorIs(t, err, handler.ErrConfiguration)

	_, err = handler.NewPipeline(bareHandler{Base: handler.NewBase("bare")})
	require.ErrorIs(t, err, handler.ErrConfiguration)
}

// Transformer output well past the in-memory spool limit must survive
// intact across chained handlers and keep per-stage memory bounded.
func TestPipelineLargeContentRoundTrip(t *testing.T) {
	first, err := transformer.NewReplace([]transformer.Replacement{
		{Pattern: "a", Replacement: "x", CaseSensitive: true},
	})
	require.NoError(t, err)
	second, err := transformer.NewReplace([]transformer.Replacement{
		{Pattern: "b", Replacement: "y", CaseSensitive: true},
	})
	require.NoError(t, err)

	p, err := handler.NewPipeline(first, second)
	require.NoError(t, err)

	const pairs = 1 << 20 // 2 MiB of content
	doc := newDoc(strings.Repeat("ab", pairs), "")
	require.NoError(t, p.Process(doc))

	got := readContent(t, doc)
	require.Len(t, got, 2*pairs)
	assert.True(t, got == strings.Repeat("xy", pairs), "content corrupted in transit")
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("stream closed")
}

// A stream failure aborts the document and names it.
func TestPipelineStreamFailurePropagates(t *testing.T) {
	strip, err := transformer.NewStripBefore("x", true, false)
	require.NoError(t, err)
	p, err := handler.NewPipeline(strip)
	require.NoError(t, err)

	doc := document.New("doomed-doc", brokenReader{})
	doc.Parsed = true
	err = p.Process(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doomed-doc")
}
