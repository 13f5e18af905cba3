//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package importer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
	"trpc.group/trpc-go/trpc-docpipe-go/handler"
	"trpc.group/trpc-go/trpc-docpipe-go/handler/tagger"
	"trpc.group/trpc-go/trpc-docpipe-go/importer"
)

// upperExtractor stands in for an external parser: it uppercases the raw
// content and records that it ran.
type upperExtractor struct {
	fail bool
}

func (e upperExtractor) Extract(_ context.Context, reference string,
	content io.Reader, md document.Metadata) (io.Reader, error) {
	if e.fail {
		return nil, errors.New("unparsable format")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	md.Add("extractor.ran", "true")
	return strings.NewReader(strings.ToUpper(string(data))), nil
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestImportRunsAllStages(t *testing.T) {
	stage, err := tagger.NewConstant("stage", "post")
	require.NoError(t, err)
	post, err := handler.NewPipeline(stage)
	require.NoError(t, err)

	im := importer.New(
		importer.WithExtractor(upperExtractor{}),
		importer.WithPostParsePipeline(post),
	)
	doc := document.New("doc-1", strings.NewReader("hello world"))
	require.NoError(t, im.Import(context.Background(), doc))

	assert.True(t, doc.Parsed)
	assert.Equal(t, "HELLO WORLD", readAll(t, doc.Content))
	assert.Equal(t, []string{"true"}, doc.Metadata.Get("extractor.ran"))
	assert.Equal(t, []string{"post"}, doc.Metadata.Get("stage"))
}

func TestImportGeneratesReference(t *testing.T) {
	im := importer.New()
	doc := document.New("", strings.NewReader("anonymous"))
	require.NoError(t, im.Import(context.Background(), doc))

	assert.NotEmpty(t, doc.Reference)
	assert.Equal(t, []string{doc.Reference}, doc.Metadata.Get(document.FieldReference))
}

func TestImportSniffsContentType(t *testing.T) {
	im := importer.New()
	const content = "<!DOCTYPE html><html><body>hi</body></html>"
	doc := document.New("page", strings.NewReader(content))
	require.NoError(t, im.Import(context.Background(), doc))

	// The bare media type, parameters stripped, so exact-type restriction
	// rules like ^text/html$ can match.
	assert.Equal(t, "text/html", doc.Metadata.First(document.FieldContentType))
	// Sniffing peeks; the content itself stays intact.
	assert.Equal(t, content, readAll(t, doc.Content))
}

func TestImportKeepsProvidedContentType(t *testing.T) {
	im := importer.New()
	doc := document.New("page", strings.NewReader("<html></html>"))
	doc.Metadata.Set(document.FieldContentType, "application/x-custom")
	require.NoError(t, im.Import(context.Background(), doc))
	assert.Equal(t, "application/x-custom", doc.Metadata.First(document.FieldContentType))
}

func TestImportSkipsExtractionWhenParsed(t *testing.T) {
	im := importer.New(importer.WithExtractor(upperExtractor{fail: true}))
	doc := document.New("pre-parsed", strings.NewReader("already text"))
	doc.Parsed = true
	require.NoError(t, im.Import(context.Background(), doc))
	assert.Equal(t, "already text", readAll(t, doc.Content))
}

func TestImportExtractionFailure(t *testing.T) {
	im := importer.New(importer.WithExtractor(upperExtractor{fail: true}))
	doc := document.New("bad-doc", strings.NewReader("binary goo"))
	err := im.Import(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-doc")
	assert.False(t, doc.Parsed)
}

func TestImportBatchKeepsOrderAndIsolatesFailures(t *testing.T) {
	// Even documents are marked parsed so the failing extractor skips them;
	// odd documents hit it and fail individually.
	im := importer.New(
		importer.WithExtractor(upperExtractor{fail: true}),
		importer.WithParallelism(3),
	)

	docs := make([]*document.Document, 6)
	for i := range docs {
		docs[i] = document.New(fmt.Sprintf("doc-%d", i), strings.NewReader("payload"))
		docs[i].Parsed = i%2 == 0
	}

	errs, err := im.ImportBatch(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, errs, len(docs))
	for i, e := range errs {
		if i%2 == 0 {
			assert.NoError(t, e, "doc-%d", i)
		} else {
			assert.Error(t, e, "doc-%d", i)
		}
	}
}
