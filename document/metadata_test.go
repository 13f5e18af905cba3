//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
)

func TestMetadataAddSet(t *testing.T) {
	md := document.Metadata{}
	md.Add("author", "Jane")
	md.Add("author", "John")
	assert.Equal(t, []string{"Jane", "John"}, md.Get("author"))
	assert.Equal(t, "Jane", md.First("author"))
	assert.Equal(t, "John", md.Last("author"))

	md.Set("author", "Alice")
	assert.Equal(t, []string{"Alice"}, md.Get("author"))

	// Empty field names never become keys.
	md.Add("", "x")
	md.Set("", "x")
	assert.False(t, md.Has(""))
}

func TestMetadataKeysDeterministic(t *testing.T) {
	md := document.Metadata{}
	md.Add("title", "t")
	md.Add("author", "a")
	md.Add("custom", "c")
	assert.Equal(t, []string{"author", "custom", "title"}, md.Keys())
}

func TestMetadataRemoveClear(t *testing.T) {
	md := document.Metadata{}
	md.Add("a", "1")
	md.Add("b", "2")

	require.True(t, md.Remove("a"))
	assert.False(t, md.Remove("a"))
	assert.False(t, md.Has("a"))

	md.Clear()
	assert.Empty(t, md.Keys())
}

func TestMetadataCloneEqual(t *testing.T) {
	md := document.Metadata{}
	md.Add("author", "Jane", "John")
	md.Add("title", "Doc")

	c := md.Clone()
	assert.True(t, md.Equal(c))

	// Mutating the clone must not affect the original.
	c.Add("author", "Extra")
	assert.False(t, md.Equal(c))
	assert.Equal(t, []string{"Jane", "John"}, md.Get("author"))

	// Value order matters.
	other := document.Metadata{}
	other.Add("author", "John", "Jane")
	other.Add("title", "Doc")
	assert.False(t, md.Equal(other))
}
