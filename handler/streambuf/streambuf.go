//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package streambuf drives a read/accumulate/transform/flush loop so that
// the peak memory buffered for one document's text stays bounded by a
// fraction of the currently available memory, independent of document size.
//
// A transform that needs the whole document at once (say a pattern spanning
// a chunk boundary) may silently miss at a split point when content is large
// enough to force chunking. That trade-off favors bounded memory over
// universal correctness for oversized documents and is kept on purpose.
package streambuf

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"unicode/utf8"

	"trpc.group/trpc-go/trpc-docpipe-go/log"
	"trpc.group/trpc-go/trpc-docpipe-go/telemetry"
)

const (
	// DefaultChunkSize is the buffered-size increment, in the 2-byte
	// per-character accounting unit, at which the memory budget is
	// re-checked.
	DefaultChunkSize = 100 * 1024

	// memoryDivider sizes the initial buffer capacity relative to the
	// available memory budget.
	memoryDivider = 4

	// minBudget keeps the default budget usable on tiny fresh heaps.
	minBudget = 32 << 20
)

// MemoryBudget reports the currently available memory in bytes. It is
// injected so tests can simulate memory pressure deterministically. The
// value may fluctuate between calls; the buffer re-reads it at every check.
type MemoryBudget func() int64

// DefaultMemoryBudget derives the available budget from the heap headroom
// the runtime holds but does not use.
func DefaultMemoryBudget() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	free := int64(ms.HeapSys) - int64(ms.HeapInuse)
	if free < minBudget {
		free = minBudget
	}
	return free
}

// Buffer is a mutable character store handed to transform callbacks. It
// exists for the duration of one streaming-transform invocation and is
// owned exclusively by that invocation. Len always equals the number of
// characters buffered since the last flush.
type Buffer struct {
	data  []byte
	chars int
}

// String returns the buffered text.
func (b *Buffer) String() string { return string(b.data) }

// Len returns the number of buffered characters.
func (b *Buffer) Len() int { return b.chars }

// Replace swaps the buffered text for s; the buffer may grow or shrink.
func (b *Buffer) Replace(s string) {
	b.data = append(b.data[:0], s...)
	b.chars = utf8.RuneCountInString(s)
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.chars = 0
}

func (b *Buffer) appendRune(r rune) {
	b.data = utf8.AppendRune(b.data, r)
	b.chars++
}

// Transform rewrites the buffer in place. partial reports whether more
// content follows in a later invocation; callbacks whose correctness spans
// chunks should account for it.
type Transform func(buf *Buffer, partial bool) error

// Runner owns the loop configuration. The zero value is not usable; use New.
type Runner struct {
	budget     MemoryBudget
	checkEvery int // characters between budget checks
}

// Option configures a Runner.
type Option func(*Runner)

// WithMemoryBudget sets the memory-budget provider.
func WithMemoryBudget(budget MemoryBudget) Option {
	return func(r *Runner) {
		if budget != nil {
			r.budget = budget
		}
	}
}

// WithChunkSize sets the buffered-size increment, in 2-byte character
// units, between budget checks.
func WithChunkSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.checkEvery = size / 2
			if r.checkEvery < 1 {
				r.checkEvery = 1
			}
		}
	}
}

// New creates a Runner with the default budget provider and check increment.
func New(opts ...Option) *Runner {
	r := &Runner{
		budget:     DefaultMemoryBudget,
		checkEvery: DefaultChunkSize / 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads characters from in, buffering them and invoking fn with
// partial=true whenever the buffer's footprint exceeds half the current
// memory budget at a check point, flushing fn's (possibly rewritten) output
// to out in order. At end of input a non-empty buffer gets one final fn
// call with partial=false. Total output is the ordered concatenation of
// every chunk's transform result.
//
// A read or write error aborts hard: the error is returned wrapped with
// reference and no further flush happens, so partial output is never
// mistaken for complete output.
func (r *Runner) Run(reference string, in io.Reader, out io.Writer, fn Transform) error {
	rr, ok := in.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(in)
	}

	initial := r.budget() / memoryDivider
	if initial < 0 {
		initial = 0
	}
	buf := &Buffer{data: make([]byte, 0, initial)}
	splits := 0

	for {
		ch, _, err := rr.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read content of %q: %w", reference, err)
		}
		buf.appendRune(ch)
		if buf.Len()%r.checkEvery != 0 {
			continue
		}
		// Footprint accounted at 2 bytes per character against half the
		// budget observed right now; an approximate bound, since the
		// budget can move between checks.
		if int64(buf.Len())*2 <= r.budget()/2 {
			continue
		}
		if splits == 0 {
			log.Warnf("content of %q is big for the available memory budget; "+
				"it is transformed in chunks, and transformations spanning "+
				"a chunk boundary may not apply", reference)
			telemetry.IncBufferSplit()
		}
		splits++
		if err := r.flush(reference, buf, out, fn, true); err != nil {
			return err
		}
	}
	if buf.Len() > 0 {
		return r.flush(reference, buf, out, fn, false)
	}
	return nil
}

func (r *Runner) flush(reference string, buf *Buffer, out io.Writer, fn Transform, partial bool) error {
	if err := fn(buf, partial); err != nil {
		return fmt.Errorf("transform content of %q: %w", reference, err)
	}
	if _, err := out.Write(buf.data); err != nil {
		return fmt.Errorf("write content of %q: %w", reference, err)
	}
	buf.Reset()
	return nil
}
