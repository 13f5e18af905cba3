//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package handler

import (
	"bytes"
	"io"
	"os"
)

// spoolMemoryLimit is the transformer output size above which the pipeline
// spills to a temporary file instead of growing an in-memory buffer. This
// keeps pipeline-level memory bounded for oversized documents, matching the
// bounded buffering the stream loop already provides one layer below.
const spoolMemoryLimit = 1 << 20

// contentSpool collects one transformer's output: in memory up to the limit,
// in a temporary file beyond it.
type contentSpool struct {
	limit int
	buf   bytes.Buffer
	file  *os.File
}

func newContentSpool(limit int) *contentSpool {
	return &contentSpool{limit: limit}
}

func (s *contentSpool) Write(p []byte) (int, error) {
	if s.file != nil {
		return s.file.Write(p)
	}
	if s.buf.Len()+len(p) <= s.limit {
		return s.buf.Write(p)
	}
	file, err := os.CreateTemp("", "docpipe-spool-*")
	if err != nil {
		return 0, err
	}
	if _, err := file.Write(s.buf.Bytes()); err != nil {
		file.Close()
		os.Remove(file.Name())
		return 0, err
	}
	s.file = file
	s.buf.Reset()
	return s.file.Write(p)
}

// content returns the collected output as the document's next content
// reader. A spilled file is deleted once the reader is drained or closed.
func (s *contentSpool) content() (io.Reader, error) {
	if s.file == nil {
		return bytes.NewReader(s.buf.Bytes()), nil
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		s.discard()
		return nil, err
	}
	return &spoolReader{file: s.file}, nil
}

// discard releases the spool without producing a reader, for the
// transform-error path.
func (s *contentSpool) discard() {
	if s.file != nil {
		s.file.Close()
		os.Remove(s.file.Name())
		s.file = nil
	}
	s.buf.Reset()
}

// spoolReader reads a spilled spool file back and cleans it up at end of
// stream. Downstream handlers read content to completion, so the file's
// lifetime ends with the next pipeline step.
type spoolReader struct {
	file *os.File
	done bool
}

func (r *spoolReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n, err := r.file.Read(p)
	if err == io.EOF {
		r.cleanup()
	}
	return n, err
}

// Close releases the spill file early; reading to EOF does the same.
func (r *spoolReader) Close() error {
	r.cleanup()
	return nil
}

func (r *spoolReader) cleanup() {
	if r.done {
		return
	}
	r.done = true
	name := r.file.Name()
	r.file.Close()
	os.Remove(name)
}
