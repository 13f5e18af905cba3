//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package charset resolves the character encoding to use for a document
// before any text handler reads raw bytes. Resolution never fails: missing
// or ambiguous encodings degrade to UTF-8 instead of aborting the pipeline.
package charset

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"trpc.group/trpc-go/trpc-docpipe-go/log"
	"trpc.group/trpc-go/trpc-docpipe-go/telemetry"
)

// UTF8 is the canonical name of the fallback encoding.
const UTF8 = "UTF-8"

// SampleSize is the maximum number of bytes inspected during detection.
const SampleSize = 8192

// Provenance records which decision path produced the resolved encoding.
// It exists for observability only.
type Provenance string

// Provenance values.
const (
	// ProvenanceParsed means upstream extraction already normalized the
	// content to UTF-8, so no inspection happened.
	ProvenanceParsed Provenance = "parsed"
	// ProvenanceExplicit means the caller supplied the encoding.
	ProvenanceExplicit Provenance = "explicit"
	// ProvenanceDeclared means detection confirmed the encoding declared
	// in document metadata.
	ProvenanceDeclared Provenance = "declared"
	// ProvenanceDetected means statistical detection over a content sample.
	ProvenanceDetected Provenance = "detected"
	// ProvenanceFallback means resolution degraded to UTF-8.
	ProvenanceFallback Provenance = "fallback"
)

// Decision is a resolved encoding name plus how it was decided.
type Decision struct {
	Name       string
	Provenance Provenance
}

// Resolve picks the encoding for a document's content.
//
// Order: parsed content is always UTF-8; a non-blank explicit charset wins
// next; otherwise the encoding is detected over a bounded prefix of sample,
// with declared as a hint. Detection failures of any kind degrade to UTF-8.
//
// Detection never consumes document content when sample is a *bufio.Reader
// (the prefix is peeked). Any other reader is consumed up to SampleSize
// bytes, so callers that read the content afterwards must buffer it first.
func Resolve(explicit, declared string, sample io.Reader, parsed bool) Decision {
	if parsed {
		return Decision{Name: UTF8, Provenance: ProvenanceParsed}
	}
	if strings.TrimSpace(explicit) != "" {
		if name := Clean(explicit); name != "" {
			return Decision{Name: name, Provenance: ProvenanceExplicit}
		}
		return fallback("unknown explicit charset %q, assuming UTF-8", explicit)
	}
	declared = strings.TrimSpace(declared)
	name, err := detect(sample, declared)
	if err != nil {
		return fallback("problem detecting charset, assuming UTF-8: %v", err)
	}
	cleaned := Clean(name)
	if cleaned == "" {
		return fallback("cannot detect source charset, assuming UTF-8")
	}
	if declaredName := Clean(declared); declaredName != "" && declaredName == cleaned {
		return Decision{Name: cleaned, Provenance: ProvenanceDeclared}
	}
	return Decision{Name: cleaned, Provenance: ProvenanceDetected}
}

func fallback(format string, args ...any) Decision {
	log.Debugf(format, args...)
	telemetry.IncCharsetFallback()
	return Decision{Name: UTF8, Provenance: ProvenanceFallback}
}

// Clean canonicalizes a charset name (aliases, case, punctuation) to its
// preferred MIME form, e.g. "utf8" -> "UTF-8", "latin1" -> "ISO-8859-1".
// Registry names without a preferred MIME name keep their IANA form.
// It returns "" for blank or unrecognized names.
func Clean(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return ""
	}
	canonical, err := ianaindex.MIME.Name(enc)
	if err != nil {
		return ""
	}
	return canonical
}

func detect(sample io.Reader, declared string) (string, error) {
	data, err := peekSample(sample)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}
	hint := ""
	if declared != "" {
		hint = "text/plain; charset=" + declared
	}
	_, name, certain := htmlcharset.DetermineEncoding(data, hint)
	// DetermineEncoding defaults to windows-1252 when unsure; prefer UTF-8
	// when the sample is valid UTF-8.
	if !certain && validUTF8Sample(data) {
		return UTF8, nil
	}
	return name, nil
}

// peekSample obtains up to SampleSize bytes of lookahead without consuming
// them when the reader supports it.
func peekSample(sample io.Reader) ([]byte, error) {
	if sample == nil {
		return nil, nil
	}
	if br, ok := sample.(*bufio.Reader); ok {
		data, err := br.Peek(SampleSize)
		if len(data) > 0 || err == io.EOF || err == bufio.ErrBufferFull {
			return data, nil
		}
		return nil, err
	}
	buf := make([]byte, SampleSize)
	n, err := io.ReadFull(sample, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// validUTF8Sample reports whether data is valid UTF-8, tolerating one rune
// truncated by the sample boundary.
func validUTF8Sample(data []byte) bool {
	for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
		if utf8.Valid(data) {
			return true
		}
		data = data[:len(data)-1]
	}
	return false
}

// NewReader wraps r so that reads yield UTF-8 text decoded from the named
// encoding. Unknown names leave the reader untouched.
func NewReader(r io.Reader, name string) io.Reader {
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// NewWriter wraps w so that UTF-8 text written to it is encoded into the
// named encoding. The returned writer must be closed to flush. Unknown
// names pass writes through unchanged.
func NewWriter(w io.Writer, name string) io.WriteCloser {
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, enc.NewEncoder())
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
