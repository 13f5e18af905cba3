//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry provides metrics collection for the document pipeline.
// It integrates with OpenTelemetry through the metric API only; the host
// application owns the MeterProvider and any exporter setup.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "trpc.group/trpc-go/trpc-docpipe-go"

var (
	mu          sync.Mutex
	initialized bool

	handlerRejectedCnt metric.Int64Counter
	charsetFallbackCnt metric.Int64Counter
	bufferSplitCnt     metric.Int64Counter
)

// InitMeterProvider initializes the pipeline meters from the given provider.
// When it is never called, the counters are bound lazily from the global
// otel provider on first use.
func InitMeterProvider(mp metric.MeterProvider) error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked(mp)
}

func initLocked(mp metric.MeterProvider) error {
	meter := mp.Meter(meterName)
	var err error
	if handlerRejectedCnt, err = meter.Int64Counter(
		"docpipe.handler.rejected",
		metric.WithDescription("Documents rejected by a handler's restrictions"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create metric docpipe.handler.rejected: %w", err)
	}
	if charsetFallbackCnt, err = meter.Int64Counter(
		"docpipe.charset.fallback",
		metric.WithDescription("Charset resolutions that fell back to UTF-8"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create metric docpipe.charset.fallback: %w", err)
	}
	if bufferSplitCnt, err = meter.Int64Counter(
		"docpipe.buffer.split",
		metric.WithDescription("Documents whose text was split into chunks by the stream buffer"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create metric docpipe.buffer.split: %w", err)
	}
	initialized = true
	return nil
}

func ensure() bool {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return true
	}
	return initLocked(otel.GetMeterProvider()) == nil
}

// IncHandlerRejected records a document rejected by a handler's restriction set.
func IncHandlerRejected(handlerName string, parsed bool) {
	if !ensure() {
		return
	}
	handlerRejectedCnt.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("handler", handlerName),
		attribute.Bool("parsed", parsed),
	))
}

// IncCharsetFallback records a charset resolution that degraded to UTF-8.
func IncCharsetFallback() {
	if !ensure() {
		return
	}
	charsetFallbackCnt.Add(context.Background(), 1)
}

// IncBufferSplit records a document whose content was chunked under memory pressure.
func IncBufferSplit() {
	if !ensure() {
		return
	}
	bufferSplitCnt.Add(context.Background(), 1)
}
