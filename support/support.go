// Package support holds the small, dependency-free interfaces threaded
// through every meridian package: logging, time, and metrics collection.
// Kept separate from the root package so internal packages (storekit,
// policy, router, ...) can depend on them without importing the facade.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package support

import "github.com/agilira/go-timecache"

// Logger is a minimal, allocation-free structured logging interface.
// Implementations should treat keyvals as alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger discards everything. Used as the default so components never
// need a nil check before logging.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{}) {}
func (NoOpLogger) Info(string, ...interface{})  {}
func (NoOpLogger) Warn(string, ...interface{})  {}
func (NoOpLogger) Error(string, ...interface{}) {}

// TimeProvider supplies the current time in nanoseconds since epoch. Hot
// paths (TTL checks, entry timestamps) depend on this instead of calling
// time.Now() directly so a cached or synthetic clock can be injected.
type TimeProvider interface {
	Now() int64
}

// SystemTimeProvider is the default TimeProvider, backed by go-timecache's
// cached clock: substantially cheaper than time.Now() per call, with
// negligible staleness for cache TTL purposes.
type SystemTimeProvider struct{}

func (SystemTimeProvider) Now() int64 { return timecache.CachedTimeNano() }

// MetricsCollector receives per-operation timing and outcome signals. Its
// default, NoOpMetricsCollector, costs nothing; a real implementation
// (see the otel submodule) records histograms/counters.
type MetricsCollector interface {
	RecordGet(latencyNanos int64, hit bool)
	RecordSet(latencyNanos int64)
	RecordDelete(latencyNanos int64)
	RecordEviction(cause string)
	RecordMigration(direction string)
	RecordTopologyChange()
}

// NoOpMetricsCollector implements MetricsCollector with no side effects.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordGet(int64, bool)    {}
func (NoOpMetricsCollector) RecordSet(int64)          {}
func (NoOpMetricsCollector) RecordDelete(int64)       {}
func (NoOpMetricsCollector) RecordEviction(string)    {}
func (NoOpMetricsCollector) RecordMigration(string)   {}
func (NoOpMetricsCollector) RecordTopologyChange()    {}
