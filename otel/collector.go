// Package otel implements support.MetricsCollector using OpenTelemetry,
// so a meridian deployment can export hit/miss/latency/eviction counters
// (and, for a distributed deployment, migration and topology-change
// counters) to any OTEL-compatible backend without meridian's core
// depending on OTEL directly.
//
// # Usage
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := meridianotel.NewOTelMetricsCollector(provider)
//
//	cache, _ := meridian.NewBuilder().
//		WithMaximumSize(10_000).
//		WithMetrics(collector).
//		Build()
//
// # Metrics Exposed
//
//   - meridian_get_latency_ns / meridian_set_latency_ns / meridian_delete_latency_ns
//   - meridian_get_hits_total / meridian_get_misses_total
//   - meridian_evictions_total (labeled by cause)
//   - meridian_migrations_total (labeled by direction)
//   - meridian_topology_changes_total
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/meridian/support"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements support.MetricsCollector using
// OpenTelemetry instruments. Safe for concurrent use.
type OTelMetricsCollector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	migrations    metric.Int64Counter
	topologyChanges metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName defaults to "github.com/agilira/meridian".
	MeterName string
}

// Option is a functional option for Options.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple cache instances.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// NewOTelMetricsCollector creates instruments against provider.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("otel: meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/meridian"}
	for _, opt := range opts {
		opt(&options)
	}
	meter := provider.Meter(options.MeterName)

	c := &OTelMetricsCollector{}
	var err error

	if c.getLatency, err = meter.Int64Histogram("meridian_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.setLatency, err = meter.Int64Histogram("meridian_set_latency_ns",
		metric.WithDescription("Latency of Set operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.deleteLatency, err = meter.Int64Histogram("meridian_delete_latency_ns",
		metric.WithDescription("Latency of Delete operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.hits, err = meter.Int64Counter("meridian_get_hits_total",
		metric.WithDescription("Total number of cache hits")); err != nil {
		return nil, err
	}
	if c.misses, err = meter.Int64Counter("meridian_get_misses_total",
		metric.WithDescription("Total number of cache misses")); err != nil {
		return nil, err
	}
	if c.evictions, err = meter.Int64Counter("meridian_evictions_total",
		metric.WithDescription("Total number of evictions, labeled by cause")); err != nil {
		return nil, err
	}
	if c.migrations, err = meter.Int64Counter("meridian_migrations_total",
		metric.WithDescription("Total number of keys migrated between nodes, labeled by direction")); err != nil {
		return nil, err
	}
	if c.topologyChanges, err = meter.Int64Counter("meridian_topology_changes_total",
		metric.WithDescription("Total number of cluster topology version changes")); err != nil {
		return nil, err
	}

	return c, nil
}

// RecordGet records a Get operation's latency and hit/miss outcome.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordSet records a Set operation's latency.
func (c *OTelMetricsCollector) RecordSet(latencyNs int64) {
	c.setLatency.Record(context.Background(), latencyNs)
}

// RecordDelete records a Delete operation's latency.
func (c *OTelMetricsCollector) RecordDelete(latencyNs int64) {
	c.deleteLatency.Record(context.Background(), latencyNs)
}

// RecordEviction records an eviction, labeled by cause (size, weight,
// expired, explicit, replaced, collected, migrated).
func (c *OTelMetricsCollector) RecordEviction(cause string) {
	c.evictions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cause", cause)))
}

// RecordMigration records one key moving between nodes during a
// rebalance, labeled by direction ("in" or "out").
func (c *OTelMetricsCollector) RecordMigration(direction string) {
	c.migrations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("direction", direction)))
}

// RecordTopologyChange records a cluster membership/topology version
// change.
func (c *OTelMetricsCollector) RecordTopologyChange() {
	c.topologyChanges.Add(context.Background(), 1)
}

var _ support.MetricsCollector = (*OTelMetricsCollector)(nil)
