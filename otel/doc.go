// Package otel provides OpenTelemetry integration for meridian cache metrics.
//
// # Overview
//
// This package implements the support.MetricsCollector interface using OpenTelemetry,
// enabling observability with automatic percentile calculation and
// multi-backend support (Prometheus, Jaeger, DataDog, Grafana).
//
// The package is a separate module to keep the meridian core lightweight.
// Applications that don't need metrics collection don't pay for the OTEL dependencies.
//
// # Features
//
//   - Automatic Percentiles: OTEL Histograms calculate p50, p95, p99, p99.9 latencies
//   - Multi-Backend Support: Works with Prometheus, Jaeger, DataDog, any OTEL-compatible backend
//   - Hit Ratio Tracking: Real-time cache hit/miss monitoring
//   - Eviction Monitoring: Track cache pressure and evictions, labeled by cause
//   - Cluster Monitoring: Track key migrations and topology changes in a distributed deployment
//   - Thread-Safe: Safe for concurrent use
//
// # Installation
//
//	go get github.com/agilira/meridian/otel
//
// # Quick Start
//
// Basic setup with Prometheus exporter:
//
//	import (
//	    "github.com/agilira/meridian"
//	    meridianotel "github.com/agilira/meridian/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	// Setup Prometheus exporter
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create OTEL MeterProvider
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	// Create metrics collector
//	metricsCollector, err := meridianotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Configure cache with metrics
//	cache, err := meridian.NewBuilder().
//	    WithMaximumSize(10_000).
//	    WithMetrics(metricsCollector).
//	    Build()
//
//	// The Cache keeps the collector but does not call its Record*
//	// methods from Set/Get, so these calls record nothing by themselves
//	cache.Set("key", value)
//	cache.Get(ctx, "key")
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - meridian_get_latency_ns: Get() operation latency in nanoseconds
//   - meridian_set_latency_ns: Set() operation latency in nanoseconds
//   - meridian_delete_latency_ns: Delete() operation latency in nanoseconds
//
// Counters:
//   - meridian_get_hits_total: Total number of cache hits
//   - meridian_get_misses_total: Total number of cache misses
//   - meridian_evictions_total: Total number of evictions, labeled by cause
//   - meridian_migrations_total: Total number of keys migrated between nodes, labeled by direction
//   - meridian_topology_changes_total: Total number of cluster topology version changes
//
// All metrics are thread-safe OTEL instruments.
//
// # Configuration
//
// Custom meter name (useful for multiple cache instances):
//
//	collector, err := meridianotel.NewOTelMetricsCollector(
//	    provider,
//	    meridianotel.WithMeterName("myapp_user_cache"),
//	)
//
// Custom histogram buckets for better percentile accuracy:
//
//	provider := metric.NewMeterProvider(
//	    metric.WithReader(exporter),
//	    metric.WithView(metric.NewView(
//	        metric.Instrument{Name: "meridian_get_latency_ns"},
//	        metric.Stream{
//	            Aggregation: metric.AggregationExplicitBucketHistogram{
//	                // Buckets in nanoseconds: 100ns, 500ns, 1μs, 5μs, 10μs, 50μs, 100μs
//	                Boundaries: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
//	            },
//	        },
//	    )),
//	)
//
// # Prometheus Queries
//
// Calculate P95 latency (last 5 minutes):
//
//	histogram_quantile(0.95, rate(meridian_get_latency_ns_bucket[5m]))
//
// Calculate hit ratio:
//
//	rate(meridian_get_hits_total[5m]) /
//	(rate(meridian_get_hits_total[5m]) + rate(meridian_get_misses_total[5m]))
//
// Calculate evictions per minute, by cause:
//
//	sum by (cause) (rate(meridian_evictions_total[1m])) * 60
//
// Calculate migrations per minute, by direction:
//
//	sum by (direction) (rate(meridian_migrations_total[1m])) * 60
//
// # Architecture
//
// Separation of concerns:
//
//	┌─────────────────────────────────────┐
//	│    meridian Cache (Core Module)     │
//	│  • No OTEL dependencies             │
//	│  • support.MetricsCollector iface   │
//	│  • NoOpMetricsCollector (default)   │
//	└──────────────┬──────────────────────┘
//	               │
//	               │ implements
//	               ▼
//	┌─────────────────────────────────────┐
//	│   meridian/otel (This Package)      │
//	│  • OTelMetricsCollector             │
//	│  • OTEL SDK dependencies            │
//	│  • Histograms + Counters            │
//	└──────────────┬──────────────────────┘
//	               │
//	               │ exports to
//	               ▼
//	┌─────────────────────────────────────┐
//	│      OTEL MeterProvider             │
//	│  • Aggregates metrics               │
//	│  • Calculates percentiles           │
//	│  • Exports to backends              │
//	└──────────────┬──────────────────────┘
//	               │
//	     ┌─────────┴──────┬────────┐
//	     ▼                ▼        ▼
//	Prometheus        Jaeger   DataDog
//
// This architecture keeps the core lightweight while enabling optional,
// pluggable observability.
//
// # Thread Safety
//
//	collector, _ := meridianotel.NewOTelMetricsCollector(provider)
//
//	// Safe to call from multiple goroutines
//	go func() { collector.RecordGet(1000, true) }()
//	go func() { collector.RecordSet(2000) }()
//	go func() { collector.RecordDelete(500) }()
//	go func() { collector.RecordEviction("size") }()
//	go func() { collector.RecordMigration("out") }()
//	go func() { collector.RecordTopologyChange() }()
//
// # Best Practices
//
// 1. Reuse MeterProvider across cache instances:
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector1, _ := meridianotel.NewOTelMetricsCollector(provider)
//	collector2, _ := meridianotel.NewOTelMetricsCollector(provider,
//	    meridianotel.WithMeterName("cache2"))
//
// 2. Always shutdown MeterProvider on exit.
//
// 3. Configure histogram buckets based on your latency profile.
//
// 4. Monitor key metrics: hit ratio, P95/P99 latency, eviction rate, and,
// in a distributed deployment, migration volume and topology-change
// frequency as a proxy for cluster stability.
package otel
