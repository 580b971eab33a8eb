// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package meridian provides a high-throughput, concurrent in-memory cache
// with pluggable eviction policies and an optional distributed mode for
// fronting a cluster of nodes behind a single logical cache.
//
// # Overview
//
// meridian's default eviction policy is W-TinyLFU: a small admission-window
// LRU feeding a Segmented LRU main region (protected and probationary
// segments), gated by a Count-Min frequency sketch so that a high-frequency
// resident is never evicted in favor of a low-frequency one-off lookup.
// LRU, FIFO and plain LFU are available as drop-in alternatives via
// Config.Algorithm for workloads where TinyLFU's extra bookkeeping isn't
// worth it.
//
// The store itself is sharded: each shard owns its own policy instance, its
// own reader-biased mutex guarding structural mutation, and a lock-free map
// for reads that never contend with a concurrent writer. Cache stampedes
// (many goroutines missing on the same key at once) collapse into a single
// loader call per key per shard; every other caller waits on that one call's
// result instead of duplicating the work.
//
//	cache, err := meridian.NewBuilder().
//		WithMaximumSize(10_000).
//		WithLoader(func(ctx context.Context, key string) (interface{}, error) {
//			return fetchFromUpstream(ctx, key)
//		}).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cache.Close(context.Background())
//
//	value, found, err := cache.Get(context.Background(), "user:123")
//
// # Cache Stampede Prevention
//
// A Get against a key with no loader in flight, on a miss, starts exactly
// one loader call; concurrent Get calls for the same key observe that call
// in progress and block on its result rather than starting their own.
// A loader error is returned to every waiter; if Config.NegativeCacheTTL is
// set, that error is also cached for the given duration so a
// currently-failing upstream isn't hammered by every subsequent miss.
//
// # W-TinyLFU Admission
//
// Every candidate entering the main region from the admission window is
// compared, via its Count-Min sketch estimate, against the main region's
// current eviction victim. The candidate is admitted only if its estimated
// frequency is greater than the victim's; on a tie or a lower estimate the
// candidate itself is dropped. This protects a cache's working set from being flushed by a
// burst of cold, one-time keys, the classic failure mode of plain LRU
// under a scanning access pattern.
//
// # Concurrency Model
//
// Each shard's structural operations (insert, evict, policy bookkeeping)
// take that shard's writer lock; reads go straight through a lock-free map
// and never block behind a writer holding the lock for an unrelated key in
// the same shard longer than the brief window the writer actually needs.
// A background maintenance worker periodically drains each shard's access
// journal into its policy (so that a flood of Get calls doesn't force policy
// bookkeeping onto every caller's own goroutine) and sweeps for entries
// whose TTL has lapsed without being touched.
//
// # Expiration and Refresh
//
// Config.ExpireAfterWrite and Config.ExpireAfterAccess bound entry
// lifetime; a zero value disables that kind of expiration. An entry whose
// last write is older than Config.RefreshAfterWrite but which has not yet
// expired triggers an asynchronous reload on its next read: the stale value is still returned immediately, and the refreshed
// value lands for the next caller once the loader completes.
//
// # Observability
//
// Cache.Stats returns a point-in-time snapshot of hit/miss/eviction
// counters. Config.Logger and Config.Metrics accept meridian's own narrow
// Logger/MetricsCollector interfaces, letting a caller wire in whatever
// structured-logging or metrics backend the surrounding application already
// uses without meridian depending on it directly. The Cache keeps
// Config.Metrics but does not call it from its own Get, Set, Delete or
// eviction paths.
//
// # Configuration
//
// Configuration can be built directly as a Config literal, started from a
// named Profile tuned for a particular workload shape (see package profile),
// or assembled fluently via Builder:
//
//	p, _ := profile.DefaultRegistry.Lookup(profile.WorkloadAPI)
//	cache, err := meridian.NewBuilder().
//		ApplyProfile(p).
//		WithExpireAfterWrite(30 * time.Second).
//		Build()
//
// # Error Handling
//
// Every error meridian returns carries a stable error code, optional
// structured context, and a retryability hint, inspected via GetErrorCode,
// GetErrorContext and IsRetryable rather than string matching. Helper
// predicates (IsNotFound, IsCacheFull, IsLoaderError, IsDistributedError,
// and so on) classify an error by the subsystem it came from.
//
// # Distributed Mode
//
// Packages ring, cluster, router and wire compose into an optional
// distributed layer: ring assigns keys to nodes by consistent hashing,
// cluster tracks which nodes are currently healthy, router dispatches a
// request to the local cache or forwards it to the owning node depending on
// the requested consistency level, and wire defines the request/response
// shapes a transport adapter (the included httpadapter, or a custom one)
// carries over the network. A single-node deployment never imports these
// packages; a multi-node deployment wires them in front of the same Cache
// used locally.
package meridian
