// builder.go: a fluent constructor for Config, mirroring the chained
// With* style used throughout the storekit/profile packages' callers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"context"
	"sync"
	"time"

	"github.com/agilira/meridian/profile"
	"github.com/agilira/meridian/storekit"
	"github.com/agilira/meridian/support"
)

// Builder assembles a Config step by step and constructs the Cache in one
// call to Build, running Validate exactly once.
type Builder struct {
	cfg Config
	reg *Registry
}

// NewBuilder starts from DefaultConfig. Use ApplyProfile to start from a
// named preset instead.
func NewBuilder() *Builder {
	b := &Builder{cfg: DefaultConfig()}
	return b
}

// ApplyProfile resets the builder's fields to p's values. Later With*
// calls override individual fields; ApplyProfile itself replaces the whole
// configuration, discarding fields set by any earlier With* call.
func (b *Builder) ApplyProfile(p profile.Profile) *Builder {
	b.cfg = configFromProfile(p)
	return b
}

// WithName sets the cache's name, used for registry-uniqueness checking
// and surfaced through Logger/Metrics calls.
func (b *Builder) WithName(name string) *Builder { b.cfg.Name = name; return b }

// WithAlgorithm selects the eviction policy.
func (b *Builder) WithAlgorithm(a profile.EvictionAlgorithm) *Builder {
	b.cfg.Algorithm = a
	return b
}

// WithMaximumSize bounds the entry count.
func (b *Builder) WithMaximumSize(n int64) *Builder { b.cfg.MaximumSize = n; return b }

// WithMaximumWeight bounds the aggregate weight; weigher must be non-nil,
// or Build rejects the configuration.
func (b *Builder) WithMaximumWeight(w int64, weigher storekit.Weigher) *Builder {
	b.cfg.MaximumWeight = w
	b.cfg.Weigher = weigher
	return b
}

// WithWindowRatio sets Config.WindowRatio. The TinyLFU policy does not read
// it: its admission window is always 1% of capacity.
func (b *Builder) WithWindowRatio(r float64) *Builder { b.cfg.WindowRatio = r; return b }

// WithExpireAfterWrite sets a fixed TTL from time of write.
func (b *Builder) WithExpireAfterWrite(d time.Duration) *Builder {
	b.cfg.ExpireAfterWrite = d
	return b
}

// WithExpireAfterAccess sets a sliding TTL from time of last access.
func (b *Builder) WithExpireAfterAccess(d time.Duration) *Builder {
	b.cfg.ExpireAfterAccess = d
	return b
}

// WithRefreshAfterWrite enables refresh-ahead after d has elapsed since
// write, reloading via the configured Loader on the next read.
func (b *Builder) WithRefreshAfterWrite(d time.Duration) *Builder {
	b.cfg.RefreshAfterWrite = d
	return b
}

// WithLoader installs a Loader, enabling Get's load-on-miss behavior.
func (b *Builder) WithLoader(l storekit.Loader) *Builder { b.cfg.Loader = l; return b }

// WithNegativeCacheTTL caches loader errors for d, avoiding repeated calls
// into a currently-failing loader.
func (b *Builder) WithNegativeCacheTTL(d time.Duration) *Builder {
	b.cfg.NegativeCacheTTL = d
	return b
}

// WithShards sets the store's concurrency fan-out.
func (b *Builder) WithShards(n int) *Builder { b.cfg.Shards = n; return b }

// WithListener appends a listener to the set notified of puts/evictions.
func (b *Builder) WithListener(l storekit.Listener) *Builder {
	b.cfg.Listeners = append(b.cfg.Listeners, l)
	return b
}

// WithLogger installs a structured logger in place of the no-op default.
func (b *Builder) WithLogger(l support.Logger) *Builder { b.cfg.Logger = l; return b }

// WithTimeProvider installs a custom clock, primarily for deterministic
// tests.
func (b *Builder) WithTimeProvider(t support.TimeProvider) *Builder {
	b.cfg.Time = t
	return b
}

// WithMetrics installs a metrics collector in place of the no-op default.
func (b *Builder) WithMetrics(m support.MetricsCollector) *Builder {
	b.cfg.Metrics = m
	return b
}

// WithWorkloadCharacteristics selects a profile by matching wc against
// every registered profile's suitability predicate in reg (DefaultRegistry
// if reg is nil), applying the highest-priority match the same way
// ApplyProfile would. Later With* calls still override individual fields.
func (b *Builder) WithWorkloadCharacteristics(wc profile.WorkloadCharacteristics, reg *profile.Registry) *Builder {
	if reg == nil {
		reg = profile.DefaultRegistry
	}
	if p, ok := reg.SelectFor(wc); ok {
		b.cfg = configFromProfile(p)
	}
	return b
}

// WithRegistry attaches a Registry that Build will register the finished
// Cache into under cfg.Name, rejecting the build on a name collision.
func (b *Builder) WithRegistry(r *Registry) *Builder { b.reg = r; return b }

// Build validates the accumulated configuration and constructs the Cache.
func (b *Builder) Build() (*Cache, error) {
	c, err := New(b.cfg)
	if err != nil {
		return nil, err
	}
	if b.reg != nil {
		if err := b.reg.add(b.cfg.Name, c); err != nil {
			_ = c.Close(context.Background())
			return nil, err
		}
	}
	return c, nil
}

// Registry tracks live, named Cache instances, rejecting an attempt to
// register two caches under the same non-empty name.
type Registry struct {
	mu     sync.RWMutex
	caches map[string]*Cache
}

// NewRegistry creates an empty cache Registry.
func NewRegistry() *Registry { return &Registry{caches: make(map[string]*Cache)} }

func (r *Registry) add(name string, c *Cache) error {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caches[name]; exists {
		return NewErrInvalidConfigWithReason("a cache named " + name + " is already registered")
	}
	r.caches[name] = c
	return nil
}

// Get returns the named cache, if any.
func (r *Registry) Get(name string) (*Cache, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	return c, ok
}

// Remove drops name from the registry without closing its cache.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.caches, name)
}
