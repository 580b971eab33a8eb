// config.go: configuration for meridian caches.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"time"

	"github.com/agilira/meridian/profile"
	"github.com/agilira/meridian/storekit"
	"github.com/agilira/meridian/support"
)

// Config holds every configuration field a meridian Cache accepts. Zero
// values are normalized to sensible defaults by Validate.
type Config struct {
	// Name identifies this cache instance for logging/metrics and, when a
	// Registry is supplied to Builder, for uniqueness checking.
	Name string

	// Algorithm selects the eviction policy. Empty defaults to TinyLFU.
	Algorithm profile.EvictionAlgorithm

	// MaximumSize bounds the entry count. Zero means unbounded by count;
	// MaximumWeight must then be set, since Validate rejects a config with
	// neither bound.
	MaximumSize int64
	// MaximumWeight bounds the aggregate weight. Requires Weigher.
	MaximumWeight int64
	// Weigher computes each value's weight. Required when MaximumWeight > 0.
	Weigher storekit.Weigher

	// WindowRatio records a W-TinyLFU admission window as a fraction of
	// MaximumSize. Validate normalizes it, but no policy reads it: the
	// TinyLFU window is always 1% of capacity.
	WindowRatio float64

	// ExpireAfterWrite/ExpireAfterAccess bound entry lifetime. Zero disables
	// that expiration kind.
	ExpireAfterWrite  time.Duration
	ExpireAfterAccess time.Duration
	// RefreshAfterWrite triggers a background reload of a still-valid but
	// aging entry on its next read. Must be smaller than ExpireAfterWrite
	// when both are set, or the entry would expire before ever refreshing.
	RefreshAfterWrite time.Duration

	// Loader, if set, makes Get fall back to a single-flighted load on miss.
	Loader storekit.Loader
	// NegativeCacheTTL caches loader errors for this long, avoiding
	// repeated calls into a loader that is currently failing.
	NegativeCacheTTL time.Duration

	// Shards is the store's concurrency fan-out. Zero lets storekit size it
	// from GOMAXPROCS.
	Shards int

	Listeners []storekit.Listener

	Logger  support.Logger
	Time    support.TimeProvider
	Metrics support.MetricsCollector

	// WeakKeys/WeakValues/SoftValues exist only for source compatibility
	// with configuration shaped after garbage-collected runtimes; Validate
	// rejects them outright (see meridian's Design Notes on GC-dependent
	// eviction hints that have no equivalent here).
	WeakKeys   bool
	WeakValues bool
	SoftValues bool
}

// Validate normalizes zero-valued fields to defaults and rejects
// combinations that cannot produce a working cache. It is called
// automatically by Builder.Build.
func (c *Config) Validate() error {
	if c.WeakKeys || c.WeakValues || c.SoftValues {
		return NewErrInvalidConfigWithReason("weakKeys/weakValues/softValues have no equivalent without a tracing garbage collector; use ExpireAfterAccess or MaximumSize instead")
	}

	if c.MaximumSize <= 0 && c.MaximumWeight <= 0 {
		return NewErrInvalidMaxSize(c.MaximumSize)
	}

	if c.MaximumWeight > 0 && c.Weigher == nil {
		return NewErrInvalidConfigWithReason("MaximumWeight is set but no Weigher was provided")
	}

	if c.WindowRatio < 0 || c.WindowRatio >= 1 {
		c.WindowRatio = 0.01
	}
	if c.Algorithm == "" {
		c.Algorithm = profile.AlgorithmTinyLFU
	}

	if c.ExpireAfterWrite < 0 || c.ExpireAfterAccess < 0 {
		return NewErrInvalidTTL(c.ExpireAfterWrite)
	}
	if c.RefreshAfterWrite > 0 && c.ExpireAfterWrite > 0 && c.RefreshAfterWrite >= c.ExpireAfterWrite {
		return NewErrInvalidConfigWithReason("RefreshAfterWrite must be smaller than ExpireAfterWrite")
	}

	if c.Shards < 0 {
		return NewErrInvalidShards(c.Shards)
	}

	if c.Logger == nil {
		c.Logger = support.NoOpLogger{}
	}
	if c.Time == nil {
		c.Time = support.SystemTimeProvider{}
	}
	if c.Metrics == nil {
		c.Metrics = support.NoOpMetricsCollector{}
	}
	return nil
}

// DefaultConfig returns the "default" profile's configuration, the
// balanced general-purpose starting point.
func DefaultConfig() Config {
	p, _ := profile.DefaultRegistry.Lookup(profile.WorkloadDefault)
	return configFromProfile(p)
}

func configFromProfile(p profile.Profile) Config {
	return Config{
		Name:              string(p.Name),
		Algorithm:         p.Algorithm,
		MaximumSize:       p.MaximumSize,
		Shards:            p.Shards,
		WindowRatio:       p.WindowRatio,
		ExpireAfterWrite:  p.ExpireAfterWrite,
		RefreshAfterWrite: p.RefreshAfterWrite,
		Logger:            support.NoOpLogger{},
		Time:              support.SystemTimeProvider{},
		Metrics:           support.NoOpMetricsCollector{},
	}
}
