// Package profile defines meridian's named configuration presets: curated
// bundles of policy choice, shard count, TTLs and window ratios tuned for a
// particular workload shape, so a caller configuring meridian.Builder can
// reach for a ready-made starting point instead of hand-tuning every field.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package profile

import (
	"fmt"
	"sync"
	"time"
)

// EvictionAlgorithm names one of meridian's pluggable eviction policies.
type EvictionAlgorithm string

const (
	AlgorithmLRU     EvictionAlgorithm = "lru"
	AlgorithmFIFO    EvictionAlgorithm = "fifo"
	AlgorithmLFU     EvictionAlgorithm = "lfu"
	AlgorithmTinyLFU EvictionAlgorithm = "tinylfu"
)

// Workload names a built-in Profile, used for exact-name lookup (the
// "profile" configuration key).
type Workload string

const (
	WorkloadDefault           Workload = "default"
	WorkloadReadHeavy         Workload = "read_heavy"
	WorkloadWriteHeavy        Workload = "write_heavy"
	WorkloadMemoryEfficient   Workload = "memory_efficient"
	WorkloadHighPerformance   Workload = "high_performance"
	WorkloadSession           Workload = "session"
	WorkloadAPI               Workload = "api"
	WorkloadCompute           Workload = "compute"
	WorkloadMLOptimized       Workload = "ml_optimized"
	WorkloadZeroCopy          Workload = "zero_copy"
	WorkloadHardwareOptimized Workload = "hardware_optimized"
	WorkloadDistributed       Workload = "distributed"
)

// Category groups profiles that share a coarse tuning intent. It has no
// behavior of its own; it exists for discovery and logging, the way a
// Profile's Description does.
type Category string

const (
	CategoryGeneral          Category = "general"
	CategoryReadOptimized    Category = "read_optimized"
	CategoryWriteOptimized   Category = "write_optimized"
	CategoryMemoryOptimized  Category = "memory_optimized"
	CategoryThroughput       Category = "throughput"
	CategoryLatencySensitive Category = "latency_sensitive"
	CategoryCompute          Category = "compute"
	CategoryDistributed      Category = "distributed"
)

// AccessPattern describes the shape in which a caller expects to touch
// keys, one field of WorkloadCharacteristics.
type AccessPattern string

const (
	AccessPatternUniform    AccessPattern = "uniform"
	AccessPatternTemporal   AccessPattern = "temporal"
	AccessPatternSpatial    AccessPattern = "spatial"
	AccessPatternSequential AccessPattern = "sequential"
	AccessPatternZipfian    AccessPattern = "zipfian"
)

// WorkloadCharacteristics describes the shape of a caller's expected
// access pattern. SelectFor matches it against every registered Profile's
// Suitability predicate to pick the best-tuned starting point, the
// workloadCharacteristics configuration key's payload.
type WorkloadCharacteristics struct {
	// ReadToWriteRatio is reads per write; above 1 is read-heavy, below 1
	// is write-heavy. Zero means unspecified.
	ReadToWriteRatio float64
	AccessPattern    AccessPattern
	// MemoryConstraintBytes bounds the resident footprint the caller can
	// afford; zero means unconstrained.
	MemoryConstraintBytes int64
	// ConcurrencyLevel is the number of goroutines expected to touch the
	// cache concurrently; zero means unspecified.
	ConcurrencyLevel int
	// RequiresConsistency is true when the caller needs session- or
	// strong-consistency routing in a distributed deployment.
	RequiresConsistency bool
	// RequiresAsync is true when the caller wants refresh-ahead or async
	// loading rather than purely synchronous loads.
	RequiresAsync bool
	// ExpectedSize is the caller's estimate of steady-state resident
	// entry count; zero means unspecified.
	ExpectedSize int64
	// HitRateExpectation is the desired steady-state hit ratio, 0..1;
	// zero means unspecified.
	HitRateExpectation float64
}

// Suitability reports whether a Profile is an acceptable starting point
// for the given characteristics. A nil Suitability never matches.
type Suitability func(WorkloadCharacteristics) bool

// Profile is an immutable bundle of store/policy tuning parameters.
// meridian.Builder.ApplyProfile copies its values over the whole
// configuration: With* calls made after ApplyProfile override individual
// fields, and fields set by With* calls made before it are discarded.
type Profile struct {
	Name      Workload
	Category  Category
	Algorithm EvictionAlgorithm

	MaximumSize       int64
	Shards            int
	WindowRatio       float64 // copied to Config.WindowRatio; the W-TinyLFU window itself is fixed at 1%
	ExpireAfterWrite  time.Duration
	RefreshAfterWrite time.Duration

	// Suitability decides whether this profile accepts a given
	// WorkloadCharacteristics; Priority breaks ties among every profile
	// whose Suitability accepts. Registry.SelectFor picks the
	// highest-Priority accepting profile.
	Suitability Suitability
	Priority    int

	// Description documents the intended workload in one line, surfaced
	// by Registry for discovery/logging purposes.
	Description string
}

// equalIgnoringSuitability reports whether a and b are identical aside
// from their Suitability predicates, which are never comparable: two
// profiles built from the same literal produce distinct func values, so
// Register's idempotency check ignores Suitability and compares
// everything else by value.
func equalIgnoringSuitability(a, b Profile) bool {
	return a.Name == b.Name && a.Category == b.Category && a.Algorithm == b.Algorithm &&
		a.MaximumSize == b.MaximumSize && a.Shards == b.Shards &&
		a.WindowRatio == b.WindowRatio && a.ExpireAfterWrite == b.ExpireAfterWrite &&
		a.RefreshAfterWrite == b.RefreshAfterWrite && a.Priority == b.Priority &&
		a.Description == b.Description
}

// Registry holds named profiles, looked up by Workload. The zero value is
// ready to use; Register is idempotent for identical profiles and errors
// on conflicting re-registration.
type Registry struct {
	mu       sync.RWMutex
	profiles map[Workload]Profile
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[Workload]Profile)}
}

// Register adds p under p.Name. Registering the same name with an
// identical Profile value is a no-op; registering the same name with a
// different Profile returns an error, since profile identity is expected
// to be stable for the lifetime of a process.
func (r *Registry) Register(p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[p.Name]; ok {
		if equalIgnoringSuitability(existing, p) {
			return nil
		}
		return fmt.Errorf("profile: %q already registered with a different definition", p.Name)
	}
	if r.profiles == nil {
		r.profiles = make(map[Workload]Profile)
	}
	r.profiles[p.Name] = p
	return nil
}

// Lookup returns the profile registered under name, by exact match, and
// false when no profile is registered under that name.
func (r *Registry) Lookup(name Workload) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	return p, ok
}

// SelectFor returns the highest-priority registered profile whose
// Suitability predicate accepts wc. When no profile's predicate accepts
// it, SelectFor falls back to the profile registered under
// WorkloadDefault, returning false only when even that is unregistered.
func (r *Registry) SelectFor(wc WorkloadCharacteristics) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Profile
	bestSet := false
	for _, p := range r.profiles {
		if p.Suitability == nil || !p.Suitability(wc) {
			continue
		}
		if !bestSet || p.Priority > best.Priority {
			best, bestSet = p, true
		}
	}
	if bestSet {
		return best, true
	}
	p, ok := r.profiles[WorkloadDefault]
	return p, ok
}

// All returns every registered profile, for discovery/diagnostics.
func (r *Registry) All() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out
}

// builtins is the set of profiles every meridian process gets for free,
// covering a range of common workload shapes. Priority ascends with how
// specific a profile's Suitability predicate is; WorkloadDefault carries
// the lowest priority since it exists to catch everything else.
var builtins = []Profile{
	{
		Name: WorkloadDefault, Category: CategoryGeneral, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 10_000, Shards: 0, WindowRatio: 0.01,
		Suitability: func(WorkloadCharacteristics) bool { return true },
		Priority:    0,
		Description: "balanced general-purpose cache, W-TinyLFU admission",
	},
	{
		Name: WorkloadReadHeavy, Category: CategoryReadOptimized, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 50_000, Shards: 0, WindowRatio: 0.01,
		RefreshAfterWrite: 5 * time.Minute,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.ReadToWriteRatio >= 3
		},
		Priority:    10,
		Description: "large cache, refresh-ahead, favors hit rate over write throughput",
	},
	{
		Name: WorkloadWriteHeavy, Category: CategoryWriteOptimized, Algorithm: AlgorithmLRU,
		MaximumSize: 20_000, Shards: 0,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.ReadToWriteRatio > 0 && wc.ReadToWriteRatio <= 0.5
		},
		Priority:    10,
		Description: "high shard count, recency-only policy to keep writes cheap",
	},
	{
		Name: WorkloadMemoryEfficient, Category: CategoryMemoryOptimized, Algorithm: AlgorithmLFU,
		MaximumSize: 5_000, Shards: 8,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.MemoryConstraintBytes > 0 && wc.MemoryConstraintBytes <= 64<<20
		},
		Priority:    15,
		Description: "small footprint, frequency-only eviction to maximize density",
	},
	{
		Name: WorkloadHighPerformance, Category: CategoryThroughput, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 100_000, Shards: 64, WindowRatio: 0.01,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.ConcurrencyLevel >= 64
		},
		Priority:    12,
		Description: "wide sharding and W-TinyLFU for maximum concurrent throughput",
	},
	{
		Name: WorkloadSession, Category: CategoryLatencySensitive, Algorithm: AlgorithmLRU,
		MaximumSize: 100_000, Shards: 32,
		ExpireAfterWrite: 30 * time.Minute,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.RequiresConsistency && wc.AccessPattern == AccessPatternUniform
		},
		Priority:    20,
		Description: "short-lived session data, fixed TTL, recency eviction",
	},
	{
		Name: WorkloadAPI, Category: CategoryLatencySensitive, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 20_000, Shards: 16, WindowRatio: 0.01,
		ExpireAfterWrite: 1 * time.Minute,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.ReadToWriteRatio >= 2 && wc.ExpectedSize > 0 && wc.ExpectedSize <= 50_000 && !wc.RequiresConsistency
		},
		Priority:    8,
		Description: "response caching with a short absolute TTL",
	},
	{
		Name: WorkloadCompute, Category: CategoryCompute, Algorithm: AlgorithmLFU,
		MaximumSize: 2_000, Shards: 4,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.RequiresAsync && wc.ConcurrencyLevel > 0 && wc.ConcurrencyLevel <= 16
		},
		Priority:    9,
		Description: "memoized expensive computations, pure frequency eviction",
	},
	{
		Name: WorkloadMLOptimized, Category: CategoryCompute, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 200_000, Shards: 128, WindowRatio: 0.02,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.ExpectedSize >= 100_000 || wc.AccessPattern == AccessPatternZipfian
		},
		Priority:    14,
		Description: "feature/embedding caches, large capacity and admission window",
	},
	{
		Name: WorkloadZeroCopy, Category: CategoryLatencySensitive, Algorithm: AlgorithmFIFO,
		MaximumSize: 50_000, Shards: 32,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.AccessPattern == AccessPatternSequential
		},
		Priority:    11,
		Description: "streaming pass-through buffering, insertion-order eviction only",
	},
	{
		Name: WorkloadHardwareOptimized, Category: CategoryThroughput, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 65_536, Shards: 0, WindowRatio: 0.01,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.HitRateExpectation >= 0.9
		},
		Priority:    13,
		Description: "shard count left at 0 so New() sizes it to GOMAXPROCS at startup",
	},
	{
		Name: WorkloadDistributed, Category: CategoryDistributed, Algorithm: AlgorithmTinyLFU,
		MaximumSize: 50_000, Shards: 32, WindowRatio: 0.01,
		Suitability: func(wc WorkloadCharacteristics) bool {
			return wc.RequiresConsistency && wc.ConcurrencyLevel >= 32
		},
		Priority:    18,
		Description: "tuned for router-fronted multi-node deployments",
	},
}

// DefaultRegistry is a package-level Registry pre-populated with every
// built-in profile, the convenience entry point most callers use.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range builtins {
		if err := r.Register(p); err != nil {
			// Built-ins are defined once, statically, above; a conflict here
			// would be a programming error in this file, not a runtime
			// condition callers can act on.
			panic(err)
		}
	}
	return r
}
