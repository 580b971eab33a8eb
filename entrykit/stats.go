// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package entrykit

import "sync/atomic"

// Stats holds cache-wide counters. Every increment is a single atomic add
// on the hot path; the counters are not saturated, so a counter wraps once
// it passes the uint64 maximum. Counters only grow between calls to Reset,
// which zeroes all of them.
type Stats struct {
	Hits           atomic.Uint64
	Misses         atomic.Uint64
	Loads          atomic.Uint64
	LoadFailures   atomic.Uint64
	EvictionsSize  atomic.Uint64
	EvictionsWeight atomic.Uint64
	Expirations    atomic.Uint64
	Explicit       atomic.Uint64
	Replaced       atomic.Uint64
	Migrated       atomic.Uint64
	LoadTimeNanos  atomic.Uint64
}

// RecordEviction increments the counter matching cause, when the cause maps
// to one of the tracked eviction reasons (size/weight/expired/migrated);
// explicit removals and replacements are tracked separately since they are
// not "eviction" in the capacity-pressure sense but are still reportable.
func (s *Stats) RecordEviction(cause Cause) {
	switch cause {
	case CauseSize:
		s.EvictionsSize.Add(1)
	case CauseWeight:
		s.EvictionsWeight.Add(1)
	case CauseExpired:
		s.Expirations.Add(1)
	case CauseExplicit, CauseCollected:
		s.Explicit.Add(1)
	case CauseReplaced:
		s.Replaced.Add(1)
	case CauseMigrated:
		s.Migrated.Add(1)
	}
}

// Snapshot is an immutable point-in-time read of Stats, safe to hand to
// callers without exposing the atomics.
type Snapshot struct {
	Hits, Misses, Loads, LoadFailures                       uint64
	EvictionsSize, EvictionsWeight, Expirations              uint64
	Explicit, Replaced, Migrated                             uint64
	LoadTimeNanos                                            uint64
}

// Snapshot reads all counters. Reading is lock-free and may observe a
// slightly inconsistent cross-counter view; each individual counter is
// monotone.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:            s.Hits.Load(),
		Misses:          s.Misses.Load(),
		Loads:           s.Loads.Load(),
		LoadFailures:    s.LoadFailures.Load(),
		EvictionsSize:   s.EvictionsSize.Load(),
		EvictionsWeight: s.EvictionsWeight.Load(),
		Expirations:     s.Expirations.Load(),
		Explicit:        s.Explicit.Load(),
		Replaced:        s.Replaced.Load(),
		Migrated:        s.Migrated.Load(),
		LoadTimeNanos:   s.LoadTimeNanos.Load(),
	}
}

// HitRate returns hits/(hits+misses) as a 0..1 ratio, defined as 0 when
// the denominator is zero.
func (sn Snapshot) HitRate() float64 {
	total := sn.Hits + sn.Misses
	if total == 0 {
		return 0
	}
	return float64(sn.Hits) / float64(total)
}

// Reset zeroes every counter, used by Store.Clear().
func (s *Stats) Reset() {
	s.Hits.Store(0)
	s.Misses.Store(0)
	s.Loads.Store(0)
	s.LoadFailures.Store(0)
	s.EvictionsSize.Store(0)
	s.EvictionsWeight.Store(0)
	s.Expirations.Store(0)
	s.Explicit.Store(0)
	s.Replaced.Store(0)
	s.Migrated.Store(0)
	s.LoadTimeNanos.Store(0)
}
