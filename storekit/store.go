// Package storekit implements meridian's concurrent, sharded key-value
// store: the public get/put/remove/bulk operations, size/weight bounds,
// expiration, and the asynchronous maintenance hooks the rest of meridian
// builds on.
//
// The store is partitioned into a power-of-two number of shards, each an
// independently-locked partition holding its own map, eviction policy, and
// access journal, using a pluggable policy.Policy instead of a single
// baked-in algorithm and xsync's reader-biased primitives instead of plain
// sync.RWMutex, since reads dominate the target workload.
//
// The GetOrLoad singleflight path, negative caching, and panic-safe loader
// invocation use a per-shard in-flight call map so concurrent misses on
// the same key collapse into one loader invocation.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package storekit

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/agilira/meridian/entrykit"
	"github.com/agilira/meridian/internal/ringbuf"
	"github.com/agilira/meridian/internal/xhash"
	"github.com/agilira/meridian/policy"
	"github.com/agilira/meridian/support"
)

// Loader loads the value for a missing key. Errors are not cached unless a
// NegativeCacheTTL is configured.
type Loader func(ctx context.Context, key string) (interface{}, error)

// Weigher computes the weight of a value being stored. If nil, every entry
// has weight 1.
type Weigher func(key string, value interface{}) int64

// Listener receives lifecycle events. Invocation is never on the critical
// path: events are journaled and delivered by the maintenance worker.
type Listener interface {
	OnEvict(key string, value interface{}, cause entrykit.Cause)
	OnPut(key string, value interface{})
	OnAccess(key string, value interface{})
}

// Event is a journaled listener notification, drained and dispatched by the
// maintenance worker.
type Event struct {
	Kind  string // "put", "hit", "miss", "remove", "evict", "expire", "load_success", "load_failure"
	Key   string
	Value interface{}
	Cause entrykit.Cause
}

// PolicyFactory builds a fresh eviction policy for one shard, sized for
// perShardCapacity entries.
type PolicyFactory func(perShardCapacity int) policy.Policy

// Config configures a Store. Zero-value fields take the documented
// defaults.
type Config struct {
	MaximumSize       int64
	MaximumWeight     int64
	Weigher           Weigher
	ExpireAfterWrite  int64 // nanoseconds, 0 = disabled
	ExpireAfterAccess int64 // nanoseconds, 0 = disabled
	RefreshAfterWrite int64 // nanoseconds, 0 = disabled

	Shards        int // power of two; 0 picks a default
	JournalDepth  int // per-shard access-journal capacity; 0 picks a default

	NewPolicy PolicyFactory

	Loader           Loader
	NegativeCacheTTL int64

	Listeners []Listener

	Logger       support.Logger
	Time         support.TimeProvider
	Metrics      support.MetricsCollector
}

const (
	defaultShards       = 16
	defaultJournalDepth = 1024
)

func (c *Config) setDefaults() {
	if c.Shards <= 0 {
		c.Shards = nextPow2(max(defaultShards, runtime.GOMAXPROCS(0)*2))
	} else {
		c.Shards = nextPow2(c.Shards)
	}
	if c.JournalDepth <= 0 {
		c.JournalDepth = defaultJournalDepth
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
	if c.Weigher == nil {
		c.Weigher = func(string, interface{}) int64 { return 1 }
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shard is one independently-locked partition of the store. Reads go
// straight to entries, which is lock-free on its own; mu guards structural
// mutation (insert/evict) so size/weight/policy updates stay consistent
// with the map contents: an RBMutex for writers paired with an xsync.Map
// for lock-free readers. Every operation that reads or mutates policy
// (OnAdd, OnAccess, OnRemove, SelectVictim) must hold mu first: Policy
// implementations are plain, unsynchronized data structures (e.g. lfu's
// map-based frequency buckets), shared only within this one shard, and
// are not safe for unsynchronized concurrent access (spec.md §5).
type shard struct {
	idx     int
	mu      *xsync.RBMutex
	entries *xsync.Map[string, *entrykit.Entry]
	policy  policy.Policy

	size   atomic.Int64
	weight atomic.Int64

	journal  *ringbuf.Ring
	inflight sync.Map // key -> *call, or negKeyFor(key) -> negativeEntry
}

// Store is meridian's sharded, thread-safe key-value store.
type Store struct {
	cfg    Config
	shards []*shard
	stats  entrykit.Stats
	closed atomic.Bool

	// Events is drained by the maintenance worker; capacity bounds memory
	// the same way per-shard journals do.
	Events chan Event
}

// New constructs a Store from cfg.
func New(cfg Config) *Store {
	cfg.setDefaults()

	// Ceil, not floor: perShard only sizes each shard's policy data
	// structures (sketch table, bucket maps, …), and the largest quota any
	// shard can actually enforce is ceil(MaximumSize/Shards) once
	// perShardMaxEntries distributes the division remainder below.
	// Undersizing here wouldn't break correctness, just force extra
	// growth in the policy's own structures.
	perShard := 16
	if cfg.Shards > 0 && cfg.MaximumSize > 0 {
		perShard = int((cfg.MaximumSize + int64(cfg.Shards) - 1) / int64(cfg.Shards))
		if perShard < 16 {
			perShard = 16
		}
	}

	s := &Store{
		cfg:    cfg,
		shards: make([]*shard, cfg.Shards),
		Events: make(chan Event, cfg.JournalDepth),
	}

	newPolicy := cfg.NewPolicy
	if newPolicy == nil {
		newPolicy = func(capacity int) policy.Policy { return defaultPolicy(capacity) }
	}

	for i := range s.shards {
		s.shards[i] = &shard{
			idx:     i,
			mu:      xsync.NewRBMutex(),
			entries: xsync.NewMap[string, *entrykit.Entry](),
			policy:  newPolicy(perShard),
			journal: ringbuf.New(cfg.JournalDepth),
		}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := xhash.String(key, xhash.ShardSeed)
	idx := h & uint64(len(s.shards)-1)
	return s.shards[idx]
}

func (s *Store) now() int64 { return s.cfg.Time.Now() }

func (s *Store) emit(kind, key string, value interface{}, cause entrykit.Cause) {
	ev := Event{Kind: kind, Key: key, Value: value, Cause: cause}
	select {
	case s.Events <- ev:
	default:
		// Bounded queue: drop rather than block the caller. Listener
		// delivery degrades; correctness of stored data is unaffected.
	}
}

// Get returns the value for key if present and unexpired. On miss, if a
// loader is configured, it loads under a per-key single-flight guarantee.
func (s *Store) Get(ctx context.Context, key string) (interface{}, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	now := s.now()
	sh := s.shardFor(key)

	if e, ok := sh.entries.Load(key); ok {
		if e.IsExpired(now) {
			s.expireEntry(sh, key, e)
			s.stats.Misses.Add(1)
			s.emit("miss", key, nil, "")
			return nil, false, nil
		}
		e.Touch()
		sh.journal.Push(key)
		s.stats.Hits.Add(1)
		s.emit("hit", key, e.Value, "")

		if e.IsStale(now, s.cfg.RefreshAfterWrite) && s.cfg.Loader != nil {
			go s.refresh(sh, key)
		}
		return e.Value, true, nil
	}

	s.stats.Misses.Add(1)
	s.emit("miss", key, nil, "")

	if s.cfg.Loader == nil {
		return nil, false, nil
	}
	return s.loadSingleFlight(ctx, sh, key)
}

// Put unconditionally installs key/value, evicting synchronously until the
// configured bounds are satisfied.
func (s *Store) Put(key string, value interface{}) error {
	return s.put(key, value)
}

func (s *Store) put(key string, value interface{}) error {
	if s.closed.Load() {
		return ErrClosed
	}
	weight := s.cfg.Weigher(key, value)
	if s.cfg.MaximumWeight > 0 && weight > s.cfg.MaximumWeight {
		return ErrCapacityExceeded
	}

	now := s.now()
	sh := s.shardFor(key)

	sh.mu.Lock()
	if old, existed := sh.entries.Load(key); existed {
		e := entrykit.NewEntry(value, weight, now)
		e.ExpireAfterWriteNanos = s.cfg.ExpireAfterWrite
		e.ExpireAfterAccessNanos = s.cfg.ExpireAfterAccess
		sh.entries.Store(key, e)
		sh.weight.Add(weight - old.Weight)
		sh.policy.OnAccess(key)
		sh.mu.Unlock()
		s.stats.Replaced.Add(1)
		s.emit("put", key, value, "")
		return nil
	}

	e := entrykit.NewEntry(value, weight, now)
	e.ExpireAfterWriteNanos = s.cfg.ExpireAfterWrite
	e.ExpireAfterAccessNanos = s.cfg.ExpireAfterAccess
	sh.entries.Store(key, e)
	sh.size.Add(1)
	sh.weight.Add(weight)
	sh.policy.OnAdd(key, weight)
	evicted := s.enforceBoundsLocked(sh)
	sh.mu.Unlock()

	s.emit("put", key, value, "")
	for _, ev := range evicted {
		s.stats.RecordEviction(ev.cause)
		s.emit("evict", ev.key, ev.value, ev.cause)
	}
	return nil
}

// evictedEntry records one eviction enforceBoundsLocked performed, so the
// caller can update stats and emit listener events once sh.mu is released
// (stats/emit don't need the shard lock; the policy and map mutation do).
type evictedEntry struct {
	key   string
	value interface{}
	cause entrykit.Cause
}

// enforceBoundsLocked evicts entries from sh until its bounds are
// satisfied. Callers must already hold sh.mu.Lock(): SelectVictim and
// OnRemove read and mutate the same shard-local Policy instance that
// OnAdd/OnAccess mutate elsewhere under this same lock (e.g. lfu.Policy's
// plain, unsynchronized frequency-bucket maps), so running the eviction
// loop without the lock races with a concurrent put/access on the same
// shard (spec.md §5).
func (s *Store) enforceBoundsLocked(sh *shard) []evictedEntry {
	maxEntries := s.perShardMaxEntries(sh.idx)
	maxWeight := s.perShardMaxWeight(sh.idx)

	var evicted []evictedEntry
	for {
		overSize := maxEntries > 0 && sh.size.Load() > maxEntries
		overWeight := maxWeight > 0 && sh.weight.Load() > maxWeight
		if !overSize && !overWeight {
			return evicted
		}
		victim, ok := sh.policy.SelectVictim()
		if !ok {
			return evicted
		}
		cause := entrykit.CauseSize
		if overWeight {
			cause = entrykit.CauseWeight
		}
		e, ok := sh.entries.LoadAndDelete(victim)
		sh.policy.OnRemove(victim)
		if !ok {
			continue
		}
		sh.size.Add(-1)
		sh.weight.Add(-e.Weight)
		evicted = append(evicted, evictedEntry{key: victim, value: e.Value, cause: cause})
	}
}

// perShardMaxEntries returns shard idx's share of MaximumSize. The
// division remainder is distributed to the first (MaximumSize % shards)
// shards rather than floored away, so the sum across every shard equals
// MaximumSize exactly instead of undercounting the configured bound.
func (s *Store) perShardMaxEntries(idx int) int64 {
	if s.cfg.MaximumSize <= 0 {
		return 0
	}
	n := int64(len(s.shards))
	base, rem := s.cfg.MaximumSize/n, s.cfg.MaximumSize%n
	if int64(idx) < rem {
		return base + 1
	}
	return base
}

// perShardMaxWeight is perShardMaxEntries' weight-bound counterpart.
func (s *Store) perShardMaxWeight(idx int) int64 {
	if s.cfg.MaximumWeight <= 0 {
		return 0
	}
	n := int64(len(s.shards))
	base, rem := s.cfg.MaximumWeight/n, s.cfg.MaximumWeight%n
	if int64(idx) < rem {
		return base + 1
	}
	return base
}

func (s *Store) expireEntry(sh *shard, key string, e *entrykit.Entry) {
	sh.mu.Lock()
	removed, ok := sh.entries.LoadAndDelete(key)
	if ok {
		sh.size.Add(-1)
		sh.weight.Add(-removed.Weight)
		sh.policy.OnRemove(key)
	}
	sh.mu.Unlock()
	if !ok {
		return
	}
	s.stats.RecordEviction(entrykit.CauseExpired)
	s.emit("expire", key, e.Value, entrykit.CauseExpired)
}

// Remove deletes key, returning its prior value if any.
func (s *Store) Remove(key string) (interface{}, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	e, ok := sh.entries.LoadAndDelete(key)
	if ok {
		sh.size.Add(-1)
		sh.weight.Add(-e.Weight)
		sh.policy.OnRemove(key)
	}
	sh.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.stats.Explicit.Add(1)
	s.emit("remove", key, e.Value, entrykit.CauseExplicit)
	return e.Value, true
}

// Contains reports whether key is present and unexpired, without recording
// a hit/miss or touching access metadata.
func (s *Store) Contains(key string) bool {
	sh := s.shardFor(key)
	e, ok := sh.entries.Load(key)
	if !ok {
		return false
	}
	return !e.IsExpired(s.now())
}

// Size returns the total number of entries across all shards.
func (s *Store) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.size.Load()
	}
	return total
}

// Weight returns the total aggregate weight across all shards.
func (s *Store) Weight() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.weight.Load()
	}
	return total
}

// Stats returns a snapshot of cache-wide counters.
func (s *Store) Stats() entrykit.Snapshot { return s.stats.Snapshot() }

// Clear removes every entry from every shard.
func (s *Store) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.entries.Clear()
		sh.size.Store(0)
		sh.weight.Store(0)
		sh.mu.Unlock()
	}
	s.stats.Reset()
}

// GetAll looks up each of keys, semantically equivalent to iterated
// singleton Get calls.
func (s *Store) GetAll(ctx context.Context, keys []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return out, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// PutAll installs every key/value pair in kv, semantically equivalent to
// iterated singleton Put calls.
func (s *Store) PutAll(kv map[string]interface{}) error {
	for k, v := range kv {
		if err := s.put(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Close rejects further operations. In-flight requests are not tracked by
// the store itself (callers hold no handle across Close); the facade layer
// (meridian.Cache) is responsible for any grace-period drain on top of
// this.
func (s *Store) Close() error {
	s.closed.Store(true)
	close(s.Events)
	return nil
}

// Shards exposes the shard count, used by the maintenance worker to size
// its drain loop and by the router to partition migration scans.
func (s *Store) Shards() int { return len(s.shards) }

// DrainJournal drains shard i's access journal, applying each recorded key
// to that shard's policy.OnAccess and Entry.ApplyAccess in order. Called
// only by the maintenance worker; never on the hot path.
func (s *Store) DrainJournal(i int) {
	sh := s.shards[i]
	now := s.now()
	keys := sh.journal.Drain()
	if len(keys) == 0 {
		return
	}
	sh.mu.Lock()
	for _, key := range keys {
		sh.policy.OnAccess(key)
	}
	sh.mu.Unlock()
	for _, key := range keys {
		if e, ok := sh.entries.Load(key); ok {
			e.ApplyAccess(now)
		}
	}
}

// SweepExpired proactively removes expired entries from shard i, the
// maintenance worker's periodic expiration sweep.
func (s *Store) SweepExpired(i int) {
	sh := s.shards[i]
	now := s.now()
	sh.entries.Range(func(key string, e *entrykit.Entry) bool {
		if e.IsExpired(now) {
			s.expireEntry(sh, key, e)
		}
		return true
	})
}

func defaultPolicy(capacity int) policy.Policy {
	// Placeholder swapped by meridian.Builder with the profile's chosen
	// implementation; storekit itself stays eviction-policy-agnostic
	// beyond needing *some* Policy, so a bare New(...) here must not be
	// reached in practice (Builder always supplies NewPolicy).
	return nullPolicy{}
}

// nullPolicy never selects a victim; used only as a config-time
// placeholder, never reachable when the store is built through
// meridian.Builder.
type nullPolicy struct{}

func (nullPolicy) OnAdd(string, int64)         {}
func (nullPolicy) OnAccess(string)             {}
func (nullPolicy) OnRemove(string)              {}
func (nullPolicy) SelectVictim() (string, bool) { return "", false }
func (nullPolicy) Len() int                     { return 0 }
