// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package storekit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/agilira/meridian/policy"
	"github.com/agilira/meridian/policy/lfu"
	"github.com/agilira/meridian/policy/lru"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	if err := s.Put("a", 1); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(context.Background(), "a")
	if err != nil || !ok || v != 1 {
		t.Fatalf("Get() = %v, %v, %v", v, ok, err)
	}
}

func TestGetMissReportsNotFound(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("Get() = _, %v, %v, want false, nil", ok, err)
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	s.Put("a", 1)
	v, ok := s.Remove("a")
	if !ok || v != 1 {
		t.Fatalf("Remove() = %v, %v", v, ok)
	}
	if s.Contains("a") {
		t.Fatal("expected key gone after Remove")
	}
}

func TestCapacityEvictionKeepsSizeBounded(t *testing.T) {
	s := New(Config{MaximumSize: 4, Shards: 1, NewPolicy: lruFactory})
	for i := 0; i < 10; i++ {
		s.Put(keyOf(i), i)
	}
	if s.Size() > 4 {
		t.Fatalf("Size() = %d, want <= 4", s.Size())
	}
}

func TestGetOrLoadDeduplicatesConcurrentMisses(t *testing.T) {
	var calls atomic.Int64
	loader := func(ctx context.Context, key string) (interface{}, error) {
		calls.Add(1)
		return "loaded:" + key, nil
	}
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory, Loader: loader})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Get(context.Background(), "shared")
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want exactly 1", calls.Load())
	}
	v, ok, _ := s.Get(context.Background(), "shared")
	if !ok || v != "loaded:shared" {
		t.Fatalf("Get() = %v, %v, want loaded value", v, ok)
	}
}

func TestLoaderErrorIsNotCachedWithoutNegativeTTL(t *testing.T) {
	wantErr := errors.New("boom")
	attempts := 0
	loader := func(ctx context.Context, key string) (interface{}, error) {
		attempts++
		return nil, wantErr
	}
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory, Loader: loader})

	_, _, err := s.Get(context.Background(), "k")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	s.Get(context.Background(), "k")
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2 (no negative caching configured)", attempts)
	}
}

func TestLoaderErrorIsCachedWithNegativeTTL(t *testing.T) {
	wantErr := errors.New("boom")
	attempts := 0
	loader := func(ctx context.Context, key string) (interface{}, error) {
		attempts++
		return nil, wantErr
	}
	s := New(Config{
		MaximumSize:      100,
		Shards:           1,
		NewPolicy:        lruFactory,
		Loader:           loader,
		NegativeCacheTTL: int64(1e18), // effectively "forever" for this test
	})

	s.Get(context.Background(), "k")
	s.Get(context.Background(), "k")
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (negative cache should suppress the retry)", attempts)
	}
}

func TestPanicLoaderIsRecoveredAsError(t *testing.T) {
	loader := func(ctx context.Context, key string) (interface{}, error) {
		panic("loader exploded")
	}
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory, Loader: loader})

	_, ok, err := s.Get(context.Background(), "k")
	if ok || err == nil {
		t.Fatalf("Get() = _, %v, %v, want an error and ok=false", ok, err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
}

func TestExpiredEntryIsTreatedAsMiss(t *testing.T) {
	clk := &fakeClock{}
	s := New(Config{
		MaximumSize:      100,
		Shards:           1,
		NewPolicy:        lruFactory,
		ExpireAfterWrite: 10,
		Time:             clk,
	})
	s.Put("a", 1)
	clk.set(11)
	_, ok, _ := s.Get(context.Background(), "a")
	if ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestStatsTrackHitsAndMisses(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	s.Put("a", 1)
	s.Get(context.Background(), "a")
	s.Get(context.Background(), "missing")

	snap := s.Stats()
	if snap.Hits != 1 || snap.Misses != 1 {
		t.Fatalf("Stats() = %+v, want 1 hit and 1 miss", snap)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 4, NewPolicy: lruFactory})
	for i := 0; i < 20; i++ {
		s.Put(keyOf(i), i)
	}
	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("Size() = %d after Clear(), want 0", s.Size())
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	s.Close()
	if err := s.Put("a", 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Put() after Close = %v, want ErrClosed", err)
	}
	if _, _, err := s.Get(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Get() after Close = %v, want ErrClosed", err)
	}
}

// TestConcurrentPutUnderCapacityPressureDoesNotRaceThePolicy regression-tests
// the bug where enforceBounds ran its SelectVictim/OnRemove loop outside
// sh.mu: with lfu.Policy's plain, unsynchronized frequency-bucket maps, that
// let one goroutine's eviction scan run concurrently with another
// goroutine's OnAdd on the same shard, corrupting the map (or crashing with
// "concurrent map read and map write" under the race detector). Forcing
// Shards: 1 puts every key on the one shard under maximal contention.
func TestConcurrentPutUnderCapacityPressureDoesNotRaceThePolicy(t *testing.T) {
	s := New(Config{MaximumSize: 8, Shards: 1, NewPolicy: lfuFactory})

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Put(keyOf(g*1000+i), i)
			}
		}(g)
	}
	wg.Wait()

	if s.Size() > 8 {
		t.Fatalf("Size() = %d, want <= 8 after concurrent puts under capacity pressure", s.Size())
	}
}

// TestShardedStoreEnforcesExactTotalCapacity runs the capacity-100/k0..k199
// scenario through the real sharded Store (not a bare policy.Policy in
// isolation). perShardMaxEntries distributes MaximumSize's remainder across
// shards so the sum of every shard's quota equals MaximumSize exactly;
// without that, floor division alone would leave the store holding fewer
// than 100 entries. With Shards: 1 every key also lands on the same LRU
// list, so eviction order is exact and the surviving set is precisely the
// last 100 keys inserted, matching the scenario's literal assertion.
func TestShardedStoreEnforcesExactTotalCapacity(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 1, NewPolicy: lruFactory})
	for i := 0; i < 200; i++ {
		s.Put(keyOf(i), i)
	}

	if got := s.Size(); got != 100 {
		t.Fatalf("Size() = %d, want exactly 100", got)
	}
	for i := 0; i < 100; i++ {
		if s.Contains(keyOf(i)) {
			t.Fatalf("key %d (%s) still present, want evicted", i, keyOf(i))
		}
	}
	for i := 100; i < 200; i++ {
		if !s.Contains(keyOf(i)) {
			t.Fatalf("key %d (%s) missing, want present", i, keyOf(i))
		}
	}
}

// TestShardedStoreCapacityAcrossManyShardsIsExactButUnordered runs the same
// insert of 200 keys across 16 shards: multiple independent per-shard LRU
// policies mean eviction order is only an approximation of true global
// recency (surviving keys are an artifact of hash distribution, not
// necessarily the literal last 100 inserted), but the total entry count
// bound stays exact thanks to the remainder-distributed per-shard quotas.
func TestShardedStoreCapacityAcrossManyShardsIsExactButUnordered(t *testing.T) {
	s := New(Config{MaximumSize: 100, Shards: 16, NewPolicy: lruFactory})
	for i := 0; i < 200; i++ {
		s.Put(keyOf(i), i)
	}
	if got := s.Size(); got != 100 {
		t.Fatalf("Size() = %d, want exactly 100 even split across 16 shards", got)
	}
}

func lfuFactory(capacity int) policy.Policy { return lfu.New(capacity) }

func lruFactory(capacity int) policy.Policy { return lru.New(capacity) }

func keyOf(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%len(letters)]) + string(rune('0'+i/len(letters)))
}

type fakeClock struct {
	now atomic.Int64
}

func (c *fakeClock) Now() int64  { return c.now.Load() }
func (c *fakeClock) set(n int64) { c.now.Store(n) }
