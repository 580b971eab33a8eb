// cache.go: the meridian Cache facade, wiring storekit, the eviction
// policies, the maintenance worker, and configuration profiles into the
// single type applications depend on.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"context"
	"sync"

	"github.com/agilira/meridian/entrykit"
	"github.com/agilira/meridian/maintenance"
	"github.com/agilira/meridian/policy"
	"github.com/agilira/meridian/policy/fifo"
	"github.com/agilira/meridian/policy/lfu"
	"github.com/agilira/meridian/policy/lru"
	"github.com/agilira/meridian/policy/tinylfu"
	"github.com/agilira/meridian/policy/weighted"
	"github.com/agilira/meridian/profile"
	"github.com/agilira/meridian/storekit"
)

// Cache is meridian's public, thread-safe in-memory cache. All methods are
// safe for concurrent use from any number of goroutines.
type Cache struct {
	store   *storekit.Store
	worker  *maintenance.Worker
	cfg     Config
	closeWG sync.WaitGroup
	stop    chan struct{}
}

// New builds a Cache from cfg, applying Validate's normalization and
// defaults. Background maintenance (journal draining, expiration sweeps,
// listener dispatch) starts immediately and runs until Close.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := storekit.New(storekit.Config{
		MaximumSize:       cfg.MaximumSize,
		MaximumWeight:     cfg.MaximumWeight,
		Weigher:           cfg.Weigher,
		ExpireAfterWrite:  int64(cfg.ExpireAfterWrite),
		ExpireAfterAccess: int64(cfg.ExpireAfterAccess),
		RefreshAfterWrite: int64(cfg.RefreshAfterWrite),
		Shards:            cfg.Shards,
		NewPolicy:         policyFactory(cfg),
		Loader:            cfg.Loader,
		NegativeCacheTTL:  int64(cfg.NegativeCacheTTL),
		Listeners:         cfg.Listeners,
		Logger:            cfg.Logger,
		Time:              cfg.Time,
		Metrics:           cfg.Metrics,
	})

	worker := maintenance.New(store, maintenance.Config{Logger: cfg.Logger})
	worker.Start()

	c := &Cache{store: store, worker: worker, cfg: cfg, stop: make(chan struct{})}
	c.closeWG.Add(1)
	go func() {
		defer c.closeWG.Done()
		maintenance.DispatchEvents(store.Events, cfg.Listeners, c.stop)
	}()
	return c, nil
}

// policyFactory resolves cfg.Algorithm and cfg.MaximumWeight into a
// storekit.PolicyFactory, composing the weighted wrapper whenever a weight
// bound is configured alongside a primary ordering policy.
func policyFactory(cfg Config) storekit.PolicyFactory {
	build := func(capacity int) policy.Policy {
		switch cfg.Algorithm {
		case profile.AlgorithmLRU:
			return lru.New(capacity)
		case profile.AlgorithmFIFO:
			return fifo.New(capacity)
		case profile.AlgorithmLFU:
			return lfu.New(capacity)
		default:
			return tinylfu.New(capacity)
		}
	}
	if cfg.MaximumWeight <= 0 {
		return build
	}
	return func(capacity int) policy.Policy {
		return weighted.New(build(capacity), cfg.MaximumWeight)
	}
}

// Get returns the value for key, loading it via the configured Loader on a
// miss if one is set.
func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool, error) {
	if key == "" {
		return nil, false, NewErrEmptyKey("Get")
	}
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, translateStoreErr(err)
	}
	return v, ok, nil
}

// Set unconditionally stores key/value, evicting as needed to satisfy the
// configured bounds.
func (c *Cache) Set(key string, value interface{}) error {
	if key == "" {
		return NewErrEmptyKey("Set")
	}
	return translateStoreErr(c.store.Put(key, value))
}

// Delete removes key, returning whether it was present.
func (c *Cache) Delete(key string) bool {
	_, ok := c.store.Remove(key)
	return ok
}

// Has reports whether key is present and unexpired, without side effects.
func (c *Cache) Has(key string) bool { return c.store.Contains(key) }

// Len returns the current number of entries.
func (c *Cache) Len() int64 { return c.store.Size() }

// Weight returns the current aggregate weight. Without a Weigher each entry
// weighs 1, so Weight then equals Len.
func (c *Cache) Weight() int64 { return c.store.Weight() }

// Stats returns a snapshot of cache-wide counters.
func (c *Cache) Stats() entrykit.Snapshot { return c.store.Stats() }

// Clear removes every entry.
func (c *Cache) Clear() { c.store.Clear() }

// GetAll looks up every key in keys.
func (c *Cache) GetAll(ctx context.Context, keys []string) (map[string]interface{}, error) {
	out, err := c.store.GetAll(ctx, keys)
	return out, translateStoreErr(err)
}

// PutAll stores every key/value pair in kv.
func (c *Cache) PutAll(kv map[string]interface{}) error {
	return translateStoreErr(c.store.PutAll(kv))
}

// Close stops background maintenance and rejects further operations. It
// waits for in-flight listener dispatch to drain, or for ctx to be done,
// whichever comes first.
func (c *Cache) Close(ctx context.Context) error {
	if err := c.worker.Close(); err != nil {
		return NewErrInternal("Close", err)
	}
	close(c.stop)
	if err := c.store.Close(); err != nil {
		return translateStoreErr(err)
	}

	done := make(chan struct{})
	go func() {
		c.closeWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func translateStoreErr(err error) error {
	switch err {
	case nil:
		return nil
	case storekit.ErrClosed:
		return NewErrCacheClosed("store")
	case storekit.ErrCapacityExceeded:
		return NewErrCacheFull(0, 0)
	default:
		return err
	}
}
