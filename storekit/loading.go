// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package storekit

import (
	"context"
	"sync"
	"sync/atomic"
)

// call is one in-flight loader invocation. A done channel broadcasts
// completion to every waiter without spawning a goroutine per waiter, and
// atomic.Value wrappers let val/err hold nil without panicking.
type call struct {
	wg   sync.WaitGroup
	val  atomic.Value // *valueBox
	err  atomic.Value // *errorBox
	done chan struct{}
}

type valueBox struct{ v interface{} }
type errorBox struct{ err error }

type negativeEntry struct {
	err      error
	expireAt int64
}

// loadSingleFlight performs the single-flight loader call for key: the
// first caller for a given key executes the loader, every concurrent
// caller for the same key waits on the shared result.
func (s *Store) loadSingleFlight(ctx context.Context, sh *shard, key string) (interface{}, bool, error) {
	if s.cfg.NegativeCacheTTL > 0 {
		if v, ok := sh.inflight.Load(negKeyFor(key)); ok {
			neg := v.(negativeEntry)
			if s.now() <= neg.expireAt {
				return nil, false, neg.err
			}
			sh.inflight.Delete(negKeyFor(key))
		}
	}

	fresh := &call{done: make(chan struct{})}
	fresh.wg.Add(1)

	actual, loaded := sh.inflight.LoadOrStore(key, fresh)
	flight := actual.(*call)

	if loaded {
		select {
		case <-flight.done:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		vb, _ := flight.val.Load().(*valueBox)
		eb, _ := flight.err.Load().(*errorBox)
		if eb != nil && eb.err != nil {
			return nil, false, eb.err
		}
		if vb != nil {
			return vb.v, true, nil
		}
		return nil, false, nil
	}

	defer func() {
		close(flight.done)
		flight.wg.Done()
		sh.inflight.Delete(key)
	}()

	start := s.now()
	value, err := s.invokeLoader(ctx, key)
	s.stats.LoadTimeNanos.Add(uint64(s.now() - start))

	flight.val.Store(&valueBox{v: value})
	flight.err.Store(&errorBox{err: err})

	if err != nil {
		s.stats.LoadFailures.Add(1)
		if s.cfg.NegativeCacheTTL > 0 {
			sh.inflight.Store(negKeyFor(key), negativeEntry{
				err:      err,
				expireAt: s.now() + s.cfg.NegativeCacheTTL,
			})
		}
		s.emit("load_failure", key, nil, "")
		return nil, false, err
	}

	s.stats.Loads.Add(1)
	if err := s.put(key, value); err != nil {
		return value, true, nil
	}
	s.emit("load_success", key, value, "")
	return value, true, nil
}

// invokeLoader calls the configured loader with panic recovery, translating
// a panicking loader into a PanicError instead of crashing the caller.
func (s *Store) invokeLoader(ctx context.Context, key string) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Key: key, Recovered: r}
		}
	}()
	return s.cfg.Loader(ctx, key)
}

// refresh reloads a stale-but-unexpired entry in the background (refresh-
// ahead). A failed refresh leaves the existing entry untouched: staleness
// is not an error condition, only a trigger to retry the load.
func (s *Store) refresh(sh *shard, key string) {
	if _, loaded := sh.inflight.LoadOrStore("refresh:"+key, struct{}{}); loaded {
		return
	}
	defer sh.inflight.Delete("refresh:" + key)

	value, err := s.invokeLoader(context.Background(), key)
	if err != nil {
		s.stats.LoadFailures.Add(1)
		return
	}
	s.stats.Loads.Add(1)
	_ = s.put(key, value)
	s.emit("load_success", key, value, "")
}

func negKeyFor(key string) string { return "neg:" + key }

// PanicError reports that a loader call panicked; Recovered holds the
// recovered value for diagnostics.
type PanicError struct {
	Key       string
	Recovered interface{}
}

func (e *PanicError) Error() string {
	return "storekit: loader panicked for key " + e.Key
}
