// Package maintenance runs meridian's background worker: draining each
// shard's access journal into its eviction policy, sweeping expired
// entries, and dispatching journaled lifecycle events to listeners, all
// off the hot path. A small bounded worker pool drains shards
// concurrently rather than serially, so the worker scales with shard
// count instead of becoming a single ticking bottleneck.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package maintenance

import (
	"sync"
	"time"

	"github.com/agilira/meridian/storekit"
	"github.com/agilira/meridian/support"
)

// Store is the subset of *storekit.Store the worker depends on, kept as an
// interface so maintenance can be tested without a full store.
type Store interface {
	Shards() int
	DrainJournal(i int)
	SweepExpired(i int)
}

// Config configures a Worker.
type Config struct {
	// DrainInterval controls how often per-shard access journals are
	// drained into their eviction policies. Zero picks a default.
	DrainInterval time.Duration
	// ExpirySweepInterval controls how often each shard is scanned for
	// expired entries outstanding no active reader would otherwise find.
	// Zero picks a default.
	ExpirySweepInterval time.Duration
	// Concurrency bounds how many shards are drained/swept at once. Zero
	// picks defaultConcurrency (4) job runners.
	Concurrency int

	Logger support.Logger
}

const (
	defaultDrainInterval  = 50 * time.Millisecond
	defaultSweepInterval  = 1 * time.Second
	defaultConcurrency    = 4
)

func (c *Config) setDefaults() {
	if c.DrainInterval <= 0 {
		c.DrainInterval = defaultDrainInterval
	}
	if c.ExpirySweepInterval <= 0 {
		c.ExpirySweepInterval = defaultSweepInterval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.Logger == nil {
		c.Logger = support.NoOpLogger{}
	}
}

// Worker periodically drains shard journals and sweeps expired entries.
// One Worker serves one Store for the Store's lifetime.
type Worker struct {
	cfg   Config
	store Store

	drainTicker *time.Ticker
	sweepTicker *time.Ticker
	done        chan struct{}
	wg          sync.WaitGroup

	jobs chan func()
}

// New creates a Worker for store. Call Start to begin background work and
// Close to stop it.
func New(store Store, cfg Config) *Worker {
	cfg.setDefaults()
	return &Worker{
		cfg:   cfg,
		store: store,
		done:  make(chan struct{}),
		jobs:  make(chan func(), store.Shards()),
	}
}

// Start launches the background goroutines: a fixed pool of job runners
// plus the two tickers that feed them work. Safe to call once.
func (w *Worker) Start() {
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.runJobs()
	}

	w.drainTicker = time.NewTicker(w.cfg.DrainInterval)
	w.sweepTicker = time.NewTicker(w.cfg.ExpirySweepInterval)

	w.wg.Add(1)
	go w.loop()
}

func (w *Worker) runJobs() {
	defer w.wg.Done()
	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			job()
		case <-w.done:
			// Drain any already-queued jobs before exiting so a Close
			// during a tick doesn't leave a journal half-drained.
			for {
				select {
				case job := <-w.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	defer close(w.jobs)

	for {
		select {
		case <-w.drainTicker.C:
			w.scheduleEach(w.store.DrainJournal)
		case <-w.sweepTicker.C:
			w.scheduleEach(w.store.SweepExpired)
		case <-w.done:
			return
		}
	}
}

func (w *Worker) scheduleEach(fn func(int)) {
	for i := 0; i < w.store.Shards(); i++ {
		i := i
		select {
		case w.jobs <- func() { fn(i) }:
		case <-w.done:
			return
		}
	}
}

// Close stops the worker and waits for in-flight drain/sweep jobs to
// finish. Safe to call once.
func (w *Worker) Close() error {
	close(w.done)
	if w.drainTicker != nil {
		w.drainTicker.Stop()
	}
	if w.sweepTicker != nil {
		w.sweepTicker.Stop()
	}
	w.wg.Wait()
	return nil
}

// DispatchEvents drains store's Events channel and fans each event out to
// listeners, until the channel is closed or stop fires. Intended to run in
// its own goroutine alongside the ticking worker above.
func DispatchEvents(events <-chan storekit.Event, listeners []storekit.Listener, stop <-chan struct{}) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			dispatch(ev, listeners)
		case <-stop:
			// Drain whatever is already buffered before exiting: delivery
			// is at-least-once under shutdown, so queued events must still
			// reach listeners even once stop has fired.
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					dispatch(ev, listeners)
				default:
					return
				}
			}
		}
	}
}

func dispatch(ev storekit.Event, listeners []storekit.Listener) {
	for _, l := range listeners {
		switch ev.Kind {
		case "put":
			l.OnPut(ev.Key, ev.Value)
		case "hit":
			l.OnAccess(ev.Key, ev.Value)
		case "evict", "expire", "remove":
			l.OnEvict(ev.Key, ev.Value, ev.Cause)
		}
	}
}
