// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package maintenance

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/agilira/meridian/entrykit"
	"github.com/agilira/meridian/storekit"
)

type fakeStore struct {
	shards int
	drains atomic.Int64
	sweeps atomic.Int64
}

func (f *fakeStore) Shards() int        { return f.shards }
func (f *fakeStore) DrainJournal(i int) { f.drains.Add(1) }
func (f *fakeStore) SweepExpired(i int) { f.sweeps.Add(1) }

func TestWorkerDrainsEveryShardPeriodically(t *testing.T) {
	fs := &fakeStore{shards: 4}
	w := New(fs, Config{DrainInterval: 5 * time.Millisecond, ExpirySweepInterval: time.Hour, Concurrency: 2})
	w.Start()
	defer w.Close()

	deadline := time.After(500 * time.Millisecond)
	for fs.drains.Load() < 4 {
		select {
		case <-deadline:
			t.Fatalf("drains = %d after timeout, want >= 4", fs.drains.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorkerSweepsExpiredPeriodically(t *testing.T) {
	fs := &fakeStore{shards: 2}
	w := New(fs, Config{DrainInterval: time.Hour, ExpirySweepInterval: 5 * time.Millisecond, Concurrency: 2})
	w.Start()
	defer w.Close()

	deadline := time.After(500 * time.Millisecond)
	for fs.sweeps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeps = %d after timeout, want >= 2", fs.sweeps.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCloseStopsFurtherWork(t *testing.T) {
	fs := &fakeStore{shards: 1}
	w := New(fs, Config{DrainInterval: 2 * time.Millisecond, ExpirySweepInterval: time.Hour, Concurrency: 1})
	w.Start()
	time.Sleep(20 * time.Millisecond)
	w.Close()

	after := fs.drains.Load()
	time.Sleep(20 * time.Millisecond)
	if fs.drains.Load() != after {
		t.Fatalf("drains kept increasing after Close: %d -> %d", after, fs.drains.Load())
	}
}

type capturingListener struct {
	puts    []string
	evicted []string
}

func (c *capturingListener) OnEvict(key string, value interface{}, cause entrykit.Cause) {
	c.evicted = append(c.evicted, key)
}
func (c *capturingListener) OnPut(key string, value interface{})    { c.puts = append(c.puts, key) }
func (c *capturingListener) OnAccess(key string, value interface{}) {}

func TestDispatchEventsFansOutPutsAndEvictions(t *testing.T) {
	events := make(chan storekit.Event, 2)
	stop := make(chan struct{})
	listener := &capturingListener{}

	events <- storekit.Event{Kind: "put", Key: "a", Value: 1}
	events <- storekit.Event{Kind: "evict", Key: "b", Value: 2, Cause: entrykit.CauseSize}
	close(events)

	DispatchEvents(events, []storekit.Listener{listener}, stop)

	if len(listener.puts) != 1 || listener.puts[0] != "a" {
		t.Fatalf("puts = %v, want [a]", listener.puts)
	}
	if len(listener.evicted) != 1 || listener.evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", listener.evicted)
	}
}

func TestDispatchEventsStopsOnSignal(t *testing.T) {
	events := make(chan storekit.Event)
	stop := make(chan struct{})
	close(stop)

	done := make(chan struct{})
	go func() {
		DispatchEvents(events, nil, stop)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DispatchEvents did not return after stop was closed")
	}
}
