// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package cluster

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agilira/meridian/ring"
)

type fakeHealth struct {
	mu   sync.Mutex
	down map[string]bool
}

func (f *fakeHealth) Check(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down[addr] {
		return fmt.Errorf("down")
	}
	return nil
}

func (f *fakeHealth) setDown(addr string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down == nil {
		f.down = map[string]bool{}
	}
	f.down[addr] = down
}

func TestJoinAddsNodeToRing(t *testing.T) {
	r := ring.New()
	c := New(r, Config{})
	c.Join(Node{ID: "a", Addr: "a:1"})

	if got := r.Nodes(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("Nodes() = %v, want [a]", got)
	}
	view := c.View()
	if len(view.Nodes) != 1 || view.Nodes[0].State != StateHealthy {
		t.Fatalf("View() = %+v, want one healthy node", view)
	}
}

func TestLeaveRemovesNodeFromRing(t *testing.T) {
	r := ring.New()
	c := New(r, Config{})
	c.Join(Node{ID: "a", Addr: "a:1"})
	c.Leave("a")

	if got := r.Nodes(); len(got) != 0 {
		t.Fatalf("Nodes() = %v, want empty after Leave", got)
	}
}

func TestUnhealthyNodeIsSuspectedThenFailed(t *testing.T) {
	r := ring.New()
	health := &fakeHealth{}
	c := New(r, Config{
		CheckInterval: 5 * time.Millisecond,
		SuspectAfter:  2,
		GraceWindow:   1,
	})
	c.cfg.Health = health
	c.Join(Node{ID: "a", Addr: "a:1"})
	health.setDown("a:1", true)

	c.Start()
	defer c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := r.OwnerOf("anykey"); !ok {
			return // node removed from ring: failure detected
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("node was never removed from the ring after repeated failed checks")
}

func TestRecoveredNodeReturnsToHealthy(t *testing.T) {
	r := ring.New()
	health := &fakeHealth{}
	c := New(r, Config{CheckInterval: 5 * time.Millisecond, SuspectAfter: 100})
	c.cfg.Health = health
	c.Join(Node{ID: "a", Addr: "a:1"})

	c.Start()
	defer c.Close()
	time.Sleep(30 * time.Millisecond)

	view := c.View()
	if len(view.Nodes) != 1 || view.Nodes[0].State != StateHealthy {
		t.Fatalf("View() = %+v, want node to remain healthy", view)
	}
}
