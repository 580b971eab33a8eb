// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package fifo

import (
	"fmt"
	"testing"
)

func TestVictimIsOldestEnqueued(t *testing.T) {
	p := New(10)
	p.OnAdd("a", 1)
	p.OnAdd("b", 1)
	p.OnAdd("c", 1)
	p.OnAccess("a") // must not change FIFO order

	victim, ok := p.SelectVictim()
	if !ok || victim != "a" {
		t.Fatalf("SelectVictim() = %q, want %q", victim, "a")
	}
	p.OnRemove("a")

	victim, ok = p.SelectVictim()
	if !ok || victim != "b" {
		t.Fatalf("SelectVictim() = %q, want %q", victim, "b")
	}
}

func TestCompactionReclaimsDeadSlots(t *testing.T) {
	p := New(4)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("k%d", i)
		p.OnAdd(key, 1)
		p.OnRemove(key)
	}
	if len(p.queue) > 20 {
		t.Fatalf("queue length = %d, compaction should bound growth", len(p.queue))
	}
}
