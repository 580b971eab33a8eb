// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package lfu

import "testing"

func TestVictimIsLeastFrequentlyUsed(t *testing.T) {
	p := New(10)
	p.OnAdd("a", 1)
	p.OnAdd("b", 1)
	p.OnAdd("c", 1)

	p.OnAccess("a")
	p.OnAccess("a")
	p.OnAccess("b")

	// c has frequency 1, the minimum; it should be the victim.
	victim, ok := p.SelectVictim()
	if !ok || victim != "c" {
		t.Fatalf("SelectVictim() = %q, want %q", victim, "c")
	}
}

func TestVictimAdvancesAfterBucketEmpties(t *testing.T) {
	p := New(10)
	p.OnAdd("a", 1)
	p.OnAdd("b", 1)
	p.OnAccess("a")

	p.OnRemove("b") // empties frequency-1 bucket

	victim, ok := p.SelectVictim()
	if !ok || victim != "a" {
		t.Fatalf("SelectVictim() = %q, want %q", victim, "a")
	}
}

func TestRemoveUntrackedKeyIsNoOp(t *testing.T) {
	p := New(2)
	p.OnRemove("nope") // must not panic
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
}
