// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package weighted

import (
	"testing"

	"github.com/agilira/meridian/policy/lru"
)

func TestOverWeightTracksAggregate(t *testing.T) {
	p := New(lru.New(10), 100)

	p.OnAdd("a", 40)
	p.OnAdd("b", 40)
	if p.OverWeight() {
		t.Fatal("80 <= 100 should not be over weight")
	}

	p.OnAdd("c", 30)
	if !p.OverWeight() {
		t.Fatal("110 > 100 should be over weight")
	}

	p.OnRemove("a")
	if p.OverWeight() {
		t.Fatal("70 <= 100 should not be over weight after removing a")
	}
}

func TestSelectVictimDelegatesToPrimary(t *testing.T) {
	primary := lru.New(10)
	p := New(primary, 1000)
	p.OnAdd("a", 1)
	p.OnAdd("b", 1)

	victim, ok := p.SelectVictim()
	if !ok || victim != "a" {
		t.Fatalf("SelectVictim() = %q, want %q (delegated to primary LRU)", victim, "a")
	}
}
