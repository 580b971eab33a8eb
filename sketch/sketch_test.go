// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package sketch

import (
	"fmt"
	"sync"
	"testing"
)

func TestFrequencyTracksIncrements(t *testing.T) {
	s := New(256)
	for i := 0; i < 5; i++ {
		s.Increment("hot")
	}
	if got := s.Frequency("hot"); got < 5 {
		t.Fatalf("Frequency() = %d, want >= 5", got)
	}
	if got := s.Frequency("cold"); got != 0 {
		t.Fatalf("Frequency(cold) = %d, want 0", got)
	}
}

func TestFrequencySaturatesAt15(t *testing.T) {
	s := New(64)
	for i := 0; i < 100; i++ {
		s.Increment("k")
	}
	if got := s.Frequency("k"); got != maxCounter {
		t.Fatalf("Frequency() = %d, want %d", got, maxCounter)
	}
}

func TestFrequencyNeverExceedsTrueCount(t *testing.T) {
	s := New(1024)
	keys := make([]string, 50)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}
	counts := map[string]int{}
	for i, k := range keys {
		n := i % 10
		for j := 0; j < n; j++ {
			s.Increment(k)
			counts[k]++
		}
	}
	for k, want := range counts {
		if got := s.Frequency(k); int(got) > want && got != maxCounter {
			t.Fatalf("Frequency(%s) = %d exceeds true count %d", k, got, want)
		}
	}
}

func TestAgingHalvesCounters(t *testing.T) {
	s := New(10) // resetThreshold = 10
	for i := 0; i < 10; i++ {
		s.Increment("k")
	}
	// The 10th increment should have triggered a halving.
	if got := s.Frequency("k"); got >= 10 {
		t.Fatalf("Frequency() = %d, expected aging to have reduced it", got)
	}
}

func TestConcurrentIncrement(t *testing.T) {
	s := New(1024)
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Increment("shared")
			}
		}()
	}
	wg.Wait()
	if got := s.Frequency("shared"); got == 0 {
		t.Fatal("expected nonzero frequency after concurrent increments")
	}
}
