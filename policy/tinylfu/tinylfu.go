// Package tinylfu implements W-TinyLFU, meridian's default eviction policy:
// a small admission window managed as LRU, a main region managed as
// Segmented LRU (protected + probation), and admission governed by a
// shared frequency sketch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package tinylfu

import (
	"github.com/agilira/meridian/policy/lru"
	"github.com/agilira/meridian/sketch"
)

type region uint8

const (
	regionWindow region = iota
	regionProbation
	regionProtected
)

// protectedRatio is the fraction of the main region reserved for protected
// (twice-promoted) entries; the remainder is probation. 80/20 is the
// standard Segmented-LRU split.
const protectedRatio = 0.8

// windowRatio is the fraction of total capacity given to the admission
// window, sized to roughly 1% of capacity.
const windowRatio = 0.01

// Policy implements W-TinyLFU.
type Policy struct {
	window    *lru.Policy
	probation *lru.Policy
	protected *lru.Policy
	location  map[string]region
	sketch    *sketch.Sketch

	windowCap, probationCap, protectedCap int

	// pending holds a key decided for eviction by the last OnAdd/OnAccess
	// call (either a main-region incumbent that lost admission, or the
	// incoming candidate itself when it lost). SelectVictim consumes it
	// before falling back to scanning a region tail.
	pending   string
	hasPending bool
}

// New creates a W-TinyLFU policy sized for capacity entries.
func New(capacity int) *Policy {
	if capacity < 1 {
		capacity = 1
	}
	windowCap := int(float64(capacity) * windowRatio)
	if windowCap < 1 {
		windowCap = 1
	}
	mainCap := capacity - windowCap
	if mainCap < 1 {
		mainCap = 1
	}
	protectedCap := int(float64(mainCap) * protectedRatio)
	if protectedCap < 1 {
		protectedCap = 1
	}
	probationCap := mainCap - protectedCap
	if probationCap < 1 {
		probationCap = 1
	}

	return &Policy{
		window:       lru.New(windowCap),
		probation:    lru.New(probationCap),
		protected:    lru.New(protectedCap),
		location:     make(map[string]region, capacity),
		sketch:       sketch.New(capacity),
		windowCap:    windowCap,
		probationCap: probationCap,
		protectedCap: protectedCap,
	}
}

// OnAdd admits key into the window, then runs admission if the window has
// overflowed.
func (p *Policy) OnAdd(key string, weight int64) {
	p.sketch.Increment(key)
	if _, ok := p.location[key]; ok {
		p.OnAccess(key)
		return
	}
	p.window.OnAdd(key, weight)
	p.location[key] = regionWindow

	if p.window.Len() > p.windowCap {
		p.demoteFromWindow()
	}
}

// demoteFromWindow evicts the window's LRU victim and either admits it to
// probation directly (room available) or runs the frequency comparison
// against probation's own victim: the candidate is admitted only if its
// sketched frequency exceeds that of the main-region victim it would
// replace; ties favor the incumbent.
func (p *Policy) demoteFromWindow() {
	candidate, ok := p.window.SelectVictim()
	if !ok {
		return
	}
	p.window.OnRemove(candidate)
	delete(p.location, candidate)

	if p.probation.Len() < p.probationCap {
		p.admitToProbation(candidate)
		return
	}

	incumbent, ok := p.probation.SelectVictim()
	if !ok {
		p.admitToProbation(candidate)
		return
	}

	if p.sketch.Frequency(candidate) > p.sketch.Frequency(incumbent) {
		p.probation.OnRemove(incumbent)
		delete(p.location, incumbent)
		p.admitToProbation(candidate)
		p.setPending(incumbent)
	} else {
		// Tie or loss: the incumbent is favored, the candidate is rejected
		// outright and reported as the key to evict from the store.
		p.setPending(candidate)
	}
}

func (p *Policy) admitToProbation(key string) {
	p.probation.OnAdd(key, 0)
	p.location[key] = regionProbation
}

func (p *Policy) setPending(key string) {
	p.pending = key
	p.hasPending = true
}

// OnAccess increments the key's estimated frequency and promotes it: window
// entries move within the window; probation entries promote to protected
// (demoting protected's own LRU victim back to probation if protected is
// full); protected entries simply move within protected.
func (p *Policy) OnAccess(key string) {
	p.sketch.Increment(key)
	loc, ok := p.location[key]
	if !ok {
		return
	}
	switch loc {
	case regionWindow:
		p.window.OnAccess(key)
	case regionProbation:
		p.probation.OnRemove(key)
		p.protected.OnAdd(key, 0)
		p.location[key] = regionProtected
		if p.protected.Len() > p.protectedCap {
			if demoted, ok := p.protected.SelectVictim(); ok {
				p.protected.OnRemove(demoted)
				p.probation.OnAdd(demoted, 0)
				p.location[demoted] = regionProbation
			}
		}
	case regionProtected:
		p.protected.OnAccess(key)
	}
}

// OnRemove forgets key from whichever region currently holds it.
func (p *Policy) OnRemove(key string) {
	loc, ok := p.location[key]
	if !ok {
		return
	}
	switch loc {
	case regionWindow:
		p.window.OnRemove(key)
	case regionProbation:
		p.probation.OnRemove(key)
	case regionProtected:
		p.protected.OnRemove(key)
	}
	delete(p.location, key)
	if p.hasPending && p.pending == key {
		p.hasPending = false
	}
}

// SelectVictim returns the key the last admission decision rejected, if
// any; otherwise it falls back to probation's LRU tail (the weakest
// resident main-region key), then protected's, then the window's.
func (p *Policy) SelectVictim() (string, bool) {
	if p.hasPending {
		key := p.pending
		p.hasPending = false
		return key, true
	}
	if k, ok := p.probation.SelectVictim(); ok {
		return k, true
	}
	if k, ok := p.protected.SelectVictim(); ok {
		return k, true
	}
	return p.window.SelectVictim()
}

// Len reports the total number of tracked keys across all three regions.
func (p *Policy) Len() int { return len(p.location) }

// Frequency exposes the underlying sketch's estimate, used by callers
// (e.g. tests, diagnostics) that want to inspect admission decisions.
func (p *Policy) Frequency(key string) uint64 { return p.sketch.Frequency(key) }
