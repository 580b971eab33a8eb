// Package weighted wraps any policy.Policy so eviction pressure is judged
// against an aggregate weight bound instead of (or in addition to) an entry
// count: any underlying policy may be wrapped to compare against the
// aggregate-weight bound instead of the entry count.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package weighted

import "github.com/agilira/meridian/policy"

// Policy composes a primary eviction policy (which chooses candidates)
// with a running weight total (which decides whether eviction is needed
// at all). Candidate selection is always delegated to Primary; Policy adds
// only the weight bookkeeping.
type Policy struct {
	Primary   policy.Policy
	maxWeight int64
	weight    int64
	weightOf  map[string]int64
}

// New wraps primary with a weight bound of maxWeight.
func New(primary policy.Policy, maxWeight int64) *Policy {
	return &Policy{
		Primary:   primary,
		maxWeight: maxWeight,
		weightOf:  make(map[string]int64),
	}
}

// OnAdd records key's weight and forwards to the primary policy.
func (p *Policy) OnAdd(key string, weight int64) {
	if old, ok := p.weightOf[key]; ok {
		p.weight -= old
	}
	p.weightOf[key] = weight
	p.weight += weight
	p.Primary.OnAdd(key, weight)
}

// OnAccess forwards to the primary policy.
func (p *Policy) OnAccess(key string) { p.Primary.OnAccess(key) }

// OnRemove forgets key's weight and forwards to the primary policy.
func (p *Policy) OnRemove(key string) {
	if w, ok := p.weightOf[key]; ok {
		p.weight -= w
		delete(p.weightOf, key)
	}
	p.Primary.OnRemove(key)
}

// SelectVictim delegates to the primary policy's candidate choice.
func (p *Policy) SelectVictim() (string, bool) { return p.Primary.SelectVictim() }

// Len delegates to the primary policy.
func (p *Policy) Len() int { return p.Primary.Len() }

// Weight returns the current aggregate tracked weight.
func (p *Policy) Weight() int64 { return p.weight }

// OverWeight reports whether the aggregate weight exceeds the configured
// bound, the weight-based trigger for running an eviction pass.
func (p *Policy) OverWeight() bool { return p.maxWeight > 0 && p.weight > p.maxWeight }
