// Package sketch implements the frequency sketch used by the W-TinyLFU
// eviction policy: a Count-Min Sketch with 4-bit saturating counters
// addressed by four independent hashes, aged by periodic halving.
// Increment/Frequency take a key string directly; each W-TinyLFU policy
// owns its own sketch for its admission check. The LFU policy does not use
// a sketch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package sketch

import (
	"sync/atomic"

	"github.com/agilira/meridian/internal/xhash"
)

// maxCounter is the saturation value of a 4-bit counter.
const maxCounter = 15

// Sketch is a lock-free, fixed-size approximate frequency counter.
//
// Size is chosen as the next power of two >= capacity (spec requirement);
// each uint64 word packs 16 four-bit counters, so the backing table has
// nextPow2(capacity)/16 words, floored at a small minimum so tiny caches
// still get a usable sketch.
type Sketch struct {
	table          []uint64
	tableMask      uint64
	sampleSize     atomic.Int64
	resetThreshold int64
}

// New creates a sketch sized for capacity entries. After every
// resetThreshold increments since construction or the last halving, all
// counters are halved (aging).
func New(capacity int) *Sketch {
	words := nextPow2(capacity) / 16
	if words < 4 {
		words = 4
	}
	return &Sketch{
		table:          make([]uint64, nextPow2(words)),
		tableMask:      uint64(nextPow2(words) - 1),
		resetThreshold: int64(capacity),
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// positions returns the four independent (word, subPosition) pairs used to
// address a key's counters.
func (s *Sketch) positions(h uint64) (pos [4]uint64, sub [4]uint64) {
	pos[0] = xhash.Mix(h, xhash.SketchSeed) & s.tableMask
	pos[1] = xhash.Mix(h, xhash.RingSeed) & s.tableMask
	pos[2] = xhash.Mix(h, xhash.ShardSeed) & s.tableMask
	pos[3] = xhash.Mix(h, ^xhash.SketchSeed) & s.tableMask

	sub[0] = (h & 0xF) * 4
	sub[1] = ((h >> 4) & 0xF) * 4
	sub[2] = ((h >> 8) & 0xF) * 4
	sub[3] = ((h >> 12) & 0xF) * 4
	return
}

// Increment increments the four counters associated with key, saturating
// each at 15. Triggers aging every resetThreshold increments.
func (s *Sketch) Increment(key string) {
	if s.resetThreshold > 0 && s.sampleSize.Add(1)%s.resetThreshold == 0 {
		s.reset()
	}

	h := xhash.String(key, xhash.SketchSeed)
	pos, sub := s.positions(h)
	for i := 0; i < 4; i++ {
		s.incrementCounter(pos[i], sub[i])
	}
}

func (s *Sketch) incrementCounter(word, sub uint64) {
	mask := uint64(0xF) << sub
	for {
		old := atomic.LoadUint64(&s.table[word])
		counter := (old >> sub) & 0xF
		if counter >= maxCounter {
			return
		}
		next := (old &^ mask) | ((counter + 1) << sub)
		if atomic.CompareAndSwapUint64(&s.table[word], old, next) {
			return
		}
	}
}

// Frequency returns the estimated access frequency of key: the minimum of
// its four counters (the Count-Min Sketch property bounds the estimate from
// above the true count).
func (s *Sketch) Frequency(key string) uint64 {
	h := xhash.String(key, xhash.SketchSeed)
	pos, sub := s.positions(h)

	c0 := (atomic.LoadUint64(&s.table[pos[0]]) >> sub[0]) & 0xF
	c1 := (atomic.LoadUint64(&s.table[pos[1]]) >> sub[1]) & 0xF
	c2 := (atomic.LoadUint64(&s.table[pos[2]]) >> sub[2]) & 0xF
	c3 := (atomic.LoadUint64(&s.table[pos[3]]) >> sub[3]) & 0xF

	return min4(c0, c1, c2, c3)
}

func (s *Sketch) reset() {
	for i := range s.table {
		for {
			old := atomic.LoadUint64(&s.table[i])
			var next uint64
			for j := 0; j < 16; j++ {
				shift := uint64(j * 4) // #nosec G115 - j bounded 0-15
				counter := (old >> shift) & 0xF
				next |= (counter >> 1) << shift
			}
			if atomic.CompareAndSwapUint64(&s.table[i], old, next) {
				break
			}
		}
	}
}

// Reset clears all counters and the sample count.
func (s *Sketch) Reset() {
	for i := range s.table {
		atomic.StoreUint64(&s.table[i], 0)
	}
	s.sampleSize.Store(0)
}

func min4(a, b, c, d uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
