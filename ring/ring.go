// Package ring implements consistent hashing over a set of named nodes,
// assigning each cache key to exactly one owning node (plus, for
// replication, an ordered set of next-distinct owners going clockwise).
// Each physical node claims V virtual points spread around the ring so
// that adding or removing one node only reassigns a small, even share of
// the keyspace instead of a contiguous arc.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package ring

import (
	"sort"
	"strconv"
	"sync"

	"github.com/agilira/meridian/internal/xhash"
)

// DefaultVirtualNodes is the number of ring points placed per physical
// node when Ring.AddNode is called without an explicit count.
const DefaultVirtualNodes = 150

// Interval is a hash range (Start, End], Start exclusive and End inclusive,
// wrapping past zero when Start > End. AddNode/RemoveNode return the
// intervals they changed so a caller (router's rebalancer) knows which keys
// to consider migrating.
type Interval struct {
	Start, End uint64
	// NewOwner is the node now responsible for this range. Removing the
	// last node returns no intervals at all.
	NewOwner string
}

type ringPoint struct {
	hash      uint64
	virtualID int
	nodeID    string
}

// Ring is a consistent hash ring. The zero value is not usable; use New.
// All methods are safe for concurrent use.
type Ring struct {
	mu     sync.RWMutex
	points []ringPoint // sorted by hash
	nodes  map[string]int
}

// New creates an empty Ring.
func New() *Ring {
	return &Ring{nodes: make(map[string]int)}
}

// AddNode inserts nodeID with v virtual points (DefaultVirtualNodes if
// v <= 0), returning the intervals diffOwners reports: every range nodeID
// now owns, plus the ranges that start at one of its new points, which keep
// their previous owner. Adding a nodeID that is already present is a no-op
// and returns nil.
func (r *Ring) AddNode(nodeID string, v int) []Interval {
	if v <= 0 {
		v = DefaultVirtualNodes
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeID]; exists {
		return nil
	}

	before := r.ownersSnapshot()
	for i := 0; i < v; i++ {
		h := xhash.String(nodeID+"#"+strconv.Itoa(i), xhash.RingSeed)
		r.points = append(r.points, ringPoint{hash: h, virtualID: i, nodeID: nodeID})
	}
	sort.Slice(r.points, func(i, j int) bool { return r.points[i].hash < r.points[j].hash })
	r.nodes[nodeID] = v

	return diffOwners(before, r.ownersSnapshot())
}

// RemoveNode deletes nodeID's virtual points, returning the intervals that
// changed owner as a result. Removing an unknown nodeID is a no-op.
func (r *Ring) RemoveNode(nodeID string) []Interval {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return nil
	}

	before := r.ownersSnapshot()
	kept := r.points[:0]
	for _, p := range r.points {
		if p.nodeID != nodeID {
			kept = append(kept, p)
		}
	}
	r.points = kept
	delete(r.nodes, nodeID)

	return diffOwners(before, r.ownersSnapshot())
}

// OwnerOf returns the node responsible for key, and false if the ring has
// no nodes.
func (r *Ring) OwnerOf(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.points) == 0 {
		return "", false
	}
	idx := r.search(xhash.String(key, xhash.RingSeed))
	return r.points[idx].nodeID, true
}

// ReplicasOf returns up to n distinct physical nodes responsible for key,
// walking clockwise from its primary owner. Fewer than n are returned if
// the ring has fewer than n distinct nodes.
func (r *Ring) ReplicasOf(key string, n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.points) == 0 || n <= 0 {
		return nil
	}

	start := r.search(xhash.String(key, xhash.RingSeed))
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for i := 0; i < len(r.points) && len(out) < n; i++ {
		p := r.points[(start+i)%len(r.points)]
		if seen[p.nodeID] {
			continue
		}
		seen[p.nodeID] = true
		out = append(out, p.nodeID)
	}
	return out
}

// Nodes returns the set of physical node IDs currently on the ring.
func (r *Ring) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// search returns the index of the first point with hash >= target,
// wrapping to index 0 if target is past every point. Callers must hold
// r.mu.
func (r *Ring) search(target uint64) int {
	idx := sort.Search(len(r.points), func(i int) bool { return r.points[i].hash >= target })
	if idx == len(r.points) {
		idx = 0
	}
	return idx
}

// ownersSnapshot walks the current point list and records, for each point,
// the hash range it owns (from the previous point's hash, exclusive, up to
// and including its own). Callers must hold r.mu.
func (r *Ring) ownersSnapshot() []Interval {
	if len(r.points) == 0 {
		return nil
	}
	out := make([]Interval, len(r.points))
	prev := r.points[len(r.points)-1].hash
	for i, p := range r.points {
		out[i] = Interval{Start: prev, End: p.hash, NewOwner: p.nodeID}
		prev = p.hash
	}
	return out
}

// diffOwners compares two owner snapshots and returns the intervals whose
// owner changed. It is a coarse best-effort diff: since both snapshots are
// keyed by hash-sorted position rather than hash value directly, an exact
// match requires identical Start values.
func diffOwners(before, after []Interval) []Interval {
	byStart := make(map[uint64]string, len(before))
	for _, iv := range before {
		byStart[iv.Start] = iv.NewOwner
	}
	var changed []Interval
	for _, iv := range after {
		if byStart[iv.Start] != iv.NewOwner {
			changed = append(changed, iv)
		}
	}
	return changed
}
