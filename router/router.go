// Package router dispatches a cache operation to the local store when the
// current node owns the key, or forwards it over a wire.Adapter to the
// owning node otherwise. A remote failure is always returned to the
// caller, never silently retried against a different node.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package router

import (
	"context"
	"sync"
	"time"

	"github.com/agilira/meridian"
	"github.com/agilira/meridian/cluster"
	"github.com/agilira/meridian/ring"
	"github.com/agilira/meridian/wire"
)

// Consistency selects how strongly a Router must confirm an operation
// before returning.
type Consistency uint8

const (
	// Eventual dispatches to whichever node the ring currently names as
	// owner and returns as soon as that single node answers.
	Eventual Consistency = iota
	// Session routes every call sharing a session token to the same node
	// for as long as that node remains the ring's owner, avoiding the
	// read-your-writes violations a naive ring lookup could otherwise
	// produce across a rebalance.
	Session
	// Strong writes to every replica returned by ring.ReplicasOf and
	// succeeds once a majority of them acknowledge; a Get under Strong is
	// served by the ring's owner, as under Eventual.
	Strong
)

// Config configures a Router.
type Config struct {
	Self            string // this node's ID, as it appears on the ring
	Ring            *ring.Ring
	Cluster         *cluster.Cluster
	Adapter         wire.Adapter
	Local           meridian.CacheInterface
	ReplicaCount    int // used by Consistency == Strong; default 3
	RemoteTimeout   time.Duration
}

func (c *Config) setDefaults() {
	if c.ReplicaCount <= 0 {
		c.ReplicaCount = 3
	}
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = 2 * time.Second
	}
}

// Router is the entry point a distributed meridian deployment's
// application code calls instead of a local Cache directly.
type Router struct {
	cfg Config

	mu      sync.RWMutex
	sticky  map[string]string // session token -> node, Session consistency
}

// New creates a Router. cfg.Local, cfg.Ring and cfg.Adapter must be set.
func New(cfg Config) *Router {
	cfg.setDefaults()
	return &Router{cfg: cfg, sticky: make(map[string]string)}
}

// Get dispatches a Get for key at the requested consistency level.
func (r *Router) Get(ctx context.Context, key string, level Consistency, sessionToken string) (interface{}, bool, error) {
	owner, ok := r.ownerFor(key, level, sessionToken)
	if !ok {
		return nil, false, meridian.NewErrNoOwner(key)
	}
	if owner == r.cfg.Self {
		return r.cfg.Local.Get(ctx, key)
	}
	return r.remoteGet(ctx, owner, key)
}

// Set dispatches a Set for key at the requested consistency level. Under
// Strong, Set writes to every replica and succeeds once a majority of them
// acknowledge, returning a quorum-unreachable error otherwise.
func (r *Router) Set(ctx context.Context, key string, value []byte, level Consistency, sessionToken string) error {
	owner, ok := r.ownerFor(key, level, sessionToken)
	if !ok {
		return meridian.NewErrNoOwner(key)
	}

	if level == Strong {
		return r.setWithQuorum(ctx, key, value)
	}
	if owner == r.cfg.Self {
		return r.cfg.Local.Set(key, value)
	}
	return r.remoteSet(ctx, owner, key, value)
}

func (r *Router) ownerFor(key string, level Consistency, sessionToken string) (string, bool) {
	if level == Session && sessionToken != "" {
		r.mu.RLock()
		node, ok := r.sticky[sessionToken]
		r.mu.RUnlock()
		if ok {
			if owner, stillOwns := r.cfg.Ring.OwnerOf(key); stillOwns && owner == node {
				return node, true
			}
		}
	}

	owner, ok := r.cfg.Ring.OwnerOf(key)
	if !ok {
		return "", false
	}
	if level == Session && sessionToken != "" {
		r.mu.Lock()
		r.sticky[sessionToken] = owner
		r.mu.Unlock()
	}
	return owner, true
}

func (r *Router) setWithQuorum(ctx context.Context, key string, value []byte) error {
	replicas := r.cfg.Ring.ReplicasOf(key, r.cfg.ReplicaCount)
	if len(replicas) == 0 {
		return meridian.NewErrNoOwner(key)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(replicas))
	for i, node := range replicas {
		wg.Add(1)
		go func(i int, node string) {
			defer wg.Done()
			if node == r.cfg.Self {
				errs[i] = r.cfg.Local.Set(key, value)
				return
			}
			errs[i] = r.remoteSet(ctx, node, key, value)
		}(i, node)
	}
	wg.Wait()

	reached := 0
	for _, err := range errs {
		if err == nil {
			reached++
		}
	}
	needed := len(replicas)/2 + 1
	if reached < needed {
		return meridian.NewErrQuorumUnreachable(key, needed, reached)
	}
	return nil
}

func (r *Router) remoteGet(ctx context.Context, node, key string) (interface{}, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RemoteTimeout)
	defer cancel()

	addr := r.nodeAddr(node)
	resp, err := r.cfg.Adapter.Send(ctx, addr, wire.Request{Op: wire.OpGet, Key: []byte(key)})
	if err != nil {
		return nil, false, err
	}
	switch resp.Status {
	case wire.StatusNotFound:
		return nil, false, nil
	case wire.StatusStaleTopology:
		return nil, false, meridian.NewErrStaleTopology(0, 0)
	case wire.StatusOK:
		return resp.Value, true, nil
	case wire.StatusPayloadTooLarge:
		return nil, false, wire.ErrPayloadTooLarge
	case wire.StatusInternalError:
		return nil, false, wire.ErrUnavailable
	default:
		return nil, false, wire.ErrUnavailable
	}
}

func (r *Router) remoteSet(ctx context.Context, node, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RemoteTimeout)
	defer cancel()

	addr := r.nodeAddr(node)
	resp, err := r.cfg.Adapter.Send(ctx, addr, wire.Request{Op: wire.OpPut, Key: []byte(key), Value: value})
	if err != nil {
		return err
	}
	if resp.Status != wire.StatusOK {
		return wire.ErrUnavailable
	}
	return nil
}

func (r *Router) nodeAddr(nodeID string) string {
	for _, n := range r.cfg.Cluster.View().Nodes {
		if n.ID == nodeID {
			return n.Addr
		}
	}
	return nodeID
}

// Rebalance computes, for every key currently local, whether the ring now
// assigns it to a different owner, and streams the changed keys to their
// new owner in bounded batches via wire.OpMigrateRange. keys is the full
// set of locally-resident keys to consider; callers typically source this
// from their Store's shard iteration.
func (r *Router) Rebalance(ctx context.Context, keys []string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 256
	}

	byOwner := make(map[string][]string)
	for _, k := range keys {
		owner, ok := r.cfg.Ring.OwnerOf(k)
		if !ok || owner == r.cfg.Self {
			continue
		}
		byOwner[owner] = append(byOwner[owner], k)
	}

	for owner, ks := range byOwner {
		for start := 0; start < len(ks); start += batchSize {
			end := start + batchSize
			if end > len(ks) {
				end = len(ks)
			}
			if err := r.migrateBatch(ctx, owner, ks[start:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Router) migrateBatch(ctx context.Context, owner string, keys []string) error {
	for _, k := range keys {
		v, found, err := r.cfg.Local.Get(ctx, k)
		if err != nil || !found {
			continue
		}
		raw, ok := v.([]byte)
		if !ok {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, r.cfg.RemoteTimeout)
		resp, err := r.cfg.Adapter.Send(sendCtx, r.nodeAddr(owner), wire.Request{
			Op: wire.OpMigrateRange, Key: []byte(k), Value: raw,
		})
		cancel()
		if err != nil {
			return err
		}
		if resp.Status == wire.StatusStaleTopology {
			return meridian.NewErrStaleTopology(0, 0)
		}
		if resp.Status == wire.StatusOK {
			r.cfg.Local.Delete(k)
		}
	}
	return nil
}
