// Package cluster tracks which nodes currently participate in a
// distributed meridian deployment and their health state, feeding every
// membership change into a ring.Ring so router always dispatches against
// an up-to-date view of who owns what. Health checks run through a
// pluggable HealthSource so the membership state machine
// (joining→healthy→suspected→failed→left) never commits to a transport.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package cluster

import (
	"sync"
	"time"

	"github.com/agilira/meridian/ring"
	"github.com/agilira/meridian/support"
)

// State is a node's position in the membership state machine:
// joining -> healthy -> suspected -> failed -> left.
type State string

const (
	StateJoining   State = "joining"
	StateHealthy   State = "healthy"
	StateSuspected State = "suspected"
	StateFailed    State = "failed"
	StateLeft      State = "left"
)

// Node is one member of the cluster.
type Node struct {
	ID       string
	Addr     string
	State    State
	LastSeen time.Time
}

// HealthSource reports whether addr is currently reachable. Implementations
// may poll (e.g. an HTTP GET /health) or be fed externally by a push-based
// mechanism; cluster only needs the result.
type HealthSource interface {
	Check(addr string) error
}

// View is an immutable snapshot of cluster membership at a point in time.
type View struct {
	Nodes   []Node
	Version uint64
}

// Config controls Cluster's failure-detection timing.
type Config struct {
	// CheckInterval is how often every node is polled. Default 5s.
	CheckInterval time.Duration
	// SuspectAfter is the number of consecutive failed checks before a
	// healthy node becomes suspected. Default 3.
	SuspectAfter int
	// GraceWindow is how long a suspected node stays on the ring before
	// being marked failed and removed. Default 30s.
	GraceWindow int
	VirtualNodes int

	Health HealthSource
	Logger support.Logger
	Time   support.TimeProvider
}

func (c *Config) setDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Second
	}
	if c.SuspectAfter <= 0 {
		c.SuspectAfter = 3
	}
	if c.GraceWindow <= 0 {
		c.GraceWindow = 30
	}
	if c.Logger == nil {
		c.Logger = support.NoOpLogger{}
	}
	if c.Time == nil {
		c.Time = support.SystemTimeProvider{}
	}
}

type memberState struct {
	node             Node
	consecutiveFails int
	suspectedAtSec   int64
}

// Cluster owns the live membership view and the ring it feeds.
type Cluster struct {
	cfg     Config
	ring    *ring.Ring
	mu      sync.RWMutex
	members map[string]*memberState
	version uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Cluster backed by r, an existing ring.Ring (possibly
// already populated; pass ring.New() for a fresh one).
func New(r *ring.Ring, cfg Config) *Cluster {
	cfg.setDefaults()
	return &Cluster{
		cfg:     cfg,
		ring:    r,
		members: make(map[string]*memberState),
		done:    make(chan struct{}),
	}
}

// Join adds node in state joining, then immediately promotes it to
// healthy and onto the ring; a real deployment may want to gate this on an
// initial successful health check, which Start's background loop performs
// on the very next tick regardless.
func (c *Cluster) Join(node Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node.State = StateHealthy
	node.LastSeen = time.Unix(0, c.cfg.Time.Now())
	c.members[node.ID] = &memberState{node: node}
	c.ring.AddNode(node.ID, c.cfg.VirtualNodes)
	c.version++
}

// Leave removes node from the ring and membership immediately (a graceful
// departure, as opposed to a detected failure).
func (c *Cluster) Leave(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.members[nodeID]; ok {
		m.node.State = StateLeft
		delete(c.members, nodeID)
		c.ring.RemoveNode(nodeID)
		c.version++
	}
}

// View returns the current membership snapshot.
func (c *Cluster) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes := make([]Node, 0, len(c.members))
	for _, m := range c.members {
		nodes = append(nodes, m.node)
	}
	return View{Nodes: nodes, Version: c.version}
}

// Start launches the periodic health-check loop. It returns immediately;
// call Close to stop it.
func (c *Cluster) Start() {
	if c.cfg.Health == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cfg.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.checkAll()
			case <-c.done:
				return
			}
		}
	}()
}

// Close stops the health-check loop.
func (c *Cluster) Close() {
	close(c.done)
	c.wg.Wait()
}

func (c *Cluster) checkAll() {
	c.mu.RLock()
	addrs := make(map[string]string, len(c.members))
	for id, m := range c.members {
		addrs[id] = m.node.Addr
	}
	c.mu.RUnlock()

	for id, addr := range addrs {
		c.checkOne(id, addr)
	}
}

func (c *Cluster) checkOne(id, addr string) {
	err := c.cfg.Health.Check(addr)

	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.members[id]
	if !ok {
		return
	}
	now := c.cfg.Time.Now()
	m.node.LastSeen = time.Unix(0, now)

	if err == nil {
		if m.node.State != StateHealthy {
			c.cfg.Logger.Info("node recovered", "node", id)
			c.version++
		}
		m.node.State = StateHealthy
		m.consecutiveFails = 0
		return
	}

	m.consecutiveFails++
	if m.node.State == StateHealthy && m.consecutiveFails >= c.cfg.SuspectAfter {
		m.node.State = StateSuspected
		m.suspectedAtSec = now / int64(time.Second)
		c.version++
		c.cfg.Logger.Warn("node suspected", "node", id, "fails", m.consecutiveFails)
		return
	}
	if m.node.State == StateSuspected {
		elapsed := now/int64(time.Second) - m.suspectedAtSec
		if elapsed >= int64(c.cfg.GraceWindow) {
			m.node.State = StateFailed
			delete(c.members, id)
			c.ring.RemoveNode(id)
			c.version++
			c.cfg.Logger.Error("node failed", "node", id)
		}
	}
}
