package network

import (
	"math/rand"
	"sync"
)

// Hub is an in-process broadcast medium for tests and multi-node
// simulation. Frames sent by one transport are delivered synchronously to
// every other transport on the hub, optionally subject to a loss rate.
type Hub struct {
	mu       sync.Mutex
	dropRate float64
	nodes    map[string]*SimTransport
	rng      *rand.Rand
}

// NewHub returns an empty, loss-free hub.
func NewHub() *Hub {
	return &Hub{
		nodes: map[string]*SimTransport{},
		rng:   rand.New(rand.NewSource(1)),
	}
}

// SetLoss configures the fraction of frames dropped in transit.
func (h *Hub) SetLoss(rate float64, seed int64) {
	h.mu.Lock()
	h.dropRate = rate
	h.rng = rand.New(rand.NewSource(seed))
	h.mu.Unlock()
}

// Transport attaches a new simulated transport to the hub under the given
// address.
func (h *Hub) Transport(addr string) *SimTransport {
	t := &SimTransport{addr: addr, hub: h}
	h.mu.Lock()
	h.nodes[addr] = t
	h.mu.Unlock()
	return t
}

func (h *Hub) deliver(from string, frame []byte) {
	h.mu.Lock()
	targets := make([]*SimTransport, 0, len(h.nodes))
	for addr, t := range h.nodes {
		if addr == from {
			continue
		}
		if h.dropRate > 0 && h.rng.Float64() < h.dropRate {
			continue
		}
		targets = append(targets, t)
	}
	h.mu.Unlock()
	for _, t := range targets {
		t.mu.Lock()
		fn := t.fn
		closed := t.closed
		t.mu.Unlock()
		if fn != nil && !closed {
			dup := make([]byte, len(frame))
			copy(dup, frame)
			fn(dup)
		}
	}
}

// SimTransport is one node's endpoint on a Hub.
type SimTransport struct {
	mu         sync.Mutex
	addr       string
	closed     bool
	fn         func(frame []byte)
	hub        *Hub
	registered bool
}

// EnsureBroadcastPeer implements the Transport interface.
func (t *SimTransport) EnsureBroadcastPeer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	t.registered = true
	return nil
}

// Broadcast implements the Transport interface.
func (t *SimTransport) Broadcast(frame []byte) error {
	if err := t.EnsureBroadcastPeer(); err != nil {
		return err
	}
	t.hub.deliver(t.addr, frame)
	return nil
}

// OnReceive implements the Transport interface.
func (t *SimTransport) OnReceive(fn func(frame []byte)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

// Close implements the Transport interface.
func (t *SimTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
