package network

import (
	"sync"
)

// PeerSet tracks the addresses of discovered peers. Membership grows
// monotonically up to capacity; entries never expire.
type PeerSet struct {
	mu    sync.Mutex
	max   int
	addrs []string
	seen  map[string]bool
}

// NewPeerSet returns a peer set with the given capacity.
func NewPeerSet(max int) *PeerSet {
	return &PeerSet{
		max:  max,
		seen: map[string]bool{},
	}
}

// Add records the address if it is unseen and the set is below capacity.
// It returns true only when a new entry was added.
func (p *PeerSet) Add(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[addr] || len(p.addrs) >= p.max {
		return false
	}
	p.seen[addr] = true
	p.addrs = append(p.addrs, addr)
	return true
}

// Contains reports whether the address is tracked.
func (p *PeerSet) Contains(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[addr]
}

// Count returns the number of tracked peers.
func (p *PeerSet) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.addrs)
}

// List returns the tracked addresses in discovery order.
func (p *PeerSet) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.addrs))
	copy(out, p.addrs)
	return out
}
