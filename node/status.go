package node

import (
	"time"

	"telemesh.io/prototype/consensus"
	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// Status is a point-in-time snapshot of the node for the operator surface.
type Status struct {
	Address      string
	BlockCount   int
	Head         *ledger.Header
	MemoryOnly   bool
	NetworkName  string
	PeerCount    int
	PoolCapacity int
	PoolSize     int
	Role         consensus.Role
	TotalBlocks  uint32
	Uptime       time.Duration
}

// Status returns the current node snapshot.
func (n *Node) Status() Status {
	n.mu.Lock()
	blockCount := n.chain.BlockCount()
	totalBlocks := n.chain.TotalBlocks()
	var head *ledger.Header
	if b, ok := n.chain.Head(); ok {
		h := b.Header()
		head = &h
	}
	memoryOnly := n.memoryOnly
	n.mu.Unlock()
	return Status{
		Address:      n.cfg.Address,
		BlockCount:   blockCount,
		Head:         head,
		MemoryOnly:   memoryOnly,
		NetworkName:  n.cfg.NetworkName,
		PeerCount:    n.net.Peers().Count(),
		PoolCapacity: n.pool.Capacity(),
		PoolSize:     n.pool.Size(),
		Role:         n.sched.Role(),
		TotalBlocks:  totalBlocks,
		Uptime:       time.Since(n.start),
	}
}

// Role returns the node's current role.
func (n *Node) Role() consensus.Role {
	return n.sched.Role()
}

// SetRole overrides the node's role at runtime.
func (n *Node) SetRole(role consensus.Role) {
	n.sched.SetRole(role)
	log.Info("Role changed", fld.Role(role))
}

// Headers returns the headers of the physically retained blocks, oldest
// first.
func (n *Node) Headers() []ledger.Header {
	n.mu.Lock()
	blocks := n.chain.Retained()
	n.mu.Unlock()
	out := make([]ledger.Header, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Header()
	}
	return out
}

// PoolTransactions returns the currently pooled transactions, oldest first.
func (n *Node) PoolTransactions() []telemetry.Transaction {
	return n.pool.Snapshot(-1)
}

// Peers returns the known peer addresses.
func (n *Node) Peers() []string {
	return n.net.Peers().List()
}

// Query returns pooled readings for the sensor within the inclusive time
// range.
func (n *Node) Query(sensorID string, from, to uint32) []telemetry.Reading {
	return n.pool.Query(sensorID, from, to)
}

// Save snapshots the ledger, metadata and pool to durable storage on
// demand.
func (n *Node) Save() error {
	return n.save()
}

// ClearStorage wipes the persisted chain, metadata and pool records. The
// in-memory state is untouched.
func (n *Node) ClearStorage() error {
	n.mu.Lock()
	store := n.store
	n.mu.Unlock()
	return store.Clear()
}
