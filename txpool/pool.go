// Package txpool implements the bounded FIFO pool of unconfirmed
// transactions awaiting inclusion in a block.
package txpool // import "telemesh.io/prototype/txpool"

import (
	"errors"
	"sync"

	"telemesh.io/prototype/telemetry"
)

// ErrPoolFull is returned by Submit once the pool has reached capacity.
var ErrPoolFull = errors.New("txpool: pool is full")

// Pool holds unconfirmed transactions in submission order. It is safe for
// use from the network receive path and the node loop concurrently. No
// deduplication is performed; replayed transactions count as new entries.
type Pool struct {
	mu  sync.Mutex
	cap int
	txs []telemetry.Transaction
}

// New returns a pool with the given capacity.
func New(capacity int) *Pool {
	return &Pool{
		cap: capacity,
		txs: make([]telemetry.Transaction, 0, capacity),
	}
}

// Submit appends the transaction to the tail of the pool. It fails with
// ErrPoolFull, without mutating state, once capacity is reached.
func (p *Pool) Submit(tx telemetry.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.txs) >= p.cap {
		return ErrPoolFull
	}
	p.txs = append(p.txs, tx)
	return nil
}

// Snapshot returns up to max of the oldest transactions in submission
// order without removing them. A max below zero returns everything.
func (p *Pool) Snapshot(max int) []telemetry.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.txs)
	if max >= 0 && max < n {
		n = max
	}
	out := make([]telemetry.Transaction, n)
	copy(out, p.txs[:n])
	return out
}

// Clear empties the pool unconditionally. It is invoked exactly once per
// successful block append; transactions that arrived after the block was
// constructed are dropped along with the included ones.
func (p *Pool) Clear() {
	p.mu.Lock()
	p.txs = p.txs[:0]
	p.mu.Unlock()
}

// Size returns the current number of pooled transactions.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}

// Capacity returns the fixed capacity of the pool.
func (p *Pool) Capacity() int {
	return p.cap
}

// Query returns the readings of pooled transactions matching the sensor
// identifier within the inclusive [from, to] time range.
func (p *Pool) Query(sensorID string, from, to uint32) []telemetry.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []telemetry.Reading
	for _, tx := range p.txs {
		r := tx.Reading
		if r.SensorID == sensorID && r.Timestamp >= from && r.Timestamp <= to {
			out = append(out, r)
		}
	}
	return out
}
