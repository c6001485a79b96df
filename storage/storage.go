// Package storage persists the ledger, pool and chain metadata and governs
// startup recovery.
package storage // import "telemesh.io/prototype/storage"

import (
	"errors"

	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// Storage errors. A missing record and a corrupt record are both treated
// as "no usable snapshot" by recovery, never as fatal conditions.
var (
	ErrNotFound = errors.New("storage: record not found")
	ErrCorrupt  = errors.New("storage: record is corrupt")
)

// Meta is the small redundant chain summary persisted separately from the
// bulk block data for a cheap recovery sanity check.
type Meta struct {
	BlockCount    uint32
	TotalBlocks   uint32
	LastSaveTime  uint32
	LastValidator string
}

// Store is the durable storage boundary. Writes are whole-record rewrites;
// a write failing partway leaves a short record which later loads surface
// as ErrCorrupt.
type Store interface {
	SaveChain(blocks []ledger.Block) error
	LoadChain() ([]ledger.Block, error)
	SaveMeta(m *Meta) error
	LoadMeta() (*Meta, error)
	SavePool(txs []telemetry.Transaction) error
	LoadPool() ([]telemetry.Transaction, error)
	// NodeSequence and SetNodeSequence persist the join-order sequence
	// number for the consensus scheduler.
	NodeSequence() (uint32, error)
	SetNodeSequence(seq uint32) error
	Clear() error
	Close() error
}
