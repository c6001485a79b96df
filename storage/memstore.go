package storage

import (
	"sync"

	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// MemStore keeps snapshots in memory. It backs tests and the memory-only
// degraded mode entered when durable storage is unavailable. Records pass
// through the same binary codecs as the badger store, so round-trip
// behavior matches.
type MemStore struct {
	mu        sync.Mutex
	maxBlocks int
	chain     []byte
	meta      []byte
	pool      []byte
	nodeSeq   uint32
}

// NewMem returns an empty in-memory store.
func NewMem(maxBlocks int) *MemStore {
	return &MemStore{maxBlocks: maxBlocks}
}

// SaveChain implements the Store interface.
func (s *MemStore) SaveChain(blocks []ledger.Block) error {
	s.mu.Lock()
	s.chain = encodeChain(blocks)
	s.mu.Unlock()
	return nil
}

// LoadChain implements the Store interface.
func (s *MemStore) LoadChain() ([]ledger.Block, error) {
	s.mu.Lock()
	data := s.chain
	s.mu.Unlock()
	if data == nil {
		return nil, ErrNotFound
	}
	return decodeChain(data, s.maxBlocks)
}

// SaveMeta implements the Store interface.
func (s *MemStore) SaveMeta(m *Meta) error {
	s.mu.Lock()
	s.meta = encodeMeta(m)
	s.mu.Unlock()
	return nil
}

// LoadMeta implements the Store interface.
func (s *MemStore) LoadMeta() (*Meta, error) {
	s.mu.Lock()
	data := s.meta
	s.mu.Unlock()
	if data == nil {
		return nil, ErrNotFound
	}
	return decodeMeta(data)
}

// SavePool implements the Store interface.
func (s *MemStore) SavePool(txs []telemetry.Transaction) error {
	s.mu.Lock()
	s.pool = encodePool(txs)
	s.mu.Unlock()
	return nil
}

// LoadPool implements the Store interface.
func (s *MemStore) LoadPool() ([]telemetry.Transaction, error) {
	s.mu.Lock()
	data := s.pool
	s.mu.Unlock()
	if data == nil {
		return nil, ErrNotFound
	}
	return decodePool(data)
}

// NodeSequence implements the Store interface.
func (s *MemStore) NodeSequence() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeSeq, nil
}

// SetNodeSequence implements the Store interface.
func (s *MemStore) SetNodeSequence(seq uint32) error {
	s.mu.Lock()
	s.nodeSeq = seq
	s.mu.Unlock()
	return nil
}

// Clear implements the Store interface.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	s.chain = nil
	s.meta = nil
	s.pool = nil
	s.mu.Unlock()
	return nil
}

// Close implements the Store interface.
func (s *MemStore) Close() error {
	return nil
}

// Corrupt truncates the stored chain record to simulate a write that
// failed partway. Test helper.
func (s *MemStore) Corrupt() {
	s.mu.Lock()
	if len(s.chain) > 5 {
		s.chain = s.chain[:5]
	}
	s.mu.Unlock()
}
