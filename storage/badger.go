package storage

import (
	"encoding/binary"
	"sync"

	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"

	"github.com/dgraph-io/badger"
	"github.com/tav/golly/process"
)

const (
	chainPrefix byte = iota + 1
	metaPrefix
	poolPrefix
	nodeSeqPrefix
)

// BadgerStore persists records in a badger database under single-byte key
// prefixes. Record values use the same fixed binary layouts as the wire.
type BadgerStore struct {
	db        *badger.DB
	maxBlocks int
	mu        sync.Mutex // protects closed
	closed    bool
}

// NewBadger opens (or creates) the store in the given directory.
func NewBadger(dir string, maxBlocks int) (*BadgerStore, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	s := &BadgerStore{
		db:        db,
		maxBlocks: maxBlocks,
	}
	process.SetExitHandler(func() {
		if err := s.Close(); err != nil {
			log.Error("Could not close the store successfully", fld.Err(err))
		}
	})
	return s, nil
}

func (s *BadgerStore) get(prefix byte) ([]byte, error) {
	var out []byte
	key := []byte{prefix}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err := item.Value()
		if err != nil {
			return err
		}
		out = make([]byte, len(val))
		copy(out, val)
		return nil
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *BadgerStore) set(prefix byte, val []byte) error {
	key := []byte{prefix}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// SaveChain implements the Store interface.
func (s *BadgerStore) SaveChain(blocks []ledger.Block) error {
	return s.set(chainPrefix, encodeChain(blocks))
}

// LoadChain implements the Store interface.
func (s *BadgerStore) LoadChain() ([]ledger.Block, error) {
	data, err := s.get(chainPrefix)
	if err != nil {
		return nil, err
	}
	return decodeChain(data, s.maxBlocks)
}

// SaveMeta implements the Store interface.
func (s *BadgerStore) SaveMeta(m *Meta) error {
	return s.set(metaPrefix, encodeMeta(m))
}

// LoadMeta implements the Store interface.
func (s *BadgerStore) LoadMeta() (*Meta, error) {
	data, err := s.get(metaPrefix)
	if err != nil {
		return nil, err
	}
	return decodeMeta(data)
}

// SavePool implements the Store interface.
func (s *BadgerStore) SavePool(txs []telemetry.Transaction) error {
	return s.set(poolPrefix, encodePool(txs))
}

// LoadPool implements the Store interface.
func (s *BadgerStore) LoadPool() ([]telemetry.Transaction, error) {
	data, err := s.get(poolPrefix)
	if err != nil {
		return nil, err
	}
	return decodePool(data)
}

// NodeSequence implements the Store interface. An unassigned sequence is
// zero, not an error.
func (s *BadgerStore) NodeSequence() (uint32, error) {
	data, err := s.get(nodeSeqPrefix)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, ErrCorrupt
	}
	return binary.LittleEndian.Uint32(data), nil
}

// SetNodeSequence implements the Store interface.
func (s *BadgerStore) SetNodeSequence(seq uint32) error {
	val := make([]byte, 4)
	binary.LittleEndian.PutUint32(val, seq)
	return s.set(nodeSeqPrefix, val)
}

// Clear implements the Store interface. It removes the chain, metadata and
// pool records but keeps the node sequence: identity survives a storage
// wipe.
func (s *BadgerStore) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []byte{chainPrefix, metaPrefix, poolPrefix} {
			if err := txn.Delete([]byte{prefix}); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
