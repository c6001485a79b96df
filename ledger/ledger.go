// Package ledger implements the hash-chained block sequence backed by a
// fixed-capacity ring buffer of the most recent blocks.
package ledger // import "telemesh.io/prototype/ledger"

import (
	"bytes"
	"errors"
	"math/rand"

	"telemesh.io/prototype/telemetry"
)

// DefaultMaxBlocks is the default number of physical block slots.
const DefaultMaxBlocks = 10

// Validation errors. A block failing validation is discarded whole, never
// partially applied.
var (
	ErrIndexMismatch    = errors.New("ledger: block index does not match chain length")
	ErrPrevHashMismatch = errors.New("ledger: previous hash does not match head")
	ErrHashInvalid      = errors.New("ledger: block hash does not match recomputed digest")
)

// Ledger holds the chain. Logical indices keep growing past the physical
// capacity; the ring retains only the most recent maxBlocks blocks, older
// ones are pruned by overwrite. Not safe for concurrent use: all mutation
// happens on the node loop.
type Ledger struct {
	blocks      []Block
	maxBlocks   int
	blockCount  int    // physical retained count, <= maxBlocks
	totalBlocks uint32 // logical chain length, including pruned blocks
}

// New returns an empty ledger with the given physical capacity.
func New(maxBlocks int) *Ledger {
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	return &Ledger{
		blocks:    make([]Block, maxBlocks),
		maxBlocks: maxBlocks,
	}
}

// Initialized reports whether the genesis block has been created or
// recovered.
func (l *Ledger) Initialized() bool {
	return l.totalBlocks > 0
}

// TotalBlocks returns the logical chain length.
func (l *Ledger) TotalBlocks() uint32 {
	return l.totalBlocks
}

// BlockCount returns the physically retained block count.
func (l *Ledger) BlockCount() int {
	return l.blockCount
}

// MaxBlocks returns the physical ring capacity.
func (l *Ledger) MaxBlocks() int {
	return l.maxBlocks
}

// Head returns the most recently appended block, or false if the ledger is
// empty.
func (l *Ledger) Head() (Block, bool) {
	if l.totalBlocks == 0 {
		return Block{}, false
	}
	return l.blocks[(l.totalBlocks-1)%uint32(l.maxBlocks)], true
}

// Block returns the block at the given logical index, or false if it has
// been pruned or not yet appended.
func (l *Ledger) Block(index uint32) (Block, bool) {
	if index >= l.totalBlocks {
		return Block{}, false
	}
	if l.totalBlocks-index > uint32(l.blockCount) {
		return Block{}, false
	}
	return l.blocks[index%uint32(l.maxBlocks)], true
}

// Retained returns the physically retained blocks, oldest first.
func (l *Ledger) Retained() []Block {
	out := make([]Block, 0, l.blockCount)
	start := l.totalBlocks - uint32(l.blockCount)
	for i := start; i < l.totalBlocks; i++ {
		out = append(out, l.blocks[i%uint32(l.maxBlocks)])
	}
	return out
}

// CreateGenesis transitions the ledger from Empty to Initialized with a
// freshly hashed block at index 0 and an all-zero previous hash. It must be
// called exactly once, on an empty ledger.
func (l *Ledger) CreateGenesis(validator string, now uint32) Block {
	genesis := Block{
		Index:     0,
		Timestamp: now,
		Validator: validator,
	}
	genesis.BlockHash = genesis.ComputeHash()
	l.blocks[0] = genesis
	l.blockCount = 1
	l.totalBlocks = 1
	return genesis
}

// Propose builds a candidate block from the oldest pool transactions. It is
// a pure function of the current head and the given snapshot: neither the
// ledger nor the pool is mutated. The nonce only serves to keep hashes from
// colliding across validators when metadata otherwise matches.
func (l *Ledger) Propose(snapshot []telemetry.Transaction, validator string, now uint32) Block {
	b := Block{
		Index:     l.totalBlocks,
		Timestamp: now,
		Validator: validator,
		Nonce:     uint32(rand.Intn(1000000)),
	}
	count := len(snapshot)
	if count > MaxTxPerBlock {
		count = MaxTxPerBlock
	}
	for i := 0; i < count; i++ {
		b.TxHashes[i] = snapshot[i].TxHash
	}
	b.TxCount = uint8(count)
	if head, ok := l.Head(); ok {
		b.PreviousHash = head.BlockHash
	}
	b.BlockHash = b.ComputeHash()
	return b
}

// Validate checks the block against the chain. The stored hash is never
// trusted: the digest is recomputed from the block's own fields.
func (l *Ledger) Validate(b *Block) error {
	if b.Index != l.totalBlocks {
		return ErrIndexMismatch
	}
	if head, ok := l.Head(); ok {
		if !bytes.Equal(b.PreviousHash[:], head.BlockHash[:]) {
			return ErrPrevHashMismatch
		}
	}
	computed := b.ComputeHash()
	if !bytes.Equal(computed[:], b.BlockHash[:]) {
		return ErrHashInvalid
	}
	return nil
}

// Append validates the block and stores it at the ring slot for its logical
// index, pruning whatever block previously occupied that slot. On success
// the caller is expected to clear the transaction pool and persist. On
// failure the ledger is unchanged.
func (l *Ledger) Append(b Block) error {
	if err := l.Validate(&b); err != nil {
		return err
	}
	l.blocks[l.totalBlocks%uint32(l.maxBlocks)] = b
	if l.blockCount < l.maxBlocks {
		l.blockCount++
	}
	l.totalBlocks++
	return nil
}

// Restore loads a recovered chain snapshot: retained blocks oldest first
// plus the logical total, which may exceed the retained count when older
// blocks had already been pruned before the save.
func (l *Ledger) Restore(blocks []Block, totalBlocks uint32) {
	if len(blocks) > l.maxBlocks {
		blocks = blocks[len(blocks)-l.maxBlocks:]
	}
	if totalBlocks < uint32(len(blocks)) {
		totalBlocks = uint32(len(blocks))
	}
	start := totalBlocks - uint32(len(blocks))
	for i, b := range blocks {
		l.blocks[(start+uint32(i))%uint32(l.maxBlocks)] = b
	}
	l.blockCount = len(blocks)
	l.totalBlocks = totalBlocks
}
