package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"telemesh.io/prototype/telemetry"
)

const (
	// HashSize is the size of block and transaction digests.
	HashSize = telemetry.HashSize
	// MaxTxPerBlock bounds the number of transaction digests chained per
	// block. Sized so a block header plus hash list stays well under the
	// transport payload limit.
	MaxTxPerBlock = 4
)

// Record sizes of the fixed little-endian layouts.
const (
	BlockSize  = 4 + 4 + HashSize*MaxTxPerBlock + 1 + HashSize + HashSize + telemetry.AddressSize + 4
	HeaderSize = 4 + 4 + 1 + HashSize + HashSize + telemetry.AddressSize
)

// ErrShortRecord is returned when a buffer is too small to hold the
// expected record.
var ErrShortRecord = errors.New("ledger: short record")

// Block is one link of the hash chain. Index is the position in the
// logical, unbounded chain, not the physical ring buffer. Only transaction
// digests are chained, never full transactions.
type Block struct {
	Index        uint32
	Timestamp    uint32
	TxHashes     [MaxTxPerBlock][HashSize]byte
	TxCount      uint8
	PreviousHash [HashSize]byte
	BlockHash    [HashSize]byte
	Validator    string
	Nonce        uint32
}

// Header is the subset of block fields needed to identify and link it,
// sized to fit the transport MTU. A header alone cannot be re-validated:
// it omits the transaction digest list.
type Header struct {
	Index        uint32
	Timestamp    uint32
	TxCount      uint8
	BlockHash    [HashSize]byte
	PreviousHash [HashSize]byte
	Validator    string
}

// Header returns the compact wire header of the block.
func (b *Block) Header() Header {
	return Header{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		TxCount:      b.TxCount,
		BlockHash:    b.BlockHash,
		PreviousHash: b.PreviousHash,
		Validator:    b.Validator,
	}
}

// ComputeHash returns the digest over the block's own metadata, previous
// hash and transaction digest list. The stored BlockHash never feeds into
// it, so a receiver can recompute and compare.
func (b *Block) ComputeHash() [HashSize]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|", b.Index, b.Timestamp)
	h.Write([]byte(b.Validator))
	nonce := make([]byte, 4)
	binary.LittleEndian.PutUint32(nonce, b.Nonce)
	h.Write(nonce)
	h.Write(b.PreviousHash[:])
	for i := 0; i < int(b.TxCount) && i < MaxTxPerBlock; i++ {
		h.Write(b.TxHashes[i][:])
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Marshal encodes the block into its fixed 222-byte layout.
func (b *Block) Marshal() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf, b.Index)
	binary.LittleEndian.PutUint32(buf[4:], b.Timestamp)
	idx := 8
	for i := 0; i < MaxTxPerBlock; i++ {
		copy(buf[idx:], b.TxHashes[i][:])
		idx += HashSize
	}
	buf[idx] = b.TxCount
	idx++
	copy(buf[idx:], b.PreviousHash[:])
	idx += HashSize
	copy(buf[idx:], b.BlockHash[:])
	idx += HashSize
	telemetry.PutString(buf[idx:idx+telemetry.AddressSize], b.Validator)
	idx += telemetry.AddressSize
	binary.LittleEndian.PutUint32(buf[idx:], b.Nonce)
	return buf
}

// UnmarshalBlock decodes a block from its fixed layout.
func UnmarshalBlock(data []byte) (Block, error) {
	b := Block{}
	if len(data) < BlockSize {
		return b, ErrShortRecord
	}
	b.Index = binary.LittleEndian.Uint32(data)
	b.Timestamp = binary.LittleEndian.Uint32(data[4:])
	idx := 8
	for i := 0; i < MaxTxPerBlock; i++ {
		copy(b.TxHashes[i][:], data[idx:idx+HashSize])
		idx += HashSize
	}
	b.TxCount = data[idx]
	idx++
	copy(b.PreviousHash[:], data[idx:idx+HashSize])
	idx += HashSize
	copy(b.BlockHash[:], data[idx:idx+HashSize])
	idx += HashSize
	b.Validator = telemetry.GetString(data[idx : idx+telemetry.AddressSize])
	idx += telemetry.AddressSize
	b.Nonce = binary.LittleEndian.Uint32(data[idx:])
	return b, nil
}

// Marshal encodes the header into its fixed 90-byte layout.
func (h *Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf, h.Index)
	binary.LittleEndian.PutUint32(buf[4:], h.Timestamp)
	buf[8] = h.TxCount
	copy(buf[9:], h.BlockHash[:])
	copy(buf[9+HashSize:], h.PreviousHash[:])
	telemetry.PutString(buf[9+2*HashSize:], h.Validator)
	return buf
}

// UnmarshalHeader decodes a header from its fixed layout.
func UnmarshalHeader(data []byte) (Header, error) {
	h := Header{}
	if len(data) < HeaderSize {
		return h, ErrShortRecord
	}
	h.Index = binary.LittleEndian.Uint32(data)
	h.Timestamp = binary.LittleEndian.Uint32(data[4:])
	h.TxCount = data[8]
	copy(h.BlockHash[:], data[9:9+HashSize])
	copy(h.PreviousHash[:], data[9+HashSize:9+2*HashSize])
	h.Validator = telemetry.GetString(data[9+2*HashSize : HeaderSize])
	return h, nil
}
