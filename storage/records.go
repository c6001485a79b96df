package storage

import (
	"encoding/binary"

	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/telemetry"
)

// metaSize is the fixed size of the metadata record.
const metaSize = 4 + 4 + 4 + telemetry.AddressSize

// encodeChain lays the retained blocks out as a count-prefixed sequence of
// fixed-size block records, oldest first.
func encodeChain(blocks []ledger.Block) []byte {
	buf := make([]byte, 4, 4+len(blocks)*ledger.BlockSize)
	binary.LittleEndian.PutUint32(buf, uint32(len(blocks)))
	for i := range blocks {
		buf = append(buf, blocks[i].Marshal()...)
	}
	return buf
}

// decodeChain reads back up to maxBlocks block records, capping at the
// stored count. A short or malformed buffer is ErrCorrupt.
func decodeChain(data []byte, maxBlocks int) ([]ledger.Block, error) {
	if len(data) < 4 {
		return nil, ErrCorrupt
	}
	count := int(binary.LittleEndian.Uint32(data))
	if count > maxBlocks {
		count = maxBlocks
	}
	if len(data) < 4+count*ledger.BlockSize {
		return nil, ErrCorrupt
	}
	blocks := make([]ledger.Block, 0, count)
	for i := 0; i < count; i++ {
		b, err := ledger.UnmarshalBlock(data[4+i*ledger.BlockSize:])
		if err != nil {
			return nil, ErrCorrupt
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func encodeMeta(m *Meta) []byte {
	buf := make([]byte, metaSize)
	binary.LittleEndian.PutUint32(buf, m.BlockCount)
	binary.LittleEndian.PutUint32(buf[4:], m.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[8:], m.LastSaveTime)
	telemetry.PutString(buf[12:], m.LastValidator)
	return buf
}

func decodeMeta(data []byte) (*Meta, error) {
	if len(data) < metaSize {
		return nil, ErrCorrupt
	}
	return &Meta{
		BlockCount:    binary.LittleEndian.Uint32(data),
		TotalBlocks:   binary.LittleEndian.Uint32(data[4:]),
		LastSaveTime:  binary.LittleEndian.Uint32(data[8:]),
		LastValidator: telemetry.GetString(data[12:metaSize]),
	}, nil
}

// encodePool lays the pooled transactions out as a count-prefixed sequence
// of fixed-size transaction records, oldest first.
func encodePool(txs []telemetry.Transaction) []byte {
	buf := make([]byte, 1, 1+len(txs)*telemetry.TransactionSize)
	buf[0] = uint8(len(txs))
	for _, tx := range txs {
		buf = append(buf, telemetry.MarshalTransaction(tx)...)
	}
	return buf
}

func decodePool(data []byte) ([]telemetry.Transaction, error) {
	if len(data) < 1 {
		return nil, ErrCorrupt
	}
	count := int(data[0])
	if len(data) < 1+count*telemetry.TransactionSize {
		return nil, ErrCorrupt
	}
	txs := make([]telemetry.Transaction, 0, count)
	for i := 0; i < count; i++ {
		tx, err := telemetry.UnmarshalTransaction(data[1+i*telemetry.TransactionSize:])
		if err != nil {
			return nil, ErrCorrupt
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
