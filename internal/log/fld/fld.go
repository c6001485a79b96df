// Package fld provides field constructors with preset key names.
package fld

import (
	"fmt"
	"time"

	"telemesh.io/prototype/internal/log"
)

// Address log field.
func Address(value string) log.Field {
	return log.String("address", value)
}

// BlockHash log field.
func BlockHash(value []byte) log.Field {
	return log.Digest("block.hash", value)
}

// BlockIndex log field.
func BlockIndex(value uint32) log.Field {
	return log.Uint32("block.index", value)
}

// Err log field.
func Err(value error) log.Field {
	return log.Err(value)
}

// MessageType log field.
func MessageType(value fmt.Stringer) log.Field {
	return log.String("msg.type", value.String())
}

// NetworkName log field.
func NetworkName(value string) log.Field {
	return log.String("network.name", value)
}

// PeerCount log field.
func PeerCount(value int) log.Field {
	return log.Int("peer.count", value)
}

// PoolSize log field.
func PoolSize(value int) log.Field {
	return log.Int("pool.size", value)
}

// Port log field.
func Port(value int) log.Field {
	return log.Int("port", value)
}

// PrevHash log field.
func PrevHash(value []byte) log.Field {
	return log.Digest("prev.hash", value)
}

// Role log field.
func Role(value fmt.Stringer) log.Field {
	return log.String("role", value.String())
}

// SensorID log field.
func SensorID(value string) log.Field {
	return log.String("sensor.id", value)
}

// Sender log field.
func Sender(value string) log.Field {
	return log.String("sender", value)
}

// Size log field.
func Size(value int) log.Field {
	return log.Int("size", value)
}

// TimeTaken log field.
func TimeTaken(value time.Duration) log.Field {
	return log.Duration("time.taken", value)
}

// TotalBlocks log field.
func TotalBlocks(value uint32) log.Field {
	return log.Uint32("total.blocks", value)
}

// TxCount log field.
func TxCount(value int) log.Field {
	return log.Int("tx.count", value)
}

// TxHash log field.
func TxHash(value []byte) log.Field {
	return log.Digest("tx.hash", value)
}

// Validator log field.
func Validator(value string) log.Field {
	return log.String("validator", value)
}
