// Package telemetry defines the telemetry reading and transaction records
// that get chained into blocks, together with their canonical digests.
package telemetry // import "telemesh.io/prototype/telemetry"

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// HashSize is the size of all content digests.
	HashSize = 32
	// SensorIDSize is the fixed on-wire size of a sensor identifier.
	SensorIDSize = 16
	// AddressSize is the fixed on-wire size of a node address string.
	AddressSize = 17
)

// Reading is a single telemetry sample. Immutable once created.
type Reading struct {
	SensorID       string
	Temperature    float32
	Humidity       float32
	Pressure       float32
	BatteryVoltage float32
	Timestamp      uint32
	RSSI           int16
	Quality        uint8
}

// Transaction wraps a Reading with its content digest and the producing
// node's keyed digest. Verified is reserved and currently always false.
type Transaction struct {
	TxHash    [HashSize]byte
	Reading   Reading
	Signature [HashSize]byte
	Verified  bool
}

// NewTransaction builds a signed transaction for the given reading on
// behalf of the node with the given address.
func NewTransaction(r Reading, address string) Transaction {
	tx := Transaction{Reading: r}
	tx.TxHash = HashReading(r)
	tx.Signature = SignDigest(tx.TxHash, address)
	return tx
}

// HashReading returns the canonical content digest of a reading. The
// pipe-delimited input format, with floats truncated to two decimal places,
// must be reproduced exactly for hash compatibility across peers.
func HashReading(r Reading) [HashSize]byte {
	canonical := fmt.Sprintf("%s|%.2f|%.2f|%.2f|%d",
		r.SensorID, r.Temperature, r.Humidity, r.Pressure, r.Timestamp)
	return sha256.Sum256([]byte(canonical))
}

// SignDigest binds the given content digest to a node address. This is a
// keyed digest, not a verifiable asymmetric signature.
func SignDigest(digest [HashSize]byte, address string) [HashSize]byte {
	input := hex.EncodeToString(digest[:]) + "|" + address
	return sha256.Sum256([]byte(input))
}
