package telemetry

import (
	"encoding/binary"
	"errors"
	"math"
)

// Record sizes of the fixed little-endian layouts.
const (
	ReadingSize     = SensorIDSize + 4*4 + 4 + 2 + 1
	TransactionSize = HashSize + ReadingSize + HashSize + 1
)

// ErrShortRecord is returned when a buffer is too small to hold the
// expected record.
var ErrShortRecord = errors.New("telemetry: short record")

// PutString copies a string into a fixed-size field, truncating and
// NUL-padding as needed.
func PutString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, s)
}

// GetString reads a NUL-padded fixed-size string field.
func GetString(src []byte) string {
	for i, c := range src {
		if c == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}

// MarshalReading encodes the reading into its fixed 39-byte layout.
func MarshalReading(r Reading) []byte {
	b := make([]byte, ReadingSize)
	PutString(b[:SensorIDSize], r.SensorID)
	idx := SensorIDSize
	for _, f := range []float32{r.Temperature, r.Humidity, r.Pressure, r.BatteryVoltage} {
		binary.LittleEndian.PutUint32(b[idx:], math.Float32bits(f))
		idx += 4
	}
	binary.LittleEndian.PutUint32(b[idx:], r.Timestamp)
	binary.LittleEndian.PutUint16(b[idx+4:], uint16(r.RSSI))
	b[idx+6] = r.Quality
	return b
}

// UnmarshalReading decodes a reading from its fixed layout.
func UnmarshalReading(data []byte) (Reading, error) {
	r := Reading{}
	if len(data) < ReadingSize {
		return r, ErrShortRecord
	}
	r.SensorID = GetString(data[:SensorIDSize])
	idx := SensorIDSize
	r.Temperature = math.Float32frombits(binary.LittleEndian.Uint32(data[idx:]))
	r.Humidity = math.Float32frombits(binary.LittleEndian.Uint32(data[idx+4:]))
	r.Pressure = math.Float32frombits(binary.LittleEndian.Uint32(data[idx+8:]))
	r.BatteryVoltage = math.Float32frombits(binary.LittleEndian.Uint32(data[idx+12:]))
	r.Timestamp = binary.LittleEndian.Uint32(data[idx+16:])
	r.RSSI = int16(binary.LittleEndian.Uint16(data[idx+20:]))
	r.Quality = data[idx+22]
	return r, nil
}

// MarshalTransaction encodes the transaction into its fixed 104-byte layout.
func MarshalTransaction(tx Transaction) []byte {
	b := make([]byte, 0, TransactionSize)
	b = append(b, tx.TxHash[:]...)
	b = append(b, MarshalReading(tx.Reading)...)
	b = append(b, tx.Signature[:]...)
	if tx.Verified {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	return b
}

// UnmarshalTransaction decodes a transaction from its fixed layout.
func UnmarshalTransaction(data []byte) (Transaction, error) {
	tx := Transaction{}
	if len(data) < TransactionSize {
		return tx, ErrShortRecord
	}
	copy(tx.TxHash[:], data[:HashSize])
	r, err := UnmarshalReading(data[HashSize : HashSize+ReadingSize])
	if err != nil {
		return tx, err
	}
	tx.Reading = r
	copy(tx.Signature[:], data[HashSize+ReadingSize:])
	tx.Verified = data[HashSize+ReadingSize+HashSize] != 0
	return tx, nil
}
