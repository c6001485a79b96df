package log

import (
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// Field represents a typed log field.
type Field = zap.Field

// Bool log field.
func Bool(key string, value bool) Field {
	return zap.Bool(key, value)
}

// Digest log field. The value is hex-encoded for display.
func Digest(key string, value []byte) Field {
	return zap.String(key, hex.EncodeToString(value))
}

// Duration log field.
func Duration(key string, value time.Duration) Field {
	return zap.Duration(key, value)
}

// Err log field.
func Err(value error) Field {
	return zap.Error(value)
}

// Float32 log field.
func Float32(key string, value float32) Field {
	return zap.Float32(key, value)
}

// Int log field.
func Int(key string, value int) Field {
	return zap.Int(key, value)
}

// Int16 log field.
func Int16(key string, value int16) Field {
	return zap.Int16(key, value)
}

// String log field.
func String(key string, value string) Field {
	return zap.String(key, value)
}

// Strings log field.
func Strings(key string, value []string) Field {
	return zap.Strings(key, value)
}

// Uint8 log field.
func Uint8(key string, value uint8) Field {
	return zap.Uint8(key, value)
}

// Uint32 log field.
func Uint32(key string, value uint32) Field {
	return zap.Uint32(key, value)
}

// Uint64 log field.
func Uint64(key string, value uint64) Field {
	return zap.Uint64(key, value)
}
