package telemetry

import (
	"bytes"
	"encoding/hex"
	"testing"
)

var testReading = Reading{
	SensorID:       "sensor_001",
	Temperature:    23.5,
	Humidity:       45.2,
	Pressure:       1013.25,
	BatteryVoltage: 3.7,
	Timestamp:      1700000000,
	RSSI:           -67,
	Quality:        87,
}

func TestHashReading(t *testing.T) {
	digest := HashReading(testReading)
	expected := "8f3b99315b32a5f15ab32710a6f84eda2e50caa9bd5506fdfdb241ae431749fb"
	if hex.EncodeToString(digest[:]) != expected {
		t.Fatalf("expected reading digest %s, got %s", expected, hex.EncodeToString(digest[:]))
	}
	// Fields outside the canonical form must not affect the digest.
	altered := testReading
	altered.BatteryVoltage = 2.9
	altered.RSSI = -90
	altered.Quality = 1
	other := HashReading(altered)
	if !bytes.Equal(digest[:], other[:]) {
		t.Fatal("expected digest to ignore battery, rssi and quality fields")
	}
	altered = testReading
	altered.Temperature = 23.51
	other = HashReading(altered)
	if bytes.Equal(digest[:], other[:]) {
		t.Fatal("expected digest to change with the temperature")
	}
}

func TestSignDigest(t *testing.T) {
	digest := HashReading(testReading)
	sig := SignDigest(digest, "AA:BB:CC:DD:EE:01")
	expected := "03316d7cdace77c32f834f949ac7eaa087e21b274d827b1171aba056e6c25b60"
	if hex.EncodeToString(sig[:]) != expected {
		t.Fatalf("expected signature %s, got %s", expected, hex.EncodeToString(sig[:]))
	}
	other := SignDigest(digest, "AA:BB:CC:DD:EE:02")
	if bytes.Equal(sig[:], other[:]) {
		t.Fatal("expected signatures from different addresses to differ")
	}
}

func TestNewTransaction(t *testing.T) {
	tx := NewTransaction(testReading, "AA:BB:CC:DD:EE:01")
	if tx.Reading != testReading {
		t.Fatal("expected the reading to be embedded unchanged")
	}
	if tx.TxHash != HashReading(testReading) {
		t.Fatal("expected TxHash to be the canonical reading digest")
	}
	if tx.Signature != SignDigest(tx.TxHash, "AA:BB:CC:DD:EE:01") {
		t.Fatal("expected the signature to bind the digest to the address")
	}
	if tx.Verified {
		t.Fatal("expected a fresh transaction to be unverified")
	}
}

func TestReadingCodec(t *testing.T) {
	data := MarshalReading(testReading)
	if len(data) != ReadingSize {
		t.Fatalf("expected a %d byte record, got %d", ReadingSize, len(data))
	}
	decoded, err := UnmarshalReading(data)
	if err != nil {
		t.Fatalf("expected reading to decode, got %s", err)
	}
	if decoded != testReading {
		t.Fatalf("expected %v after round trip, got %v", testReading, decoded)
	}
	if _, err = UnmarshalReading(data[:ReadingSize-1]); err != ErrShortRecord {
		t.Fatalf("expected ErrShortRecord for a truncated record, got %v", err)
	}
}

func TestTransactionCodec(t *testing.T) {
	tx := NewTransaction(testReading, "AA:BB:CC:DD:EE:01")
	data := MarshalTransaction(tx)
	if len(data) != TransactionSize {
		t.Fatalf("expected a %d byte record, got %d", TransactionSize, len(data))
	}
	decoded, err := UnmarshalTransaction(data)
	if err != nil {
		t.Fatalf("expected transaction to decode, got %s", err)
	}
	if decoded != tx {
		t.Fatalf("expected %v after round trip, got %v", tx, decoded)
	}
	if _, err = UnmarshalTransaction(data[:TransactionSize-1]); err != ErrShortRecord {
		t.Fatalf("expected ErrShortRecord for a truncated record, got %v", err)
	}
}

func TestFixedStringFields(t *testing.T) {
	r := testReading
	r.SensorID = "a-very-long-sensor-identifier"
	decoded, err := UnmarshalReading(MarshalReading(r))
	if err != nil {
		t.Fatalf("expected reading to decode, got %s", err)
	}
	if decoded.SensorID != "a-very-long-sens" {
		t.Fatalf("expected the sensor ID to truncate at %d bytes, got %q", SensorIDSize, decoded.SensorID)
	}
	r.SensorID = ""
	decoded, err = UnmarshalReading(MarshalReading(r))
	if err != nil {
		t.Fatalf("expected reading to decode, got %s", err)
	}
	if decoded.SensorID != "" {
		t.Fatalf("expected an empty sensor ID to survive, got %q", decoded.SensorID)
	}
}

func TestSimSampler(t *testing.T) {
	s := NewSimSampler("sensor_001", 42)
	r := s.Sample(1700000000)
	if r.SensorID != "sensor_001" {
		t.Fatalf("expected the configured sensor ID, got %q", r.SensorID)
	}
	if r.Timestamp != 1700000000 {
		t.Fatalf("expected the supplied timestamp, got %d", r.Timestamp)
	}
	if r.Temperature < 15 || r.Temperature > 35 {
		t.Fatalf("temperature %f outside the simulated range", r.Temperature)
	}
	if r.Humidity < 40 || r.Humidity > 80 {
		t.Fatalf("humidity %f outside the simulated range", r.Humidity)
	}
}
