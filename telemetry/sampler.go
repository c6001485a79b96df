package telemetry

import (
	"math/rand"
)

// Sampler produces telemetry readings. Real sensor acquisition lives behind
// this boundary; the shipped implementation simulates plausible values.
type Sampler interface {
	Sample(now uint32) Reading
}

// SimSampler simulates a weather/battery sensor around nominal values.
type SimSampler struct {
	SensorID string
	rng      *rand.Rand
}

// NewSimSampler returns a simulated sampler for the given sensor identity.
func NewSimSampler(sensorID string, seed int64) *SimSampler {
	return &SimSampler{
		SensorID: sensorID,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Sample implements the Sampler interface.
func (s *SimSampler) Sample(now uint32) Reading {
	return Reading{
		SensorID:       s.SensorID,
		Temperature:    20.0 + float32(s.rng.Intn(200)-50)/10.0,
		Humidity:       40.0 + float32(s.rng.Intn(400))/10.0,
		Pressure:       1013.25 + float32(s.rng.Intn(200)-100)/10.0,
		BatteryVoltage: 3.3 + float32(s.rng.Intn(6)-3)/10.0,
		Timestamp:      now,
		RSSI:           int16(-30 - s.rng.Intn(60)),
		Quality:        uint8(95 + s.rng.Intn(5)),
	}
}
