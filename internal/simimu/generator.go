package simimu

import (
	"math"
	"sync"

	"github.com/aerolink/motionlink/internal/hal"
)

// SampleRateHz is the fixed rate at which Generator advances its
// internal phase and produces samples, independent of how often the
// caller's main loop happens to poll it.
const SampleRateHz = 200

// Generator synthesizes a gentle periodic wobble — not a still device,
// not a violent one — standing in for a body-worn tracker at rest with
// small natural sway. It has no failure modes: DataReady is always
// true once Resume has been called, matching a free-running sensor
// with no data-ready interrupt to wait on.
type Generator struct {
	mu       sync.Mutex
	suspended bool
	phase    float64

	gyroAmplitudeRadS  float64
	accelAmplitudeG    float64
	hasMag             bool
	hasTemp            bool
	tempC              float64
}

// NewGenerator creates a Generator with a modest default sway
// amplitude. hasMag/hasTemp control whether Read reports those
// optional fields, letting a deployment simulate a tracker variant
// without a magnetometer.
func NewGenerator(hasMag, hasTemp bool) *Generator {
	return &Generator{
		gyroAmplitudeRadS: 0.05,
		accelAmplitudeG:   0.02,
		hasMag:            hasMag,
		hasTemp:           hasTemp,
		tempC:             24.0,
	}
}

// Read advances the internal phase by one sample period and returns
// the resulting synthetic reading: a slow sinusoidal gyro wobble on
// all three axes (phase-offset so the axes don't move in lockstep),
// gravity plus a small correlated linear-acceleration ripple, and (if
// enabled) a fixed-heading magnetic field and a slowly drifting
// temperature.
func (g *Generator) Read() (hal.IMUResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.phase += 2 * math.Pi / SampleRateHz
	if g.phase > 2*math.Pi {
		g.phase -= 2 * math.Pi
	}

	res := hal.IMUResult{
		Gyro: hal.Vec3{
			X: g.gyroAmplitudeRadS * math.Sin(g.phase),
			Y: g.gyroAmplitudeRadS * math.Sin(g.phase+2*math.Pi/3),
			Z: g.gyroAmplitudeRadS * math.Sin(g.phase+4*math.Pi/3),
		},
		Accel: hal.Vec3{
			X: g.accelAmplitudeG * math.Sin(g.phase*0.5),
			Y: g.accelAmplitudeG * math.Cos(g.phase*0.5),
			Z: 1.0 + g.accelAmplitudeG*0.25*math.Sin(g.phase),
		},
	}
	if g.hasMag {
		res.Mag = hal.Vec3{X: 22.0, Y: 5.0, Z: -41.0}
		res.HasMag = true
	}
	if g.hasTemp {
		g.tempC += 0.0001 * math.Sin(g.phase)
		res.Temp = g.tempC
		res.HasTemp = true
	}
	return res, nil
}

// Suspend marks the generator idle; DataReady reports false until Resume.
func (g *Generator) Suspend() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suspended = true
	return nil
}

// Resume marks the generator active again.
func (g *Generator) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suspended = false
	return nil
}

// DataReady reports whether a sample is available, always true while
// not suspended.
func (g *Generator) DataReady() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.suspended
}
