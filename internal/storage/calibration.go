package storage

import (
	"encoding/binary"
	"math"
)

const calibrationMagic = 0x43414C42 // "CALB"

// Calibration is the sensor calibration record (spec §3 "calibration":
// "accelerometer offset/scale, magnetometer hard/soft iron"). Soft iron
// is stored as a per-axis diagonal scale rather than a full 3x3 matrix:
// the fusion engine only ever applies soft-iron correction axis-wise
// (internal/orientation), so the off-diagonal terms a full matrix would
// carry have no consumer.
type Calibration struct {
	AccelOffset [3]float64
	AccelScale  [3]float64
	MagHardIron [3]float64
	MagSoftIron [3]float64
}

const calibrationPayloadSize = 8 * 3 * 4

func (c Calibration) encode() []byte {
	b := make([]byte, calibrationPayloadSize)
	off := 0
	put := func(v float64) { binary.BigEndian.PutUint64(b[off:off+8], math.Float64bits(v)); off += 8 }
	for _, v := range c.AccelOffset {
		put(v)
	}
	for _, v := range c.AccelScale {
		put(v)
	}
	for _, v := range c.MagHardIron {
		put(v)
	}
	for _, v := range c.MagSoftIron {
		put(v)
	}
	return b
}

func decodeCalibration(b []byte) Calibration {
	off := 0
	get := func() float64 { v := math.Float64frombits(binary.BigEndian.Uint64(b[off : off+8])); off += 8; return v }
	var c Calibration
	for i := range c.AccelOffset {
		c.AccelOffset[i] = get()
	}
	for i := range c.AccelScale {
		c.AccelScale[i] = get()
	}
	for i := range c.MagHardIron {
		c.MagHardIron[i] = get()
	}
	for i := range c.MagSoftIron {
		c.MagSoftIron[i] = get()
	}
	return c
}

// ReadCalibration loads the current Calibration.
func (s *Store) ReadCalibration() (Calibration, error) {
	payload, err := s.calibration.read(s.nvs)
	if err != nil {
		return Calibration{}, err
	}
	return decodeCalibration(payload), nil
}

// WriteCalibration persists a new Calibration.
func (s *Store) WriteCalibration(c Calibration) error {
	return s.calibration.write(s.nvs, c.encode())
}
