package storage

import (
	"encoding/binary"
	"math"
)

const retainedMagic = 0x52455441 // "RETA"

// RetainedState is the cross-sleep state a tracker restores on wake
// (spec §3 "retained state": "magic, timestamp, last quaternion, gyro
// bias, sleep/wake counts"). MagHeadingRef additionally persists the
// magnetometer heading reference the fusion engine last converged on
// (SPEC_FULL.md §C, resolving spec §9's Open Question 1: the receiver
// otherwise has to reacquire heading alignment from a cold start on
// every wake, which is visible to the wearer as the model briefly
// yawing before mag correction re-converges).
type RetainedState struct {
	Timestamp        uint32
	LastQuatW        float64
	LastQuatX        float64
	LastQuatY        float64
	LastQuatZ        float64
	GyroBias         [3]float64
	SleepCount       uint32
	WakeCount        uint32
	HasMagHeadingRef bool
	MagHeadingRef    float64
}

const retainedPayloadSize = 4 + 8*4 + 8*3 + 4 + 4 + 1 + 8

func (r RetainedState) encode() []byte {
	b := make([]byte, retainedPayloadSize)
	off := 0
	putU32 := func(v uint32) { binary.BigEndian.PutUint32(b[off:off+4], v); off += 4 }
	putF64 := func(v float64) { binary.BigEndian.PutUint64(b[off:off+8], math.Float64bits(v)); off += 8 }

	putU32(r.Timestamp)
	putF64(r.LastQuatW)
	putF64(r.LastQuatX)
	putF64(r.LastQuatY)
	putF64(r.LastQuatZ)
	putF64(r.GyroBias[0])
	putF64(r.GyroBias[1])
	putF64(r.GyroBias[2])
	putU32(r.SleepCount)
	putU32(r.WakeCount)
	if r.HasMagHeadingRef {
		b[off] = 1
	}
	off++
	putF64(r.MagHeadingRef)
	return b
}

func decodeRetainedState(b []byte) RetainedState {
	off := 0
	getU32 := func() uint32 { v := binary.BigEndian.Uint32(b[off : off+4]); off += 4; return v }
	getF64 := func() float64 { v := math.Float64frombits(binary.BigEndian.Uint64(b[off : off+8])); off += 8; return v }

	var r RetainedState
	r.Timestamp = getU32()
	r.LastQuatW = getF64()
	r.LastQuatX = getF64()
	r.LastQuatY = getF64()
	r.LastQuatZ = getF64()
	r.GyroBias[0] = getF64()
	r.GyroBias[1] = getF64()
	r.GyroBias[2] = getF64()
	r.SleepCount = getU32()
	r.WakeCount = getU32()
	r.HasMagHeadingRef = b[off] != 0
	off++
	r.MagHeadingRef = getF64()
	return r
}

// ReadRetainedState loads the current RetainedState.
func (s *Store) ReadRetainedState() (RetainedState, error) {
	payload, err := s.retained.read(s.nvs)
	if err != nil {
		return RetainedState{}, err
	}
	return decodeRetainedState(payload), nil
}

// WriteRetainedState persists a new RetainedState.
func (s *Store) WriteRetainedState(r RetainedState) error {
	return s.retained.write(s.nvs, r.encode())
}
