package storage

import "github.com/aerolink/motionlink/internal/hal"

// Store is the Persisted State component: the four record types laid
// out as fixed double-buffered slots over a backing hal.NVS region
// (spec §4.8).
type Store struct {
	nvs         hal.NVS
	pairing     slot
	retained    slot
	calibration slot
	crash       slot
}

// Size is the total NVS region a Store occupies.
func Size() int {
	offset := 0
	offset += newSlot(pairingMagic, offset, pairingPayloadSize).span()
	offset += newSlot(retainedMagic, offset, retainedPayloadSize).span()
	offset += newSlot(calibrationMagic, offset, calibrationPayloadSize).span()
	offset += newSlot(crashMagic, offset, crashPayloadSize).span()
	return offset
}

// New creates a Store backed by nvs, which must be at least Size()
// bytes.
func New(nvs hal.NVS) *Store {
	offset := 0
	pairing := newSlot(pairingMagic, offset, pairingPayloadSize)
	offset += pairing.span()
	retained := newSlot(retainedMagic, offset, retainedPayloadSize)
	offset += retained.span()
	calibration := newSlot(calibrationMagic, offset, calibrationPayloadSize)
	offset += calibration.span()
	crash := newSlot(crashMagic, offset, crashPayloadSize)

	return &Store{nvs: nvs, pairing: pairing, retained: retained, calibration: calibration, crash: crash}
}
