package storage

import (
	"fmt"

	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkerrors"
)

// slot describes one record's double-buffered location in the backing
// NVS: two equal-size banks, bank B immediately following bank A.
type slot struct {
	magic      uint32
	offsetA    int
	offsetB    int
	bankSize   int
	maxPayload int
}

func newSlot(magic uint32, offset, maxPayload int) slot {
	bankSize := headerSize + maxPayload
	return slot{magic: magic, offsetA: offset, offsetB: offset + bankSize, bankSize: bankSize, maxPayload: maxPayload}
}

func (s slot) span() int { return 2 * s.bankSize }

// readBank reads and validates one bank; ok is false if the bank does
// not verify (erased, corrupt, or wrong magic).
func (s slot) readBank(nvs hal.NVS, offset int) (h header, payload []byte, ok bool) {
	raw, err := nvs.Read(offset, s.bankSize)
	if err != nil {
		return header{}, nil, false
	}
	h, payload, err = decodeRecord(raw, s.magic)
	if err != nil {
		return header{}, nil, false
	}
	return h, payload, true
}

// read returns the payload of whichever bank is valid and has the
// larger sequence number.
func (s slot) read(nvs hal.NVS) ([]byte, error) {
	ha, pa, okA := s.readBank(nvs, s.offsetA)
	hb, pb, okB := s.readBank(nvs, s.offsetB)

	switch {
	case okA && okB:
		if newer(ha.sequence, hb.sequence) {
			return pa, nil
		}
		return pb, nil
	case okA:
		return pa, nil
	case okB:
		return pb, nil
	default:
		return nil, fmt.Errorf("storage: no valid bank for record %#x: %w", s.magic, linkerrors.ErrStorageCorrupt)
	}
}

// write serializes payload into the bank that is not currently active,
// with sequence = active.sequence + 1, then reads it back to verify
// before considering the write durable (spec §4.8 write algorithm).
func (s slot) write(nvs hal.NVS, payload []byte) error {
	if len(payload) > s.maxPayload {
		return fmt.Errorf("storage: payload %d exceeds max %d for record %#x", len(payload), s.maxPayload, s.magic)
	}

	ha, _, okA := s.readBank(nvs, s.offsetA)
	hb, _, okB := s.readBank(nvs, s.offsetB)

	targetOffset := s.offsetA
	nextSeq := uint32(1)
	switch {
	case okA && okB:
		if newer(ha.sequence, hb.sequence) {
			targetOffset = s.offsetB
			nextSeq = ha.sequence + 1
		} else {
			targetOffset = s.offsetA
			nextSeq = hb.sequence + 1
		}
	case okA:
		targetOffset = s.offsetB
		nextSeq = ha.sequence + 1
	case okB:
		targetOffset = s.offsetA
		nextSeq = hb.sequence + 1
	default:
		targetOffset = s.offsetA
		nextSeq = 1
	}

	record := encodeRecord(s.magic, nextSeq, payload)
	if err := nvs.Erase(targetOffset, s.bankSize); err != nil {
		return fmt.Errorf("storage: erase inactive bank: %w: %w", err, linkerrors.ErrHalFault)
	}
	if err := nvs.Write(targetOffset, record); err != nil {
		return fmt.Errorf("storage: write inactive bank: %w: %w", err, linkerrors.ErrHalFault)
	}

	_, verifyPayload, ok := s.readBank(nvs, targetOffset)
	if !ok {
		return fmt.Errorf("storage: read-back verify failed for record %#x: %w", s.magic, linkerrors.ErrStorageCorrupt)
	}
	if string(verifyPayload) != string(payload) {
		return fmt.Errorf("storage: read-back mismatch for record %#x: %w", s.magic, linkerrors.ErrStorageCorrupt)
	}
	return nil
}
