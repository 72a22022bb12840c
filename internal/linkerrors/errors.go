// Package linkerrors collects the sentinel errors shared across the link
// stack (spec §7). Components wrap these with fmt.Errorf("...: %w", ...)
// so callers can still errors.Is against the taxonomy after context is
// added.
package linkerrors

import "errors"

var (
	// ErrHalFault indicates a collaborator (IMU, radio PHY, USB HID, NVS)
	// returned an error the caller could not recover from locally.
	ErrHalFault = errors.New("linkerrors: hal fault")

	// ErrInvalidPacket covers every wire-decode rejection: bad length,
	// bad CRC, or an unrecognized packet type.
	ErrInvalidPacket = errors.New("linkerrors: invalid packet")

	// ErrInvalidLength means a frame's length did not match its packet
	// class.
	ErrInvalidLength = errors.New("linkerrors: invalid length")

	// ErrInvalidCRC means a frame's integrity check failed.
	ErrInvalidCRC = errors.New("linkerrors: invalid crc")

	// ErrUnknownType means a frame's type byte did not match any known
	// packet class.
	ErrUnknownType = errors.New("linkerrors: unknown packet type")

	// ErrReservedType means a frame's type byte fell in the reserved
	// 224-254 range. Callers treat it as a silent drop, not a decode
	// fault: it is not counted alongside ErrUnknownType/ErrInvalidCRC
	// in per-packet error stats.
	ErrReservedType = errors.New("linkerrors: reserved packet type")

	// ErrSequenceTooOld means a frame's sequence number falls outside the
	// acceptance window and was discarded as a duplicate or replay.
	ErrSequenceTooOld = errors.New("linkerrors: sequence too old")

	// ErrNotPaired means an operation was attempted against a tracker_id
	// that has no roster entry.
	ErrNotPaired = errors.New("linkerrors: not paired")

	// ErrUnsynchronized means the caller addressed a link that has not
	// established superframe sync.
	ErrUnsynchronized = errors.New("linkerrors: unsynchronized")

	// ErrStorageCorrupt means both banks of a persisted record failed
	// their CRC check.
	ErrStorageCorrupt = errors.New("linkerrors: storage corrupt")

	// ErrOutOfSlots means the receiver's roster is full and cannot admit
	// another tracker.
	ErrOutOfSlots = errors.New("linkerrors: out of slots")

	// ErrTimeout means a bounded wait (ack, pairing handshake stage,
	// recovery tier) expired.
	ErrTimeout = errors.New("linkerrors: timeout")
)
