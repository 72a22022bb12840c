package codec

import (
	"fmt"

	"github.com/aerolink/motionlink/internal/linkerrors"
)

// PairingStage enumerates the discovery-channel handshake steps carried
// in a PairingFrame (spec §4.6).
type PairingStage byte

const (
	PairingStageAdvertise PairingStage = 0
	PairingStageClaim     PairingStage = 1
	PairingStageConfirm   PairingStage = 2
)

// PairingFrame is the fixed 8-byte frame exchanged on the discovery
// pipe before a tracker has an assigned data-pipe address. It carries
// its own lightweight CRC8 rather than the data packets' CRC32-K,
// because discovery traffic is short and collision-prone; spec §9 Open
// Question keeps the zero-result rewrite (crc8 never legitimately
// reports 0) for compatibility with deployed firmware that treats 0 as
// "no checksum present".
type PairingFrame struct {
	Stage PairingStage
	Addr  [6]byte
}

// EncodePairingFrame serializes a PairingFrame to its 8-byte wire form.
// The CRC8 covers only the 6-byte address (spec §4.1), not the stage
// byte, so the same address produces the same checksum across every
// stage of the handshake.
func EncodePairingFrame(f PairingFrame) []byte {
	body := make([]byte, 7)
	body[0] = byte(f.Stage)
	copy(body[1:7], f.Addr[:])
	out := make([]byte, 0, PairingFrameSize)
	out = append(out, crc8(f.Addr[:]))
	out = append(out, body...)
	return out
}

// DecodePairingFrame validates and parses an 8-byte pairing frame.
func DecodePairingFrame(raw []byte) (PairingFrame, error) {
	if len(raw) != PairingFrameSize {
		return PairingFrame{}, fmt.Errorf("codec: pairing frame length %d, want %d: %w", len(raw), PairingFrameSize, linkerrors.ErrInvalidLength)
	}
	body := raw[1:]
	var addr [6]byte
	copy(addr[:], body[1:7])
	if crc8(addr[:]) != raw[0] {
		return PairingFrame{}, fmt.Errorf("codec: pairing frame crc8 mismatch: %w", linkerrors.ErrInvalidCRC)
	}
	return PairingFrame{Stage: PairingStage(body[0]), Addr: addr}, nil
}
