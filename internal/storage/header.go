package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/linkerrors"
)

// headerSize is the on-disk size of a record header: magic(4) +
// version(1) + sequence(4) + length(2) + crc16(2).
const headerSize = 13

const recordVersion = 1

type header struct {
	magic    uint32
	version  byte
	sequence uint32
	length   uint16
	crc16    uint16
}

func encodeRecord(magic uint32, sequence uint32, payload []byte) []byte {
	out := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(out[0:4], magic)
	out[4] = recordVersion
	binary.BigEndian.PutUint32(out[5:9], sequence)
	binary.BigEndian.PutUint16(out[9:11], uint16(len(payload)))
	copy(out[headerSize:], payload)
	crc := codec.CRC16(append(append([]byte{}, out[:11]...), payload...))
	binary.BigEndian.PutUint16(out[11:13], crc)
	return out
}

func decodeRecord(raw []byte, wantMagic uint32) (header, []byte, error) {
	if len(raw) < headerSize {
		return header{}, nil, fmt.Errorf("storage: record shorter than header: %w", linkerrors.ErrStorageCorrupt)
	}
	h := header{
		magic:    binary.BigEndian.Uint32(raw[0:4]),
		version:  raw[4],
		sequence: binary.BigEndian.Uint32(raw[5:9]),
		length:   binary.BigEndian.Uint16(raw[9:11]),
		crc16:    binary.BigEndian.Uint16(raw[11:13]),
	}
	if h.magic != wantMagic {
		return header{}, nil, fmt.Errorf("storage: magic %#x, want %#x: %w", h.magic, wantMagic, linkerrors.ErrStorageCorrupt)
	}
	if int(h.length) > len(raw)-headerSize {
		return header{}, nil, fmt.Errorf("storage: length %d exceeds slot capacity: %w", h.length, linkerrors.ErrStorageCorrupt)
	}
	payload := raw[headerSize : headerSize+int(h.length)]
	check := append(append([]byte{}, raw[:11]...), payload...)
	if codec.CRC16(check) != h.crc16 {
		return header{}, nil, fmt.Errorf("storage: crc16 mismatch: %w", linkerrors.ErrStorageCorrupt)
	}
	return h, payload, nil
}

// newer reports whether sequence a postdates b, using a wraparound-safe
// signed-difference comparison over the 32-bit sequence space (spec
// §4.8: "wraparound-safe via signed-difference compare").
func newer(a, b uint32) bool {
	return int32(a-b) > 0
}
