package codec

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"

	"github.com/aerolink/motionlink/internal/linkerrors"
)

// InfoPacket carries tracker identity and firmware version (spec §3,
// type 0). Sent at a low duty cycle, interleaved with motion packets.
type InfoPacket struct {
	TrackerID     byte
	Protocol      byte
	BatteryPct    byte
	BatteryMVDiv8 byte
	TempC         int8
	BoardID       byte
	MCUID         byte
	IMUID         byte
	MagID         byte
	FWDate        uint16
	FWMajor       byte
	FWMinor       byte
	FWPatch       byte
	RSSI          int8
}

func (p InfoPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketInfo)
	b[1] = p.TrackerID
	b[2] = p.Protocol
	b[3] = p.BatteryPct
	b[4] = p.BatteryMVDiv8
	b[5] = byte(p.TempC)
	b[6] = p.BoardID
	b[7] = p.MCUID
	b[8] = p.IMUID
	b[9] = p.MagID
	putInt16(b[10:12], int16(p.FWDate))
	b[12] = p.FWMajor
	b[13] = p.FWMinor
	b[14] = p.FWPatch
	b[15] = byte(p.RSSI)
	return b
}

func decodeInfoPacket(b [16]byte) InfoPacket {
	return InfoPacket{
		TrackerID:     b[1],
		Protocol:      b[2],
		BatteryPct:    b[3],
		BatteryMVDiv8: b[4],
		TempC:         int8(b[5]),
		BoardID:       b[6],
		MCUID:         b[7],
		IMUID:         b[8],
		MagID:         b[9],
		FWDate:        uint16(getInt16(b[10:12])),
		FWMajor:       b[12],
		FWMinor:       b[13],
		FWPatch:       b[14],
		RSSI:          int8(b[15]),
	}
}

// QuatAccelFullPacket carries full-precision orientation and linear
// acceleration (spec §3, type 1): the primary high-rate motion packet
// when link budget allows Q15 quaternion components.
type QuatAccelFullPacket struct {
	TrackerID byte
	Quat      quat.Number
	Accel     Vec3I16 // 1/1000 m/s^2 per LSB
}

func (p QuatAccelFullPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketQuatAccelFull)
	b[1] = p.TrackerID
	copy(b[2:10], encodeQuatQ15(p.Quat))
	copy(b[10:16], encodeVec3I16(p.Accel))
	return b
}

func decodeQuatAccelFullPacket(b [16]byte) QuatAccelFullPacket {
	return QuatAccelFullPacket{
		TrackerID: b[1],
		Quat:      decodeQuatQ15(b[2:10]),
		Accel:     decodeVec3I16(b[10:16]),
	}
}

// QuatAccelCompactPacket trades quaternion precision (smallest-three)
// and coarser accelerometer/battery-voltage resolution for room to carry
// battery and temperature telemetry in the same 16-byte frame as motion
// data (spec §3, type 2). Acceleration is quantized to 0.04 g per LSB
// (±5.08 g) so three axes fit in 3 bytes instead of the 6 the full
// packet spends; this is an implementation choice the distilled field
// list did not fully constrain — see DESIGN.md.
type QuatAccelCompactPacket struct {
	TrackerID      byte
	BatteryPct     byte
	BatteryMVDiv32 byte
	TempC          int8
	Quat           quat.Number
	Accel          [3]int8 // 0.04 g per LSB
	RSSI           int8
}

func (p QuatAccelCompactPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketQuatAccelCompact)
	b[1] = p.TrackerID
	b[2] = p.BatteryPct
	b[3] = p.BatteryMVDiv32
	b[4] = byte(p.TempC)
	q7 := CompressQuat(p.Quat)
	copy(b[5:12], q7[:])
	b[12] = byte(p.Accel[0])
	b[13] = byte(p.Accel[1])
	b[14] = byte(p.Accel[2])
	b[15] = byte(p.RSSI)
	return b
}

func decodeQuatAccelCompactPacket(b [16]byte) QuatAccelCompactPacket {
	var q7 [7]byte
	copy(q7[:], b[5:12])
	return QuatAccelCompactPacket{
		TrackerID:      b[1],
		BatteryPct:     b[2],
		BatteryMVDiv32: b[3],
		TempC:          int8(b[4]),
		Quat:           DecompressQuat(q7),
		Accel:          [3]int8{int8(b[12]), int8(b[13]), int8(b[14])},
		RSSI:           int8(b[15]),
	}
}

// StatusPacket reports receiver-observed link and server status for one
// tracker slot (spec §3, type 3).
type StatusPacket struct {
	TrackerID    byte
	ServerStatus byte
	TrackerFlags byte
	Reserved     [11]byte
	RSSI         int8
}

func (p StatusPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketStatus)
	b[1] = p.TrackerID
	b[2] = p.ServerStatus
	b[3] = p.TrackerFlags
	copy(b[4:15], p.Reserved[:])
	b[15] = byte(p.RSSI)
	return b
}

func decodeStatusPacket(b [16]byte) StatusPacket {
	var reserved [11]byte
	copy(reserved[:], b[4:15])
	return StatusPacket{
		TrackerID:    b[1],
		ServerStatus: b[2],
		TrackerFlags: b[3],
		Reserved:     reserved,
		RSSI:         int8(b[15]),
	}
}

// QuatMagPacket carries full-precision orientation and raw magnetometer
// samples (spec §3, type 4), interleaved at a low duty cycle to feed the
// orientation engine's magnetic disturbance detector without costing
// bandwidth on every frame.
type QuatMagPacket struct {
	TrackerID byte
	Quat      quat.Number
	Mag       Vec3I16 // 1/10 uT per LSB
}

func (p QuatMagPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketQuatMag)
	b[1] = p.TrackerID
	copy(b[2:10], encodeQuatQ15(p.Quat))
	copy(b[10:16], encodeVec3I16(p.Mag))
	return b
}

func decodeQuatMagPacket(b [16]byte) QuatMagPacket {
	return QuatMagPacket{
		TrackerID: b[1],
		Quat:      decodeQuatQ15(b[2:10]),
		Mag:       decodeVec3I16(b[10:16]),
	}
}

// RegistrationPacket is emitted by the receiver toward the host (not the
// tracker) to announce a newly paired tracker_id/hardware-address
// binding (spec §3, type 255).
type RegistrationPacket struct {
	TrackerID byte
	HWAddr    [6]byte
}

func (p RegistrationPacket) encode() [16]byte {
	var b [16]byte
	b[0] = byte(PacketRegistration)
	b[1] = p.TrackerID
	copy(b[2:8], p.HWAddr[:])
	return b
}

func decodeRegistrationPacket(b [16]byte) RegistrationPacket {
	var addr [6]byte
	copy(addr[:], b[2:8])
	return RegistrationPacket{TrackerID: b[1], HWAddr: addr}
}

// EncodeFrame appends the CRC32-K trailer and sequence byte to a 16-byte
// payload, producing the full FrameSize on-air frame.
func EncodeFrame(payload [16]byte, seq byte) []byte {
	out := make([]byte, 0, FrameSize)
	out = append(out, payload[:]...)
	crc := crc32k(payload[:])
	out = append(out, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
	out = append(out, seq)
	return out
}

// DecodeFrame validates and strips a frame's CRC32-K trailer, returning
// the 16-byte payload and sequence byte. Per the length policy (spec
// §4.1), a data frame is 16 bytes (bare payload, no CRC or sequence),
// 20 bytes (payload + CRC32-K, no sequence), or FrameSize (21) bytes
// (payload + CRC32-K + sequence). Any other length is rejected.
func DecodeFrame(raw []byte) (payload [16]byte, seq byte, err error) {
	switch len(raw) {
	case PayloadSize:
		copy(payload[:], raw)
		return payload, 0, nil
	case PayloadSize + 4, FrameSize:
		copy(payload[:], raw[:16])
		want := crc32k(payload[:])
		got := uint32(raw[16])<<24 | uint32(raw[17])<<16 | uint32(raw[18])<<8 | uint32(raw[19])
		if want != got {
			return payload, 0, fmt.Errorf("codec: crc32k mismatch: %w", linkerrors.ErrInvalidCRC)
		}
		if len(raw) == FrameSize {
			seq = raw[20]
		}
		return payload, seq, nil
	default:
		return payload, 0, fmt.Errorf("codec: frame length %d, want %d/%d/%d: %w", len(raw), PayloadSize, PayloadSize+4, FrameSize, linkerrors.ErrInvalidLength)
	}
}

// Packet is the decoded, typed form of any frame's payload. Exactly one
// field is populated, selected by Type.
type Packet struct {
	Type         PacketType
	Sequence     byte
	Info         *InfoPacket
	QuatAccel    *QuatAccelFullPacket
	QuatAccelC   *QuatAccelCompactPacket
	Status       *StatusPacket
	QuatMag      *QuatMagPacket
	Registration *RegistrationPacket
}

// Encode serializes one of the typed packet payloads into a complete
// on-air frame, assigning it the given sequence number.
func Encode(seq byte, payload interface{}) ([]byte, error) {
	var raw [16]byte
	switch p := payload.(type) {
	case InfoPacket:
		raw = p.encode()
	case QuatAccelFullPacket:
		raw = p.encode()
	case QuatAccelCompactPacket:
		raw = p.encode()
	case StatusPacket:
		raw = p.encode()
	case QuatMagPacket:
		raw = p.encode()
	case RegistrationPacket:
		raw = p.encode()
	default:
		return nil, fmt.Errorf("codec: unsupported payload type %T: %w", payload, linkerrors.ErrUnknownType)
	}
	return EncodeFrame(raw, seq), nil
}

// Decode validates a raw frame and dispatches on its type byte to
// produce a typed Packet. Type values 224-254 are reserved (spec
// §4.1) and are dropped silently: Decode reports them via
// linkerrors.ErrReservedType rather than ErrUnknownType, so callers
// can skip them without counting a decode fault.
func Decode(raw []byte) (Packet, error) {
	payload, seq, err := DecodeFrame(raw)
	if err != nil {
		return Packet{}, err
	}

	t := PacketType(payload[0])
	if t >= 224 && t <= 254 {
		return Packet{}, linkerrors.ErrReservedType
	}

	pkt := Packet{Type: t, Sequence: seq}
	switch t {
	case PacketInfo:
		v := decodeInfoPacket(payload)
		pkt.Info = &v
	case PacketQuatAccelFull:
		v := decodeQuatAccelFullPacket(payload)
		pkt.QuatAccel = &v
	case PacketQuatAccelCompact:
		v := decodeQuatAccelCompactPacket(payload)
		pkt.QuatAccelC = &v
	case PacketStatus:
		v := decodeStatusPacket(payload)
		pkt.Status = &v
	case PacketQuatMag:
		v := decodeQuatMagPacket(payload)
		pkt.QuatMag = &v
	case PacketRegistration:
		v := decodeRegistrationPacket(payload)
		pkt.Registration = &v
	default:
		return Packet{}, fmt.Errorf("codec: unknown packet type %d: %w", payload[0], linkerrors.ErrUnknownType)
	}
	return pkt, nil
}
