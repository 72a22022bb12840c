package storage

import "encoding/binary"

const pairingMagic = 0x50414952 // "PAIR"

// MaxRosterEntries bounds the fixed-size roster encoding. The spec's
// default MaxTrackers is 10; this leaves headroom for configurations
// that raise it without changing the on-disk layout.
const MaxRosterEntries = 16

// RosterEntry is one tracker's receiver-side bookkeeping (spec §3
// "Tracker roster (receiver)").
type RosterEntry struct {
	Valid        bool
	HWAddr       [6]byte
	LastSeq      byte
	LastRSSI     int8
	DetectCount  uint16
	LossCount    uint16
	Flags        byte
	Battery      byte
	LastSeenTick uint32
}

// Confirmed reports whether the entry has been detected enough times to
// be considered valid (spec §3: "detect_count must reach a threshold
// (default 25) before the entry is considered valid").
func (e RosterEntry) Confirmed(threshold uint16) bool {
	return e.DetectCount >= threshold
}

// IncrementDetect bumps DetectCount, saturating at the uint16 max.
func (e *RosterEntry) IncrementDetect() {
	if e.DetectCount < 0xFFFF {
		e.DetectCount++
	}
}

const rosterEntrySize = 1 + 6 + 1 + 1 + 2 + 2 + 1 + 1 + 4 // 19 bytes

func encodeRosterEntry(e RosterEntry) []byte {
	b := make([]byte, rosterEntrySize)
	if e.Valid {
		b[0] = 1
	}
	copy(b[1:7], e.HWAddr[:])
	b[7] = e.LastSeq
	b[8] = byte(e.LastRSSI)
	binary.BigEndian.PutUint16(b[9:11], e.DetectCount)
	binary.BigEndian.PutUint16(b[11:13], e.LossCount)
	b[13] = e.Flags
	b[14] = e.Battery
	binary.BigEndian.PutUint32(b[15:19], e.LastSeenTick)
	return b
}

func decodeRosterEntry(b []byte) RosterEntry {
	var addr [6]byte
	copy(addr[:], b[1:7])
	return RosterEntry{
		Valid:        b[0] != 0,
		HWAddr:       addr,
		LastSeq:      b[7],
		LastRSSI:     int8(b[8]),
		DetectCount:  binary.BigEndian.Uint16(b[9:11]),
		LossCount:    binary.BigEndian.Uint16(b[11:13]),
		Flags:        b[13],
		Battery:      b[14],
		LastSeenTick: binary.BigEndian.Uint32(b[15:19]),
	}
}

// PairingRecord is the receiver's persisted network key and roster
// (spec §3 "Persisted records": "pairing: network key, roster").
type PairingRecord struct {
	NetworkKey uint32
	Roster     [MaxRosterEntries]RosterEntry
}

const pairingPayloadSize = 4 + MaxRosterEntries*rosterEntrySize

func (p PairingRecord) encode() []byte {
	b := make([]byte, pairingPayloadSize)
	binary.BigEndian.PutUint32(b[0:4], p.NetworkKey)
	for i, e := range p.Roster {
		copy(b[4+i*rosterEntrySize:], encodeRosterEntry(e))
	}
	return b
}

func decodePairingRecord(b []byte) PairingRecord {
	var p PairingRecord
	p.NetworkKey = binary.BigEndian.Uint32(b[0:4])
	for i := range p.Roster {
		off := 4 + i*rosterEntrySize
		p.Roster[i] = decodeRosterEntry(b[off : off+rosterEntrySize])
	}
	return p
}

// ReadPairing loads the current PairingRecord.
func (s *Store) ReadPairing() (PairingRecord, error) {
	payload, err := s.pairing.read(s.nvs)
	if err != nil {
		return PairingRecord{}, err
	}
	return decodePairingRecord(payload), nil
}

// WritePairing persists a new PairingRecord.
func (s *Store) WritePairing(p PairingRecord) error {
	return s.pairing.write(s.nvs, p.encode())
}
