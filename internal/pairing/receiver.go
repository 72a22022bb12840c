package pairing

import (
	"fmt"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/linkerrors"
	"github.com/aerolink/motionlink/internal/storage"
)

// ReceiverService runs the receiver side of the discovery handshake
// (spec §4.7).
type ReceiverService struct {
	cfg    *linkconfig.LinkConfig
	clock  linkclock.Clock
	store  *storage.Store
	key    uint32
	roster [storage.MaxRosterEntries]storage.RosterEntry

	active  bool
	expires linkclock.Deadline
	epoch   *linkclock.Epoch
}

// NewReceiverService creates a ReceiverService seeded with the
// persisted pairing record (network key and roster), loaded from store
// if present.
func NewReceiverService(cfg *linkconfig.LinkConfig, clock linkclock.Clock, store *storage.Store, networkKey uint32) *ReceiverService {
	s := &ReceiverService{cfg: cfg, clock: clock, store: store, key: networkKey, epoch: linkclock.NewEpoch(clock)}
	if rec, err := store.ReadPairing(); err == nil {
		s.key = rec.NetworkKey
		s.roster = rec.Roster
	}
	return s
}

// NetworkKey returns the receiver's network key.
func (s *ReceiverService) NetworkKey() uint32 { return s.key }

// Roster returns a copy of the current roster.
func (s *ReceiverService) Roster() [storage.MaxRosterEntries]storage.RosterEntry {
	return s.roster
}

// EnterPairingMode opens the discovery handshake for
// GetPairingModeTimeout (default 60s).
func (s *ReceiverService) EnterPairingMode() {
	s.active = true
	s.expires = s.epoch.DeadlineIn(s.cfg.GetPairingModeTimeout())
}

// ExitPairingMode closes the handshake early (e.g. on explicit user
// command).
func (s *ReceiverService) ExitPairingMode() {
	s.active = false
}

// Active reports whether pairing mode is currently open, expiring it
// first if its deadline has passed (spec §4.7: "Pairing mode expires
// after 60 s if no request is received").
func (s *ReceiverService) Active() bool {
	if s.active && s.expires.Expired(s.epoch) {
		s.active = false
	}
	return s.active
}

// HandleDiscoveryFrame processes one stage=0 advertisement from an
// unpaired tracker. It returns the stage=2 confirmation frame to
// transmit back, or nil if the frame was ignored (wrong stage, pairing
// mode closed). An all-zero address is rejected per spec §4.7.
func (s *ReceiverService) HandleDiscoveryFrame(raw []byte) ([]byte, error) {
	if !s.Active() {
		return nil, nil
	}

	frame, err := codec.DecodePairingFrame(raw)
	if err != nil {
		return nil, err
	}
	if frame.Stage != codec.PairingStageAdvertise {
		return nil, nil
	}
	if frame.Addr == ([6]byte{}) {
		return nil, fmt.Errorf("pairing: rejected zero address")
	}
	s.expires = s.epoch.DeadlineIn(s.cfg.GetPairingModeTimeout())

	trackerID, isNew, err := s.admit(frame.Addr)
	if err != nil {
		return nil, err
	}
	if isNew {
		if err := s.persist(); err != nil {
			return nil, err
		}
	}

	response := codec.PairingFrame{Stage: codec.PairingStageConfirm, Addr: encodeConfirmAddr(trackerID, s.key)}
	return codec.EncodePairingFrame(response), nil
}

// admit deduplicates addr against the roster, allocating the lowest
// free tracker_id if it is new.
func (s *ReceiverService) admit(addr [6]byte) (trackerID byte, isNew bool, err error) {
	for i, e := range s.roster {
		if e.Valid && e.HWAddr == addr {
			return byte(i), false, nil
		}
	}

	for i := range s.roster {
		if !s.roster[i].Valid {
			s.roster[i] = storage.RosterEntry{Valid: true, HWAddr: addr}
			return byte(i), true, nil
		}
	}
	return 0, false, fmt.Errorf("pairing: roster full: %w", linkerrors.ErrOutOfSlots)
}

func (s *ReceiverService) persist() error {
	return s.store.WritePairing(storage.PairingRecord{NetworkKey: s.key, Roster: s.roster})
}

// UpdateTelemetry records per-frame link telemetry (sequence, RSSI,
// last-seen tick) for trackerID's roster entry. It never persists: spec
// §5's shared-resource policy mutates storage only during SEARCH_SYNC,
// sleep entry, or pairing completion, never on every received frame
// while RUNNING.
func (s *ReceiverService) UpdateTelemetry(trackerID byte, seq byte, rssi int8, tick uint32) {
	if int(trackerID) >= len(s.roster) || !s.roster[trackerID].Valid {
		return
	}
	s.roster[trackerID].LastSeq = seq
	s.roster[trackerID].LastRSSI = rssi
	s.roster[trackerID].LastSeenTick = tick
}

// RecordDetect bumps the detect count for trackerID's roster entry,
// called once per successfully-decoded data packet during RUNNING
// (spec §3: "detect_count must reach a threshold ... before the entry
// is considered valid").
func (s *ReceiverService) RecordDetect(trackerID byte) {
	if int(trackerID) >= len(s.roster) || !s.roster[trackerID].Valid {
		return
	}
	s.roster[trackerID].IncrementDetect()
}

// Confirmed reports whether trackerID's roster entry has crossed the
// detect-count threshold.
func (s *ReceiverService) Confirmed(trackerID byte) bool {
	if int(trackerID) >= len(s.roster) || !s.roster[trackerID].Valid {
		return false
	}
	return s.roster[trackerID].Confirmed(uint16(s.cfg.GetDetectCountThreshold()))
}
