package main

import (
	"sync"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/storage"
)

// rosterMirror implements hostbridge.PairingController from the host
// side of the USB link. The receiver's live roster and pairing-mode
// flag live in its own OS process (internal/receiverlink), reachable
// from here only through the one-way HID report stream plus the
// host-to-device command channel (internal/simhid.Host has no
// command-reply path), so this type rebuilds a local view of both by
// watching registration packets go by and by tracking pairing-mode
// commands optimistically at the moment they're sent.
type rosterMirror struct {
	mu      sync.Mutex
	active  bool
	entries [storage.MaxRosterEntries]storage.RosterEntry
}

func (r *rosterMirror) EnterPairingMode() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
}

func (r *rosterMirror) ExitPairingMode() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

func (r *rosterMirror) PairingActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *rosterMirror) Roster() [storage.MaxRosterEntries]storage.RosterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// observe updates the mirror from one decoded packet. Registration
// packets are the only signal that a tracker_id/hardware-address
// binding exists at all; info/status/compact packets refresh the
// liveness fields (RSSI, battery) for a binding already seen.
func (r *rosterMirror) observe(pkt *codec.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case pkt.Registration != nil:
		id := pkt.Registration.TrackerID
		if int(id) >= len(r.entries) {
			return
		}
		e := &r.entries[id]
		e.Valid = true
		e.HWAddr = pkt.Registration.HWAddr
		e.DetectCount++
	case pkt.Info != nil:
		r.touch(pkt.Info.TrackerID, pkt.Info.RSSI, pkt.Info.BatteryPct)
	case pkt.QuatAccelC != nil:
		r.touch(pkt.QuatAccelC.TrackerID, pkt.QuatAccelC.RSSI, pkt.QuatAccelC.BatteryPct)
	case pkt.Status != nil:
		r.touch(pkt.Status.TrackerID, pkt.Status.RSSI, 0)
	}
}

func (r *rosterMirror) touch(id byte, rssi int8, battery byte) {
	if int(id) >= len(r.entries) || !r.entries[id].Valid {
		return
	}
	e := &r.entries[id]
	e.LastRSSI = rssi
	if battery != 0 {
		e.Battery = battery
	}
	e.DetectCount++
}
