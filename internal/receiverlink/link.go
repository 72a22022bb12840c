package receiverlink

import (
	"fmt"
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/linkerrors"
	"github.com/aerolink/motionlink/internal/motionlog"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/storage"
)

// ReceiverLink is the superframe master (spec §4.6): it builds the sync
// beacon broadcast every 5ms, processes slot receptions from the
// tracker roster, and republishes them as a FIFO of host HID reports.
// Like TrackerLink it owns no goroutines; a caller drives it one event
// at a time.
type ReceiverLink struct {
	cfg      *linkconfig.LinkConfig
	clock    linkclock.Clock
	epoch    *linkclock.Epoch
	usb      hal.USBHID
	channels *channel.Manager
	pairing  *pairing.ReceiverService

	frameNumber    uint16
	currentChannel int
	outSeq         byte

	fifo                 *hidFIFO
	lastRegistrationEmit time.Time
	haveRegistrationEmit bool
	registrationCursor   int
}

// NewReceiverLink creates a ReceiverLink seeded with the persisted
// pairing record (network key and roster) for this receiver.
func NewReceiverLink(cfg *linkconfig.LinkConfig, clock linkclock.Clock, usb hal.USBHID, store *storage.Store, channels *channel.Manager, networkKey uint32) *ReceiverLink {
	r := &ReceiverLink{
		cfg:      cfg,
		clock:    clock,
		epoch:    linkclock.NewEpoch(clock),
		usb:      usb,
		channels: channels,
		pairing:  pairing.NewReceiverService(cfg, clock, store, networkKey),
		fifo:     newHIDFIFO(cfg.GetHIDFIFODepth()),
	}
	usb.OnRX(r.handleHostCommand)
	return r
}

// EnterPairingMode opens the discovery handshake window.
func (r *ReceiverLink) EnterPairingMode() {
	r.pairing.EnterPairingMode()
}

// ExitPairingMode closes the discovery handshake window early.
func (r *ReceiverLink) ExitPairingMode() {
	r.pairing.ExitPairingMode()
}

// PairingActive reports whether the discovery handshake window is open.
func (r *ReceiverLink) PairingActive() bool {
	return r.pairing.Active()
}

// HandleDiscoveryFrame processes a stage=0 advertisement received on
// the discovery pipe, returning the stage=2 response to transmit, or
// nil if the frame was ignored.
func (r *ReceiverLink) HandleDiscoveryFrame(raw []byte) ([]byte, error) {
	return r.pairing.HandleDiscoveryFrame(raw)
}

// SetChannel updates the channel the receiver currently believes it is
// synchronized on, used for per-channel quality accounting.
func (r *ReceiverLink) SetChannel(ch int) {
	r.currentChannel = ch
}

// Roster returns a copy of the current tracker roster, for admin/
// reporting surfaces that need read-only visibility into pairing
// state without reaching into the pairing collaborator directly.
func (r *ReceiverLink) Roster() [storage.MaxRosterEntries]storage.RosterEntry {
	return r.pairing.Roster()
}

// BuildBeacon encodes the next sync beacon: frame number, timestamp,
// network key, the frame's hop sequence, and a roster mask marking
// every tracker_id with an assigned slot (spec §4.6 step 1). The frame
// number is advanced as a side effect.
func (r *ReceiverLink) BuildBeacon() []byte {
	roster := r.pairing.Roster()
	var mask [3]byte
	for id := range roster {
		if roster[id].Valid {
			codec.RosterMaskAdd(&mask, byte(id))
		}
	}

	beacon := codec.Beacon{
		FrameNumber: r.frameNumber,
		Timestamp:   uint32(r.epoch.Micros()),
		NetworkKey:  r.pairing.NetworkKey(),
		HopSeq:      r.channels.HopSequence(r.pairing.NetworkKey(), r.frameNumber),
		RosterMask:  mask,
	}
	raw := codec.EncodeBeacon(beacon)
	r.frameNumber++
	return raw
}

// HandleDataFrame processes one decoded slot reception: it validates
// the frame's CRC, looks up the sending tracker_id against the roster,
// updates its telemetry and detect count, and enqueues the 16-byte
// payload into the HID FIFO, replacing any pending report for the same
// tracker (spec §4.6 step 3).
func (r *ReceiverLink) HandleDataFrame(raw []byte, rssiDbm int) error {
	payload, seq, err := codec.DecodeFrame(raw)
	if err != nil {
		return err
	}

	trackerID := payload[1]
	roster := r.pairing.Roster()
	if int(trackerID) >= len(roster) || !roster[trackerID].Valid {
		return fmt.Errorf("receiverlink: frame from unregistered tracker %d: %w", trackerID, linkerrors.ErrNotPaired)
	}

	r.pairing.UpdateTelemetry(trackerID, seq, int8(rssiDbm), uint32(r.epoch.Millis()))
	r.pairing.RecordDetect(trackerID)
	r.channels.RecordRSSI(r.currentChannel, rssiDbm)

	if !r.pairing.Confirmed(trackerID) {
		// Below the detect-count threshold: telemetry above still
		// accrues, but the tracker has no HID report yet (spec §8
		// scenario 3 — the first confirmed detection produces the
		// first report, not the first reception).
		return nil
	}

	if !r.fifo.Push(trackerID, payload) {
		return fmt.Errorf("receiverlink: hid fifo full, dropped report for tracker %d: %w", trackerID, linkerrors.ErrOutOfSlots)
	}
	return nil
}

// PopReports drains up to maxReports pending reports for one 1ms host
// transfer (spec §4.6 step 4, spec §6: "up to four stacked reports").
// If the FIFO comes up short and the registration advertisement period
// has elapsed, the remaining slot is padded with a round-robin
// registration packet instead of left empty.
func (r *ReceiverLink) PopReports(maxReports int) [][16]byte {
	var out [][16]byte
	for i := 0; i < maxReports; i++ {
		e, ok := r.fifo.Pop()
		if !ok {
			break
		}
		out = append(out, e.report)
	}

	if len(out) < maxReports && r.shouldPadRegistration() {
		if reg, ok := r.nextRegistrationReport(); ok {
			out = append(out, reg)
			r.lastRegistrationEmit = r.clock.Now()
			r.haveRegistrationEmit = true
		}
	}
	return out
}

func (r *ReceiverLink) shouldPadRegistration() bool {
	if !r.haveRegistrationEmit {
		return true
	}
	return r.clock.Now().Sub(r.lastRegistrationEmit) >= r.cfg.GetRegistrationAdvertPeriod()
}

// nextRegistrationReport builds a registration packet for the next
// valid roster entry in round-robin order, advancing the cursor.
func (r *ReceiverLink) nextRegistrationReport() ([16]byte, bool) {
	roster := r.pairing.Roster()
	n := len(roster)
	for i := 0; i < n; i++ {
		idx := (r.registrationCursor + i) % n
		if !roster[idx].Valid {
			continue
		}
		r.registrationCursor = (idx + 1) % n

		pkt := codec.RegistrationPacket{TrackerID: byte(idx), HWAddr: roster[idx].HWAddr}
		raw, err := codec.Encode(r.outSeq, pkt)
		if err != nil {
			motionlog.Logf("receiverlink: encode registration packet failed: %v", err)
			return [16]byte{}, false
		}
		r.outSeq++
		payload, _, _ := codec.DecodeFrame(raw)
		return payload, true
	}
	return [16]byte{}, false
}

// handleHostCommand dispatches a host→device command byte sequence
// (spec §6) delivered through the USB HID RX callback.
func (r *ReceiverLink) handleHostCommand(bytes []byte) {
	if len(bytes) == 0 {
		return
	}
	switch hal.HostCommand(bytes[0]) {
	case hal.HostCmdEnterPairing:
		r.EnterPairingMode()
	case hal.HostCmdExitPairing:
		r.ExitPairingMode()
	case hal.HostCmdEnterBootloader:
		motionlog.Logf("receiverlink: bootloader entry requested (out of scope for simulated firmware)")
	case hal.HostCmdVersionInfo:
		motionlog.Logf("receiverlink: version info requested (out of scope for simulated firmware)")
	default:
		motionlog.Logf("receiverlink: unknown host command %#x", bytes[0])
	}
}
