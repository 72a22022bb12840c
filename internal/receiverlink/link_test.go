package receiverlink

import (
	"testing"
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/linktest"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/storage"
)

func newTestLink(t *testing.T) (*ReceiverLink, *linktest.FakeUSBHID, *linkclock.MockClock) {
	t.Helper()
	cfg := linkconfig.EmptyLinkConfig()
	clock := linkclock.NewMockClock(time.Unix(0, 0))
	usb := linktest.NewFakeUSBHID()
	store := storage.New(hal.NewMemoryNVS(storage.Size()))
	channels := channel.NewManager(cfg, []int{1, 2, 3, 4, 5})
	return NewReceiverLink(cfg, clock, usb, store, channels, 0x12345678), usb, clock
}

// admitTracker runs a full discovery handshake against link, returning
// the assigned tracker_id.
func admitTracker(t *testing.T, link *ReceiverLink, hwAddr [6]byte) byte {
	t.Helper()
	link.EnterPairingMode()
	tracker := pairing.NewTrackerService(hwAddr)
	advertise := tracker.BuildAdvertise()
	response, err := link.HandleDiscoveryFrame(advertise)
	if err != nil || response == nil {
		t.Fatalf("HandleDiscoveryFrame: resp=%v err=%v", response, err)
	}
	id, _, ok, err := tracker.HandleResponse(response)
	if err != nil || !ok {
		t.Fatalf("HandleResponse: ok=%v err=%v", ok, err)
	}
	return id
}

func TestReceiverLink_AdmitsNewTrackerOnDiscovery(t *testing.T) {
	link, _, _ := newTestLink(t)
	id := admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})
	if id != 0 {
		t.Fatalf("expected first tracker to be assigned id 0, got %d", id)
	}
}

func TestReceiverLink_BuildBeaconMarksRosterMask(t *testing.T) {
	link, _, _ := newTestLink(t)
	admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})

	raw := link.BuildBeacon()
	beacon, err := codec.DecodeBeacon(raw)
	if err != nil {
		t.Fatalf("DecodeBeacon: %v", err)
	}
	if !codec.RosterMaskSet(beacon.RosterMask, 0) {
		t.Fatalf("expected roster mask bit 0 set for the admitted tracker")
	}
	if beacon.NetworkKey != 0x12345678 {
		t.Fatalf("unexpected network key %#x", beacon.NetworkKey)
	}
}

func TestReceiverLink_BuildBeaconAdvancesFrameNumber(t *testing.T) {
	link, _, _ := newTestLink(t)
	b1, _ := codec.DecodeBeacon(link.BuildBeacon())
	b2, _ := codec.DecodeBeacon(link.BuildBeacon())
	if b2.FrameNumber != b1.FrameNumber+1 {
		t.Fatalf("expected frame number to advance by one, got %d then %d", b1.FrameNumber, b2.FrameNumber)
	}
}

func TestReceiverLink_HandleDataFrameEnqueuesReport(t *testing.T) {
	link, _, _ := newTestLink(t)
	admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})

	threshold := link.cfg.GetDetectCountThreshold()
	for i := 0; i < threshold; i++ {
		frame, err := codec.Encode(byte(i), codec.StatusPacket{TrackerID: 0, ServerStatus: 1})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if err := link.HandleDataFrame(frame, -50); err != nil {
			t.Fatalf("HandleDataFrame: %v", err)
		}
	}
	if link.fifo.Len() != 1 {
		t.Fatalf("expected one queued report once the detect threshold is reached, got %d", link.fifo.Len())
	}
}

// TestReceiverLink_HandleDataFrameGatesOnDetectConfirmation covers spec
// §8 scenario 3: the first threshold-1 receptions for a newly admitted
// tracker must be absorbed with no HID report produced; the threshold-
// th reception is the first to reach the FIFO.
func TestReceiverLink_HandleDataFrameGatesOnDetectConfirmation(t *testing.T) {
	link, _, _ := newTestLink(t)
	admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})

	threshold := link.cfg.GetDetectCountThreshold()
	for i := 0; i < threshold-1; i++ {
		frame, _ := codec.Encode(byte(i), codec.StatusPacket{TrackerID: 0, ServerStatus: 1})
		if err := link.HandleDataFrame(frame, -50); err != nil {
			t.Fatalf("HandleDataFrame (detect %d): %v", i+1, err)
		}
		if link.fifo.Len() != 0 {
			t.Fatalf("expected no queued report before detect confirmation (detect %d), got %d", i+1, link.fifo.Len())
		}
	}

	frame, _ := codec.Encode(byte(threshold-1), codec.StatusPacket{TrackerID: 0, ServerStatus: 1})
	if err := link.HandleDataFrame(frame, -50); err != nil {
		t.Fatalf("HandleDataFrame (detect %d): %v", threshold, err)
	}
	if link.fifo.Len() != 1 {
		t.Fatalf("expected the confirming detection to produce the first queued report, got %d", link.fifo.Len())
	}
}

func TestReceiverLink_HandleDataFrameRejectsUnregisteredTracker(t *testing.T) {
	link, _, _ := newTestLink(t)
	frame, _ := codec.Encode(0, codec.StatusPacket{TrackerID: 3})
	if err := link.HandleDataFrame(frame, -50); err == nil {
		t.Fatalf("expected an error for a frame from an unregistered tracker")
	}
}

func TestReceiverLink_FIFOReplacesInPlace(t *testing.T) {
	link, _, _ := newTestLink(t)
	admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})
	admitTracker(t, link, [6]byte{9, 9, 9, 9, 9, 9})

	// Bring both trackers past the detect-confirmation threshold first;
	// the replace-in-place behavior under test only applies once a
	// tracker's reports are actually reaching the FIFO.
	threshold := link.cfg.GetDetectCountThreshold()
	for id := byte(0); id < 2; id++ {
		for i := 0; i < threshold-1; i++ {
			warmup, _ := codec.Encode(byte(i), codec.StatusPacket{TrackerID: id, ServerStatus: 0})
			link.HandleDataFrame(warmup, -50)
		}
	}

	f0a, _ := codec.Encode(0, codec.StatusPacket{TrackerID: 0, ServerStatus: 1})
	f1, _ := codec.Encode(0, codec.StatusPacket{TrackerID: 1, ServerStatus: 1})
	f0b, _ := codec.Encode(1, codec.StatusPacket{TrackerID: 0, ServerStatus: 2})

	link.HandleDataFrame(f0a, -50)
	link.HandleDataFrame(f1, -50)
	link.HandleDataFrame(f0b, -50)

	if link.fifo.Len() != 2 {
		t.Fatalf("expected replace-in-place to keep the queue at 2 entries, got %d", link.fifo.Len())
	}
	// Two queued reports leave the 4-report transfer short, and no
	// registration has been advertised yet, so a registration pad follows
	// them.
	reports := link.PopReports(4)
	if len(reports) != 3 {
		t.Fatalf("expected 2 reports popped plus 1 registration pad, got %d", len(reports))
	}
	pkt, err := codec.Decode(appendCRCFrame(reports[0], 1))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pkt.Status == nil || pkt.Status.ServerStatus != 2 {
		t.Fatalf("expected the first popped report to be tracker 0's latest update, got %+v", pkt.Status)
	}
}

func TestReceiverLink_PopReportsPadsWithRegistrationWhenShort(t *testing.T) {
	link, _, clock := newTestLink(t)
	admitTracker(t, link, [6]byte{1, 2, 3, 4, 5, 6})

	reports := link.PopReports(4)
	if len(reports) != 1 {
		t.Fatalf("expected one registration-padded report on an empty fifo, got %d", len(reports))
	}

	// A second immediate call must not pad again before the
	// registration-advertisement period elapses.
	reports = link.PopReports(4)
	if len(reports) != 0 {
		t.Fatalf("expected no padding before the advertisement period elapses, got %d", len(reports))
	}

	clock.Advance(200 * time.Millisecond)
	reports = link.PopReports(4)
	if len(reports) != 1 {
		t.Fatalf("expected padding to resume once the advertisement period elapses, got %d", len(reports))
	}
}

func TestReceiverLink_HostCommandTogglesPairingMode(t *testing.T) {
	link, usb, _ := newTestLink(t)
	usb.InjectHostCommand([]byte{byte(hal.HostCmdEnterPairing)})
	if !link.PairingActive() {
		t.Fatalf("expected pairing mode active after enter-pairing command")
	}
	usb.InjectHostCommand([]byte{byte(hal.HostCmdExitPairing)})
	if link.PairingActive() {
		t.Fatalf("expected pairing mode inactive after exit-pairing command")
	}
}

// appendCRCFrame rebuilds a full on-air frame from a bare 16-byte
// payload for tests that need to decode a popped HID report back into
// a typed packet.
func appendCRCFrame(payload [16]byte, seq byte) []byte {
	return codec.EncodeFrame(payload, seq)
}
