package pairing

import (
	"testing"
	"time"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/storage"
)

func newReceiver(t *testing.T) (*ReceiverService, *linkclock.MockClock) {
	t.Helper()
	clock := linkclock.NewMockClock(time.Unix(0, 0))
	store := storage.New(hal.NewMemoryNVS(storage.Size()))
	return NewReceiverService(linkconfig.EmptyLinkConfig(), clock, store, 0xCAFEBABE), clock
}

func TestReceiverService_FullHandshakeAssignsLowestFreeID(t *testing.T) {
	r, _ := newReceiver(t)
	r.EnterPairingMode()

	tracker := NewTrackerService([6]byte{1, 2, 3, 4, 5, 6})
	resp, err := r.HandleDiscoveryFrame(tracker.BuildAdvertise())
	if err != nil {
		t.Fatal(err)
	}
	if resp == nil {
		t.Fatal("expected confirmation frame, got nil")
	}

	id, key, ok, err := tracker.HandleResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected ok=true for stage=2 response")
	}
	if id != 0 {
		t.Fatalf("assigned id = %d, want 0 (lowest free)", id)
	}
	if key != 0xCAFEBABE {
		t.Fatalf("network key = %#x, want 0xcafebabe", key)
	}
}

func TestReceiverService_DeduplicatesKnownAddress(t *testing.T) {
	r, _ := newReceiver(t)
	r.EnterPairingMode()
	tracker := NewTrackerService([6]byte{9, 9, 9, 9, 9, 9})

	resp1, err := r.HandleDiscoveryFrame(tracker.BuildAdvertise())
	if err != nil {
		t.Fatal(err)
	}
	id1, _, _, _ := tracker.HandleResponse(resp1)

	resp2, err := r.HandleDiscoveryFrame(tracker.BuildAdvertise())
	if err != nil {
		t.Fatal(err)
	}
	id2, _, _, _ := tracker.HandleResponse(resp2)

	if id1 != id2 {
		t.Fatalf("re-advertise got a different id: %d != %d", id1, id2)
	}
}

func TestReceiverService_IgnoresFramesOutsidePairingMode(t *testing.T) {
	r, _ := newReceiver(t)
	tracker := NewTrackerService([6]byte{1, 1, 1, 1, 1, 1})
	resp, err := r.HandleDiscoveryFrame(tracker.BuildAdvertise())
	if err != nil {
		t.Fatal(err)
	}
	if resp != nil {
		t.Fatal("expected nil response when pairing mode is closed")
	}
}

func TestReceiverService_PairingModeExpires(t *testing.T) {
	r, clock := newReceiver(t)
	r.EnterPairingMode()
	clock.Advance(61 * time.Second)
	if r.Active() {
		t.Fatal("pairing mode should have expired after 61s")
	}
}

func TestReceiverService_RejectsZeroAddress(t *testing.T) {
	r, _ := newReceiver(t)
	r.EnterPairingMode()
	frame := codec.EncodePairingFrame(codec.PairingFrame{Stage: codec.PairingStageAdvertise})
	if _, err := r.HandleDiscoveryFrame(frame); err == nil {
		t.Fatal("expected error for zero address")
	}
}

func TestReceiverService_RosterFullReturnsOutOfSlots(t *testing.T) {
	r, _ := newReceiver(t)
	r.EnterPairingMode()
	for i := 0; i < storage.MaxRosterEntries; i++ {
		addr := [6]byte{byte(i), 1, 2, 3, 4, 5}
		if _, err := r.HandleDiscoveryFrame(NewTrackerService(addr).BuildAdvertise()); err != nil {
			t.Fatalf("unexpected error filling roster: %v", err)
		}
	}
	overflow := NewTrackerService([6]byte{99, 1, 2, 3, 4, 5})
	if _, err := r.HandleDiscoveryFrame(overflow.BuildAdvertise()); err == nil {
		t.Fatal("expected error when roster is full")
	}
}

func TestReceiverService_DetectCountConfirmation(t *testing.T) {
	r, _ := newReceiver(t)
	r.EnterPairingMode()
	tracker := NewTrackerService([6]byte{4, 4, 4, 4, 4, 4})
	resp, _ := r.HandleDiscoveryFrame(tracker.BuildAdvertise())
	id, _, _, _ := tracker.HandleResponse(resp)

	if r.Confirmed(id) {
		t.Fatal("entry confirmed before any detections")
	}
	for i := 0; i < 25; i++ {
		r.RecordDetect(id)
	}
	if !r.Confirmed(id) {
		t.Fatal("entry not confirmed after reaching default detect threshold")
	}
}
