package codec

import (
	"testing"

	"github.com/aerolink/motionlink/internal/linkerrors"
)

func TestBeacon_RoundTrip(t *testing.T) {
	want := Beacon{
		FrameNumber: 0xBEEF,
		Timestamp:   0xCAFEBABE,
		NetworkKey:  0x12345678,
		HopSeq:      [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		RosterMask:  [3]byte{0xFF, 0x01, 0x00},
	}
	got, err := DecodeBeacon(EncodeBeacon(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestBeacon_RejectsBadMarker(t *testing.T) {
	raw := EncodeBeacon(Beacon{})
	raw[0] = 0x00
	if _, err := DecodeBeacon(raw); err != linkerrors.ErrInvalidPacket {
		t.Fatalf("expected ErrInvalidPacket, got %v", err)
	}
}

func TestBeacon_RejectsBadLength(t *testing.T) {
	if _, err := DecodeBeacon([]byte{BeaconMarker}); err != linkerrors.ErrInvalidLength {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestRosterMask_SetAndQuery(t *testing.T) {
	var mask [3]byte
	RosterMaskAdd(&mask, 0)
	RosterMaskAdd(&mask, 9)
	RosterMaskAdd(&mask, 23)
	for _, id := range []byte{0, 9, 23} {
		if !RosterMaskSet(mask, id) {
			t.Fatalf("expected tracker %d set", id)
		}
	}
	if RosterMaskSet(mask, 1) {
		t.Fatalf("expected tracker 1 unset")
	}
}
