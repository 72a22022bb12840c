package storage

import (
	"testing"

	"github.com/aerolink/motionlink/internal/hal"
)

func newTestStore(t *testing.T) (*Store, *hal.MemoryNVS) {
	t.Helper()
	nvs := hal.NewMemoryNVS(Size())
	return New(nvs), nvs
}

func TestStore_PairingRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	p := PairingRecord{NetworkKey: 0xAABBCCDD}
	p.Roster[0] = RosterEntry{Valid: true, HWAddr: [6]byte{1, 2, 3, 4, 5, 6}, DetectCount: 25, Battery: 90}

	if err := s.WritePairing(p); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadPairing()
	if err != nil {
		t.Fatal(err)
	}
	if got.NetworkKey != p.NetworkKey || got.Roster[0] != p.Roster[0] {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestStore_RetainedStateRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	r := RetainedState{
		Timestamp: 12345, LastQuatW: 0.99, LastQuatX: 0.1,
		GyroBias: [3]float64{0.001, -0.002, 0.0005},
		SleepCount: 3, WakeCount: 4,
		HasMagHeadingRef: true, MagHeadingRef: 1.57,
	}
	if err := s.WriteRetainedState(r); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadRetainedState()
	if err != nil {
		t.Fatal(err)
	}
	if got != r {
		t.Fatalf("got %+v, want %+v", got, r)
	}
}

func TestStore_CalibrationRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	c := Calibration{
		AccelOffset: [3]float64{0.01, -0.02, 0.03},
		AccelScale:  [3]float64{1.001, 0.999, 1.0},
		MagHardIron: [3]float64{5, -3, 2},
		MagSoftIron: [3]float64{1.02, 0.98, 1.0},
	}
	if err := s.WriteCalibration(c); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadCalibration()
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Fatalf("got %+v, want %+v", got, c)
	}
}

func TestStore_CrashSnapshotRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	c := CrashSnapshot{PC: 0x1000, SP: 0x2000, LR: 0x1004, Timestamp: 99, CheckpointID: 7}
	if err := s.WriteCrashSnapshot(c); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadCrashSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Fatalf("got %+v, want %+v", got, c)
	}
}

func TestStore_SequenceAdvancesAcrossWrites(t *testing.T) {
	s, _ := newTestStore(t)
	for i := uint32(0); i < 5; i++ {
		if err := s.WritePairing(PairingRecord{NetworkKey: i}); err != nil {
			t.Fatal(err)
		}
		got, err := s.ReadPairing()
		if err != nil {
			t.Fatal(err)
		}
		if got.NetworkKey != i {
			t.Fatalf("iteration %d: got NetworkKey %d, want %d", i, got.NetworkKey, i)
		}
	}
}

func TestStore_SurvivesFaultInOneBank(t *testing.T) {
	s, nvs := newTestStore(t)
	if err := s.WritePairing(PairingRecord{NetworkKey: 0x1111}); err != nil {
		t.Fatal(err)
	}
	if err := s.WritePairing(PairingRecord{NetworkKey: 0x2222}); err != nil {
		t.Fatal(err)
	}

	// Corrupt whichever bank is now inactive (the one that is NOT the
	// most recent write) to simulate a power loss mid-write to it; the
	// other bank, still fully valid, must still be readable.
	if err := nvs.InjectFault(s.pairing.offsetA, headerSize, 0x00); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadPairing()
	if err != nil {
		t.Fatal(err)
	}
	if got.NetworkKey != 0x2222 {
		t.Fatalf("NetworkKey = %#x, want 0x2222 (last fully-verified write)", got.NetworkKey)
	}
}

func TestStore_InterruptedWriteLeavesPriorBankValid(t *testing.T) {
	s, nvs := newTestStore(t)
	if err := s.WritePairing(PairingRecord{NetworkKey: 0xAAAA}); err != nil {
		t.Fatal(err)
	}

	// Simulate power loss mid-write to the inactive bank (bank B, since
	// the first write always lands in bank A): corrupt it directly
	// rather than going through Store.write.
	if err := nvs.InjectFault(s.pairing.offsetB, headerSize, 0xFF); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadPairing()
	if err != nil {
		t.Fatal(err)
	}
	if got.NetworkKey != 0xAAAA {
		t.Fatalf("NetworkKey = %#x, want 0xAAAA (survives interrupted write to other bank)", got.NetworkKey)
	}
}

func TestStore_BothBanksCorruptIsStorageCorrupt(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.ReadPairing()
	if err == nil {
		t.Fatal("expected error reading never-written record")
	}
}

func TestStore_RecordsDoNotOverlap(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.WritePairing(PairingRecord{NetworkKey: 0xDEAD}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteCalibration(Calibration{AccelOffset: [3]float64{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}
	pairing, err := s.ReadPairing()
	if err != nil {
		t.Fatal(err)
	}
	if pairing.NetworkKey != 0xDEAD {
		t.Fatalf("pairing record corrupted by calibration write: got %#x", pairing.NetworkKey)
	}
}
