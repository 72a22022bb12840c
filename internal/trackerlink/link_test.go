package trackerlink

import (
	"testing"
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/linktest"
	"github.com/aerolink/motionlink/internal/orientation"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/recovery"
	"github.com/aerolink/motionlink/internal/storage"
)

func newTestLink(t *testing.T) (*TrackerLink, *linktest.FakeRadio, *storage.Store) {
	t.Helper()
	cfg := linkconfig.EmptyLinkConfig()
	clock := linkclock.NewMockClock(time.Unix(0, 0))
	radio := linktest.NewFakeRadio()
	store := storage.New(hal.NewMemoryNVS(storage.Size()))
	channels := channel.NewManager(cfg, []int{1, 2, 3, 4, 5})
	engine := orientation.NewEngine(cfg)
	return NewTrackerLink(cfg, clock, radio, store, channels, engine, [6]byte{0, 0x11, 0x22, 0x33, 0x44, 0x55}), radio, store
}

func TestTrackerLink_PairingThenSync(t *testing.T) {
	link, radio, _ := newTestLink(t)

	advertise, err := link.BeginPairing()
	if err != nil {
		t.Fatalf("BeginPairing: %v", err)
	}
	if link.State() != StatePairing {
		t.Fatalf("expected StatePairing, got %v", link.State())
	}

	// Simulate a receiver confirming with id=0, key=0x12345678.
	cfg := linkconfig.EmptyLinkConfig()
	rclock := linkclock.NewMockClock(time.Unix(0, 0))
	rstore := storage.New(hal.NewMemoryNVS(storage.Size()))
	receiver := pairing.NewReceiverService(cfg, rclock, rstore, 0x12345678)
	receiver.EnterPairingMode()
	response, err := receiver.HandleDiscoveryFrame(advertise)
	if err != nil || response == nil {
		t.Fatalf("HandleDiscoveryFrame failed: resp=%v err=%v", response, err)
	}

	ok, err := link.HandlePairingResponse(response)
	if err != nil || !ok {
		t.Fatalf("HandlePairingResponse failed: ok=%v err=%v", ok, err)
	}
	if link.State() != StateSearchSync {
		t.Fatalf("expected StateSearchSync after pairing, got %v", link.State())
	}
	id, paired := link.TrackerID()
	if !paired || id != 0 {
		t.Fatalf("expected tracker id 0, got %v paired=%v", id, paired)
	}

	beacon := codec.EncodeBeacon(codec.Beacon{FrameNumber: 1, NetworkKey: 0x12345678})
	authenticated, err := link.HandleBeacon(beacon)
	if err != nil || !authenticated {
		t.Fatalf("HandleBeacon failed: auth=%v err=%v", authenticated, err)
	}
	if link.State() != StateRunning {
		t.Fatalf("expected StateRunning after valid beacon, got %v", link.State())
	}
	_ = radio
}

func TestTrackerLink_BeaconWithWrongKeyIgnored(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(3, 0xAAAAAAAA)

	beacon := codec.EncodeBeacon(codec.Beacon{FrameNumber: 1, NetworkKey: 0xBBBBBBBB})
	authenticated, err := link.HandleBeacon(beacon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authenticated {
		t.Fatalf("expected a beacon with a mismatched key to be ignored")
	}
	if link.State() == StateRunning {
		t.Fatalf("should not transition to running on an unauthenticated beacon")
	}
}

func TestTrackerLink_MissedBeaconsDropBackToSearchSync(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(1, 0x12345678)
	link.state = StateRunning

	var level recovery.ActionLevel
	for i := 0; i < 10; i++ {
		level = link.MissBeacon()
	}
	if level != recovery.ActionChannelSwitch {
		t.Fatalf("expected ActionChannelSwitch at 10 misses, got %v", level)
	}
	if link.State() != StateSearchSync {
		t.Fatalf("expected drop back to StateSearchSync, got %v", link.State())
	}
}

func TestTrackerLink_AckTimeoutTriggersRePairAt200(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(1, 0x12345678)

	var needsRePair bool
	for i := 0; i < 200; i++ {
		needsRePair = link.RecordAckTimeout()
	}
	if !needsRePair {
		t.Fatalf("expected needsRePair after 200 consecutive missed ACKs")
	}
}

func TestTrackerLink_AckResetsMissCounter(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(1, 0x12345678)
	link.SetChannel(1)

	for i := 0; i < 50; i++ {
		link.RecordAckTimeout()
	}
	link.RecordAck()
	needsRePair := false
	for i := 0; i < 50; i++ {
		needsRePair = link.RecordAckTimeout()
	}
	if needsRePair {
		t.Fatalf("expected the miss counter to have reset after RecordAck")
	}
}

func TestTrackerLink_AutoSleepRequiresPairedAndSynced(t *testing.T) {
	link, _, _ := newTestLink(t)
	if link.CheckAutoSleep(600) {
		t.Fatalf("unpaired tracker must not sleep")
	}
	link.RestorePairing(1, 0x12345678)
	if !link.CheckAutoSleep(600) {
		t.Fatalf("expected sleep entry once paired and rest_time exceeds AUTO_SLEEP_TIMEOUT")
	}
	if link.State() != StateSleeping {
		t.Fatalf("expected StateSleeping, got %v", link.State())
	}
}

func TestTrackerLink_AutoSleepBlockedBySyncLoss(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(1, 0x12345678)
	for i := 0; i < 3; i++ {
		link.recovery.RecordMissedBeacon()
	}
	if link.CheckAutoSleep(600) {
		t.Fatalf("sleep entry must be blocked while sync is lost")
	}
}

func TestTrackerLink_WakeResumesSearchSync(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(1, 0x12345678)
	link.EnterSleep()
	link.Wake()
	if link.State() != StateSearchSync {
		t.Fatalf("expected StateSearchSync after wake, got %v", link.State())
	}
}

func TestTrackerLink_BuildDataFrameAdvancesSequence(t *testing.T) {
	link, _, _ := newTestLink(t)
	link.RestorePairing(2, 0x12345678)

	payload := codec.StatusPacket{TrackerID: 2}
	f1, err := link.BuildDataFrame(payload)
	if err != nil {
		t.Fatalf("BuildDataFrame: %v", err)
	}
	f2, _ := link.BuildDataFrame(payload)
	_, seq1, _ := codec.DecodeFrame(f1)
	_, seq2, _ := codec.DecodeFrame(f2)
	if seq2 != seq1+1 {
		t.Fatalf("expected sequence to advance by one, got %d then %d", seq1, seq2)
	}
}
