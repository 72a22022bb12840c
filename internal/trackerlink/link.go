package trackerlink

import (
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/linkerrors"
	"github.com/aerolink/motionlink/internal/motionlog"
	"github.com/aerolink/motionlink/internal/orientation"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/recovery"
	"github.com/aerolink/motionlink/internal/storage"
	"gonum.org/v1/gonum/num/quat"
)

// TrackerLink runs the transmitter side of the link: discovery,
// superframe synchronization, per-frame TX/ACK discipline, and sleep
// entry/exit (spec §4.5). It owns no goroutines; the caller (the
// simulated firmware's main loop, or a test) drives it one event at a
// time, matching the single-threaded cooperative model of spec §5.
type TrackerLink struct {
	cfg      *linkconfig.LinkConfig
	clock    linkclock.Clock
	radio    hal.RadioPHY
	store    *storage.Store
	channels *channel.Manager
	recovery *recovery.Machine
	pairing  *pairing.TrackerService
	engine   *orientation.Engine

	hwAddr [6]byte

	state      State
	paired     bool
	trackerID  byte
	networkKey uint32

	currentChannel int
	outSeq         byte

	retriesRemaining int
	backoffFrames    int
	framesUntilRetry int
	missedAcksInARow int

	lastFrameNumber uint16
}

// NewTrackerLink creates a TrackerLink for the given hardware address,
// starting in StateInit. engine is the live orientation pipeline whose
// state is persisted into RetainedState on sleep entry and restored on
// wake (spec §4.8), letting the tracker resume attitude tracking across
// a sleep cycle without a reacquisition transient.
func NewTrackerLink(cfg *linkconfig.LinkConfig, clock linkclock.Clock, radio hal.RadioPHY, store *storage.Store, channels *channel.Manager, engine *orientation.Engine, hwAddr [6]byte) *TrackerLink {
	t := &TrackerLink{
		cfg:      cfg,
		clock:    clock,
		radio:    radio,
		store:    store,
		channels: channels,
		recovery: recovery.New(cfg),
		pairing:  pairing.NewTrackerService(hwAddr),
		engine:   engine,
		hwAddr:   hwAddr,
		state:    StateInit,
	}
	t.restoreOrientation()
	return t
}

// restoreOrientation seeds the orientation engine from whatever
// RetainedState is on flash, run once at construction (spec §4.8's
// "restore from Wake()/startup") so a cold boot after an unclean reset
// still resumes from the last known attitude rather than identity.
func (t *TrackerLink) restoreOrientation() {
	retained, err := t.store.ReadRetainedState()
	if err != nil {
		return
	}
	q := quat.Number{Real: retained.LastQuatW, Imag: retained.LastQuatX, Jmag: retained.LastQuatY, Kmag: retained.LastQuatZ}
	t.engine.RestoreState(q, retained.GyroBias, retained.MagHeadingRef, retained.HasMagHeadingRef)
}

// State reports the current top-level state.
func (t *TrackerLink) State() State {
	return t.state
}

// Paired reports whether a tracker_id and network key have been
// negotiated, regardless of current synchronization state.
func (t *TrackerLink) Paired() bool {
	return t.paired
}

// TrackerID returns the assigned tracker_id, if paired.
func (t *TrackerLink) TrackerID() (id byte, ok bool) {
	return t.trackerID, t.paired
}

// RestorePairing seeds a previously negotiated identity, e.g. from a
// persisted PairingRecord read at boot, skipping discovery.
func (t *TrackerLink) RestorePairing(trackerID byte, networkKey uint32) {
	t.trackerID = trackerID
	t.networkKey = networkKey
	t.paired = true
	t.state = StateSearchSync
}

// BeginPairing points the radio at the fixed discovery pipe and returns
// the stage=0 advertise frame to transmit (spec §4.7).
func (t *TrackerLink) BeginPairing() ([]byte, error) {
	if err := pairing.ConfigureDiscoveryPipe(t.radio); err != nil {
		return nil, linkerrors.ErrHalFault
	}
	t.state = StatePairing
	return t.pairing.BuildAdvertise(), nil
}

// HandlePairingResponse processes a frame received while in StatePairing.
// On a successful stage=2 confirmation it adopts the negotiated
// identity, writes the current time into the persisted RetainedState,
// and transitions to StateSearchSync. The tracker_id and network key
// are held in memory only; they are not written to storage. ok is false when raw
// was not addressed to this handshake (another stage, or malformed).
func (t *TrackerLink) HandlePairingResponse(raw []byte) (ok bool, err error) {
	trackerID, networkKey, matched, err := t.pairing.HandleResponse(raw)
	if err != nil {
		return false, err
	}
	if !matched {
		return false, nil
	}

	t.trackerID = trackerID
	t.networkKey = networkKey
	t.paired = true
	t.state = StateSearchSync
	t.recovery = recovery.New(t.cfg)

	retained, _ := t.store.ReadRetainedState()
	retained.Timestamp = uint32(t.clock.Now().Unix())
	if err := t.store.WriteRetainedState(retained); err != nil {
		motionlog.Logf("trackerlink: persist after pairing failed: %v", err)
	}
	return true, nil
}

// HandleBeacon authenticates and processes a sync beacon received
// while searching or running. A beacon whose network key does not
// match is ignored (authenticated=false, err=nil): it belongs to a
// different network sharing this channel.
func (t *TrackerLink) HandleBeacon(raw []byte) (authenticated bool, err error) {
	beacon, err := codec.DecodeBeacon(raw)
	if err != nil {
		return false, err
	}
	if beacon.NetworkKey != t.networkKey {
		return false, nil
	}

	t.lastFrameNumber = beacon.FrameNumber
	t.recovery.RecordBeaconReceived()
	t.retriesRemaining = t.cfg.GetAckRetryBudget()
	t.backoffFrames = 0
	t.framesUntilRetry = 0

	if t.state == StateSearchSync {
		t.state = StateRunning
	}
	return true, nil
}

// MissBeacon registers a frame in which no sync beacon was decoded.
// When the recovery state machine escalates to ActionChannelSwitch or
// beyond, the link drops back to StateSearchSync (spec §4.5: "RUNNING →
// SEARCH_SYNC when the recovery state machine reports action-level ≥
// CHANNEL_SWITCH").
func (t *TrackerLink) MissBeacon() recovery.ActionLevel {
	level := t.recovery.RecordMissedBeacon()
	if t.recovery.CurrentLevel() >= recovery.ActionChannelSwitch && t.state == StateRunning {
		t.state = StateSearchSync
	}
	return level
}

// SlotOffset returns this tracker's scheduled TX start within the
// current superframe.
func (t *TrackerLink) SlotOffset() time.Duration {
	return linkconfig.SlotOffset(t.trackerID)
}

// BuildDataFrame encodes payload as the next outgoing data packet,
// advancing the outgoing sequence counter.
func (t *TrackerLink) BuildDataFrame(payload interface{}) ([]byte, error) {
	frame, err := codec.Encode(t.outSeq, payload)
	if err != nil {
		return nil, err
	}
	t.outSeq++
	return frame, nil
}

// RecordAck registers a received ACK for the current slot, clearing
// the retry/backoff state and crediting the active channel.
func (t *TrackerLink) RecordAck() {
	t.missedAcksInARow = 0
	t.retriesRemaining = t.cfg.GetAckRetryBudget()
	t.backoffFrames = 0
	t.framesUntilRetry = 0
	t.channels.RecordAck(t.currentChannel)
}

// RecordAckTimeout registers a slot that completed without an ACK.
// needsRePair is true once spec §4.5's 200-consecutive-miss threshold
// is reached, at which point the caller should call BeginPairing.
func (t *TrackerLink) RecordAckTimeout() (needsRePair bool) {
	t.missedAcksInARow++
	if t.retriesRemaining > 0 {
		t.retriesRemaining--
		if t.backoffFrames == 0 {
			t.backoffFrames = 1
		} else {
			t.backoffFrames *= 2
		}
		t.framesUntilRetry = t.backoffFrames
	}
	return t.missedAcksInARow >= t.cfg.GetRePairAfterMissedAcks()
}

// ShouldRetransmitNow reports whether a pending retry's backoff window
// has elapsed, decrementing the countdown by one frame as a side
// effect. Call once per superframe while a retry is outstanding.
func (t *TrackerLink) ShouldRetransmitNow() bool {
	if t.framesUntilRetry <= 0 {
		return true
	}
	t.framesUntilRetry--
	return t.framesUntilRetry <= 0
}

// RecordSlotOverrun registers a slot whose elapsed time exceeded
// slot_duration+guard, returning true if this is the third consecutive
// strike (abort TX, skip one frame, per spec §4.4).
func (t *TrackerLink) RecordSlotOverrun() (abort bool) {
	return t.recovery.RecordSlotOverrun()
}

// RecordSlotOnTime clears the overrun strike counter.
func (t *TrackerLink) RecordSlotOnTime() {
	t.recovery.RecordSlotOnTime()
}

// SetChannel updates the channel the link currently believes it is
// synchronized on, used for per-channel quality accounting.
func (t *TrackerLink) SetChannel(ch int) {
	t.currentChannel = ch
}

// CheckAutoSleep evaluates the sleep-entry condition (spec §4.5):
// paired, sync not lost, and rest_time at or beyond AUTO_SLEEP_TIMEOUT.
// Returns true if it transitioned to StateSleeping.
func (t *TrackerLink) CheckAutoSleep(restTimeSeconds float64) bool {
	if !t.canSleep() {
		return false
	}
	if time.Duration(restTimeSeconds*float64(time.Second)) < t.cfg.GetAutoSleepTimeout() {
		return false
	}
	return t.enterSleep()
}

// EnterSleep forces sleep entry on an explicit user gesture (long
// press). It still requires the paired/sync-not-lost guard spec §4.5
// states for "Any → SLEEPING".
func (t *TrackerLink) EnterSleep() bool {
	if !t.canSleep() {
		return false
	}
	return t.enterSleep()
}

func (t *TrackerLink) canSleep() bool {
	return t.paired && t.recovery.CurrentLevel() == recovery.ActionNone
}

func (t *TrackerLink) enterSleep() bool {
	t.state = StateSleeping
	retained, _ := t.store.ReadRetainedState()
	retained.SleepCount++
	retained.Timestamp = uint32(t.clock.Now().Unix())

	q := t.engine.Orientation()
	retained.LastQuatW, retained.LastQuatX, retained.LastQuatY, retained.LastQuatZ = q.Real, q.Imag, q.Jmag, q.Kmag
	retained.GyroBias = t.engine.GyroBias()
	retained.MagHeadingRef, retained.HasMagHeadingRef = t.engine.MagHeadingReference()

	if err := t.store.WriteRetainedState(retained); err != nil {
		motionlog.Logf("trackerlink: persist on sleep entry failed: %v", err)
	}
	if err := t.radio.SetMode(hal.RadioModeSleep); err != nil {
		motionlog.Logf("trackerlink: radio sleep failed: %v", err)
	}
	return true
}

// Wake resumes from StateSleeping into StateSearchSync, incrementing
// the persisted wake count and restoring the orientation engine's
// attitude, gyro bias, and mag heading reference from the state
// enterSleep saved (spec §4.8), so the resumed track picks up where it
// left off instead of reacquiring from identity.
func (t *TrackerLink) Wake() {
	if t.state != StateSleeping {
		return
	}
	t.state = StateSearchSync
	retained, _ := t.store.ReadRetainedState()
	retained.WakeCount++
	if err := t.store.WriteRetainedState(retained); err != nil {
		motionlog.Logf("trackerlink: persist on wake failed: %v", err)
	}

	q := quat.Number{Real: retained.LastQuatW, Imag: retained.LastQuatX, Jmag: retained.LastQuatY, Kmag: retained.LastQuatZ}
	t.engine.RestoreState(q, retained.GyroBias, retained.MagHeadingRef, retained.HasMagHeadingRef)
}
