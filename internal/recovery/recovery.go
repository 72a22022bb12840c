package recovery

import (
	"time"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

// ActionLevel ranks the escalating responses to consecutive missed sync
// beacons (spec §4.4). Levels are ordered: a caller comparing two
// ActionLevel values with >= can tell whether one escalation subsumes
// another (spec §4.5 uses this: "RUNNING → SEARCH_SYNC when the
// recovery state machine reports action-level >= CHANNEL_SWITCH").
type ActionLevel int

const (
	ActionNone ActionLevel = iota
	ActionResync
	ActionChannelSwitch
	ActionFullScan
	ActionDeepSearch
)

func (a ActionLevel) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionResync:
		return "resync"
	case ActionChannelSwitch:
		return "channel_switch"
	case ActionFullScan:
		return "full_scan"
	case ActionDeepSearch:
		return "deep_search"
	default:
		return "unknown"
	}
}

// Machine tracks consecutive missed sync beacons and slot-overrun
// strikes, escalating through ActionLevel tiers as thresholds are
// crossed (spec §4.4).
type Machine struct {
	cfg                *linkconfig.LinkConfig
	missedBeacons      int
	slotOverrunStrikes int
}

// New creates a Machine bound to cfg's tier thresholds.
func New(cfg *linkconfig.LinkConfig) *Machine {
	return &Machine{cfg: cfg}
}

// RecordMissedBeacon registers one more consecutive missed sync beacon
// and reports the action level newly crossed, or ActionNone if the new
// count does not land exactly on a tier threshold (spec §4.4 table:
// 3/10/30/100 missed in a row).
func (m *Machine) RecordMissedBeacon() ActionLevel {
	m.missedBeacons++
	switch m.missedBeacons {
	case m.cfg.GetRecoveryResyncMisses():
		return ActionResync
	case m.cfg.GetRecoverySwitchMisses():
		return ActionChannelSwitch
	case m.cfg.GetRecoveryFullScanMisses():
		return ActionFullScan
	case m.cfg.GetRecoveryDeepSearchMisses():
		return ActionDeepSearch
	default:
		return ActionNone
	}
}

// CurrentLevel reports the highest action level implied by the current
// missed-beacon count, regardless of whether it was just crossed. Used
// by callers like the tracker link that need to compare against a
// standing level (spec §4.5) rather than react only to edges.
func (m *Machine) CurrentLevel() ActionLevel {
	switch {
	case m.missedBeacons >= m.cfg.GetRecoveryDeepSearchMisses():
		return ActionDeepSearch
	case m.missedBeacons >= m.cfg.GetRecoveryFullScanMisses():
		return ActionFullScan
	case m.missedBeacons >= m.cfg.GetRecoverySwitchMisses():
		return ActionChannelSwitch
	case m.missedBeacons >= m.cfg.GetRecoveryResyncMisses():
		return ActionResync
	default:
		return ActionNone
	}
}

// MissedBeacons returns the current consecutive-miss count.
func (m *Machine) MissedBeacons() int {
	return m.missedBeacons
}

// RecordBeaconReceived resets the consecutive miss count after a
// successfully decoded sync beacon.
func (m *Machine) RecordBeaconReceived() {
	m.missedBeacons = 0
}

// RecordSlotOverrun registers one slot whose elapsed time exceeded
// slot_duration+guard. It reports true once the configured number of
// consecutive strikes is reached (spec §4.4: "aborts its TX and skips
// one frame"), resetting the strike counter in the process.
func (m *Machine) RecordSlotOverrun() (abort bool) {
	m.slotOverrunStrikes++
	if m.slotOverrunStrikes >= m.cfg.GetSlotOverrunStrikes() {
		m.slotOverrunStrikes = 0
		return true
	}
	return false
}

// RecordSlotOnTime clears the slot-overrun strike counter after a slot
// that completed within budget.
func (m *Machine) RecordSlotOnTime() {
	m.slotOverrunStrikes = 0
}

// TimeoutTier classifies a wait duration against the tiered timeout
// ladder (spec §4.4).
type TimeoutTier int

const (
	TimeoutNone TimeoutTier = iota
	TimeoutSoft             // continue waiting
	TimeoutRetry
	TimeoutResetRadio
	TimeoutForceRepair
)

func (t TimeoutTier) String() string {
	switch t {
	case TimeoutNone:
		return "none"
	case TimeoutSoft:
		return "soft"
	case TimeoutRetry:
		return "retry"
	case TimeoutResetRadio:
		return "reset_radio"
	case TimeoutForceRepair:
		return "force_repair"
	default:
		return "unknown"
	}
}

// ClassifyTimeout maps an elapsed wait duration to its tier: 10ms soft,
// 50ms retry, 100ms reset radio, 500ms force re-pair search (spec
// §4.4). Tiers are cumulative thresholds; the returned tier is the
// highest one elapsed has reached.
func ClassifyTimeout(elapsed time.Duration) TimeoutTier {
	switch {
	case elapsed >= 500*time.Millisecond:
		return TimeoutForceRepair
	case elapsed >= 100*time.Millisecond:
		return TimeoutResetRadio
	case elapsed >= 50*time.Millisecond:
		return TimeoutRetry
	case elapsed >= 10*time.Millisecond:
		return TimeoutSoft
	default:
		return TimeoutNone
	}
}
