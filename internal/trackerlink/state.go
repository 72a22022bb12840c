package trackerlink

// State is the Tracker Link's top-level state (spec §4.5: "INIT →
// SEARCH_SYNC → RUNNING → {PAIRING, SLEEPING}").
type State int

const (
	StateInit State = iota
	StateSearchSync
	StateRunning
	StatePairing
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSearchSync:
		return "search_sync"
	case StateRunning:
		return "running"
	case StatePairing:
		return "pairing"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}
