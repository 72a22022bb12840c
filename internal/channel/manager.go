package channel

import (
	"fmt"
	"sort"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

const windowSeconds = 10

// bucket accumulates one second's worth of observations for a channel.
type bucket struct {
	tx          int
	ack         int
	crcErr      int
	rssiSum     int
	rssiSamples int
}

// state is one channel's rolling window and hysteresis state.
type state struct {
	buckets     [windowSeconds]bucket
	cursor      int
	blacklisted bool
	// rehabGoodStreak counts consecutive closed seconds whose loss rate
	// was under the rehabilitation threshold; a blacklisted channel
	// rehabilitates only once a full window passes this way.
	rehabGoodStreak int
}

// Stats is a channel's current window summary.
type Stats struct {
	TXCount     int
	LossRate    float64 // percent, 0 when tx == 0
	AvgRSSI     float64 // dBm, 0 when no samples
	Blacklisted bool
}

// Manager tracks per-channel quality for a fixed channel set and applies
// the spec's blacklist/rehabilitation hysteresis (spec §4.3).
type Manager struct {
	cfg      *linkconfig.LinkConfig
	channels []int
	states   map[int]*state
}

// NewManager creates a Manager over the given channel numbers. The set
// is fixed for the Manager's lifetime; channels are only ever
// blacklisted or rehabilitated, never added or removed.
func NewManager(cfg *linkconfig.LinkConfig, channels []int) *Manager {
	m := &Manager{cfg: cfg, channels: append([]int(nil), channels...), states: make(map[int]*state, len(channels))}
	for _, ch := range channels {
		m.states[ch] = &state{}
	}
	return m
}

func (m *Manager) stateFor(ch int) *state {
	s, ok := m.states[ch]
	if !ok {
		s = &state{}
		m.states[ch] = s
	}
	return s
}

// RecordTX records a transmission attempt on ch in the current second's
// bucket.
func (m *Manager) RecordTX(ch int) {
	s := m.stateFor(ch)
	s.buckets[s.cursor].tx++
}

// RecordAck records a successful acknowledgment on ch.
func (m *Manager) RecordAck(ch int) {
	s := m.stateFor(ch)
	s.buckets[s.cursor].ack++
}

// RecordCRCErr records a CRC failure on ch.
func (m *Manager) RecordCRCErr(ch int) {
	s := m.stateFor(ch)
	s.buckets[s.cursor].crcErr++
}

// RecordRSSI records an RSSI sample (dBm) on ch.
func (m *Manager) RecordRSSI(ch int, rssi int) {
	s := m.stateFor(ch)
	s.buckets[s.cursor].rssiSum += rssi
	s.buckets[s.cursor].rssiSamples++
}

// Tick advances the 1 Hz update cycle: rotates each channel's ring
// buffer by one second and re-evaluates blacklist/rehabilitation state.
// Call this once per second of wall-clock time.
func (m *Manager) Tick() {
	for _, ch := range m.channels {
		s := m.states[ch]
		s.cursor = (s.cursor + 1) % windowSeconds
		s.buckets[s.cursor] = bucket{}
	}
	m.evaluateHysteresis()
}

func (m *Manager) windowStats(s *state) (tx, ack, crcErr int, rssiSum, rssiSamples int) {
	for _, b := range s.buckets {
		tx += b.tx
		ack += b.ack
		crcErr += b.crcErr
		rssiSum += b.rssiSum
		rssiSamples += b.rssiSamples
	}
	return
}

// Stats returns ch's current window summary.
func (m *Manager) Stats(ch int) Stats {
	s := m.stateFor(ch)
	tx, ack, _, rssiSum, rssiSamples := m.windowStats(s)
	out := Stats{TXCount: tx, Blacklisted: s.blacklisted}
	if tx > 0 {
		out.LossRate = float64(tx-ack) / float64(tx) * 100
	}
	if rssiSamples > 0 {
		out.AvgRSSI = float64(rssiSum) / float64(rssiSamples)
	}
	return out
}

func (m *Manager) evaluateHysteresis() {
	blacklistThresh := m.cfg.GetChannelBlacklistLossPct()
	rehabThresh := m.cfg.GetChannelRehabLossPct()
	minActive := m.cfg.GetChannelMinActive()

	for _, ch := range m.channels {
		s := m.states[ch]
		stats := m.Stats(ch)
		if stats.TXCount == 0 {
			continue
		}
		if !s.blacklisted {
			if stats.LossRate > blacklistThresh {
				s.blacklisted = true
				s.rehabGoodStreak = 0
			}
			continue
		}
		closed := s.buckets[(s.cursor+windowSeconds-1)%windowSeconds]
		if closed.tx == 0 {
			continue
		}
		closedLoss := float64(closed.tx-closed.ack) / float64(closed.tx) * 100
		if closedLoss < rehabThresh {
			s.rehabGoodStreak++
		} else {
			s.rehabGoodStreak = 0
		}
		if s.rehabGoodStreak >= windowSeconds {
			s.blacklisted = false
			s.rehabGoodStreak = 0
		}
	}

	m.enforceMinActive(minActive)
}

// enforceMinActive force-reactivates the least-bad blacklisted channel
// (by loss rate) until at least minActive channels are active, so
// rehabilitation pressure can never blacklist the whole channel set
// down to nothing usable.
func (m *Manager) enforceMinActive(minActive int) {
	for m.activeCount() < minActive {
		worst := m.leastBadBlacklisted()
		if worst == nil {
			return
		}
		worst.blacklisted = false
		worst.rehabGoodStreak = 0
	}
}

func (m *Manager) activeCount() int {
	n := 0
	for _, ch := range m.channels {
		if !m.states[ch].blacklisted {
			n++
		}
	}
	return n
}

func (m *Manager) leastBadBlacklisted() *state {
	type cand struct {
		ch   int
		loss float64
	}
	var cands []cand
	for _, ch := range m.channels {
		s := m.states[ch]
		if !s.blacklisted {
			continue
		}
		cands = append(cands, cand{ch: ch, loss: m.Stats(ch).LossRate})
	}
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].loss < cands[j].loss })
	return m.states[cands[0].ch]
}

// ActiveChannels returns the current non-blacklisted channels, in the
// order the Manager was constructed with.
func (m *Manager) ActiveChannels() []int {
	var out []int
	for _, ch := range m.channels {
		if !m.states[ch].blacklisted {
			out = append(out, ch)
		}
	}
	return out
}

// IsClear reports whether a sampled RSSI indicates a clear channel
// (spec §4.3: RSSI < -65 dBm by default).
func (m *Manager) IsClear(rssiDbm int) bool {
	return float64(rssiDbm) < m.cfg.GetClearChannelRSSIDbm()
}

// PickClearChannel samples candidate channels via sampleRSSI (which
// performs the actual radio read) until one reads clear or maxRetries
// is exhausted, in which case it falls back to the current channel
// (spec §4.3: "falls back to the current channel after exhausting
// retries").
func (m *Manager) PickClearChannel(current int, sampleRSSI func(ch int) (int, error), maxRetries int) (int, error) {
	active := m.ActiveChannels()
	if len(active) == 0 {
		return 0, fmt.Errorf("channel: no active channels")
	}
	start := indexOf(active, current)
	for i := 0; i < maxRetries; i++ {
		ch := active[(start+i+1)%len(active)]
		rssi, err := sampleRSSI(ch)
		if err != nil {
			continue
		}
		if m.IsClear(rssi) {
			return ch, nil
		}
	}
	return current, nil
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}
