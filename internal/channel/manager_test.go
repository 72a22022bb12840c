package channel

import (
	"testing"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

func testChannels() []int { return []int{2, 4, 6, 8, 10, 12, 14, 16} }

func TestManager_LossRateComputation(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	for i := 0; i < 10; i++ {
		m.RecordTX(2)
	}
	for i := 0; i < 7; i++ {
		m.RecordAck(2)
	}
	stats := m.Stats(2)
	if stats.TXCount != 10 {
		t.Fatalf("TXCount = %d, want 10", stats.TXCount)
	}
	if stats.LossRate != 30 {
		t.Fatalf("LossRate = %v, want 30", stats.LossRate)
	}
}

func TestManager_BlacklistsAboveThreshold(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	for i := 0; i < 10; i++ {
		m.RecordTX(2)
	}
	for i := 0; i < 5; i++ {
		m.RecordAck(2) // 50% loss > 30% default blacklist threshold
	}
	m.Tick()
	if !m.Stats(2).Blacklisted {
		t.Fatal("channel with 50% loss not blacklisted")
	}
	active := m.ActiveChannels()
	for _, ch := range active {
		if ch == 2 {
			t.Fatal("blacklisted channel 2 still listed active")
		}
	}
}

func TestManager_RehabilitatesAfterFullGoodWindow(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	for i := 0; i < 10; i++ {
		m.RecordTX(2)
	}
	for i := 0; i < 5; i++ {
		m.RecordAck(2)
	}
	m.Tick()
	if !m.Stats(2).Blacklisted {
		t.Fatal("setup: channel 2 should be blacklisted")
	}

	// Ten consecutive seconds with good loss rate should rehabilitate.
	for sec := 0; sec < windowSeconds; sec++ {
		m.RecordTX(2)
		m.RecordAck(2)
		m.Tick()
	}
	if m.Stats(2).Blacklisted {
		t.Fatal("channel 2 did not rehabilitate after a full good window")
	}
}

func TestManager_EnforcesMinActiveFloor(t *testing.T) {
	channels := []int{2, 4, 6}
	m := NewManager(linkconfig.EmptyLinkConfig(), channels)
	for _, ch := range channels {
		for i := 0; i < 10; i++ {
			m.RecordTX(ch)
		}
		// all fail badly
	}
	m.Tick()
	// With only 3 channels and min-active 3, none may end up blacklisted.
	if len(m.ActiveChannels()) < 3 {
		t.Fatalf("active channels = %d, want >= 3 (floor)", len(m.ActiveChannels()))
	}
}

func TestManager_RSSIAverage(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	m.RecordRSSI(2, -60)
	m.RecordRSSI(2, -80)
	stats := m.Stats(2)
	if stats.AvgRSSI != -70 {
		t.Fatalf("AvgRSSI = %v, want -70", stats.AvgRSSI)
	}
}

func TestManager_IsClear(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	if !m.IsClear(-70) {
		t.Fatal("-70 dBm should read clear (below -65 default)")
	}
	if m.IsClear(-50) {
		t.Fatal("-50 dBm should not read clear")
	}
}

func TestManager_PickClearChannelFallsBackToCurrent(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	alwaysNoisy := func(ch int) (int, error) { return -40, nil }
	got, err := m.PickClearChannel(2, alwaysNoisy, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("PickClearChannel fallback = %d, want current channel 2", got)
	}
}

func TestManager_PickClearChannelFindsClear(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	sample := func(ch int) (int, error) {
		if ch == 6 {
			return -90, nil
		}
		return -40, nil
	}
	got, err := m.PickClearChannel(2, sample, 8)
	if err != nil {
		t.Fatal(err)
	}
	if got != 6 {
		t.Fatalf("PickClearChannel = %d, want 6", got)
	}
}

func TestHopSequence_Deterministic(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	a := m.HopSequence(0xDEADBEEF, 100)
	b := m.HopSequence(0xDEADBEEF, 100)
	if a != b {
		t.Fatalf("HopSequence not deterministic: %v != %v", a, b)
	}
}

func TestHopSequence_ChangesWithFrameNumber(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	a := m.HopSequence(0xDEADBEEF, 100)
	b := m.HopSequence(0xDEADBEEF, 101)
	if a == b {
		t.Fatal("HopSequence identical across different frame numbers")
	}
}

func TestHopSequence_AvoidsBlacklistedChannels(t *testing.T) {
	m := NewManager(linkconfig.EmptyLinkConfig(), testChannels())
	for i := 0; i < 10; i++ {
		m.RecordTX(2)
	}
	for i := 0; i < 5; i++ {
		m.RecordAck(2)
	}
	m.Tick()
	if !m.Stats(2).Blacklisted {
		t.Fatal("setup: channel 2 should be blacklisted")
	}

	for frame := uint16(0); frame < 64; frame++ {
		seq := m.HopSequence(0x12345678, frame)
		for _, b := range seq {
			if int(b) == 2 {
				t.Fatalf("hop sequence for frame %d still lands on blacklisted channel 2: %v", frame, seq)
			}
		}
	}
}
