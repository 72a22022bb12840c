package linkclock

import (
	"testing"
	"time"
)

func TestEpoch_MillisMicros(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	epoch := NewEpoch(clock)

	if got := epoch.Millis(); got != 0 {
		t.Fatalf("Millis() at creation = %d, want 0", got)
	}

	clock.Advance(5 * time.Millisecond)
	if got := epoch.Millis(); got != 5 {
		t.Fatalf("Millis() after 5ms advance = %d, want 5", got)
	}
	if got := epoch.Micros(); got != 5000 {
		t.Fatalf("Micros() after 5ms advance = %d, want 5000", got)
	}
}

func TestDeadline_Expired(t *testing.T) {
	clock := NewMockClock(time.Now())
	epoch := NewEpoch(clock)

	dl := epoch.DeadlineIn(400 * time.Microsecond)
	if dl.Expired(epoch) {
		t.Fatal("deadline expired immediately after being set")
	}

	clock.Advance(399 * time.Microsecond)
	if dl.Expired(epoch) {
		t.Fatal("deadline expired 1us early")
	}

	clock.Advance(1 * time.Microsecond)
	if !dl.Expired(epoch) {
		t.Fatal("deadline did not expire exactly on time")
	}
}
