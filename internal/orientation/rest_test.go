package orientation

import (
	"testing"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

func TestRestDetector_EntersAfterDwell(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	r := NewRestDetector(cfg)
	dwell := cfg.GetRestDwellSeconds()
	dt := 0.05
	steps := int(dwell/dt) + 2
	var resting bool
	for i := 0; i < steps; i++ {
		resting = r.Update(0, 0, dt)
	}
	if !resting {
		t.Fatalf("expected rest to commit after dwelling %v seconds below threshold", dwell)
	}
}

func TestRestDetector_DoesNotFlickerOnBriefMotion(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	r := NewRestDetector(cfg)
	dwell := cfg.GetRestDwellSeconds()
	dt := 0.05
	for i := 0; i*int(dt*1000) < int(dwell*1000)+200; i++ {
		r.Update(0, 0, dt)
	}
	// One brief above-exit-threshold sample should not immediately clear
	// rest, since exit requires dwell to decay to zero via the
	// double-rate decay, not a single instant.
	entryGyro := cfg.GetRestEntryGyroDegPerSec() * degToRad
	relax := cfg.GetRestExitRelaxFactor()
	exitGyro := entryGyro * relax
	stillResting := r.Update(exitGyro*1.01, 0, dt)
	if !stillResting {
		t.Fatalf("expected a single borderline sample not to immediately clear rest")
	}
}

func TestRestDetector_ExitsUnderSustainedMotion(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	r := NewRestDetector(cfg)
	dwell := cfg.GetRestDwellSeconds()
	dt := 0.05
	for i := 0; i*int(dt*1000) < int(dwell*1000)+200; i++ {
		r.Update(0, 0, dt)
	}
	var resting bool
	for i := 0; i < 200; i++ {
		resting = r.Update(10, 10, dt)
	}
	if resting {
		t.Fatalf("expected sustained large motion to clear the rest flag")
	}
}

func TestRestDetector_RestTimeAccumulates(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	r := NewRestDetector(cfg)
	dwell := cfg.GetRestDwellSeconds()
	dt := 0.05
	steps := int(dwell/dt) + 2
	for i := 0; i < steps; i++ {
		r.Update(0, 0, dt)
	}
	if r.RestTime() <= 0 {
		t.Fatalf("expected RestTime to accumulate once resting, got %v", r.RestTime())
	}
}
