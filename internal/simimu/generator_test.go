package simimu

import "testing"

func TestGenerator_ReadProducesBoundedSamples(t *testing.T) {
	g := NewGenerator(true, true)
	for i := 0; i < SampleRateHz*2; i++ {
		sample, err := g.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if !sample.HasMag || !sample.HasTemp {
			t.Fatalf("expected mag and temp to be present")
		}
		if sample.Accel.Z < 0.5 || sample.Accel.Z > 1.5 {
			t.Fatalf("accel.Z = %v, want roughly 1g", sample.Accel.Z)
		}
	}
}

func TestGenerator_SuspendResumeTogglesDataReady(t *testing.T) {
	g := NewGenerator(false, false)
	if !g.DataReady() {
		t.Fatalf("expected DataReady before Suspend")
	}
	if err := g.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if g.DataReady() {
		t.Fatalf("expected !DataReady after Suspend")
	}
	if err := g.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if !g.DataReady() {
		t.Fatalf("expected DataReady after Resume")
	}
}
