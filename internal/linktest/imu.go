package linktest

import "github.com/aerolink/motionlink/internal/hal"

// FakeIMU replays a scripted sequence of hal.IMUResult samples, looping
// on the last sample once exhausted so long-running simulations do not
// need to provide one entry per tick.
type FakeIMU struct {
	samples   []hal.IMUResult
	idx       int
	ready     bool
	suspended bool
}

// NewFakeIMU creates a FakeIMU that will replay samples in order.
func NewFakeIMU(samples []hal.IMUResult) *FakeIMU {
	return &FakeIMU{samples: samples, ready: len(samples) > 0}
}

func (f *FakeIMU) Read() (hal.IMUResult, error) {
	if len(f.samples) == 0 {
		return hal.IMUResult{}, nil
	}
	s := f.samples[f.idx]
	if f.idx < len(f.samples)-1 {
		f.idx++
	}
	return s, nil
}

func (f *FakeIMU) Suspend() error {
	f.suspended = true
	return nil
}

func (f *FakeIMU) Resume() error {
	f.suspended = false
	return nil
}

func (f *FakeIMU) DataReady() bool {
	return f.ready && !f.suspended
}

// SetReady controls the DataReady flag, for tests that want to exercise
// the caller's wait/timeout path.
func (f *FakeIMU) SetReady(ready bool) {
	f.ready = ready
}
