package orientation

import "math"

// GyroNoiseFilter implements stage 2 (spec §4.2): a median-of-3 filter
// per axis, followed by a length-4 moving average, plus the rest
// subfilter boolean consumed directly by auto-calibration and fusion's
// bias updates (the hysteresis-and-dwell REST flag reported downstream
// is a separate, slower-committing state machine: see RestDetector).
type GyroNoiseFilter struct {
	axes          [3]medianWindow
	avg           [3]movingAverage
	restThreshold float64 // rad/s
}

// NewGyroNoiseFilter creates a filter whose rest subfilter fires below
// restThresholdRadS.
func NewGyroNoiseFilter(restThresholdRadS float64) *GyroNoiseFilter {
	return &GyroNoiseFilter{restThreshold: restThresholdRadS}
}

// Filter applies the median-then-moving-average chain to one raw gyro
// sample (rad/s per axis) and reports the instantaneous rest subfilter
// boolean.
func (f *GyroNoiseFilter) Filter(gyro [3]float64) (filtered [3]float64, restInstant bool) {
	var norm float64
	for i := 0; i < 3; i++ {
		med := f.axes[i].push(gyro[i])
		filtered[i] = f.avg[i].push(med)
		norm += filtered[i] * filtered[i]
	}
	return filtered, math.Sqrt(norm) < f.restThreshold
}

// medianWindow is a 3-sample sliding median per axis.
type medianWindow struct {
	samples [3]float64
	count   int
}

func (w *medianWindow) push(v float64) float64 {
	w.samples[0], w.samples[1], w.samples[2] = w.samples[1], w.samples[2], v
	if w.count < 3 {
		w.count++
	}
	if w.count < 3 {
		// Not enough history yet: fall back to the newest sample.
		return v
	}
	return median3(w.samples[0], w.samples[1], w.samples[2])
}

func median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}

// movingAverage is a length-4 moving average per axis.
type movingAverage struct {
	samples [4]float64
	count   int
	idx     int
}

func (m *movingAverage) push(v float64) float64 {
	m.samples[m.idx] = v
	m.idx = (m.idx + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	var sum float64
	for i := 0; i < m.count; i++ {
		sum += m.samples[i]
	}
	return sum / float64(m.count)
}
