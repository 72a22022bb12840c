package orientation

import (
	"math"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

const restAverageWindow = 200

// AutoCalibrator is stage 4 (spec §4.2): while rest persists, averages
// raw gyro samples in batches of 200 and folds the average into the
// gyro offset at rate 0.001; accelerometer scale adapts at rate 0.01
// when the accel norm reads within 0.1 g of 1 g during rest.
type AutoCalibrator struct {
	cfg        *linkconfig.LinkConfig
	buffer     [restAverageWindow][3]float64
	bufferLen  int
	offset     [3]float64
	accelScale float64
}

// NewAutoCalibrator creates an AutoCalibrator with an identity
// (no-op) accelerometer scale.
func NewAutoCalibrator(cfg *linkconfig.LinkConfig) *AutoCalibrator {
	return &AutoCalibrator{cfg: cfg, accelScale: 1.0}
}

// Update folds one sample's worth of rest-gated calibration. gyro is
// the temperature-compensated gyro sample (rad/s); accelNormG is the
// accelerometer vector norm in g. restInstant and restTime are the
// stage-2 subfilter boolean and the authoritative rest detector's
// accumulated rest duration respectively; calibration only runs once
// rest has persisted at least GetRestCalibrationSeconds (default 1s).
func (a *AutoCalibrator) Update(gyro [3]float64, accelNormG float64, restInstant bool, restTime float64) (offset [3]float64, accelScale float64) {
	if restInstant && restTime >= a.cfg.GetRestCalibrationSeconds() {
		a.buffer[a.bufferLen] = gyro
		a.bufferLen++
		if a.bufferLen >= restAverageWindow {
			var sum [3]float64
			for _, s := range a.buffer[:a.bufferLen] {
				sum[0] += s[0]
				sum[1] += s[1]
				sum[2] += s[2]
			}
			for i := 0; i < 3; i++ {
				avg := sum[i] / float64(a.bufferLen)
				a.offset[i] += 0.001 * (avg - a.offset[i])
			}
			a.bufferLen = 0
		}

		if math.Abs(accelNormG-1) < 0.1 {
			target := 1.0
			if accelNormG != 0 {
				target = 1.0 / accelNormG
			}
			a.accelScale += 0.01 * (target - a.accelScale)
		}
	}
	return a.offset, a.accelScale
}
