package orientation

import (
	"testing"

	"github.com/aerolink/motionlink/internal/linkconfig"
)

func TestAutoCalibrator_GyroOffsetConverges(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	a := NewAutoCalibrator(cfg)
	bias := [3]float64{0.01, -0.02, 0.005}
	var offset [3]float64
	// Each full batch moves the offset only 0.1% of the way toward the
	// batch average, so 4000 batches leave a residual of 0.999^4000
	// (~1.8%) of the bias: under 1e-3 on every axis.
	for i := 0; i < restAverageWindow*4000; i++ {
		offset, _ = a.Update(bias, 1.0, true, 10)
	}
	for i := 0; i < 3; i++ {
		if diff := offset[i] - bias[i]; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("axis %d offset did not converge: got %v want ~%v", i, offset[i], bias[i])
		}
	}
}

func TestAutoCalibrator_NotGatedBeforeRestSettles(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	a := NewAutoCalibrator(cfg)
	offset, scale := a.Update([3]float64{1, 1, 1}, 1.0, true, 0)
	if offset != ([3]float64{}) {
		t.Fatalf("expected no offset update before rest calibration dwell, got %v", offset)
	}
	if scale != 1.0 {
		t.Fatalf("expected identity accel scale before rest settles, got %v", scale)
	}
}

func TestAutoCalibrator_AccelScaleAdapts(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	a := NewAutoCalibrator(cfg)
	var scale float64
	for i := 0; i < 500; i++ {
		_, scale = a.Update([3]float64{}, 1.05, true, 10)
	}
	if scale >= 1.0 {
		t.Fatalf("expected accel scale to adapt below 1 to correct a high-reading sensor, got %v", scale)
	}
}

func TestAutoCalibrator_IgnoresOutOfRangeAccelNorm(t *testing.T) {
	cfg := linkconfig.EmptyLinkConfig()
	a := NewAutoCalibrator(cfg)
	_, scale := a.Update([3]float64{}, 1.5, true, 10)
	if scale != 1.0 {
		t.Fatalf("expected scale untouched when accel norm is outside the 1g+-0.1g gate, got %v", scale)
	}
}
