package orientation

import "github.com/aerolink/motionlink/internal/linkconfig"

// degToRad converts the config's degrees-per-second thresholds into
// rad/s for comparison against filtered gyro samples.
const degToRad = 3.141592653589793 / 180

// RestDetector is stage 6 (spec §4.2): the authoritative REST flag,
// computed with hysteresis (stricter entry, relaxed exit) and a dwell
// requirement to suppress breathing-induced toggling.
type RestDetector struct {
	cfg      *linkconfig.LinkConfig
	dwell    float64 // seconds, hysteresis commit/exit progress
	resting  bool
	restTime float64 // seconds accumulated while resting (spec §3 "rest_time")
}

// NewRestDetector creates a RestDetector bound to cfg's thresholds.
func NewRestDetector(cfg *linkconfig.LinkConfig) *RestDetector {
	return &RestDetector{cfg: cfg}
}

// Update advances the state machine by dt seconds given the filtered
// gyro norm (rad/s) and the accelerometer-norm deviation from 1 g,
// already converted to m/s^2. It returns the current REST flag.
func (r *RestDetector) Update(gyroNormRadS, accelDevMS2, dt float64) bool {
	entryGyro := r.cfg.GetRestEntryGyroDegPerSec() * degToRad
	entryAccel := r.cfg.GetRestEntryAccelMPS2()
	relax := r.cfg.GetRestExitRelaxFactor()
	exitGyro := entryGyro * relax
	exitAccel := entryAccel * relax
	dwellTarget := r.cfg.GetRestDwellSeconds()

	var within bool
	if r.resting {
		within = gyroNormRadS < exitGyro && accelDevMS2 < exitAccel
	} else {
		within = gyroNormRadS < entryGyro && accelDevMS2 < entryAccel
	}

	if within {
		r.dwell += dt
	} else {
		// Exit is double-rate decay of the dwell counter (spec §4.2).
		r.dwell -= dt * 2
		if r.dwell < 0 {
			r.dwell = 0
		}
	}

	if !r.resting && r.dwell >= dwellTarget {
		r.resting = true
	}
	if r.resting && r.dwell <= 0 {
		r.resting = false
	}

	if r.resting {
		r.restTime += dt
	} else {
		r.restTime = 0
	}

	return r.resting
}

// RestTime returns the seconds accumulated while the REST flag has been
// continuously set (spec §3 "rest_time").
func (r *RestDetector) RestTime() float64 {
	return r.restTime
}
