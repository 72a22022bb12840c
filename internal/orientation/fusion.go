package orientation

import (
	"math"

	"github.com/aerolink/motionlink/internal/linkconfig"
	"gonum.org/v1/gonum/num/quat"
)

// baseAccelGain is the nominal complementary-filter gain applied to the
// accelerometer correction term before the adaptive reduction described
// in spec §4.2. The spec names the reduction curve but not this base
// rate; 0.02 was chosen to match a ~1 Hz correction bandwidth at a
// typical 50-200 Hz sample rate, consistent with the VQF reference
// filter's default accelerometer time constant.
const baseAccelGain = 0.02

// minAccelGain is the floor spec §4.2 places under the adaptively
// reduced accelerometer gain, so a single large disturbance cannot
// freeze corrections indefinitely.
const minAccelGain = 0.001

// restBiasRate implements the rest-bias EMA (spec §4.2): the gyro bias
// estimate folds the raw sample in at rate 0.01 while at rest.
const restBiasRate = 0.01

// restBiasCovarianceDecay is the per-update shrink factor spec §4.2
// step 5 applies to bias_covariance alongside every rest-bias EMA
// update: confidence in the bias estimate grows every tick the tracker
// holds still.
const restBiasCovarianceDecay = 0.99

// initialBiasCovariance is the per-axis uncertainty bias_covariance
// starts at before any rest-bias update has run — maximal uncertainty,
// matching the filter's startup convention of assuming nothing about
// the gyro bias until the first rest window.
const initialBiasCovariance = 1.0

// Asymmetric motion-bias tuning (spec §4.2): yaw/pitch axes (X/Y) drift
// faster than the roll-aligned Z axis on this sensor class, so they are
// tracked and corrected at different rates.
const (
	motionBiasAccumAlphaXY = 1e-4
	motionBiasAccumAlphaZ  = 1e-5
	motionBiasApplyRateXY  = 0.001
	motionBiasApplyRateZ   = 0.0001
	motionBiasDecayXY      = 0.99
	motionBiasDecayZ       = 0.999
	motionBiasAccumClamp   = 0.05 // rad/s
)

// FusionCore is the VQF-class attitude filter at the heart of stage 5
// (spec §4.2): quaternion-integration predict step, accelerometer
// correction against gravity, gyro bias tracking (rest EMA plus
// asymmetric in-motion accumulator), and optional magnetometer yaw
// correction.
type FusionCore struct {
	cfg *linkconfig.LinkConfig

	orientation    quat.Number
	gyroBias       [3]float64
	biasCovariance [3]float64

	motionBiasAccum [3]float64

	accelLP     [3]float64
	accelLPInit bool

	magLP        [3]float64
	magLPInit    bool
	magHeading   float64
	haveMagRef   bool
	magDisturb   float64 // seconds the heading has been out of tolerance
	MagDisturbed bool
}

// NewFusionCore creates a FusionCore at the identity orientation.
func NewFusionCore(cfg *linkconfig.LinkConfig) *FusionCore {
	return &FusionCore{
		cfg:            cfg,
		orientation:    quat.Number{Real: 1},
		biasCovariance: [3]float64{initialBiasCovariance, initialBiasCovariance, initialBiasCovariance},
	}
}

// Orientation returns the current attitude estimate.
func (f *FusionCore) Orientation() quat.Number {
	return f.orientation
}

// GyroBias returns the combined gyro bias estimate (rad/s), the single
// "gyro_bias" state spec §3 exposes to persistence and telemetry.
func (f *FusionCore) GyroBias() [3]float64 {
	return f.gyroBias
}

// SetGyroBias seeds the bias estimate, used when restoring persisted
// RetainedState at startup.
func (f *FusionCore) SetGyroBias(bias [3]float64) {
	f.gyroBias = bias
}

// BiasCovariance returns the per-axis gyro-bias uncertainty estimate
// (spec §3 "bias_covariance"), shrunk on every rest-bias EMA update.
func (f *FusionCore) BiasCovariance() [3]float64 {
	return f.biasCovariance
}

// MagHeadingReference returns the learned magnetometer heading
// reference and whether one has been established yet.
func (f *FusionCore) MagHeadingReference() (heading float64, ok bool) {
	return f.magHeading, f.haveMagRef
}

// SetMagHeadingReference seeds the learned heading reference, used
// when restoring a persisted RetainedState at startup (SPEC_FULL.md
// §C) instead of reacquiring it from a cold start on every wake.
func (f *FusionCore) SetMagHeadingReference(heading float64) {
	f.magHeading = heading
	f.haveMagRef = true
}

// Predict advances the orientation estimate by dt seconds given a
// bias-corrected gyro sample (rad/s, body frame).
func (f *FusionCore) Predict(gyro [3]float64, dt float64) {
	corrected := [3]float64{gyro[0] - f.gyroBias[0], gyro[1] - f.gyroBias[1], gyro[2] - f.gyroBias[2]}
	omega := quat.Number{Imag: corrected[0], Jmag: corrected[1], Kmag: corrected[2]}
	qDot := quat.Scale(0.5*dt, quat.Mul(f.orientation, omega))
	f.orientation = quatNormalize(quat.Add(f.orientation, qDot))
}

// AccelCorrect applies the gravity-reference correction (spec §4.2).
// accelG is the accelerometer sample in g; gyro is the filtered,
// pre-bias-correction gyro sample (rad/s) the bias tracks are folded
// from; restInstant and restTime gate which bias-update path runs.
func (f *FusionCore) AccelCorrect(accelG, gyro [3]float64, restInstant bool, restTime float64, dt float64) {
	if n := vecNorm(accelG); n < 0.5 || n > 1.5 {
		// Outside the plausible 1g+-tilt range: likely mid-motion
		// acceleration, not gravity. Skip the correction entirely but
		// still track bias (spec §4.2 step 5 "normalize ... only when").
		f.updateBias(gyro, restInstant, restTime)
		return
	}

	tau := f.cfg.GetAccelLowPassTauSeconds()
	k := 1 - math.Exp(-dt/tau)
	if !f.accelLPInit {
		f.accelLP = accelG
		f.accelLPInit = true
	} else {
		for i := 0; i < 3; i++ {
			f.accelLP[i] += k * (accelG[i] - f.accelLP[i])
		}
	}

	measured := vecNormalize(f.accelLP)
	predictedGravity := vecNormalize(rotateByConj(f.orientation, [3]float64{0, 0, 1}))
	errVec := vecCross(measured, predictedGravity)
	errNorm := vecNorm(errVec)

	gain := baseAccelGain
	if errNorm > 0.1 {
		gain = baseAccelGain / (errNorm / 0.1)
	}
	if gain < minAccelGain {
		gain = minAccelGain
	}

	correction := [3]float64{errVec[0] * gain, errVec[1] * gain, errVec[2] * gain}
	f.orientation = applySmallRotation(f.orientation, correction)

	f.updateBias(gyro, restInstant, restTime)
}

// updateBias runs the two gyro-bias tracks: a fast rest-gated EMA
// toward the raw gyro reading while stationary (the sensor should read
// exactly the bias at rest), and a slow asymmetric accumulator while in
// motion that lets the filter keep tracking slow drift without a rest
// window.
func (f *FusionCore) updateBias(gyro [3]float64, restInstant bool, restTime float64) {
	if restInstant && restTime > 0 {
		for i := 0; i < 3; i++ {
			f.gyroBias[i] += restBiasRate * (gyro[i] - f.gyroBias[i])
			f.biasCovariance[i] *= restBiasCovarianceDecay
		}
		return
	}

	alphas := [3]float64{motionBiasAccumAlphaXY, motionBiasAccumAlphaXY, motionBiasAccumAlphaZ}
	applyRates := [3]float64{motionBiasApplyRateXY, motionBiasApplyRateXY, motionBiasApplyRateZ}
	decays := [3]float64{motionBiasDecayXY, motionBiasDecayXY, motionBiasDecayZ}

	for i := 0; i < 3; i++ {
		f.motionBiasAccum[i] *= decays[i]
		f.motionBiasAccum[i] += alphas[i] * (gyro[i] - f.gyroBias[i])
		if f.motionBiasAccum[i] > motionBiasAccumClamp {
			f.motionBiasAccum[i] = motionBiasAccumClamp
		} else if f.motionBiasAccum[i] < -motionBiasAccumClamp {
			f.motionBiasAccum[i] = -motionBiasAccumClamp
		}
		f.gyroBias[i] += applyRates[i] * f.motionBiasAccum[i]
	}
}

// MagCorrect applies a yaw-only heading correction from a magnetometer
// sample (arbitrary units, only direction matters). A heading
// deviation from the learned reference is treated as a transient
// disturbance (MAG_DISTURBED, correction withheld) unless it persists
// for GetMagDisturbedSeconds, at which point the reference is re-learned
// and correction resumes — spec §4.2's "reject briefly, accept if
// sustained" rule for genuine heading changes vs. local field
// distortion.
func (f *FusionCore) MagCorrect(mag [3]float64, dt float64) {
	bodyMag := rotateByConj(f.orientation, mag)
	// Tilt-compensate: project the body-frame field into the horizontal
	// plane using the known-vertical axis (already gravity-aligned by
	// AccelCorrect) and take its heading.
	heading := math.Atan2(bodyMag[1], bodyMag[0])

	tau := f.cfg.GetMagLowPassTauSeconds()
	k := 1 - math.Exp(-dt/tau)
	if !f.magLPInit {
		f.magLP = mag
		f.magLPInit = true
		f.magHeading = heading
		f.haveMagRef = true
		return
	}
	for i := 0; i < 3; i++ {
		f.magLP[i] += k * (mag[i] - f.magLP[i])
	}

	if !f.haveMagRef {
		f.magHeading = heading
		f.haveMagRef = true
		return
	}

	deviation := angleDiff(heading, f.magHeading)
	if math.Abs(deviation) > f.cfg.GetMagDisturbedRadians() {
		f.magDisturb += dt
		if f.magDisturb >= f.cfg.GetMagDisturbedSeconds() {
			f.magHeading = heading
			f.magDisturb = 0
			f.MagDisturbed = false
		} else {
			f.MagDisturbed = true
		}
		return
	}

	f.magDisturb = 0
	f.MagDisturbed = false
	correction := [3]float64{0, 0, k * deviation}
	f.orientation = applySmallRotation(f.orientation, correction)
}

func angleDiff(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
