package orientation

import (
	"github.com/aerolink/motionlink/internal/linkconfig"
	"gonum.org/v1/gonum/num/quat"
)

// RawSample is one IMU reading as handed to the Orientation Engine by
// the HAL driver (stage 1, spec §4.2). Accel is in g, Gyro in rad/s,
// Mag is optional (arbitrary units, direction only) and TempC is
// optional.
type RawSample struct {
	Accel   [3]float64
	Gyro    [3]float64
	Mag     [3]float64
	HasMag  bool
	TempC   float64
	HasTemp bool
	DtSec   float64
}

// Flags reports the engine's auxiliary state for a given Output.
type Flags struct {
	Rest         bool
	MagDisturbed bool
	Initialized  bool
}

// Output is the per-tick result of Engine.Update: the fused
// orientation, gyro bias estimate, and gravity-subtracted linear
// acceleration (stage 7, spec §4.2), plus the auxiliary Flags.
type Output struct {
	Orientation     quat.Number
	GyroBias        [3]float64
	BiasCovariance  [3]float64
	LinearAccel     [3]float64
	RestTimeSeconds float64
	AccelScale      float64
	Flags           Flags
}

// Engine runs the full seven-stage pipeline once per IMU sample.
type Engine struct {
	cfg *linkconfig.LinkConfig

	gyroFilter *GyroNoiseFilter
	tempComp   *TempCompensator
	autocal    *AutoCalibrator
	fusion     *FusionCore
	rest       *RestDetector

	ticks uint64
}

// NewEngine builds an Engine bound to cfg's tuning thresholds.
func NewEngine(cfg *linkconfig.LinkConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		gyroFilter: NewGyroNoiseFilter(cfg.GetRestEntryGyroDegPerSec() * degToRad),
		tempComp:   NewTempCompensator(),
		autocal:    NewAutoCalibrator(cfg),
		fusion:     NewFusionCore(cfg),
		rest:       NewRestDetector(cfg),
	}
}

// SetTempCoeffs installs a characterized thermal model (stage 3).
func (e *Engine) SetTempCoeffs(coeffs TempCompCoeffs) {
	e.tempComp.SetCoeffs(coeffs)
}

// RestoreState seeds the fusion core's orientation, gyro bias, and
// (if present) magnetometer heading reference from a persisted
// RetainedState record, so a tracker waking from sleep resumes without
// a reacquisition transient.
func (e *Engine) RestoreState(orientation quat.Number, gyroBias [3]float64, magHeadingRef float64, haveMagHeadingRef bool) {
	e.fusion.orientation = quatNormalize(orientation)
	e.fusion.SetGyroBias(gyroBias)
	if haveMagHeadingRef {
		e.fusion.SetMagHeadingReference(magHeadingRef)
	}
}

// Orientation returns the fusion core's current attitude estimate,
// for callers that need the live state outside of an Update call (for
// example, to persist it before sleep).
func (e *Engine) Orientation() quat.Number {
	return e.fusion.Orientation()
}

// GyroBias returns the fusion core's current gyro bias estimate.
func (e *Engine) GyroBias() [3]float64 {
	return e.fusion.GyroBias()
}

// MagHeadingReference returns the fusion core's learned magnetometer
// heading reference and whether one has been established.
func (e *Engine) MagHeadingReference() (heading float64, ok bool) {
	return e.fusion.MagHeadingReference()
}

// Update runs one pass of the pipeline over sample and returns the
// fused Output.
func (e *Engine) Update(sample RawSample) Output {
	e.ticks++
	dt := sample.DtSec
	if dt <= 0 {
		dt = 1.0 / 100
	}

	filteredGyro, restInstant := e.gyroFilter.Filter(sample.Gyro)
	compGyro := e.tempComp.Compensate(filteredGyro, sample.TempC, sample.HasTemp)

	accelNorm := vecNorm(sample.Accel)
	accelDevMS2 := (accelNorm - 1) * standardGravity
	restFlag := e.rest.Update(vecNorm(compGyro), absF(accelDevMS2), dt)

	offset, accelScale := e.autocal.Update(compGyro, accelNorm, restInstant, e.rest.RestTime())

	biasedGyro := [3]float64{compGyro[0] - offset[0], compGyro[1] - offset[1], compGyro[2] - offset[2]}

	e.fusion.Predict(biasedGyro, dt)
	scaledAccel := [3]float64{sample.Accel[0] * accelScale, sample.Accel[1] * accelScale, sample.Accel[2] * accelScale}
	e.fusion.AccelCorrect(scaledAccel, biasedGyro, restInstant, e.rest.RestTime(), dt)
	if sample.HasMag {
		e.fusion.MagCorrect(sample.Mag, dt)
	}

	orientation := e.fusion.Orientation()
	gravity := rotateByConj(orientation, [3]float64{0, 0, 1})
	linearAccel := [3]float64{
		(scaledAccel[0] - gravity[0]) * standardGravity,
		(scaledAccel[1] - gravity[1]) * standardGravity,
		(scaledAccel[2] - gravity[2]) * standardGravity,
	}

	return Output{
		Orientation:     orientation,
		GyroBias:        e.fusion.GyroBias(),
		BiasCovariance:  e.fusion.BiasCovariance(),
		LinearAccel:     linearAccel,
		RestTimeSeconds: e.rest.RestTime(),
		AccelScale:      accelScale,
		Flags: Flags{
			Rest:         restFlag,
			MagDisturbed: e.fusion.MagDisturbed,
			Initialized:  e.ticks > 0,
		},
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
