package hal

// Vec3 is a 3-axis sensor reading. Units are specified per call site
// (rad/s for gyro, g for accel, µT for mag).
type Vec3 struct {
	X, Y, Z float64
}

// IMUResult is a single inertial sample. Mag and Temp are optional: Mag is
// the zero Vec3 and HasMag false when the device has no magnetometer wired
// up or it has not produced a fresh sample; Temp is only meaningful when
// HasTemp is true.
type IMUResult struct {
	Gyro    Vec3 // rad/s
	Accel   Vec3 // g
	Mag     Vec3 // µT, only valid when HasMag
	HasMag  bool
	Temp    float64 // °C, only valid when HasTemp
	HasTemp bool
}

// IMU is the register-level inertial sensor driver contract (spec §1,
// out of scope: "IMU register-level drivers").
type IMU interface {
	// Read returns the latest sample. Implementations are expected to be
	// called only after DataReady() is true or the ISR-set flag fired.
	Read() (IMUResult, error)

	// Suspend powers the sensor down between active windows.
	Suspend() error

	// Resume powers the sensor back up.
	Resume() error

	// DataReady reports whether a fresh sample is waiting. The firmware
	// core busy-waits on this, bounded by a microsecond-scale timeout
	// (spec §5).
	DataReady() bool
}
