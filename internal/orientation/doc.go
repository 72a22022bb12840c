// Package orientation implements the Orientation Engine: the
// single-threaded sensor pipeline run once per IMU sample (raw read,
// gyro noise filter, temperature compensation, auto-calibration, VQF-
// class fusion, rest detection, linear acceleration extraction) (spec
// §4.2).
package orientation

// standardGravity converts between g and m/s^2, used wherever the spec
// mixes the two units (accelerometer samples arrive in g; the rest
// detector's accel threshold is specified in m/s^2).
const standardGravity = 9.80665
