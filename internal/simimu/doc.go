// Package simimu stands in for the out-of-scope register-level IMU
// driver (internal/hal.IMU) with a synthetic motion generator, so the
// simulated tracker firmware (cmd/tracker) has a real sample source to
// drive internal/orientation's fusion pipeline without real sensor
// hardware attached.
package simimu
