// Package hal declares the external-collaborator contracts this spec treats
// as out of scope: the IMU driver, the radio PHY driver, the USB HID
// transport, and non-volatile storage. Each is specified only by the
// interface the core consumes (spec §1); concrete drivers are not part of
// this module. Tests exercise the core against fakes implementing these
// interfaces.
package hal
