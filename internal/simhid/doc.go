// Package simhid stands in for the out-of-scope USB HID endpoint
// (internal/hal.USBHID) so the simulated receiver firmware (cmd/receiver)
// and the host bridge process (cmd/hostbridge) can run as separate OS
// processes connected over a TCP loopback socket instead of sharing an
// in-process fake. The device (receiver) side listens and accepts one
// host connection; the host (bridge) side dials it.
package simhid
