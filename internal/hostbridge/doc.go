// Package hostbridge is the host-side process that owns a receiver's
// USB HID endpoint: it decodes the HID report stream into tracker
// packets, persists them to internal/hostdb for historical querying,
// and exposes an admin HTTP surface (roster, channel quality, pairing
// control) over internal/motionlog's conventions.
package hostbridge
