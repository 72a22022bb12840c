// Package trackerlink implements the Tracker Link component: the
// transmitter-side state machine that owns discovery, superframe
// synchronization, per-frame TX discipline, and sleep entry/exit
// (spec §4.5).
package trackerlink
