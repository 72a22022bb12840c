// Package pairing implements the Pairing Service: the discovery-channel
// handshake that allocates a tracker_id, negotiates the network key,
// and persists the roster (spec §4.7).
package pairing

import "github.com/aerolink/motionlink/internal/hal"

// DiscoveryBaseAddr and DiscoveryPrefix are the fixed discovery-pipe
// radio addresses every receiver and unpaired tracker listens/talks on
// (spec §4.7).
var (
	DiscoveryBaseAddr = [4]byte{0x62, 0x39, 0x8A, 0xF2}
	DiscoveryPrefix   = [8]byte{0xFE, 0xFF, 0x29, 0x27, 0x09, 0x02, 0xB2, 0xD6}
)

// DiscoveryChannel is the fixed channel number the discovery pipe
// operates on, regardless of the data pipe's current hop position
// (spec §4.7: "pairing channel = 2").
const DiscoveryChannel = 2

// ConfigureDiscoveryPipe points a radio's discovery pipe at the fixed
// pairing address.
func ConfigureDiscoveryPipe(radio hal.RadioPHY) error {
	return radio.SetAddress(hal.PipeDiscovery, DiscoveryBaseAddr[:], DiscoveryPrefix[:])
}
