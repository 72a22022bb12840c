// Command linktrace replays a captured PCAP file of the simulated
// radio link's UDP traffic, decoding and printing every frame it
// recognizes: data frames, sync beacons, and discovery-channel pairing
// frames.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/security"
	"github.com/aerolink/motionlink/internal/version"
)

var (
	pcapFile     = flag.String("pcap", "", "path to the PCAP file to replay (required)")
	udpPortBase  = flag.Int("udp-port-base", 19000, "base UDP port the capture's radio traffic used (one port per channel)")
	versionFlag  = flag.Bool("version", false, "print version information and exit")
	versionShort = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("linktrace v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}
	if *pcapFile == "" {
		log.Fatalf("linktrace: -pcap is required")
	}
	if err := security.ValidateExportPath(*pcapFile); err != nil {
		log.Fatalf("linktrace: %v", err)
	}

	if err := readPCAPFile(*pcapFile, *udpPortBase, handleFrame); err != nil {
		log.Fatalf("linktrace: %v", err)
	}
}

// handleFrame tries each known on-air frame shape in turn by length and
// prints a one-line decode summary, or "unrecognized" if none match.
func handleFrame(payload []byte, channel int) {
	switch len(payload) {
	case codec.FrameSize:
		if pkt, err := codec.Decode(payload); err == nil {
			printDataFrame(channel, pkt)
			return
		}
	case codec.BeaconSize:
		if b, err := codec.DecodeBeacon(payload); err == nil {
			printBeacon(channel, b)
			return
		}
	case codec.PairingFrameSize:
		if f, err := codec.DecodePairingFrame(payload); err == nil {
			printPairingFrame(channel, f)
			return
		}
	}
	fmt.Printf("ch=%d unrecognized frame len=%d\n", channel, len(payload))
}

func printDataFrame(channel int, pkt codec.Packet) {
	switch {
	case pkt.Info != nil:
		fmt.Printf("ch=%d seq=%d INFO tracker=%d battery=%d%% rssi=%ddBm\n",
			channel, pkt.Sequence, pkt.Info.TrackerID, pkt.Info.BatteryPct, pkt.Info.RSSI)
	case pkt.QuatAccel != nil:
		fmt.Printf("ch=%d seq=%d QUAT_ACCEL_FULL tracker=%d\n", channel, pkt.Sequence, pkt.QuatAccel.TrackerID)
	case pkt.QuatAccelC != nil:
		fmt.Printf("ch=%d seq=%d QUAT_ACCEL_COMPACT tracker=%d battery=%d%% rssi=%ddBm\n",
			channel, pkt.Sequence, pkt.QuatAccelC.TrackerID, pkt.QuatAccelC.BatteryPct, pkt.QuatAccelC.RSSI)
	case pkt.Status != nil:
		fmt.Printf("ch=%d seq=%d STATUS tracker=%d rssi=%ddBm\n", channel, pkt.Sequence, pkt.Status.TrackerID, pkt.Status.RSSI)
	case pkt.QuatMag != nil:
		fmt.Printf("ch=%d seq=%d QUAT_MAG tracker=%d\n", channel, pkt.Sequence, pkt.QuatMag.TrackerID)
	case pkt.Registration != nil:
		fmt.Printf("ch=%d seq=%d REGISTRATION tracker=%d hw_addr=%x\n",
			channel, pkt.Sequence, pkt.Registration.TrackerID, pkt.Registration.HWAddr)
	}
}

func printBeacon(channel int, b codec.Beacon) {
	fmt.Printf("ch=%d BEACON frame=%d ts=%dus key=%08x hop_seq=%x roster_mask=%x\n",
		channel, b.FrameNumber, b.Timestamp, b.NetworkKey, b.HopSeq, b.RosterMask)
}

func printPairingFrame(channel int, f codec.PairingFrame) {
	stage := "?"
	switch f.Stage {
	case codec.PairingStageAdvertise:
		stage = "advertise"
	case codec.PairingStageClaim:
		stage = "claim"
	case codec.PairingStageConfirm:
		stage = "confirm"
	}
	discoveryNote := ""
	if channel == pairing.DiscoveryChannel {
		discoveryNote = " (discovery channel)"
	}
	fmt.Printf("ch=%d%s PAIRING stage=%s addr=%x\n", channel, discoveryNote, stage, f.Addr)
}
