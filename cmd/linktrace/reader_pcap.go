//go:build pcap
// +build pcap

package main

import (
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// readPCAPFile replays every UDP payload on udpPort found in pcapFile
// through handleFrame, in capture order. Only available when built
// with -tags=pcap (libpcap must be installed on the build host).
func readPCAPFile(pcapFile string, udpPort int, handleFrame func(payload []byte, channel int)) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("linktrace: open %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp portrange %d-%d", udpPort, udpPort+7)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("linktrace: set BPF filter %q: %w", filter, err)
	}
	log.Printf("linktrace: BPF filter %q", filter)

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	count := 0
	for packet := range packetSource.Packets() {
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			continue
		}
		channel := int(udp.DstPort) - udpPort
		handleFrame(udp.Payload, channel)
		count++
	}
	log.Printf("linktrace: replayed %d frames from %s", count, pcapFile)
	return nil
}
