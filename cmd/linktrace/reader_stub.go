//go:build !pcap
// +build !pcap

package main

import "fmt"

// readPCAPFile is a stub used when the binary is built without libpcap
// support (the default). Rebuild with -tags=pcap to enable it.
func readPCAPFile(pcapFile string, udpPort int, handleFrame func(payload []byte, channel int)) error {
	return fmt.Errorf("linktrace: PCAP support not enabled: rebuild with -tags=pcap")
}
