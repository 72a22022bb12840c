// Command linkmonitor tails a tracker's UART debug-log console over a
// real serial port, the one place this project touches physical
// hardware rather than the simulated 2.4 GHz radio link.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aerolink/motionlink/internal/version"
)

var (
	portName     = flag.String("port", "", "serial port device to monitor (required), e.g. /dev/ttyACM0")
	baudRate     = flag.Int("baud", 115200, "serial port baud rate")
	versionFlag  = flag.Bool("version", false, "print version information and exit")
	versionShort = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("linkmonitor v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}
	if *portName == "" {
		log.Fatalf("linkmonitor: -port is required")
	}

	port, err := newDebugPort(*portName, *baudRate)
	if err != nil {
		log.Fatalf("linkmonitor: open %s: %v", *portName, err)
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go readCommands(os.Stdin, port)

	log.Printf("linkmonitor: monitoring %s at %d baud", *portName, *baudRate)
	if err := port.Monitor(ctx); err != nil {
		log.Fatalf("linkmonitor: %v", err)
	}
	log.Printf("linkmonitor: closed")
}

// readCommands forwards lines typed on stdin to the tracker as debug
// console commands, so an operator can poke the firmware interactively
// while tailing its log output.
func readCommands(in *os.File, port *debugPort) {
	scan := bufio.NewScanner(in)
	for scan.Scan() {
		port.SendCommand(scan.Text())
	}
}
