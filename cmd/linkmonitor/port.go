package main

import (
	"bufio"
	"context"
	"log"

	"go.bug.st/serial"
)

// debugPort wraps a real UART connection to a tracker's debug console,
// fanning line-delimited log output onto a channel and accepting
// operator commands on a separate channel so reads and writes never
// block each other.
type debugPort struct {
	port     serial.Port
	commands chan string
}

func newDebugPort(name string, baud int) (*debugPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	return &debugPort{port: port, commands: make(chan string)}, nil
}

func (p *debugPort) Close() error {
	return p.port.Close()
}

func (p *debugPort) SendCommand(command string) {
	p.commands <- command
}

func (p *debugPort) writeCommand(command string) error {
	_, err := p.port.Write([]byte(command + "\n"))
	return err
}

// Monitor reads debug-console lines until ctx is canceled, printing
// each to the log and writing out any queued operator command between
// reads.
func (p *debugPort) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(p.port)

	for {
		select {
		case <-ctx.Done():
			return nil
		case command := <-p.commands:
			if err := p.writeCommand(command); err != nil {
				log.Printf("linkmonitor: write command: %v", err)
			}
		default:
			if !scan.Scan() {
				return scan.Err()
			}
			log.Printf("tracker: %s", scan.Text())
		}
	}
}
