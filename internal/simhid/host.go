package simhid

import (
	"fmt"
	"io"
	"net"
)

// Host is the host-bridge-side (client) endpoint of the simulated USB
// HID transport: it dials a Device's listen address and exposes the
// incoming 16-byte report stream as a channel.
type Host struct {
	conn    net.Conn
	reports chan [16]byte
}

// Dial connects to a Device at addr and starts streaming reports.
func Dial(addr string) (*Host, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	h := &Host{conn: conn, reports: make(chan [16]byte, 64)}
	go h.readLoop()
	return h, nil
}

func (h *Host) readLoop() {
	defer close(h.reports)
	var buf [16]byte
	for {
		if _, err := io.ReadFull(h.conn, buf[:]); err != nil {
			return
		}
		h.reports <- buf
	}
}

// Reports returns the channel of incoming HID reports. It is closed
// when the connection to the device is lost.
func (h *Host) Reports() <-chan [16]byte {
	return h.reports
}

// SendCommand sends one host->device command (spec §6: single-byte
// codes with optional payload).
func (h *Host) SendCommand(b []byte) error {
	if len(b) > 0xFF {
		return fmt.Errorf("simhid: command too long: %d bytes", len(b))
	}
	frame := append([]byte{byte(len(b))}, b...)
	_, err := h.conn.Write(frame)
	return err
}

// Close disconnects from the device.
func (h *Host) Close() error {
	return h.conn.Close()
}
