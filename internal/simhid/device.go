package simhid

import (
	"io"
	"net"
	"sync"

	"github.com/aerolink/motionlink/internal/motionlog"
)

// Device is the receiver-side (device) endpoint of the simulated USB
// HID transport: it implements hal.USBHID, accepting exactly one host
// connection at a time, matching a single physical USB cable.
type Device struct {
	listener net.Listener

	mu      sync.Mutex
	conn    net.Conn
	onRX    func([]byte)
	closeCh chan struct{}
}

// NewDevice starts listening on addr (e.g. "127.0.0.1:9500") and
// accepts host connections in the background.
func NewDevice(addr string) (*Device, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	d := &Device{listener: l, closeCh: make(chan struct{})}
	go d.acceptLoop()
	return d, nil
}

// Addr returns the device's listen address, useful when addr was given
// as "host:0" to pick an ephemeral port.
func (d *Device) Addr() string {
	return d.listener.Addr().String()
}

func (d *Device) acceptLoop() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}
		d.mu.Lock()
		if d.conn != nil {
			d.conn.Close()
		}
		d.conn = conn
		d.mu.Unlock()
		motionlog.Logf("simhid: host connected from %s", conn.RemoteAddr())
		go d.readLoop(conn)
	}
}

func (d *Device) readLoop(conn net.Conn) {
	defer conn.Close()
	lenBuf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		cmd := make([]byte, lenBuf[0])
		if len(cmd) > 0 {
			if _, err := io.ReadFull(conn, cmd); err != nil {
				return
			}
		}
		d.mu.Lock()
		cb := d.onRX
		d.mu.Unlock()
		if cb != nil {
			cb(cmd)
		}
	}
}

// Write submits reports to the currently connected host, if any. With
// no host attached the reports are dropped without error, matching a
// real HID endpoint with nothing enumerated on the other end of the
// cable.
func (d *Device) Write(reports [][16]byte) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return nil
	}
	for _, r := range reports {
		if _, err := conn.Write(r[:]); err != nil {
			return err
		}
	}
	return nil
}

// OnRX registers the callback invoked with host->device command bytes.
func (d *Device) OnRX(f func([]byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRX = f
}

// Close stops accepting new host connections and drops the current one.
func (d *Device) Close() error {
	close(d.closeCh)
	d.mu.Lock()
	if d.conn != nil {
		d.conn.Close()
	}
	d.mu.Unlock()
	return d.listener.Close()
}
