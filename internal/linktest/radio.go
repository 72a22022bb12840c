package linktest

import (
	"errors"

	"github.com/aerolink/motionlink/internal/hal"
)

// FakeRadio is a scripted hal.RadioPHY: transmitted payloads land in
// Transmitted for inspection, and received frames are queued ahead of
// time via Enqueue. It does not model an actual shared medium between
// two FakeRadios; tests wire transmit/receive by hand (pop one side's
// Transmitted, Enqueue it on the other), which keeps pairing/beacon
// tests explicit about what crosses the air in which direction.
type FakeRadio struct {
	Mode    hal.RadioMode
	Channel int

	DiscoveryBase, DiscoveryPrefix []byte
	DataBase, DataPrefix          []byte

	Transmitted [][]byte
	inbox       []hal.RadioRX

	RSSI    int
	RSSIErr error
}

// NewFakeRadio creates a FakeRadio in RX mode on channel 0.
func NewFakeRadio() *FakeRadio {
	return &FakeRadio{Mode: hal.RadioModeRX}
}

func (r *FakeRadio) SetAddress(pipe hal.RadioPipe, base, prefix []byte) error {
	switch pipe {
	case hal.PipeDiscovery:
		r.DiscoveryBase, r.DiscoveryPrefix = append([]byte(nil), base...), append([]byte(nil), prefix...)
	case hal.PipeData:
		r.DataBase, r.DataPrefix = append([]byte(nil), base...), append([]byte(nil), prefix...)
	default:
		return errors.New("linktest: unknown radio pipe")
	}
	return nil
}

func (r *FakeRadio) SetChannel(channel int) error {
	r.Channel = channel
	return nil
}

func (r *FakeRadio) SetMode(mode hal.RadioMode) error {
	r.Mode = mode
	return nil
}

func (r *FakeRadio) Transmit(payload []byte) error {
	cp := append([]byte(nil), payload...)
	r.Transmitted = append(r.Transmitted, cp)
	return nil
}

func (r *FakeRadio) Receive() (hal.RadioRX, bool) {
	if len(r.inbox) == 0 {
		return hal.RadioRX{}, false
	}
	rx := r.inbox[0]
	r.inbox = r.inbox[1:]
	return rx, true
}

func (r *FakeRadio) ReadRSSI() (int, error) {
	return r.RSSI, r.RSSIErr
}

// Enqueue schedules rx to be returned by a future Receive call.
func (r *FakeRadio) Enqueue(rx hal.RadioRX) {
	r.inbox = append(r.inbox, rx)
}

// PopTransmitted removes and returns the oldest transmitted payload.
func (r *FakeRadio) PopTransmitted() ([]byte, bool) {
	if len(r.Transmitted) == 0 {
		return nil, false
	}
	out := r.Transmitted[0]
	r.Transmitted = r.Transmitted[1:]
	return out, true
}
