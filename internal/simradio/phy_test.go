package simradio

import (
	"testing"
	"time"
)

func TestPHY_TransmitReceiveRoundTrip(t *testing.T) {
	a := NewPHY(19100, []Peer{{Host: "127.0.0.1", PortBase: 19200}}, -50)
	b := NewPHY(19200, []Peer{{Host: "127.0.0.1", PortBase: 19100}}, -50)

	if err := a.SetChannel(5); err != nil {
		t.Fatalf("a.SetChannel: %v", err)
	}
	if err := b.SetChannel(5); err != nil {
		t.Fatalf("b.SetChannel: %v", err)
	}

	if err := a.Transmit([]byte("hello")); err != nil {
		t.Fatalf("Transmit: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if rx, ok := b.Receive(); ok {
			if string(rx.Payload) != "hello" {
				t.Fatalf("payload = %q, want hello", rx.Payload)
			}
			if rx.Channel != 5 {
				t.Fatalf("channel = %d, want 5", rx.Channel)
			}
			return
		}
	}
	t.Fatal("timed out waiting for b to receive a's transmission")
}

func TestPHY_ReadRSSIWithinJitterBand(t *testing.T) {
	p := NewPHY(19300, nil, -60)
	if err := p.SetChannel(1); err != nil {
		t.Fatalf("SetChannel: %v", err)
	}
	rssi, err := p.ReadRSSI()
	if err != nil {
		t.Fatalf("ReadRSSI: %v", err)
	}
	if rssi < -63 || rssi > -57 {
		t.Fatalf("rssi = %d, want within [-63,-57]", rssi)
	}
}
