package simhid

import (
	"testing"
	"time"
)

func TestSimHID_ReportRoundTrip(t *testing.T) {
	dev, err := NewDevice("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	defer dev.Close()

	host, err := Dial(dev.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer host.Close()

	time.Sleep(20 * time.Millisecond) // let the accept loop register the connection

	report := [16]byte{1, 2, 3}
	if err := dev.Write([][16]byte{report}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case got := <-host.Reports():
		if got != report {
			t.Fatalf("got %v, want %v", got, report)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for report")
	}
}

func TestSimHID_HostCommandRoundTrip(t *testing.T) {
	dev, err := NewDevice("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	defer dev.Close()

	received := make(chan []byte, 1)
	dev.OnRX(func(b []byte) { received <- b })

	host, err := Dial(dev.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer host.Close()

	if err := host.SendCommand([]byte{0x11}); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	select {
	case got := <-received:
		if len(got) != 1 || got[0] != 0x11 {
			t.Fatalf("got %v, want [0x11]", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
	}
}

func TestSimHID_WriteWithNoHostConnectedDropsSilently(t *testing.T) {
	dev, err := NewDevice("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	defer dev.Close()

	if err := dev.Write([][16]byte{{1}}); err != nil {
		t.Fatalf("expected no error writing with no host connected, got %v", err)
	}
}
