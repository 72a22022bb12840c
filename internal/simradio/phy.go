package simradio

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/aerolink/motionlink/internal/hal"
)

// Peer identifies one other simradio PHY this one exchanges frames
// with: its host and the UDP port base it listens on (the actual port
// for a given channel is PortBase+channel, matching this PHY's own
// per-channel listen socket).
type Peer struct {
	Host     string
	PortBase int
}

// PHY implements hal.RadioPHY over UDP loopback/LAN sockets in place of
// real nRF24-class radio silicon: SetChannel rebinds the listening
// socket to PortBase+channel, and Transmit sends the frame to every
// configured peer's equivalent port.
type PHY struct {
	mu       sync.Mutex
	portBase int
	peers    []Peer
	channel  int
	mode     hal.RadioMode
	conn     *net.UDPConn
	rssiBase int
}

// NewPHY creates a PHY that listens on portBase+channel and transmits
// to each peer's PortBase+channel. rssiBase is the nominal RSSI (dBm)
// reported for received frames, jittered a few dB to give the channel
// manager's windowed average something to observe.
func NewPHY(portBase int, peers []Peer, rssiBase int) *PHY {
	return &PHY{portBase: portBase, peers: append([]Peer(nil), peers...), rssiBase: rssiBase}
}

// SetAddress is a no-op: pipe addressing is a hardware filtering
// concept the UDP simulation has no equivalent for, since every frame
// on the tuned channel already reaches every peer and the codec layer
// (not the PHY) decides relevance.
func (p *PHY) SetAddress(pipe hal.RadioPipe, base, prefix []byte) error {
	return nil
}

// SetChannel rebinds the listening socket to this PHY's port for ch.
func (p *PHY) SetChannel(ch int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: p.portBase + ch})
	if err != nil {
		return fmt.Errorf("simradio: listen on channel %d: %w", ch, err)
	}
	_ = conn.SetReadBuffer(1 << 16)
	p.conn = conn
	p.channel = ch
	return nil
}

// SetMode records the PHY's TX/RX/SLEEP mode. The simulation does not
// gate Transmit/Receive on it; real firmware already enforces the
// half-duplex discipline by call sequencing.
func (p *PHY) SetMode(mode hal.RadioMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	return nil
}

// Transmit sends payload to every configured peer on the current
// channel.
func (p *PHY) Transmit(payload []byte) error {
	p.mu.Lock()
	conn, ch, peers := p.conn, p.channel, p.peers
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("simradio: transmit before channel is set")
	}
	for _, peer := range peers {
		addr := &net.UDPAddr{IP: net.ParseIP(peer.Host), Port: peer.PortBase + ch}
		if _, err := conn.WriteToUDP(payload, addr); err != nil {
			return fmt.Errorf("simradio: transmit to %s: %w", peer.Host, err)
		}
	}
	return nil
}

// Receive polls for one datagram, waiting no longer than a
// microsecond-scale deadline as spec §5 requires of a real PHY driver.
func (p *PHY) Receive() (hal.RadioRX, bool) {
	p.mu.Lock()
	conn, ch := p.conn, p.channel
	p.mu.Unlock()
	if conn == nil {
		return hal.RadioRX{}, false
	}
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Microsecond))
	buf := make([]byte, 64)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		return hal.RadioRX{}, false
	}
	payload := make([]byte, n)
	copy(payload, buf[:n])
	return hal.RadioRX{Payload: payload, RSSI: p.syntheticRSSI(), Channel: ch}, true
}

// ReadRSSI returns a synthetic clear-channel reading.
func (p *PHY) ReadRSSI() (int, error) {
	return p.syntheticRSSI(), nil
}

func (p *PHY) syntheticRSSI() int {
	return p.rssiBase + rand.Intn(7) - 3
}
