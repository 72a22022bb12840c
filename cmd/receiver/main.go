// Command receiver runs the simulated receiver firmware personality:
// the superframe master that broadcasts the sync beacon, accepts
// tracker pairing requests, receives slot transmissions, and
// republishes them as HID reports over a loopback USB transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/motionlog"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/receiverlink"
	"github.com/aerolink/motionlink/internal/simhid"
	"github.com/aerolink/motionlink/internal/simradio"
	"github.com/aerolink/motionlink/internal/storage"
	"github.com/aerolink/motionlink/internal/version"
)

var (
	configPath     = flag.String("config", linkconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	listenPort     = flag.Int("listen-port", 19000, "base UDP port this receiver listens on (discovery radio on base+channel, data radio on base+1000+channel)")
	trackerPeers   = flag.String("tracker-peers", "", "comma-separated host:port_base pairs for trackers that may connect (e.g. 127.0.0.1:19001,127.0.0.1:19002)")
	hidAddr        = flag.String("hid-addr", "127.0.0.1:9500", "loopback USB HID listen address for the host bridge")
	networkKeyFlag = flag.String("network-key", "a5a5a5a5", "8 hex digit network key for this receiver's network")
	rssiBaseFlag   = flag.Int("rssi-base", -50, "nominal simulated RSSI in dBm")
	autoPair       = flag.Bool("auto-pair", true, "open the pairing window automatically at startup")
	versionFlag    = flag.Bool("version", false, "print version information and exit")
	versionShort   = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("receiver v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	networkKey, err := parseNetworkKey(*networkKeyFlag)
	if err != nil {
		log.Fatalf("receiver: %v", err)
	}

	peers, err := parsePeers(*trackerPeers)
	if err != nil {
		log.Fatalf("receiver: %v", err)
	}

	cfg, err := linkconfig.LoadLinkConfig(*configPath)
	if err != nil {
		log.Printf("receiver: using spec defaults, failed to load %s: %v", *configPath, err)
		cfg = linkconfig.EmptyLinkConfig()
	}
	activeChannels := cfg.GetActiveChannels()
	dataChannel := activeChannels[0]

	// Two radio instances model the spec's two-pipe radio: one
	// permanently tuned to the fixed discovery channel (pipe 0), one on
	// the current data channel (pipe 1). A real nRF24-class PHY
	// distinguishes the pipes by address on a single tuned channel; this
	// channel-per-UDP-port simulation needs two sockets to get the same
	// concurrent listen behavior.
	discoveryRadio := simradio.NewPHY(*listenPort, peers, *rssiBaseFlag)
	if err := discoveryRadio.SetChannel(pairing.DiscoveryChannel); err != nil {
		log.Fatalf("receiver: tune discovery radio: %v", err)
	}
	// The data radio stays tuned to a single fixed channel for the life
	// of the process: the beacon's hop sequence (BuildBeacon) is still
	// computed and channel quality is still tracked per channel, but
	// following the hop in lockstep would need the receiver and every
	// tracker to retune in the same superframe, which this demo loop
	// does not attempt to choreograph.
	dataRadio := simradio.NewPHY(*listenPort+1000, peers, *rssiBaseFlag)
	if err := dataRadio.SetChannel(dataChannel); err != nil {
		log.Fatalf("receiver: tune data radio: %v", err)
	}

	usbDevice, err := simhid.NewDevice(*hidAddr)
	if err != nil {
		log.Fatalf("receiver: listen for host bridge on %s: %v", *hidAddr, err)
	}
	defer usbDevice.Close()

	clock := linkclock.RealClock{}
	store := storage.New(hal.NewMemoryNVS(storage.Size()))
	channels := channel.NewManager(cfg, activeChannels)
	channels.RecordRSSI(dataChannel, *rssiBaseFlag) // seed the window so Stats has data from tick zero

	link := receiverlink.NewReceiverLink(cfg, clock, usbDevice, store, channels, networkKey)
	link.SetChannel(dataChannel)
	if *autoPair {
		link.EnterPairingMode()
		log.Printf("receiver: pairing window open")
	}

	log.Printf("receiver: starting network_key=%08x hid=%s data_channel=%d peers=%v", networkKey, *hidAddr, dataChannel, peers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run(ctx, link, channels, discoveryRadio, dataRadio, usbDevice, clock)
	log.Printf("receiver: shutting down")
}

func parseNetworkKey(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid -network-key %q: %w", s, err)
	}
	return uint32(v), nil
}

func parsePeers(s string) ([]simradio.Peer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var peers []simradio.Peer
	for _, entry := range strings.Split(s, ",") {
		host, portStr, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			return nil, fmt.Errorf("invalid -tracker-peers entry %q: want host:port", entry)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port in -tracker-peers entry %q: %w", entry, err)
		}
		peers = append(peers, simradio.Peer{Host: host, PortBase: port})
	}
	return peers, nil
}

// run drives the receiver's superframe master loop: one beacon per
// tick, then a brief slot-reception window, then a host HID drain.
// Like cmd/tracker's loop this stands in for the real ISR-driven
// scheduler (spec §5).
func run(ctx context.Context, link *receiverlink.ReceiverLink, channels *channel.Manager, discoveryRadio, dataRadio hal.RadioPHY, usb *simhid.Device, clock linkclock.Clock) {
	ticker := clock.NewTicker(linkconfig.SuperframeDuration)
	defer ticker.Stop()

	const channelTickEvery = 200 // ~1 Hz at a 5ms superframe period
	superframes := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		if rx, ok := discoveryRadio.Receive(); ok {
			resp, err := link.HandleDiscoveryFrame(rx.Payload)
			if err != nil {
				motionlog.Logf("receiver: discovery frame: %v", err)
			} else if resp != nil {
				if err := discoveryRadio.Transmit(resp); err != nil {
					motionlog.Logf("receiver: transmit pairing response: %v", err)
				}
			}
		}

		beacon := link.BuildBeacon()
		if err := dataRadio.Transmit(beacon); err != nil {
			motionlog.Logf("receiver: transmit beacon: %v", err)
		}

		slotWindowEnd := clock.Now().Add(linkconfig.SuperframeDuration - linkconfig.IdleTail)
		for clock.Now().Before(slotWindowEnd) {
			rx, ok := dataRadio.Receive()
			if !ok {
				break
			}
			if err := link.HandleDataFrame(rx.Payload, rx.RSSI); err != nil {
				motionlog.Logf("receiver: data frame: %v", err)
			}
		}

		if reports := link.PopReports(4); len(reports) > 0 {
			if err := usb.Write(reports); err != nil {
				motionlog.Logf("receiver: usb write: %v", err)
			}
		}

		superframes++
		if superframes%channelTickEvery == 0 {
			channels.Tick()
		}
	}
}
