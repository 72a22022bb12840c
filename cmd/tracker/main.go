// Command tracker runs the simulated tracker firmware personality: it
// discovers and syncs to a receiver over a loopback radio transport,
// fuses synthetic IMU samples into an orientation estimate, and
// transmits motion packets in its assigned superframe slot.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/linkclock"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/motionlog"
	"github.com/aerolink/motionlink/internal/orientation"
	"github.com/aerolink/motionlink/internal/pairing"
	"github.com/aerolink/motionlink/internal/recovery"
	"github.com/aerolink/motionlink/internal/simimu"
	"github.com/aerolink/motionlink/internal/simradio"
	"github.com/aerolink/motionlink/internal/storage"
	"github.com/aerolink/motionlink/internal/trackerlink"
	"github.com/aerolink/motionlink/internal/version"
)

var (
	hwAddrFlag    = flag.String("hw-addr", "aabbccddeeff", "12 hex digit hardware address for this tracker")
	configPath    = flag.String("config", linkconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	listenPort    = flag.Int("listen-port", 19001, "base UDP port this tracker listens on (actual port is base+channel)")
	receiverHost  = flag.String("receiver-host", "127.0.0.1", "receiver's loopback radio host")
	receiverPort  = flag.Int("receiver-port", 19000, "receiver's base UDP port")
	rssiBaseFlag  = flag.Int("rssi-base", -50, "nominal simulated RSSI in dBm")
	hasMagFlag    = flag.Bool("has-mag", true, "simulate a magnetometer-equipped tracker")
	versionFlag   = flag.Bool("version", false, "print version information and exit")
	versionShort  = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("tracker v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	hwAddr, err := parseHWAddr(*hwAddrFlag)
	if err != nil {
		log.Fatalf("tracker: %v", err)
	}

	cfg, err := linkconfig.LoadLinkConfig(*configPath)
	if err != nil {
		log.Printf("tracker: using spec defaults, failed to load %s: %v", *configPath, err)
		cfg = linkconfig.EmptyLinkConfig()
	}

	activeChannels := cfg.GetActiveChannels()
	peer := simradio.Peer{Host: *receiverHost, PortBase: *receiverPort}
	radio := simradio.NewPHY(*listenPort, []simradio.Peer{peer}, *rssiBaseFlag)

	clock := linkclock.RealClock{}
	store := storage.New(hal.NewMemoryNVS(storage.Size()))
	channels := channel.NewManager(cfg, activeChannels)
	engine := orientation.NewEngine(cfg)
	link := trackerlink.NewTrackerLink(cfg, clock, radio, store, channels, engine, hwAddr)
	imu := simimu.NewGenerator(*hasMagFlag, true)
	if err := imu.Resume(); err != nil {
		log.Fatalf("tracker: imu resume: %v", err)
	}

	log.Printf("tracker: starting hw_addr=%x peer=%s:%d channels=%v", hwAddr, *receiverHost, *receiverPort, activeChannels)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run(ctx, link, engine, imu, radio, clock, activeChannels)
	log.Printf("tracker: shutting down")
}

func parseHWAddr(s string) ([6]byte, error) {
	var addr [6]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 6 {
		return addr, fmt.Errorf("invalid -hw-addr %q: want 12 hex digits", s)
	}
	copy(addr[:], b)
	return addr, nil
}

// run drives the link's pairing, sync, and data-frame lifecycle from a
// superframe-period ticker. It is the firmware core's single-threaded
// cooperative main loop (spec §5) standing in for the real ISR-driven
// scheduler: a production build feeds the same TrackerLink/Engine calls
// from radio and IMU interrupts instead of a ticker.
func run(ctx context.Context, link *trackerlink.TrackerLink, engine *orientation.Engine, imu *simimu.Generator, radio hal.RadioPHY, clock linkclock.Clock, activeChannels []int) {
	ticker := clock.NewTicker(linkconfig.SuperframeDuration)
	defer ticker.Stop()

	searchChannelIdx := 0
	ticksSinceChannelHop := 0
	lastSampleAt := clock.Now()

	if err := radio.SetChannel(pairing.DiscoveryChannel); err != nil {
		log.Printf("tracker: set discovery channel: %v", err)
	}
	advertise, err := link.BeginPairing()
	if err != nil {
		log.Printf("tracker: begin pairing: %v", err)
	} else if err := radio.Transmit(advertise); err != nil {
		log.Printf("tracker: transmit advertise: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		switch link.State() {
		case trackerlink.StatePairing:
			if rx, ok := radio.Receive(); ok {
				matched, err := link.HandlePairingResponse(rx.Payload)
				if err != nil {
					motionlog.Logf("tracker: pairing response: %v", err)
				} else if matched {
					id, _ := link.TrackerID()
					log.Printf("tracker: paired as tracker_id=%d", id)
					if err := radio.SetChannel(activeChannels[0]); err != nil {
						log.Printf("tracker: tune to data channel: %v", err)
					}
				}
			}

		case trackerlink.StateSearchSync:
			rx, ok := radio.Receive()
			if ok {
				if _, err := link.HandleBeacon(rx.Payload); err != nil {
					motionlog.Logf("tracker: handle beacon: %v", err)
				}
				ticksSinceChannelHop = 0
				continue
			}
			level := link.MissBeacon()
			ticksSinceChannelHop++
			if level >= recovery.ActionChannelSwitch && ticksSinceChannelHop >= 20 {
				searchChannelIdx = (searchChannelIdx + 1) % len(activeChannels)
				ch := activeChannels[searchChannelIdx]
				if err := radio.SetChannel(ch); err != nil {
					log.Printf("tracker: search hop to channel %d: %v", ch, err)
				}
				link.SetChannel(ch)
				ticksSinceChannelHop = 0
			}

		case trackerlink.StateRunning:
			rx, ok := radio.Receive()
			if !ok {
				level := link.MissBeacon()
				if needsRePair := link.RecordAckTimeout(); needsRePair {
					log.Printf("tracker: too many missed acks, re-pairing")
					if err := radio.SetChannel(pairing.DiscoveryChannel); err != nil {
						log.Printf("tracker: tune to discovery channel: %v", err)
					}
					if advertise, err := link.BeginPairing(); err == nil {
						if err := radio.Transmit(advertise); err != nil {
							log.Printf("tracker: transmit advertise: %v", err)
						}
					}
				} else if level >= recovery.ActionChannelSwitch {
					log.Printf("tracker: sync lost (action=%v), dropping to search", level)
				}
				continue
			}
			if _, err := link.HandleBeacon(rx.Payload); err != nil {
				motionlog.Logf("tracker: handle beacon: %v", err)
				continue
			}

			now := clock.Now()
			dt := now.Sub(lastSampleAt).Seconds()
			lastSampleAt = now
			sample, err := imu.Read()
			if err != nil {
				motionlog.Logf("tracker: imu read: %v", err)
				continue
			}
			out := engine.Update(orientation.RawSample{
				Accel:   [3]float64{sample.Accel.X, sample.Accel.Y, sample.Accel.Z},
				Gyro:    [3]float64{sample.Gyro.X, sample.Gyro.Y, sample.Gyro.Z},
				Mag:     [3]float64{sample.Mag.X, sample.Mag.Y, sample.Mag.Z},
				HasMag:  sample.HasMag,
				TempC:   sample.Temp,
				HasTemp: sample.HasTemp,
				DtSec:   dt,
			})

			id, _ := link.TrackerID()
			payload := codec.QuatAccelFullPacket{
				TrackerID: id,
				Quat:      out.Orientation,
				Accel: codec.Vec3I16{
					X: int16(out.LinearAccel[0] * 1000),
					Y: int16(out.LinearAccel[1] * 1000),
					Z: int16(out.LinearAccel[2] * 1000),
				},
			}
			frame, err := link.BuildDataFrame(payload)
			if err != nil {
				motionlog.Logf("tracker: build data frame: %v", err)
				continue
			}

			clock.Sleep(link.SlotOffset())
			if err := radio.Transmit(frame); err != nil {
				motionlog.Logf("tracker: transmit data frame: %v", err)
				link.RecordSlotOverrun()
				continue
			}
			link.RecordSlotOnTime()
			// The protocol carries no per-slot ACK frame (spec §3): the
			// tracker infers its last transmission was received once the
			// receiver's next beacon arrives on schedule.
			link.RecordAck()

			if link.CheckAutoSleep(out.RestTimeSeconds) {
				log.Printf("tracker: entering sleep after %.1fs at rest", out.RestTimeSeconds)
			}

		case trackerlink.StateSleeping:
			clock.Sleep(linkconfig.SuperframeDuration)
			// A real tracker wakes on a motion interrupt; the simulated
			// IMU never truly goes quiet, so wake immediately to keep the
			// demo link alive.
			link.Wake()
			if err := radio.SetChannel(activeChannels[searchChannelIdx]); err != nil {
				log.Printf("tracker: tune after wake: %v", err)
			}
		}
	}
}
