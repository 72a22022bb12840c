// Command hostbridge runs the host companion process: it dials a
// receiver's simulated USB HID endpoint, decodes and persists the
// report stream, and serves an admin HTTP surface for roster and
// channel-quality inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hal"
	"github.com/aerolink/motionlink/internal/hostbridge"
	"github.com/aerolink/motionlink/internal/hostdb"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/simhid"
	"github.com/aerolink/motionlink/internal/version"
)

var (
	hidAddr       = flag.String("hid-addr", "127.0.0.1:9500", "receiver's loopback USB HID address to dial")
	dbPath        = flag.String("db", "hostbridge.db", "path to the SQLite history database")
	httpAddr      = flag.String("http-addr", "127.0.0.1:9600", "admin HTTP listen address")
	configPath    = flag.String("config", linkconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	snapshotEvery = flag.Duration("channel-snapshot-interval", 10*time.Second, "how often to snapshot channel quality to the history database")
	versionFlag   = flag.Bool("version", false, "print version information and exit")
	versionShort  = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("hostbridge v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	cfg, err := linkconfig.LoadLinkConfig(*configPath)
	if err != nil {
		log.Printf("hostbridge: using spec defaults, failed to load %s: %v", *configPath, err)
		cfg = linkconfig.EmptyLinkConfig()
	}

	db, err := hostdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("hostbridge: open history database: %v", err)
	}
	defer db.Close()

	host, err := simhid.Dial(*hidAddr)
	if err != nil {
		log.Fatalf("hostbridge: dial receiver at %s: %v", *hidAddr, err)
	}
	defer host.Close()

	channels := channel.NewManager(cfg, cfg.GetActiveChannels())
	roster := &rosterMirror{}
	bridge, err := hostbridge.NewBridge(cfg, db, roster, channels, *hidAddr)
	if err != nil {
		log.Fatalf("hostbridge: open ingest session: %v", err)
	}

	mux := http.NewServeMux()
	bridge.AttachAdminRoutes(mux)
	srv := &http.Server{Addr: *httpAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("hostbridge: admin http listening on %s", *httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("hostbridge: http server: %v", err)
		}
	}()

	if flag.Arg(0) == "pair" {
		if err := host.SendCommand([]byte{byte(hal.HostCmdEnterPairing)}); err != nil {
			log.Printf("hostbridge: send enter-pairing command: %v", err)
		} else {
			roster.EnterPairingMode()
		}
	}

	log.Printf("hostbridge: starting hid=%s db=%s", *hidAddr, *dbPath)
	run(ctx, bridge, roster, host)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("hostbridge: http shutdown: %v", err)
	}
	log.Printf("hostbridge: shutting down")
}

// run drains the decoded HID report stream into the history database
// and periodically snapshots channel quality, until ctx is canceled or
// the connection to the receiver is lost.
func run(ctx context.Context, bridge *hostbridge.Bridge, roster *rosterMirror, host *simhid.Host) {
	snapshotTicker := time.NewTicker(*snapshotEvery)
	defer snapshotTicker.Stop()

	reports := host.Reports()
	for {
		select {
		case <-ctx.Done():
			return
		case <-snapshotTicker.C:
			if err := bridge.SnapshotChannels(time.Now()); err != nil {
				log.Printf("hostbridge: snapshot channels: %v", err)
			}
		case report, ok := <-reports:
			if !ok {
				log.Printf("hostbridge: receiver connection closed")
				return
			}
			receivedAt := time.Now()
			if pkt, err := codec.Decode(codec.EncodeFrame(report, 0)); err == nil {
				roster.observe(&pkt)
			}
			if err := bridge.IngestReport(report, receivedAt); err != nil {
				log.Printf("hostbridge: ingest report: %v", err)
			}
		}
	}
}
