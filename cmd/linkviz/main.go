// Command linkviz is the diagnostic charting CLI over a host bridge's
// history database: it can render channel-quality and tracker-motion
// PNG charts for a batch report, or serve a live HTML dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/aerolink/motionlink/internal/fsutil"
	"github.com/aerolink/motionlink/internal/hostdb"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/version"
)

var (
	dbPath       = flag.String("db", "hostbridge.db", "path to the host bridge's SQLite history database")
	configPath   = flag.String("config", linkconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	outDir       = flag.String("out", "linkviz_out", "output directory for PNG charts (charts subcommand)")
	trackerID    = flag.Int("tracker-id", 0, "tracker_id to chart motion for")
	limit        = flag.Int("limit", 200, "number of most recent samples to chart")
	httpAddr     = flag.String("http-addr", "127.0.0.1:9700", "listen address for the live dashboard (serve subcommand)")
	versionFlag  = flag.Bool("version", false, "print version information and exit")
	versionShort = flag.Bool("v", false, "print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("linkviz v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	cfg, err := linkconfig.LoadLinkConfig(*configPath)
	if err != nil {
		log.Printf("linkviz: using spec defaults, failed to load %s: %v", *configPath, err)
		cfg = linkconfig.EmptyLinkConfig()
	}

	db, err := hostdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("linkviz: open %s: %v", *dbPath, err)
	}
	defer db.Close()

	switch flag.Arg(0) {
	case "serve":
		runServe(db, cfg.GetActiveChannels())
	case "charts", "":
		runCharts(db, cfg.GetActiveChannels())
	default:
		log.Fatalf("linkviz: unknown subcommand %q (want 'charts' or 'serve')", flag.Arg(0))
	}
}

func runCharts(db *hostdb.DB, channels []int) {
	fsys := fsutil.OSFileSystem{}

	channelFiles, err := renderChannelQualityChart(db, channels, *outDir, fsys, *limit)
	if err != nil {
		log.Fatalf("linkviz: %v", err)
	}
	for _, f := range channelFiles {
		log.Printf("linkviz: wrote %s", f)
	}

	trackerFiles, err := renderTrackerMotionChart(db, byte(*trackerID), *outDir, fsys, *limit)
	if err != nil {
		log.Fatalf("linkviz: %v", err)
	}
	if len(trackerFiles) == 0 {
		log.Printf("linkviz: no reports found for tracker_id=%d", *trackerID)
	}
	for _, f := range trackerFiles {
		log.Printf("linkviz: wrote %s", f)
	}
}

func runServe(db *hostdb.DB, channels []int) {
	s := &dashboardServer{db: db, channels: channels}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/charts/channels", s.handleChannelsChart)
	mux.HandleFunc("/charts/tracker", s.handleTrackerChart)

	log.Printf("linkviz: serving dashboard on %s", *httpAddr)
	if err := http.ListenAndServe(*httpAddr, mux); err != nil {
		log.Fatalf("linkviz: http server: %v", err)
	}
}
