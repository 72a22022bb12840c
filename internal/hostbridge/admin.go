package hostbridge

import (
	"net/http"

	"tailscale.com/tsweb"

	"github.com/aerolink/motionlink/internal/httputil"
	"github.com/aerolink/motionlink/internal/version"
)

// rosterEntryView is the JSON shape of one roster row on the admin
// surface; storage.RosterEntry's tick/sequence bookkeeping is
// collapsed into fields an operator actually wants to read.
type rosterEntryView struct {
	TrackerID   int    `json:"tracker_id"`
	HWAddr      string `json:"hw_addr"`
	Confirmed   bool   `json:"confirmed"`
	DetectCount int    `json:"detect_count"`
	LastRSSI    int    `json:"last_rssi_dbm"`
	Battery     int    `json:"battery_pct"`
}

// channelView is one channel's admin-surface quality snapshot.
type channelView struct {
	Channel     int     `json:"channel"`
	TXCount     int     `json:"tx_count"`
	LossRatePct float64 `json:"loss_rate_pct"`
	AvgRSSIDbm  float64 `json:"avg_rssi_dbm"`
	Blacklisted bool    `json:"blacklisted"`
}

// AttachAdminRoutes wires the bridge's read/control surface onto mux
// under /debug/, following the teacher's tsweb.Debugger convention for
// operator-facing (not public) routes.
func (b *Bridge) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.Handle("roster", "Current tracker roster", http.HandlerFunc(b.handleRoster))
	debug.Handle("channels", "Per-channel quality snapshot", http.HandlerFunc(b.handleChannels))
	debug.HandleSilentFunc("pair/enter", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		b.link.EnterPairingMode()
		httputil.WriteJSONOK(w, map[string]bool{"pairing_active": true})
	})
	debug.HandleSilentFunc("pair/exit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		b.link.ExitPairingMode()
		httputil.WriteJSONOK(w, map[string]bool{"pairing_active": false})
	})
	debug.Handle("version", "Build version info", http.HandlerFunc(handleVersion))
}

func (b *Bridge) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster := b.link.Roster()
	views := make([]rosterEntryView, 0, len(roster))
	for id, e := range roster {
		if !e.Valid {
			continue
		}
		views = append(views, rosterEntryView{
			TrackerID:   id,
			HWAddr:      hwAddrString(e.HWAddr),
			Confirmed:   e.Confirmed(uint16(b.cfg.GetDetectCountThreshold())),
			DetectCount: int(e.DetectCount),
			LastRSSI:    int(e.LastRSSI),
			Battery:     int(e.Battery),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pairing_active": b.link.PairingActive(),
		"roster":         views,
	})
}

func (b *Bridge) handleChannels(w http.ResponseWriter, r *http.Request) {
	active := b.channels.ActiveChannels()
	views := make([]channelView, 0, len(active))
	for _, ch := range active {
		s := b.channels.Stats(ch)
		views = append(views, channelView{
			Channel:     ch,
			TXCount:     s.TXCount,
			LossRatePct: s.LossRate,
			AvgRSSIDbm:  s.AvgRSSI,
			Blacklisted: s.Blacklisted,
		})
	}
	httputil.WriteJSONOK(w, views)
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
