package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aerolink/motionlink/internal/hostdb"
)

// dashboardServer serves live channel-quality and tracker-motion
// charts rendered straight from the history database on each request,
// following the teacher's debug-endpoint convention of no auth and no
// caching for an operator-facing diagnostic surface.
type dashboardServer struct {
	db       *hostdb.DB
	channels []int
}

func (s *dashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html><html><head><title>motionlink diagnostics</title></head><body style="background:#1b1b1b">`+
		`<iframe src="/charts/channels" style="width:100%;height:420px;border:0"></iframe>`+
		`<iframe src="/charts/tracker?tracker_id=0" style="width:100%;height:420px;border:0"></iframe>`+
		`</body></html>`)
}

func (s *dashboardServer) handleChannelsChart(w http.ResponseWriter, r *http.Request) {
	limit := 200
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Channel Quality", Subtitle: fmt.Sprintf("channels=%v", s.channels)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var xAxis []string
	for _, ch := range s.channels {
		snaps, err := s.db.RecentChannelSnapshots(ch, limit)
		if err != nil || len(snaps) == 0 {
			continue
		}
		if xAxis == nil {
			for i := range snaps {
				xAxis = append(xAxis, strconv.Itoa(i))
			}
		}
		data := make([]opts.LineData, len(snaps))
		for i := range snaps {
			s := snaps[len(snaps)-1-i]
			data[i] = opts.LineData{Value: s.LossRatePct}
		}
		line.AddSeries(fmt.Sprintf("ch%d loss%%", ch), data)
	}
	line.SetXAxis(xAxis)

	page := components.NewPage()
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *dashboardServer) handleTrackerChart(w http.ResponseWriter, r *http.Request) {
	trackerID := 0
	if v := r.URL.Query().Get("tracker_id"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			trackerID = parsed
		}
	}

	reports, err := s.db.RecentReports(byte(trackerID), 200)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Tracker %d Orientation", trackerID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var xAxis []string
	axisNames := [4]string{"w", "x", "y", "z"}
	series := [4][]opts.LineData{}
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		if !r.HasQuat {
			continue
		}
		xAxis = append(xAxis, strconv.Itoa(len(xAxis)))
		for axis := 0; axis < 4; axis++ {
			series[axis] = append(series[axis], opts.LineData{Value: r.Quat[axis]})
		}
	}
	line.SetXAxis(xAxis)
	for axis := range series {
		if len(series[axis]) == 0 {
			continue
		}
		line.AddSeries(axisNames[axis], series[axis])
	}

	page := components.NewPage()
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
