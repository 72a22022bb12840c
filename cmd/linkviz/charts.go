package main

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aerolink/motionlink/internal/fsutil"
	"github.com/aerolink/motionlink/internal/hostdb"
)

// renderChannelQualityChart draws loss-rate and average-RSSI lines for
// every channel in channels, one PNG per metric, into outDir.
func renderChannelQualityChart(db *hostdb.DB, channels []int, outDir string, fsys fsutil.FileSystem, limit int) ([]string, error) {
	if err := fsys.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("linkviz: create output dir: %w", err)
	}

	lossPlot := plot.New()
	lossPlot.Title.Text = "Channel Loss Rate"
	lossPlot.X.Label.Text = "Sample (most recent last)"
	lossPlot.Y.Label.Text = "Loss rate (%)"

	rssiPlot := plot.New()
	rssiPlot.Title.Text = "Channel Average RSSI"
	rssiPlot.X.Label.Text = "Sample (most recent last)"
	rssiPlot.Y.Label.Text = "RSSI (dBm)"

	sorted := append([]int(nil), channels...)
	sort.Ints(sorted)

	for _, ch := range sorted {
		snaps, err := db.RecentChannelSnapshots(ch, limit)
		if err != nil {
			return nil, fmt.Errorf("linkviz: channel %d snapshots: %w", ch, err)
		}
		if len(snaps) == 0 {
			continue
		}

		lossPts := make(plotter.XYs, len(snaps))
		rssiPts := make(plotter.XYs, len(snaps))
		for i := range snaps {
			// snaps is newest-first; reverse the index so the x-axis runs
			// oldest to newest, matching how an operator reads a trend line.
			s := snaps[len(snaps)-1-i]
			lossPts[i] = plotter.XY{X: float64(i), Y: s.LossRatePct}
			rssiPts[i] = plotter.XY{X: float64(i), Y: s.AvgRSSIDbm}
		}

		label := fmt.Sprintf("ch%d", ch)

		lossLine, err := plotter.NewLine(lossPts)
		if err != nil {
			return nil, err
		}
		lossLine.Width = vg.Points(1.5)
		lossPlot.Add(lossLine)
		lossPlot.Legend.Add(label, lossLine)

		rssiLine, err := plotter.NewLine(rssiPts)
		if err != nil {
			return nil, err
		}
		rssiLine.Width = vg.Points(1.5)
		rssiPlot.Add(rssiLine)
		rssiPlot.Legend.Add(label, rssiLine)
	}

	lossPlot.Legend.Top = true
	rssiPlot.Legend.Top = true

	lossFile := filepath.Join(outDir, "channel_loss_rate.png")
	if err := lossPlot.Save(12*vg.Inch, 6*vg.Inch, lossFile); err != nil {
		return nil, fmt.Errorf("linkviz: save loss chart: %w", err)
	}

	rssiFile := filepath.Join(outDir, "channel_avg_rssi.png")
	if err := rssiPlot.Save(12*vg.Inch, 6*vg.Inch, rssiFile); err != nil {
		return nil, fmt.Errorf("linkviz: save rssi chart: %w", err)
	}

	return []string{lossFile, rssiFile}, nil
}

// renderTrackerMotionChart draws the tracker's quaternion components and
// acceleration magnitude over its most recent reports into one PNG each.
func renderTrackerMotionChart(db *hostdb.DB, trackerID byte, outDir string, fsys fsutil.FileSystem, limit int) ([]string, error) {
	if err := fsys.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("linkviz: create output dir: %w", err)
	}

	reports, err := db.RecentReports(trackerID, limit)
	if err != nil {
		return nil, fmt.Errorf("linkviz: tracker %d reports: %w", trackerID, err)
	}
	if len(reports) == 0 {
		return nil, nil
	}

	quatPlot := plot.New()
	quatPlot.Title.Text = fmt.Sprintf("Tracker %d Orientation", trackerID)
	quatPlot.X.Label.Text = "Sample (most recent last)"
	quatPlot.Y.Label.Text = "Quaternion component"

	accelPlot := plot.New()
	accelPlot.Title.Text = fmt.Sprintf("Tracker %d Linear Acceleration Magnitude", trackerID)
	accelPlot.X.Label.Text = "Sample (most recent last)"
	accelPlot.Y.Label.Text = "Acceleration (m/s^2)"

	axisLabels := [4]string{"w", "x", "y", "z"}
	quatSeries := [4]plotter.XYs{}
	for i := range quatSeries {
		quatSeries[i] = make(plotter.XYs, 0, len(reports))
	}
	accelPts := make(plotter.XYs, 0, len(reports))

	idx := 0
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		if r.HasQuat {
			for axis := 0; axis < 4; axis++ {
				quatSeries[axis] = append(quatSeries[axis], plotter.XY{X: float64(idx), Y: r.Quat[axis]})
			}
		}
		if r.HasAccel {
			mag := r.Accel[0]*r.Accel[0] + r.Accel[1]*r.Accel[1] + r.Accel[2]*r.Accel[2]
			accelPts = append(accelPts, plotter.XY{X: float64(idx), Y: math.Sqrt(mag)})
		}
		idx++
	}

	for axis, pts := range quatSeries {
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Width = vg.Points(1.2)
		quatPlot.Add(line)
		quatPlot.Legend.Add(axisLabels[axis], line)
	}
	quatPlot.Legend.Top = true

	var files []string
	quatFile := filepath.Join(outDir, fmt.Sprintf("tracker_%d_orientation.png", trackerID))
	if err := quatPlot.Save(12*vg.Inch, 6*vg.Inch, quatFile); err != nil {
		return nil, fmt.Errorf("linkviz: save orientation chart: %w", err)
	}
	files = append(files, quatFile)

	if len(accelPts) > 0 {
		line, err := plotter.NewLine(accelPts)
		if err != nil {
			return nil, err
		}
		line.Width = vg.Points(1.5)
		accelPlot.Add(line)

		accelFile := filepath.Join(outDir, fmt.Sprintf("tracker_%d_accel.png", trackerID))
		if err := accelPlot.Save(12*vg.Inch, 6*vg.Inch, accelFile); err != nil {
			return nil, fmt.Errorf("linkviz: save acceleration chart: %w", err)
		}
		files = append(files, accelFile)
	}

	return files, nil
}
