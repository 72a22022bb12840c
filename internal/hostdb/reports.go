package hostdb

import "database/sql"

// TrackerReportRow is one decoded tracker packet, flattened for
// storage: quaternion and acceleration are only present for packet
// types that carry them (spec §3 types 1/2/4), battery/RSSI only for
// types that report them.
type TrackerReportRow struct {
	TrackerID      byte
	ReceivedUnixNs int64
	PacketType     byte
	Sequence       byte

	Quat    [4]float64 // w, x, y, z
	HasQuat bool

	Accel    [3]float64 // m/s^2
	HasAccel bool

	BatteryPct int
	HasBattery bool

	RSSIDbm   int
	HasRSSI   bool
}

func nullFloat(v float64, ok bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func nullInt64(v int64, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: ok}
}

// InsertTrackerReport persists one decoded report under sessionID.
func (db *DB) InsertTrackerReport(sessionID string, r TrackerReportRow) error {
	_, err := db.Exec(`
		INSERT INTO tracker_reports (
			session_id, tracker_id, received_unix_ns, packet_type, sequence,
			quat_w, quat_x, quat_y, quat_z,
			accel_x_mps2, accel_y_mps2, accel_z_mps2,
			battery_pct, rssi_dbm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, r.TrackerID, r.ReceivedUnixNs, r.PacketType, r.Sequence,
		nullFloat(r.Quat[0], r.HasQuat), nullFloat(r.Quat[1], r.HasQuat), nullFloat(r.Quat[2], r.HasQuat), nullFloat(r.Quat[3], r.HasQuat),
		nullFloat(r.Accel[0], r.HasAccel), nullFloat(r.Accel[1], r.HasAccel), nullFloat(r.Accel[2], r.HasAccel),
		nullInt64(int64(r.BatteryPct), r.HasBattery), nullInt64(int64(r.RSSIDbm), r.HasRSSI),
	)
	return err
}

// RecentReports returns the most recent limit reports for trackerID,
// newest first.
func (db *DB) RecentReports(trackerID byte, limit int) ([]TrackerReportRow, error) {
	rows, err := db.Query(`
		SELECT tracker_id, received_unix_ns, packet_type, sequence,
			quat_w, quat_x, quat_y, quat_z,
			accel_x_mps2, accel_y_mps2, accel_z_mps2,
			battery_pct, rssi_dbm
		FROM tracker_reports
		WHERE tracker_id = ?
		ORDER BY received_unix_ns DESC
		LIMIT ?`, trackerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackerReportRow
	for rows.Next() {
		var r TrackerReportRow
		var qw, qx, qy, qz, ax, ay, az sql.NullFloat64
		var battery, rssi sql.NullInt64
		if err := rows.Scan(&r.TrackerID, &r.ReceivedUnixNs, &r.PacketType, &r.Sequence,
			&qw, &qx, &qy, &qz, &ax, &ay, &az, &battery, &rssi); err != nil {
			return nil, err
		}
		if qw.Valid {
			r.Quat = [4]float64{qw.Float64, qx.Float64, qy.Float64, qz.Float64}
			r.HasQuat = true
		}
		if ax.Valid {
			r.Accel = [3]float64{ax.Float64, ay.Float64, az.Float64}
			r.HasAccel = true
		}
		if battery.Valid {
			r.BatteryPct = int(battery.Int64)
			r.HasBattery = true
		}
		if rssi.Valid {
			r.RSSIDbm = int(rssi.Int64)
			r.HasRSSI = true
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
