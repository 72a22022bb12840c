package hostdb

// ChannelSnapshotRow is one channel.Manager.Stats sample, timestamped
// for historical charting.
type ChannelSnapshotRow struct {
	RecordedUnixNs int64
	Channel        int
	TXCount        int
	LossRatePct    float64
	AvgRSSIDbm     float64
	Blacklisted    bool
}

// InsertChannelSnapshot persists one channel-quality sample under
// sessionID.
func (db *DB) InsertChannelSnapshot(sessionID string, s ChannelSnapshotRow) error {
	_, err := db.Exec(`
		INSERT INTO channel_snapshots (
			session_id, recorded_unix_ns, channel, tx_count, loss_rate_pct, avg_rssi_dbm, blacklisted
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, s.RecordedUnixNs, s.Channel, s.TXCount, s.LossRatePct, s.AvgRSSIDbm, s.Blacklisted)
	return err
}

// RecentChannelSnapshots returns the most recent limit samples for ch,
// newest first.
func (db *DB) RecentChannelSnapshots(ch int, limit int) ([]ChannelSnapshotRow, error) {
	rows, err := db.Query(`
		SELECT recorded_unix_ns, channel, tx_count, loss_rate_pct, avg_rssi_dbm, blacklisted
		FROM channel_snapshots
		WHERE channel = ?
		ORDER BY recorded_unix_ns DESC
		LIMIT ?`, ch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChannelSnapshotRow
	for rows.Next() {
		var s ChannelSnapshotRow
		if err := rows.Scan(&s.RecordedUnixNs, &s.Channel, &s.TXCount, &s.LossRatePct, &s.AvgRSSIDbm, &s.Blacklisted); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RosterEvent is a point-in-time roster membership change (admission,
// loss of contact) recorded for the admin surface's history view.
type RosterEvent struct {
	RecordedUnixNs int64
	TrackerID      byte
	HWAddr         string
	Event          string
}

// InsertRosterEvent persists one roster event under sessionID.
func (db *DB) InsertRosterEvent(sessionID string, e RosterEvent) error {
	_, err := db.Exec(`
		INSERT INTO roster_events (session_id, recorded_unix_ns, tracker_id, hw_addr, event)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, e.RecordedUnixNs, e.TrackerID, e.HWAddr, e.Event)
	return err
}
