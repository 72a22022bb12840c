package hostbridge

import (
	"time"

	"github.com/aerolink/motionlink/internal/channel"
	"github.com/aerolink/motionlink/internal/hostdb"
	"github.com/aerolink/motionlink/internal/linkconfig"
	"github.com/aerolink/motionlink/internal/motionlog"
	"github.com/aerolink/motionlink/internal/storage"
)

// PairingController is the subset of *receiverlink.ReceiverLink the
// bridge needs: enough to report roster state and toggle pairing mode
// without depending on the link package's full surface.
type PairingController interface {
	EnterPairingMode()
	ExitPairingMode()
	PairingActive() bool
	Roster() [storage.MaxRosterEntries]storage.RosterEntry
}

// Bridge owns one receiver's USB HID connection lifetime on the host
// side: it ingests the decoded report stream into hostdb, samples
// channel quality for the admin surface, and brokers pairing-mode
// control from the admin HTTP routes down to the link.
type Bridge struct {
	db        *hostdb.DB
	link      PairingController
	channels  *channel.Manager
	cfg       *linkconfig.LinkConfig
	sessionID string
}

// NewBridge opens a new ingest session under source (e.g. the USB
// device path) and returns a Bridge ready to ingest reports.
func NewBridge(cfg *linkconfig.LinkConfig, db *hostdb.DB, link PairingController, channels *channel.Manager, source string) (*Bridge, error) {
	sessionID, err := db.NewIngestSession(source, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	return &Bridge{db: db, link: link, channels: channels, cfg: cfg, sessionID: sessionID}, nil
}

// IngestReport decodes one 16-byte HID report and persists it as a
// tracker report row. HID reports carry the bare payload (USB already
// guarantees transport integrity, so no CRC/sequence trailer is sent);
// the frame is resynthesized locally so the same codec.Decode path
// used for over-the-air frames can be reused here.
func (b *Bridge) IngestReport(report [16]byte, receivedAt time.Time) error {
	row, ok := decodeReportRow(report, receivedAt)
	if !ok {
		return nil
	}
	return b.db.InsertTrackerReport(b.sessionID, row)
}

// SnapshotChannels records the current window stats for every active
// channel, for the admin surface's historical channel-quality view.
func (b *Bridge) SnapshotChannels(at time.Time) error {
	for _, ch := range b.channels.ActiveChannels() {
		stats := b.channels.Stats(ch)
		row := hostdb.ChannelSnapshotRow{
			RecordedUnixNs: at.UnixNano(),
			Channel:        ch,
			TXCount:        stats.TXCount,
			LossRatePct:    stats.LossRate,
			AvgRSSIDbm:     stats.AvgRSSI,
			Blacklisted:    stats.Blacklisted,
		}
		if err := b.db.InsertChannelSnapshot(b.sessionID, row); err != nil {
			return err
		}
	}
	return nil
}

// RecordRosterEvent persists one roster membership change (admission
// or loss of contact) for the admin surface's history view.
func (b *Bridge) RecordRosterEvent(at time.Time, trackerID byte, hwAddr [6]byte, event string) {
	row := hostdb.RosterEvent{
		RecordedUnixNs: at.UnixNano(),
		TrackerID:      trackerID,
		HWAddr:         hwAddrString(hwAddr),
		Event:          event,
	}
	if err := b.db.InsertRosterEvent(b.sessionID, row); err != nil {
		motionlog.Logf("hostbridge: record roster event failed: %v", err)
	}
}
