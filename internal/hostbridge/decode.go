package hostbridge

import (
	"fmt"
	"time"

	"github.com/aerolink/motionlink/internal/codec"
	"github.com/aerolink/motionlink/internal/hostdb"
)

// decodeReportRow resynthesizes an on-air frame from a bare HID
// payload and flattens it into a hostdb.TrackerReportRow. ok is false
// for registration packets, which announce a pairing binding rather
// than carrying motion data and have no place in the report history.
func decodeReportRow(report [16]byte, receivedAt time.Time) (row hostdb.TrackerReportRow, ok bool) {
	frame := codec.EncodeFrame(report, 0)
	pkt, err := codec.Decode(frame)
	if err != nil {
		return row, false
	}

	row = hostdb.TrackerReportRow{
		PacketType:     byte(pkt.Type),
		Sequence:       pkt.Sequence,
		ReceivedUnixNs: receivedAt.UnixNano(),
	}

	switch {
	case pkt.Info != nil:
		row.TrackerID = pkt.Info.TrackerID
		row.BatteryPct = int(pkt.Info.BatteryPct)
		row.HasBattery = true
		row.RSSIDbm = int(pkt.Info.RSSI)
		row.HasRSSI = true
	case pkt.QuatAccel != nil:
		row.TrackerID = pkt.QuatAccel.TrackerID
		row.Quat = [4]float64{pkt.QuatAccel.Quat.Real, pkt.QuatAccel.Quat.Imag, pkt.QuatAccel.Quat.Jmag, pkt.QuatAccel.Quat.Kmag}
		row.HasQuat = true
		row.Accel = [3]float64{
			float64(pkt.QuatAccel.Accel.X) / 1000,
			float64(pkt.QuatAccel.Accel.Y) / 1000,
			float64(pkt.QuatAccel.Accel.Z) / 1000,
		}
		row.HasAccel = true
	case pkt.QuatAccelC != nil:
		row.TrackerID = pkt.QuatAccelC.TrackerID
		row.Quat = [4]float64{pkt.QuatAccelC.Quat.Real, pkt.QuatAccelC.Quat.Imag, pkt.QuatAccelC.Quat.Jmag, pkt.QuatAccelC.Quat.Kmag}
		row.HasQuat = true
		row.Accel = [3]float64{
			float64(pkt.QuatAccelC.Accel[0]) * 0.04 * 9.81,
			float64(pkt.QuatAccelC.Accel[1]) * 0.04 * 9.81,
			float64(pkt.QuatAccelC.Accel[2]) * 0.04 * 9.81,
		}
		row.HasAccel = true
		row.BatteryPct = int(pkt.QuatAccelC.BatteryPct)
		row.HasBattery = true
		row.RSSIDbm = int(pkt.QuatAccelC.RSSI)
		row.HasRSSI = true
	case pkt.Status != nil:
		row.TrackerID = pkt.Status.TrackerID
		row.RSSIDbm = int(pkt.Status.RSSI)
		row.HasRSSI = true
	case pkt.QuatMag != nil:
		row.TrackerID = pkt.QuatMag.TrackerID
		row.Quat = [4]float64{pkt.QuatMag.Quat.Real, pkt.QuatMag.Quat.Imag, pkt.QuatMag.Quat.Jmag, pkt.QuatMag.Quat.Kmag}
		row.HasQuat = true
	case pkt.Registration != nil:
		return row, false
	default:
		return row, false
	}
	return row, true
}

func hwAddrString(addr [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
}
