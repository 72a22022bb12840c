package pairing

import "github.com/aerolink/motionlink/internal/codec"

// TrackerService runs the tracker side of the discovery handshake
// (spec §4.7).
type TrackerService struct {
	hwAddr [6]byte
}

// NewTrackerService creates a TrackerService for a tracker with the
// given hardware address.
func NewTrackerService(hwAddr [6]byte) *TrackerService {
	return &TrackerService{hwAddr: hwAddr}
}

// BuildAdvertise produces the stage=0 frame a tracker broadcasts on the
// discovery pipe while unpaired.
func (t *TrackerService) BuildAdvertise() []byte {
	return codec.EncodePairingFrame(codec.PairingFrame{Stage: codec.PairingStageAdvertise, Addr: t.hwAddr})
}

// HandleResponse parses a receiver's stage=2 confirmation. ok is false
// if raw was not a stage=2 frame addressed at all (malformed frames
// return an error; frames of another stage are silently ignored by
// returning ok=false with a nil error).
func (t *TrackerService) HandleResponse(raw []byte) (trackerID byte, networkKey uint32, ok bool, err error) {
	frame, err := codec.DecodePairingFrame(raw)
	if err != nil {
		return 0, 0, false, err
	}
	if frame.Stage != codec.PairingStageConfirm {
		return 0, 0, false, nil
	}
	trackerID, networkKey = decodeConfirmAddr(frame.Addr)
	return trackerID, networkKey, true, nil
}
