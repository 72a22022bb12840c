package codec

import (
	"fmt"

	"github.com/aerolink/motionlink/internal/linkerrors"
)

// seqWindow is half the 8-bit sequence space. A received sequence number
// is accepted as "ahead" of the last accepted one if its forward
// distance (mod 256) is within this window; anything further is treated
// as wraparound-ambiguous and rejected as a replay or a stale duplicate,
// the same heuristic TCP uses for 32-bit sequence comparison scaled down
// to one byte.
const seqWindow = 128

// SequenceTracker applies the link's replay/loss-accounting policy to an
// 8-bit rolling sequence number (spec §4.1 "Sequence"; spec §8 scenario
// 2). It is not safe for concurrent use; each link direction owns one.
type SequenceTracker struct {
	hasLast bool
	last    byte
}

// Accept reports whether seq should be accepted as the next packet in
// order, and how many packets were lost between the previous accepted
// sequence number and this one (0 for consecutive delivery). The first
// call always accepts and reports zero loss, since there is no prior
// reference point.
func (s *SequenceTracker) Accept(seq byte) (accepted bool, lost int) {
	if !s.hasLast {
		s.hasLast = true
		s.last = seq
		return true, 0
	}

	delta := int(seq) - int(s.last)
	if delta < 0 {
		delta += 256
	}
	if delta == 0 || delta > seqWindow {
		return false, 0
	}

	lost = delta - 1
	s.last = seq
	return true, lost
}

// AcceptErr is Accept wrapped to return linkerrors.ErrSequenceTooOld on
// rejection, for callers that want a plain error-returning check.
func (s *SequenceTracker) AcceptErr(seq byte) (lost int, err error) {
	accepted, lost := s.Accept(seq)
	if !accepted {
		return 0, fmt.Errorf("codec: sequence %d not accepted after %d: %w", seq, s.last, linkerrors.ErrSequenceTooOld)
	}
	return lost, nil
}

// Reset clears the tracker, as done on loss of sync or re-pairing.
func (s *SequenceTracker) Reset() {
	s.hasLast = false
	s.last = 0
}
