package pairing

import "encoding/binary"

// encodeConfirmAddr packs the receiver's stage=2 response payload
// (assigned tracker_id and the 32-bit network key) into a pairing
// frame's 6-byte address field (spec §4.7: "transmits stage=2 response
// carrying the assigned id and the 32-bit network key").
func encodeConfirmAddr(trackerID byte, networkKey uint32) [6]byte {
	var addr [6]byte
	addr[0] = trackerID
	binary.BigEndian.PutUint32(addr[1:5], networkKey)
	return addr
}

func decodeConfirmAddr(addr [6]byte) (trackerID byte, networkKey uint32) {
	return addr[0], binary.BigEndian.Uint32(addr[1:5])
}
