package channel

// lfsrTaps is the 16-bit Galois LFSR feedback polynomial the hop
// sequence is derived from (spec §4.3).
const lfsrTaps = 0xB400

func lfsrNext(state uint16) uint16 {
	lsb := state & 1
	state >>= 1
	if lsb != 0 {
		state ^= lfsrTaps
	}
	return state
}

// HopSequence derives the 8-byte hop sequence for one beacon (spec
// §4.3: "derived from the network key XOR frame number through a
// 16-bit Galois LFSR ... 8 bytes per beacon"). The high byte of each
// successive LFSR state is reduced to a channel by indexing into
// channels; entries landing on a blacklisted
// channel are rewritten to the nearest active channel in list order
// (spec: "rewrites entries that hit blacklisted channels to the
// nearest active channel").
func (m *Manager) HopSequence(networkKey uint32, frameNumber uint16) [8]byte {
	seed := uint16(networkKey) ^ uint16(networkKey>>16) ^ frameNumber
	state := seed
	var out [8]byte
	for i := range out {
		state = lfsrNext(state)
		idx := int(byte(state>>8)) % len(m.channels)
		ch := m.channels[idx]
		if m.states[ch].blacklisted {
			ch = m.nearestActive(idx)
		}
		out[i] = byte(ch)
	}
	return out
}

// nearestActive returns the active channel whose position in m.channels
// is closest to idx, searching outward symmetrically.
func (m *Manager) nearestActive(idx int) int {
	n := len(m.channels)
	for offset := 0; offset < n; offset++ {
		for _, cand := range []int{idx - offset, idx + offset} {
			i := ((cand % n) + n) % n
			ch := m.channels[i]
			if !m.states[ch].blacklisted {
				return ch
			}
		}
	}
	return m.channels[idx]
}
