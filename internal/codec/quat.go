package codec

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// smallest-three quantization: the three retained components can never
// exceed 1/sqrt(2) in magnitude, because the dropped component is always
// the largest of the four and the quaternion is unit length. 18 bits
// gives headroom well past the accumulated fusion error this link
// tolerates.
const (
	quatComponentBits  = 18
	quatComponentScale = float64((1 << (quatComponentBits - 1)) - 1)
	quatComponentMax   = 1 / math.Sqrt2
)

// CompressQuat packs a unit quaternion into the 7-byte smallest-three
// wire form (spec §4.2): the largest-magnitude component is dropped and
// reconstructed on decode from the unit-length constraint; the other
// three are each quantized to 18 bits signed over [-1/sqrt(2), 1/sqrt(2)].
// A 2-bit field records which component (0=W,1=X,2=Y,3=Z) was dropped.
func CompressQuat(q quat.Number) [7]byte {
	comps := [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}

	dropped := 0
	for i := 1; i < 4; i++ {
		if math.Abs(comps[i]) > math.Abs(comps[dropped]) {
			dropped = i
		}
	}

	// Canonicalize so the dropped (largest-magnitude) component is
	// positive; an equivalent rotation is represented by -q, so this
	// loses no information and lets the decoder assume a non-negative
	// square root.
	sign := 1.0
	if comps[dropped] < 0 {
		sign = -1.0
	}

	var kept [3]float64
	k := 0
	for i := 0; i < 4; i++ {
		if i == dropped {
			continue
		}
		kept[k] = comps[i] * sign
		k++
	}

	var bits uint64
	bits |= uint64(dropped) & 0x3
	for i, v := range kept {
		q18 := quantize18(v)
		bits |= uint64(q18) << uint(2+18*i)
	}

	var out [7]byte
	for i := 0; i < 7; i++ {
		out[i] = byte(bits >> uint(8*i))
	}
	return out
}

// DecompressQuat reverses CompressQuat.
func DecompressQuat(b [7]byte) quat.Number {
	var bits uint64
	for i := 0; i < 7; i++ {
		bits |= uint64(b[i]) << uint(8*i)
	}

	dropped := int(bits & 0x3)
	var kept [3]float64
	sumSq := 0.0
	for i := 0; i < 3; i++ {
		raw := uint32((bits >> uint(2+18*i)) & ((1 << quatComponentBits) - 1))
		v := dequantize18(raw)
		kept[i] = v
		sumSq += v * v
	}

	droppedVal := math.Sqrt(math.Max(0, 1-sumSq))

	var comps [4]float64
	k := 0
	for i := 0; i < 4; i++ {
		if i == dropped {
			comps[i] = droppedVal
			continue
		}
		comps[i] = kept[k]
		k++
	}

	return quat.Number{Real: comps[0], Imag: comps[1], Jmag: comps[2], Kmag: comps[3]}
}

func quantize18(v float64) uint32 {
	if v > quatComponentMax {
		v = quatComponentMax
	}
	if v < -quatComponentMax {
		v = -quatComponentMax
	}
	scaled := int32(math.Round(v / quatComponentMax * quatComponentScale))
	return uint32(scaled) & ((1 << quatComponentBits) - 1)
}

func dequantize18(raw uint32) float64 {
	const signBit = 1 << (quatComponentBits - 1)
	signed := int32(raw)
	if raw&signBit != 0 {
		signed = int32(raw) - (1 << quatComponentBits)
	}
	return float64(signed) / quatComponentScale * quatComponentMax
}
