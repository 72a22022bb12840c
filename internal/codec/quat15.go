package codec

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Q15 fixed point: signed 16-bit, scale factor 32767, representing
// [-1, 1]. Used for the two full-resolution quaternion packets
// (quat+accel full, quat+mag), where the extra byte over the
// smallest-three form buys full component precision instead of a
// reconstructed fourth term.
const q15Scale = 32767

func encodeQuatQ15(q quat.Number) []byte {
	out := make([]byte, 8)
	putInt16(out[0:2], toQ15(q.Real))
	putInt16(out[2:4], toQ15(q.Imag))
	putInt16(out[4:6], toQ15(q.Jmag))
	putInt16(out[6:8], toQ15(q.Kmag))
	return out
}

func decodeQuatQ15(b []byte) quat.Number {
	return quat.Number{
		Real: fromQ15(getInt16(b[0:2])),
		Imag: fromQ15(getInt16(b[2:4])),
		Jmag: fromQ15(getInt16(b[4:6])),
		Kmag: fromQ15(getInt16(b[6:8])),
	}
}

func toQ15(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(math.Round(v * q15Scale))
}

func fromQ15(v int16) float64 {
	return float64(v) / q15Scale
}
