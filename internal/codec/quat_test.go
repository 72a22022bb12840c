package codec

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
)

func normQuat(w, x, y, z float64) quat.Number {
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	return quat.Number{Real: w / n, Imag: x / n, Jmag: y / n, Kmag: z / n}
}

func quatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

func TestCompressQuat_RoundTripWithinTolerance(t *testing.T) {
	cases := []quat.Number{
		normQuat(1, 0, 0, 0),
		normQuat(0, 1, 0, 0),
		normQuat(0, 0, 1, 0),
		normQuat(0, 0, 0, 1),
		normQuat(0.7, 0.1, 0.2, 0.3),
		normQuat(-0.5, 0.5, 0.5, -0.5),
		normQuat(0.1, 0.2, 0.3, 0.9),
	}
	for _, q := range cases {
		packed := CompressQuat(q)
		got := DecompressQuat(packed)
		// Either q or -q is an acceptable reconstruction: both represent
		// the same rotation.
		dot := math.Abs(quatDot(q, got))
		if dot < 0.999 {
			t.Fatalf("compress/decompress(%+v) = %+v, |dot| = %v, want >= 0.999", q, got, dot)
		}
	}
}

func TestCompressQuat_SevenBytes(t *testing.T) {
	packed := CompressQuat(normQuat(0.1, 0.2, 0.3, 0.9))
	if len(packed) != 7 {
		t.Fatalf("packed length = %d, want 7", len(packed))
	}
}

func TestQ15_RoundTripWithinTolerance(t *testing.T) {
	for _, v := range []float64{-1, -0.5, 0, 0.3333, 0.99997, 1} {
		got := fromQ15(toQ15(v))
		if math.Abs(got-v) > 1.0/q15Scale {
			t.Fatalf("q15 round trip of %v = %v, tolerance exceeded", v, got)
		}
	}
}
