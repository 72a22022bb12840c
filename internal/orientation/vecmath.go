package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

func vecNorm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func vecNormalize(v [3]float64) [3]float64 {
	n := vecNorm(v)
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

func vecCross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func vecDot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// rotateByConj rotates v from the world frame into the body frame
// described by q (i.e. applies q^-1 · v · q), used to predict the
// gravity and magnetic-field directions a level sensor would read.
func rotateByConj(q quat.Number, v [3]float64) [3]float64 {
	p := quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}
	r := quat.Mul(quat.Mul(quat.Conj(q), p), q)
	return [3]float64{r.Imag, r.Jmag, r.Kmag}
}

// applySmallRotation rotates q by the small-angle correction described
// by axis*angle (axis need not be normalized; angle is folded into its
// magnitude) and renormalizes.
func applySmallRotation(q quat.Number, correction [3]float64) quat.Number {
	delta := quat.Number{Real: 1, Imag: correction[0] / 2, Jmag: correction[1] / 2, Kmag: correction[2] / 2}
	out := quat.Mul(q, delta)
	return quatNormalize(out)
}

func quatNormalize(q quat.Number) quat.Number {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}
