package orientation

// TempCompCoeffs holds the per-axis quadratic temperature-compensation
// coefficients (spec §4.2: "bias(T) = a + b*(T-T0) + c*(T-T0)^2"). Zero
// coefficients (the default) make compensation a no-op, for rigs without
// a characterized thermal model.
type TempCompCoeffs struct {
	A, B, C, T0 [3]float64
}

// TempCompensator applies TempCompCoeffs to a filtered gyro sample.
type TempCompensator struct {
	coeffs TempCompCoeffs
}

// NewTempCompensator creates a compensator with zeroed (no-op)
// coefficients; call SetCoeffs once a thermal model is available.
func NewTempCompensator() *TempCompensator {
	return &TempCompensator{}
}

// SetCoeffs installs a thermal model.
func (c *TempCompensator) SetCoeffs(coeffs TempCompCoeffs) {
	c.coeffs = coeffs
}

// Compensate subtracts the modeled thermal bias from gyro. tempC is the
// sensor temperature in Celsius; if hasTemp is false, gyro passes
// through unchanged.
func (c *TempCompensator) Compensate(gyro [3]float64, tempC float64, hasTemp bool) [3]float64 {
	if !hasTemp {
		return gyro
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		dt := tempC - c.coeffs.T0[i]
		bias := c.coeffs.A[i] + c.coeffs.B[i]*dt + c.coeffs.C[i]*dt*dt
		out[i] = gyro[i] - bias
	}
	return out
}
