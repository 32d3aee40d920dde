package distrib

import "math"

// Rational approximation coefficients for the inverse of the standard normal
// CDF (Acklam's method, in the Beasley-Springer-Moro family). The values are
// a published constant table, not re-derived here.
var (
	invNormA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02,
		-2.759285104469687e+02, 1.383577518672690e+02,
		-3.066479806614716e+01, 2.506628277459239e+00,
	}
	invNormB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02,
		-1.556989798598866e+02, 6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	invNormC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01,
		-2.400758277161838e+00, -2.549732539343734e+00,
		4.374664141464968e+00, 2.938163982698783e+00,
	}
	invNormD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00,
	}
)

// invNormLow marks the lower tail break point of the approximation.
const invNormLow = 0.02425

// InverseNormalCDF returns z such that P(Z <= z) = p for a standard normal
// variable. p is clamped to [0.001, 0.999] to avoid the infinities at the
// tails; the approximation is valid across that whole range.
func InverseNormalCDF(p float64) float64 {
	if p < 0.001 {
		p = 0.001
	}
	if p > 0.999 {
		p = 0.999
	}

	switch {
	case p < invNormLow:
		// Lower tail.
		q := math.Sqrt(-2 * math.Log(p))
		return (((((invNormC[0]*q+invNormC[1])*q+invNormC[2])*q+invNormC[3])*q+invNormC[4])*q + invNormC[5]) /
			((((invNormD[0]*q+invNormD[1])*q+invNormD[2])*q+invNormD[3])*q + 1)

	case p > 1-invNormLow:
		// Upper tail, by symmetry with the lower tail.
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((invNormC[0]*q+invNormC[1])*q+invNormC[2])*q+invNormC[3])*q+invNormC[4])*q + invNormC[5]) /
			((((invNormD[0]*q+invNormD[1])*q+invNormD[2])*q+invNormD[3])*q + 1)

	default:
		// Central region.
		q := p - 0.5
		r := q * q
		return (((((invNormA[0]*r+invNormA[1])*r+invNormA[2])*r+invNormA[3])*r+invNormA[4])*r + invNormA[5]) * q /
			(((((invNormB[0]*r+invNormB[1])*r+invNormB[2])*r+invNormB[3])*r+invNormB[4])*r + 1)
	}
}
