// Package distortion implements polynomial radial lens distortion and its
// numerically fitted inverse.
//
// Unless otherwise stated all values are in tan-angle units: a distance on the
// screen divided by the distance from the virtual eye to the screen. The
// optical axis of the lens is the origin, x points right and y points up.
package distortion

import (
	"fmt"
	"math"
	"strings"

	"vr-vddc-renderer/internal/mathutil"
)

// Iteration limits for DistortInverse.
const (
	MaxInverseIterations = 100
	InverseConvergence   = 1e-12
)

// InverseSamples is the number of radii sampled by ApproximateInverse.
// Must exceed the requested coefficient count.
const InverseSamples = 100

// Polynomial is the radial distortion
//
//	p' = p (1 + K1 r² + K2 r⁴ + ... + Kn r^(2n))
//
// where coefficients[0] is K1. The zero value is the identity distortion.
type Polynomial struct {
	coefficients []float64
}

// New copies coefficients into an immutable Polynomial.
func New(coefficients []float64) Polynomial {
	c := make([]float64, len(coefficients))
	copy(c, coefficients)
	return Polynomial{coefficients: c}
}

// Coefficients returns a copy of K1..Kn, e.g. for uploading to a vertex stage.
func (d Polynomial) Coefficients() []float64 {
	c := make([]float64, len(d.coefficients))
	copy(c, d.coefficients)
	return c
}

// Len returns the number of coefficients.
func (d Polynomial) Len() int {
	return len(d.coefficients)
}

// Factor returns the distortion factor for a squared radius (Horner over r²).
func (d Polynomial) Factor(r2 float64) float64 {
	var s float64
	for i := len(d.coefficients) - 1; i >= 0; i-- {
		s = (s + d.coefficients[i]) * r2
	}
	return 1 + s
}

// factorDerivative returns dFactor/d(r²).
func (d Polynomial) factorDerivative(r2 float64) float64 {
	var s float64
	for i := len(d.coefficients) - 1; i >= 0; i-- {
		s = s*r2 + float64(i+1)*d.coefficients[i]
	}
	return s
}

// DistortRadius returns the distorted radius for r.
func (d Polynomial) DistortRadius(r float64) float64 {
	return r * d.Factor(r*r)
}

// Distort returns the distorted point for p.
func (d Polynomial) Distort(p mathutil.Vec2) mathutil.Vec2 {
	return p.Scale(d.Factor(p.LenSq()))
}

// DistortInverse returns the point that Distort maps to p, approximately.
//
// The radius is iterated toward the fixed point r = |p| / Factor(r²). Where
// the distorted radius grows with r the step is relaxed by the derivative,
// which turns the iteration into Newton's method on r·Factor(r²) = |p|.
// There is no failure mode: after MaxInverseIterations the current estimate
// is returned.
func (d Polynomial) DistortInverse(p mathutil.Vec2) mathutil.Vec2 {
	radius := p.Len()
	if radius == 0 {
		return mathutil.Vec2{}
	}
	r := d.inverseRadius(radius)
	return p.Scale(r / radius)
}

func (d Polynomial) inverseRadius(radius float64) float64 {
	r := radius
	for i := 0; i < MaxInverseIterations; i++ {
		r2 := r * r
		f := d.Factor(r2)
		if f == 0 {
			break
		}
		target := radius / f
		next := target
		if slope := f + 2*r2*d.factorDerivative(r2); slope > 0 {
			next = r + (target-r)*f/slope
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		done := math.Abs(next-r) < InverseConvergence
		r = next
		if done {
			break
		}
	}
	return r
}

// ApproximateInverse fits a Polynomial with numCoefficients terms that
// approximates DistortInverse for distorted radii in [0, maxRadius].
//
// Samples are taken at InverseSamples evenly spaced radii ρ in (0, maxRadius]
// and the model r − ρ = Σ Kj ρ^(2j+1) is solved in the least-squares sense.
// numCoefficients must be smaller than InverseSamples; a singular system
// yields non-finite coefficients.
func (d Polynomial) ApproximateInverse(maxRadius float64, numCoefficients int) Polynomial {
	if numCoefficients <= 0 {
		return Polynomial{}
	}
	matA := make([][]float64, InverseSamples)
	vecY := make([]float64, InverseSamples)
	for i := 0; i < InverseSamples; i++ {
		rho := maxRadius * float64(i+1) / InverseSamples
		r := d.inverseRadius(rho)
		row := make([]float64, numCoefficients)
		v := rho
		for j := range row {
			v *= rho * rho
			row[j] = v
		}
		matA[i] = row
		vecY[i] = r - rho
	}
	return Polynomial{coefficients: solveLeastSquares(matA, vecY)}
}

// Deviation is the error of the fitted inverse at radius r, compared with
// the iterative inverse of forward.
func Deviation(r float64, forward, inverse Polynomial) float64 {
	return math.Abs(inverse.DistortRadius(r) - forward.inverseRadius(r))
}

// String formats the coefficients for diagnostics.
func (d Polynomial) String() string {
	var sb strings.Builder
	sb.WriteString("PolynomialRadialDistortion[")
	for i, k := range d.coefficients {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "K%d=%g", i+1, k)
	}
	sb.WriteString("]")
	return sb.String()
}
