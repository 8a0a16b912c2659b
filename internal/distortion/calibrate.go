package distortion

import (
	"log/slog"
	"math"

	"vr-vddc-renderer/internal/log"
)

// Calibration search constants. The bound is a squared radius in tan-angle
// units; it is also passed as maxRadius when fitting the inverse.
const (
	CalibrationMinRadiusSquared = 1.0
	CalibrationMaxRadiusSquared = 2.0
	CalibrationStep             = 0.01
	CalibrationSampleStep       = 0.01
	CalibrationTolerance        = 0.001

	// InverseCoefficients is the size of the fitted inverse used by the
	// vertex displacement path.
	InverseCoefficients = 6
)

// Calibration is the outcome of Calibrate.
type Calibration struct {
	// MaxRadiusSquared bounds the region where Inverse is trusted.
	MaxRadiusSquared float64
	Inverse          Polynomial
	// Steps is the number of candidate bounds that passed.
	Steps int
	// Degenerate is set when the very first candidate already failed and
	// the rollback had to be clamped to CalibrationMinRadiusSquared.
	Degenerate bool
}

// Calibrate finds the largest squared-radius bound in
// [CalibrationMinRadiusSquared, CalibrationMaxRadiusSquared] for which the
// fitted inverse of forward stays within CalibrationTolerance of the
// iterative inverse.
//
// The search is greedy: candidates are tried in increasing order and the
// first failure stops it, rolling back one step. The deviation is not
// monotonic near the boundary, so a bisection could skip over a failure.
func Calibrate(forward Polynomial, logger *slog.Logger) Calibration {
	logger = log.Or(logger)

	maxSteps := int(math.Round((CalibrationMaxRadiusSquared - CalibrationMinRadiusSquared) / CalibrationStep))
	accepted := -1
	for k := 0; k <= maxSteps; k++ {
		bound := boundAt(k)
		inverse := forward.ApproximateInverse(bound, InverseCoefficients)
		if r, dev, ok := validate(forward, inverse, bound); !ok {
			logger.Debug("calibration candidate rejected",
				"max_rad_sq", bound, "radius", r, "deviation", dev)
			break
		}
		accepted = k
	}

	c := Calibration{Steps: accepted + 1}
	if accepted >= 0 {
		c.MaxRadiusSquared = boundAt(accepted)
	} else {
		// The rollback from the first candidate would leave the search range.
		c.MaxRadiusSquared = CalibrationMinRadiusSquared
		c.Degenerate = true
		logger.Warn("distortion inverse exceeds tolerance at the minimum bound",
			"max_rad_sq", c.MaxRadiusSquared, "tolerance", CalibrationTolerance)
	}
	c.Inverse = forward.ApproximateInverse(c.MaxRadiusSquared, InverseCoefficients)
	logger.Debug("calibration done",
		"max_rad_sq", c.MaxRadiusSquared, "steps", c.Steps, "inverse", c.Inverse.String())
	return c
}

func boundAt(k int) float64 {
	return CalibrationMinRadiusSquared + float64(k)*CalibrationStep
}

// validate scans r = 0, step, 2·step, ... < bound and reports the first
// sample whose deviation exceeds the tolerance.
func validate(forward, inverse Polynomial, bound float64) (float64, float64, bool) {
	for j := 0; ; j++ {
		r := float64(j) * CalibrationSampleStep
		if r >= bound-1e-9 {
			return 0, 0, true
		}
		if dev := Deviation(r, forward, inverse); !(dev <= CalibrationTolerance) {
			return r, dev, false
		}
	}
}
