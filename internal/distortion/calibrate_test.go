package distortion

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func assertWithinTolerance(t *testing.T, forward Polynomial, c Calibration) {
	t.Helper()
	for j := 0; float64(j)*CalibrationSampleStep < c.MaxRadiusSquared-1e-9; j++ {
		r := float64(j) * CalibrationSampleStep
		assert.LessOrEqual(t, Deviation(r, forward, c.Inverse), CalibrationTolerance, "r %v", r)
	}
}

func TestCalibrateCardboardV1(t *testing.T) {
	forward := New(cardboardV1)
	c := Calibrate(forward, quietLogger())

	assert.False(t, c.Degenerate)
	assert.InDelta(t, CalibrationMaxRadiusSquared, c.MaxRadiusSquared, 1e-9)
	assert.Equal(t, InverseCoefficients, c.Inverse.Len())
	assertWithinTolerance(t, forward, c)
}

func TestCalibrateIdentity(t *testing.T) {
	c := Calibrate(New(nil), quietLogger())
	assert.InDelta(t, CalibrationMaxRadiusSquared, c.MaxRadiusSquared, 1e-9)
	assert.Equal(t, 101, c.Steps)
	for _, k := range c.Inverse.Coefficients() {
		assert.InDelta(t, 0, k, 1e-12)
	}
}

func TestCalibrateStopsInsideRange(t *testing.T) {
	for _, k := range [][]float64{{1.0, 1.0}, {0.8}, {1.5}} {
		forward := New(k)
		c := Calibrate(forward, quietLogger())

		require.False(t, c.Degenerate, "coefficients %v", k)
		assert.Greater(t, c.MaxRadiusSquared, CalibrationMinRadiusSquared)
		assert.Less(t, c.MaxRadiusSquared, CalibrationMaxRadiusSquared)
		// The bound is the last accepted candidate of a monotonic walk.
		assert.InDelta(t, CalibrationMinRadiusSquared+float64(c.Steps-1)*CalibrationStep, c.MaxRadiusSquared, 1e-9)
		assertWithinTolerance(t, forward, c)

		// The next candidate is the one that failed.
		next := c.MaxRadiusSquared + CalibrationStep
		_, _, ok := validate(forward, forward.ApproximateInverse(next, InverseCoefficients), next)
		assert.False(t, ok, "coefficients %v", k)
	}
}

func TestCalibrateDegenerateIsClamped(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	c := Calibrate(New([]float64{-0.8}), logger)
	assert.True(t, c.Degenerate)
	assert.Equal(t, 0, c.Steps)
	assert.Equal(t, CalibrationMinRadiusSquared, c.MaxRadiusSquared)
	assert.Equal(t, InverseCoefficients, c.Inverse.Len())
	assert.Contains(t, logs.String(), "exceeds tolerance")
}

func TestCalibrateBoundsAlwaysInRange(t *testing.T) {
	for _, k := range [][]float64{nil, cardboardV1, {0.34, 0.55}, {-0.8}, {-0.3, 0.1}, {2, 2, 2}} {
		c := Calibrate(New(k), quietLogger())
		assert.GreaterOrEqual(t, c.MaxRadiusSquared, CalibrationMinRadiusSquared, "coefficients %v", k)
		assert.LessOrEqual(t, c.MaxRadiusSquared, CalibrationMaxRadiusSquared, "coefficients %v", k)
	}
}
