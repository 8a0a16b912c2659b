// Package tracking supplies head orientation to the renderer. Sensor fusion
// lives outside this module; providers here are fixed or scripted.
package tracking

import (
	"math"
	"time"

	"vr-vddc-renderer/internal/mathutil"
)

// Provider returns the rotation from start space into head space at t.
// Implementations must be safe for concurrent use.
type Provider interface {
	HeadSpaceFromStartSpaceRotation(t time.Time) mathutil.Mat4
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(t time.Time) mathutil.Mat4

func (f ProviderFunc) HeadSpaceFromStartSpaceRotation(t time.Time) mathutil.Mat4 {
	return f(t)
}

// Identity never turns the head.
type Identity struct{}

func (Identity) HeadSpaceFromStartSpaceRotation(time.Time) mathutil.Mat4 {
	return mathutil.Mat4Identity()
}

// Fixed holds the head at one orientation.
type Fixed struct {
	Orientation mathutil.Quat
}

// NewFixed returns a provider for a head turned by yaw, pitch and roll
// (radians).
func NewFixed(yaw, pitch, roll float64) Fixed {
	return Fixed{Orientation: mathutil.QuatFromYawPitchRoll(yaw, pitch, roll)}
}

func (f Fixed) HeadSpaceFromStartSpaceRotation(time.Time) mathutil.Mat4 {
	return mathutil.QuatToMat4(f.Orientation.Conjugate())
}

// Sweep turns the head at a constant yaw rate while nodding sinusoidally.
type Sweep struct {
	Start time.Time
	// YawRate in radians per second.
	YawRate float64
	// PitchAmplitude in radians; zero disables nodding.
	PitchAmplitude float64
	PitchPeriod    time.Duration
}

// Orientation returns the head orientation in start space at t.
func (s Sweep) Orientation(t time.Time) mathutil.Quat {
	elapsed := t.Sub(s.Start).Seconds()
	pitch := 0.0
	if s.PitchAmplitude != 0 && s.PitchPeriod > 0 {
		pitch = s.PitchAmplitude * math.Sin(2*math.Pi*elapsed/s.PitchPeriod.Seconds())
	}
	return mathutil.QuatFromYawPitchRoll(s.YawRate*elapsed, pitch, 0)
}

// HeadSpaceFromStartSpaceRotation is the inverse of Orientation: turning the
// head to the right turns the world to the left.
func (s Sweep) HeadSpaceFromStartSpaceRotation(t time.Time) mathutil.Mat4 {
	return mathutil.QuatToMat4(s.Orientation(t).Conjugate())
}
