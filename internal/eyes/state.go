// Package eyes holds the per-eye render state derived from the headset
// parameters: projections, eye offsets and the undistortion data.
package eyes

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/log"
	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/tracking"
	"vr-vddc-renderer/internal/vddc"
	"vr-vddc-renderer/internal/viewport"
)

// Clip planes of the per-eye projections, in meters.
const (
	NearClip = 0.1
	FarClip  = 100.0
)

// State is the render state of both eyes. It is not safe for concurrent
// use: call Update between frames, never while a frame is being drawn.
type State struct {
	logger *slog.Logger

	params      headset.Params
	ready       bool
	fov         [2]viewport.FOV
	transforms  [2]vddc.Transform
	data        vddc.Data
	calibration distortion.Calibration

	headRotation mathutil.Mat4
}

// New returns a State that renders without distortion until the first
// successful Update.
func New(logger *slog.Logger) *State {
	s := &State{
		logger:       log.Or(logger).With("component", "eyes"),
		data:         vddc.Identity(),
		headRotation: mathutil.Mat4Identity(),
	}
	for _, eye := range viewport.Eyes {
		s.fov[eye] = viewport.FOV{mathutil.Deg2Rad(45), mathutil.Deg2Rad(45), mathutil.Deg2Rad(45), mathutil.Deg2Rad(45)}
		s.transforms[eye] = vddc.Transform{
			Projection:  projection(s.fov[eye]),
			EyeFromHead: mathutil.Mat4Identity(),
		}
	}
	return s
}

func projection(fov viewport.FOV) mathutil.Mat4 {
	t := fov.Tan()
	return mathutil.PerspectiveTan(t[0], t[1], t[2], t[3], NearClip, FarClip)
}

// Update recomputes everything derived from p. Invalid parameters return an
// error wrapping headset.ErrInvalidParams and leave the state unchanged.
func (s *State) Update(p headset.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("eyes: update: %w", err)
	}
	start := time.Now()

	forward := p.Distortion()
	yOffset := viewport.YEyeOffsetMeters(p.VerticalAlignment, p.VerticalDistanceToLensCenter, p.ScreenHeightMeters)
	left := viewport.CalculateFOV(p, yOffset, forward)
	fov := [2]viewport.FOV{left, viewport.ReverseFOV(left)}

	cal := distortion.Calibrate(forward, s.logger)
	data := vddc.Data{
		Distortion:       forward,
		Inverse:          cal.Inverse,
		MaxRadiusSquared: cal.MaxRadiusSquared,
	}
	var transforms [2]vddc.Transform
	offsets := [2]float64{p.InterLensDistance / 2, -p.InterLensDistance / 2}
	for _, eye := range viewport.Eyes {
		data.Screen[eye], data.Texture[eye] = viewport.CalculateParams(eye, yOffset, p, fov[eye])
		transforms[eye] = vddc.Transform{
			Projection:  projection(fov[eye]),
			EyeFromHead: mathutil.Translate(mathutil.Vec3{offsets[eye], 0, 0}),
		}
	}

	s.params = p
	s.fov = fov
	s.data = data
	s.calibration = cal
	s.transforms = transforms
	s.ready = true

	s.logger.Info("headset parameters applied",
		"distortion", forward.String(),
		"max_rad_sq", cal.MaxRadiusSquared,
		"degenerate", cal.Degenerate,
		"fov_left_deg", left.Degrees(),
		"elapsed", time.Since(start))
	return nil
}

// Ready reports whether Update has succeeded at least once.
func (s *State) Ready() bool { return s.ready }

// Params returns the parameters of the last successful Update.
func (s *State) Params() headset.Params { return s.params }

func (s *State) Projection(eye viewport.Eye) mathutil.Mat4 { return s.transforms[eye].Projection }

func (s *State) EyeFromHead(eye viewport.Eye) mathutil.Mat4 { return s.transforms[eye].EyeFromHead }

// Transform returns the camera of eye for the undistortion pipeline.
func (s *State) Transform(eye viewport.Eye) vddc.Transform { return s.transforms[eye] }

func (s *State) FOV(eye viewport.Eye) viewport.FOV { return s.fov[eye] }

// Undistortion returns the data the vertex displacement needs.
func (s *State) Undistortion() vddc.Data { return s.data }

func (s *State) Calibration() distortion.Calibration { return s.calibration }

// Viewport returns the half of a screenW×screenH target that eye renders
// into.
func (s *State) Viewport(eye viewport.Eye, screenW, screenH int) image.Rectangle {
	half := screenW / 2
	if eye == viewport.Left {
		return image.Rect(0, 0, half, screenH)
	}
	return image.Rect(half, 0, 2*half, screenH)
}

// UpdateHeadRotation samples provider once for the frame starting at t.
// Every draw of the frame uses the cached value.
func (s *State) UpdateHeadRotation(provider tracking.Provider, t time.Time) mathutil.Mat4 {
	s.headRotation = provider.HeadSpaceFromStartSpaceRotation(t)
	return s.headRotation
}

// HeadRotation returns the rotation cached by the last UpdateHeadRotation.
func (s *State) HeadRotation() mathutil.Mat4 { return s.headRotation }

// String dumps the derived state for diagnostics.
func (s *State) String() string {
	var sb strings.Builder
	sb.WriteString("EyeRenderState:\n")
	for _, eye := range viewport.Eyes {
		deg := s.fov[eye].Degrees()
		fmt.Fprintf(&sb, "  %s fov_deg [%.2f %.2f %.2f %.2f] eye_from_head %v\n",
			eye, deg[0], deg[1], deg[2], deg[3], s.transforms[eye].EyeFromHead.Translation())
		fmt.Fprintf(&sb, "    screen  %+v\n", s.data.Screen[eye])
		fmt.Fprintf(&sb, "    texture %+v\n", s.data.Texture[eye])
	}
	fmt.Fprintf(&sb, "  max_rad_sq %g degenerate %v\n", s.data.MaxRadiusSquared, s.calibration.Degenerate)
	fmt.Fprintf(&sb, "  inverse %s\n", s.data.Inverse)
	return sb.String()
}
