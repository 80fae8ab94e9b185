// Package scanpattern generates the deterministic angular scan pattern of
// the emulated LiDAR: the ordered set of (yaw, pitch) beams swept per frame.
// Patterns contain no randomness and replay identically every time, which
// keeps reconstruction reproducible for a fixed RNG seed.
package scanpattern

import (
	"math"

	"github.com/railsim-data/depthscan/internal/lidar"
)

// Default angular resolution of the scan, in radians (0.1 degree).
const DefaultStep = 0.1 * math.Pi / 180

// Beam is a single simulated sensor ray.
type Beam struct {
	Alpha float64 // yaw, radians, positive to the right
	Beta  float64 // pitch, radians, positive up
}

// Pattern is a finite, restartable beam sequence covering a symmetric field
// of view at fixed angular steps. Beams are ordered pitch-major, yaw-minor:
// a full horizontal sweep at the lowest pitch first, then the next pitch up.
//
// The caller guarantees the pattern's field of view does not exceed the
// field of view the sensor frame was rendered with; beams outside the frame
// are filtered and counted at reconstruction time, not here.
type Pattern struct {
	HFov  float64 // full horizontal field of view, radians
	VFov  float64 // full vertical field of view, radians
	HStep float64 // yaw step, radians
	VStep float64 // pitch step, radians
}

// New builds a pattern over the given full fields of view. Fields of view
// must be positive and steps must be positive and no larger than their span.
func New(hFov, vFov, hStep, vStep float64) (Pattern, error) {
	p := Pattern{HFov: hFov, VFov: vFov, HStep: hStep, VStep: vStep}
	switch {
	case hFov <= 0 || vFov <= 0:
		return Pattern{}, lidar.ConfigurationErrorf("field of view must be positive, got h=%g v=%g", hFov, vFov)
	case hStep <= 0 || vStep <= 0:
		return Pattern{}, lidar.ConfigurationErrorf("angular step must be positive, got h=%g v=%g", hStep, vStep)
	case hStep > hFov || vStep > vFov:
		return Pattern{}, lidar.ConfigurationErrorf("angular step exceeds field of view")
	}
	return p, nil
}

// ForMetadata builds a pattern matching the render camera's field of view,
// derived from the projection scales, at the given angular steps.
func ForMetadata(meta lidar.SensorMetadata, hStep, vStep float64) (Pattern, error) {
	return New(meta.HorizontalFOV(), meta.VerticalFOV(), hStep, vStep)
}

// counts returns the number of yaw and pitch samples. Sampling follows the
// half-open convention [-fov/2, fov/2): the lower edge is included, the
// upper edge is not.
func (p Pattern) counts() (nYaw, nPitch int) {
	nYaw = int(math.Ceil(p.HFov/p.HStep - 1e-9))
	nPitch = int(math.Ceil(p.VFov/p.VStep - 1e-9))
	return nYaw, nPitch
}

// Len returns the number of beams in the pattern.
func (p Pattern) Len() int {
	nYaw, nPitch := p.counts()
	return nYaw * nPitch
}

// Beams invokes yield for every beam in order. The sequence is identical on
// every call. yield returning false stops the sweep early.
func (p Pattern) Beams(yield func(Beam) bool) {
	nYaw, nPitch := p.counts()
	for j := 0; j < nPitch; j++ {
		beta := -0.5*p.VFov + float64(j)*p.VStep
		for i := 0; i < nYaw; i++ {
			alpha := -0.5*p.HFov + float64(i)*p.HStep
			if !yield(Beam{Alpha: alpha, Beta: beta}) {
				return
			}
		}
	}
}

// Collect materializes the whole pattern. Mostly useful in tests; the
// reconstruction pass streams beams through Beams instead.
func (p Pattern) Collect() []Beam {
	beams := make([]Beam, 0, p.Len())
	p.Beams(func(b Beam) bool {
		beams = append(beams, b)
		return true
	})
	return beams
}
