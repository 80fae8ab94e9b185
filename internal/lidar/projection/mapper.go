// Package projection maps beam angles onto indices of the rendered sensor
// frame. It inverts the render camera's perspective projection for a ray
// through the camera origin, so the mapping is independent of the distance
// eventually read back from the frame.
package projection

import (
	"math"

	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/scanpattern"
)

// Mapper maps beams to pixel indices for one sensor geometry.
type Mapper struct {
	meta lidar.SensorMetadata
}

// NewMapper creates a mapper for validated sensor metadata.
func NewMapper(meta lidar.SensorMetadata) (*Mapper, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{meta: meta}, nil
}

// Direction returns the unit direction vector of a beam in view space:
// x right, y up, z negative toward the scene.
func Direction(b scanpattern.Beam) (x, y, z float64) {
	cosBeta := math.Cos(b.Beta)
	return math.Sin(b.Alpha) * cosBeta, math.Sin(b.Beta), -math.Cos(b.Alpha) * cosBeta
}

// Map projects a beam onto the sensor frame and returns the row-major pixel
// index. ok is false when the beam leaves the image; such beams yield no
// point and are only counted for diagnostics.
//
// For a point p = d*f on the beam the projection divides by w = -z, so the
// screen coordinates reduce to x' = h_scale*tan(alpha) and
// y' = v_scale*tan(beta)/cos(alpha), with (-1,-1) at the bottom-left of the
// image and (1,1) at the top-right.
func (m *Mapper) Map(b scanpattern.Beam) (idx int, ok bool) {
	xs := m.meta.HScale * math.Tan(b.Alpha)
	ys := m.meta.VScale * math.Tan(b.Beta) / math.Cos(b.Alpha)

	s := int(math.Round((1 + xs) / 2 * float64(m.meta.Width)))
	t := int(math.Round((1 - ys) / 2 * float64(m.meta.Height)))
	if s < 0 || s >= m.meta.Width || t < 0 || t >= m.meta.Height {
		return 0, false
	}
	return s + t*m.meta.Width, true
}
