package lidar

import "math"

// Default sensor geometry as reported by the render server for an
// unconfigured depth camera.
const (
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultHScale      = 1.81066
	DefaultVScale      = 2.414213
	DefaultMaxDistance = 200.0
)

// SensorMetadata holds the per-sensor parameters reported by the render
// collaborator. HScale and VScale are the (1,1) and (2,2) entries of the
// render camera's perspective projection matrix. The struct is immutable for
// a sensor's lifetime; reconfiguration means constructing a new one.
type SensorMetadata struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	HScale      float64 `json:"h_scale"`
	VScale      float64 `json:"v_scale"`
	MaxDistance float64 `json:"max_distance"`
}

// NewSensorMetadata validates and returns sensor metadata. Width, height and
// maximum distance must be positive; violations surface here rather than at
// reconstruction time.
func NewSensorMetadata(width, height int, hScale, vScale, maxDistance float64) (SensorMetadata, error) {
	m := SensorMetadata{
		Width:       width,
		Height:      height,
		HScale:      hScale,
		VScale:      vScale,
		MaxDistance: maxDistance,
	}
	if err := m.Validate(); err != nil {
		return SensorMetadata{}, err
	}
	return m, nil
}

// DefaultSensorMetadata returns the render server's default depth camera
// geometry.
func DefaultSensorMetadata() SensorMetadata {
	return SensorMetadata{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		HScale:      DefaultHScale,
		VScale:      DefaultVScale,
		MaxDistance: DefaultMaxDistance,
	}
}

// Validate checks the metadata invariants.
func (m SensorMetadata) Validate() error {
	if m.Width <= 0 {
		return ConfigurationErrorf("width must be positive, got %d", m.Width)
	}
	if m.Height <= 0 {
		return ConfigurationErrorf("height must be positive, got %d", m.Height)
	}
	if m.HScale <= 0 || m.VScale <= 0 {
		return ConfigurationErrorf("projection scales must be positive, got h=%g v=%g", m.HScale, m.VScale)
	}
	if m.MaxDistance <= 0 {
		return ConfigurationErrorf("max distance must be positive, got %g", m.MaxDistance)
	}
	return nil
}

// PixelCount returns the number of pixels in one sensor frame.
func (m SensorMetadata) PixelCount() int {
	return m.Width * m.Height
}

// HorizontalFOV returns the horizontal field of view of the render camera in
// radians, derived from the projection scale: fov = 2*atan(1/h_scale).
func (m SensorMetadata) HorizontalFOV() float64 {
	return 2 * math.Atan(1.0/m.HScale)
}

// VerticalFOV returns the vertical field of view in radians.
func (m SensorMetadata) VerticalFOV() float64 {
	return 2 * math.Atan(1.0/m.VScale)
}
