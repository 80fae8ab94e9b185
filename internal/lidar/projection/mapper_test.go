package projection

import (
	"math"
	"testing"

	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/scanpattern"
)

func defaultMapper(t *testing.T) (*Mapper, lidar.SensorMetadata) {
	t.Helper()
	meta := lidar.DefaultSensorMetadata()
	m, err := NewMapper(meta)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	return m, meta
}

func TestCenterBeamMapsToImageCenter(t *testing.T) {
	m, meta := defaultMapper(t)

	idx, ok := m.Map(scanpattern.Beam{Alpha: 0, Beta: 0})
	if !ok {
		t.Fatal("center beam mapped out of bounds")
	}
	want := meta.Width/2 + meta.Height/2*meta.Width
	if idx != want {
		t.Errorf("center beam index = %d, want %d", idx, want)
	}
}

func TestDirectionConvention(t *testing.T) {
	// Straight ahead: -z in view space.
	x, y, z := Direction(scanpattern.Beam{})
	if x != 0 || y != 0 || z != -1 {
		t.Errorf("forward direction = (%g, %g, %g), want (0, 0, -1)", x, y, z)
	}

	// Positive yaw turns right, positive pitch up.
	x, _, _ = Direction(scanpattern.Beam{Alpha: 0.1})
	if x <= 0 {
		t.Errorf("positive yaw gave x = %g, want > 0", x)
	}
	_, y, _ = Direction(scanpattern.Beam{Beta: 0.1})
	if y <= 0 {
		t.Errorf("positive pitch gave y = %g, want > 0", y)
	}
}

func TestDirectionIsUnitLength(t *testing.T) {
	for _, b := range []scanpattern.Beam{
		{Alpha: 0, Beta: 0},
		{Alpha: 0.3, Beta: -0.2},
		{Alpha: -0.5, Beta: 0.4},
	} {
		x, y, z := Direction(b)
		n := math.Sqrt(x*x + y*y + z*z)
		if math.Abs(n-1) > 1e-12 {
			t.Errorf("direction of %+v has norm %g", b, n)
		}
	}
}

func TestBeamAtRightEdgeIsExcluded(t *testing.T) {
	m, meta := defaultMapper(t)

	// x' = 1 exactly: tan(alpha) = 1/h_scale, i.e. alpha = hFov/2. The
	// column rounds to s = width, one past the last valid column.
	edge := scanpattern.Beam{Alpha: math.Atan(1.0 / meta.HScale), Beta: 0}
	if _, ok := m.Map(edge); ok {
		t.Error("beam at s = width should be excluded")
	}

	// Just inside the edge still maps.
	inside := scanpattern.Beam{Alpha: edge.Alpha - 0.01, Beta: 0}
	if _, ok := m.Map(inside); !ok {
		t.Error("beam just inside the edge should map")
	}
}

func TestSteepPitchIsExcluded(t *testing.T) {
	m, _ := defaultMapper(t)
	if _, ok := m.Map(scanpattern.Beam{Alpha: 0, Beta: 0.5}); ok {
		t.Error("beam far above the vertical FOV should be excluded")
	}
	if _, ok := m.Map(scanpattern.Beam{Alpha: 0, Beta: -0.5}); ok {
		t.Error("beam far below the vertical FOV should be excluded")
	}
}

func TestVerticalMappingOrientation(t *testing.T) {
	m, meta := defaultMapper(t)

	// Positive pitch (up) lands in the upper half of the image: smaller row.
	upIdx, ok := m.Map(scanpattern.Beam{Alpha: 0, Beta: 0.1})
	if !ok {
		t.Fatal("up beam out of bounds")
	}
	downIdx, ok := m.Map(scanpattern.Beam{Alpha: 0, Beta: -0.1})
	if !ok {
		t.Fatal("down beam out of bounds")
	}
	if upIdx/meta.Width >= downIdx/meta.Width {
		t.Errorf("up beam row %d not above down beam row %d", upIdx/meta.Width, downIdx/meta.Width)
	}
}

func TestNewMapperRejectsInvalidMetadata(t *testing.T) {
	if _, err := NewMapper(lidar.SensorMetadata{}); err == nil {
		t.Error("expected configuration error for empty metadata")
	}
}
