// Package synthetic builds artificial sensor frames for benchmarks, sweep
// tooling and tests that need a frame with known content without a render
// server attached.
package synthetic

import (
	"time"

	"github.com/google/uuid"

	"github.com/railsim-data/depthscan/internal/lidar"
)

// WallFrame returns a frame where every pixel sees the same object at the
// given distance and raw intensity: the sensor staring at a flat wall.
func WallFrame(sensorID string, meta lidar.SensorMetadata, class lidar.ObjectClass, objectID uint16, distance, intensity float64) *lidar.SensorFrame {
	pixels := make([]lidar.Pixel, meta.PixelCount())
	px := lidar.Pixel{
		Packed:    lidar.PackClassID(class, objectID),
		Distance:  distance,
		Intensity: intensity,
	}
	for i := range pixels {
		pixels[i] = px
	}
	return newFrame(sensorID, meta, pixels)
}

// SceneFrame returns a frame with a simple rail scene: terrain filling the
// lower half of the image at near range, a train occupying the middle third
// of the upper half, and sky (no return) elsewhere.
func SceneFrame(sensorID string, meta lidar.SensorMetadata) *lidar.SensorFrame {
	pixels := make([]lidar.Pixel, meta.PixelCount())
	ground := lidar.Pixel{
		Packed:    lidar.PackClassID(lidar.ClassTerrain, 1),
		Distance:  meta.MaxDistance * 0.1,
		Intensity: 0.3,
	}
	train := lidar.Pixel{
		Packed:    lidar.PackClassID(lidar.ClassTrain, 42),
		Distance:  meta.MaxDistance * 0.4,
		Intensity: 0.9,
	}
	for row := 0; row < meta.Height; row++ {
		for col := 0; col < meta.Width; col++ {
			idx := col + row*meta.Width
			switch {
			case row >= meta.Height/2:
				pixels[idx] = ground
			case col >= meta.Width/3 && col < 2*meta.Width/3:
				pixels[idx] = train
			default:
				// Sky: packed class/ID 0 means no return.
			}
		}
	}
	return newFrame(sensorID, meta, pixels)
}

func newFrame(sensorID string, meta lidar.SensorMetadata, pixels []lidar.Pixel) *lidar.SensorFrame {
	return &lidar.SensorFrame{
		FrameID:    uuid.New().String(),
		SensorID:   sensorID,
		Meta:       meta,
		Pixels:     pixels,
		ReceivedAt: time.Now(),
	}
}
