package lidar

import (
	"sync"
	"time"
)

// Pixel is one decoded sensor frame sample. Packed keeps the raw class/ID
// word so the no-return rule (packed == 0) stays exact after decoding.
type Pixel struct {
	Packed    uint16  // (class << 13) | id; 0 means no hit
	Distance  float64 // meters, in [0, MaxDistance]
	Intensity float64 // raw reflected intensity in [0,1]
}

// Class returns the classifier bits of the pixel.
func (p Pixel) Class() ObjectClass {
	return ObjectClass(p.Packed >> 13)
}

// ObjectID returns the object instance bits of the pixel.
func (p Pixel) ObjectID() uint16 {
	return p.Packed & MaxObjectID
}

// SensorFrame is one decoded snapshot of the render collaborator's encoded
// depth buffer. Frames are immutable after construction: the store publishes
// them whole, never in place, so a reconstruction pass can read one without
// locking.
type SensorFrame struct {
	FrameID    string
	SensorID   string
	Meta       SensorMetadata
	Pixels     []Pixel // row-major, len == Meta.PixelCount()
	ReceivedAt time.Time
}

// At returns the pixel at the given buffer index (col + row*width).
func (f *SensorFrame) At(idx int) Pixel {
	return f.Pixels[idx]
}

// FrameStore hands frames over from the render collaborator to
// reconstruction calls. Publishing replaces the previous frame atomically;
// readers always observe a complete frame. If no new frame has arrived the
// last published one keeps being served — a reconstruction call never
// blocks waiting for a fresh frame.
type FrameStore struct {
	mu     sync.RWMutex
	frames map[string]*SensorFrame
}

// NewFrameStore creates an empty frame store.
func NewFrameStore() *FrameStore {
	return &FrameStore{frames: map[string]*SensorFrame{}}
}

// Publish makes frame the current frame for its sensor. The frame must not
// be mutated after publishing.
func (s *FrameStore) Publish(frame *SensorFrame) {
	if frame == nil || frame.SensorID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[frame.SensorID] = frame
}

// Latest returns the current frame for a sensor, or nil if none has been
// published yet.
func (s *FrameStore) Latest(sensorID string) *SensorFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames[sensorID]
}

// Sensors returns the IDs of all sensors with a published frame.
func (s *FrameStore) Sensors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.frames))
	for id := range s.frames {
		ids = append(ids, id)
	}
	return ids
}
