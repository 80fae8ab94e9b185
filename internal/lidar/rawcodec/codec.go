// Package rawcodec implements the wire format of the render collaborator's
// encoded depth buffer.
//
// Each pixel is 6 bytes: three little-endian uint16 words in order
//
//	word 0: packed class/ID   (class << 13) | (id & 0x1FFF)
//	word 1: scaled distance   round(distance / maxDistance * 65535)
//	word 2: scaled intensity  round(intensity * 65535)
//
// The buffer is row-major, pixel index col + row*width, byte offset 6*idx,
// total length 6*width*height.
//
// The two quantization divisors are intentionally asymmetric and must not
// be unified: the GPU side normalizes the class/ID word by 65536 (so the
// stored word is the exact packed integer and decodes without rescaling),
// while distance and intensity use the full-scale divisor 65535. Whether
// the 65536 reserves a sentinel value or is an off-by-one in the producer
// is unknown; this codec reproduces it as observed.
package rawcodec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/railsim-data/depthscan/internal/lidar"
)

// Encoded buffer layout constants.
const (
	WordsPerPixel = 3                 // packed class/ID, scaled distance, scaled intensity
	BytesPerPixel = 2 * WordsPerPixel // three little-endian uint16 words

	// ValueScale converts between [0,1] channel values and stored words on
	// the distance and intensity channels.
	ValueScale = 65535
)

// EncodePixel appends the 6-byte wire form of one pixel to dst and returns
// the extended slice. Distance is scaled against maxDistance; distance and
// intensity outside their valid ranges are clamped.
func EncodePixel(dst []byte, p lidar.Pixel, maxDistance float64) []byte {
	var buf [BytesPerPixel]byte
	binary.LittleEndian.PutUint16(buf[0:2], p.Packed)
	binary.LittleEndian.PutUint16(buf[2:4], scaleWord(p.Distance/maxDistance))
	binary.LittleEndian.PutUint16(buf[4:6], scaleWord(p.Intensity))
	return append(dst, buf[:]...)
}

// DecodePixel decodes the 6-byte wire form at the start of raw. It is the
// inverse of EncodePixel up to quantization: distance and intensity round-
// trip within 1/65535 of full scale, the class/ID word exactly.
func DecodePixel(raw []byte, maxDistance float64) lidar.Pixel {
	return lidar.Pixel{
		Packed:    binary.LittleEndian.Uint16(raw[0:2]),
		Distance:  float64(binary.LittleEndian.Uint16(raw[2:4])) / ValueScale * maxDistance,
		Intensity: float64(binary.LittleEndian.Uint16(raw[4:6])) / ValueScale,
	}
}

// scaleWord quantizes a [0,1] channel value to a stored word, clamping out
// of range input.
func scaleWord(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return ValueScale
	}
	return uint16(math.Round(v * ValueScale))
}

// DecodeFrame decodes a complete raw buffer into a sensor frame. The buffer
// length must be exactly BytesPerPixel * width * height; anything else fails
// with a transport format error and no partial decode is attempted.
func DecodeFrame(sensorID string, meta lidar.SensorMetadata, raw []byte) (*lidar.SensorFrame, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	want := BytesPerPixel * meta.PixelCount()
	if len(raw) != want {
		return nil, lidar.TransportFormatErrorf("raw buffer length %d, want %d (%dx%d pixels, %d bytes each)",
			len(raw), want, meta.Width, meta.Height, BytesPerPixel)
	}

	pixels := make([]lidar.Pixel, meta.PixelCount())
	for i := range pixels {
		pixels[i] = DecodePixel(raw[i*BytesPerPixel:], meta.MaxDistance)
	}

	return &lidar.SensorFrame{
		FrameID:    uuid.New().String(),
		SensorID:   sensorID,
		Meta:       meta,
		Pixels:     pixels,
		ReceivedAt: time.Now(),
	}, nil
}

// EncodeFrame encodes a sensor frame back into its wire form. Used by tests
// and the synthetic frame generators; the production producer is the render
// collaborator's GPU shader.
func EncodeFrame(frame *lidar.SensorFrame) []byte {
	raw := make([]byte, 0, BytesPerPixel*len(frame.Pixels))
	for _, p := range frame.Pixels {
		raw = EncodePixel(raw, p, frame.Meta.MaxDistance)
	}
	return raw
}
