package rawcodec

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/railsim-data/depthscan/internal/lidar"
)

func testMeta(t *testing.T, width, height int) lidar.SensorMetadata {
	t.Helper()
	meta, err := lidar.NewSensorMetadata(width, height, 1.81066, 2.414213, 200)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	return meta
}

func TestPixelRoundTrip(t *testing.T) {
	const maxDistance = 200.0
	cases := []struct {
		name      string
		class     lidar.ObjectClass
		id        uint16
		distance  float64
		intensity float64
	}{
		{"zero", lidar.ClassUnknown, 0, 0, 0},
		{"typical", lidar.ClassTrain, 42, 57.3, 0.5},
		{"max values", lidar.ClassCustom2, lidar.MaxObjectID, maxDistance, 1},
		{"near zero", lidar.ClassTerrain, 1, 0.004, 0.001},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := lidar.Pixel{
				Packed:    lidar.PackClassID(c.class, c.id),
				Distance:  c.distance,
				Intensity: c.intensity,
			}
			out := DecodePixel(EncodePixel(nil, in, maxDistance), maxDistance)

			// The class/ID word survives exactly.
			if out.Packed != in.Packed {
				t.Errorf("packed = %#x, want %#x", out.Packed, in.Packed)
			}
			// Distance and intensity survive within one quantization step.
			if math.Abs(out.Distance-in.Distance) > maxDistance/ValueScale {
				t.Errorf("distance = %g, want %g within %g", out.Distance, in.Distance, maxDistance/ValueScale)
			}
			if math.Abs(out.Intensity-in.Intensity) > 1.0/ValueScale {
				t.Errorf("intensity = %g, want %g within %g", out.Intensity, in.Intensity, 1.0/ValueScale)
			}
		})
	}
}

func TestEncodePixelWireLayout(t *testing.T) {
	p := lidar.Pixel{
		Packed:    lidar.PackClassID(lidar.ClassTrain, 42),
		Distance:  100, // half of max 200
		Intensity: 1,
	}
	raw := EncodePixel(nil, p, 200)
	if len(raw) != BytesPerPixel {
		t.Fatalf("len = %d, want %d", len(raw), BytesPerPixel)
	}

	// Three little-endian words: packed class/ID, scaled distance, scaled intensity.
	if got := binary.LittleEndian.Uint16(raw[0:2]); got != 3<<13|42 {
		t.Errorf("word 0 = %#x, want %#x", got, 3<<13|42)
	}
	if got := binary.LittleEndian.Uint16(raw[2:4]); got != 32768 { // round(0.5 * 65535)
		t.Errorf("word 1 = %d, want 32768", got)
	}
	if got := binary.LittleEndian.Uint16(raw[4:6]); got != 65535 {
		t.Errorf("word 2 = %d, want 65535", got)
	}
}

func TestEncodePixelClampsOutOfRange(t *testing.T) {
	raw := EncodePixel(nil, lidar.Pixel{Distance: 500, Intensity: 2}, 200)
	if got := binary.LittleEndian.Uint16(raw[2:4]); got != ValueScale {
		t.Errorf("distance word = %d, want clamped %d", got, ValueScale)
	}
	raw = EncodePixel(nil, lidar.Pixel{Distance: -1, Intensity: -0.5}, 200)
	if got := binary.LittleEndian.Uint16(raw[4:6]); got != 0 {
		t.Errorf("intensity word = %d, want clamped 0", got)
	}
}

func TestDecodeFrameRowMajorIndexing(t *testing.T) {
	meta := testMeta(t, 3, 2)

	frame := &lidar.SensorFrame{Meta: meta, Pixels: make([]lidar.Pixel, meta.PixelCount())}
	for i := range frame.Pixels {
		frame.Pixels[i] = lidar.Pixel{
			Packed:    lidar.PackClassID(lidar.ClassTerrain, uint16(i+1)),
			Distance:  float64(i) * 10,
			Intensity: 0.5,
		}
	}

	decoded, err := DecodeFrame("depth", meta, EncodeFrame(frame))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Pixel (col=2, row=1) sits at index 2 + 1*3 = 5.
	px := decoded.At(2 + 1*3)
	if px.ObjectID() != 6 {
		t.Errorf("pixel (2,1) object ID = %d, want 6", px.ObjectID())
	}
	if px.Class() != lidar.ClassTerrain {
		t.Errorf("pixel (2,1) class = %v, want terrain", px.Class())
	}
}

func TestDecodeFrameLengthMismatch(t *testing.T) {
	meta := testMeta(t, 4, 4)
	want := BytesPerPixel * meta.PixelCount()

	for _, n := range []int{0, want - 1, want + 1, want * 2} {
		_, err := DecodeFrame("depth", meta, make([]byte, n))
		if err == nil {
			t.Fatalf("length %d: expected error, got nil", n)
		}
		if !errors.Is(err, lidar.ErrTransportFormat) {
			t.Errorf("length %d: error %v is not a transport format error", n, err)
		}
	}

	if _, err := DecodeFrame("depth", meta, make([]byte, want)); err != nil {
		t.Errorf("exact length failed: %v", err)
	}
}

func TestDecodeFrameRejectsInvalidMetadata(t *testing.T) {
	_, err := DecodeFrame("depth", lidar.SensorMetadata{}, nil)
	if !errors.Is(err, lidar.ErrConfiguration) {
		t.Errorf("error %v is not a configuration error", err)
	}
}
