package lidar

// ObjectClass is the semantic classifier the render collaborator assigns to
// every scenery object. Values occupy the top 3 bits of the packed class/ID
// word, so only 0..7 are representable.
type ObjectClass uint8

const (
	// ClassUnknown is any scenery object of unknown type.
	ClassUnknown ObjectClass = iota
	// ClassTerrain is the terrain ground.
	ClassTerrain
	// ClassTrack is a dynamic track object (only railroad ties are classified).
	ClassTrack
	// ClassTrain is a train.
	ClassTrain
	// ClassCar is a road vehicle, pedestrian or anything else the simulator
	// moves along pre-defined paths that is not a train.
	ClassCar
	// ClassSignal is a signal.
	ClassSignal
	// ClassCustom1 is reserved for custom use.
	ClassCustom1
	// ClassCustom2 is reserved for custom use.
	ClassCustom2
)

// MaxObjectClass is the largest representable classifier value.
const MaxObjectClass = 7

// MaxObjectID is the largest representable object ID (13 bits).
const MaxObjectID = 0x1FFF

func (c ObjectClass) String() string {
	switch c {
	case ClassUnknown:
		return "unknown"
	case ClassTerrain:
		return "terrain"
	case ClassTrack:
		return "track"
	case ClassTrain:
		return "train"
	case ClassCar:
		return "car"
	case ClassSignal:
		return "signal"
	case ClassCustom1:
		return "custom1"
	case ClassCustom2:
		return "custom2"
	default:
		return "invalid"
	}
}

// PackClassID packs a classifier and object ID into the 16-bit wire word:
// the classifier in the top 3 bits, the ID in the low 13.
func PackClassID(class ObjectClass, id uint16) uint16 {
	return uint16(class)<<13 | (id & MaxObjectID)
}

// UnpackClassID splits a packed class/ID word into its parts.
func UnpackClassID(packed uint16) (ObjectClass, uint16) {
	return ObjectClass(packed >> 13), packed & MaxObjectID
}

// Point is one reconstructed LiDAR return in the sensor frame of reference
// (x right, y up, z toward the viewer is negative).
type Point struct {
	X, Y, Z   float64     // Position (meters, sensor frame)
	Distance  float64     // Range along the beam (meters)
	Intensity float64     // Attenuated return intensity in [0,1]
	Class     ObjectClass // Semantic classifier of the hit object
	ObjectID  uint16      // Object instance ID (13 bits)
}

// PointCloud is the output of one reconstruction pass. Points appear in beam
// pattern order; dropped or filtered beams leave no entry.
type PointCloud struct {
	Points []Point
	Stats  Diagnostics
}

// Diagnostics counts what happened to the beams of one reconstruction pass.
type Diagnostics struct {
	BeamsRequested      int `json:"beams_requested"`       // beams in the pattern
	BeamsOutOfBounds    int `json:"beams_out_of_bounds"`   // mapped outside the image
	PointsNoReturn      int `json:"points_no_return"`      // packed class/ID 0 (no hit)
	PointsClassFiltered int `json:"points_class_filtered"` // suppressed by class filter
	PointsDropped       int `json:"points_dropped"`        // removed by the sensor model
	PointsReturned      int `json:"points_returned"`       // emitted into the cloud
}

// FilterByClass returns the points of cloud whose classifier is one of the
// given classes. The original slice is not modified.
func FilterByClass(points []Point, class ObjectClass, others ...ObjectClass) []Point {
	want := map[ObjectClass]bool{class: true}
	for _, c := range others {
		want[c] = true
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if want[p.Class] {
			out = append(out, p)
		}
	}
	return out
}
