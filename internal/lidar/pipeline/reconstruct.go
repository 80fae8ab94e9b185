package pipeline

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/projection"
	"github.com/railsim-data/depthscan/internal/lidar/scanpattern"
	"github.com/railsim-data/depthscan/internal/lidar/sensormodel"
)

// Reconstructor reconstructs point clouds from decoded sensor frames. It is
// bound to one sensor geometry; the frame and RNG are threaded through every
// call explicitly, so concurrent calls against different frames only need
// their own generators.
type Reconstructor struct {
	meta    lidar.SensorMetadata
	mapper  *projection.Mapper
	pattern scanpattern.Pattern
	params  sensormodel.Params
	filter  map[lidar.ObjectClass]bool
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithClassFilter suppresses returns from the given object classes. Filtered
// returns are counted in the diagnostics but never reach the cloud.
func WithClassFilter(classes ...lidar.ObjectClass) Option {
	return func(r *Reconstructor) {
		if r.filter == nil {
			r.filter = map[lidar.ObjectClass]bool{}
		}
		for _, c := range classes {
			r.filter[c] = true
		}
	}
}

// WithGroundFilter suppresses terrain and track returns, the usual ground
// pane filter for rail scenes.
func WithGroundFilter() Option {
	return WithClassFilter(lidar.ClassTerrain, lidar.ClassTrack)
}

// New creates a Reconstructor. Metadata and model parameters are validated
// here; an invalid configuration never reaches a reconstruction pass.
func New(meta lidar.SensorMetadata, pattern scanpattern.Pattern, params sensormodel.Params, opts ...Option) (*Reconstructor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	mapper, err := projection.NewMapper(meta)
	if err != nil {
		return nil, err
	}
	r := &Reconstructor{
		meta:    meta,
		mapper:  mapper,
		pattern: pattern,
		params:  params,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Metadata returns the sensor geometry the reconstructor is bound to.
func (r *Reconstructor) Metadata() lidar.SensorMetadata { return r.meta }

// Pattern returns the scan pattern.
func (r *Reconstructor) Pattern() scanpattern.Pattern { return r.pattern }

// Params returns the physical model parameters.
func (r *Reconstructor) Params() sensormodel.Params { return r.params }

// Reconstruct sweeps the scan pattern over frame and returns the point
// cloud. The RNG must be owned by this call (or externally serialized); one
// uniform draw is consumed per candidate point, so a fixed seed replays the
// exact same cloud.
func (r *Reconstructor) Reconstruct(frame *lidar.SensorFrame, rng *rand.Rand) (*lidar.PointCloud, error) {
	if frame == nil {
		return nil, lidar.TransportFormatErrorf("no sensor frame published")
	}
	if frame.Meta != r.meta {
		return nil, lidar.ConfigurationErrorf("frame geometry %dx%d does not match sensor %dx%d",
			frame.Meta.Width, frame.Meta.Height, r.meta.Width, r.meta.Height)
	}

	cloud := &lidar.PointCloud{
		Points: make([]lidar.Point, 0, r.pattern.Len()),
	}
	stats := &cloud.Stats
	stats.BeamsRequested = r.pattern.Len()

	r.pattern.Beams(func(b scanpattern.Beam) bool {
		idx, ok := r.mapper.Map(b)
		if !ok {
			stats.BeamsOutOfBounds++
			return true
		}
		px := frame.At(idx)
		if px.Packed == 0 {
			// No laser return at this pixel.
			stats.PointsNoReturn++
			return true
		}
		if r.filter[px.Class()] {
			stats.PointsClassFiltered++
			return true
		}

		intensity := r.params.Attenuate(px.Intensity, px.Distance)
		if r.params.Dropped(intensity, rng) {
			stats.PointsDropped++
			return true
		}

		fx, fy, fz := projection.Direction(b)
		cloud.Points = append(cloud.Points, lidar.Point{
			X:         fx * px.Distance,
			Y:         fy * px.Distance,
			Z:         fz * px.Distance,
			Distance:  px.Distance,
			Intensity: intensity,
			Class:     px.Class(),
			ObjectID:  px.ObjectID(),
		})
		return true
	})

	stats.PointsReturned = len(cloud.Points)
	return cloud, nil
}

// Result records one reconstruction pass for persistence and diagnostics.
type Result struct {
	RunID    string
	SensorID string
	FrameID  string
	Seed     int64
	Cloud    *lidar.PointCloud
	Started  time.Time
	Duration time.Duration
}

// Run performs one seeded reconstruction pass and wraps it in a Result with
// a fresh run ID. The generator is created here and lives only for this
// call, keeping dropoff decisions reproducible and race-free.
func (r *Reconstructor) Run(frame *lidar.SensorFrame, seed int64) (*Result, error) {
	started := time.Now()
	cloud, err := r.Reconstruct(frame, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	res := &Result{
		RunID:    uuid.New().String(),
		Seed:     seed,
		Cloud:    cloud,
		Started:  started,
		Duration: time.Since(started),
	}
	if frame != nil {
		res.SensorID = frame.SensorID
		res.FrameID = frame.FrameID
	}
	return res, nil
}
