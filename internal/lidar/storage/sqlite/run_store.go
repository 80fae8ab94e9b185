package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/pipeline"
)

// RunRecord is the stored form of one reconstruction pass.
type RunRecord struct {
	RunID       string            `json:"run_id"`
	SensorID    string            `json:"sensor_id"`
	FrameID     string            `json:"frame_id"`
	Seed        int64             `json:"seed"`
	StartedAtNs int64             `json:"started_at_ns"`
	DurationUs  int64             `json:"duration_us"`
	Stats       lidar.Diagnostics `json:"stats"`
}

// RunStore persists reconstruction runs and their points.
type RunStore struct {
	db *DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun stores a reconstruction result and all its points in one
// transaction.
func (s *RunStore) InsertRun(res *pipeline.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	st := res.Cloud.Stats
	_, err = tx.Exec(`
		INSERT INTO lidar_runs (
			run_id, sensor_id, frame_id, seed, started_at_ns, duration_us,
			beams_requested, beams_out_of_bounds, points_no_return,
			points_class_filtered, points_dropped, points_returned
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.SensorID, res.FrameID, res.Seed,
		res.Started.UnixNano(), res.Duration.Microseconds(),
		st.BeamsRequested, st.BeamsOutOfBounds, st.PointsNoReturn,
		st.PointsClassFiltered, st.PointsDropped, st.PointsReturned,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lidar_run_points (
			run_id, point_idx, x, y, z, distance, intensity, class, object_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare point insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range res.Cloud.Points {
		if _, err := stmt.Exec(res.RunID, i, p.X, p.Y, p.Z, p.Distance, p.Intensity, int(p.Class), p.ObjectID); err != nil {
			return fmt.Errorf("insert point %d of run %s: %w", i, res.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run insert: %w", err)
	}
	return nil
}

// GetRun retrieves a run record by ID.
func (s *RunStore) GetRun(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT run_id, sensor_id, frame_id, seed, started_at_ns, duration_us,
		       beams_requested, beams_out_of_bounds, points_no_return,
		       points_class_filtered, points_dropped, points_returned
		FROM lidar_runs WHERE run_id = ?`, runID)

	var rec RunRecord
	err := row.Scan(&rec.RunID, &rec.SensorID, &rec.FrameID, &rec.Seed,
		&rec.StartedAtNs, &rec.DurationUs,
		&rec.Stats.BeamsRequested, &rec.Stats.BeamsOutOfBounds,
		&rec.Stats.PointsNoReturn, &rec.Stats.PointsClassFiltered,
		&rec.Stats.PointsDropped, &rec.Stats.PointsReturned)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &rec, nil
}

// ListRuns returns the most recent runs for a sensor, newest first. A limit
// of 0 means a default page of 50.
func (s *RunStore) ListRuns(sensorID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, sensor_id, frame_id, seed, started_at_ns, duration_us,
		       beams_requested, beams_out_of_bounds, points_no_return,
		       points_class_filtered, points_dropped, points_returned
		FROM lidar_runs WHERE sensor_id = ?
		ORDER BY started_at_ns DESC LIMIT ?`, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", sensorID, err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.SensorID, &rec.FrameID, &rec.Seed,
			&rec.StartedAtNs, &rec.DurationUs,
			&rec.Stats.BeamsRequested, &rec.Stats.BeamsOutOfBounds,
			&rec.Stats.PointsNoReturn, &rec.Stats.PointsClassFiltered,
			&rec.Stats.PointsDropped, &rec.Stats.PointsReturned); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GetRunPoints retrieves the stored point cloud of a run in insertion order.
func (s *RunStore) GetRunPoints(runID string) ([]lidar.Point, error) {
	rows, err := s.db.Query(`
		SELECT x, y, z, distance, intensity, class, object_id
		FROM lidar_run_points WHERE run_id = ?
		ORDER BY point_idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("get points of run %s: %w", runID, err)
	}
	defer rows.Close()

	var points []lidar.Point
	for rows.Next() {
		var p lidar.Point
		var class int
		if err := rows.Scan(&p.X, &p.Y, &p.Z, &p.Distance, &p.Intensity, &class, &p.ObjectID); err != nil {
			return nil, fmt.Errorf("scan point row: %w", err)
		}
		p.Class = lidar.ObjectClass(class)
		points = append(points, p)
	}
	return points, rows.Err()
}

// DropRates returns the per-run sensor model drop rate (dropped / candidate
// points) of the most recent runs for a sensor, oldest first, for summary
// statistics.
func (s *RunStore) DropRates(sensorID string, limit int) ([]float64, error) {
	recs, err := s.ListRuns(sensorID, limit)
	if err != nil {
		return nil, err
	}
	rates := make([]float64, 0, len(recs))
	// ListRuns is newest-first; walk backwards for chronological order.
	for i := len(recs) - 1; i >= 0; i-- {
		st := recs[i].Stats
		candidates := st.PointsDropped + st.PointsReturned
		if candidates == 0 {
			continue
		}
		rates = append(rates, float64(st.PointsDropped)/float64(candidates))
	}
	return rates, nil
}
