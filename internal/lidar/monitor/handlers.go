package monitor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/railsim-data/depthscan/internal/config"
	"github.com/railsim-data/depthscan/internal/httputil"
	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/pipeline"
	"github.com/railsim-data/depthscan/internal/lidar/rawcodec"
)

// Frame bodies are bounded by the largest plausible sensor geometry
// (4096x4096 pixels at 6 bytes each).
const maxFrameBody = 6 * 4096 * 4096

// handleMetadata reads or registers per-sensor metadata.
//
// GET  /api/lidar/metadata?sensor_id=S
// POST /api/lidar/metadata?sensor_id=S with a JSON SensorMetadata body
func (ws *WebServer) handleMetadata(w http.ResponseWriter, r *http.Request) {
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		httputil.BadRequest(w, "sensor_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, ws.sensorMetadata(sensorID))
	case http.MethodPost:
		var meta lidar.SensorMetadata
		if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
			httputil.BadRequest(w, "invalid metadata body: "+err.Error())
			return
		}
		if err := meta.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		ws.setSensorMetadata(sensorID, meta)
		httputil.WriteJSONOK(w, meta)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleFrame ingests an encoded depth buffer and publishes it as the
// sensor's current frame.
//
// POST /api/lidar/frame?sensor_id=S with the raw buffer as body
func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		httputil.BadRequest(w, "sensor_id is required")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBody+1))
	if err != nil {
		httputil.BadRequest(w, "failed to read frame body: "+err.Error())
		return
	}

	frame, err := rawcodec.DecodeFrame(sensorID, ws.sensorMetadata(sensorID), raw)
	if err != nil {
		// A malformed buffer must not displace the previously published frame.
		if errors.Is(err, lidar.ErrTransportFormat) {
			httputil.BadRequest(w, err.Error())
		} else {
			httputil.InternalServerError(w, err.Error())
		}
		return
	}
	ws.frames.Publish(frame)

	httputil.WriteJSONOK(w, map[string]interface{}{
		"frame_id":  frame.FrameID,
		"sensor_id": frame.SensorID,
		"pixels":    len(frame.Pixels),
	})
}

// handleParams reads or replaces the tuning configuration.
//
// GET  /api/lidar/params
// POST /api/lidar/params with a JSON TuningConfig body
func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, ws.tuningSnapshot())
	case http.MethodPost:
		var cfg config.TuningConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			httputil.BadRequest(w, "invalid params body: "+err.Error())
			return
		}
		// Reject configurations that can never reconstruct.
		if _, err := cfg.ModelParams(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if _, err := cfg.FilteredClasses(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		ws.setTuning(&cfg)
		httputil.WriteJSONOK(w, &cfg)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// reconstructor builds a pipeline for a sensor from the current tuning.
func (ws *WebServer) reconstructor(sensorID string) (*pipeline.Reconstructor, error) {
	tuning := ws.tuningSnapshot()
	meta := ws.sensorMetadata(sensorID)

	params, err := tuning.ModelParams()
	if err != nil {
		return nil, err
	}
	pattern, err := tuning.Pattern(meta)
	if err != nil {
		return nil, err
	}
	classes, err := tuning.FilteredClasses()
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{}
	if len(classes) > 0 {
		opts = append(opts, pipeline.WithClassFilter(classes...))
	}
	return pipeline.New(meta, pattern, params, opts...)
}

// handleReconstruct runs one reconstruction pass over the sensor's current
// frame, persists it, and returns the run record.
//
// POST /api/lidar/reconstruct?sensor_id=S&seed=N&include_points=true
func (ws *WebServer) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		httputil.BadRequest(w, "sensor_id is required")
		return
	}

	seed := time.Now().UnixNano()
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			httputil.BadRequest(w, "invalid seed: "+s)
			return
		}
		seed = v
	}

	frame := ws.frames.Latest(sensorID)
	if frame == nil {
		httputil.NotFound(w, "no frame published for sensor "+sensorID)
		return
	}

	rec, err := ws.reconstructor(sensorID)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	res, err := rec.Run(frame, seed)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if ws.store != nil {
		if err := ws.store.InsertRun(res); err != nil {
			httputil.InternalServerError(w, "persist run: "+err.Error())
			return
		}
	}

	resp := map[string]interface{}{
		"run_id":      res.RunID,
		"sensor_id":   res.SensorID,
		"frame_id":    res.FrameID,
		"seed":        res.Seed,
		"duration_us": res.Duration.Microseconds(),
		"stats":       res.Cloud.Stats,
	}
	if r.URL.Query().Get("include_points") == "true" {
		resp["points"] = res.Cloud.Points
	}
	httputil.WriteJSONOK(w, resp)
}

// handleRuns lists recent runs for a sensor.
//
// GET /api/lidar/runs?sensor_id=S&limit=N
func (ws *WebServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		httputil.BadRequest(w, "sensor_id is required")
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	if ws.store == nil {
		httputil.NotFound(w, "run persistence disabled")
		return
	}
	recs, err := ws.store.ListRuns(sensorID, limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, recs)
}

// handleRun returns one stored run with its point cloud.
//
// GET /api/lidar/run?run_id=R
func (ws *WebServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}
	if ws.store == nil {
		httputil.NotFound(w, "run persistence disabled")
		return
	}
	rec, err := ws.store.GetRun(runID)
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}
	points, err := ws.store.GetRunPoints(runID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"run":          rec,
		"points":       points,
		"class_counts": classCountNames(points),
	})
}
