package monitor

import (
	"net/http"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/railsim-data/depthscan/internal/httputil"
)

// DropRateSummary aggregates the sensor model drop rate over recent runs.
// With a fixed frame and tuning the empirical rate should hover around the
// model's drop probability; drift indicates a tuning or seeding problem.
type DropRateSummary struct {
	SensorID string  `json:"sensor_id"`
	Runs     int     `json:"runs"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// handleStats summarizes drop rates over the most recent runs of a sensor.
//
// GET /api/lidar/stats?sensor_id=S&limit=N
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		httputil.BadRequest(w, "sensor_id is required")
		return
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if ws.store == nil {
		httputil.NotFound(w, "run persistence disabled")
		return
	}

	rates, err := ws.store.DropRates(sensorID, limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, summarizeDropRates(sensorID, rates))
}

func summarizeDropRates(sensorID string, rates []float64) DropRateSummary {
	s := DropRateSummary{SensorID: sensorID, Runs: len(rates)}
	if len(rates) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(rates, nil)
	if len(rates) == 1 {
		// MeanStdDev yields NaN for one sample.
		s.StdDev = 0
	}
	s.Min, s.Max = rates[0], rates[0]
	for _, v := range rates[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}
