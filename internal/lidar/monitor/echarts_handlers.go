package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/railsim-data/depthscan/internal/httputil"
	"github.com/railsim-data/depthscan/internal/lidar"
)

// handleCloudScatter renders a quick top-down scatter (HTML) of a stored
// point cloud using go-echarts. Debugging-only endpoint to eyeball a
// reconstruction without external tooling. Plots sensor-frame x against -z
// (forward), colored by intensity.
//
// GET /debug/lidar/cloud?run_id=R&max_points=N
func (ws *WebServer) handleCloudScatter(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}
	if ws.store == nil {
		httputil.NotFound(w, "run persistence disabled")
		return
	}

	points, err := ws.store.GetRunPoints(runID)
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}
	if len(points) == 0 {
		httputil.NotFound(w, "run has no points")
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	// Downsample by stride to stay within maxPoints.
	stride := 1
	if len(points) > maxPoints {
		stride = int(math.Ceil(float64(len(points)) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(points)/stride+1)
	maxAbs := 0.0
	for i := 0; i < len(points); i += stride {
		p := points[i]
		x, y := p.X, -p.Z // forward is -z in the sensor frame
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, p.Intensity}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Reconstructed Cloud (Top Down)", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Reconstructed Point Cloud", Subtitle: fmt.Sprintf("run=%s points=%d stride=%d", runID, len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Forward (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("cloud", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// classCountNames tallies points per object class, keyed by classifier name
// for JSON output.
func classCountNames(points []lidar.Point) map[string]int {
	counts := map[string]int{}
	for _, p := range points {
		counts[p.Class.String()]++
	}
	return counts
}
