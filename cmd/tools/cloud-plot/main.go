// cloud-plot renders a top-down scatter PNG of a stored reconstruction run.
//
// Usage:
//
//	cloud-plot -db depthscan.db -run <run-id> -out cloud.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/railsim-data/depthscan/internal/lidar/storage/sqlite"
)

var (
	dbPath = flag.String("db", "depthscan.db", "Path to the run database")
	runID  = flag.String("run", "", "Run ID to plot")
	out    = flag.String("out", "cloud.png", "Output PNG path")
)

func main() {
	flag.Parse()
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "-run is required")
		flag.Usage()
		os.Exit(2)
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open run database: %v", err)
	}
	defer db.Close()

	store := sqlite.NewRunStore(db)
	rec, err := store.GetRun(*runID)
	if err != nil {
		log.Fatalf("load run: %v", err)
	}
	points, err := store.GetRunPoints(*runID)
	if err != nil {
		log.Fatalf("load points: %v", err)
	}
	if len(points) == 0 {
		log.Fatalf("run %s has no points", *runID)
	}

	// Top-down view: sensor-frame x against forward distance (-z).
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		xys = append(xys, plotter.XY{X: pt.X, Y: -pt.Z})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run %s (%d points, sensor %s)", rec.RunID, len(points), rec.SensorID)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Forward (m)"

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		log.Fatalf("build scatter: %v", err)
	}
	scatter.Radius = vg.Points(0.5)
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, *out); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("wrote %s", *out)
}
