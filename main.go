// depthscan reconstructs synthetic LiDAR point clouds from the encoded
// depth buffers of a rendering simulation server.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/railsim-data/depthscan/internal/config"
	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/monitor"
	"github.com/railsim-data/depthscan/internal/lidar/rawcodec"
	"github.com/railsim-data/depthscan/internal/lidar/storage/sqlite"
	"github.com/railsim-data/depthscan/internal/renderclient"
)

var (
	listen       = flag.String("listen", ":8080", "Listen address")
	dbPath       = flag.String("db", "depthscan.db", "Path to the run database")
	configPath   = flag.String("config", "", "Path to a JSON tuning config (optional)")
	renderURL    = flag.String("render-url", "", "Base URL of the render server API; empty disables polling")
	sensorName   = flag.String("sensor", "depth", "Sensor name on the render server")
	pollInterval = flag.Duration("poll-interval", 250*time.Millisecond, "Render server poll interval")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := &config.TuningConfig{}
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open run database: %v", err)
	}
	defer db.Close()

	frames := lidar.NewFrameStore()
	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		Frames:  frames,
		Store:   sqlite.NewRunStore(db),
		Tuning:  tuning,
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Poll the render server for fresh frames when configured. Frames also
	// arrive over POST /api/lidar/frame, so polling is optional.
	if *renderURL != "" {
		client := renderclient.New(*renderURL, nil)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pollFrames(ctx, client, frames, *sensorName, *pollInterval)
			log.Print("render poll routine terminated")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	wg.Wait()
}

// pollFrames fetches metadata and raw buffers from the render server on a
// fixed cadence and publishes decoded frames. Fetch errors are logged and
// retried on the next tick; the previously published frame keeps serving.
func pollFrames(ctx context.Context, client *renderclient.Client, frames *lidar.FrameStore, sensorName string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		client.StartStep()
		meta, err := client.SensorMetadata(ctx, sensorName)
		if err != nil {
			log.Printf("fetch metadata for %s: %v", sensorName, err)
			continue
		}
		raw, err := client.RawBuffer(ctx, sensorName)
		if err != nil {
			log.Printf("fetch raw buffer for %s: %v", sensorName, err)
			continue
		}
		frame, err := rawcodec.DecodeFrame(sensorName, meta, raw)
		if err != nil {
			log.Printf("decode frame for %s: %v", sensorName, err)
			continue
		}
		frames.Publish(frame)
	}
}
