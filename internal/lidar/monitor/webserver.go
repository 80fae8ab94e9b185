// Package monitor exposes the HTTP interface of the reconstruction service:
// frame ingest from the render collaborator, tuning parameter access,
// reconstruction triggers, run queries and debug charts.
package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/railsim-data/depthscan/internal/config"
	"github.com/railsim-data/depthscan/internal/httputil"
	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/storage/sqlite"
	"github.com/railsim-data/depthscan/internal/monitoring"
)

// WebServer handles the HTTP interface for the reconstruction service.
type WebServer struct {
	address string
	server  *http.Server

	frames *lidar.FrameStore
	store  *sqlite.RunStore

	mu     sync.RWMutex
	meta   map[string]lidar.SensorMetadata
	tuning *config.TuningConfig
}

// WebServerConfig contains the web server wiring.
type WebServerConfig struct {
	Address string
	Frames  *lidar.FrameStore
	Store   *sqlite.RunStore
	Tuning  *config.TuningConfig
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) *WebServer {
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = &config.TuningConfig{}
	}
	ws := &WebServer{
		address: cfg.Address,
		frames:  cfg.Frames,
		store:   cfg.Store,
		meta:    map[string]lidar.SensorMetadata{},
		tuning:  tuning,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Start begins the HTTP server and blocks until ctx is cancelled, then
// shuts the server down.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		monitoring.Logf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

// Handler returns the route mux, mostly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/lidar/metadata", ws.handleMetadata)
	mux.HandleFunc("/api/lidar/frame", ws.handleFrame)
	mux.HandleFunc("/api/lidar/params", ws.handleParams)
	mux.HandleFunc("/api/lidar/reconstruct", ws.handleReconstruct)
	mux.HandleFunc("/api/lidar/runs", ws.handleRuns)
	mux.HandleFunc("/api/lidar/run", ws.handleRun)
	mux.HandleFunc("/api/lidar/stats", ws.handleStats)
	mux.HandleFunc("/debug/lidar/cloud", ws.handleCloudScatter)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}

// sensorMetadata returns the registered metadata for a sensor, falling back
// to the render server defaults.
func (ws *WebServer) sensorMetadata(sensorID string) lidar.SensorMetadata {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	if m, ok := ws.meta[sensorID]; ok {
		return m
	}
	return lidar.DefaultSensorMetadata()
}

func (ws *WebServer) setSensorMetadata(sensorID string, m lidar.SensorMetadata) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.meta[sensorID] = m
}

func (ws *WebServer) tuningSnapshot() *config.TuningConfig {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	c := *ws.tuning
	return &c
}

func (ws *WebServer) setTuning(c *config.TuningConfig) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.tuning = c
}
