package renderclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/railsim-data/depthscan/internal/lidar"
)

func TestSensorMetadata(t *testing.T) {
	meta := lidar.DefaultSensorMetadata()
	var hits atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/API/CAMERASENSOR/depth/CONFIG" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		json.NewEncoder(w).Encode(meta)
	}))
	defer srv.Close()

	c := New(srv.URL+"/API", srv.Client())
	got, err := c.SensorMetadata(context.Background(), "depth")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if got != meta {
		t.Errorf("got %+v, want %+v", got, meta)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestSensorMetadataRejectsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"width":0,"height":600,"h_scale":1.8,"v_scale":2.4,"max_distance":200}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	if _, err := c.SensorMetadata(context.Background(), "depth"); err == nil {
		t.Error("invalid metadata must error")
	}
}

func TestStepCaching(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte{1, 2, 3})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	// Repeated fetches within one step hit the server once.
	for i := 0; i < 3; i++ {
		body, err := c.RawBuffer(ctx, "depth")
		if err != nil {
			t.Fatalf("raw buffer: %v", err)
		}
		if len(body) != 3 {
			t.Fatalf("got %d bytes, want 3", len(body))
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times within one step, want 1", hits.Load())
	}

	// Advancing the step invalidates the cache.
	c.StartStep()
	if _, err := c.RawBuffer(ctx, "depth"); err != nil {
		t.Fatalf("raw buffer after step: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times after step, want 2", hits.Load())
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte{1})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	if _, err := c.RawBuffer(ctx, "depth"); err == nil {
		t.Fatal("expected error from 503 response")
	}
	// The failed response must not be served from the cache.
	body, err := c.RawBuffer(ctx, "depth")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(body) != 1 {
		t.Errorf("got %d bytes, want 1", len(body))
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.RawBuffer(ctx, "depth"); err == nil {
		t.Error("cancelled context must error")
	}
}
