// Package renderclient fetches sensor data from the rendering collaborator
// over its HTTP API: per-sensor metadata as JSON and the encoded depth
// buffer as a raw binary body.
//
// Responses are cached per simulation step. The renderer only produces one
// buffer per render tick, so multiple consumers within a step share one
// fetch; StartStep clears the cache when the simulation advances.
package renderclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/railsim-data/depthscan/internal/lidar"
)

// Client talks to the render server.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	cache map[string][]byte
}

// New creates a client for the render server at baseURL, e.g.
// "http://localhost:2150/API". A nil httpClient uses a default with a 10s
// timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		cache:   map[string][]byte{},
	}
}

// StartStep invalidates the per-step response cache. Call once per
// simulation step, before the step's fetches.
func (c *Client) StartStep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string][]byte{}
}

// getCached fetches path, serving repeated requests within one step from
// the cache.
func (c *Client) getCached(ctx context.Context, path string) ([]byte, error) {
	c.mu.Lock()
	if body, ok := c.cache[path]; ok {
		c.mu.Unlock()
		return body, nil
	}
	c.mu.Unlock()

	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", url, err)
	}

	c.mu.Lock()
	c.cache[path] = body
	c.mu.Unlock()
	return body, nil
}

// SensorMetadata fetches and validates the metadata of a camera sensor.
func (c *Client) SensorMetadata(ctx context.Context, sensorName string) (lidar.SensorMetadata, error) {
	body, err := c.getCached(ctx, "CAMERASENSOR/"+sensorName+"/CONFIG")
	if err != nil {
		return lidar.SensorMetadata{}, err
	}
	var meta lidar.SensorMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return lidar.SensorMetadata{}, fmt.Errorf("parse metadata for %s: %w", sensorName, err)
	}
	if err := meta.Validate(); err != nil {
		return lidar.SensorMetadata{}, err
	}
	return meta, nil
}

// RawBuffer fetches the encoded depth buffer of a camera sensor. The body is
// returned as-is; the codec validates its length against the metadata.
func (c *Client) RawBuffer(ctx context.Context, sensorName string) ([]byte, error) {
	return c.getCached(ctx, "CAMERASENSOR/"+sensorName)
}
