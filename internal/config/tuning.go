// Package config loads the JSON tuning file for the reconstruction service.
// The schema matches the /api/lidar/params endpoint, so the same document
// works for startup configuration and runtime updates. All fields are
// optional; omitted fields keep their defaults.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/railsim-data/depthscan/internal/lidar"
	"github.com/railsim-data/depthscan/internal/lidar/scanpattern"
	"github.com/railsim-data/depthscan/internal/lidar/sensormodel"
)

// TuningConfig carries the optional tuning overrides. Pointer fields
// distinguish "absent" from zero values so partial configs are safe.
type TuningConfig struct {
	// Scan pattern params (degrees; the pattern itself works in radians)
	HStepDeg *float64 `json:"h_step_deg,omitempty"`
	VStepDeg *float64 `json:"v_step_deg,omitempty"`
	HFovDeg  *float64 `json:"h_fov_deg,omitempty"`
	VFovDeg  *float64 `json:"v_fov_deg,omitempty"`

	// Physical sensor model params
	Attenuation          *float64 `json:"attenuation,omitempty"`
	BaseDropoff          *float64 `json:"base_dropoff,omitempty"`
	ZeroIntensityDropoff *float64 `json:"zero_intensity_dropoff,omitempty"`
	IntensityLimit       *float64 `json:"intensity_limit,omitempty"`

	// Class filtering
	FilterGround  *bool    `json:"filter_ground,omitempty"`
	FilterClasses []string `json:"filter_classes,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// ModelParams applies the config's overrides to the default physical model
// parameters and validates the result.
func (c *TuningConfig) ModelParams() (sensormodel.Params, error) {
	p := sensormodel.DefaultParams()
	if c.Attenuation != nil {
		p.Attenuation = *c.Attenuation
	}
	if c.BaseDropoff != nil {
		p.BaseDropoff = *c.BaseDropoff
	}
	if c.ZeroIntensityDropoff != nil {
		p.ZeroIntensityDropoff = *c.ZeroIntensityDropoff
	}
	if c.IntensityLimit != nil {
		p.IntensityLimit = *c.IntensityLimit
	}
	if err := p.Validate(); err != nil {
		return sensormodel.Params{}, err
	}
	return p, nil
}

// Pattern builds the scan pattern for the given sensor geometry. Fields of
// view default to the render camera's, derived from the projection scales;
// steps default to 0.1 degree.
func (c *TuningConfig) Pattern(meta lidar.SensorMetadata) (scanpattern.Pattern, error) {
	hFov := meta.HorizontalFOV()
	vFov := meta.VerticalFOV()
	hStep := scanpattern.DefaultStep
	vStep := scanpattern.DefaultStep
	if c.HFovDeg != nil {
		hFov = *c.HFovDeg * math.Pi / 180
	}
	if c.VFovDeg != nil {
		vFov = *c.VFovDeg * math.Pi / 180
	}
	if c.HStepDeg != nil {
		hStep = *c.HStepDeg * math.Pi / 180
	}
	if c.VStepDeg != nil {
		vStep = *c.VStepDeg * math.Pi / 180
	}
	return scanpattern.New(hFov, vFov, hStep, vStep)
}

// FilteredClasses resolves the class filter settings into a classifier list.
// filter_ground is shorthand for terrain and track; filter_classes names
// classifiers explicitly.
func (c *TuningConfig) FilteredClasses() ([]lidar.ObjectClass, error) {
	var classes []lidar.ObjectClass
	if c.FilterGround != nil && *c.FilterGround {
		classes = append(classes, lidar.ClassTerrain, lidar.ClassTrack)
	}
	for _, name := range c.FilterClasses {
		cls, err := parseClass(name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, cls)
	}
	return classes, nil
}

func parseClass(name string) (lidar.ObjectClass, error) {
	for c := lidar.ObjectClass(0); c <= lidar.MaxObjectClass; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown object class %q", name)
}
