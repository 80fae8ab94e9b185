// Package sensormodel implements the physical signal model of the emulated
// LiDAR: exponential atmospheric attenuation of the reflected intensity and
// the stochastic dropoff that suppresses weak returns.
//
// The model is adapted from the CARLA LiDAR simulation. A return with raw
// intensity I0 at distance d attenuates to
//
//	I = I0 * exp(-a*d)
//
// and is then dropped with probability
//
//	P = P0 + P_I - P0*P_I    with P_I = (1 - I/I_limit) * P_zero
//
// where P0 is the base dropoff rate, P_zero the dropoff rate at zero
// intensity and I_limit the intensity above which no intensity-based
// dropoff occurs. Intensity-based dropoff is inactive (P = P0) when
// I_limit <= 0, P_zero == 0, or I >= I_limit.
package sensormodel

import (
	"math"
	"math/rand"

	"github.com/railsim-data/depthscan/internal/lidar"
)

// Default model parameters, matching the reference sensor tuning.
const (
	DefaultAttenuation          = 0.004 // 1/m
	DefaultBaseDropoff          = 0.45
	DefaultZeroIntensityDropoff = 0.4
	DefaultIntensityLimit       = 0.8
)

// Params holds the physical model parameters.
type Params struct {
	Attenuation          float64 `json:"attenuation"`            // atmosphere attenuation rate, 1/m, >= 0
	BaseDropoff          float64 `json:"base_dropoff"`           // P0 in [0,1]
	ZeroIntensityDropoff float64 `json:"zero_intensity_dropoff"` // P_zero in [0,1]
	IntensityLimit       float64 `json:"intensity_limit"`        // I_limit; <= 0 disables intensity dropoff
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Attenuation:          DefaultAttenuation,
		BaseDropoff:          DefaultBaseDropoff,
		ZeroIntensityDropoff: DefaultZeroIntensityDropoff,
		IntensityLimit:       DefaultIntensityLimit,
	}
}

// Validate checks the parameter invariants. Violations are configuration
// errors raised before any reconstruction attempt.
func (p Params) Validate() error {
	if p.Attenuation < 0 {
		return lidar.ConfigurationErrorf("attenuation must be non-negative, got %g", p.Attenuation)
	}
	if p.BaseDropoff < 0 || p.BaseDropoff > 1 {
		return lidar.ConfigurationErrorf("base dropoff must be in [0,1], got %g", p.BaseDropoff)
	}
	if p.ZeroIntensityDropoff < 0 || p.ZeroIntensityDropoff > 1 {
		return lidar.ConfigurationErrorf("zero intensity dropoff must be in [0,1], got %g", p.ZeroIntensityDropoff)
	}
	return nil
}

// Attenuate returns the intensity of a return after traveling distance d.
func (p Params) Attenuate(rawIntensity, d float64) float64 {
	return rawIntensity * math.Exp(-p.Attenuation*d)
}

// DropProbability returns the probability that a return with attenuated
// intensity i is suppressed.
func (p Params) DropProbability(i float64) float64 {
	if p.IntensityLimit <= 0 || p.ZeroIntensityDropoff == 0 || i >= p.IntensityLimit {
		return p.BaseDropoff
	}
	pi := (1 - i/p.IntensityLimit) * p.ZeroIntensityDropoff
	return p.BaseDropoff + pi - p.BaseDropoff*pi
}

// Dropped decides whether a return with attenuated intensity i is
// suppressed, consuming one uniform [0,1) draw from the caller's generator.
// The RNG is caller-owned and explicitly seeded so runs replay exactly.
func (p Params) Dropped(i float64, rng *rand.Rand) bool {
	return rng.Float64() < p.DropProbability(i)
}
