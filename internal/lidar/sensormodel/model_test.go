package sensormodel

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsim-data/depthscan/internal/lidar"
)

func TestAttenuate(t *testing.T) {
	p := Params{Attenuation: 0.004}

	assert.Equal(t, 1.0, p.Attenuate(1, 0), "no attenuation at zero distance")
	assert.InDelta(t, math.Exp(-0.4), p.Attenuate(1, 100), 1e-12)
	assert.InDelta(t, 0.5*math.Exp(-0.8), p.Attenuate(0.5, 200), 1e-12)

	// Zero attenuation rate passes intensity through.
	free := Params{Attenuation: 0}
	assert.Equal(t, 0.75, free.Attenuate(0.75, 1000))
}

func TestDropProbabilityAtZeroIntensity(t *testing.T) {
	p := Params{BaseDropoff: 0.45, ZeroIntensityDropoff: 0.4, IntensityLimit: 0.8}

	// P = P0 + P_zero - P0*P_zero when the intensity is zero.
	want := 0.45 + 0.4 - 0.45*0.4
	assert.InDelta(t, want, p.DropProbability(0), 1e-12)
}

func TestDropProbabilityAboveLimit(t *testing.T) {
	p := Params{BaseDropoff: 0.45, ZeroIntensityDropoff: 0.4, IntensityLimit: 0.8}

	// At or above the intensity limit only the base rate applies, exactly.
	assert.Equal(t, 0.45, p.DropProbability(0.8))
	assert.Equal(t, 0.45, p.DropProbability(0.9))
	assert.Equal(t, 0.45, p.DropProbability(1))
}

func TestDropProbabilityDisabledCases(t *testing.T) {
	// Non-positive limit disables intensity dropoff.
	p := Params{BaseDropoff: 0.3, ZeroIntensityDropoff: 0.4, IntensityLimit: 0}
	assert.Equal(t, 0.3, p.DropProbability(0))

	p.IntensityLimit = -1
	assert.Equal(t, 0.3, p.DropProbability(0))

	// Zero dropoff-at-zero-intensity disables it too.
	p = Params{BaseDropoff: 0.3, ZeroIntensityDropoff: 0, IntensityLimit: 0.8}
	assert.Equal(t, 0.3, p.DropProbability(0))
}

func TestDropProbabilityInterpolates(t *testing.T) {
	p := Params{BaseDropoff: 0, ZeroIntensityDropoff: 0.4, IntensityLimit: 0.8}

	// With P0 = 0 the probability is linear in intensity below the limit.
	assert.InDelta(t, 0.4, p.DropProbability(0), 1e-12)
	assert.InDelta(t, 0.2, p.DropProbability(0.4), 1e-12)
	assert.InDelta(t, 0.0, p.DropProbability(0.8), 1e-12)
}

func TestDroppedIsDeterministicPerSeed(t *testing.T) {
	p := DefaultParams()

	run := func(seed int64) []bool {
		rng := rand.New(rand.NewSource(seed))
		out := make([]bool, 100)
		for i := range out {
			out[i] = p.Dropped(0.5, rng)
		}
		return out
	}

	assert.Equal(t, run(7), run(7), "same seed must replay identically")
}

func TestDroppedExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	never := Params{BaseDropoff: 0, ZeroIntensityDropoff: 0, IntensityLimit: 0.8}
	for i := 0; i < 100; i++ {
		assert.False(t, never.Dropped(0.5, rng), "P = 0 must never drop")
	}

	always := Params{BaseDropoff: 1, ZeroIntensityDropoff: 0, IntensityLimit: 0}
	for i := 0; i < 100; i++ {
		assert.True(t, always.Dropped(0.5, rng), "P = 1 must always drop")
	}
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	cases := []struct {
		name string
		p    Params
	}{
		{"negative attenuation", Params{Attenuation: -0.1}},
		{"base dropoff below 0", Params{BaseDropoff: -0.1}},
		{"base dropoff above 1", Params{BaseDropoff: 1.1}},
		{"zero intensity dropoff above 1", Params{ZeroIntensityDropoff: 1.5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, lidar.ErrConfiguration), "want configuration error, got %v", err)
		})
	}
}
