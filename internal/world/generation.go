// Island terrain using layered simplex noise.
// Elevation is shaped by a radial falloff so the land is always a closed
// island ringed by sea; the core only ever queries it through Terrain.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain is the height oracle consumed by the core. Implementations must be
// pure: the same (x, z) always yields the same elevation.
type Terrain interface {
	Height(x, z float64) float64
}

// HeightFunc adapts a plain function to Terrain.
type HeightFunc func(x, z float64) float64

// Height implements Terrain.
func (f HeightFunc) Height(x, z float64) float64 { return f(x, z) }

// GenConfig holds island generation parameters.
type GenConfig struct {
	Seed          int64   `yaml:"seed"`           // Noise seed; 0 reuses the simulation seed
	Radius        float64 `yaml:"radius"`         // Distance from center where land gives way to sea
	MaxHeight     float64 `yaml:"max_height"`     // Peak elevation in world units
	SeaLevel      float64 `yaml:"sea_level"`      // Elevation of the water surface
	DeepWater     float64 `yaml:"deep_water"`     // Depth below sea level counted as deep water
	Octaves       int     `yaml:"octaves"`        // Noise layers
	Frequency     float64 `yaml:"frequency"`      // Base noise frequency
	Persistence   float64 `yaml:"persistence"`    // Amplitude falloff per octave
	FalloffPower  float64 `yaml:"falloff_power"`  // Sharpness of the coastline falloff
	ShoreFraction float64 `yaml:"shore_fraction"` // Fraction of radius kept as guaranteed land near the center
}

// DefaultGenConfig returns a small tropical island suited to ~25 agents.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:        60,
		MaxHeight:     12,
		SeaLevel:      0,
		DeepWater:     1.5,
		Octaves:       4,
		Frequency:     0.035,
		Persistence:   0.5,
		FalloffPower:  2.5,
		ShoreFraction: 0.35,
	}
}

// Surface classifies planar positions as land or water.
type Surface interface {
	IsLand(p Vec2) bool
	Depth(p Vec2) float64
	InBounds(p Vec2) bool
}

var _ Surface = (*Island)(nil)

// Island is a Terrain backed by opensimplex noise.
type Island struct {
	cfg   GenConfig
	noise opensimplex.Noise
}

// NewIsland builds an island oracle. The noise is seeded once; Height never
// draws randomness.
func NewIsland(cfg GenConfig) *Island {
	return &Island{
		cfg:   cfg,
		noise: opensimplex.NewNormalized(cfg.Seed),
	}
}

// Config returns the generation parameters.
func (i *Island) Config() GenConfig { return i.cfg }

// Height implements Terrain. Result is in [SeaLevel-MaxHeight, SeaLevel+MaxHeight].
func (i *Island) Height(x, z float64) float64 {
	n := octaveNoise(i.noise, x, z, i.cfg.Octaves, i.cfg.Frequency, i.cfg.Persistence)

	// Radial shaping: center is lifted, the rim sinks below the sea.
	dist := math.Hypot(x, z) / i.cfg.Radius
	core := 0.0
	if dist < i.cfg.ShoreFraction {
		core = 0.35 * (1 - dist/i.cfg.ShoreFraction)
	}
	shape := 1.0 - math.Pow(dist, i.cfg.FalloffPower)

	elev := (n*0.6+0.4)*shape + core - 0.3
	if elev > 1 {
		elev = 1
	}
	if elev < -1 {
		elev = -1
	}
	return i.cfg.SeaLevel + elev*i.cfg.MaxHeight
}

// IsLand reports whether p is above the water line.
func (i *Island) IsLand(p Vec2) bool {
	return i.Height(p.X, p.Z) >= i.cfg.SeaLevel
}

// Depth returns how far below the water line p lies (0 on land).
func (i *Island) Depth(p Vec2) float64 {
	d := i.cfg.SeaLevel - i.Height(p.X, p.Z)
	if d < 0 {
		return 0
	}
	return d
}

// IsDeep reports whether p lies in deep water.
func (i *Island) IsDeep(p Vec2) bool {
	return i.Depth(p) >= i.cfg.DeepWater
}

// InBounds reports whether p lies inside the simulated area (the island plus
// a ring of surrounding sea).
func (i *Island) InBounds(p Vec2) bool {
	return p.Len() <= i.cfg.Radius*1.25
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// Output is normalized to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}
