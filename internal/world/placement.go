// Content placement: the camp and the scattered resource nodes.
// Placement draws from the shared stream once at reset so a seed fully
// determines the layout.
package world

import (
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/entropy"
)

// Camp is the communal settlement: storage, shelter and rally point.
type Camp struct {
	Center        Vec2    `json:"center"`
	StorePos      Vec2    `json:"store_pos"`
	RallyPos      Vec2    `json:"rally_pos"`
	ShelterRadius float64 `json:"shelter_radius"`
}

// InShelter reports whether p is under the camp shelter.
func (c Camp) InShelter(p Vec2) bool {
	return p.Dist(c.Center) <= c.ShelterRadius
}

// PlacementConfig controls node scattering.
type PlacementConfig struct {
	Counts        map[string]int     `yaml:"counts"`         // Node kind name → count
	Yield         map[string][2]int  `yaml:"yield"`          // Node kind name → [min, max] starting yield
	RegrowSeconds map[string]float64 `yaml:"regrow_seconds"` // Node kind name → regrowth interval
	MinRadius     float64            `yaml:"min_radius"`     // Keep nodes out of the camp
	MaxRadius     float64            `yaml:"max_radius"`     // Fraction of island radius
}

// DefaultPlacementConfig returns the stock island layout.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		Counts: map[string]int{
			NodeCoconutPalm.String(): 10,
			NodeDriftwood.String():   8,
			NodeRock.String():        6,
			NodeVine.String():        6,
		},
		Yield: map[string][2]int{
			NodeCoconutPalm.String(): {4, 8},
			NodeDriftwood.String():   {6, 12},
			NodeRock.String():        {8, 14},
			NodeVine.String():        {5, 10},
		},
		RegrowSeconds: map[string]float64{
			NodeCoconutPalm.String(): 90,
			NodeDriftwood.String():   150,
			NodeRock.String():        0,
			NodeVine.String():        120,
		},
		MinRadius: 8,
		MaxRadius: 0.6,
	}
}

// NewCamp places the camp at the island center.
func NewCamp() Camp {
	return Camp{
		Center:        Vec2{},
		StorePos:      Vec2{X: 2, Z: 0},
		RallyPos:      Vec2{X: 0, Z: 3},
		ShelterRadius: 6,
	}
}

// PlaceNodes scatters resource nodes on land, in kind order, drawing from rng.
// Candidates that land in water are retried a bounded number of times.
func PlaceNodes(island *Island, rng *entropy.Stream, cfg PlacementConfig) []*Node {
	var nodes []*Node
	var next NodeID = 1
	maxR := cfg.MaxRadius * island.Config().Radius

	for k := NodeKind(0); k < NumNodeKinds; k++ {
		name := k.String()
		count := cfg.Counts[name]
		yield := cfg.Yield[name]
		for i := 0; i < count; i++ {
			var pos Vec2
			placed := false
			for attempt := 0; attempt < 16; attempt++ {
				angle := rng.Float() * 2 * math.Pi
				r := cfg.MinRadius + rng.Float()*(maxR-cfg.MinRadius)
				pos = FromHeading(angle).Scale(r)
				if island.IsLand(pos) {
					placed = true
					break
				}
			}
			if !placed {
				slog.Warn("node placement fell back to water-free ring", "kind", name)
				pos = pos.Normalize().Scale(cfg.MinRadius)
			}
			amount := rng.IntRange(yield[0], yield[1])
			nodes = append(nodes, &Node{
				ID:            next,
				Kind:          k,
				Pos:           pos,
				Remaining:     amount,
				MaxYield:      amount,
				RegrowSeconds: cfg.RegrowSeconds[name],
			})
			next++
		}
	}
	return nodes
}

// ShorePoint walks from target back toward the island center and returns the
// first land position, or false if none is found within maxDist.
func ShorePoint(island Surface, target Vec2, maxDist float64) (Vec2, bool) {
	dir := target.Scale(-1).Normalize()
	if dir == (Vec2{}) {
		return target, island.IsLand(target)
	}
	const step = 0.5
	for d := 0.0; d <= maxDist; d += step {
		p := target.Add(dir.Scale(d))
		if island.IsLand(p) {
			return p, true
		}
	}
	return Vec2{}, false
}
