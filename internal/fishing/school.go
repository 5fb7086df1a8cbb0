// Package fishing simulates the fish school around the island and resolves
// shore-cast catch attempts.
package fishing

import (
	"math"

	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/world"
)

// SwimState is how a fish is moving.
type SwimState uint8

const (
	Cruising SwimState = iota
	Fleeing
)

func (s SwimState) String() string {
	if s == Fleeing {
		return "fleeing"
	}
	return "cruising"
}

// Status is a fish's lifecycle status.
type Status uint8

const (
	Alive Status = iota
	Caught
	Fled
)

func (s Status) String() string {
	switch s {
	case Alive:
		return "alive"
	case Caught:
		return "caught"
	case Fled:
		return "fled"
	default:
		return "unknown"
	}
}

// Fish is one member of the school.
type Fish struct {
	ID      uint32     `json:"id"`
	Pos     world.Vec2 `json:"pos"`
	Heading float64    `json:"heading"`
	Speed   float64    `json:"speed"`
	State   SwimState  `json:"state"`
	Status  Status     `json:"status"`
}

// Key returns the fish's claim key.
func (f *Fish) Key() world.Key {
	return world.FishKey(f.ID)
}

// Config tunes the school and catch resolution.
type Config struct {
	SchoolSize  int     `yaml:"school_size"`
	RingMin     float64 `yaml:"ring_min"` // Spawn ring as a fraction of island radius
	RingMax     float64 `yaml:"ring_max"`
	BaseSpeed   float64 `yaml:"base_speed"`
	FleeSpeed   float64 `yaml:"flee_speed"`
	FleeRadius  float64 `yaml:"flee_radius"`
	Jitter      float64 `yaml:"jitter"` // Max heading change per cruising tick, radians
	MinDepth    float64 `yaml:"min_depth"`
	CastRange   float64 `yaml:"cast_range"`
	StandSearch float64 `yaml:"stand_search"` // How far inland to look for a shore stand

	AttemptInterval float64 `yaml:"attempt_interval"`
	BaseChance      float64 `yaml:"base_chance"`
	LowEnergy       float64 `yaml:"low_energy"`
	EnergyPenalty   float64 `yaml:"energy_penalty"`
	PersistStep     float64 `yaml:"persist_step"`
	PersistCap      float64 `yaml:"persist_cap"`
	MaxChance       float64 `yaml:"max_chance"`
}

// DefaultConfig returns the stock fishing parameters.
func DefaultConfig() Config {
	return Config{
		SchoolSize:  10,
		RingMin:     0.9,
		RingMax:     1.15,
		BaseSpeed:   0.8,
		FleeSpeed:   2.4,
		FleeRadius:  6,
		Jitter:      0.35,
		MinDepth:    0.5,
		CastRange:   8,
		StandSearch: 12,

		AttemptInterval: 2,
		BaseChance:      0.25,
		LowEnergy:       0.3,
		EnergyPenalty:   0.15,
		PersistStep:     0.05,
		PersistCap:      0.20,
		MaxChance:       0.95,
	}
}

// School owns every fish. Fish are kept in ID order.
type School struct {
	cfg    Config
	radius float64
	Fish   []*Fish
	nextID uint32
}

// NewSchool creates an empty school around an island of the given radius.
func NewSchool(cfg Config, islandRadius float64) *School {
	return &School{cfg: cfg, radius: islandRadius, nextID: 1}
}

// Config returns the school's parameters.
func (s *School) Config() Config { return s.cfg }

// Spawn adds n fish in the sea ring. Candidates too shallow are retried a
// bounded number of times.
func (s *School) Spawn(rng *entropy.Stream, surf world.Surface, n int) {
	for i := 0; i < n; i++ {
		var pos world.Vec2
		for attempt := 0; attempt < 12; attempt++ {
			angle := rng.FloatRange(0, 2*math.Pi)
			r := rng.FloatRange(s.cfg.RingMin, s.cfg.RingMax) * s.radius
			pos = world.FromHeading(angle).Scale(r)
			if surf.Depth(pos) >= s.cfg.MinDepth && surf.InBounds(pos) {
				break
			}
		}
		s.Fish = append(s.Fish, &Fish{
			ID:      s.nextID,
			Pos:     pos,
			Heading: rng.FloatRange(0, 2*math.Pi),
			Speed:   s.cfg.BaseSpeed,
		})
		s.nextID++
	}
}

// Get returns the fish with id, or nil.
func (s *School) Get(id uint32) *Fish {
	for _, f := range s.Fish {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Living returns the fish still in the water.
func (s *School) Living() []*Fish {
	var out []*Fish
	for _, f := range s.Fish {
		if f.Status == Alive {
			out = append(out, f)
		}
	}
	return out
}

// Update moves every living fish. A fish with a swimmer inside FleeRadius
// turns away from the nearest one, weighted by 1 − d/FleeRadius, and speeds
// up; otherwise it cruises at base speed with one jitter draw. Fish turn
// back from shallows; a fleeing fish leaving the area is gone.
func (s *School) Update(dt float64, rng *entropy.Stream, surf world.Surface, swimmers []world.Vec2) {
	for _, f := range s.Fish {
		if f.Status != Alive {
			continue
		}
		near, d, ok := nearest(f.Pos, swimmers, s.cfg.FleeRadius)
		if ok {
			w := 1 - d/s.cfg.FleeRadius
			away := f.Pos.Sub(near).Normalize()
			if away == (world.Vec2{}) {
				away = world.FromHeading(f.Heading)
			}
			dir := world.FromHeading(f.Heading).Scale(1 - w).Add(away.Scale(w))
			if dir != (world.Vec2{}) {
				f.Heading = dir.Heading()
			}
			f.Speed = s.cfg.BaseSpeed + (s.cfg.FleeSpeed-s.cfg.BaseSpeed)*w
			f.State = Fleeing
		} else {
			f.Heading += (rng.Float()*2 - 1) * s.cfg.Jitter
			f.Speed = s.cfg.BaseSpeed
			f.State = Cruising
		}

		next := f.Pos.Add(world.FromHeading(f.Heading).Scale(f.Speed * dt))
		switch {
		case !surf.InBounds(next):
			if f.State == Fleeing {
				f.Status = Fled
				continue
			}
			f.Heading += math.Pi
		case surf.Depth(next) < s.cfg.MinDepth:
			f.Heading += math.Pi
		default:
			f.Pos = next
		}
		f.Heading = math.Remainder(f.Heading, 2*math.Pi)
	}
}

// Replenish drops caught and fled fish and spawns new ones up to SchoolSize.
// It returns how many were spawned.
func (s *School) Replenish(rng *entropy.Stream, surf world.Surface) int {
	kept := s.Fish[:0]
	for _, f := range s.Fish {
		if f.Status == Alive {
			kept = append(kept, f)
		}
	}
	s.Fish = kept
	missing := s.cfg.SchoolSize - len(s.Fish)
	if missing > 0 {
		s.Spawn(rng, surf, missing)
		return missing
	}
	return 0
}

func nearest(p world.Vec2, points []world.Vec2, radius float64) (world.Vec2, float64, bool) {
	best := world.Vec2{}
	bestD := math.Inf(1)
	for _, q := range points {
		if d := p.Dist(q); d < bestD {
			best, bestD = q, d
		}
	}
	if bestD > radius {
		return world.Vec2{}, 0, false
	}
	return best, bestD, true
}
