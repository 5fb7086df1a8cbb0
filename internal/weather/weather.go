// Package weather runs the island's seeded weather cycle and maps the current
// conditions to simulation modifiers (travel speed, storm encounter boost).
package weather

import (
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/entropy"
)

// Kind is a weather kind.
type Kind uint8

const (
	Calm Kind = iota
	Rain
	Storm
)

func (k Kind) String() string {
	switch k {
	case Calm:
		return "calm"
	case Rain:
		return "rain"
	case Storm:
		return "storm"
	default:
		return "unknown"
	}
}

// Config tunes spell lengths and transitions.
type Config struct {
	MinSpell float64 `yaml:"min_spell"` // Seconds
	MaxSpell float64 `yaml:"max_spell"`
	// Transition weights from each kind to Calm, Rain, Storm.
	FromCalm  [3]float64 `yaml:"from_calm"`
	FromRain  [3]float64 `yaml:"from_rain"`
	FromStorm [3]float64 `yaml:"from_storm"`
}

// DefaultConfig returns the stock island climate.
func DefaultConfig() Config {
	return Config{
		MinSpell:  120,
		MaxSpell:  480,
		FromCalm:  [3]float64{0.6, 0.3, 0.1},
		FromRain:  [3]float64{0.5, 0.25, 0.25},
		FromStorm: [3]float64{0.4, 0.6, 0},
	}
}

// Conditions is the current weather.
type Conditions struct {
	Kind        Kind    `json:"kind"`
	Description string  `json:"description"`
	Remaining   float64 `json:"remaining"` // Seconds left in this spell
}

// IsStorm reports whether the island is under a storm.
func (c Conditions) IsStorm() bool { return c.Kind == Storm }

// Cycle advances weather spells on the tick clock.
type Cycle struct {
	cfg     Config
	current Conditions
}

// NewCycle starts calm with a full minimum spell.
func NewCycle(cfg Config) *Cycle {
	return &Cycle{cfg: cfg, current: Conditions{Kind: Calm, Description: describe(Calm), Remaining: cfg.MinSpell}}
}

// Current returns the current conditions.
func (c *Cycle) Current() Conditions { return c.current }

// Advance counts the spell down; when it ends, one draw picks the next kind and
// one draw its length. It reports whether the weather changed.
func (c *Cycle) Advance(dt float64, rng *entropy.Stream) bool {
	c.current.Remaining -= dt
	if c.current.Remaining > 0 {
		return false
	}
	prev := c.current.Kind
	next := pick(c.weights(prev), rng.Float())
	c.current = Conditions{
		Kind:        next,
		Description: describe(next),
		Remaining:   rng.FloatRange(c.cfg.MinSpell, c.cfg.MaxSpell),
	}
	if next != prev {
		slog.Info("weather changed", "from", prev.String(), "to", next.String())
	}
	return next != prev
}

func (c *Cycle) weights(k Kind) [3]float64 {
	switch k {
	case Rain:
		return c.cfg.FromRain
	case Storm:
		return c.cfg.FromStorm
	default:
		return c.cfg.FromCalm
	}
}

func pick(w [3]float64, u float64) Kind {
	total := w[0] + w[1] + w[2]
	if total <= 0 {
		return Calm
	}
	acc := 0.0
	for i, v := range w {
		acc += v / total
		if u < acc {
			return Kind(i)
		}
	}
	return Kind(len(w) - 1)
}

// SimWeather holds simulation-mapped weather modifiers.
type SimWeather struct {
	TravelPenalty float64 // Divides walking speed
	Storm         bool    // Boosts encounter chances
	Description   string
}

// MapToSim converts conditions to simulation modifiers.
func MapToSim(c Conditions) SimWeather {
	sw := SimWeather{TravelPenalty: 1.0, Description: c.Description}
	switch c.Kind {
	case Storm:
		sw.TravelPenalty = 1.5
		sw.Storm = true
	case Rain:
		sw.TravelPenalty = 1.15
	}
	sw.TravelPenalty = math.Max(1, sw.TravelPenalty)
	return sw
}

func describe(k Kind) string {
	switch k {
	case Rain:
		return "warm rain over the lagoon"
	case Storm:
		return "a squall lashes the island"
	default:
		return "calm seas and trade winds"
	}
}
