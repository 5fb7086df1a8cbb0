// Needs holds the survival stats advanced every tick.
// All satisfaction values range from 0.0 (depleted) to 1.0 (satisfied).
package agents

import (
	"log/slog"
	"math"
)

// LifeStage is derived from age alone.
type LifeStage uint8

const (
	StageChild LifeStage = iota
	StageAdult
	StageElder
)

// Age thresholds in years.
const (
	AdultAge = 14.0
	ElderAge = 50.0
)

func (s LifeStage) String() string {
	switch s {
	case StageChild:
		return "child"
	case StageAdult:
		return "adult"
	case StageElder:
		return "elder"
	default:
		return "unknown"
	}
}

// StageOf maps an age in years to its life stage.
func StageOf(age float64) LifeStage {
	switch {
	case age < AdultAge:
		return StageChild
	case age < ElderAge:
		return StageAdult
	default:
		return StageElder
	}
}

// Efficiency scales work speed by life stage.
func (s LifeStage) Efficiency() float64 {
	switch s {
	case StageChild:
		return 0.5
	case StageElder:
		return 0.75
	default:
		return 1.0
	}
}

// DeathCause records why an agent died.
type DeathCause string

const (
	CauseNone          DeathCause = ""
	CauseStarvation    DeathCause = "starvation"
	CauseExhaustion    DeathCause = "exhaustion"
	CauseDrowning      DeathCause = "drowning"
	CauseSickness      DeathCause = "sickness"
	CauseOldAge        DeathCause = "old_age"
	CauseFailingHealth DeathCause = "failing_health"
	CauseChildbirth    DeathCause = "childbirth"
	CausePredator      DeathCause = "predator"
)

// Needs tracks one agent's survival state.
type Needs struct {
	Hunger float64 `json:"hunger"`
	Energy float64 `json:"energy"`
	Health float64 `json:"health"`
	Social float64 `json:"social"`
	Drive  float64 `json:"drive"` // Reproduction drive
	Age    float64 `json:"age"`   // Years

	Sick           bool    `json:"sick"`
	SickTimer      float64 `json:"sick_timer"`
	Pregnant       bool    `json:"pregnant"`
	PregnancyTimer float64 `json:"pregnancy_timer"`

	ExhaustionTimer float64 `json:"exhaustion_timer"`
	IsolationTimer  float64 `json:"isolation_timer"`

	Cause DeathCause `json:"cause,omitempty"`
}

// Stage returns the life stage for the current age.
func (n *Needs) Stage() LifeStage {
	return StageOf(n.Age)
}

// SetCause records the death cause once. Later calls are ignored.
func (n *Needs) SetCause(c DeathCause) bool {
	if n.Cause != CauseNone || c == CauseNone {
		return false
	}
	n.Cause = c
	return true
}

// sanitize clamps every bounded value into range, replacing NaN and
// infinities, and logs each correction.
func (n *Needs) sanitize() {
	n.Hunger = clampNeed("hunger", n.Hunger)
	n.Energy = clampNeed("energy", n.Energy)
	n.Health = clampNeed("health", n.Health)
	n.Social = clampNeed("social", n.Social)
	n.Drive = clampNeed("drive", n.Drive)
	if math.IsNaN(n.Age) || math.IsInf(n.Age, 0) || n.Age < 0 {
		slog.Warn("needs value out of range, clamped", "field", "age", "value", n.Age)
		n.Age = 0
	}
	for _, t := range []*float64{&n.SickTimer, &n.PregnancyTimer, &n.ExhaustionTimer, &n.IsolationTimer} {
		if math.IsNaN(*t) || math.IsInf(*t, 0) || *t < 0 {
			*t = 0
		}
	}
}

// clamp bounds values silently; used after the engine's own arithmetic.
func (n *Needs) clamp() {
	n.Hunger = clamp01(n.Hunger)
	n.Energy = clamp01(n.Energy)
	n.Health = clamp01(n.Health)
	n.Social = clamp01(n.Social)
	n.Drive = clamp01(n.Drive)
}

func clampNeed(field string, v float64) float64 {
	switch {
	case math.IsNaN(v):
		slog.Warn("needs value is NaN, reset", "field", field)
		return 0.5
	case v < 0 || v > 1:
		slog.Warn("needs value out of range, clamped", "field", field, "value", v)
		return clamp01(v)
	}
	return v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// NeedsConfig holds the per-second rates of the needs engine.
type NeedsConfig struct {
	YearsPerSecond  float64 `yaml:"years_per_second"`
	MaxAge          float64 `yaml:"max_age"`
	OldAgeDeathRate float64 `yaml:"old_age_death_rate"` // Per second per year past MaxAge

	HungerDecay      float64 `yaml:"hunger_decay"`
	MoveHungerFactor float64 `yaml:"move_hunger_factor"`
	SickHungerFactor float64 `yaml:"sick_hunger_factor"`

	RestRegen         float64 `yaml:"rest_regen"`
	ShelterBonus      float64 `yaml:"shelter_bonus"`
	MoveDrain         float64 `yaml:"move_drain"`
	WaterDrain        float64 `yaml:"water_drain"`
	DeepWaterFactor   float64 `yaml:"deep_water_factor"`
	IdleDrain         float64 `yaml:"idle_drain"`
	ExhaustionTimeout float64 `yaml:"exhaustion_timeout"` // Seconds at zero energy

	HealthDecay     float64 `yaml:"health_decay"`
	SickHealthDecay float64 `yaml:"sick_health_decay"`
	HealthRecovery  float64 `yaml:"health_recovery"`
	RecoveryMinFed  float64 `yaml:"recovery_min_fed"` // Hunger needed to heal

	SocialRegen      float64 `yaml:"social_regen"` // Per nearby agent, up to 4
	SocialDecay      float64 `yaml:"social_decay"`
	IsolationGrace   float64 `yaml:"isolation_grace"`
	IsolationPenalty float64 `yaml:"isolation_penalty"`

	DriveRate float64 `yaml:"drive_rate"`

	SickDuration       float64 `yaml:"sick_duration"`
	ContagionRate      float64 `yaml:"contagion_rate"`
	MalnutritionHunger float64 `yaml:"malnutrition_hunger"`
	MalnutritionRate   float64 `yaml:"malnutrition_rate"`

	PregnancyDuration  float64 `yaml:"pregnancy_duration"`
	ComplicationHealth float64 `yaml:"complication_health"`
	ComplicationChance float64 `yaml:"complication_chance"`
}

// DefaultNeedsConfig returns the stock rates. One in-game day is 600 s.
func DefaultNeedsConfig() NeedsConfig {
	return NeedsConfig{
		YearsPerSecond:  1.0 / 1200,
		MaxAge:          60,
		OldAgeDeathRate: 0.0005,

		HungerDecay:      0.0012,
		MoveHungerFactor: 1.5,
		SickHungerFactor: 1.5,

		RestRegen:         0.01,
		ShelterBonus:      1.5,
		MoveDrain:         0.002,
		WaterDrain:        0.004,
		DeepWaterFactor:   2.5,
		IdleDrain:         0.0005,
		ExhaustionTimeout: 60,

		HealthDecay:     0.0001,
		SickHealthDecay: 0.002,
		HealthRecovery:  0.003,
		RecoveryMinFed:  0.5,

		SocialRegen:      0.002,
		SocialDecay:      0.0005,
		IsolationGrace:   120,
		IsolationPenalty: 0.0005,

		DriveRate: 0.0008,

		SickDuration:       240,
		ContagionRate:      0.01,
		MalnutritionHunger: 0.15,
		MalnutritionRate:   0.002,

		PregnancyDuration:  900,
		ComplicationHealth: 0.3,
		ComplicationChance: 0.1,
	}
}
