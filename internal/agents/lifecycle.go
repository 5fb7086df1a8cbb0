// Needs advancement: the per-tick survival update and death rules.
// Steps run in a fixed order and every random branch draws once when its
// gate is open, so the draw sequence depends only on state.
package agents

import (
	"math"

	"github.com/talgya/castaway/internal/entropy"
)

// Context is what the needs engine knows about the agent's surroundings.
type Context struct {
	Moving        bool
	Resting       bool
	InShelter     bool
	InWater       bool
	InDeepWater   bool
	NearbyAgents  int
	NearSickAgent bool
}

// NeedsEvent is a notable non-fatal transition.
type NeedsEvent uint8

const (
	EventFellSick NeedsEvent = iota
	EventMalnourished
	EventRecovered
	EventBirthDue
	EventIsolated
)

func (e NeedsEvent) String() string {
	switch e {
	case EventFellSick:
		return "fell_sick"
	case EventMalnourished:
		return "malnourished"
	case EventRecovered:
		return "recovered"
	case EventBirthDue:
		return "birth_due"
	case EventIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Advance call.
type Outcome struct {
	Alive  bool
	Cause  DeathCause
	Events []NeedsEvent
}

// Advance moves n forward by dt seconds. Evaluation stops at the first death.
// A dead Needs (cause already set) is returned unchanged without drawing.
func Advance(n *Needs, dt float64, ctx Context, rng *entropy.Stream, cfg NeedsConfig) Outcome {
	if n.Cause != CauseNone {
		return Outcome{Alive: false, Cause: n.Cause}
	}
	n.sanitize()

	var out Outcome
	die := func(c DeathCause) Outcome {
		n.SetCause(c)
		n.clamp()
		out.Alive = false
		out.Cause = n.Cause
		return out
	}

	// Aging.
	n.Age += dt * cfg.YearsPerSecond
	if n.Age > cfg.MaxAge {
		p := cfg.OldAgeDeathRate * (n.Age - cfg.MaxAge + 1) * dt
		if rng.Chance(p) {
			return die(CauseOldAge)
		}
	}

	// Hunger.
	decay := cfg.HungerDecay
	if ctx.Moving {
		decay *= cfg.MoveHungerFactor
	}
	if n.Sick {
		decay *= cfg.SickHungerFactor
	}
	n.Hunger -= decay * dt
	if n.Hunger <= 0 {
		n.Hunger = 0
		return die(CauseStarvation)
	}

	// Energy.
	if ctx.Resting {
		regen := cfg.RestRegen
		if ctx.InShelter {
			regen *= cfg.ShelterBonus
		}
		n.Energy += regen * dt
	} else {
		drain := 0.0
		if ctx.Moving {
			drain += cfg.MoveDrain
		}
		if ctx.InWater || ctx.InDeepWater {
			drain += cfg.WaterDrain
		}
		if ctx.InDeepWater {
			drain *= cfg.DeepWaterFactor
		}
		if drain == 0 {
			drain = cfg.IdleDrain
		}
		n.Energy -= drain * dt
	}
	n.Energy = clamp01(n.Energy)
	if n.Energy <= 0 {
		n.ExhaustionTimer += dt
		if n.ExhaustionTimer >= cfg.ExhaustionTimeout {
			if ctx.InDeepWater {
				return die(CauseDrowning)
			}
			return die(CauseExhaustion)
		}
	} else {
		n.ExhaustionTimer = 0
	}

	// Health.
	n.Health -= cfg.HealthDecay * dt
	if n.Sick {
		n.Health -= cfg.SickHealthDecay * dt
	}
	if ctx.Resting && n.Hunger >= cfg.RecoveryMinFed && !n.Sick {
		n.Health += cfg.HealthRecovery * dt
	}
	n.Health = math.Min(n.Health, 1)
	if n.Health <= 0 {
		return die(n.healthCause())
	}

	// Social.
	if ctx.NearbyAgents > 0 {
		n.Social += cfg.SocialRegen * float64(min(ctx.NearbyAgents, 4)) * dt
	} else {
		n.Social -= cfg.SocialDecay * dt
	}
	n.Social = clamp01(n.Social)
	if n.Social <= 0 {
		wasGrace := n.IsolationTimer <= cfg.IsolationGrace
		n.IsolationTimer += dt
		if n.IsolationTimer > cfg.IsolationGrace {
			if wasGrace {
				out.Events = append(out.Events, EventIsolated)
			}
			n.Health -= cfg.IsolationPenalty * dt
			if n.Health <= 0 {
				return die(n.healthCause())
			}
		}
	} else {
		n.IsolationTimer = 0
	}

	// Reproduction drive.
	if n.Stage() == StageAdult && !n.Pregnant {
		n.Drive += cfg.DriveRate * dt
	}

	// Sickness.
	if n.Sick {
		n.SickTimer -= dt
		if n.SickTimer <= 0 {
			n.Sick = false
			n.SickTimer = 0
			out.Events = append(out.Events, EventRecovered)
		}
	} else {
		if ctx.NearSickAgent && rng.Chance(cfg.ContagionRate*dt) {
			n.Sick = true
			n.SickTimer = cfg.SickDuration
			out.Events = append(out.Events, EventFellSick)
		}
		if !n.Sick && n.Hunger < cfg.MalnutritionHunger && rng.Chance(cfg.MalnutritionRate*dt) {
			n.Sick = true
			n.SickTimer = cfg.SickDuration
			out.Events = append(out.Events, EventMalnourished)
		}
	}

	// Pregnancy.
	if n.Pregnant {
		n.PregnancyTimer -= dt
		if n.PregnancyTimer <= 0 {
			n.Pregnant = false
			n.PregnancyTimer = 0
			out.Events = append(out.Events, EventBirthDue)
			if n.Health < cfg.ComplicationHealth && rng.Chance(cfg.ComplicationChance) {
				return die(CauseChildbirth)
			}
		}
	}

	n.clamp()
	out.Alive = true
	return out
}

// healthCause resolves a health-depletion death. Sickness is checked before
// age.
func (n *Needs) healthCause() DeathCause {
	n.Health = 0
	if n.Sick {
		return CauseSickness
	}
	if n.Stage() == StageElder {
		return CauseOldAge
	}
	return CauseFailingHealth
}

// Conceive starts a pregnancy and spends the reproduction drive.
func (n *Needs) Conceive(cfg NeedsConfig) bool {
	if n.Pregnant || n.Cause != CauseNone {
		return false
	}
	n.Pregnant = true
	n.PregnancyTimer = cfg.PregnancyDuration
	n.Drive = 0
	return true
}

// Eat restores hunger by nutrition.
func (n *Needs) Eat(nutrition float64) {
	n.Hunger = clamp01(n.Hunger + nutrition)
}
