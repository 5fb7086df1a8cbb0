// Encounter and combat rolls.
package threats

import (
	"math"

	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
)

// Band is a time-of-day band on the tick clock.
type Band uint8

const (
	BandDawn Band = iota
	BandDay
	BandDusk
	BandNight
)

func (b Band) String() string {
	switch b {
	case BandDawn:
		return "dawn"
	case BandDay:
		return "day"
	case BandDusk:
		return "dusk"
	default:
		return "night"
	}
}

// BandAt maps an hour in [0, 24) to its band.
func BandAt(hour float64) Band {
	switch {
	case hour >= 5 && hour < 8:
		return BandDawn
	case hour >= 8 && hour < 18:
		return BandDay
	case hour >= 18 && hour < 21:
		return BandDusk
	default:
		return BandNight
	}
}

// Conditions are the environmental multipliers of one encounter check.
type Conditions struct {
	Band  Band
	Storm bool
	Blood bool
}

// EncounterChance is base × band × storm × blood (blood-drawn kinds only).
// A closed location gate is expressed by the caller not checking at all.
func EncounterChance(cfg Config, k KindConfig, c Conditions) float64 {
	p := k.Encounter * k.Bands.For(c.Band)
	if c.Storm {
		p *= cfg.StormMultiplier
	}
	if c.Blood && k.Blood {
		p *= cfg.BloodMultiplier
	}
	return math.Min(math.Max(p, 0), 1)
}

// Party describes the agents fighting one threat.
type Party struct {
	Hunters   int
	Armed     bool    // Anyone carries a hunting spear
	AvgCombat float64 // Mean combat level fraction of the hunters
	// Participants rolls casualties; hunters plus an unarmed target.
	Participants int
}

// SuccessChance is base + HunterBonus × (hunters − 1) + WeaponBonus + CombatWin,
// halved below the kind's minimum group and capped.
func SuccessChance(cfg Config, k KindConfig, p Party) float64 {
	if p.Hunters <= 0 {
		return 0
	}
	s := k.BaseSuccess + cfg.HunterBonus*float64(p.Hunters-1) + skills.CombatWinAt(p.AvgCombat)
	if p.Armed {
		s += cfg.WeaponBonus
	}
	if p.Hunters < k.MinGroup {
		s *= cfg.UndermannedFactor
	}
	return math.Max(0, math.Min(cfg.SuccessCap, s))
}

// CasualtyChance is the per-participant death chance of one failed fight.
func CasualtyChance(cfg Config, k KindConfig, p Party, hazard bool) float64 {
	c := k.Casualty
	if p.Hunters <= 1 {
		c *= cfg.SoloCasualty
	}
	if hazard {
		c *= cfg.HazardCasualty
	}
	return math.Min(c, 1)
}

// Drop is one looted resource.
type Drop struct {
	Resource inventory.Resource `json:"resource"`
	Count    int                `json:"count"`
}

// Result is the outcome of one fight.
type Result struct {
	Success    bool    `json:"success"`
	Chance     float64 `json:"chance"`
	Hazard     bool    `json:"hazard"`
	Casualties []int   `json:"casualties,omitempty"` // Participant indexes killed
	Loot       []Drop  `json:"loot,omitempty"`
}

// Resolve rolls one fight in fixed order: success, hazard, then either loot
// on success or each participant's casualty on failure. A slain threat
// takes nobody with it.
func Resolve(rng *entropy.Stream, cfg Config, k KindConfig, p Party) Result {
	res := Result{Chance: SuccessChance(cfg, k, p)}
	res.Success = rng.Chance(res.Chance)
	res.Hazard = rng.Chance(k.Hazard)

	if res.Success {
		for _, l := range k.Loot {
			n := rng.IntRange(l.Min, l.Max)
			if n > 0 {
				res.Loot = append(res.Loot, Drop{Resource: l.Resource, Count: n})
			}
		}
		return res
	}

	casualty := CasualtyChance(cfg, k, p, res.Hazard)
	for i := 0; i < p.Participants; i++ {
		if rng.Chance(casualty) {
			res.Casualties = append(res.Casualties, i)
		}
	}
	return res
}
