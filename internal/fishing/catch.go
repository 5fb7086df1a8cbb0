// Catch resolution. Fishing is shore-only: the fisher stands on land within
// cast range and the target must be in water at least MinDepth deep.
package fishing

import (
	"math"

	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/world"
)

// Eligible reports whether a fisher at stand can throw at f.
func Eligible(cfg Config, surf world.Surface, stand world.Vec2, f *Fish) bool {
	if f == nil || f.Status != Alive {
		return false
	}
	if !surf.IsLand(stand) {
		return false
	}
	return stand.Dist(f.Pos) <= cfg.CastRange && surf.Depth(f.Pos) >= cfg.MinDepth
}

// StandPoint finds a land position from which f is in cast range.
func StandPoint(cfg Config, surf world.Surface, f *Fish) (world.Vec2, bool) {
	p, ok := world.ShorePoint(surf, f.Pos, cfg.StandSearch)
	if !ok || p.Dist(f.Pos) > cfg.CastRange {
		return world.Vec2{}, false
	}
	return p, true
}

// CatchProbability is BaseChance + catchRate − EnergyPenalty (when energy is
// below LowEnergy) + min(PersistStep × attempts, PersistCap), clamped to
// [BaseChance, MaxChance].
func CatchProbability(cfg Config, catchRate, energy float64, attempts int) float64 {
	p := cfg.BaseChance + catchRate
	if energy < cfg.LowEnergy {
		p -= cfg.EnergyPenalty
	}
	p += math.Min(cfg.PersistStep*float64(max(attempts, 0)), cfg.PersistCap)
	return math.Max(cfg.BaseChance, math.Min(cfg.MaxChance, p))
}

// Attempt rolls one throw with probability p.
func Attempt(rng *entropy.Stream, p float64) bool {
	return rng.Chance(p)
}
