// Camp life: time spent near tribe-mates builds goodwill, and enemies who
// share ground come to blows.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/social"
)

// processCompany runs once per simulated hour over every pair of living
// agents within SocialRadius, in ID order. Friendly or neutral pairs warm
// to each other; a pair where either side is an enemy may quarrel instead.
func (s *Simulation) processCompany() {
	pc := s.cfg.Planner
	for i, a := range s.Agents {
		if !a.Alive {
			continue
		}
		for _, b := range s.Agents[i+1:] {
			if !b.Alive || a.Pos.Dist(b.Pos) > pc.SocialRadius {
				continue
			}
			if s.Social.IsEnemy(a.ID, b.ID) || s.Social.IsEnemy(b.ID, a.ID) {
				if a.IsAdult() && b.IsAdult() && s.rng.Chance(pc.QuarrelChance) {
					s.quarrel(a, b)
				}
				continue
			}
			s.Social.Adjust(a.ID, b.ID, pc.CompanyDelta)
			s.Social.Adjust(b.ID, a.ID, pc.CompanyDelta)
		}
	}
}

// quarrel makes whichever of a and b thinks less of the other strike first.
// A fight hurts but never kills.
func (s *Simulation) quarrel(a, b *agents.Agent) {
	attacker, victim := a, b
	if s.Social.Opinion(b.ID, a.ID) < s.Social.Opinion(a.ID, b.ID) {
		attacker, victim = b, a
	}
	s.Social.Apply(social.ActionFight, attacker.ID, victim.ID)
	h := victim.Needs.Health
	victim.Needs.Health = math.Max(h-s.cfg.Planner.FightDamage, math.Min(h, 0.05))

	agents.AddMemory(victim, s.Tick, fmt.Sprintf("%s struck me", attacker.Name), 0.6)
	slog.Debug("quarrel", "attacker", attacker.ID, "victim", victim.ID, "tick", s.Tick)
	s.emit("social", fmt.Sprintf("%s and %s came to blows", attacker.Name, victim.Name))
}
