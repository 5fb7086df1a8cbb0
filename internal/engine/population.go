// Population dynamics: needs, deaths, mating and births.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/social"
)

// advanceNeeds runs the needs engine for a and handles its events. It
// returns false when a died.
func (s *Simulation) advanceNeeds(a *agents.Agent, dt float64) bool {
	out := agents.Advance(&a.Needs, dt, s.needsContext(a), s.rng, s.cfg.Needs)

	for _, ev := range out.Events {
		switch ev {
		case agents.EventFellSick:
			agents.AddMemory(a, s.Tick, "caught a fever from a sick tribe-mate", 0.5)
			s.emit("sickness", fmt.Sprintf("%s fell sick", a.Name))
		case agents.EventMalnourished:
			agents.AddMemory(a, s.Tick, "fell ill from hunger", 0.5)
			s.emit("sickness", fmt.Sprintf("%s fell ill from hunger", a.Name))
		case agents.EventRecovered:
			s.emit("sickness", fmt.Sprintf("%s recovered", a.Name))
		case agents.EventIsolated:
			agents.AddMemory(a, s.Tick, "too long alone", 0.3)
		case agents.EventBirthDue:
			s.births = append(s.births, a.ID)
		}
	}

	if !out.Alive {
		s.kill(a, out.Cause)
		return false
	}
	return true
}

func (s *Simulation) needsContext(a *agents.Agent) agents.Context {
	pc := s.cfg.Planner
	ctx := agents.Context{
		Moving:      a.State.Moving(),
		Resting:     a.State == agents.StateResting,
		InShelter:   s.Camp.InShelter(a.Pos),
		InWater:     !s.Island.IsLand(a.Pos),
		InDeepWater: s.Island.IsDeep(a.Pos),
	}
	for _, b := range s.Agents {
		if b.ID == a.ID || !b.Alive {
			continue
		}
		d := a.Pos.Dist(b.Pos)
		if d <= pc.SocialRadius {
			ctx.NearbyAgents++
		}
		if b.Needs.Sick && d <= pc.ContagionRadius {
			ctx.NearSickAgent = true
		}
	}
	return ctx
}

// kill is the one terminal transition. Claims are released at once; the
// end-of-tick sweep catches anything left.
func (s *Simulation) kill(a *agents.Agent, cause agents.DeathCause) {
	s.finish(a)
	if !a.Kill(cause, s.Tick) {
		return
	}
	s.Claims.ReleaseAll(a.ID)
	if a.Needs.Pregnant {
		// The unborn child is lost. A birth already due keeps its father.
		delete(s.fathers, a.ID)
	}
	delete(s.contributed, a.ID)

	s.Stats.Deaths++
	s.Stats.Causes[string(a.Needs.Cause)]++
	slog.Info("agent died",
		"agent", a.ID,
		"name", a.Name,
		"cause", string(a.Needs.Cause),
		"age", fmt.Sprintf("%.1f", a.Needs.Age),
		"tick", s.Tick,
	)
	s.emit("death", fmt.Sprintf("%s died (%s) at age %.0f", a.Name, a.Needs.Cause, a.Needs.Age))

	for _, kin := range s.Social.Family(a.ID) {
		if k := s.AgentIndex[kin]; k != nil && k.Alive {
			agents.AddMemory(k, s.Tick, fmt.Sprintf("lost %s to %s", a.Name, a.Needs.Cause), 0.9)
		}
	}
}

// finalizeDeaths releases anything still held by the dead and drops dead
// threats.
func (s *Simulation) finalizeDeaths() {
	for _, a := range s.Agents {
		if a.Alive {
			continue
		}
		if keys := s.Claims.ReleaseAll(a.ID); len(keys) > 0 {
			slog.Warn("released claims of dead agent", "agent", a.ID, "claims", len(keys))
		}
	}
	s.Threats.Prune()
}

// processMating pairs adults whose drive is high. A pair must be mutual
// friends or already partners, never enemies, and never close kin. Each eligible pair makes
// one conception roll; a failed roll halves both drives.
func (s *Simulation) processMating() {
	pc := s.cfg.Planner
	for _, mother := range s.Agents {
		if !s.canMate(mother) || mother.Sex != agents.SexFemale || mother.Needs.Pregnant {
			continue
		}
		for _, father := range s.Agents {
			if !s.canMate(father) || father.Sex != agents.SexMale {
				continue
			}
			if mother.Pos.Dist(father.Pos) > pc.MateRadius || closeKin(mother, father) {
				continue
			}
			if s.Social.IsEnemy(mother.ID, father.ID) || s.Social.IsEnemy(father.ID, mother.ID) {
				continue
			}
			if !s.Social.MutualFriends(mother.ID, father.ID) && !s.Social.IsFamily(mother.ID, father.ID) {
				continue
			}
			if !s.rng.Chance(pc.ConceiveChance) {
				mother.Needs.Drive /= 2
				father.Needs.Drive /= 2
				break
			}
			mother.Needs.Conceive(s.cfg.Needs)
			father.Needs.Drive = 0
			s.fathers[mother.ID] = father.ID
			s.Social.Apply(social.ActionMate, father.ID, mother.ID)
			s.Social.AddFamily(mother.ID, father.ID)
			s.emit("social", fmt.Sprintf("%s and %s are expecting a child", mother.Name, father.Name))
			break
		}
	}
}

func (s *Simulation) canMate(a *agents.Agent) bool {
	return a.Alive && a.Stage() == agents.StageAdult && a.Needs.Drive >= s.cfg.Planner.MateDrive
}

// closeKin reports parent/child or sibling relations.
func closeKin(a, b *agents.Agent) bool {
	for _, p := range a.Parents {
		if p == b.ID {
			return true
		}
		for _, q := range b.Parents {
			if p == q {
				return true
			}
		}
	}
	for _, p := range b.Parents {
		if p == a.ID {
			return true
		}
	}
	return false
}

// processBirths delivers every child due this tick. A mother lost in
// childbirth still delivers.
func (s *Simulation) processBirths() {
	for _, id := range s.births {
		mother := s.AgentIndex[id]
		if mother == nil {
			continue
		}
		var father *agents.Agent
		if fid, ok := s.fathers[id]; ok {
			father = s.AgentIndex[fid]
			delete(s.fathers, id)
		}

		child := s.Spawner.SpawnChild(s.rng, mother, father, s.Tick)
		s.addAgent(child)
		s.Stats.Births++

		for _, p := range child.Parents {
			s.Social.AddFamily(child.ID, p)
			s.Social.Set(child.ID, p, social.FriendThreshold)
			if parent := s.AgentIndex[p]; parent != nil && parent.Alive {
				s.Social.Set(p, child.ID, social.FriendThreshold)
				agents.AddMemory(parent, s.Tick, fmt.Sprintf("welcomed %s into the world", child.Name), 0.8)
			}
		}
		slog.Info("agent born", "agent", child.ID, "name", child.Name, "mother", mother.ID, "tick", s.Tick)
		s.emit("birth", fmt.Sprintf("%s was born to %s", child.Name, mother.Name))
	}
	s.births = s.births[:0]
}

func (s *Simulation) addAgent(a *agents.Agent) {
	s.Agents = append(s.Agents, a)
	s.AgentIndex[a.ID] = a
}
