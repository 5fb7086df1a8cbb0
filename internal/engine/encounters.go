// Threat encounters: paced spawn rolls, the threat state machine, and hunt
// resolution when a threat reaches its prey.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/threats"
)

func (s *Simulation) processThreats(dt float64) {
	if s.Threats.CheckDue(dt) {
		s.rollEncounters()
	}
	for _, e := range s.Threats.Update(dt, s.Island, s.preyFor) {
		s.resolveFight(e)
	}
}

// rollEncounters makes one roll per kind with no live instance. A kind whose
// location gate is closed (no eligible prey) does not roll.
func (s *Simulation) rollEncounters() {
	cond := threats.Conditions{
		Band:  threats.BandAt(s.Hour()),
		Storm: s.Weather.Current().IsStorm(),
	}
	for _, k := range s.Threats.Kinds() {
		if s.Threats.Active(k) != nil {
			continue
		}
		prey := s.preyFor(k)
		if len(prey) == 0 {
			continue
		}
		target := prey[0]
		cond.Blood = s.Threats.BloodNear(target.Pos)
		if th := s.Threats.Roll(s.rng, k, cond, target.Pos); th != nil {
			s.emit("threat", fmt.Sprintf("%s was sighted near %s", th.Name, s.AgentIndex[target.ID].Name))
		}
	}
}

// preyFor lists, in ID order, the living agents kind k can target: water
// threats take swimmers and shore fishers, inland threats take anyone far
// enough from camp.
func (s *Simulation) preyFor(k threats.Kind) []threats.Prey {
	kc := s.Threats.KindConfig(k)
	var out []threats.Prey
	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		var ok bool
		switch kc.Habitat {
		case threats.HabitatWater:
			ok = !s.Island.IsLand(a.Pos) || a.State == agents.StateFishing
		default:
			ok = s.Island.IsLand(a.Pos) && a.Pos.Dist(s.Camp.Center) >= kc.MinCampDistance
		}
		if ok {
			out = append(out, threats.Prey{ID: a.ID, Pos: a.Pos})
		}
	}
	return out
}

// resolveFight settles one strike. Adults near the target form the hunting
// party; a child target fights too but is not counted as a hunter. Adults
// who count the target an enemy stand aside. After a failed hunt every
// survivor runs for the camp.
func (s *Simulation) resolveFight(e threats.Engagement) {
	target := s.AgentIndex[e.Target]
	th := e.Threat
	if target == nil || !target.Alive || th.State == threats.Dead {
		return
	}
	kc := s.Threats.KindConfig(th.Kind)
	cfg := s.Threats.Config()

	var hunters, deserters []*agents.Agent
	for _, a := range s.Agents {
		if !a.Alive || !a.IsAdult() || a.Pos.Dist(target.Pos) > cfg.HunterRadius {
			continue
		}
		if a.ID != target.ID && s.Social.IsEnemy(a.ID, target.ID) {
			deserters = append(deserters, a)
			continue
		}
		hunters = append(hunters, a)
	}
	participants := hunters
	if !target.IsAdult() {
		participants = append(append([]*agents.Agent(nil), hunters...), target)
	}

	party := threats.Party{Hunters: len(hunters), Participants: len(participants)}
	for _, h := range hunters {
		if h.Inventory.ToolCount(inventory.HuntingSpear) > 0 {
			party.Armed = true
		}
		party.AvgCombat += h.Skills.Fraction(skills.Combat)
	}
	if len(hunters) > 0 {
		party.AvgCombat /= float64(len(hunters))
	}

	res := threats.Resolve(s.rng, cfg, kc, party)
	if res.Hazard {
		s.emit("threat", fmt.Sprintf("%s: %s!", th.Name, kc.HazardName))
	}
	for _, idx := range res.Casualties {
		victim := participants[idx]
		s.kill(victim, agents.CausePredator)
	}

	var survivors []*agents.Agent
	for _, h := range hunters {
		if h.Alive {
			survivors = append(survivors, h)
			if h.Inventory.Equip(inventory.HuntingSpear) {
				h.Inventory.UseTool()
			}
		}
	}

	for _, d := range deserters {
		s.Social.Apply(social.ActionBetrayal, d.ID, target.ID)
		if target.Alive {
			agents.AddMemory(target, s.Tick, fmt.Sprintf("%s left me to face %s", d.Name, th.Name), 0.8)
		}
		s.emit("social", fmt.Sprintf("%s stood by while %s fought %s", d.Name, target.Name, th.Name))
	}

	if !res.Success {
		th.Damage(kc.FailDamage*float64(max(len(survivors), 1)), kc)
		slog.Debug("hunt failed", "threat", th.Name, "hunters", len(hunters), "chance", res.Chance)
		for _, p := range participants {
			if p.Alive {
				s.retreat(p)
			}
		}
		return
	}

	th.Slay()
	s.Stats.Hunts++
	now := s.Now()
	for _, d := range res.Loot {
		if !s.Store.Add(d.Resource, d.Count, now) {
			slog.Warn("no room for hunt loot", "resource", d.Resource, "count", d.Count)
		}
	}
	s.emit("threat", fmt.Sprintf("%d hunters slew %s", len(hunters), th.Name))

	for i, h := range survivors {
		h.Skills.AddXP(skills.Combat, s.cfg.Planner.CombatXP, 1)
		agents.AddMemory(h, s.Tick, fmt.Sprintf("helped slay %s", th.Name), 0.7)
		for _, other := range survivors[i+1:] {
			s.Social.Apply(social.ActionTeamUp, h.ID, other.ID)
		}
		if h.ID != target.ID && target.Alive {
			s.Social.Apply(social.ActionProtect, h.ID, target.ID)
		}
	}

	if kc.Named {
		living := s.livingIDs()
		for _, h := range survivors {
			h.Kills++
			r := s.Social.GrantRenown(h.ID, h.Kills, living)
			if r == social.RenownNone {
				continue
			}
			agents.AddMemory(h, s.Tick, fmt.Sprintf("hailed as a %s of the island", r), 1.0)
			slog.Info("renown earned", "agent", h.ID, "name", h.Name, "renown", r.String(), "kills", h.Kills)
			s.emit("social", fmt.Sprintf("%s is now a %s", h.Name, r))
		}
	}
}

// retreat drops whatever a was doing and sends it to the camp shelter.
func (s *Simulation) retreat(a *agents.Agent) {
	if _, ok := a.Task.(*agents.Retreat); ok {
		return
	}
	s.abort(a, "retreating")
	s.commit(a, &agents.Retreat{Target: s.Camp.Center})
}

func (s *Simulation) livingIDs() []agents.AgentID {
	var out []agents.AgentID
	for _, a := range s.Agents {
		if a.Alive {
			out = append(out, a.ID)
		}
	}
	return out
}
