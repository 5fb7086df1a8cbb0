// Task execution: one step of the committed task per agent per tick.
// Missing or depleted targets abort the task; the agent replans next tick.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/fishing"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/weather"
	"github.com/talgya/castaway/internal/world"
)

func (s *Simulation) execute(a *agents.Agent, dt float64) {
	switch t := a.Task.(type) {
	case nil:
		a.State = agents.StateIdle
	case *agents.Eat:
		s.execEat(a, t, dt)
	case *agents.FetchFood:
		s.execFetchFood(a, dt)
	case *agents.Rest:
		s.execRest(a, t, dt)
	case *agents.Assist:
		s.execAssist(a, t, dt)
	case *agents.Deposit:
		s.execDeposit(a, dt)
	case *agents.Craft:
		s.execCraft(a, t, dt)
	case *agents.FetchTool:
		s.execFetchTool(a, t, dt)
	case *agents.Fish:
		s.execFish(a, t, dt)
	case *agents.Gather:
		s.execGather(a, t, dt)
	case *agents.Patrol:
		if s.walk(a, t.Target, s.cfg.Planner.InteractRange, dt) {
			s.finish(a)
		}
	case *agents.Retreat:
		if s.walk(a, t.Target, s.Camp.ShelterRadius, dt) {
			s.finish(a)
		}
	}
}

// walk moves a toward target and reports whether it is within reach.
func (s *Simulation) walk(a *agents.Agent, target world.Vec2, reach, dt float64) bool {
	if a.Pos.Dist(target) <= reach {
		return true
	}
	sw := weather.MapToSim(s.Weather.Current())
	speed := s.cfg.Planner.WalkSpeed * a.Stage().Efficiency() / sw.TravelPenalty
	next, _ := a.Pos.MoveToward(target, speed*dt)
	if d := next.Sub(a.Pos); d != (world.Vec2{}) {
		a.Heading = d.Heading()
	}
	a.Pos = next
	if len(a.Inventory.Carried()) > 0 {
		a.State = agents.StateHauling
	} else {
		a.State = agents.StateWalking
	}
	return a.Pos.Dist(target) <= reach
}

func (s *Simulation) execEat(a *agents.Agent, t *agents.Eat, dt float64) {
	a.State = agents.StateEating
	t.Remaining -= dt
	if t.Remaining > 0 {
		return
	}
	if !a.Inventory.Remove(t.Food, 1) {
		s.abort(a, "food gone")
		return
	}
	a.Needs.Eat(inventory.Nutrition[t.Food] * a.Skills.CookNutrition())
	a.Skills.AddXP(skills.Cooking, s.cfg.Planner.CookXP, 1)
	s.finish(a)
}

// execFetchFood unloads whatever is carried at the store, takes one unit of
// the freshest-spoiling food and starts eating it.
func (s *Simulation) execFetchFood(a *agents.Agent, dt float64) {
	if !s.walk(a, s.Camp.StorePos, s.cfg.Planner.InteractRange, dt) {
		return
	}
	s.depositAll(a)
	food, ok := ownFood(s.Store)
	if !ok {
		s.abort(a, "store has no food")
		return
	}
	born := s.Now()
	if age, ok := s.Store.OldestAge(food, born); ok {
		born -= age
	}
	if !s.Store.Remove(food, 1) || !a.Inventory.Add(food, 1, born) {
		s.abort(a, "could not take food")
		return
	}
	s.shareMeal(a)
	s.finish(a)
	s.commit(a, &agents.Eat{Food: food, Remaining: s.cfg.Planner.EatSeconds * a.Skills.CookTime()})
	a.State = agents.StateEating
}

func (s *Simulation) execRest(a *agents.Agent, t *agents.Rest, dt float64) {
	a.State = agents.StateResting
	if t.Forced {
		if a.Needs.Energy >= t.Until {
			s.finish(a)
		}
		return
	}
	t.Remaining -= dt
	if t.Remaining <= 0 {
		s.finish(a)
	}
}

// execAssist walks to a hungry tribe-mate and feeds them one unit.
func (s *Simulation) execAssist(a *agents.Agent, t *agents.Assist, dt float64) {
	mate := s.AgentIndex[t.Target]
	if mate == nil || !mate.Alive {
		s.abort(a, "assist target gone")
		return
	}
	if !s.walk(a, mate.Pos, s.cfg.Planner.InteractRange, dt) {
		return
	}
	food, ok := ownFood(a.Inventory)
	if !ok || !a.Inventory.Remove(food, 1) {
		s.abort(a, "no food to share")
		return
	}
	mate.Needs.Eat(inventory.Nutrition[food])
	s.Social.Apply(social.ActionHelp, a.ID, mate.ID)
	agents.AddMemory(mate, s.Tick, fmt.Sprintf("%s brought me %s when I was starving", a.Name, food), 0.6)
	s.emit("social", fmt.Sprintf("%s fed %s", a.Name, mate.Name))
	s.finish(a)
}

func (s *Simulation) execDeposit(a *agents.Agent, dt float64) {
	if !s.walk(a, s.Camp.StorePos, s.cfg.Planner.InteractRange, dt) {
		return
	}
	s.depositAll(a)
	s.finish(a)
}

// depositAll moves every carried resource into the communal store, keeping
// each stack's age. What the store cannot hold is left on the ground.
func (s *Simulation) depositAll(a *agents.Agent) {
	now := s.Now()
	for _, r := range a.Inventory.Carried() {
		n := a.Inventory.Count(r)
		born := now
		if age, ok := a.Inventory.OldestAge(r, now); ok {
			born -= age
		}
		if !s.Store.Add(r, n, born) {
			slog.Warn("communal store full, dropping haul", "agent", a.ID, "resource", r, "count", n)
		} else if inventory.Edible(r) {
			s.provider = a.ID
		}
		a.Inventory.Remove(r, n)
		s.contributed[a.ID] = true
	}
}

// shareMeal settles a meal taken from the communal store. The eater thanks
// whoever last stocked food; the provider judges whether an adult eater has
// deposited anything since their last meal.
func (s *Simulation) shareMeal(a *agents.Agent) {
	contributed := s.contributed[a.ID]
	delete(s.contributed, a.ID)
	p := s.AgentIndex[s.provider]
	if p == nil || !p.Alive || p.ID == a.ID {
		return
	}
	s.Social.Apply(social.ActionShare, p.ID, a.ID)
	switch {
	case !a.IsAdult():
	case contributed:
		s.Social.Apply(social.ActionFairTrade, a.ID, p.ID)
	default:
		s.Social.Apply(social.ActionUnfairTrade, a.ID, p.ID)
	}
}

// execCraft consumes the materials on arrival at the store, then works until
// the recipe time has passed. Once started the craft is atomic.
func (s *Simulation) execCraft(a *agents.Agent, t *agents.Craft, dt float64) {
	recipe, ok := s.cfg.Recipes[t.Tool]
	if !ok {
		s.abort(a, "unknown recipe")
		return
	}
	if !t.Started {
		if !s.walk(a, s.Camp.StorePos, s.cfg.Planner.InteractRange, dt) {
			return
		}
		if !inventory.Consume(s.Store, recipe) {
			s.abort(a, "materials gone")
			return
		}
		t.Started = true
	}

	a.State = agents.StateCrafting
	t.Progress += dt * a.Stage().Efficiency()
	if t.Progress < recipe.CraftSecond*a.Skills.CraftTime() {
		return
	}

	durability := recipe.Durability
	if durability > 1 {
		// Single-use tools stay single use however skilled the maker.
		durability = int(math.Round(float64(durability) * a.Skills.CraftDurability()))
	}
	if !s.Store.AddTool(t.Tool, max(durability, 1)) {
		slog.Warn("crafted tool could not be stored", "agent", a.ID, "tool", t.Tool)
	}
	a.Skills.AddXP(skills.Crafting, s.cfg.Planner.CraftXP, s.apprenticeship(a, skills.Crafting))
	s.Stats.Crafted++
	s.emit("craft", fmt.Sprintf("%s crafted a %s", a.Name, t.Tool))
	s.finish(a)
}

func (s *Simulation) execFetchTool(a *agents.Agent, t *agents.FetchTool, dt float64) {
	if !s.walk(a, s.Camp.StorePos, s.cfg.Planner.InteractRange, dt) {
		return
	}
	d, ok := s.Store.TakeTool(t.Tool)
	if !ok {
		s.abort(a, "tool gone")
		return
	}
	if !a.Inventory.AddTool(t.Tool, d) {
		s.Store.AddTool(t.Tool, d)
		s.abort(a, "cannot carry tool")
		return
	}
	if _, equipped := a.Inventory.Equipped(); !equipped || t.Tool == inventory.FishingSpear {
		a.Inventory.Equip(t.Tool)
	}
	s.finish(a)
}

// execFish walks to the shore stand and throws every AttemptInterval seconds.
// A fish that swims out of reach moves the stand; one that cannot be reached
// from any stand aborts the task.
func (s *Simulation) execFish(a *agents.Agent, t *agents.Fish, dt float64) {
	f := s.School.Get(t.FishID)
	if f == nil || f.Status != fishing.Alive {
		s.abort(a, "fish gone")
		return
	}
	if !a.Inventory.Equip(inventory.FishingSpear) {
		s.abort(a, "no spear")
		return
	}
	fc := s.School.Config()
	if !fishing.Eligible(fc, s.Island, t.Stand, f) {
		stand, ok := fishing.StandPoint(fc, s.Island, f)
		if !ok {
			s.abort(a, "fish out of reach")
			return
		}
		t.Stand = stand
	}
	if !s.walk(a, t.Stand, 0.25, dt) {
		return
	}
	if !a.Inventory.CanAdd(inventory.Fish, 1) {
		s.abort(a, "hands full")
		return
	}

	a.State = agents.StateFishing
	t.Cooldown -= dt
	if t.Cooldown > 0 {
		return
	}
	t.Cooldown = fc.AttemptInterval

	p := fishing.CatchProbability(fc, a.Skills.CatchRate(), a.Needs.Energy, t.Attempts)
	if !fishing.Attempt(s.rng, p) {
		t.Attempts++
		a.Skills.AddXP(skills.Fishing, s.cfg.Planner.FishMissXP, 1)
		return
	}

	a.Inventory.UseTool()
	a.Inventory.Add(inventory.Fish, 1, s.Now())
	f.Status = fishing.Caught
	s.Threats.AddBlood(f.Pos)
	a.Skills.AddXP(skills.Fishing, s.cfg.Planner.FishXP, s.apprenticeship(a, skills.Fishing))
	s.Stats.Catches++
	s.emit("fishing", fmt.Sprintf("%s speared a fish after %d misses", a.Name, t.Attempts))
	t.Attempts = 0
	s.finish(a)
}

// execGather works a node one unit at a time. The task ends when hands are
// full or the node runs dry.
func (s *Simulation) execGather(a *agents.Agent, t *agents.Gather, dt float64) {
	n := s.Node(t.Node)
	if n == nil || n.Depleted() {
		s.abort(a, "node depleted")
		return
	}
	if !s.walk(a, n.Pos, s.cfg.Planner.InteractRange, dt) {
		return
	}
	res := inventory.NodeYield[n.Kind]
	if !a.Inventory.CanAdd(res, 1) {
		s.finish(a)
		return
	}

	a.State = agents.StateGathering
	speed := a.Skills.GatherSpeed() * a.Stage().Efficiency()
	axe := false
	if n.Kind == world.NodeDriftwood && a.Inventory.Equip(inventory.StoneAxe) {
		speed *= s.cfg.Planner.AxeBonus
		axe = true
	}
	t.Progress += dt * speed
	if t.Progress < s.cfg.Planner.GatherSeconds {
		return
	}
	t.Progress -= s.cfg.Planner.GatherSeconds

	want := 1
	if s.rng.Chance(a.Skills.GatherYield()) && a.Inventory.CanAdd(res, 2) {
		want = 2
	}
	got := n.Take(want)
	a.Inventory.Add(res, got, s.Now())
	if axe {
		if broke, _ := a.Inventory.UseTool(); broke {
			agents.AddMemory(a, s.Tick, "my stone axe broke", 0.2)
		}
	}
	a.Skills.AddXP(skills.Gathering, s.cfg.Planner.GatherXP*float64(got), s.apprenticeship(a, skills.Gathering))

	if n.Depleted() {
		slog.Debug("node depleted", "node", n.String(), "agent", a.ID)
		s.finish(a)
		return
	}
	if !a.Inventory.CanAdd(res, 1) {
		s.finish(a)
	}
}

// apprenticeship is the XP multiplier from skilled adults working nearby.
func (s *Simulation) apprenticeship(a *agents.Agent, sk skills.Skill) float64 {
	sc := s.cfg.Skills
	var peers []int
	for _, b := range s.Agents {
		if b.ID == a.ID || !b.Alive || !b.IsAdult() || b.Pos.Dist(a.Pos) > sc.ApprenticeRadius {
			continue
		}
		peers = append(peers, b.Skills.Level(sk))
	}
	return skills.Apprenticeship(a.Skills.Level(sk), peers, sc.ApprenticeMargin)
}

func (s *Simulation) debugTask(a *agents.Agent, msg, reason string) {
	slog.Debug(msg, "agent", a.ID, "task", a.TaskKind().String(), "reason", reason, "tick", s.Tick)
}
