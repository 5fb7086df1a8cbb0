// Task planner: the ordered rule cascade that commits one task per idle
// agent. The first rule that matches wins; claims are taken before a task
// is committed so two agents never plan against the same target.
package engine

import (
	"math"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/fishing"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/world"
)

// PlannerConfig tunes planning and task execution.
type PlannerConfig struct {
	AssistRange  float64 `yaml:"assist_range"`
	SurplusFood  int     `yaml:"surplus_food"` // Own food units needed before sharing
	PatrolRadius float64 `yaml:"patrol_radius"`
	IdleRest     float64 `yaml:"idle_rest"`   // Seconds of an ordinary rest
	RestUntil    float64 `yaml:"rest_until"`  // Energy that ends a forced rest
	EatSeconds   float64 `yaml:"eat_seconds"` // Base meal time
	ToolStock    int     `yaml:"tool_stock"`  // Communal target per tool kind

	WalkSpeed     float64 `yaml:"walk_speed"` // Metres per second
	InteractRange float64 `yaml:"interact_range"`
	GatherSeconds float64 `yaml:"gather_seconds"` // Work per unit at speed 1
	AxeBonus      float64 `yaml:"axe_bonus"`      // Wood gathering speed with an axe

	SocialRadius    float64 `yaml:"social_radius"`
	ContagionRadius float64 `yaml:"contagion_radius"`
	MateRadius      float64 `yaml:"mate_radius"`
	MateDrive       float64 `yaml:"mate_drive"`
	ConceiveChance  float64 `yaml:"conceive_chance"`
	CompanyDelta    float64 `yaml:"company_delta"`  // Opinion gained per hour spent together
	QuarrelChance   float64 `yaml:"quarrel_chance"` // Per hour, for enemies in company
	FightDamage     float64 `yaml:"fight_damage"`

	GatherXP   float64 `yaml:"gather_xp"`
	FishXP     float64 `yaml:"fish_xp"`
	FishMissXP float64 `yaml:"fish_miss_xp"`
	CraftXP    float64 `yaml:"craft_xp"`
	CookXP     float64 `yaml:"cook_xp"`
	CombatXP   float64 `yaml:"combat_xp"`
}

// DefaultPlannerConfig returns the stock planner tuning.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		AssistRange:  25,
		SurplusFood:  1,
		PatrolRadius: 20,
		IdleRest:     6,
		RestUntil:    0.6,
		EatSeconds:   3,
		ToolStock:    2,

		WalkSpeed:     1.4,
		InteractRange: 1.5,
		GatherSeconds: 4,
		AxeBonus:      1.5,

		SocialRadius:    6,
		ContagionRadius: 3,
		MateRadius:      6,
		MateDrive:       0.8,
		ConceiveChance:  0.3,
		CompanyDelta:    0.5,
		QuarrelChance:   0.25,
		FightDamage:     0.1,

		GatherXP:   2,
		FishXP:     6,
		FishMissXP: 1,
		CraftXP:    10,
		CookXP:     1,
		CombatXP:   15,
	}
}

// plan keeps, pre-empts or replaces the agent's task. Atomic tasks are kept;
// other tasks yield only to the survival rules; idle agents run the full
// cascade (children a reduced one).
func (s *Simulation) plan(a *agents.Agent) {
	if a.Task != nil {
		if a.Task.Atomic() {
			return
		}
		next := s.survivalRule(a)
		if next == nil || sameTask(a.Task, next) {
			return
		}
		s.abort(a, "pre-empted")
		s.commit(a, next)
		return
	}

	if t := s.survivalRule(a); t != nil {
		s.commit(a, t)
		return
	}
	if a.IsAdult() {
		for _, rule := range []func(*agents.Agent) agents.Task{
			s.ruleAssist,
			s.ruleDeposit,
			s.ruleCraft,
			s.ruleFetchTool,
			s.ruleFish,
			s.ruleGather,
			s.ruleMaintain,
		} {
			if t := rule(a); t != nil {
				s.commit(a, t)
				return
			}
		}
	}
	if t := s.rulePatrol(a); t != nil {
		s.commit(a, t)
		return
	}
	s.commit(a, &agents.Rest{Remaining: s.cfg.Planner.IdleRest})
}

// survivalRule evaluates rules 1–3: eat own food, fetch communal food, rest.
func (s *Simulation) survivalRule(a *agents.Agent) agents.Task {
	tc := s.Tribe.Config()
	if a.Needs.Hunger < tc.CriticalHunger {
		if food, ok := ownFood(a.Inventory); ok {
			return &agents.Eat{Food: food, Remaining: s.cfg.Planner.EatSeconds * a.Skills.CookTime()}
		}
		if inventory.FoodCount(s.Store) > 0 {
			return &agents.FetchFood{}
		}
	}
	if a.Needs.Energy < tc.CriticalEnergy {
		return &agents.Rest{Forced: true, Until: s.cfg.Planner.RestUntil}
	}
	return nil
}

// ruleAssist sends surplus food to the first hungry critical tribe-mate in
// range, by ID, whose assist key is free. Nobody feeds an enemy.
func (s *Simulation) ruleAssist(a *agents.Agent) agents.Task {
	if inventory.FoodCount(a.Inventory) < s.cfg.Planner.SurplusFood {
		return nil
	}
	for _, id := range s.Tribe.Critical() {
		if id == a.ID {
			continue
		}
		mate := s.AgentIndex[id]
		if mate == nil || !mate.Alive || mate.Pos.Dist(a.Pos) > s.cfg.Planner.AssistRange {
			continue
		}
		if s.Social.IsEnemy(a.ID, id) {
			continue
		}
		if mate.Needs.Hunger >= s.Tribe.Config().CriticalHunger {
			continue // Critical on energy only; food will not help
		}
		if s.Claims.Claim(world.AssistKey(uint64(id)), a.ID) {
			return &agents.Assist{Target: id}
		}
	}
	return nil
}

func (s *Simulation) ruleDeposit(a *agents.Agent) agents.Task {
	if len(a.Inventory.Carried()) == 0 {
		return nil
	}
	return &agents.Deposit{}
}

// ruleCraft picks the first understocked tool the store has materials for.
func (s *Simulation) ruleCraft(a *agents.Agent) agents.Task {
	for _, t := range inventory.Tools {
		if s.Store.ToolCount(t) >= s.cfg.Planner.ToolStock {
			continue
		}
		recipe, ok := s.cfg.Recipes[t]
		if !ok || !inventory.CanCraft(s.Store, recipe) {
			continue
		}
		if s.Claims.Claim(world.CraftKey(string(t)), a.ID) {
			return &agents.Craft{Tool: t}
		}
	}
	return nil
}

// ruleFetchTool takes a stocked tool the agent lacks and currently needs.
func (s *Simulation) ruleFetchTool(a *agents.Agent) agents.Task {
	for _, t := range inventory.Tools {
		if a.Inventory.ToolCount(t) > 0 || s.Store.ToolCount(t) == 0 || !s.wantsTool(t) {
			continue
		}
		if s.Claims.Claim(world.ToolKey(string(t)), a.ID) {
			return &agents.FetchTool{Tool: t}
		}
	}
	return nil
}

func (s *Simulation) wantsTool(t inventory.Tool) bool {
	switch t {
	case inventory.FishingSpear:
		return s.Tribe.Fishers < s.Tribe.FisherCap()
	case inventory.StoneAxe:
		return s.Tribe.Urgency[inventory.CategoryWood] > 0
	default:
		return true
	}
}

// ruleFish targets the nearest unclaimed fish reachable from the shore.
func (s *Simulation) ruleFish(a *agents.Agent) agents.Task {
	if a.Inventory.ToolCount(inventory.FishingSpear) == 0 || s.Tribe.Fishers >= s.Tribe.FisherCap() {
		return nil
	}
	if !a.Inventory.CanAdd(inventory.Fish, 1) {
		return nil
	}
	fc := s.School.Config()
	var best *fishing.Fish
	var bestStand world.Vec2
	bestD := math.Inf(1)
	for _, f := range s.School.Living() {
		if s.Claims.IsClaimed(f.Key()) {
			continue
		}
		stand, ok := fishing.StandPoint(fc, s.Island, f)
		if !ok {
			continue
		}
		if d := a.Pos.Dist(stand); d < bestD {
			best, bestStand, bestD = f, stand, d
		}
	}
	if best == nil || !s.Claims.Claim(best.Key(), a.ID) {
		return nil
	}
	a.Inventory.Equip(inventory.FishingSpear)
	return &agents.Fish{FishID: best.ID, Stand: bestStand}
}

// ruleGather walks the deficient categories in urgency order and claims the
// nearest free node of the first one under its worker cap.
func (s *Simulation) ruleGather(a *agents.Agent) agents.Task {
	for _, cat := range s.Tribe.MostDeficient() {
		if s.Tribe.Workers[cat] >= s.Tribe.WorkerCap(cat) {
			continue
		}
		if t := s.claimNode(a, cat, false); t != nil {
			return t
		}
	}
	return nil
}

// ruleMaintain gathers the least-stocked category even when nothing is short.
func (s *Simulation) ruleMaintain(a *agents.Agent) agents.Task {
	return s.claimNode(a, s.Tribe.LeastStocked(), true)
}

func (s *Simulation) claimNode(a *agents.Agent, cat inventory.Category, maintenance bool) agents.Task {
	res := inventory.NodeYield[inventory.CategoryNode[cat]]
	if !a.Inventory.CanAdd(res, 1) {
		return nil
	}
	n := s.nearestNode(a.Pos, inventory.CategoryNode[cat])
	if n == nil || !s.Claims.Claim(n.Key(), a.ID) {
		return nil
	}
	return &agents.Gather{Node: n.ID, Category: cat, Maintenance: maintenance}
}

// nearestNode returns the closest live, unclaimed node of kind. Ties go to
// the lower ID.
func (s *Simulation) nearestNode(from world.Vec2, kind world.NodeKind) *world.Node {
	var best *world.Node
	bestD := math.Inf(1)
	for _, n := range s.Nodes {
		if n.Kind != kind || n.Depleted() || s.Claims.IsClaimed(n.Key()) {
			continue
		}
		if d := from.Dist(n.Pos); d < bestD {
			best, bestD = n, d
		}
	}
	return best
}

func (s *Simulation) rulePatrol(a *agents.Agent) agents.Task {
	if a.Pos.Dist(s.Camp.RallyPos) <= s.cfg.Planner.PatrolRadius {
		return nil
	}
	return &agents.Patrol{Target: s.Camp.RallyPos}
}

// commit installs t and updates the coordinator's incremental counts.
func (s *Simulation) commit(a *agents.Agent, t agents.Task) {
	a.Task = t
	switch t := t.(type) {
	case *agents.Gather:
		s.Tribe.AddWorker(t.Category)
	case *agents.Fish:
		s.Tribe.AddFisher()
	}
}

// finish ends the current task normally, releasing its claims.
func (s *Simulation) finish(a *agents.Agent) {
	if a.Task == nil {
		return
	}
	for _, k := range a.Task.ClaimKeys() {
		s.Claims.Release(k, a.ID)
	}
	switch t := a.Task.(type) {
	case *agents.Gather:
		s.Tribe.RemoveWorker(t.Category)
	case *agents.Fish:
		s.Tribe.RemoveFisher()
	}
	a.Task = nil
	a.State = agents.StateIdle
}

// abort cancels the current task; the agent replans next tick.
func (s *Simulation) abort(a *agents.Agent, reason string) {
	if a.Task == nil {
		return
	}
	s.debugTask(a, "task aborted", reason)
	s.finish(a)
}

// sameTask reports whether next would only restart cur. A forced rest is not
// the same as an ordinary one.
func sameTask(cur, next agents.Task) bool {
	if cur.Kind() != next.Kind() {
		return false
	}
	if r, ok := cur.(*agents.Rest); ok {
		return r.Forced == next.(*agents.Rest).Forced
	}
	return true
}

func ownFood(inv inventory.Inventory) (inventory.Resource, bool) {
	for _, r := range inventory.Foods {
		if inv.Has(r, 1) {
			return r, true
		}
	}
	return "", false
}
