// Simulation ties together all island systems and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/fishing"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/threats"
	"github.com/talgya/castaway/internal/tribe"
	"github.com/talgya/castaway/internal/weather"
	"github.com/talgya/castaway/internal/world"
)

// MaxEvents bounds the in-memory event log.
const MaxEvents = 1000

// Config gathers every subsystem's tuning.
type Config struct {
	World     world.GenConfig       `yaml:"world"`
	Placement world.PlacementConfig `yaml:"placement"`
	Spawn     agents.SpawnConfig    `yaml:"spawn"`
	Needs     agents.NeedsConfig    `yaml:"needs"`
	Skills    skills.Config         `yaml:"skills"`
	Tribe     tribe.Config          `yaml:"tribe"`
	Fishing   fishing.Config        `yaml:"fishing"`
	Threats   threats.Config        `yaml:"threats"`
	Weather   weather.Config        `yaml:"weather"`
	Planner   PlannerConfig         `yaml:"planner"`

	Communal inventory.Limits                    `yaml:"communal"`
	Spoil    inventory.SpoilSeconds              `yaml:"spoil"`
	Recipes  map[inventory.Tool]inventory.Recipe `yaml:"recipes"`

	// Starting communal stock and tools, and the founders' opinion range.
	Stock    map[inventory.Resource]int `yaml:"stock"`
	Tools    map[inventory.Tool]int     `yaml:"tools"`
	Opinions [2]float64                 `yaml:"opinions"`
}

// DefaultConfig returns the stock island.
func DefaultConfig() Config {
	return Config{
		World:     world.DefaultGenConfig(),
		Placement: world.DefaultPlacementConfig(),
		Spawn:     agents.DefaultSpawnConfig(),
		Needs:     agents.DefaultNeedsConfig(),
		Skills:    skills.DefaultConfig(),
		Tribe:     tribe.DefaultConfig(),
		Fishing:   fishing.DefaultConfig(),
		Threats:   threats.DefaultConfig(),
		Weather:   weather.DefaultConfig(),
		Planner:   DefaultPlannerConfig(),

		Communal: inventory.CommunalLimits(),
		Spoil:    inventory.DefaultSpoilSeconds(),
		Recipes:  inventory.DefaultRecipes(),
		Stock: map[inventory.Resource]int{
			inventory.Coconut: 24,
			inventory.Wood:    4,
			inventory.Vine:    2,
		},
		Tools: map[inventory.Tool]int{
			inventory.FishingSpear: 2,
		},
		Opinions: [2]float64{-10, 45},
	}
}

// Simulation holds the complete island state and wires systems together.
type Simulation struct {
	cfg  Config
	seed int64
	rng  *entropy.Stream

	Island *world.Island
	Camp   world.Camp
	Nodes  []*world.Node

	Agents     []*agents.Agent // ID order; the dead stay listed
	AgentIndex map[agents.AgentID]*agents.Agent
	Spawner    *agents.Spawner

	Store   *inventory.Store // Communal storage at the camp
	Claims  *tribe.Registry
	Tribe   *tribe.Coordinator
	School  *fishing.School
	Threats *threats.Manager
	Weather *weather.Cycle
	Social  *social.Graph

	Tick   uint64
	Events []Event // Most recent MaxEvents
	Stats  SimStats

	// OnEvent, when set, receives every event as it is emitted.
	OnEvent func(Event)

	// Mothers due this tick, and the father of each pending child.
	births  []agents.AgentID
	fathers map[agents.AgentID]agents.AgentID

	// Last agent to stock food, and who has deposited anything since their
	// last meal from the store.
	provider    agents.AgentID
	contributed map[agents.AgentID]bool
}

// Event is a notable occurrence on the island.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "death", "birth", "social", "threat", "fishing", "craft", ...
}

// SimStats tracks aggregate island statistics.
type SimStats struct {
	Population int            `json:"population"`
	Children   int            `json:"children"`
	Births     int            `json:"births"`
	Deaths     int            `json:"deaths"`
	Causes     map[string]int `json:"causes"`
	Catches    int            `json:"catches"`
	Crafted    int            `json:"crafted"`
	Hunts      int            `json:"hunts"` // Threats slain
	AvgHunger  float64        `json:"avg_hunger"`
	AvgEnergy  float64        `json:"avg_energy"`
	AvgHealth  float64        `json:"avg_health"`
	Claims     int            `json:"claims"`
}

func (st SimStats) clone() SimStats {
	causes := make(map[string]int, len(st.Causes))
	for k, v := range st.Causes {
		causes[k] = v
	}
	st.Causes = causes
	return st
}

// New builds a fresh island from seed. Every random choice made here draws
// from the one stream the ticks continue to use.
func New(cfg Config, seed int64) *Simulation {
	rng := entropy.NewStream(seed)

	gen := cfg.World
	if gen.Seed == 0 {
		gen.Seed = seed
	}
	island := world.NewIsland(gen)
	camp := world.NewCamp()

	s := &Simulation{
		cfg:        cfg,
		seed:       seed,
		rng:        rng,
		Island:     island,
		Camp:       camp,
		AgentIndex: make(map[agents.AgentID]*agents.Agent),
		Spawner:    agents.NewSpawner(cfg.Spawn, cfg.Skills),
		Store:      inventory.NewStore(cfg.Communal),
		Claims:     tribe.NewRegistry(),
		Tribe:      tribe.NewCoordinator(cfg.Tribe),
		School:     fishing.NewSchool(cfg.Fishing, gen.Radius),
		Threats:    threats.NewManager(cfg.Threats),
		Weather:    weather.NewCycle(cfg.Weather),
		Social:     social.NewGraph(),
		Stats:      SimStats{Causes: make(map[string]int)},
		fathers:    make(map[agents.AgentID]agents.AgentID),

		contributed: make(map[agents.AgentID]bool),
	}

	s.Nodes = world.PlaceNodes(island, rng, cfg.Placement)
	for _, a := range s.Spawner.SpawnFounders(rng, camp.Center) {
		s.addAgent(a)
	}
	s.seedOpinions()
	s.School.Spawn(rng, island, cfg.Fishing.SchoolSize)

	for _, r := range inventory.Resources {
		if n := cfg.Stock[r]; n > 0 {
			s.Store.Add(r, n, 0)
		}
	}
	for _, t := range inventory.Tools {
		for i := 0; i < cfg.Tools[t]; i++ {
			s.Store.AddTool(t, cfg.Recipes[t].Durability)
		}
	}

	s.Tribe.Refresh(s.Agents, s.Store)
	s.updateStats()
	slog.Info("island generated",
		"seed", seed,
		"agents", len(s.Agents),
		"nodes", len(s.Nodes),
		"fish", len(s.School.Fish),
	)
	return s
}

// Config returns the simulation tuning.
func (s *Simulation) Config() Config { return s.cfg }

// Seed returns the seed the island was built from.
func (s *Simulation) Seed() int64 { return s.seed }

// Draws returns how many random values the shared stream has produced.
func (s *Simulation) Draws() uint64 { return s.rng.Draws() }

// Now returns the simulated time in seconds.
func (s *Simulation) Now() float64 {
	return float64(s.Tick) * StepSeconds
}

// Hour returns the tick-clock hour used for threat time bands.
func (s *Simulation) Hour() float64 {
	return HourAt(s.Tick)
}

// seedOpinions gives founders a random starting opinion of each other.
func (s *Simulation) seedOpinions() {
	lo, hi := s.cfg.Opinions[0], s.cfg.Opinions[1]
	for _, a := range s.Agents {
		for _, b := range s.Agents {
			if a.ID != b.ID {
				s.Social.Set(a.ID, b.ID, s.rng.FloatRange(lo, hi))
			}
		}
	}
}

// Step advances the island by one tick. Subsystems run in a fixed order and
// agents in ID order so a seed reproduces every outcome.
func (s *Simulation) Step() {
	s.Tick++
	dt := StepSeconds

	if s.Weather.Advance(dt, s.rng) {
		s.emit("weather", s.Weather.Current().Description)
	}

	s.Tribe.Refresh(s.Agents, s.Store)
	for _, c := range s.Claims.Reconcile(s.pursuing) {
		slog.Debug("stale claim dropped", "key", c.Key, "owner", c.Owner)
	}

	s.spoilAndRegrow(dt)
	s.School.Update(dt, s.rng, s.Island, s.swimmers())

	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		if !s.advanceNeeds(a, dt) {
			continue
		}
		s.plan(a)
		s.execute(a, dt)
	}

	s.processThreats(dt)
	s.processMating()
	s.processBirths()
	if s.Tick%TicksPerHour == 0 {
		s.processCompany()
	}
	s.finalizeDeaths()

	if s.Tick%TicksPerDay == 0 {
		if n := s.School.Replenish(s.rng, s.Island); n > 0 {
			slog.Debug("fish school replenished", "spawned", n)
		}
	}
	s.updateStats()
}

// pursuing reports whether owner is alive and still working toward key.
func (s *Simulation) pursuing(owner agents.AgentID, key world.Key) bool {
	a := s.AgentIndex[owner]
	return a != nil && a.Alive && agents.HoldsKey(a.Task, key)
}

func (s *Simulation) spoilAndRegrow(dt float64) {
	now := s.Now()
	if spoiled := s.Store.Spoil(now, s.cfg.Spoil); len(spoiled) > 0 {
		for _, r := range inventory.Resources {
			if n := spoiled[r]; n > 0 {
				s.emit("spoilage", fmt.Sprintf("%d %s rotted in the store", n, r))
			}
		}
	}
	for _, a := range s.Agents {
		if a.Alive {
			a.Inventory.Spoil(now, s.cfg.Spoil)
		}
	}
	for _, n := range s.Nodes {
		n.Regrow(dt)
	}
}

// swimmers returns the positions of living agents in the water.
func (s *Simulation) swimmers() []world.Vec2 {
	var out []world.Vec2
	for _, a := range s.Agents {
		if a.Alive && !s.Island.IsLand(a.Pos) {
			out = append(out, a.Pos)
		}
	}
	return out
}

// emit records an event and forwards it to OnEvent.
func (s *Simulation) emit(category, description string) {
	e := Event{Tick: s.Tick, Description: description, Category: category}
	s.Events = append(s.Events, e)
	if len(s.Events) > MaxEvents {
		s.Events = s.Events[len(s.Events)-MaxEvents:]
	}
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// EventsSince returns retained events after tick, oldest first, at most limit.
func (s *Simulation) EventsSince(tick uint64, limit int) []Event {
	var out []Event
	for _, e := range s.Events {
		if e.Tick > tick {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// DailyReport logs a summary of the day.
func (s *Simulation) DailyReport() {
	counts := make(map[string]int)
	start := s.Tick - min(s.Tick, TicksPerDay)
	for _, e := range s.Events {
		if e.Tick > start {
			counts[e.Category]++
		}
	}
	slog.Info("daily report",
		"tick", s.Tick,
		"time", SimTime(s.Tick),
		"alive", s.Stats.Population,
		"deaths", s.Stats.Deaths,
		"births", s.Stats.Births,
		"avg_hunger", fmt.Sprintf("%.3f", s.Stats.AvgHunger),
		"avg_energy", fmt.Sprintf("%.3f", s.Stats.AvgEnergy),
		"food", inventory.FoodCount(s.Store),
		"events_death", counts["death"],
		"events_birth", counts["birth"],
		"events_threat", counts["threat"],
		"events_fishing", counts["fishing"],
	)
}

func (s *Simulation) updateStats() {
	alive, children := 0, 0
	var hunger, energy, health float64
	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		alive++
		if !a.IsAdult() {
			children++
		}
		hunger += a.Needs.Hunger
		energy += a.Needs.Energy
		health += a.Needs.Health
	}
	s.Stats.Population = alive
	s.Stats.Children = children
	s.Stats.Claims = s.Claims.Len()
	if alive > 0 {
		s.Stats.AvgHunger = hunger / float64(alive)
		s.Stats.AvgEnergy = energy / float64(alive)
		s.Stats.AvgHealth = health / float64(alive)
	} else {
		s.Stats.AvgHunger, s.Stats.AvgEnergy, s.Stats.AvgHealth = 0, 0, 0
	}
}

// Agent returns the agent with id, or nil.
func (s *Simulation) Agent(id agents.AgentID) *agents.Agent {
	return s.AgentIndex[id]
}

// Living returns the living agents in ID order.
func (s *Simulation) Living() []*agents.Agent {
	var out []*agents.Agent
	for _, a := range s.Agents {
		if a.Alive {
			out = append(out, a)
		}
	}
	return out
}

// Node returns the node with id, or nil.
func (s *Simulation) Node(id world.NodeID) *world.Node {
	// Nodes are placed with sequential IDs from 1.
	if i := int(id) - 1; i >= 0 && i < len(s.Nodes) && s.Nodes[i].ID == id {
		return s.Nodes[i]
	}
	for _, n := range s.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
