// Read-only snapshots of the island for hosts, and the determinism digest.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/tribe"
	"github.com/talgya/castaway/internal/world"
)

// AgentState is the observable state of one agent.
type AgentState struct {
	ID       agents.AgentID   `json:"id"`
	Name     string           `json:"name"`
	Sex      string           `json:"sex"`
	Alive    bool             `json:"alive"`
	Stage    string           `json:"stage"`
	Pos      world.Vec2       `json:"pos"`
	Heading  float64          `json:"heading"`
	State    string           `json:"state"`
	Task     string           `json:"task"`
	Needs    agents.Needs     `json:"needs"`
	Skills   map[string]int   `json:"skills"`
	Carried  map[string]int   `json:"carried,omitempty"`
	Tools    map[string][]int `json:"tools,omitempty"`
	Equipped string           `json:"equipped,omitempty"`
	Parents  []agents.AgentID `json:"parents,omitempty"`
	Friends  []agents.AgentID `json:"friends,omitempty"`
	Kills    int              `json:"kills"`
	Renown   string           `json:"renown,omitempty"`
	Memories []agents.Memory  `json:"memories,omitempty"`
	BornTick uint64           `json:"born_tick"`
	DiedTick uint64           `json:"died_tick,omitempty"`
	Claims   []world.Key      `json:"claims,omitempty"`
}

// NodeState is the observable state of one resource node.
type NodeState struct {
	ID        world.NodeID `json:"id"`
	Kind      string       `json:"kind"`
	Pos       world.Vec2   `json:"pos"`
	Remaining int          `json:"remaining"`
	MaxYield  int          `json:"max_yield"`
	Claimed   bool         `json:"claimed"`
}

// FishState is the observable state of one fish.
type FishState struct {
	ID     uint32     `json:"id"`
	Pos    world.Vec2 `json:"pos"`
	State  string     `json:"state"`
	Status string     `json:"status"`
}

// ThreatState is the observable state of one threat.
type ThreatState struct {
	ID     uint32         `json:"id"`
	Name   string         `json:"name"`
	Pos    world.Vec2     `json:"pos"`
	Health float64        `json:"health"`
	State  string         `json:"state"`
	Target agents.AgentID `json:"target,omitempty"`
}

// EnvironmentState is the observable state of everything but the agents.
type EnvironmentState struct {
	Tick    uint64             `json:"tick"`
	Time    string             `json:"time"`
	Hour    float64            `json:"hour"`
	Weather string             `json:"weather"`
	Storm   bool               `json:"storm"`
	Camp    world.Camp         `json:"camp"`
	Store   map[string]int     `json:"store"`
	Tools   map[string][]int   `json:"tools"`
	Urgency map[string]float64 `json:"urgency"`
	Workers map[string]int     `json:"workers"`
	Fishers int                `json:"fishers"`
	Nodes   []NodeState        `json:"nodes"`
	Fish    []FishState        `json:"fish"`
	Threats []ThreatState      `json:"threats"`
	Claims  []tribe.Claim      `json:"claims"`
	Stats   SimStats           `json:"stats"`
	Draws   uint64             `json:"draws"`
}

// AgentStates snapshots every agent, living and dead, in ID order.
func (s *Simulation) AgentStates() []AgentState {
	out := make([]AgentState, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, s.agentState(a))
	}
	return out
}

func (s *Simulation) agentState(a *agents.Agent) AgentState {
	st := AgentState{
		ID:       a.ID,
		Name:     a.Name,
		Sex:      a.Sex.String(),
		Alive:    a.Alive,
		Stage:    a.Stage().String(),
		Pos:      a.Pos,
		Heading:  a.Heading,
		State:    a.State.String(),
		Task:     a.TaskKind().String(),
		Needs:    a.Needs,
		Skills:   make(map[string]int, skills.NumSkills),
		Parents:  a.Parents,
		Friends:  s.Social.Friends(a.ID),
		Kills:    a.Kills,
		Memories: agents.RecentMemories(a, 5),
		BornTick: a.BornTick,
		DiedTick: a.DiedTick,
		Claims:   s.Claims.Held(a.ID),
	}
	for sk := skills.Skill(0); sk < skills.NumSkills; sk++ {
		st.Skills[sk.String()] = a.Skills.Level(sk)
	}
	switch {
	case a.Kills >= social.LegendKills:
		st.Renown = social.RenownLegend.String()
	case a.Kills >= social.HeroKills:
		st.Renown = social.RenownHero.String()
	}
	if carried := a.Inventory.Contents(); len(carried) > 0 {
		st.Carried = make(map[string]int, len(carried))
		for r, n := range carried {
			st.Carried[string(r)] = n
		}
	}
	if tools := a.Inventory.Tools(); len(tools) > 0 {
		st.Tools = make(map[string][]int, len(tools))
		for t, d := range tools {
			st.Tools[string(t)] = d
		}
	}
	if t, ok := a.Inventory.Equipped(); ok {
		st.Equipped = string(t)
	}
	return st
}

// EnvironmentState snapshots the island.
func (s *Simulation) EnvironmentState() EnvironmentState {
	w := s.Weather.Current()
	env := EnvironmentState{
		Tick:    s.Tick,
		Time:    SimTime(s.Tick),
		Hour:    s.Hour(),
		Weather: w.Kind.String(),
		Storm:   w.IsStorm(),
		Camp:    s.Camp,
		Store:   make(map[string]int),
		Tools:   make(map[string][]int),
		Urgency: make(map[string]float64, inventory.NumCategories),
		Workers: make(map[string]int, inventory.NumCategories),
		Fishers: s.Tribe.Fishers,
		Claims:  s.Claims.Claims(),
		Stats:   s.Stats.clone(),
		Draws:   s.rng.Draws(),
	}
	for r, n := range s.Store.Contents() {
		env.Store[string(r)] = n
	}
	for t, d := range s.Store.Tools() {
		env.Tools[string(t)] = d
	}
	for _, cat := range inventory.Categories {
		env.Urgency[cat.String()] = s.Tribe.Urgency[cat]
		env.Workers[cat.String()] = s.Tribe.Workers[cat]
	}
	for _, n := range s.Nodes {
		env.Nodes = append(env.Nodes, NodeState{
			ID:        n.ID,
			Kind:      n.Kind.String(),
			Pos:       n.Pos,
			Remaining: n.Remaining,
			MaxYield:  n.MaxYield,
			Claimed:   s.Claims.IsClaimed(n.Key()),
		})
	}
	for _, f := range s.School.Fish {
		env.Fish = append(env.Fish, FishState{
			ID:     f.ID,
			Pos:    f.Pos,
			State:  f.State.String(),
			Status: f.Status.String(),
		})
	}
	for _, th := range s.Threats.Living() {
		env.Threats = append(env.Threats, ThreatState{
			ID:     th.ID,
			Name:   th.Name,
			Pos:    th.Pos,
			Health: th.Health,
			State:  th.State.String(),
			Target: th.Target,
		})
	}
	return env
}

// digestState is the canonical state hashed by Digest. Maps marshal with
// sorted keys, so the encoding is stable.
type digestState struct {
	Seed        int64            `json:"seed"`
	Agents      []AgentState     `json:"agents"`
	Environment EnvironmentState `json:"environment"`
	Opinions    [][]social.Edge  `json:"opinions"`
}

// Digest returns a hex sha256 of the canonical simulation state. Two runs
// with the same seed and tick count produce the same digest.
func (s *Simulation) Digest() string {
	d := digestState{
		Seed:        s.seed,
		Agents:      s.AgentStates(),
		Environment: s.EnvironmentState(),
	}
	for _, a := range s.Agents {
		d.Opinions = append(d.Opinions, s.Social.Edges(a.ID))
	}
	b, err := json.Marshal(d)
	if err != nil {
		// Only NaN or Inf values fail to marshal.
		return "unhashable: " + err.Error()
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
