// Package social holds the directed opinion graph between agents, the derived
// friend and enemy sets, and explicit family ties.
package social

import (
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/castaway/internal/agents"
)

// Opinion bounds and thresholds.
const (
	MinOpinion      = -100.0
	MaxOpinion      = 100.0
	FriendThreshold = 30.0
	EnemyThreshold  = -30.0
)

type idSet map[agents.AgentID]struct{}

// Graph stores from→to opinions. Friend and enemy membership is recomputed on
// every write; family is set explicitly and is symmetric.
type Graph struct {
	edges   map[agents.AgentID]map[agents.AgentID]float64
	friends map[agents.AgentID]idSet
	enemies map[agents.AgentID]idSet
	family  map[agents.AgentID]idSet
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		edges:   make(map[agents.AgentID]map[agents.AgentID]float64),
		friends: make(map[agents.AgentID]idSet),
		enemies: make(map[agents.AgentID]idSet),
		family:  make(map[agents.AgentID]idSet),
	}
}

// Opinion returns from's opinion of to; unknown pairs are neutral.
func (g *Graph) Opinion(from, to agents.AgentID) float64 {
	return g.edges[from][to]
}

// Set writes from's opinion of to, clamped to range.
func (g *Graph) Set(from, to agents.AgentID, v float64) float64 {
	if from == to {
		return 0
	}
	if math.IsNaN(v) {
		slog.Warn("opinion is NaN, reset", "from", from, "to", to)
		v = 0
	}
	v = math.Max(MinOpinion, math.Min(MaxOpinion, v))

	row, ok := g.edges[from]
	if !ok {
		row = make(map[agents.AgentID]float64)
		g.edges[from] = row
	}
	row[to] = v
	g.classify(from, to, v)
	return v
}

// Adjust adds delta to from's opinion of to and returns the new value.
func (g *Graph) Adjust(from, to agents.AgentID, delta float64) float64 {
	return g.Set(from, to, g.Opinion(from, to)+delta)
}

func (g *Graph) classify(from, to agents.AgentID, v float64) {
	setMember(g.friends, from, to, v >= FriendThreshold)
	setMember(g.enemies, from, to, v <= EnemyThreshold)
}

func setMember(sets map[agents.AgentID]idSet, from, to agents.AgentID, in bool) {
	s, ok := sets[from]
	if in {
		if !ok {
			s = make(idSet)
			sets[from] = s
		}
		s[to] = struct{}{}
		return
	}
	if ok {
		delete(s, to)
		if len(s) == 0 {
			delete(sets, from)
		}
	}
}

// IsFriend reports whether from counts to as a friend.
func (g *Graph) IsFriend(from, to agents.AgentID) bool {
	_, ok := g.friends[from][to]
	return ok
}

// IsEnemy reports whether from counts to as an enemy.
func (g *Graph) IsEnemy(from, to agents.AgentID) bool {
	_, ok := g.enemies[from][to]
	return ok
}

// MutualFriends reports whether a and b are friends in both directions.
func (g *Graph) MutualFriends(a, b agents.AgentID) bool {
	return g.IsFriend(a, b) && g.IsFriend(b, a)
}

// Friends returns from's friends in ID order.
func (g *Graph) Friends(from agents.AgentID) []agents.AgentID {
	return sortedIDs(g.friends[from])
}

// Enemies returns from's enemies in ID order.
func (g *Graph) Enemies(from agents.AgentID) []agents.AgentID {
	return sortedIDs(g.enemies[from])
}

// AddFamily links a and b as family in both directions.
func (g *Graph) AddFamily(a, b agents.AgentID) {
	if a == b {
		return
	}
	for _, pair := range [][2]agents.AgentID{{a, b}, {b, a}} {
		s, ok := g.family[pair[0]]
		if !ok {
			s = make(idSet)
			g.family[pair[0]] = s
		}
		s[pair[1]] = struct{}{}
	}
}

// IsFamily reports whether a and b are family.
func (g *Graph) IsFamily(a, b agents.AgentID) bool {
	_, ok := g.family[a][b]
	return ok
}

// Family returns a's family in ID order.
func (g *Graph) Family(a agents.AgentID) []agents.AgentID {
	return sortedIDs(g.family[a])
}

// Edge is one directed opinion.
type Edge struct {
	From    agents.AgentID `json:"from"`
	To      agents.AgentID `json:"to"`
	Opinion float64        `json:"opinion"`
}

// Edges returns every stored opinion held by from, ordered by target.
func (g *Graph) Edges(from agents.AgentID) []Edge {
	row := g.edges[from]
	out := make([]Edge, 0, len(row))
	for _, to := range sortedKeys(row) {
		out = append(out, Edge{From: from, To: to, Opinion: row[to]})
	}
	return out
}

func sortedIDs(s idSet) []agents.AgentID {
	if len(s) == 0 {
		return nil
	}
	out := make([]agents.AgentID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys(m map[agents.AgentID]float64) []agents.AgentID {
	out := make([]agents.AgentID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
