// Tribe coordinator: aggregate critical-need flags, stockpile urgency and
// worker counts. Advisory state rebuilt every tick and updated incrementally
// as the planner commits tasks.
package tribe

import (
	"math"
	"sort"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
)

// Config tunes coordination thresholds.
type Config struct {
	CriticalHunger float64 `yaml:"critical_hunger"`
	CriticalEnergy float64 `yaml:"critical_energy"`

	// Desired communal stock per living agent.
	FoodPerCapita  float64 `yaml:"food_per_capita"`
	WoodPerCapita  float64 `yaml:"wood_per_capita"`
	StonePerCapita float64 `yaml:"stone_per_capita"`
	FiberPerCapita float64 `yaml:"fiber_per_capita"`

	CapFactor   float64 `yaml:"cap_factor"`   // Worker cap scale
	FisherShare float64 `yaml:"fisher_share"` // Max share of population fishing
}

// DefaultConfig returns the stock coordination thresholds.
func DefaultConfig() Config {
	return Config{
		CriticalHunger: 0.25,
		CriticalEnergy: 0.15,
		FoodPerCapita:  6,
		WoodPerCapita:  4,
		StonePerCapita: 2,
		FiberPerCapita: 2,
		CapFactor:      0.6,
		FisherShare:    0.25,
	}
}

// PerCapita returns the desired stock per living agent for c.
func (c Config) PerCapita(cat inventory.Category) float64 {
	switch cat {
	case inventory.CategoryFood:
		return c.FoodPerCapita
	case inventory.CategoryWood:
		return c.WoodPerCapita
	case inventory.CategoryStone:
		return c.StonePerCapita
	case inventory.CategoryFiber:
		return c.FiberPerCapita
	default:
		return 0
	}
}

// IsCritical reports whether n needs immediate attention.
func (c Config) IsCritical(n agents.Needs) bool {
	return n.Hunger < c.CriticalHunger || n.Energy < c.CriticalEnergy
}

// Coordinator is the per-tick tribe aggregate.
type Coordinator struct {
	cfg Config

	Population int
	critical   map[agents.AgentID]bool

	Stock   [inventory.NumCategories]int
	Urgency [inventory.NumCategories]float64
	Workers [inventory.NumCategories]int
	Fishers int
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg, critical: make(map[agents.AgentID]bool)}
}

// Config returns the coordinator thresholds.
func (c *Coordinator) Config() Config { return c.cfg }

// Refresh rebuilds every aggregate from the living population, their current
// tasks and the communal store.
func (c *Coordinator) Refresh(pop []*agents.Agent, store inventory.Inventory) {
	c.Population = 0
	clear(c.critical)
	c.Workers = [inventory.NumCategories]int{}
	c.Fishers = 0

	for _, a := range pop {
		if !a.Alive {
			continue
		}
		c.Population++
		if c.cfg.IsCritical(a.Needs) {
			c.critical[a.ID] = true
		}
		switch t := a.Task.(type) {
		case *agents.Gather:
			c.Workers[t.Category]++
		case *agents.Fish:
			c.Fishers++
		}
	}

	for _, cat := range inventory.Categories {
		c.Stock[cat] = inventory.CategoryCount(store, cat)
		desired := c.Desired(cat)
		if desired <= 0 {
			c.Urgency[cat] = 0
			continue
		}
		c.Urgency[cat] = math.Max(0, 1-float64(c.Stock[cat])/desired)
	}
}

// Desired returns the target stock of cat for the current population.
func (c *Coordinator) Desired(cat inventory.Category) float64 {
	return c.cfg.PerCapita(cat) * float64(c.Population)
}

// IsCritical reports whether the agent was flagged this tick.
func (c *Coordinator) IsCritical(id agents.AgentID) bool {
	return c.critical[id]
}

// Critical returns every flagged agent in ID order.
func (c *Coordinator) Critical() []agents.AgentID {
	out := make([]agents.AgentID, 0, len(c.critical))
	for id := range c.critical {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WorkerCap is ceil(population × urgency × CapFactor) for cat.
func (c *Coordinator) WorkerCap(cat inventory.Category) int {
	return int(math.Ceil(float64(c.Population) * c.Urgency[cat] * c.cfg.CapFactor))
}

// FisherCap is ceil(population × FisherShare).
func (c *Coordinator) FisherCap() int {
	return int(math.Ceil(float64(c.Population) * c.cfg.FisherShare))
}

// AddWorker and RemoveWorker keep counts current within a planning pass.
func (c *Coordinator) AddWorker(cat inventory.Category) { c.Workers[cat]++ }

func (c *Coordinator) RemoveWorker(cat inventory.Category) {
	if c.Workers[cat] > 0 {
		c.Workers[cat]--
	}
}

func (c *Coordinator) AddFisher() { c.Fishers++ }

func (c *Coordinator) RemoveFisher() {
	if c.Fishers > 0 {
		c.Fishers--
	}
}

// MostDeficient returns categories with positive urgency, most urgent first.
// Ties keep the canonical category order.
func (c *Coordinator) MostDeficient() []inventory.Category {
	var out []inventory.Category
	for _, cat := range inventory.Categories {
		if c.Urgency[cat] > 0 {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.Urgency[out[i]] > c.Urgency[out[j]]
	})
	return out
}

// LeastStocked returns the category with the lowest stock relative to its
// target, first in canonical order on ties.
func (c *Coordinator) LeastStocked() inventory.Category {
	best := inventory.Categories[0]
	bestRatio := math.Inf(1)
	for _, cat := range inventory.Categories {
		per := c.cfg.PerCapita(cat)
		if per <= 0 {
			continue
		}
		ratio := float64(c.Stock[cat]) / per
		if ratio < bestRatio {
			best, bestRatio = cat, ratio
		}
	}
	return best
}
