// Agent spawning: the founding castaways and newborns.
// Every draw comes from the shared stream so the population is fully
// determined by the seed.
package agents

import (
	"math"

	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/world"
)

// SpawnConfig controls founding population generation.
type SpawnConfig struct {
	Population     int     `yaml:"population"`
	MeanAge        float64 `yaml:"mean_age"`
	AgeSpread      float64 `yaml:"age_spread"` // Standard deviation in years
	MinAge         float64 `yaml:"min_age"`
	MaxAge         float64 `yaml:"max_age"`
	MaxSkill       int     `yaml:"max_skill"` // Founders draw each skill in [0, MaxSkill]
	ScatterRadius  float64 `yaml:"scatter_radius"`
	NewbornScatter float64 `yaml:"newborn_scatter"`
}

// DefaultSpawnConfig returns the stock founding population.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Population:     12,
		MeanAge:        28,
		AgeSpread:      10,
		MinAge:         8,
		MaxAge:         56,
		MaxSkill:       30,
		ScatterRadius:  5,
		NewbornScatter: 1,
	}
}

// Spawner creates agents and issues their IDs.
type Spawner struct {
	cfg      SpawnConfig
	skillCfg skills.Config
	nextID   AgentID
}

// NewSpawner creates a spawner whose first agent gets ID 1.
func NewSpawner(cfg SpawnConfig, skillCfg skills.Config) *Spawner {
	return &Spawner{cfg: cfg, skillCfg: skillCfg, nextID: 1}
}

// NextID returns the ID the next agent will receive.
func (s *Spawner) NextID() AgentID {
	return s.nextID
}

// SpawnFounders creates the founding population around center.
func (s *Spawner) SpawnFounders(rng *entropy.Stream, center world.Vec2) []*Agent {
	out := make([]*Agent, 0, s.cfg.Population)
	for i := 0; i < s.cfg.Population; i++ {
		out = append(out, s.spawnFounder(rng, center))
	}
	return out
}

func (s *Spawner) spawnFounder(rng *entropy.Stream, center world.Vec2) *Agent {
	a := s.newAgent(rng, center, s.cfg.ScatterRadius, 0)

	age := s.cfg.MeanAge + rng.NormFloat64()*s.cfg.AgeSpread
	a.Needs = Needs{
		Hunger: rng.FloatRange(0.6, 1.0),
		Energy: rng.FloatRange(0.6, 1.0),
		Health: rng.FloatRange(0.85, 1.0),
		Social: rng.FloatRange(0.5, 1.0),
		Drive:  rng.FloatRange(0, 0.5),
		Age:    math.Max(s.cfg.MinAge, math.Min(s.cfg.MaxAge, age)),
	}
	if a.Needs.Stage() == StageChild {
		a.Needs.Drive = 0
	}
	for sk := skills.Skill(0); sk < skills.NumSkills; sk++ {
		a.Skills.SetLevel(sk, rng.IntRange(0, s.cfg.MaxSkill))
	}
	return a
}

// SpawnChild creates a newborn of mother and father next to the mother.
// Newborns start near full with every skill at zero.
func (s *Spawner) SpawnChild(rng *entropy.Stream, mother, father *Agent, tick uint64) *Agent {
	a := s.newAgent(rng, mother.Pos, s.cfg.NewbornScatter, tick)
	a.Needs = Needs{
		Hunger: 0.95,
		Energy: 0.95,
		Health: 1.0,
		Social: 0.9,
	}
	a.Parents = []AgentID{mother.ID}
	if father != nil {
		a.Parents = append(a.Parents, father.ID)
	}
	return a
}

func (s *Spawner) newAgent(rng *entropy.Stream, center world.Vec2, scatter float64, tick uint64) *Agent {
	id := s.nextID
	s.nextID++

	sex := SexMale
	if rng.Chance(0.5) {
		sex = SexFemale
	}
	offset := world.FromHeading(rng.FloatRange(0, 2*math.Pi)).Scale(rng.FloatRange(0, scatter))

	return &Agent{
		ID:        id,
		Name:      generateName(rng, sex),
		Sex:       sex,
		Pos:       center.Add(offset),
		Heading:   offset.Heading(),
		Skills:    skills.NewLedger(s.skillCfg),
		Inventory: inventory.NewStore(inventory.PersonalLimits()),
		BornTick:  tick,
		Alive:     true,
	}
}

func generateName(rng *entropy.Stream, sex Sex) string {
	firsts := maleNames
	if sex == SexFemale {
		firsts = femaleNames
	}
	return firsts[rng.Intn(len(firsts))] + " " + surnames[rng.Intn(len(surnames))]
}

// Name pools for procedural generation.
var maleNames = []string{
	"Ari", "Bastian", "Corin", "Dax", "Emeric", "Fenn", "Galen", "Hale",
	"Ilan", "Joss", "Kit", "Lachlan", "Marlo", "Nico", "Orrin", "Pell",
	"Rafe", "Soren", "Tamsin", "Ulric", "Vale", "Wade",
}

var femaleNames = []string{
	"Anya", "Bryn", "Cassia", "Delphine", "Esme", "Faye", "Gemma", "Hollis",
	"Isla", "Jun", "Kaia", "Lark", "Marina", "Nell", "Odette", "Pia",
	"Rosalind", "Sable", "Talia", "Vida", "Wynn", "Zoe",
}

var surnames = []string{
	"Reed", "Shoal", "Driftwood", "Saltmarsh", "Tideborn", "Palmer",
	"Coral", "Marlin", "Breaker", "Gull", "Harbor", "Kestrel", "Lagoon",
	"Reef", "Sandoval", "Wrack", "Ashby", "Crane", "Finch", "Morrow",
}
