// Package skills tracks per-agent XP and levels and derives the capped,
// monotonic bonus curves the rest of the simulation reads.
package skills

import (
	"math"
)

// Skill identifies a trainable skill.
type Skill uint8

const (
	Gathering Skill = iota
	Fishing
	Crafting
	Combat
	Cooking
)

// NumSkills is the number of skills.
const NumSkills = 5

// String returns the lowercase skill name.
func (s Skill) String() string {
	switch s {
	case Gathering:
		return "gathering"
	case Fishing:
		return "fishing"
	case Crafting:
		return "crafting"
	case Combat:
		return "combat"
	case Cooking:
		return "cooking"
	default:
		return "unknown"
	}
}

// Config shapes the XP curve and apprenticeship rules.
type Config struct {
	MaxLevel         int     `yaml:"max_level"`
	BaseXP           float64 `yaml:"base_xp"`           // Requirement at level 0
	Scaling          float64 `yaml:"scaling"`           // Requirement growth per level
	ApprenticeMargin int     `yaml:"apprentice_margin"` // Levels a mentor must lead by
	ApprenticeRadius float64 `yaml:"apprentice_radius"` // Distance within which mentors count
}

// DefaultConfig returns the stock curve.
func DefaultConfig() Config {
	return Config{
		MaxLevel:         100,
		BaseXP:           20,
		Scaling:          1.06,
		ApprenticeMargin: 10,
		ApprenticeRadius: 8,
	}
}

// Requirement returns the XP needed to advance from level to level+1.
func (c Config) Requirement(level int) float64 {
	return c.BaseXP * math.Pow(c.Scaling, float64(level))
}

// Entry is one skill's progress.
type Entry struct {
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
}

// Ledger holds every skill of one agent.
type Ledger struct {
	cfg     Config
	Entries [NumSkills]Entry `json:"entries"`
}

// NewLedger creates an untrained ledger.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{cfg: cfg}
}

// Level returns the current level of s.
func (l *Ledger) Level(s Skill) int {
	return l.Entries[s].Level
}

// SetLevel sets s directly (spawning and tests), clamped to [0, MaxLevel].
func (l *Ledger) SetLevel(s Skill, level int) {
	l.Entries[s].Level = max(0, min(level, l.cfg.MaxLevel))
	l.Entries[s].XP = 0
}

// Fraction returns level/MaxLevel for s.
func (l *Ledger) Fraction(s Skill) float64 {
	if l.cfg.MaxLevel <= 0 {
		return 0
	}
	return float64(l.Entries[s].Level) / float64(l.cfg.MaxLevel)
}

// AddXP accrues amount×multiplier XP to s and returns how many levels were
// gained. Levels never decrease and never pass MaxLevel; XP surplus at the
// cap is discarded.
func (l *Ledger) AddXP(s Skill, amount, multiplier float64) int {
	gain := amount * multiplier
	if gain <= 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return 0
	}
	e := &l.Entries[s]
	if e.Level >= l.cfg.MaxLevel {
		e.XP = 0
		return 0
	}
	e.XP += gain

	gained := 0
	for e.Level < l.cfg.MaxLevel {
		need := l.cfg.Requirement(e.Level)
		if e.XP < need {
			break
		}
		e.XP -= need
		e.Level++
		gained++
	}
	if e.Level >= l.cfg.MaxLevel {
		e.XP = 0
	}
	return gained
}

// Apprenticeship returns the XP multiplier for a learner at learnerLevel
// working near peers at the given levels: +0.5 per peer leading by at least
// margin, capped at 2.
func Apprenticeship(learnerLevel int, peerLevels []int, margin int) float64 {
	mult := 1.0
	for _, lvl := range peerLevels {
		if lvl-learnerLevel >= margin {
			mult += 0.5
		}
	}
	return math.Min(mult, 2.0)
}
