package watch

import (
	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/engine"
)

// Crisis levels, most severe first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelWatch    = "WATCH"
	LevelHealthy  = "HEALTHY"
)

// Health holds diagnostic signals derived from one observation.
// Deterministic and cheap; safe to compute every simulated day.
type Health struct {
	Population   int     `json:"population"`
	Children     int     `json:"children"`
	FoodStock    int     `json:"food_stock"`
	FoodUrgency  float64 `json:"food_urgency"`
	AvgHunger    float64 `json:"avg_hunger"`
	AvgHealth    float64 `json:"avg_health"`
	Starvations  int     `json:"starvations"`
	DeathBirth   float64 `json:"death_birth_ratio"` // Deaths per birth; deaths when nobody was born
	ActiveThreat bool    `json:"active_threat"`
	CrisisLevel  string  `json:"crisis_level"`
}

// Thresholds for Triage.
const (
	criticalHunger  = 0.25
	warningUrgency  = 0.6
	warningHealth   = 0.4
	watchUrgency    = 0.3
	watchDeathBirth = 1.0
)

// Triage computes island health from a status and environment snapshot.
func Triage(st engine.Status, env engine.EnvironmentState) Health {
	h := Health{
		Population:   st.Stats.Population,
		Children:     st.Stats.Children,
		FoodUrgency:  env.Urgency["food"],
		AvgHunger:    st.Stats.AvgHunger,
		AvgHealth:    st.Stats.AvgHealth,
		Starvations:  st.Stats.Causes[string(agents.CauseStarvation)],
		ActiveThreat: len(env.Threats) > 0,
	}
	for _, r := range []string{"fish", "meat", "coconut"} {
		h.FoodStock += env.Store[r]
	}
	switch {
	case st.Stats.Births > 0:
		h.DeathBirth = float64(st.Stats.Deaths) / float64(st.Stats.Births)
	default:
		h.DeathBirth = float64(st.Stats.Deaths)
	}

	maxUrgency := 0.0
	for _, u := range env.Urgency {
		maxUrgency = max(maxUrgency, u)
	}

	switch {
	case h.Population == 0:
		h.CrisisLevel = LevelCritical
	case h.AvgHunger < criticalHunger && h.FoodStock == 0:
		h.CrisisLevel = LevelCritical
	case h.FoodUrgency > warningUrgency, h.AvgHealth < warningHealth:
		h.CrisisLevel = LevelWarning
	case h.DeathBirth > watchDeathBirth, maxUrgency > watchUrgency, h.ActiveThreat:
		h.CrisisLevel = LevelWatch
	default:
		h.CrisisLevel = LevelHealthy
	}
	return h
}
