// Package agents provides the castaway data model, the needs and lifecycle
// engine, the task sum type and population spawning.
package agents

import (
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/world"
)

// AgentID is a unique identifier for an agent. IDs are issued in increasing
// order and define the stable per-tick processing order.
type AgentID uint64

// Sex represents biological sex for reproduction.
type Sex uint8

const (
	SexMale   Sex = 0
	SexFemale Sex = 1
)

func (s Sex) String() string {
	if s == SexFemale {
		return "female"
	}
	return "male"
}

// BehaviorState is what the agent is visibly doing this tick.
type BehaviorState uint8

const (
	StateIdle BehaviorState = iota
	StateWalking
	StateGathering
	StateHauling
	StateResting
	StateEating
	StateCrafting
	StateFishing
)

func (s BehaviorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateGathering:
		return "gathering"
	case StateHauling:
		return "hauling"
	case StateResting:
		return "resting"
	case StateEating:
		return "eating"
	case StateCrafting:
		return "crafting"
	case StateFishing:
		return "fishing"
	default:
		return "unknown"
	}
}

// Moving reports whether the state counts as movement for need decay.
func (s BehaviorState) Moving() bool {
	return s == StateWalking || s == StateHauling
}

// Agent is one castaway.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`
	Sex  Sex     `json:"sex"`

	// Location
	Pos     world.Vec2 `json:"pos"`
	Heading float64    `json:"heading"`

	Needs     Needs            `json:"needs"`
	Skills    *skills.Ledger   `json:"skills"`
	Inventory *inventory.Store `json:"-"`

	// Planning
	Task  Task          `json:"-"`
	State BehaviorState `json:"state"`

	// Family and renown
	Parents []AgentID `json:"parents,omitempty"`
	Kills   int       `json:"kills"` // Named threats defeated

	Memories []Memory `json:"memories,omitempty"`

	// Metadata
	BornTick uint64 `json:"born_tick"`
	DiedTick uint64 `json:"died_tick,omitempty"`
	Alive    bool   `json:"alive"`
}

// Stage returns the agent's life stage.
func (a *Agent) Stage() LifeStage {
	return a.Needs.Stage()
}

// IsAdult reports whether the agent may work, fight and reproduce.
func (a *Agent) IsAdult() bool {
	return a.Needs.Stage() != StageChild
}

// TaskKind returns the kind of the current task, or TaskNone.
func (a *Agent) TaskKind() TaskKind {
	if a.Task == nil {
		return TaskNone
	}
	return a.Task.Kind()
}

// Kill marks the agent dead with cause. It returns false if the agent was
// already dead; the first cause recorded wins.
func (a *Agent) Kill(cause DeathCause, tick uint64) bool {
	if !a.Alive {
		return false
	}
	a.Needs.SetCause(cause)
	a.Alive = false
	a.DiedTick = tick
	a.Task = nil
	a.State = StateIdle
	return true
}
