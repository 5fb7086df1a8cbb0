// Tasks: one per agent, modeled as a closed set of concrete types.
// Each kind carries only the fields it needs and reports the claim keys it
// holds so the registry can be reconciled against live plans.
package agents

import (
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/world"
)

// TaskKind names a task type for snapshots and statistics.
type TaskKind uint8

const (
	TaskNone TaskKind = iota
	TaskEat
	TaskFetchFood
	TaskRest
	TaskAssist
	TaskDeposit
	TaskCraft
	TaskFetchTool
	TaskFish
	TaskGather
	TaskPatrol
	TaskRetreat
)

func (k TaskKind) String() string {
	switch k {
	case TaskNone:
		return "none"
	case TaskEat:
		return "eat"
	case TaskFetchFood:
		return "fetch_food"
	case TaskRest:
		return "rest"
	case TaskAssist:
		return "assist"
	case TaskDeposit:
		return "deposit"
	case TaskCraft:
		return "craft"
	case TaskFetchTool:
		return "fetch_tool"
	case TaskFish:
		return "fish"
	case TaskGather:
		return "gather"
	case TaskPatrol:
		return "patrol"
	case TaskRetreat:
		return "retreat"
	default:
		return "unknown"
	}
}

// Task is implemented only by the types in this file.
type Task interface {
	Kind() TaskKind
	ClaimKeys() []world.Key
	// Atomic tasks are never pre-empted by the planner.
	Atomic() bool
	task()
}

// Eat consumes one unit of food from the agent's own inventory.
type Eat struct {
	Food      inventory.Resource
	Remaining float64 // Seconds until the meal is finished
}

// FetchFood walks to the communal store and takes food.
type FetchFood struct{}

// Rest recovers energy. Forced rest lasts until Until energy is reached;
// idle rest lasts Remaining seconds.
type Rest struct {
	Forced    bool
	Until     float64
	Remaining float64
}

// Assist carries surplus food to a tribe-mate in critical need.
type Assist struct {
	Target AgentID
}

// Deposit hauls everything carried to the communal store.
type Deposit struct{}

// Craft produces a tool at the communal store from communal materials.
type Craft struct {
	Tool     inventory.Tool
	Started  bool
	Progress float64 // Seconds worked
}

// FetchTool takes a stocked tool from the communal store and equips it.
type FetchTool struct {
	Tool inventory.Tool
}

// Fish throws at one fish from a shore stand point.
type Fish struct {
	FishID   uint32
	Stand    world.Vec2
	Attempts int
	Cooldown float64 // Seconds until the next throw
}

// Gather harvests one node.
type Gather struct {
	Node        world.NodeID
	Category    inventory.Category
	Maintenance bool
	Progress    float64 // Accumulated work toward the next unit
}

// Patrol walks back toward the rally point.
type Patrol struct {
	Target world.Vec2
}

// Retreat runs for the camp after a fight with a predator. It is not
// interrupted until the agent is under the shelter.
type Retreat struct {
	Target world.Vec2
}

func (*Eat) Kind() TaskKind       { return TaskEat }
func (*FetchFood) Kind() TaskKind { return TaskFetchFood }
func (*Rest) Kind() TaskKind      { return TaskRest }
func (*Assist) Kind() TaskKind    { return TaskAssist }
func (*Deposit) Kind() TaskKind   { return TaskDeposit }
func (*Craft) Kind() TaskKind     { return TaskCraft }
func (*FetchTool) Kind() TaskKind { return TaskFetchTool }
func (*Fish) Kind() TaskKind      { return TaskFish }
func (*Gather) Kind() TaskKind    { return TaskGather }
func (*Patrol) Kind() TaskKind    { return TaskPatrol }
func (*Retreat) Kind() TaskKind   { return TaskRetreat }

func (*Eat) ClaimKeys() []world.Key       { return nil }
func (*FetchFood) ClaimKeys() []world.Key { return nil }
func (*Rest) ClaimKeys() []world.Key      { return nil }
func (t *Assist) ClaimKeys() []world.Key {
	return []world.Key{world.AssistKey(uint64(t.Target))}
}
func (*Deposit) ClaimKeys() []world.Key { return nil }
func (t *Craft) ClaimKeys() []world.Key {
	return []world.Key{world.CraftKey(string(t.Tool))}
}
func (t *FetchTool) ClaimKeys() []world.Key {
	return []world.Key{world.ToolKey(string(t.Tool))}
}
func (t *Fish) ClaimKeys() []world.Key   { return []world.Key{world.FishKey(t.FishID)} }
func (t *Gather) ClaimKeys() []world.Key { return []world.Key{world.NodeKey(t.Node)} }
func (*Patrol) ClaimKeys() []world.Key   { return nil }
func (*Retreat) ClaimKeys() []world.Key  { return nil }

func (*Eat) Atomic() bool       { return true }
func (*FetchFood) Atomic() bool { return false }
func (t *Rest) Atomic() bool    { return t.Forced }
func (*Assist) Atomic() bool    { return false }
func (*Deposit) Atomic() bool   { return false }
func (t *Craft) Atomic() bool   { return t.Started }
func (*FetchTool) Atomic() bool { return false }
func (*Fish) Atomic() bool      { return false }
func (*Gather) Atomic() bool    { return false }
func (*Patrol) Atomic() bool    { return false }
func (*Retreat) Atomic() bool   { return true }

func (*Eat) task()       {}
func (*FetchFood) task() {}
func (*Rest) task()      {}
func (*Assist) task()    {}
func (*Deposit) task()   {}
func (*Craft) task()     {}
func (*FetchTool) task() {}
func (*Fish) task()      {}
func (*Gather) task()    {}
func (*Patrol) task()    {}
func (*Retreat) task()   {}

// HoldsKey reports whether t claims key.
func HoldsKey(t Task, key world.Key) bool {
	if t == nil {
		return false
	}
	for _, k := range t.ClaimKeys() {
		if k == key {
			return true
		}
	}
	return false
}
