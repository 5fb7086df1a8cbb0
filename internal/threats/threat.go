// Threat state machine: patrolling → attacking ↔ fleeing → dead.
package threats

import (
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/world"
)

// State is a threat's behavior state.
type State uint8

const (
	Patrolling State = iota
	Attacking
	Fleeing
	Dead
)

func (s State) String() string {
	switch s {
	case Patrolling:
		return "patrolling"
	case Attacking:
		return "attacking"
	case Fleeing:
		return "fleeing"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Threat is one live predator.
type Threat struct {
	ID        uint32         `json:"id"`
	Kind      Kind           `json:"kind"`
	Name      string         `json:"name"`
	Pos       world.Vec2     `json:"pos"`
	Home      world.Vec2     `json:"home"`
	Health    float64        `json:"health"`
	MaxHealth float64        `json:"max_health"`
	State     State          `json:"state"`
	Target    agents.AgentID `json:"target,omitempty"`
	Killed    bool           `json:"killed"`  // Dead by hunt, not escape
	Escaped   bool           `json:"escaped"` // Dead by leaving

	stateClock float64
	cooldown   float64
}

// Prey is a potential target as seen by a threat.
type Prey struct {
	ID  agents.AgentID
	Pos world.Vec2
}

// Engagement is a threat reaching its target this tick.
type Engagement struct {
	Threat *Threat
	Target agents.AgentID
}

// Damage lowers health; below the flee fraction an attacking threat flees.
func (t *Threat) Damage(amount float64, k KindConfig) {
	if t.State == Dead {
		return
	}
	t.Health = math.Max(0, t.Health-amount)
	if t.Health <= 0 {
		t.kill()
		return
	}
	if t.Health < k.FleeFraction*t.MaxHealth {
		t.setState(Fleeing)
	}
}

// Slay marks the threat killed by hunters.
func (t *Threat) Slay() {
	t.kill()
}

func (t *Threat) kill() {
	t.Health = 0
	t.Killed = true
	t.setState(Dead)
}

func (t *Threat) escape() {
	t.Escaped = true
	t.setState(Dead)
	slog.Debug("threat escaped", "id", t.ID, "name", t.Name)
}

func (t *Threat) setState(s State) {
	if t.State != s {
		t.State = s
		t.stateClock = 0
	}
}

// step advances one threat given the prey its habitat allows. It returns
// true when the threat reached its target and may strike.
func (t *Threat) step(dt float64, k KindConfig, cfg Config, surf world.Surface, prey []Prey) bool {
	if t.State == Dead {
		return false
	}
	t.stateClock += dt
	t.cooldown = math.Max(0, t.cooldown-dt)

	target, found := findPrey(prey, t.Target)
	switch t.State {
	case Patrolling:
		near, ok := nearestPrey(t.Pos, prey, k.AggroRadius)
		if ok {
			t.Target = near.ID
			t.setState(Attacking)
			return false
		}
		if t.stateClock >= k.PatrolSeconds {
			t.escape()
		}
		return false

	case Attacking:
		if !found {
			t.Target = 0
			t.setState(Patrolling)
			return false
		}
		next, arrived := t.Pos.MoveToward(target.Pos, k.Speed*dt)
		if !arrived {
			arrived = next.Dist(target.Pos) <= k.StrikeRange
		}
		t.Pos = next
		if arrived && t.cooldown == 0 {
			t.cooldown = cfg.EngageCooldown
			return true
		}
		return false

	case Fleeing:
		t.Health = math.Min(t.MaxHealth, t.Health+k.Regen*dt)
		from := t.Home
		if found {
			from = target.Pos
		}
		away := t.Pos.Sub(from).Normalize()
		if away == (world.Vec2{}) {
			away = t.Pos.Normalize()
		}
		t.Pos = t.Pos.Add(away.Scale(k.Speed * dt))
		if !surf.InBounds(t.Pos) || t.stateClock >= k.FleeSeconds {
			t.escape()
			return false
		}
		if found && t.Health >= k.RecoverFraction*t.MaxHealth && t.Pos.Dist(target.Pos) <= k.AggroRadius {
			t.setState(Attacking)
		}
	}
	return false
}

func findPrey(prey []Prey, id agents.AgentID) (Prey, bool) {
	if id == 0 {
		return Prey{}, false
	}
	for _, p := range prey {
		if p.ID == id {
			return p, true
		}
	}
	return Prey{}, false
}

func nearestPrey(pos world.Vec2, prey []Prey, radius float64) (Prey, bool) {
	var best Prey
	bestD := math.Inf(1)
	for _, p := range prey {
		if d := pos.Dist(p.Pos); d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD <= radius
}
