// Manager: owns live threats and blood marks, and paces encounter checks
// on the tick clock.
package threats

import (
	"log/slog"
	"math"

	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/world"
)

// BloodMark is a fresh catch site that draws sharks.
type BloodMark struct {
	Pos       world.Vec2 `json:"pos"`
	Remaining float64    `json:"remaining"`
}

// Manager holds every threat in ID order.
type Manager struct {
	cfg     Config
	Threats []*Threat
	Blood   []BloodMark
	nextID  uint32
	clock   float64
}

// NewManager creates an empty manager.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, nextID: 1}
}

// Config returns the threat configuration.
func (m *Manager) Config() Config { return m.cfg }

// KindConfig returns the config of k.
func (m *Manager) KindConfig(k Kind) KindConfig {
	return m.cfg.Kinds[k]
}

// Kinds returns every configured kind in check order.
func (m *Manager) Kinds() []Kind {
	out := make([]Kind, len(m.cfg.Kinds))
	for i := range m.cfg.Kinds {
		out[i] = Kind(i)
	}
	return out
}

// CheckDue advances the encounter clock and reports whether a check is due.
func (m *Manager) CheckDue(dt float64) bool {
	m.clock += dt
	if m.clock+1e-9 >= m.cfg.CheckInterval {
		m.clock = 0
		return true
	}
	return false
}

// AddBlood marks pos as bloodied for BloodSeconds.
func (m *Manager) AddBlood(pos world.Vec2) {
	m.Blood = append(m.Blood, BloodMark{Pos: pos, Remaining: m.cfg.BloodSeconds})
}

// BloodNear reports whether any live blood mark is within BloodRadius of pos.
func (m *Manager) BloodNear(pos world.Vec2) bool {
	for _, b := range m.Blood {
		if b.Pos.Dist(pos) <= m.cfg.BloodRadius {
			return true
		}
	}
	return false
}

// BloodActive reports whether any blood mark is live.
func (m *Manager) BloodActive() bool {
	return len(m.Blood) > 0
}

func (m *Manager) ageBlood(dt float64) {
	kept := m.Blood[:0]
	for _, b := range m.Blood {
		b.Remaining -= dt
		if b.Remaining > 0 {
			kept = append(kept, b)
		}
	}
	m.Blood = kept
}

// Active returns the live threat of kind k, if any.
func (m *Manager) Active(k Kind) *Threat {
	for _, t := range m.Threats {
		if t.Kind == k && t.State != Dead {
			return t
		}
	}
	return nil
}

// Living returns every threat not yet dead.
func (m *Manager) Living() []*Threat {
	var out []*Threat
	for _, t := range m.Threats {
		if t.State != Dead {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the threat with id, or nil.
func (m *Manager) Get(id uint32) *Threat {
	for _, t := range m.Threats {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Roll makes one encounter roll for k and spawns it near target on success.
func (m *Manager) Roll(rng *entropy.Stream, k Kind, c Conditions, target world.Vec2) *Threat {
	kc := m.cfg.Kinds[k]
	if !rng.Chance(EncounterChance(m.cfg, kc, c)) {
		return nil
	}
	offset := world.FromHeading(rng.FloatRange(0, 2*math.Pi)).Scale(kc.AggroRadius * 0.8)
	return m.Spawn(k, target.Add(offset))
}

// Spawn adds a threat of kind k at pos in the patrolling state.
func (m *Manager) Spawn(k Kind, pos world.Vec2) *Threat {
	kc := m.cfg.Kinds[k]
	t := &Threat{
		ID:        m.nextID,
		Kind:      k,
		Name:      kc.Name,
		Pos:       pos,
		Home:      pos,
		Health:    kc.Health,
		MaxHealth: kc.Health,
		State:     Patrolling,
	}
	m.nextID++
	m.Threats = append(m.Threats, t)
	slog.Info("threat appeared", "id", t.ID, "name", t.Name)
	return t
}

// Update ages blood marks and steps every living threat. preyFor returns the
// prey each kind may target this tick. Engagements come back in threat order.
func (m *Manager) Update(dt float64, surf world.Surface, preyFor func(Kind) []Prey) []Engagement {
	m.ageBlood(dt)
	var out []Engagement
	for _, t := range m.Threats {
		if t.State == Dead {
			continue
		}
		if t.step(dt, m.cfg.Kinds[t.Kind], m.cfg, surf, preyFor(t.Kind)) {
			out = append(out, Engagement{Threat: t, Target: t.Target})
		}
	}
	return out
}

// Prune drops dead threats.
func (m *Manager) Prune() {
	kept := m.Threats[:0]
	for _, t := range m.Threats {
		if t.State != Dead {
			kept = append(kept, t)
		}
	}
	m.Threats = kept
}
