// Host: the control surface tooling drives the simulation through. A mutex
// serializes callers (API handlers, the runner loop); the simulation itself
// is single-threaded.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/talgya/castaway/internal/agents"
)

// Host owns one simulation and its engine.
type Host struct {
	mu     sync.Mutex
	cfg    Config
	sim    *Simulation
	engine *Engine

	// Presentation-only clock offset in hours set by SetTimeOfDay.
	displayOffset float64

	onEvent func(Event)
	onDay   func(tick uint64, states []AgentState)
	onReset func(prev Status, digest string, seed int64)
}

// Status summarizes the host for quick polling.
type Status struct {
	Seed    int64    `json:"seed"`
	Tick    uint64   `json:"tick"`
	Time    string   `json:"time"`
	Hour    float64  `json:"hour"` // Display hour
	Speed   float64  `json:"speed"`
	Weather string   `json:"weather"`
	Stats   SimStats `json:"stats"`
}

// NewHost builds a host running a fresh island from seed.
func NewHost(cfg Config, seed int64) *Host {
	h := &Host{cfg: cfg}
	h.reset(seed, 1.0, DefaultMaxStepsPerFrame)
	return h
}

// OnEvent installs a callback for every simulation event. It runs with the
// host locked and must not call back into the host.
func (h *Host) OnEvent(fn func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvent = fn
	h.sim.OnEvent = fn
}

// OnDay installs a callback run once per simulated day with a snapshot of
// every agent. It runs with the host locked.
func (h *Host) OnDay(fn func(tick uint64, states []AgentState)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDay = fn
}

// OnReset installs a callback run by Reset before the island is rebuilt. It
// receives the status and digest of the run being discarded and the new
// seed. It runs with the host locked.
func (h *Host) OnReset(fn func(prev Status, digest string, seed int64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReset = fn
}

func (h *Host) reset(seed int64, speed float64, maxSteps int) {
	sim := New(h.cfg, seed)
	sim.OnEvent = h.onEvent

	eng := NewEngine()
	eng.Speed = speed
	eng.MaxStepsPerFrame = maxSteps
	eng.OnTick = func(uint64) { sim.Step() }
	eng.OnDay = func(tick uint64) {
		sim.DailyReport()
		if h.onDay != nil {
			h.onDay(tick, sim.AgentStates())
		}
	}

	h.sim = sim
	h.engine = eng
}

// Step advances exactly n ticks.
func (h *Host) Step(n int) {
	if n <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine.StepN(n)
}

// Advance feeds one host frame of wall time to the engine and returns the
// number of ticks run.
func (h *Host) Advance(frameSeconds float64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.Advance(frameSeconds)
}

// Reset rebuilds the island from seed. Speed and frame cap are kept.
func (h *Host) Reset(seed int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.onReset != nil {
		h.onReset(h.status(), h.sim.Digest(), seed)
	}
	h.reset(seed, h.engine.Speed, h.engine.MaxStepsPerFrame)
	h.displayOffset = 0
	slog.Info("simulation reset", "seed", seed)
}

// SetSimulationSpeed sets the wall-time multiplier. It never changes what a
// tick computes.
func (h *Host) SetSimulationSpeed(x float64) {
	if math.IsNaN(x) || x < 0 {
		x = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine.Speed = x
}

// SetTimeOfDay shifts the displayed clock so it reads hour now. Threat
// time bands keep using the tick clock.
func (h *Host) SetTimeOfDay(hour float64) {
	if math.IsNaN(hour) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.displayOffset = math.Mod(math.Mod(hour, 24)-h.sim.Hour()+24, 24)
}

// DisplayHour returns the presentation clock.
func (h *Host) DisplayHour() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.displayHour()
}

func (h *Host) displayHour() float64 {
	return math.Mod(h.sim.Hour()+h.displayOffset, 24)
}

// AgentStates snapshots every agent in ID order.
func (h *Host) AgentStates() []AgentState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sim.AgentStates()
}

// AgentState snapshots one agent.
func (h *Host) AgentState(id agents.AgentID) (AgentState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.sim.Agent(id)
	if a == nil {
		return AgentState{}, false
	}
	return h.sim.agentState(a), true
}

// EnvironmentState snapshots the island. Hour is the display hour.
func (h *Host) EnvironmentState() EnvironmentState {
	h.mu.Lock()
	defer h.mu.Unlock()
	env := h.sim.EnvironmentState()
	env.Hour = h.displayHour()
	return env
}

// Events returns retained events after tick, at most limit.
func (h *Host) Events(since uint64, limit int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sim.EventsSince(since, limit)
}

// Digest hashes the canonical simulation state.
func (h *Host) Digest() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sim.Digest()
}

// Status summarizes the host.
func (h *Host) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status()
}

func (h *Host) status() Status {
	return Status{
		Seed:    h.sim.Seed(),
		Tick:    h.sim.Tick,
		Time:    SimTime(h.sim.Tick),
		Hour:    h.displayHour(),
		Speed:   h.engine.Speed,
		Weather: h.sim.Weather.Current().Kind.String(),
		Stats:   h.sim.Stats.clone(),
	}
}

// Run advances the simulation in real time, one frame per interval, until
// ctx is cancelled.
func (h *Host) Run(ctx context.Context, frame time.Duration) {
	slog.Info("simulation loop started", "frame", frame.String())
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped", "tick", h.Status().Tick)
			return
		case now := <-ticker.C:
			h.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}
