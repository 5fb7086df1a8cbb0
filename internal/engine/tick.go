// Package engine provides the fixed-step simulation loop and the world
// context every subsystem runs against.
package engine

import (
	"fmt"
	"log/slog"
	"math"
)

// Tick schedule. One tick is StepSeconds of simulated time.
const (
	StepSeconds  = 0.5
	DaySeconds   = 600.0
	TicksPerDay  = uint64(DaySeconds / StepSeconds) // 1200
	TicksPerHour = TicksPerDay / 24                 // 50

	// StartHour is the tick-clock hour at tick 0.
	StartHour = 6.0

	// DefaultMaxStepsPerFrame bounds catch-up work in one host frame.
	DefaultMaxStepsPerFrame = 8
)

// Engine drives the simulation forward in fixed steps.
type Engine struct {
	Tick             uint64  // Current tick counter (monotonic until reset)
	Speed            float64 // Multiplier: 1.0 = real-time, 0 = paused
	MaxStepsPerFrame int
	Running          bool

	accum float64 // Unspent simulated seconds

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // Every step
	OnHour func(tick uint64) // Every 50 ticks
	OnDay  func(tick uint64) // Every 1200 ticks
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:            1.0,
		MaxStepsPerFrame: DefaultMaxStepsPerFrame,
	}
}

// Advance accumulates frameSeconds × Speed of simulated time and runs as many
// whole steps as fit, at most MaxStepsPerFrame. Backlog beyond the cap is
// dropped. It returns the number of steps run.
func (e *Engine) Advance(frameSeconds float64) int {
	if e.Speed <= 0 || frameSeconds <= 0 || math.IsNaN(frameSeconds) {
		return 0
	}
	e.accum += frameSeconds * e.Speed

	steps := 0
	for e.accum >= StepSeconds && steps < e.MaxStepsPerFrame {
		e.accum -= StepSeconds
		e.step()
		steps++
	}
	if e.accum >= StepSeconds {
		slog.Debug("dropping simulation backlog", "seconds", e.accum, "tick", e.Tick)
		e.accum = math.Mod(e.accum, StepSeconds)
	}
	return steps
}

// StepN runs exactly n steps regardless of speed.
func (e *Engine) StepN(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.Tick%TicksPerHour == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if e.Tick%TicksPerDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
}

// HourAt returns the tick-clock hour in [0, 24) at tick.
func HourAt(tick uint64) float64 {
	h := StartHour + float64(tick%TicksPerDay)*24/float64(TicksPerDay)
	return math.Mod(h, 24)
}

// DayAt returns the 1-based day number at tick.
func DayAt(tick uint64) uint64 {
	return uint64((StartHour/24)*float64(TicksPerDay)+float64(tick))/TicksPerDay + 1
}

// SimTime returns a human-readable simulation time string from a tick number.
func SimTime(tick uint64) string {
	h := HourAt(tick)
	hours := int(h)
	minutes := int((h - float64(hours)) * 60)
	return fmt.Sprintf("Day %d, %d:%02d", DayAt(tick), hours, minutes)
}
