package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	assert.Equal(t, uint64(1200), TicksPerDay)
	assert.Equal(t, uint64(50), TicksPerHour)

	assert.InDelta(t, 6.0, HourAt(0), 1e-9)
	assert.InDelta(t, 7.0, HourAt(TicksPerHour), 1e-9)
	assert.InDelta(t, 0.0, HourAt(18*TicksPerHour), 1e-9)

	assert.Equal(t, uint64(1), DayAt(0))
	assert.Equal(t, uint64(1), DayAt(18*TicksPerHour-1))
	assert.Equal(t, uint64(2), DayAt(18*TicksPerHour))

	assert.Equal(t, "Day 1, 6:00", SimTime(0))
	assert.Equal(t, "Day 1, 6:30", SimTime(TicksPerHour/2))
}

func TestEngineCallbacks(t *testing.T) {
	e := NewEngine()
	var ticks, hours, days int
	e.OnTick = func(uint64) { ticks++ }
	e.OnHour = func(uint64) { hours++ }
	e.OnDay = func(uint64) { days++ }

	e.StepN(int(TicksPerDay))

	assert.Equal(t, int(TicksPerDay), ticks)
	assert.Equal(t, 24, hours)
	assert.Equal(t, 1, days)
	assert.Equal(t, TicksPerDay, e.Tick)
}

func TestEngineAdvance(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, 0, e.Advance(0.25))
	assert.Equal(t, 1, e.Advance(0.25))

	// A long stall runs the cap and forgets the rest.
	assert.Equal(t, DefaultMaxStepsPerFrame, e.Advance(10))
	assert.Equal(t, 0, e.Advance(0.1))

	e.Speed = 4
	assert.Equal(t, 4, e.Advance(0.5))

	e.Speed = 0
	assert.Equal(t, 0, e.Advance(100))
	assert.Equal(t, uint64(1+DefaultMaxStepsPerFrame+4), e.Tick)
}

func TestEngineAdvanceIgnoresBadFrames(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 0, e.Advance(-1))
	assert.Zero(t, e.Tick)
}
