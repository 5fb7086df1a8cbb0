package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPresentationDoesNotChangeOutcome(t *testing.T) {
	plain := NewHost(DefaultConfig(), 5)
	tuned := NewHost(DefaultConfig(), 5)
	tuned.SetSimulationSpeed(3)
	tuned.SetTimeOfDay(22)
	assert.InDelta(t, 22.0, tuned.DisplayHour(), 1e-9)

	plain.Step(600)
	tuned.Step(600)

	assert.Equal(t, plain.Digest(), tuned.Digest())
	assert.InDelta(t, 10.0, tuned.DisplayHour(), 1e-9)
	assert.InDelta(t, 18.0, plain.DisplayHour(), 1e-9)
	assert.InDelta(t, 18.0, plain.EnvironmentState().Hour, 1e-9)
}

func TestHostSpeedScalesWallTime(t *testing.T) {
	h := NewHost(DefaultConfig(), 6)
	h.SetSimulationSpeed(2)
	assert.Equal(t, 2, h.Advance(0.5))

	h.SetSimulationSpeed(-1)
	assert.Equal(t, 0, h.Advance(1))
	assert.Equal(t, uint64(2), h.Status().Tick)
}

func TestHostReset(t *testing.T) {
	h := NewHost(DefaultConfig(), 7)
	h.SetSimulationSpeed(2)
	h.Step(100)
	first := h.Digest()

	h.Reset(7)
	st := h.Status()
	assert.Equal(t, uint64(0), st.Tick)
	assert.Equal(t, 2.0, st.Speed)
	h.Step(100)
	assert.Equal(t, first, h.Digest())

	h.Reset(8)
	assert.Equal(t, int64(8), h.Status().Seed)
}

func TestHostResetCallback(t *testing.T) {
	h := NewHost(DefaultConfig(), 7)
	h.Step(100)
	digest := h.Digest()

	var prev Status
	var gotDigest string
	var next int64
	calls := 0
	h.OnReset(func(st Status, d string, seed int64) {
		calls++
		prev, gotDigest, next = st, d, seed
	})

	h.Reset(11)

	require.Equal(t, 1, calls)
	assert.Equal(t, int64(7), prev.Seed)
	assert.Equal(t, uint64(100), prev.Tick)
	assert.Equal(t, digest, gotDigest)
	assert.Equal(t, int64(11), next)
	assert.Equal(t, int64(11), h.Status().Seed)
}

func TestHostCallbacks(t *testing.T) {
	h := NewHost(DefaultConfig(), 9)
	var events []Event
	var days []uint64
	var living int
	h.OnEvent(func(e Event) { events = append(events, e) })
	h.OnDay(func(tick uint64, states []AgentState) {
		days = append(days, tick)
		for _, st := range states {
			if st.Alive {
				living++
			}
		}
	})

	h.Step(int(TicksPerDay))

	require.Len(t, days, 1)
	assert.Equal(t, TicksPerDay, days[0])
	assert.Positive(t, living)
	assert.Equal(t, h.Events(0, 0), events[len(events)-len(h.Events(0, 0)):])
}

func TestHostAgentLookup(t *testing.T) {
	h := NewHost(DefaultConfig(), 10)
	states := h.AgentStates()
	require.NotEmpty(t, states)

	st, ok := h.AgentState(states[0].ID)
	require.True(t, ok)
	assert.Equal(t, states[0].Name, st.Name)

	_, ok = h.AgentState(999999)
	assert.False(t, ok)
}
