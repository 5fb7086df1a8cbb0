package agents

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/entropy"
)

const dt = 0.5

func healthyAdult() Needs {
	return Needs{Hunger: 0.8, Energy: 0.8, Health: 0.9, Social: 0.7, Age: 30}
}

func TestAdvanceKeepsNeedsBounded(t *testing.T) {
	cfg := DefaultNeedsConfig()
	rng := entropy.NewStream(42)
	ctxRng := entropy.NewStream(7)

	for trial := 0; trial < 20; trial++ {
		n := Needs{
			Hunger: ctxRng.Float(), Energy: ctxRng.Float(), Health: ctxRng.Float(),
			Social: ctxRng.Float(), Age: ctxRng.FloatRange(0, 70),
		}
		for tick := 0; tick < 2000; tick++ {
			ctx := Context{
				Moving:        ctxRng.Chance(0.5),
				Resting:       ctxRng.Chance(0.3),
				InShelter:     ctxRng.Chance(0.5),
				InWater:       ctxRng.Chance(0.1),
				NearbyAgents:  ctxRng.Intn(6),
				NearSickAgent: ctxRng.Chance(0.1),
			}
			out := Advance(&n, dt, ctx, rng, cfg)
			for _, v := range []float64{n.Hunger, n.Energy, n.Health, n.Social, n.Drive} {
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
			}
			if !out.Alive {
				require.NotEqual(t, CauseNone, out.Cause)
				break
			}
		}
	}
}

func TestStarvationScenario(t *testing.T) {
	cfg := DefaultNeedsConfig()

	n := healthyAdult()
	n.Hunger = 0.05
	out := Advance(&n, dt, Context{}, entropy.NewStream(1), cfg)
	assert.True(t, out.Alive)
	assert.InDelta(t, 0.05-cfg.HungerDecay*dt, n.Hunger, 1e-12)

	n = healthyAdult()
	n.Hunger = 0.0005
	out = Advance(&n, dt, Context{}, entropy.NewStream(1), cfg)
	assert.False(t, out.Alive)
	assert.Equal(t, CauseStarvation, out.Cause)
	assert.Equal(t, CauseStarvation, n.Cause)
	assert.Equal(t, 0.0, n.Hunger)
}

func TestExhaustionAndDrowning(t *testing.T) {
	cfg := DefaultNeedsConfig()

	n := healthyAdult()
	n.Energy = 0
	n.ExhaustionTimer = cfg.ExhaustionTimeout - 0.1
	out := Advance(&n, dt, Context{Moving: true}, entropy.NewStream(1), cfg)
	assert.Equal(t, CauseExhaustion, out.Cause)

	n = healthyAdult()
	n.Energy = 0
	n.ExhaustionTimer = cfg.ExhaustionTimeout - 0.1
	out = Advance(&n, dt, Context{InWater: true, InDeepWater: true}, entropy.NewStream(1), cfg)
	assert.Equal(t, CauseDrowning, out.Cause)
}

func TestExhaustionTimerResetsWithEnergy(t *testing.T) {
	cfg := DefaultNeedsConfig()
	n := healthyAdult()
	n.Energy = 0
	n.ExhaustionTimer = 30
	out := Advance(&n, dt, Context{Resting: true}, entropy.NewStream(1), cfg)
	require.True(t, out.Alive)
	assert.Greater(t, n.Energy, 0.0)
	assert.Equal(t, 0.0, n.ExhaustionTimer)
}

func TestHealthDeathPrefersSickness(t *testing.T) {
	cfg := DefaultNeedsConfig()

	cases := []struct {
		name string
		sick bool
		age  float64
		want DeathCause
	}{
		{"sick elder", true, 55, CauseSickness},
		{"healthy elder", false, 55, CauseOldAge},
		{"adult", false, 30, CauseFailingHealth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := healthyAdult()
			n.Age = tc.age
			n.Health = 0.00004
			n.Sick = tc.sick
			n.SickTimer = 100
			out := Advance(&n, dt, Context{}, entropy.NewStream(1), cfg)
			assert.False(t, out.Alive)
			assert.Equal(t, tc.want, out.Cause)
		})
	}
}

func TestDeathCauseIsWriteOnce(t *testing.T) {
	n := healthyAdult()
	require.True(t, n.SetCause(CausePredator))
	assert.False(t, n.SetCause(CauseStarvation))
	assert.Equal(t, CausePredator, n.Cause)

	rng := entropy.NewStream(3)
	out := Advance(&n, dt, Context{NearSickAgent: true}, rng, DefaultNeedsConfig())
	assert.False(t, out.Alive)
	assert.Equal(t, CausePredator, out.Cause)
	assert.Equal(t, uint64(0), rng.Draws())
}

func TestRandomBranchesDrawOnlyWhenGated(t *testing.T) {
	cfg := DefaultNeedsConfig()

	rng := entropy.NewStream(5)
	n := healthyAdult()
	Advance(&n, dt, Context{NearbyAgents: 2}, rng, cfg)
	assert.Equal(t, uint64(0), rng.Draws(), "no gate open")

	n = healthyAdult()
	Advance(&n, dt, Context{NearSickAgent: true}, rng, cfg)
	assert.Equal(t, uint64(1), rng.Draws(), "one contagion roll")

	rng = entropy.NewStream(5)
	n = healthyAdult()
	n.Age = cfg.MaxAge + 2
	Advance(&n, dt, Context{}, rng, cfg)
	assert.Equal(t, uint64(1), rng.Draws(), "one old-age roll")
}

func TestContagionIsReproducible(t *testing.T) {
	cfg := DefaultNeedsConfig()
	cfg.ContagionRate = 0.5

	run := func() []int {
		rng := entropy.NewStream(99)
		var sickTicks []int
		n := healthyAdult()
		for tick := 0; tick < 200; tick++ {
			out := Advance(&n, dt, Context{NearSickAgent: true, Resting: true}, rng, cfg)
			for _, e := range out.Events {
				if e == EventFellSick {
					sickTicks = append(sickTicks, tick)
				}
			}
		}
		return sickTicks
	}
	first := run()
	require.NotEmpty(t, first)
	assert.Equal(t, first, run())
}

func TestPregnancyReachesBirth(t *testing.T) {
	cfg := DefaultNeedsConfig()
	n := healthyAdult()
	require.True(t, n.Conceive(cfg))
	assert.False(t, n.Conceive(cfg))
	assert.Equal(t, 0.0, n.Drive)

	n.PregnancyTimer = dt
	out := Advance(&n, dt, Context{NearbyAgents: 1}, entropy.NewStream(1), cfg)
	require.True(t, out.Alive)
	assert.Contains(t, out.Events, EventBirthDue)
	assert.False(t, n.Pregnant)
}

func TestDriveAccruesForAdultsOnly(t *testing.T) {
	cfg := DefaultNeedsConfig()
	rng := entropy.NewStream(1)

	child := healthyAdult()
	child.Age = 8
	Advance(&child, dt, Context{NearbyAgents: 1}, rng, cfg)
	assert.Equal(t, 0.0, child.Drive)

	adult := healthyAdult()
	Advance(&adult, dt, Context{NearbyAgents: 1}, rng, cfg)
	assert.Greater(t, adult.Drive, 0.0)
}

func TestAdvanceClampsCorruptInput(t *testing.T) {
	n := healthyAdult()
	n.Hunger = math.NaN()
	n.Social = 4
	n.Energy = -1
	out := Advance(&n, dt, Context{NearbyAgents: 1}, entropy.NewStream(1), DefaultNeedsConfig())
	require.True(t, out.Alive)
	assert.False(t, math.IsNaN(n.Hunger))
	assert.LessOrEqual(t, n.Social, 1.0)
	assert.GreaterOrEqual(t, n.Energy, 0.0)
}

func TestStageIsPureFunctionOfAge(t *testing.T) {
	assert.Equal(t, StageChild, StageOf(0))
	assert.Equal(t, StageChild, StageOf(13.99))
	assert.Equal(t, StageAdult, StageOf(14))
	assert.Equal(t, StageAdult, StageOf(49.9))
	assert.Equal(t, StageElder, StageOf(50))
}
