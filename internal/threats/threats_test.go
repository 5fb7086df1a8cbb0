package threats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/entropy"
	"github.com/talgya/castaway/internal/world"
)

type openSea struct{}

func (openSea) IsLand(world.Vec2) bool     { return true }
func (openSea) Depth(world.Vec2) float64   { return 0 }
func (openSea) InBounds(p world.Vec2) bool { return p.Len() <= 100 }

func boar() KindConfig { return DefaultConfig().Kinds[KindWildBoar] }

func TestSuccessChanceFormula(t *testing.T) {
	cfg := DefaultConfig()
	k := boar() // base 0.35, min group 1

	assert.InDelta(t, 0.35, SuccessChance(cfg, k, Party{Hunters: 1}), 1e-9)
	assert.InDelta(t, 0.35+0.24+0.15, SuccessChance(cfg, k, Party{Hunters: 3, Armed: true}), 1e-9)
	assert.InDelta(t, 0.35+0.15, SuccessChance(cfg, k, Party{Hunters: 1, AvgCombat: 0.5}), 1e-9)
	assert.InDelta(t, 0.9, SuccessChance(cfg, k, Party{Hunters: 6, Armed: true, AvgCombat: 1}), 1e-9)
	assert.Equal(t, 0.0, SuccessChance(cfg, k, Party{}))

	tusker := cfg.Kinds[KindOldTusker] // base 0.15, min group 3
	assert.InDelta(t, (0.15+0.12)*0.5, SuccessChance(cfg, tusker, Party{Hunters: 2}), 1e-9)
	assert.InDelta(t, 0.15+0.24, SuccessChance(cfg, tusker, Party{Hunters: 3}), 1e-9)
}

func TestCasualtyChanceModifiers(t *testing.T) {
	cfg := DefaultConfig()
	k := boar()
	assert.InDelta(t, 0.10, CasualtyChance(cfg, k, Party{Hunters: 1}, false), 1e-9)
	assert.InDelta(t, 0.05, CasualtyChance(cfg, k, Party{Hunters: 2}, false), 1e-9)
	assert.InDelta(t, 0.15, CasualtyChance(cfg, k, Party{Hunters: 1}, true), 1e-9)
}

func TestEncounterChanceMultipliers(t *testing.T) {
	cfg := DefaultConfig()
	shark := cfg.Kinds[KindShark]

	day := EncounterChance(cfg, shark, Conditions{Band: BandDay})
	assert.InDelta(t, 0.012*0.6, day, 1e-9)
	assert.InDelta(t, day*1.5, EncounterChance(cfg, shark, Conditions{Band: BandDay, Storm: true}), 1e-9)
	assert.InDelta(t, day*2, EncounterChance(cfg, shark, Conditions{Band: BandDay, Blood: true}), 1e-9)

	b := boar()
	assert.InDelta(t, EncounterChance(cfg, b, Conditions{Band: BandNight}),
		EncounterChance(cfg, b, Conditions{Band: BandNight, Blood: true}), 1e-9, "boars ignore blood")
}

func TestBandAt(t *testing.T) {
	assert.Equal(t, BandNight, BandAt(2))
	assert.Equal(t, BandDawn, BandAt(6))
	assert.Equal(t, BandDay, BandAt(12))
	assert.Equal(t, BandDusk, BandAt(19))
	assert.Equal(t, BandNight, BandAt(23.5))
}

func TestResolveRollOrder(t *testing.T) {
	cfg := DefaultConfig()
	k := boar()
	party := Party{Hunters: 2, Participants: 2}

	rng := entropy.NewStream(17)
	res := Resolve(rng, cfg, k, party)

	// success + hazard, then loot on success or one casualty roll per
	// participant on failure
	want := uint64(2 + party.Participants)
	if res.Success {
		want = uint64(2 + len(k.Loot))
	}
	assert.Equal(t, want, rng.Draws())

	again := Resolve(entropy.NewStream(17), cfg, k, party)
	assert.Equal(t, res, again)
}

func TestResolveLootWithinRange(t *testing.T) {
	cfg := DefaultConfig()
	k := boar()
	k.BaseSuccess = 1
	cfg.SuccessCap = 1
	rng := entropy.NewStream(4)
	for i := 0; i < 50; i++ {
		res := Resolve(rng, cfg, k, Party{Hunters: 3, Participants: 3})
		require.True(t, res.Success)
		for _, d := range res.Loot {
			found := false
			for _, l := range k.Loot {
				if l.Resource == d.Resource {
					found = true
					assert.GreaterOrEqual(t, d.Count, max(l.Min, 1))
					assert.LessOrEqual(t, d.Count, l.Max)
				}
			}
			assert.True(t, found)
		}
	}
}

func TestCasualtiesOnlyOnFailedHunts(t *testing.T) {
	cfg := DefaultConfig()
	k := boar()
	k.Casualty = 1

	k.BaseSuccess = 1
	cfg.SuccessCap = 1
	rng := entropy.NewStream(8)
	for i := 0; i < 20; i++ {
		res := Resolve(rng, cfg, k, Party{Hunters: 1, Participants: 1})
		require.True(t, res.Success)
		assert.Empty(t, res.Casualties)
	}

	k.BaseSuccess = 0
	for i := 0; i < 20; i++ {
		res := Resolve(rng, cfg, k, Party{Hunters: 1, Participants: 2})
		require.False(t, res.Success)
		assert.Equal(t, []int{0, 1}, res.Casualties)
		assert.Empty(t, res.Loot)
	}
}

func TestStateMachine(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)
	k := cfg.Kinds[KindWildBoar]
	th := m.Spawn(KindWildBoar, world.Vec2{X: 20})

	prey := []Prey{{ID: 3, Pos: world.Vec2{X: 26}}}
	preyFor := func(Kind) []Prey { return prey }

	m.Update(0.5, openSea{}, preyFor)
	require.Equal(t, Attacking, th.State)
	assert.Equal(t, agents.AgentID(3), th.Target)

	var engaged []Engagement
	for i := 0; i < 20 && len(engaged) == 0; i++ {
		engaged = m.Update(0.5, openSea{}, preyFor)
	}
	require.Len(t, engaged, 1)
	assert.Equal(t, agents.AgentID(3), engaged[0].Target)
	assert.Empty(t, m.Update(0.5, openSea{}, preyFor), "cooldown between strikes")

	th.Damage(th.MaxHealth*0.8, k)
	require.Equal(t, Fleeing, th.State)

	for i := 0; i < 400 && th.State == Fleeing; i++ {
		m.Update(0.5, openSea{}, func(Kind) []Prey { return nil })
	}
	assert.Equal(t, Dead, th.State)
	assert.True(t, th.Escaped)
	assert.Nil(t, m.Active(KindWildBoar))

	m.Prune()
	assert.Empty(t, m.Threats)
}

func TestAttackerLosesTarget(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)
	th := m.Spawn(KindWildBoar, world.Vec2{X: 20})

	m.Update(0.5, openSea{}, func(Kind) []Prey { return []Prey{{ID: 3, Pos: world.Vec2{X: 26}}} })
	require.Equal(t, Attacking, th.State)

	// The prey reached camp and is no longer huntable.
	m.Update(0.5, openSea{}, func(Kind) []Prey { return nil })
	assert.Equal(t, Patrolling, th.State)
	assert.Zero(t, th.Target)
}

func TestPatrolTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)
	th := m.Spawn(KindShark, world.Vec2{})
	ticks := int(cfg.Kinds[KindShark].PatrolSeconds/0.5) + 1
	for i := 0; i < ticks; i++ {
		m.Update(0.5, openSea{}, func(Kind) []Prey { return nil })
	}
	assert.Equal(t, Dead, th.State)
	assert.True(t, th.Escaped)
	assert.False(t, th.Killed)
}

func TestSlayAndBlood(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)
	th := m.Spawn(KindOldTusker, world.Vec2{})
	th.Slay()
	assert.True(t, th.Killed)
	assert.Equal(t, Dead, th.State)

	m.AddBlood(world.Vec2{X: 50})
	assert.True(t, m.BloodNear(world.Vec2{X: 45}))
	assert.False(t, m.BloodNear(world.Vec2{X: 0}))
	for i := 0; i < int(cfg.BloodSeconds/0.5); i++ {
		m.Update(0.5, openSea{}, func(Kind) []Prey { return nil })
	}
	assert.False(t, m.BloodActive())
}

func TestCheckDuePacing(t *testing.T) {
	m := NewManager(DefaultConfig())
	due := 0
	for i := 0; i < 100; i++ {
		if m.CheckDue(0.5) {
			due++
		}
	}
	assert.Equal(t, 5, due)
}
