package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/threats"
	"github.com/talgya/castaway/internal/world"
)

// losingBoar configures a wild boar that always beats its hunters.
func losingBoar(casualty float64) Config {
	cfg := emptyConfig()
	cfg.Threats.SuccessCap = 0
	boar := &cfg.Threats.Kinds[threats.KindWildBoar]
	boar.Hazard = 0
	boar.Casualty = casualty
	return cfg
}

func afield(s *Simulation, dx float64) world.Vec2 {
	return s.Camp.Center.Add(world.Vec2{X: 30 + dx})
}

func TestFailedHuntCasualtyReleasesClaims(t *testing.T) {
	s := New(losingBoar(1), 40)
	palm := node(1, world.NodeCoconutPalm, afield(s, 3))
	s.Nodes = []*world.Node{palm}
	a := addAgent(s, 10, afield(s, 0))
	s.Tribe.Refresh(s.Agents, s.Store)
	s.plan(a)
	require.True(t, s.Claims.IsClaimed(palm.Key()))

	th := s.Threats.Spawn(threats.KindWildBoar, afield(s, 1))
	s.resolveFight(threats.Engagement{Threat: th, Target: a.ID})

	assert.False(t, a.Alive)
	assert.Equal(t, agents.CausePredator, a.Needs.Cause)
	assert.Empty(t, s.Claims.Held(a.ID))
	assert.False(t, s.Claims.IsClaimed(palm.Key()))
	assert.Equal(t, 1, s.Stats.Causes[string(agents.CausePredator)])
	assert.InDelta(t, 28.0, th.Health, 1e-9)
	assert.Zero(t, s.Stats.Hunts)
}

func TestFailedHuntSendsSurvivorsHome(t *testing.T) {
	s := New(losingBoar(0), 41)
	palm := node(1, world.NodeCoconutPalm, afield(s, 3))
	s.Nodes = []*world.Node{palm}
	first := addAgent(s, 10, afield(s, 0))
	second := addAgent(s, 11, afield(s, 2))
	s.Tribe.Refresh(s.Agents, s.Store)
	s.plan(first)
	require.Equal(t, agents.TaskGather, first.TaskKind())

	th := s.Threats.Spawn(threats.KindWildBoar, afield(s, 1))
	s.resolveFight(threats.Engagement{Threat: th, Target: first.ID})

	assert.True(t, first.Alive)
	assert.True(t, second.Alive)
	assert.Equal(t, agents.TaskRetreat, first.TaskKind())
	assert.Equal(t, agents.TaskRetreat, second.TaskKind())
	assert.Empty(t, s.Claims.Held(first.ID))
	assert.InDelta(t, 16.0, th.Health, 1e-9)
	assert.Equal(t, threats.Patrolling, th.State)

	// Hunger does not turn a retreat around.
	first.Needs.Hunger = 0.1
	s.Store.Add(inventory.Coconut, 2, 0)
	s.plan(first)
	assert.Equal(t, agents.TaskRetreat, first.TaskKind())

	for i := 0; i < 400 && first.Task != nil; i++ {
		s.execute(first, StepSeconds)
	}
	assert.Nil(t, first.Task)
	assert.True(t, s.Camp.InShelter(first.Pos))
}

func TestEnemyStandsAsideFromHunt(t *testing.T) {
	s := New(losingBoar(0), 42)
	s.Nodes = nil
	target := addAgent(s, 10, afield(s, 0))
	ally := addAgent(s, 11, afield(s, 1))
	rival := addAgent(s, 12, afield(s, 2))
	s.Social.Set(rival.ID, target.ID, -40)

	th := s.Threats.Spawn(threats.KindWildBoar, afield(s, 1))
	s.resolveFight(threats.Engagement{Threat: th, Target: target.ID})

	// Two hunters, not three.
	assert.InDelta(t, 16.0, th.Health, 1e-9)
	assert.Equal(t, social.Delta(social.ActionBetrayal), s.Social.Opinion(target.ID, rival.ID))
	assert.Zero(t, s.Social.Opinion(target.ID, ally.ID))
	assert.NotEqual(t, agents.TaskRetreat, rival.TaskKind())
	assert.Equal(t, agents.TaskRetreat, ally.TaskKind())
	assert.Contains(t, s.Events[len(s.Events)-1].Description, "stood by")
}

func TestOldTuskerSlain(t *testing.T) {
	cfg := emptyConfig()
	cfg.Threats.SuccessCap = 1
	tusker := &cfg.Threats.Kinds[threats.KindOldTusker]
	tusker.BaseSuccess = 1
	tusker.Hazard = 0
	s := New(cfg, 43)
	s.Nodes = nil

	var hunters []*agents.Agent
	for i := 0; i < 3; i++ {
		h := addAgent(s, agents.AgentID(10+i), afield(s, float64(i)))
		require.True(t, h.Inventory.AddTool(inventory.HuntingSpear, 3))
		hunters = append(hunters, h)
	}
	bystander := addAgent(s, 20, s.Camp.Center)

	th := s.Threats.Spawn(threats.KindOldTusker, afield(s, 1))
	s.resolveFight(threats.Engagement{Threat: th, Target: hunters[0].ID})

	assert.True(t, th.Killed)
	assert.Equal(t, threats.Dead, th.State)
	assert.Equal(t, 1, s.Stats.Hunts)

	assert.GreaterOrEqual(t, s.Store.Count(inventory.Meat), 6)
	assert.GreaterOrEqual(t, s.Store.Count(inventory.Hide), 2)
	assert.Equal(t, 2, s.Store.Count(inventory.Tusk))

	for _, h := range hunters {
		assert.True(t, h.Alive)
		assert.Equal(t, []int{2}, h.Inventory.Tools()[inventory.HuntingSpear])
		assert.Equal(t, 1, h.Kills)
		assert.Equal(t, social.HeroBoost, s.Social.Opinion(bystander.ID, h.ID))
	}
	assert.Equal(t, social.Delta(social.ActionProtect)+social.Delta(social.ActionTeamUp)+social.HeroBoost,
		s.Social.Opinion(hunters[0].ID, hunters[1].ID))
}
