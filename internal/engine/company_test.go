package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/social"
	"github.com/talgya/castaway/internal/world"
)

func TestCompanyBuildsGoodwill(t *testing.T) {
	s := New(emptyConfig(), 60)
	a := addAgent(s, 10, world.Vec2{})
	b := addAgent(s, 11, world.Vec2{X: 2})
	loner := addAgent(s, 12, world.Vec2{X: 40})

	for i := 0; i < 4; i++ {
		s.processCompany()
	}

	delta := 4 * s.cfg.Planner.CompanyDelta
	assert.InDelta(t, delta, s.Social.Opinion(a.ID, b.ID), 1e-9)
	assert.InDelta(t, delta, s.Social.Opinion(b.ID, a.ID), 1e-9)
	assert.Zero(t, s.Social.Opinion(a.ID, loner.ID))
	assert.Zero(t, s.Social.Opinion(loner.ID, b.ID))
}

func TestEnemiesComeToBlows(t *testing.T) {
	cfg := emptyConfig()
	cfg.Planner.QuarrelChance = 1
	s := New(cfg, 61)
	brute := addAgent(s, 10, world.Vec2{})
	victim := addAgent(s, 11, world.Vec2{X: 1})
	sister := addAgent(s, 12, world.Vec2{X: 50})
	s.Social.AddFamily(victim.ID, sister.ID)
	s.Social.Set(brute.ID, victim.ID, -40)

	s.processCompany()

	assert.Equal(t, social.Delta(social.ActionFight), s.Social.Opinion(victim.ID, brute.ID))
	assert.Equal(t, social.KinFightPenalty, s.Social.Opinion(sister.ID, brute.ID))
	assert.Equal(t, -40.0, s.Social.Opinion(brute.ID, victim.ID), "no goodwill between enemies")
	assert.InDelta(t, 1-cfg.Planner.FightDamage, victim.Needs.Health, 1e-9)
	assert.Equal(t, 1.0, brute.Needs.Health)
	assert.Contains(t, s.Events[len(s.Events)-1].Description, "came to blows")

	victim.Needs.Health = 0.02
	s.processCompany()
	assert.True(t, victim.Alive)
	assert.InDelta(t, 0.02, victim.Needs.Health, 1e-9)
}

func TestChildrenDoNotQuarrel(t *testing.T) {
	cfg := emptyConfig()
	cfg.Planner.QuarrelChance = 1
	s := New(cfg, 62)
	adult := addAgent(s, 10, world.Vec2{})
	child := addAgent(s, 11, world.Vec2{X: 1})
	child.Needs.Age = 6
	s.Social.Set(adult.ID, child.ID, -40)

	s.processCompany()

	assert.Zero(t, s.Social.Opinion(child.ID, adult.ID))
	assert.Equal(t, 1.0, child.Needs.Health)
}

func TestNobodyFeedsAnEnemy(t *testing.T) {
	s := New(emptyConfig(), 63)
	s.Nodes = nil
	giver := addAgent(s, 10, world.Vec2{})
	require.True(t, giver.Inventory.Add(inventory.Coconut, 2, 0))
	starving := addAgent(s, 11, world.Vec2{X: 3})
	starving.Needs.Hunger = 0.1
	s.Social.Set(giver.ID, starving.ID, -40)
	s.Tribe.Refresh(s.Agents, s.Store)
	require.Contains(t, s.Tribe.Critical(), starving.ID)

	assert.Nil(t, s.ruleAssist(giver))

	s.Social.Set(giver.ID, starving.ID, 0)
	task := s.ruleAssist(giver)
	require.NotNil(t, task)
	assert.Equal(t, &agents.Assist{Target: starving.ID}, task)
}
