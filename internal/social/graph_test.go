package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
)

func TestOpinionClampedAndMembershipDerived(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, 100.0, g.Set(1, 2, 250))
	assert.True(t, g.IsFriend(1, 2))
	assert.False(t, g.IsFriend(2, 1), "edges are directed")

	assert.Equal(t, -100.0, g.Adjust(1, 2, -400))
	assert.False(t, g.IsFriend(1, 2))
	assert.True(t, g.IsEnemy(1, 2))

	g.Set(1, 2, 0)
	assert.Empty(t, g.Enemies(1))
	assert.Equal(t, 0.0, g.Set(3, 3, 50), "self edges ignored")
}

func TestThresholdsAreInclusive(t *testing.T) {
	g := NewGraph()
	g.Set(1, 2, FriendThreshold)
	g.Set(1, 3, EnemyThreshold)
	g.Set(1, 4, FriendThreshold-0.1)
	assert.Equal(t, []agents.AgentID{2}, g.Friends(1))
	assert.Equal(t, []agents.AgentID{3}, g.Enemies(1))
}

func TestApplyActionTable(t *testing.T) {
	g := NewGraph()
	g.Apply(ActionShare, 1, 2)
	assert.Equal(t, 5.0, g.Opinion(2, 1))
	assert.Equal(t, 0.0, g.Opinion(1, 2))

	g.Apply(ActionProtect, 1, 2)
	g.Apply(ActionHelp, 1, 2)
	g.Apply(ActionFairTrade, 1, 2)
	assert.Equal(t, 31.0, g.Opinion(2, 1))
	assert.True(t, g.IsFriend(2, 1))

	g.Apply(ActionBetrayal, 1, 2)
	assert.Equal(t, 6.0, g.Opinion(2, 1))
	assert.False(t, g.IsFriend(2, 1))
}

func TestMutualActions(t *testing.T) {
	g := NewGraph()
	changes := g.Apply(ActionMate, 1, 2)
	require.Len(t, changes, 2)
	assert.Equal(t, 20.0, g.Opinion(1, 2))
	assert.Equal(t, 20.0, g.Opinion(2, 1))

	g.Apply(ActionTeamUp, 2, 1)
	assert.Equal(t, 24.0, g.Opinion(1, 2))
	assert.Equal(t, 24.0, g.Opinion(2, 1))
}

func TestFightAngersVictimsKin(t *testing.T) {
	g := NewGraph()
	g.AddFamily(2, 3)
	g.AddFamily(2, 4)
	g.AddFamily(2, 1) // attacker is kin too

	changes := g.Apply(ActionFight, 1, 2)
	assert.Len(t, changes, 3)
	assert.Equal(t, -12.0, g.Opinion(2, 1))
	assert.Equal(t, -8.0, g.Opinion(3, 1))
	assert.Equal(t, -8.0, g.Opinion(4, 1))
	assert.Equal(t, 0.0, g.Opinion(1, 1))
}

func TestFamilyIsSymmetric(t *testing.T) {
	g := NewGraph()
	g.AddFamily(5, 9)
	assert.True(t, g.IsFamily(5, 9))
	assert.True(t, g.IsFamily(9, 5))
	assert.Equal(t, []agents.AgentID{9}, g.Family(5))
	assert.False(t, g.IsFamily(5, 5))
}

func TestRenown(t *testing.T) {
	g := NewGraph()
	living := []agents.AgentID{1, 2, 3}

	assert.Equal(t, RenownHero, g.GrantRenown(1, 1, living))
	assert.Equal(t, 10.0, g.Opinion(2, 1))
	assert.Equal(t, 10.0, g.Opinion(3, 1))
	assert.Equal(t, 0.0, g.Opinion(1, 1))

	assert.Equal(t, RenownNone, g.GrantRenown(1, 2, living))
	assert.Equal(t, 10.0, g.Opinion(2, 1))

	assert.Equal(t, RenownLegend, g.GrantRenown(1, 3, living))
	assert.Equal(t, 30.0, g.Opinion(2, 1))
	assert.True(t, g.IsFriend(2, 1))
}
