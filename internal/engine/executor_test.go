package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/skills"
	"github.com/talgya/castaway/internal/social"
)

func TestMasterCraftsmanDurability(t *testing.T) {
	s := New(emptyConfig(), 50)
	s.Nodes = nil
	a := addAgent(s, 10, s.Camp.StorePos)
	a.Skills.SetLevel(skills.Crafting, 100)

	craft := func(tool inventory.Tool) {
		task := &agents.Craft{Tool: tool, Started: true}
		s.commit(a, task)
		for i := 0; i < 200 && a.Task == task; i++ {
			s.execCraft(a, task, StepSeconds)
		}
		require.Nil(t, a.Task)
	}

	craft(inventory.FishingSpear)
	craft(inventory.StoneAxe)

	tools := s.Store.Tools()
	assert.Equal(t, []int{1}, tools[inventory.FishingSpear])
	assert.Equal(t, []int{30}, tools[inventory.StoneAxe])
	assert.Equal(t, 2, s.Stats.Crafted)
}

func TestMealFromStoreSettlesWithProvider(t *testing.T) {
	s := New(emptyConfig(), 51)
	s.Nodes = nil
	provider := addAgent(s, 10, s.Camp.StorePos)
	require.True(t, provider.Inventory.Add(inventory.Fish, 5, 0))
	s.depositAll(provider)
	require.Equal(t, provider.ID, s.provider)

	eat := func(a *agents.Agent) {
		s.commit(a, &agents.FetchFood{})
		s.execFetchFood(a, StepSeconds)
		require.Equal(t, agents.TaskEat, a.TaskKind())
	}

	freeloader := addAgent(s, 11, s.Camp.StorePos)
	eat(freeloader)
	assert.Equal(t, social.Delta(social.ActionShare), s.Social.Opinion(freeloader.ID, provider.ID))
	assert.Equal(t, social.Delta(social.ActionUnfairTrade), s.Social.Opinion(provider.ID, freeloader.ID))

	worker := addAgent(s, 12, s.Camp.StorePos)
	require.True(t, worker.Inventory.Add(inventory.Wood, 2, 0))
	eat(worker)
	assert.Equal(t, social.Delta(social.ActionShare), s.Social.Opinion(worker.ID, provider.ID))
	assert.Equal(t, social.Delta(social.ActionFairTrade), s.Social.Opinion(provider.ID, worker.ID))
	assert.False(t, s.contributed[worker.ID], "a meal spends the contribution")

	child := addAgent(s, 13, s.Camp.StorePos)
	child.Needs.Age = 6
	eat(child)
	assert.Equal(t, social.Delta(social.ActionShare), s.Social.Opinion(child.ID, provider.ID))
	assert.Zero(t, s.Social.Opinion(provider.ID, child.ID))

	// Depositing wood does not make the worker the provider.
	assert.Equal(t, provider.ID, s.provider)
	require.True(t, s.contributed[provider.ID])
	eat(provider)
	assert.False(t, s.contributed[provider.ID])
}
