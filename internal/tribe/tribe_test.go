package tribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/inventory"
	"github.com/talgya/castaway/internal/world"
)

func TestClaimHasSingleOwner(t *testing.T) {
	r := NewRegistry()
	key := world.NodeKey(4)

	require.True(t, r.Claim(key, 1))
	assert.True(t, r.Claim(key, 1), "re-claim by owner")
	assert.False(t, r.Claim(key, 2))

	owner, ok := r.Owner(key)
	require.True(t, ok)
	assert.Equal(t, agents.AgentID(1), owner)

	assert.False(t, r.Release(key, 2), "only the owner releases")
	assert.True(t, r.Release(key, 1))
	assert.False(t, r.IsClaimed(key))
	assert.True(t, r.Claim(key, 2))
}

func TestReleaseAll(t *testing.T) {
	r := NewRegistry()
	r.Claim(world.NodeKey(2), 7)
	r.Claim(world.FishKey(1), 7)
	r.Claim(world.NodeKey(3), 8)

	released := r.ReleaseAll(7)
	assert.Equal(t, []world.Key{"fish:1", "node:2"}, released)
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, r.Held(7))
	assert.Empty(t, r.ReleaseAll(7))
}

func TestReconcileDropsInactive(t *testing.T) {
	r := NewRegistry()
	r.Claim(world.NodeKey(1), 1)
	r.Claim(world.NodeKey(2), 2)
	r.Claim(world.CraftKey("stone_axe"), 3)

	alive := map[agents.AgentID]bool{1: true, 2: false, 3: true}
	pursuing := map[world.Key]bool{world.NodeKey(1): true}

	var visited []world.Key
	dropped := r.Reconcile(func(owner agents.AgentID, key world.Key) bool {
		visited = append(visited, key)
		return alive[owner] && pursuing[key]
	})
	assert.Equal(t, []world.Key{"craft:stone_axe", "node:1", "node:2"}, visited)
	assert.Equal(t, []Claim{
		{Key: "craft:stone_axe", Owner: 3},
		{Key: "node:2", Owner: 2},
	}, dropped)
	assert.Equal(t, []world.Key{"node:1"}, r.Keys())
}

func newAgent(id agents.AgentID, hunger, energy float64, task agents.Task) *agents.Agent {
	return &agents.Agent{
		ID:    id,
		Alive: true,
		Needs: agents.Needs{Hunger: hunger, Energy: energy, Health: 1, Social: 1, Age: 30},
		Task:  task,
	}
}

func TestRefreshComputesUrgencyAndCritical(t *testing.T) {
	cfg := DefaultConfig()
	c := NewCoordinator(cfg)

	store := inventory.NewStore(inventory.CommunalLimits())
	require.True(t, store.Add(inventory.Coconut, 12, 0))
	require.True(t, store.Add(inventory.Wood, 20, 0))

	dead := newAgent(9, 0.1, 0.1, nil)
	dead.Alive = false
	pop := []*agents.Agent{
		newAgent(1, 0.2, 0.9, nil),
		newAgent(2, 0.9, 0.1, &agents.Gather{Node: 1, Category: inventory.CategoryWood}),
		newAgent(3, 0.9, 0.9, &agents.Fish{FishID: 1}),
		newAgent(4, 0.9, 0.9, &agents.Gather{Node: 2, Category: inventory.CategoryStone}),
		dead,
	}
	c.Refresh(pop, store)

	assert.Equal(t, 4, c.Population)
	assert.Equal(t, []agents.AgentID{1, 2}, c.Critical())
	assert.False(t, c.IsCritical(9))

	// food desired 24, stock 12 → 0.5; wood desired 16, stock 20 → 0
	assert.InDelta(t, 0.5, c.Urgency[inventory.CategoryFood], 1e-9)
	assert.Equal(t, 0.0, c.Urgency[inventory.CategoryWood])
	assert.Equal(t, 1.0, c.Urgency[inventory.CategoryStone])

	assert.Equal(t, 1, c.Workers[inventory.CategoryWood])
	assert.Equal(t, 1, c.Workers[inventory.CategoryStone])
	assert.Equal(t, 1, c.Fishers)

	// ceil(4 × 0.5 × 0.6) = 2
	assert.Equal(t, 2, c.WorkerCap(inventory.CategoryFood))
	assert.Equal(t, 0, c.WorkerCap(inventory.CategoryWood))
	assert.Equal(t, 1, c.FisherCap())

	assert.Equal(t, []inventory.Category{
		inventory.CategoryStone, inventory.CategoryFiber, inventory.CategoryFood,
	}, c.MostDeficient())
	assert.Equal(t, inventory.CategoryStone, c.LeastStocked())
}

func TestIncrementalCounts(t *testing.T) {
	c := NewCoordinator(DefaultConfig())
	c.AddWorker(inventory.CategoryFood)
	c.AddWorker(inventory.CategoryFood)
	c.RemoveWorker(inventory.CategoryFood)
	c.RemoveWorker(inventory.CategoryWood)
	assert.Equal(t, 1, c.Workers[inventory.CategoryFood])
	assert.Equal(t, 0, c.Workers[inventory.CategoryWood])

	c.AddFisher()
	c.RemoveFisher()
	c.RemoveFisher()
	assert.Equal(t, 0, c.Fishers)
}
