package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFailsWithoutMutationWhenStackFull(t *testing.T) {
	s := NewStore(Limits{MaxSlots: 2, StackSize: 5})
	require.True(t, s.Add(Wood, 4, 0))
	assert.False(t, s.Add(Wood, 2, 0))
	assert.Equal(t, 4, s.Count(Wood))
	assert.Equal(t, 1, s.UsedSlots())
}

func TestAddFailsWhenNoSlotAvailable(t *testing.T) {
	s := NewStore(Limits{MaxSlots: 1, StackSize: 5})
	require.True(t, s.Add(Wood, 1, 0))
	assert.False(t, s.Add(Stone, 1, 0))
	assert.Equal(t, 0, s.Count(Stone))
	assert.Equal(t, 1, s.UsedSlots())
}

func TestAddRemoveAreInverses(t *testing.T) {
	s := NewStore(PersonalLimits())
	require.True(t, s.Add(Coconut, 2, 0))
	before := s.Contents()
	slots := s.UsedSlots()

	for _, r := range []Resource{Coconut, Vine} {
		for k := 1; k <= 3; k++ {
			require.True(t, s.Add(r, k, 1))
			require.True(t, s.Remove(r, k))
			assert.Equal(t, before, s.Contents())
			assert.Equal(t, slots, s.UsedSlots())
		}
	}
}

func TestRemoveInsufficientFails(t *testing.T) {
	s := NewStore(PersonalLimits())
	require.True(t, s.Add(Fish, 1, 0))
	assert.False(t, s.Remove(Fish, 2))
	assert.False(t, s.Remove(Stone, 1))
	assert.Equal(t, 1, s.Count(Fish))
}

func TestSpoilRemovesOnlyExpired(t *testing.T) {
	s := NewStore(CommunalLimits())
	require.True(t, s.Add(Fish, 2, 0))
	require.True(t, s.Add(Fish, 1, 500))
	require.True(t, s.Add(Wood, 3, 0))

	spoiled := s.Spoil(600, DefaultSpoilSeconds())
	assert.Equal(t, map[Resource]int{Fish: 2}, spoiled)
	assert.Equal(t, 1, s.Count(Fish))
	assert.Equal(t, 3, s.Count(Wood))

	spoiled = s.Spoil(1100, DefaultSpoilSeconds())
	assert.Equal(t, map[Resource]int{Fish: 1}, spoiled)
	assert.Equal(t, 1, s.UsedSlots())
}

func TestUseToolBreaksAndUnequips(t *testing.T) {
	s := NewStore(PersonalLimits())
	require.True(t, s.AddTool(StoneAxe, 2))
	require.True(t, s.Equip(StoneAxe))

	broke, ok := s.UseTool()
	require.True(t, ok)
	assert.False(t, broke)

	broke, ok = s.UseTool()
	require.True(t, ok)
	assert.True(t, broke)
	assert.Equal(t, 0, s.ToolCount(StoneAxe))
	_, equipped := s.Equipped()
	assert.False(t, equipped)

	_, ok = s.UseTool()
	assert.False(t, ok)
}

func TestToolCapRespected(t *testing.T) {
	s := NewStore(PersonalLimits())
	require.True(t, s.AddTool(FishingSpear, 1))
	assert.False(t, s.AddTool(FishingSpear, 1))
	assert.True(t, s.AddTool(StoneAxe, 5))
}

func TestCraftConsumesExactInputs(t *testing.T) {
	s := NewStore(CommunalLimits())
	require.True(t, s.Add(Wood, 2, 0))
	require.True(t, s.Add(Stone, 1, 0))
	require.True(t, s.Add(Vine, 5, 0))
	before := s.ToolCount(StoneAxe)

	recipe := DefaultRecipes()[StoneAxe]
	require.True(t, CanCraft(s, recipe))
	require.True(t, Consume(s, recipe))
	require.True(t, s.AddTool(recipe.Tool, recipe.Durability))

	assert.Equal(t, 0, s.Count(Wood))
	assert.Equal(t, 0, s.Count(Stone))
	assert.Equal(t, 5, s.Count(Vine))
	assert.Equal(t, before+1, s.ToolCount(StoneAxe))

	assert.False(t, CanCraft(s, recipe))
	assert.False(t, Consume(s, recipe))
	assert.Equal(t, 5, s.Count(Vine))
}

func TestCategoryAndFoodCounts(t *testing.T) {
	s := NewStore(CommunalLimits())
	require.True(t, s.Add(Coconut, 3, 0))
	require.True(t, s.Add(Fish, 2, 0))
	require.True(t, s.Add(Vine, 1, 0))
	assert.Equal(t, 5, CategoryCount(s, CategoryFood))
	assert.Equal(t, 1, CategoryCount(s, CategoryFiber))
	assert.Equal(t, 5, FoodCount(s))
	assert.Equal(t, []Resource{Coconut, Fish, Vine}, s.Carried())
}
