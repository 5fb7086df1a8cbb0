package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/entropy"
)

func TestIslandHeightIsPure(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 11
	a := NewIsland(cfg)
	b := NewIsland(cfg)
	for _, p := range []Vec2{{0, 0}, {10, -4}, {33.3, 12}, {-59, 2}} {
		assert.Equal(t, a.Height(p.X, p.Z), b.Height(p.X, p.Z))
		assert.Equal(t, a.Height(p.X, p.Z), a.Height(p.X, p.Z))
	}
}

func TestIslandIsClosed(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 5
	island := NewIsland(cfg)

	assert.True(t, island.IsLand(Vec2{}), "center must be land")
	for _, p := range []Vec2{{cfg.Radius, 0}, {0, -cfg.Radius}, {-cfg.Radius * 1.1, 0}} {
		assert.False(t, island.IsLand(p), "rim %v must be sea", p)
		assert.Greater(t, island.Depth(p), 0.0)
	}
}

func TestNodeTakeAndRegrow(t *testing.T) {
	n := &Node{ID: 1, Kind: NodeCoconutPalm, Remaining: 2, MaxYield: 3, RegrowSeconds: 10}
	assert.Equal(t, 2, n.Take(5))
	assert.True(t, n.Depleted())
	assert.Equal(t, 0, n.Take(1))

	assert.False(t, n.Regrow(9))
	assert.True(t, n.Regrow(1))
	assert.Equal(t, 1, n.Remaining)
	assert.False(t, n.Depleted())
}

func TestKeysRoundTripNodeID(t *testing.T) {
	id, ok := NodeKey(42).NodeID()
	require.True(t, ok)
	assert.Equal(t, NodeID(42), id)

	_, ok = FishKey(42).NodeID()
	assert.False(t, ok)

	kind, raw, ok := CraftKey("stone_axe").Parse()
	require.True(t, ok)
	assert.Equal(t, KeyCraft, kind)
	assert.Equal(t, "stone_axe", raw)
}

func TestPlaceNodesDeterministicAndOnLand(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 3
	island := NewIsland(cfg)

	a := PlaceNodes(island, entropy.NewStream(3), DefaultPlacementConfig())
	b := PlaceNodes(island, entropy.NewStream(3), DefaultPlacementConfig())
	require.Equal(t, len(a), len(b))
	require.Len(t, a, 30)
	for i := range a {
		assert.Equal(t, a[i].Pos, b[i].Pos)
		assert.Equal(t, a[i].Remaining, b[i].Remaining)
		assert.True(t, island.IsLand(a[i].Pos), "node %s in water", a[i])
	}
}

func TestMoveToward(t *testing.T) {
	p, arrived := Vec2{}.MoveToward(Vec2{X: 10}, 4)
	assert.False(t, arrived)
	assert.InDelta(t, 4, p.X, 1e-9)

	p, arrived = p.MoveToward(Vec2{X: 10}, 8)
	assert.True(t, arrived)
	assert.Equal(t, Vec2{X: 10}, p)
}

func TestShorePointFindsLand(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 9
	island := NewIsland(cfg)
	sea := Vec2{X: cfg.Radius}
	shore, ok := ShorePoint(island, sea, cfg.Radius)
	require.True(t, ok)
	assert.True(t, island.IsLand(shore))
	assert.Less(t, shore.Len(), sea.Len())
}
