package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/castaway/internal/inventory"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTuning(t, `
spawn:
  population: 5
world:
  radius: 40
planner:
  walk_speed: 2
stock:
  wood: 10
tools:
  stone_axe: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Spawn.Population)
	assert.Equal(t, 40.0, cfg.World.Radius)
	assert.Equal(t, 2.0, cfg.Planner.WalkSpeed)
	assert.Equal(t, Default().Planner.InteractRange, cfg.Planner.InteractRange)
	assert.Equal(t, 10, cfg.Stock[inventory.Wood])
	assert.Equal(t, 24, cfg.Stock[inventory.Coconut], "unlisted stock keeps its default")
	assert.Equal(t, 1, cfg.Tools[inventory.StoneAxe])
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeTuning(t, `
world:
  radius: -1
tribe:
  critical_hunger: 2
planner:
  quarrel_chance: 2
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world.radius")
	assert.Contains(t, err.Error(), "tribe.critical_hunger")
	assert.Contains(t, err.Error(), "planner.quarrel_chance")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeTuning(t, "spawn: [not, a, map]"))
	assert.Error(t, err)
}

func TestValidateRecipes(t *testing.T) {
	cfg := Default()
	delete(cfg.Recipes, inventory.HuntingSpear)
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hunting_spear")
}
