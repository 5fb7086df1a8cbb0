// Package tuning loads island tuning from YAML over the stock defaults.
package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/castaway/internal/engine"
	"github.com/talgya/castaway/internal/inventory"
)

// Default returns the stock island tuning.
func Default() engine.Config {
	return engine.DefaultConfig()
}

// Load reads a YAML tuning file. Keys absent from the file keep their
// defaults; map sections are merged key by key and lists are replaced.
func Load(path string) (engine.Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects tuning the simulation cannot run with.
func Validate(cfg engine.Config) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(cfg.World.Radius > 0, "world.radius must be positive, got %v", cfg.World.Radius)
	check(cfg.World.Octaves > 0, "world.octaves must be positive, got %d", cfg.World.Octaves)
	check(cfg.Spawn.Population >= 0, "spawn.population must not be negative, got %d", cfg.Spawn.Population)
	check(cfg.Spawn.MinAge <= cfg.Spawn.MaxAge, "spawn.min_age %v exceeds max_age %v", cfg.Spawn.MinAge, cfg.Spawn.MaxAge)

	check(inUnit(cfg.Tribe.CriticalHunger), "tribe.critical_hunger must be in [0,1], got %v", cfg.Tribe.CriticalHunger)
	check(inUnit(cfg.Tribe.CriticalEnergy), "tribe.critical_energy must be in [0,1], got %v", cfg.Tribe.CriticalEnergy)
	check(inUnit(cfg.Tribe.FisherShare), "tribe.fisher_share must be in [0,1], got %v", cfg.Tribe.FisherShare)

	check(cfg.Skills.MaxLevel > 0, "skills.max_level must be positive, got %d", cfg.Skills.MaxLevel)
	check(cfg.Skills.BaseXP > 0, "skills.base_xp must be positive, got %v", cfg.Skills.BaseXP)

	check(cfg.Fishing.AttemptInterval > 0, "fishing.attempt_interval must be positive, got %v", cfg.Fishing.AttemptInterval)
	check(inUnit(cfg.Fishing.MaxChance), "fishing.max_chance must be in [0,1], got %v", cfg.Fishing.MaxChance)

	check(cfg.Threats.CheckInterval > 0, "threats.check_interval must be positive, got %v", cfg.Threats.CheckInterval)
	check(inUnit(cfg.Threats.SuccessCap), "threats.success_cap must be in [0,1], got %v", cfg.Threats.SuccessCap)

	check(cfg.Weather.MinSpell > 0 && cfg.Weather.MinSpell <= cfg.Weather.MaxSpell,
		"weather spells must satisfy 0 < min_spell <= max_spell, got %v..%v", cfg.Weather.MinSpell, cfg.Weather.MaxSpell)

	check(cfg.Planner.WalkSpeed > 0, "planner.walk_speed must be positive, got %v", cfg.Planner.WalkSpeed)
	check(cfg.Planner.InteractRange > 0, "planner.interact_range must be positive, got %v", cfg.Planner.InteractRange)
	check(cfg.Planner.GatherSeconds > 0, "planner.gather_seconds must be positive, got %v", cfg.Planner.GatherSeconds)
	check(inUnit(cfg.Planner.ConceiveChance), "planner.conceive_chance must be in [0,1], got %v", cfg.Planner.ConceiveChance)
	check(inUnit(cfg.Planner.QuarrelChance), "planner.quarrel_chance must be in [0,1], got %v", cfg.Planner.QuarrelChance)
	check(cfg.Planner.CompanyDelta >= 0, "planner.company_delta must not be negative, got %v", cfg.Planner.CompanyDelta)

	check(cfg.Communal.MaxSlots > 0 && cfg.Communal.StackSize > 0, "communal limits must be positive")
	check(cfg.Opinions[0] <= cfg.Opinions[1], "opinions range %v is inverted", cfg.Opinions)

	for _, t := range inventory.Tools {
		r, ok := cfg.Recipes[t]
		if !ok {
			errs = append(errs, fmt.Errorf("recipes: missing %s", t))
			continue
		}
		check(len(r.Inputs) > 0, "recipes.%s has no inputs", t)
		check(r.Durability > 0, "recipes.%s durability must be positive", t)
		check(r.CraftSecond > 0, "recipes.%s craft_second must be positive", t)
	}
	for res, n := range cfg.Stock {
		check(n >= 0, "stock.%s must not be negative", res)
	}
	for t, n := range cfg.Tools {
		check(n >= 0, "tools.%s must not be negative", t)
	}

	return errors.Join(errs...)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
