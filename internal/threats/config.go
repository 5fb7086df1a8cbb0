// Package threats spawns predators around the castaways, drives their
// patrol/attack/flee state machine and resolves hunts.
package threats

import "github.com/talgya/castaway/internal/inventory"

// Habitat is where a threat kind can find prey.
type Habitat string

const (
	HabitatWater  Habitat = "water"  // Prey in the water or casting from the shore
	HabitatInland Habitat = "inland" // Prey on land away from camp
)

// Bands holds a multiplier per time-of-day band.
type Bands struct {
	Dawn  float64 `yaml:"dawn"`
	Day   float64 `yaml:"day"`
	Dusk  float64 `yaml:"dusk"`
	Night float64 `yaml:"night"`
}

// For returns the multiplier of band b.
func (m Bands) For(b Band) float64 {
	switch b {
	case BandDawn:
		return m.Dawn
	case BandDay:
		return m.Day
	case BandDusk:
		return m.Dusk
	default:
		return m.Night
	}
}

// LootRange is a uniform integer drop range for one resource.
type LootRange struct {
	Resource inventory.Resource `yaml:"resource"`
	Min      int                `yaml:"min"`
	Max      int                `yaml:"max"`
}

// KindConfig describes one threat kind.
type KindConfig struct {
	Name    string  `yaml:"name"`
	Named   bool    `yaml:"named"` // Slaying it confers renown
	Habitat Habitat `yaml:"habitat"`
	// Inland threats only target agents at least this far from camp.
	MinCampDistance float64 `yaml:"min_camp_distance"`

	Health          float64 `yaml:"health"`
	Speed           float64 `yaml:"speed"`
	AggroRadius     float64 `yaml:"aggro_radius"`
	StrikeRange     float64 `yaml:"strike_range"`
	FleeFraction    float64 `yaml:"flee_fraction"`    // Flee below this share of health
	RecoverFraction float64 `yaml:"recover_fraction"` // Resume attacking above this share
	Regen           float64 `yaml:"regen"`            // Health per second while fleeing
	PatrolSeconds   float64 `yaml:"patrol_seconds"`   // Leaves if nothing is found in time
	FleeSeconds     float64 `yaml:"flee_seconds"`     // Escapes after fleeing this long

	Encounter float64 `yaml:"encounter"` // Base spawn chance per check
	Bands     Bands   `yaml:"bands"`
	Blood     bool    `yaml:"blood"` // Drawn by blood in the water

	BaseSuccess float64     `yaml:"base_success"`
	MinGroup    int         `yaml:"min_group"`
	Hazard      float64     `yaml:"hazard"` // Chance of a hazard event per fight
	HazardName  string      `yaml:"hazard_name"`
	Casualty    float64     `yaml:"casualty"` // Per-participant death chance on a failed hunt
	FailDamage  float64     `yaml:"fail_damage"`
	Loot        []LootRange `yaml:"loot"`
}

// Config tunes encounters and combat.
type Config struct {
	CheckInterval   float64 `yaml:"check_interval"` // Seconds between encounter checks
	StormMultiplier float64 `yaml:"storm_multiplier"`
	BloodMultiplier float64 `yaml:"blood_multiplier"`
	BloodSeconds    float64 `yaml:"blood_seconds"`
	BloodRadius     float64 `yaml:"blood_radius"`

	HunterRadius      float64 `yaml:"hunter_radius"` // Adults this close to the target join
	HunterBonus       float64 `yaml:"hunter_bonus"`
	WeaponBonus       float64 `yaml:"weapon_bonus"`
	SuccessCap        float64 `yaml:"success_cap"`
	UndermannedFactor float64 `yaml:"undermanned_factor"`
	SoloCasualty      float64 `yaml:"solo_casualty"`
	HazardCasualty    float64 `yaml:"hazard_casualty"`
	EngageCooldown    float64 `yaml:"engage_cooldown"` // Seconds between strikes of one threat

	Kinds []KindConfig `yaml:"kinds"`
}

// Kind indexes Config.Kinds.
type Kind uint8

// Stock kinds, in encounter-check order.
const (
	KindShark Kind = iota
	KindWildBoar
	KindOldTusker
)

// DefaultConfig returns the stock threat roster.
func DefaultConfig() Config {
	return Config{
		CheckInterval:   10,
		StormMultiplier: 1.5,
		BloodMultiplier: 2.0,
		BloodSeconds:    60,
		BloodRadius:     20,

		HunterRadius:      8,
		HunterBonus:       0.12,
		WeaponBonus:       0.15,
		SuccessCap:        0.9,
		UndermannedFactor: 0.5,
		SoloCasualty:      2,
		HazardCasualty:    1.5,
		EngageCooldown:    20,

		Kinds: []KindConfig{
			{
				Name: "shark", Habitat: HabitatWater,
				Health: 60, Speed: 2.5, AggroRadius: 10, StrikeRange: 1.5,
				FleeFraction: 0.3, RecoverFraction: 0.7, Regen: 1, PatrolSeconds: 90, FleeSeconds: 40,
				Encounter: 0.012, Bands: Bands{Dawn: 1.5, Day: 0.6, Dusk: 1.5, Night: 1.2}, Blood: true,
				BaseSuccess: 0.2, MinGroup: 2, Hazard: 0.2, HazardName: "thrashing", Casualty: 0.06, FailDamage: 15,
				Loot: []LootRange{{Resource: inventory.Meat, Min: 2, Max: 4}},
			},
			{
				Name: "wild boar", Habitat: HabitatInland, MinCampDistance: 15,
				Health: 40, Speed: 2.2, AggroRadius: 8, StrikeRange: 1.5,
				FleeFraction: 0.3, RecoverFraction: 0.7, Regen: 0.8, PatrolSeconds: 120, FleeSeconds: 40,
				Encounter: 0.012, Bands: Bands{Dawn: 1.2, Day: 0.8, Dusk: 1.4, Night: 1.6},
				BaseSuccess: 0.35, MinGroup: 1, Hazard: 0.25, HazardName: "gore", Casualty: 0.05, FailDamage: 12,
				Loot: []LootRange{
					{Resource: inventory.Meat, Min: 3, Max: 6},
					{Resource: inventory.Hide, Min: 1, Max: 2},
					{Resource: inventory.Tusk, Min: 0, Max: 1},
				},
			},
			{
				Name: "the Old Tusker", Named: true, Habitat: HabitatInland, MinCampDistance: 25,
				Health: 120, Speed: 2.0, AggroRadius: 10, StrikeRange: 2,
				FleeFraction: 0.25, RecoverFraction: 0.6, Regen: 1.5, PatrolSeconds: 180, FleeSeconds: 60,
				Encounter: 0.004, Bands: Bands{Dawn: 1, Day: 0.5, Dusk: 1.5, Night: 2},
				BaseSuccess: 0.15, MinGroup: 3, Hazard: 0.35, HazardName: "stampede", Casualty: 0.1, FailDamage: 20,
				Loot: []LootRange{
					{Resource: inventory.Meat, Min: 6, Max: 10},
					{Resource: inventory.Hide, Min: 2, Max: 3},
					{Resource: inventory.Tusk, Min: 2, Max: 2},
				},
			},
		},
	}
}
