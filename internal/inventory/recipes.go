// Tools and recipes. A recipe is a fixed bill of resources checked and
// deducted against any Inventory.
package inventory

// Tool identifies a durable item.
type Tool string

const (
	FishingSpear Tool = "fishing_spear" // Single use per catch
	StoneAxe     Tool = "stone_axe"     // Faster woodcutting
	HuntingSpear Tool = "hunting_spear" // Weapon against threats
)

// Tools lists every tool in crafting priority order.
var Tools = []Tool{FishingSpear, StoneAxe, HuntingSpear}

// Recipe is a fixed bill of materials producing one tool.
type Recipe struct {
	Tool        Tool             `yaml:"tool"`
	Inputs      map[Resource]int `yaml:"inputs"`
	Durability  int              `yaml:"durability"`   // Base durability before skill bonus
	CraftSecond float64          `yaml:"craft_second"` // Base crafting time
}

// DefaultRecipes returns the stock recipe book keyed by tool.
func DefaultRecipes() map[Tool]Recipe {
	return map[Tool]Recipe{
		FishingSpear: {
			Tool:        FishingSpear,
			Inputs:      map[Resource]int{Wood: 1, Vine: 1},
			Durability:  1,
			CraftSecond: 8,
		},
		StoneAxe: {
			Tool:        StoneAxe,
			Inputs:      map[Resource]int{Wood: 2, Stone: 1},
			Durability:  20,
			CraftSecond: 15,
		},
		HuntingSpear: {
			Tool:        HuntingSpear,
			Inputs:      map[Resource]int{Wood: 2, Stone: 2, Vine: 1},
			Durability:  12,
			CraftSecond: 20,
		},
	}
}

// CanCraft reports whether inv holds every input of r.
func CanCraft(inv Inventory, r Recipe) bool {
	if len(r.Inputs) == 0 {
		return false
	}
	for res, qty := range r.Inputs {
		if !inv.Has(res, qty) {
			return false
		}
	}
	return true
}

// Consume deducts the inputs of r from inv. It returns false without
// mutating inv when any input is short.
func Consume(inv Inventory, r Recipe) bool {
	if !CanCraft(inv, r) {
		return false
	}
	for _, res := range Resources {
		if qty, ok := r.Inputs[res]; ok {
			inv.Remove(res, qty)
		}
	}
	return true
}
