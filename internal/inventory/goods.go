// Package inventory provides the stack-limited resource store shared by
// agents and the communal camp store, tool durability, and recipes.
package inventory

import "github.com/talgya/castaway/internal/world"

// Resource identifies a stackable item.
type Resource string

const (
	Coconut Resource = "coconut" // Food
	Fish    Resource = "fish"    // Food, spoils fast
	Meat    Resource = "meat"    // Food, threat loot
	Wood    Resource = "wood"    // Construction, crafting
	Stone   Resource = "stone"   // Crafting
	Vine    Resource = "vine"    // Fiber for lashings
	Hide    Resource = "hide"    // Threat loot
	Tusk    Resource = "tusk"    // Threat loot
)

// Resources lists every resource in canonical order.
var Resources = []Resource{Coconut, Fish, Meat, Wood, Stone, Vine, Hide, Tusk}

// Nutrition is the hunger restored by eating one unit (before cooking bonus).
var Nutrition = map[Resource]float64{
	Coconut: 0.30,
	Fish:    0.40,
	Meat:    0.50,
}

// Edible reports whether r can be eaten.
func Edible(r Resource) bool {
	_, ok := Nutrition[r]
	return ok
}

// Foods lists the edible resources in the order agents prefer to eat them
// (fastest spoiling first).
var Foods = []Resource{Fish, Meat, Coconut}

// Category groups resources for stockpile accounting.
type Category uint8

const (
	CategoryFood Category = iota
	CategoryWood
	CategoryStone
	CategoryFiber
)

// NumCategories is the number of stockpile categories.
const NumCategories = 4

// Categories lists all categories in priority tie-break order.
var Categories = []Category{CategoryFood, CategoryWood, CategoryStone, CategoryFiber}

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryFood:
		return "food"
	case CategoryWood:
		return "wood"
	case CategoryStone:
		return "stone"
	case CategoryFiber:
		return "fiber"
	default:
		return "unknown"
	}
}

// CategoryResources maps each category to the resources counted toward it.
var CategoryResources = map[Category][]Resource{
	CategoryFood:  {Coconut, Fish, Meat},
	CategoryWood:  {Wood},
	CategoryStone: {Stone},
	CategoryFiber: {Vine},
}

// CategoryNode maps each category to the node kind gathered for it.
var CategoryNode = map[Category]world.NodeKind{
	CategoryFood:  world.NodeCoconutPalm,
	CategoryWood:  world.NodeDriftwood,
	CategoryStone: world.NodeRock,
	CategoryFiber: world.NodeVine,
}

// NodeYield maps a node kind to the resource it yields.
var NodeYield = map[world.NodeKind]Resource{
	world.NodeCoconutPalm: Coconut,
	world.NodeDriftwood:   Wood,
	world.NodeRock:        Stone,
	world.NodeVine:        Vine,
}

// CategoryCount sums the resources of a category held in inv.
func CategoryCount(inv Inventory, c Category) int {
	total := 0
	for _, r := range CategoryResources[c] {
		total += inv.Count(r)
	}
	return total
}

// FoodCount sums every edible resource held in inv.
func FoodCount(inv Inventory) int {
	total := 0
	for _, r := range Foods {
		total += inv.Count(r)
	}
	return total
}

// SpoilSeconds is how long an item keeps before it rots; absent entries never spoil.
type SpoilSeconds map[Resource]float64

// DefaultSpoilSeconds returns the stock shelf lives (one day = 600 s).
func DefaultSpoilSeconds() SpoilSeconds {
	return SpoilSeconds{
		Coconut: 1800,
		Fish:    600,
		Meat:    600,
	}
}
