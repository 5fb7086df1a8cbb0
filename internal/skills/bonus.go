// Bonus curves. Each accessor is a monotonic function of level/MaxLevel and
// is capped at the documented maximum.
package skills

import "math"

// GatherSpeed multiplies gathering rate: 1 + f, at most 2.
func (l *Ledger) GatherSpeed() float64 {
	return math.Min(1+l.Fraction(Gathering), 2.0)
}

// GatherYield is the chance of an extra unit per gathered unit: 0.5·f, at most 0.5.
func (l *Ledger) GatherYield() float64 {
	return math.Min(0.5*l.Fraction(Gathering), 0.5)
}

// CatchRate is the skill term of the catch probability: 0.70·f, at most 0.70.
func (l *Ledger) CatchRate() float64 {
	return CatchRateAt(l.Fraction(Fishing))
}

// CatchRateAt is CatchRate for an arbitrary level fraction.
func CatchRateAt(f float64) float64 {
	return math.Min(0.70*math.Max(f, 0), 0.70)
}

// CraftTime multiplies crafting duration: 1 − 0.5·f, at least 0.5.
func (l *Ledger) CraftTime() float64 {
	return math.Max(1-0.5*l.Fraction(Crafting), 0.5)
}

// CraftDurability multiplies crafted tool durability: 1 + 0.5·f, at most 1.5.
func (l *Ledger) CraftDurability() float64 {
	return math.Min(1+0.5*l.Fraction(Crafting), 1.5)
}

// CombatWin is added to combat success chance: 0.30·f, at most 0.30.
func (l *Ledger) CombatWin() float64 {
	return CombatWinAt(l.Fraction(Combat))
}

// CombatWinAt is CombatWin for an arbitrary level fraction.
func CombatWinAt(f float64) float64 {
	return math.Min(0.30*math.Max(f, 0), 0.30)
}

// CookTime multiplies cooking duration: 1 − 0.4·f, at least 0.6.
func (l *Ledger) CookTime() float64 {
	return math.Max(1-0.4*l.Fraction(Cooking), 0.6)
}

// CookNutrition multiplies nutrition of cooked food: 1 + 0.5·f, at most 1.5.
func (l *Ledger) CookNutrition() float64 {
	return math.Min(1+0.5*l.Fraction(Cooking), 1.5)
}
