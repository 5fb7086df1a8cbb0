// Package world provides the island terrain oracle, planar positions, and the
// world-owned resource targets the tribe gathers from.
package world

import "math"

// Vec2 is a planar position on the island. Elevation is never stored; it is
// always read back from the terrain oracle.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Z: v.Z + o.Z} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Z: v.Z - o.Z} }

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Z: v.Z * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }

// Dist returns the distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Heading returns the angle of v in radians, measured from +X toward +Z.
func (v Vec2) Heading() float64 { return math.Atan2(v.Z, v.X) }

// FromHeading returns the unit vector pointing along heading.
func FromHeading(heading float64) Vec2 {
	return Vec2{X: math.Cos(heading), Z: math.Sin(heading)}
}

// MoveToward steps from v toward target by at most step and reports whether
// the target was reached.
func (v Vec2) MoveToward(target Vec2, step float64) (Vec2, bool) {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= step || dist == 0 {
		return target, true
	}
	return v.Add(d.Scale(step / dist)), false
}
