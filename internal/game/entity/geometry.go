package entity

import "math"

// Vec is a 2D point or direction in world coordinates.
type Vec struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// DistSq returns the squared distance between v and o.
func (v Vec) DistSq(o Vec) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

// Normalize returns v scaled to unit length, or the zero vector when v is zero.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Rotate returns v rotated by theta radians counter-clockwise.
func (v Vec) Rotate(theta float64) Vec {
	sin, cos := math.Sincos(theta)
	return Vec{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Sign returns the per-axis sign of v, each component in {-1, 0, 1}.
func (v Vec) Sign() Vec {
	return Vec{sign(v.X), sign(v.Y)}
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// Rect is an axis-aligned box; (X, Y) is its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether r and o intersect with non-zero area.
// Boxes that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Clamp returns p moved to the nearest point inside r.
func (r Rect) Clamp(p Vec) Vec {
	return Vec{
		X: math.Min(math.Max(p.X, r.X), r.X+r.W),
		Y: math.Min(math.Max(p.Y, r.Y), r.Y+r.H),
	}
}

// BoxAt returns the size×size box centred on p.
func BoxAt(p Vec, size float64) Rect {
	return Rect{X: p.X - size/2, Y: p.Y - size/2, W: size, H: size}
}
