package vmath

import (
	"math"
)

// Vec2 is a float64 2D vector in screen orientation: +X east, +Y south
type Vec2 struct {
	X, Y float64
}

// V2 is shorthand for Vec2{x, y}
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector for heading a (0 = east, π/2 = south)
func FromAngle(a float64) Vec2 {
	return Vec2{X: math.Cos(a), Y: math.Sin(a)}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns v.X*o.X + v.Y*o.Y
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// LenSq returns squared magnitude without sqrt
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// Normalize returns unit vector, zero-safe
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Angle returns the heading of v in [0, 2π)
func (v Vec2) Angle() float64 {
	return WrapAngle(math.Atan2(v.Y, v.X))
}

// Rotate rotates v by angle radians (positive turns east toward south)
func (v Vec2) Rotate(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// RotateQuarter rotates v by steps × 90° exactly, without trig rounding
func (v Vec2) RotateQuarter(steps int) Vec2 {
	switch ((steps % 4) + 4) % 4 {
	case 1:
		return Vec2{-v.Y, v.X}
	case 2:
		return Vec2{-v.X, -v.Y}
	case 3:
		return Vec2{v.Y, -v.X}
	}
	return v
}

// RotateAround rotates p around center by steps × 90°
func RotateAround(p, center Vec2, steps int) Vec2 {
	return center.Add(p.Sub(center).RotateQuarter(steps))
}

// Reflect returns v reflected off a surface with unit normal n
// v' = v - 2 * dot(v, n) * n
func (v Vec2) Reflect(n Vec2) Vec2 {
	d := 2 * v.Dot(n)
	return Vec2{v.X - d*n.X, v.Y - d*n.Y}
}

// Near reports whether v and o differ by at most eps on both axes
func (v Vec2) Near(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}
