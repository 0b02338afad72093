package vmath

import (
	"math"
)

const (
	TwoPi    = 2 * math.Pi
	HalfPi   = math.Pi / 2
	InvSqrt2 = 0.70710678118654752440
	LUTSize  = 1024
	LUTMask  = LUTSize - 1
	Epsilon  = 1e-9
)

// --- Angles ---

// WrapAngle returns a in [0, 2π)
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// AngleDiff returns the signed shortest difference a-b in (-π, π]
func AngleDiff(a, b float64) float64 {
	d := WrapAngle(a - b)
	if d > math.Pi {
		d -= TwoPi
	}
	return d
}

// QuarterTurns returns the angle of n quarter turns, n may be negative
func QuarterTurns(n int) float64 {
	return float64(n) * HalfPi
}

// Frac returns the fractional part of x in [0, 1)
func Frac(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// FloorDiv returns floor(x / size) as int
func FloorDiv(x, size float64) int {
	return int(math.Floor(x / size))
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Randomness ---

// FastRand is a xorshift64 generator, not safe for concurrent use
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// IntRange returns a value in [lo, hi] inclusive
func (r *FastRand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Uniform returns a value in [lo, hi)
func (r *FastRand) Uniform(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Hash2 mixes a coordinate pair and salt into a well-distributed 64-bit value
// Pure function: identical inputs always give identical outputs
func Hash2(x, y int, salt uint64) uint64 {
	h := salt ^ 0x9E3779B97F4A7C15
	h ^= uint64(int64(x)) * 0xBF58476D1CE4E5B9
	h = splitmix(h)
	h ^= uint64(int64(y)) * 0x94D049BB133111EB
	return splitmix(h)
}

// HashUnit maps Hash2 into [0, 1)
func HashUnit(x, y int, salt uint64) float64 {
	return float64(Hash2(x, y, salt)>>11) / (1 << 53)
}

func splitmix(z uint64) uint64 {
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
