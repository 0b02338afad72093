package distortion

import (
	"math"

	"github.com/lixenwraith/tesseract/vmath"
)

// Kind selects the perturbation formula of a field
type Kind uint8

const (
	Vortex Kind = iota
	Expansion
	Wave
)

func (k Kind) String() string {
	switch k {
	case Vortex:
		return "vortex"
	case Expansion:
		return "expansion"
	case Wave:
		return "wave"
	}
	return "unknown"
}

// Frequency constants, per cell of traveled distance and of distance to centre
const (
	ExpansionFreq  = 0.1
	WaveTravelFreq = 0.2
	WaveRadialFreq = 2.0
)

// Field is a circular source of angular perturbation, all lengths in cells
type Field struct {
	Center   vmath.Vec2
	Radius   float64
	Strength float64
	Kind     Kind
}

// Set is an immutable collection of fields over a grid of cellSize world units
type Set struct {
	fields   []Field
	cellSize float64
}

func NewSet(cellSize float64, fields ...Field) *Set {
	if cellSize <= 0 {
		cellSize = 1
	}
	f := make([]Field, len(fields))
	copy(f, fields)
	return &Set{fields: f, cellSize: cellSize}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns a copy of the field list
func (s *Set) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Nearest returns the index of the field whose centre is closest to p (cells)
// and the squared distance; -1 when the set is empty
func (s *Set) Nearest(p vmath.Vec2) (int, float64) {
	best, bestSq := -1, math.Inf(1)
	for i := range s.fields {
		d := p.Sub(s.fields[i].Center).LenSq()
		if d < bestSq {
			best, bestSq = i, d
		}
	}
	return best, bestSq
}

// AngleOffset returns the heading perturbation at a world position
// Only the nearest field contributes; a point outside its radius gets 0 even
// when a farther, larger field encloses it
func (s *Set) AngleOffset(pos vmath.Vec2, heading, traveled float64) float64 {
	if s == nil || len(s.fields) == 0 {
		return 0
	}
	p := pos.Scale(1 / s.cellSize)
	i, dSq := s.Nearest(p)
	f := &s.fields[i]
	if f.Radius <= 0 || dSq > f.Radius*f.Radius {
		return 0
	}

	dist := math.Sqrt(dSq)
	influence := 1 - dist/f.Radius
	t := traveled / s.cellSize

	switch f.Kind {
	case Vortex:
		toCenter := math.Atan2(f.Center.Y-p.Y, f.Center.X-p.X)
		return math.Sin(toCenter-heading) * influence * f.Strength
	case Expansion:
		return math.Sin(t*ExpansionFreq) * influence * f.Strength
	case Wave:
		return math.Sin(t*WaveTravelFreq+dist*WaveRadialFreq) * influence * f.Strength
	}
	return 0
}
