package distortion

import (
	"math"
	"testing"

	"github.com/lixenwraith/tesseract/vmath"
)

func TestAngleOffset_Empty(t *testing.T) {
	var s *Set
	if got := s.AngleOffset(vmath.V2(1, 1), 0, 0); got != 0 {
		t.Errorf("nil set = %v", got)
	}
	if got := NewSet(1).AngleOffset(vmath.V2(1, 1), 0, 0); got != 0 {
		t.Errorf("empty set = %v", got)
	}
}

func TestAngleOffset_Kinds(t *testing.T) {
	center := vmath.V2(10, 10)
	pos := vmath.V2(12, 10) // dist 2, influence 0.5 for radius 4

	tests := []struct {
		kind     Kind
		heading  float64
		traveled float64
		want     float64
	}{
		// toCenter = π, heading π/2: sin(π/2) = 1
		{Vortex, math.Pi / 2, 0, 0.5 * 2},
		{Expansion, 0, 10, math.Sin(10*ExpansionFreq) * 0.5 * 2},
		{Wave, 0, 5, math.Sin(5*WaveTravelFreq+2*WaveRadialFreq) * 0.5 * 2},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := NewSet(1, Field{Center: center, Radius: 4, Strength: 2, Kind: tt.kind})
			got := s.AngleOffset(pos, tt.heading, tt.traveled)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleOffset_CellUnits(t *testing.T) {
	f := Field{Center: vmath.V2(10, 10), Radius: 4, Strength: 1, Kind: Wave}
	a := NewSet(1, f).AngleOffset(vmath.V2(12, 10), 0, 5)
	b := NewSet(3, f).AngleOffset(vmath.V2(36, 30), 0, 15)
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("scaled world disagrees: %v vs %v", a, b)
	}
}

func TestAngleOffset_NearestOnly(t *testing.T) {
	// A huge field encloses the sample, but a tiny field is nearer and does not
	small := Field{Center: vmath.V2(5, 5), Radius: 0.5, Strength: 1, Kind: Vortex}
	huge := Field{Center: vmath.V2(8, 5), Radius: 50, Strength: 1, Kind: Vortex}

	s := NewSet(1, small, huge)
	pos := vmath.V2(6, 5) // 1 from small (outside), 2 from huge (inside)
	if got := s.AngleOffset(pos, 0.7, 0); got != 0 {
		t.Errorf("nearest field outside radius must yield 0, got %v", got)
	}

	only := NewSet(1, huge)
	if got := only.AngleOffset(pos, 0.7, 0); got == 0 {
		t.Error("huge field alone should perturb")
	}
}

func TestAngleOffset_Edge(t *testing.T) {
	s := NewSet(1, Field{Center: vmath.V2(0, 0), Radius: 2, Strength: 3, Kind: Expansion})
	// Exactly on the rim: influence 0
	if got := s.AngleOffset(vmath.V2(2, 0), 0, 7); math.Abs(got) > 1e-12 {
		t.Errorf("rim offset = %v", got)
	}
	if got := s.AngleOffset(vmath.V2(2.01, 0), 0, 7); got != 0 {
		t.Errorf("outside offset = %v", got)
	}
}
