package vmath

import (
	"math"
	"testing"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-HalfPi, 3 * HalfPi},
		{TwoPi, 0},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	if d := AngleDiff(0.1, TwoPi-0.1); math.Abs(d-0.2) > 1e-12 {
		t.Errorf("across zero: %v", d)
	}
	if d := AngleDiff(TwoPi-0.1, 0.1); math.Abs(d+0.2) > 1e-12 {
		t.Errorf("negative across zero: %v", d)
	}
}

func TestRotateQuarter(t *testing.T) {
	east := V2(1, 0)
	// Clockwise on screen: east turns south
	if got := east.RotateQuarter(1); !got.Near(V2(0, 1), 0) {
		t.Errorf("one step: %v", got)
	}
	if got := east.RotateQuarter(-1); !got.Near(V2(0, -1), 0) {
		t.Errorf("negative step: %v", got)
	}
	if got := east.RotateQuarter(6); !got.Near(V2(-1, 0), 0) {
		t.Errorf("six steps: %v", got)
	}
	if got := east.Rotate(HalfPi); !got.Near(east.RotateQuarter(1), 1e-12) {
		t.Errorf("Rotate disagrees with RotateQuarter: %v", got)
	}
	if got := RotateAround(V2(3, 2), V2(2, 2), 2); !got.Near(V2(1, 2), 1e-12) {
		t.Errorf("RotateAround: %v", got)
	}
}

func TestReflect(t *testing.T) {
	v := V2(1, 1).Reflect(V2(-1, 0))
	if !v.Near(V2(-1, 1), 1e-12) {
		t.Errorf("Reflect = %v", v)
	}
}

func TestFastSin_Accuracy(t *testing.T) {
	for i := 0; i < 720; i++ {
		a := float64(i) * TwoPi / 720
		if e := math.Abs(FastSin(a) - math.Sin(a)); e > 0.01 {
			t.Fatalf("FastSin(%v) error %v", a, e)
		}
		if e := math.Abs(FastCos(a) - math.Cos(a)); e > 0.01 {
			t.Fatalf("FastCos(%v) error %v", a, e)
		}
	}
}

func TestFastRand_Deterministic(t *testing.T) {
	a, b := NewFastRand(42), NewFastRand(42)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("diverged at %d", i)
		}
	}
	r := NewFastRand(0)
	for i := 0; i < 1000; i++ {
		if v := r.IntRange(3, 5); v < 3 || v > 5 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
		if f := r.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of bounds: %v", f)
		}
	}
}

func TestHashUnit(t *testing.T) {
	if HashUnit(3, -7, 9) != HashUnit(3, -7, 9) {
		t.Error("hash not pure")
	}
	if Hash2(3, 7, 9) == Hash2(7, 3, 9) {
		t.Error("hash symmetric in x and y")
	}
	sum := 0.0
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			sum += HashUnit(x, y, 1)
		}
	}
	if mean := sum / 4096; mean < 0.45 || mean > 0.55 {
		t.Errorf("mean %v", mean)
	}
}

func TestGridTraverser(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		want           [][2]int
	}{
		{"east", 0.5, 0.5, 3.5, 0.5, [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"north", 0.5, 2.5, 0.5, 0.5, [][2]int{{0, 2}, {0, 1}, {0, 0}}},
		// Exact corner crossing visits the x neighbour before the diagonal
		{"corner", 0.5, 0.5, 1.5, 1.5, [][2]int{{0, 0}, {1, 0}, {1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewGridTraverser(tt.x1, tt.y1, tt.x2, tt.y2)
			var got [][2]int
			for tr.Next() {
				x, y := tr.Pos()
				got = append(got, [2]int{x, y})
			}
			if len(got) != len(tt.want) {
				t.Fatalf("visited %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("visited %v, want %v", got, tt.want)
				}
			}
		})
	}

	tr := NewGridTraverser(0.5, 0.5, 2.5, 0.5)
	tr.Next()
	if tr.Axis() != AxisNone {
		t.Errorf("start axis %v", tr.Axis())
	}
	tr.Next()
	if tr.Axis() != AxisX || math.Abs(tr.Entry()-0.25) > 1e-12 {
		t.Errorf("first crossing axis %v entry %v", tr.Axis(), tr.Entry())
	}
}
