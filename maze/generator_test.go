package maze

import (
	"testing"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

func TestCarve_Connected(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := grid.New(16, 16, 1)
		cfg := Config{Width: 16, Height: 16, Braiding: 0.3}
		open := Carve(g, cfg, vmath.NewFastRand(seed))

		_, reached := g.Reachable(grid.Coord{X: 1, Y: 1})
		if reached != open {
			t.Fatalf("seed %d: reached %d of %d passages", seed, reached, open)
		}
		// The rounded-down 15x15 area leaves the last row and column untouched
		if g.CellAt(grid.Coord{X: 15, Y: 3}).Kind != grid.Empty {
			t.Fatalf("seed %d: carved outside the odd area", seed)
		}
		for x := 0; x < 15; x++ {
			if g.CellAt(grid.Coord{X: x, Y: 0}).Kind != grid.Wall {
				t.Fatalf("seed %d: open maze border at x=%d", seed, x)
			}
		}
	}
}

func TestCarve_Deterministic(t *testing.T) {
	cfg := Config{Origin: grid.Coord{X: 2, Y: 1}, Width: 11, Height: 9, Braiding: 0.5}
	a := grid.New(14, 12, 1)
	b := grid.New(14, 12, 1)
	Carve(a, cfg, vmath.NewFastRand(42))
	Carve(b, cfg, vmath.NewFastRand(42))
	if a.String() != b.String() {
		t.Errorf("same seed, different mazes:\n%s\n%s", a, b)
	}
}

func TestCarve_BraidingRemovesDeadEnds(t *testing.T) {
	perfect, braided := 0, 0
	for seed := uint64(1); seed <= 10; seed++ {
		cfg := Config{Width: 21, Height: 21}
		g := grid.New(21, 21, 1)
		Carve(g, cfg, vmath.NewFastRand(seed))
		perfect += deadEnds(g, cfg)

		cfg.Braiding = 1
		g = grid.New(21, 21, 1)
		Carve(g, cfg, vmath.NewFastRand(seed))
		braided += deadEnds(g, cfg)
	}
	if braided >= perfect {
		t.Errorf("braiding left %d dead ends, perfect mazes had %d", braided, perfect)
	}
}

// deadEnds counts passage cells of the area with exactly one open neighbour
func deadEnds(g *grid.Grid, cfg Config) int {
	n := 0
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := grid.Coord{X: cfg.Origin.X + x, Y: cfg.Origin.Y + y}
			if g.CellAt(p).Kind != grid.Empty {
				continue
			}
			exits := 0
			for _, d := range grid.Directions {
				if g.CellAt(p.Add(d.Offset())).Kind == grid.Empty {
					exits++
				}
			}
			if exits == 1 {
				n++
			}
		}
	}
	return n
}
