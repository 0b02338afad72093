package render

import (
	"testing"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/march"
	"github.com/lixenwraith/tesseract/vmath"
)

func hitAt(d float64, k grid.Kind) Column {
	return Column{Outcome: march.Hit, Distance: d, Raw: d, Cell: grid.Of(k), Edge: vmath.AxisX}
}

func TestShade_Projection(t *testing.T) {
	v := View{Height: 40, MaxDistance: 20, Reality: 1}

	near, far := v.Shade(0, hitAt(2, grid.Wall)), v.Shade(0, hitAt(8, grid.Wall))
	if near.Bottom-near.Top <= far.Bottom-far.Top {
		t.Errorf("near wall %d rows, far wall %d rows", near.Bottom-near.Top, far.Bottom-far.Top)
	}
	if near.Glyph != '█' || far.Glyph == '█' {
		t.Errorf("glyphs near %q far %q", near.Glyph, far.Glyph)
	}

	touching := v.Shade(0, hitAt(0, grid.Wall))
	if touching.Top != 0 || touching.Bottom != 40 {
		t.Errorf("wall at contact spans %d..%d", touching.Top, touching.Bottom)
	}

	open := v.Shade(0, Column{Outcome: march.Exhausted, Distance: 20})
	if open.Top != open.Bottom {
		t.Error("exhausted column drew a wall")
	}
}

func TestShade_Surfaces(t *testing.T) {
	v := View{Height: 30, MaxDistance: 20, Reality: 1}

	loop := hitAt(3, grid.Wall)
	loop.Outcome = march.Loop
	if s := v.Shade(0, loop); s.Glyph != '#' {
		t.Errorf("loop glyph %q", s.Glyph)
	}

	x := v.Shade(0, hitAt(3, grid.Wall))
	yEdge := hitAt(3, grid.Wall)
	yEdge.Edge = vmath.AxisY
	if y := v.Shade(0, yEdge); y.Fg == x.Fg {
		t.Error("horizontal edges should be darker")
	}

	if v.Shade(0, hitAt(3, grid.Portal)).Fg == x.Fg {
		t.Error("portal shares the wall color")
	}
}

func TestShade_LowRealityDesaturates(t *testing.T) {
	full := View{Height: 30, MaxDistance: 20, Reality: 1}
	low := full
	low.Reality = 0.5
	a, b := full.Shade(3, hitAt(2, grid.Portal)), low.Shade(3, hitAt(2, grid.Portal))
	if a.Ceiling == b.Ceiling {
		t.Error("ceiling unchanged at low reality")
	}
	spread := func(c RGB) int { return int(max(c.R, c.G, c.B)) - int(min(c.R, c.G, c.B)) }
	if spread(b.Ceiling) >= spread(a.Ceiling) {
		t.Errorf("ceiling saturation %d not below %d", spread(b.Ceiling), spread(a.Ceiling))
	}
}
