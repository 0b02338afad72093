package render

import (
	"math"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/march"
	"github.com/lixenwraith/tesseract/parameter"
	"github.com/lixenwraith/tesseract/vmath"
)

// Strip is one drawn column: ceiling above Top, wall in [Top, Bottom), floor
// from Bottom; Top == Bottom draws no wall
type Strip struct {
	Top, Bottom int
	Glyph       rune
	Fg          RGB
	Ceiling     RGB
	Floor       RGB
}

// wallGlyphs darken with distance
var wallGlyphs = []rune{'█', '▓', '▒', '░'}

// View carries per-frame shading state
type View struct {
	Height      int
	MaxDistance float64
	Reality     float64
	Tick        uint64
}

// Shade projects one column onto a screen of v.Height rows
func (v View) Shade(x int, col Column) Strip {
	mid := v.Height / 2
	s := Strip{Top: mid, Bottom: mid, Glyph: ' ', Ceiling: RgbCeiling, Floor: RgbFloor}
	distort := parameter.RealityMax - v.Reality

	if distort > 0 {
		s.Ceiling = Lerp(s.Ceiling, Grayscale(s.Ceiling), distort)
		s.Floor = Lerp(s.Floor, Grayscale(s.Floor), distort)
	}
	if !col.Hit() || v.Height <= 0 {
		return s
	}

	d := math.Max(col.Distance, 0.05)
	wall := int(float64(v.Height) / d)
	if wall > v.Height {
		wall = v.Height
	}
	shift := 0
	if distort > 0 {
		// Whole-view wave below full reality
		shift = int(vmath.FastSin(float64(x)*0.05+float64(v.Tick)*0.07) * distort * 3)
	}
	if col.Cell.Kind == grid.RealityDistortionWall {
		shimmer := int(vmath.FastSin(float64(x)*0.2+float64(v.Tick)*0.17) * 2)
		wall = max(wall-2*shimmer, 0)
	}
	s.Top = max(mid-wall/2+shift, 0)
	s.Bottom = min(mid+wall/2+shift, v.Height)
	if s.Bottom < s.Top {
		s.Bottom = s.Top
	}

	maxDist := v.MaxDistance
	if maxDist <= 0 {
		maxDist = parameter.MarchMaxDistance
	}
	near := 1 - vmath.Clamp(col.Distance/maxDist, 0, 1)
	idx := int((1 - near) * float64(len(wallGlyphs)) * 2)
	s.Glyph = wallGlyphs[min(idx, len(wallGlyphs)-1)]

	fg := KindColor(col.Cell.Kind)
	if col.Outcome == march.Loop {
		fg = RgbArtifact
		s.Glyph = '#'
	}
	if col.Edge == vmath.AxisY {
		fg = Scale(fg, 0.75)
	}
	// Portal texture stripes along the surface
	if col.Cell.Kind == grid.Portal && int(col.SurfaceOffset*4)%2 == 1 {
		fg = Scale(fg, 0.6)
	}
	fg = Lerp(RgbFog, fg, 0.25+0.75*near)
	if distort > 0 {
		fg = Lerp(fg, Grayscale(fg), distort)
		if v.Reality < parameter.RealityInversionThreshold && vmath.HashUnit(x, int(v.Tick/8), 0x5eed) < distort*0.3 {
			fg = Invert(fg)
		}
	}
	s.Fg = fg
	return s
}

// ShadeAll projects every column
func (v View) ShadeAll(cols []Column) []Strip {
	out := make([]Strip, len(cols))
	for x, c := range cols {
		out[x] = v.Shade(x, c)
	}
	return out
}
