package grid

import (
	"math"
	"strings"

	"github.com/lixenwraith/tesseract/vmath"
)

// Grid is a row-major width × height array of cells addressed in world units
// through CellSize. Out-of-bounds lookups classify as Wall
type Grid struct {
	Width, Height int
	CellSize      float64

	cells []Cell
}

// New returns an all-empty grid
func New(width, height int, cellSize float64) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		cells:    make([]Cell, width*height),
	}
}

// Bordered returns an empty grid enclosed by a one-cell wall ring
func Bordered(width, height int, cellSize float64) *Grid {
	g := New(width, height, cellSize)
	g.Border(WallCell)
	return g
}

// Border overwrites the outer ring with c
func (g *Grid) Border(c Cell) {
	for x := 0; x < g.Width; x++ {
		g.Set(Coord{x, 0}, c)
		g.Set(Coord{x, g.Height - 1}, c)
	}
	for y := 0; y < g.Height; y++ {
		g.Set(Coord{0, y}, c)
		g.Set(Coord{g.Width - 1, y}, c)
	}
}

// Fill overwrites every cell with c
func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// Set writes a cell, ignoring out-of-bounds coordinates
// Only generators call Set; a grid installed in a world is never mutated
func (g *Grid) Set(p Coord, c Cell) {
	if !g.InBounds(p) {
		return
	}
	g.cells[p.Y*g.Width+p.X] = c
}

func (g *Grid) InBounds(p Coord) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// CellAt returns the cell at p, Wall when out of bounds
func (g *Grid) CellAt(p Coord) Cell {
	if !g.InBounds(p) {
		return WallCell
	}
	return g.cells[p.Y*g.Width+p.X]
}

// ToCell maps a world position to its cell by floor division
func (g *Grid) ToCell(x, y float64) Coord {
	return Coord{vmath.FloorDiv(x, g.CellSize), vmath.FloorDiv(y, g.CellSize)}
}

// CellCenter returns the world position of the centre of p
func (g *Grid) CellCenter(p Coord) vmath.Vec2 {
	return vmath.Vec2{
		X: (float64(p.X) + 0.5) * g.CellSize,
		Y: (float64(p.Y) + 0.5) * g.CellSize,
	}
}

// Classify resolves a world position to exactly one cell
func (g *Grid) Classify(x, y float64) Cell {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return WallCell
	}
	return g.CellAt(g.ToCell(x, y))
}

// IsOccupied reports whether a world position blocks a traveler
func (g *Grid) IsOccupied(x, y float64) bool {
	return !g.Classify(x, y).Traversable()
}

// WorldWidth returns the grid extent in world units
func (g *Grid) WorldWidth() float64 {
	return float64(g.Width) * g.CellSize
}

func (g *Grid) WorldHeight() float64 {
	return float64(g.Height) * g.CellSize
}

// Contains reports whether a world position lies inside [0,w)×[0,h)
func (g *Grid) Contains(x, y float64) bool {
	return g.InBounds(g.ToCell(x, y))
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = make([]Cell, len(g.cells))
	copy(c.cells, g.cells)
	return &c
}

// Count returns the number of cells of kind k
func (g *Grid) Count(k Kind) int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Find returns every coordinate whose cell has kind k, row-major
func (g *Grid) Find(k Kind) []Coord {
	var out []Coord
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.cells[y*g.Width+x].Kind == k {
				out = append(out, Coord{x, y})
			}
		}
	}
	return out
}

// Reachable flood-fills 4-connected traversable cells from start
// Returns a row-major visited mask and the region size; empty when start is blocked
func (g *Grid) Reachable(start Coord) ([]bool, int) {
	visited := make([]bool, len(g.cells))
	if !g.CellAt(start).Traversable() {
		return visited, 0
	}

	queue := []Coord{start}
	visited[start.Y*g.Width+start.X] = true
	count := 0

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		count++

		for _, d := range Directions {
			next := curr.Add(d.Offset())
			if !g.InBounds(next) {
				continue
			}
			idx := next.Y*g.Width + next.X
			if visited[idx] || !g.cells[idx].Traversable() {
				continue
			}
			visited[idx] = true
			queue = append(queue, next)
		}
	}
	return visited, count
}

// Traversable returns the number of traversable cells
func (g *Grid) Traversable() int {
	n := 0
	for _, c := range g.cells {
		if c.Traversable() {
			n++
		}
	}
	return n
}

var kindGlyphs = [...]byte{
	Empty:                 '.',
	Wall:                  '#',
	Portal:                'O',
	NonEuclideanEntrance:  'N',
	RealityDistortionWall: '~',
	PerspectiveShiftWall:  '%',
	HypercubeEntrance:     'H',
	RealityFracture:       '*',
	DimensionalShift:      '&',
	RecursiveBoundary:     '=',
	RecursivePortal:       '@',
	MirrorWall:            '|',
	RoomConnection:        '+',
	FourDConnection:       '4',
}

// Glyph returns a single ASCII character for the cell kind
func (c Cell) Glyph() byte {
	if int(c.Kind) < len(kindGlyphs) {
		return kindGlyphs[c.Kind]
	}
	return '?'
}

// String renders the grid as ASCII rows
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.Width + 1) * g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			b.WriteByte(g.cells[y*g.Width+x].Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
