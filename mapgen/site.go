package mapgen

import (
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// rect is a half-open cell area [X0,X1) × [Y0,Y1)
type rect struct {
	X0, Y0, X1, Y1 int
}

// interior is the area inside the wall ring, shrunk by margin more cells
func interior(g *grid.Grid, margin int) rect {
	return rect{1 + margin, 1 + margin, g.Width - 1 - margin, g.Height - 1 - margin}
}

func (r rect) empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

func (r rect) random(rng *vmath.FastRand) grid.Coord {
	return grid.Coord{X: r.X0 + rng.Intn(r.X1-r.X0), Y: r.Y0 + rng.Intn(r.Y1-r.Y0)}
}

// site is one grid under construction: every traversable cell stays reachable
// from anchor, and reserved cells are never built over
type site struct {
	g        *grid.Grid
	anchor   grid.Coord
	reserved map[grid.Coord]bool
}

func newSite(g *grid.Grid, anchor grid.Coord) *site {
	s := &site{g: g, anchor: anchor, reserved: make(map[grid.Coord]bool)}
	g.Set(anchor, grid.EmptyCell)
	s.reserved[anchor] = true
	return s
}

// reserveAround keeps c and its in-bounds interior neighbours open
func (s *site) reserveAround(c grid.Coord) {
	s.reserved[c] = true
	for _, d := range grid.Directions {
		n := c.Add(d.Offset())
		if n.X > 0 && n.Y > 0 && n.X < s.g.Width-1 && n.Y < s.g.Height-1 {
			s.g.Set(n, grid.EmptyCell)
			s.reserved[n] = true
		}
	}
}

// reserveNear reserves c and its neighbours without changing them
func (s *site) reserveNear(c grid.Coord) {
	s.reserved[c] = true
	for _, d := range grid.Directions {
		s.reserved[c.Add(d.Offset())] = true
	}
}

// connect carves Wall cells until every traversable cell is reachable from
// the anchor; special cells are never carved
func (s *site) connect() int {
	for {
		visited, n := s.g.Reachable(s.anchor)
		stray, ok := s.firstUnreached(visited)
		if !ok {
			return n
		}
		if !s.carveToward(stray, s.anchor, visited) {
			// Walled off by special cells: give the region up
			s.g.Set(stray, grid.WallCell)
		}
	}
}

func (s *site) firstUnreached(visited []bool) (grid.Coord, bool) {
	for y := 0; y < s.g.Height; y++ {
		for x := 0; x < s.g.Width; x++ {
			c := grid.Coord{X: x, Y: y}
			if !visited[y*s.g.Width+x] && s.g.CellAt(c).Traversable() {
				return c, true
			}
		}
	}
	return grid.Coord{}, false
}

// carveToward opens an L-shaped corridor from c toward to, stopping once it
// meets the reached region. Reports whether the corridor got there
func (s *site) carveToward(c, to grid.Coord, visited []bool) bool {
	p := c
	for p != to {
		switch {
		case p.X != to.X:
			p.X += sign(to.X - p.X)
		default:
			p.Y += sign(to.Y - p.Y)
		}
		cell := s.g.CellAt(p)
		switch {
		case cell.Kind == grid.Wall:
			s.g.Set(p, grid.EmptyCell)
		case !cell.Traversable():
			return false
		}
		if visited[p.Y*s.g.Width+p.X] {
			return true
		}
	}
	return true
}

// placeBlocking puts a non-traversable cell on a random open cell of area
// that has an open neighbour, without cutting anything off from the anchor
func (s *site) placeBlocking(rng *vmath.FastRand, area rect, cell grid.Cell, attempts int) (grid.Coord, bool) {
	if area.empty() {
		return grid.Coord{}, false
	}
	_, total := s.g.Reachable(s.anchor)
	for i := 0; i < attempts; i++ {
		c := area.random(rng)
		if s.reserved[c] || s.g.CellAt(c).Kind != grid.Empty {
			continue
		}
		if _, ok := s.openNeighbour(c, rng); !ok {
			continue
		}
		s.g.Set(c, cell)
		if _, n := s.g.Reachable(s.anchor); n == total-1 {
			return c, true
		}
		s.g.Set(c, grid.EmptyCell)
	}
	return grid.Coord{}, false
}

// openNeighbour picks a traversable, unreserved neighbour of c starting from a
// random facing
func (s *site) openNeighbour(c grid.Coord, rng *vmath.FastRand) (grid.Direction, bool) {
	first := rng.Intn(4)
	for k := 0; k < 4; k++ {
		d := grid.Directions[(first+k)&3]
		n := c.Add(d.Offset())
		if s.g.InBounds(n) && s.g.CellAt(n).Traversable() && !s.reserved[n] {
			return d, true
		}
	}
	return 0, false
}

// placeDoor places a blocking cell with a reserved open cell beside it
// The door's exit faces that open cell
func (s *site) placeDoor(rng *vmath.FastRand, area rect, cell grid.Cell, attempts int) (door grid.Coord, exit grid.Direction, ok bool) {
	for i := 0; i < attempts; i++ {
		door, ok = s.placeBlocking(rng, area, cell, 1)
		if !ok {
			continue
		}
		if exit, ok = s.openNeighbour(door, rng); ok {
			s.reserved[door] = true
			s.reserved[door.Add(exit.Offset())] = true
			return door, exit, true
		}
		s.g.Set(door, grid.EmptyCell)
	}
	return grid.Coord{}, 0, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// faceMid returns the middle cell of the boundary row or column on face d
func faceMid(d grid.Direction, size int) grid.Coord {
	switch d {
	case grid.North:
		return grid.Coord{X: size / 2, Y: 0}
	case grid.East:
		return grid.Coord{X: size - 1, Y: size / 2}
	case grid.South:
		return grid.Coord{X: size / 2, Y: size - 1}
	}
	return grid.Coord{X: 0, Y: size / 2}
}
