package hypercube

import (
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// Link is a cross-complex 4D connection leaving through one face of a room
type Link struct {
	Complex  int
	Room     int
	Face     grid.Direction // face of the target room the traveler appears at
	Rotation int            // quarter turns applied to position and heading
}

// PortalPair joins two cells of one room; using either end lands at the other
type PortalPair struct {
	A, B grid.Coord
}

// Room is one vertex of a complex, a square grid placed in the complex's
// backing layout at Position
type Room struct {
	Grid     *grid.Grid
	Position grid.Coord
	Start    vmath.Vec2

	// Connections is derived by NewComplex from the vertex index
	Connections map[grid.Direction]int
	FourD       map[grid.Direction]Link

	Portals []PortalPair
}

// Size returns the room edge length in cells
func (r *Room) Size() int {
	return r.Grid.Width
}

// WorldSize returns the room edge length in world units
func (r *Room) WorldSize() float64 {
	return r.Grid.WorldWidth()
}

// Partner returns the other end of the recursive portal pair at c
func (r *Room) Partner(c grid.Coord) (grid.Coord, bool) {
	for _, p := range r.Portals {
		switch c {
		case p.A:
			return p.B, true
		case p.B:
			return p.A, true
		}
	}
	return grid.Coord{}, false
}

// FaceOf returns the face a cell of a size×size room belongs to:
// the boundary row or column it sits on, else the nearest one
// Corner cells resolve in N, E, S, W order
func FaceOf(c grid.Coord, size int) grid.Direction {
	switch {
	case c.Y <= 0:
		return grid.North
	case c.X >= size-1:
		return grid.East
	case c.Y >= size-1:
		return grid.South
	case c.X <= 0:
		return grid.West
	}

	best, bestDist := grid.North, c.Y
	if d := size - 1 - c.X; d < bestDist {
		best, bestDist = grid.East, d
	}
	if d := size - 1 - c.Y; d < bestDist {
		best, bestDist = grid.South, d
	}
	if d := c.X; d < bestDist {
		best = grid.West
	}
	return best
}

// FaceOfPoint returns the face crossed when a local position leaves [0,size)²
func FaceOfPoint(p vmath.Vec2, size float64) (grid.Direction, bool) {
	switch {
	case p.Y < 0:
		return grid.North, true
	case p.X >= size:
		return grid.East, true
	case p.Y >= size:
		return grid.South, true
	case p.X < 0:
		return grid.West, true
	}
	return 0, false
}

// MapCoordAcrossFace places a point leaving through fromFace on the opposite
// face of a toSize room, inset world units inside it, then rotates it
// rotation quarter turns around the room centre
// The coordinate along the face is kept and clamped into the interior
func MapCoordAcrossFace(local vmath.Vec2, fromFace grid.Direction, toSize float64, rotation int, inset float64) vmath.Vec2 {
	lo, hi := inset, toSize-inset
	if lo > hi {
		lo, hi = toSize/2, toSize/2
	}

	var p vmath.Vec2
	switch fromFace {
	case grid.North:
		p = vmath.Vec2{X: vmath.Clamp(local.X, lo, hi), Y: hi}
	case grid.East:
		p = vmath.Vec2{X: lo, Y: vmath.Clamp(local.Y, lo, hi)}
	case grid.South:
		p = vmath.Vec2{X: vmath.Clamp(local.X, lo, hi), Y: lo}
	default:
		p = vmath.Vec2{X: hi, Y: vmath.Clamp(local.Y, lo, hi)}
	}

	c := vmath.Vec2{X: toSize / 2, Y: toSize / 2}
	return vmath.RotateAround(p, c, rotation)
}

// RotateHeading turns a heading by rotation quarter turns
func RotateHeading(heading float64, rotation int) float64 {
	return vmath.WrapAngle(heading + vmath.QuarterTurns(rotation))
}
