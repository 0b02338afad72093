package nested

import (
	"math"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// TopLevel is the Parent value of a space entered from Normal space
const TopLevel = -1

// Mechanics are per-space rules applied to travelers inside the space
type Mechanics struct {
	// TimeDilation divides motion; 0 and 1 both mean unchanged
	TimeDilation float64
	// GravityFlux pulls gravity toward the centre outside a quarter width
	GravityFlux bool
	// RealityBleed is the floor reality drifts toward; 0 disables
	RealityBleed float64
	// PerspectiveInversion flips the heading inside inversion zones at low reality
	PerspectiveInversion bool
	// RecursiveScaling enables continuous step scaling inside recursive rooms
	RecursiveScaling bool
	// Mirror swaps axes when a traveler crosses the x == y diagonal
	Mirror bool
}

// RecursiveRoom is a square sub-room whose interior rescales motion, in cells
type RecursiveRoom struct {
	Origin grid.Coord
	Size   int
	Scale  float64
}

// Space is an independently addressed sub-grid reached through an entrance cell
type Space struct {
	ID int
	// Entrance is the entrance cell in the parent's grid
	Entrance grid.Coord
	Parent   int
	Grid     *grid.Grid

	// Start is the local position a traveler appears at on entry
	Start vmath.Vec2
	// ExitAnchor is the parent-frame position a traveler returns to
	ExitAnchor vmath.Vec2
	ExitNormal grid.Direction

	Mechanics      Mechanics
	RecursiveRooms []RecursiveRoom

	// Salt keys the coordinate hash for mirror fragment normals
	Salt uint64
}

// Center returns the local world-space centre of the space
func (s *Space) Center() vmath.Vec2 {
	return vmath.Vec2{X: s.Grid.WorldWidth() / 2, Y: s.Grid.WorldHeight() / 2}
}

// RoomAt returns the index of the first recursive room containing pos, -1 if none
func (s *Space) RoomAt(pos vmath.Vec2) int {
	cs := s.Grid.CellSize
	for i, r := range s.RecursiveRooms {
		x0 := float64(r.Origin.X) * cs
		y0 := float64(r.Origin.Y) * cs
		size := float64(r.Size) * cs
		if pos.X >= x0 && pos.X < x0+size && pos.Y >= y0 && pos.Y < y0+size {
			return i
		}
	}
	return -1
}

// RoomCenter returns the local world-space centre of recursive room i
func (s *Space) RoomCenter(i int) vmath.Vec2 {
	r := s.RecursiveRooms[i]
	cs := s.Grid.CellSize
	return vmath.Vec2{
		X: (float64(r.Origin.X) + float64(r.Size)/2) * cs,
		Y: (float64(r.Origin.Y) + float64(r.Size)/2) * cs,
	}
}

// portalTarget returns a landing point in the next recursive room after the
// one containing pos: the room centre, or the first open cell beside it when
// the centre holds that room's own portal
func (s *Space) portalTarget(pos vmath.Vec2) (vmath.Vec2, bool) {
	n := len(s.RecursiveRooms)
	from := s.RoomAt(pos)
	for k := 1; k <= n; k++ {
		c := s.RoomCenter((from + k + n) % n)
		if s.Grid.Classify(c.X, c.Y).Traversable() {
			return c, true
		}
		cc := s.Grid.ToCell(c.X, c.Y)
		for _, d := range grid.Directions {
			nb := cc.Add(d.Offset())
			if s.Grid.CellAt(nb).Traversable() {
				return s.Grid.CellCenter(nb), true
			}
		}
	}
	return vmath.Vec2{}, false
}

// ScaleAt returns the step scale at pos: 1 at a recursive room's centre,
// falling linearly to the room's Scale at its half-width
// 1 outside every room or when recursive scaling is off
func (s *Space) ScaleAt(pos vmath.Vec2) float64 {
	if !s.Mechanics.RecursiveScaling {
		return 1
	}
	i := s.RoomAt(pos)
	if i < 0 {
		return 1
	}
	r := s.RecursiveRooms[i]
	half := float64(r.Size) * s.Grid.CellSize / 2
	if half <= 0 {
		return 1
	}
	dist := pos.Sub(s.RoomCenter(i)).Len()
	f := 1 - (dist/half)*(1-r.Scale)
	lo, hi := r.Scale, 1.0
	if lo > hi {
		lo, hi = hi, lo
	}
	return vmath.Clamp(f, lo, hi)
}

// MirrorNormal returns the reflection normal of a mirror cell
// Diagonal cells reflect along (1/√2, 1/√2); fragments get a stable hashed normal
func (s *Space) MirrorNormal(c grid.Coord) vmath.Vec2 {
	if c.X == c.Y {
		return vmath.Vec2{X: vmath.InvSqrt2, Y: vmath.InvSqrt2}
	}
	return vmath.FromAngle(vmath.HashUnit(c.X, c.Y, s.Salt) * vmath.TwoPi)
}

// GravityAt returns the gravity direction imposed at pos by gravity flux
func (s *Space) GravityAt(pos vmath.Vec2) (grid.Direction, bool) {
	if !s.Mechanics.GravityFlux {
		return 0, false
	}
	c := s.Center()
	toCenter := c.Sub(pos)
	if toCenter.Len() <= s.Grid.WorldWidth()/4 {
		return 0, false
	}
	return grid.DirectionOf(toCenter.Angle()), true
}

// RealityTarget returns the reality floor at pos, lower near the centre
func (s *Space) RealityTarget(pos vmath.Vec2) (float64, bool) {
	if s.Mechanics.RealityBleed <= 0 {
		return 0, false
	}
	c := s.Center()
	maxDist := c.Len()
	if maxDist == 0 {
		return s.Mechanics.RealityBleed, true
	}
	centerFactor := 1 - pos.Sub(c).Len()/maxDist
	return s.Mechanics.RealityBleed * (0.8 + 0.2*centerFactor), true
}

// InInversionZone reports whether pos lies in one of the four quadrant-centre
// zones where perspective inversion can trigger
func (s *Space) InInversionZone(pos vmath.Vec2) bool {
	if !s.Mechanics.PerspectiveInversion {
		return false
	}
	w, h := s.Grid.WorldWidth(), s.Grid.WorldHeight()
	r := w / 8
	for _, z := range [4]vmath.Vec2{
		{X: w / 4, Y: h / 4},
		{X: 3 * w / 4, Y: h / 4},
		{X: w / 4, Y: 3 * h / 4},
		{X: 3 * w / 4, Y: 3 * h / 4},
	} {
		if pos.Sub(z).LenSq() < r*r {
			return true
		}
	}
	return false
}

// dilation returns the motion divisor
func (m Mechanics) dilation() float64 {
	if m.TimeDilation <= 0 {
		return 1
	}
	return m.TimeDilation
}

// crossesDiagonal reports a strict side change across x == y
func crossesDiagonal(from, to vmath.Vec2) bool {
	a := from.X - from.Y
	b := to.X - to.Y
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}

// ReflectHeading returns the heading after bouncing off a surface with unit
// normal n; agrees with Vec2.Reflect on the direction vector
func ReflectHeading(heading float64, n vmath.Vec2) float64 {
	an := math.Atan2(n.Y, n.X)
	return vmath.WrapAngle(math.Pi + 2*an - heading)
}

// StampRoom carves a recursive room into g: a boundary ring, an empty
// interior and a recursive portal at the centre when the room has one
func StampRoom(g *grid.Grid, r RecursiveRoom) {
	for i := 0; i < r.Size; i++ {
		for j := 0; j < r.Size; j++ {
			p := grid.Coord{X: r.Origin.X + j, Y: r.Origin.Y + i}
			if i == 0 || j == 0 || i == r.Size-1 || j == r.Size-1 {
				g.Set(p, grid.Of(grid.RecursiveBoundary))
			} else {
				g.Set(p, grid.EmptyCell)
			}
		}
	}
	if r.Size > 2 {
		g.Set(grid.Coord{X: r.Origin.X + r.Size/2, Y: r.Origin.Y + r.Size/2}, grid.Of(grid.RecursivePortal))
	}
}
