package hypercube

import (
	"fmt"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// Set holds every complex of a world; complexes reference each other by id
type Set struct {
	complexes []*Complex
	index     map[grid.Coord]int

	// Inset is how far inside the entered face a crossing places the
	// traveler, as a ratio of the room cell size
	Inset float64
}

// DefaultInset places a crossing traveler at the centre of the first
// interior row behind the wall ring
const DefaultInset = 1.5

// NewSet assigns ids in order and validates 4D links across complexes
func NewSet(complexes ...*Complex) (*Set, error) {
	s := &Set{index: make(map[grid.Coord]int), Inset: DefaultInset}
	for i, c := range complexes {
		c.ID = i
		if _, dup := s.index[c.Entrance]; dup {
			return nil, fmt.Errorf("hypercube: duplicate entrance %v", c.Entrance)
		}
		s.index[c.Entrance] = i
	}
	s.complexes = complexes
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks adjacency of every complex and that each 4D link targets an
// existing room with the face implied by its rotation
func (s *Set) Validate() error {
	for _, c := range s.complexes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("complex %d: %w", c.ID, err)
		}
		for ri, r := range c.Rooms {
			for face, l := range r.FourD {
				tc := s.Get(l.Complex)
				if tc == nil || tc.Room(l.Room) == nil {
					return fmt.Errorf("%w: complex %d room %d face %v → %d/%d", ErrLink, c.ID, ri, face, l.Complex, l.Room)
				}
				if want := face.Opposite().Rotate(l.Rotation); l.Face != want {
					return fmt.Errorf("%w: complex %d room %d face %v lands on %v, rotation implies %v",
						ErrLink, c.ID, ri, face, l.Face, want)
				}
			}
		}
	}
	return nil
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.complexes)
}

// Get returns complex id, nil when unknown
func (s *Set) Get(id int) *Complex {
	if s == nil || id < 0 || id >= len(s.complexes) {
		return nil
	}
	return s.complexes[id]
}

// ByEntrance finds the complex whose entrance is Normal-space cell c
func (s *Set) ByEntrance(c grid.Coord) (int, bool) {
	if s == nil {
		return -1, false
	}
	id, ok := s.index[c]
	return id, ok
}

// ResolveConnection returns where leaving room through face leads
// A 4D link on the face wins over the sibling connection; no entry means the
// face behaves as a wall
func (s *Set) ResolveConnection(complex, room int, face grid.Direction) (Link, bool) {
	c := s.Get(complex)
	if c == nil {
		return Link{}, false
	}
	r := c.Room(room)
	if r == nil {
		return Link{}, false
	}
	if l, ok := r.FourD[face]; ok {
		return l, true
	}
	if j, ok := r.Connections[face]; ok {
		return Link{Complex: complex, Room: j, Face: face.Opposite()}, true
	}
	return Link{}, false
}

// Crossing is the traveler state after leaving a room through a face
type Crossing struct {
	Complex, Room int
	Pos           vmath.Vec2
	Heading       float64
	FourD         bool
}

// Cross resolves face and maps the local position and heading into the target
// room
func (s *Set) Cross(complex, room int, face grid.Direction, local vmath.Vec2, heading float64) (Crossing, bool) {
	l, ok := s.ResolveConnection(complex, room, face)
	if !ok {
		return Crossing{}, false
	}
	target := s.Get(l.Complex).Room(l.Room)
	inset := s.Inset * target.Grid.CellSize
	return Crossing{
		Complex: l.Complex,
		Room:    l.Room,
		Pos:     MapCoordAcrossFace(local, face, target.WorldSize(), l.Rotation, inset),
		Heading: RotateHeading(heading, l.Rotation),
		FourD:   s.isFourD(complex, room, face),
	}, true
}

func (s *Set) isFourD(complex, room int, face grid.Direction) bool {
	_, ok := s.Get(complex).Room(room).FourD[face]
	return ok
}

// Enter returns the start position in room 0 of complex id
func (s *Set) Enter(id int) (vmath.Vec2, bool) {
	c := s.Get(id)
	if c == nil || len(c.Rooms) == 0 {
		return vmath.Vec2{}, false
	}
	return c.Rooms[0].Start, true
}

// ExitPoint returns the Normal-space position for leaving complex id,
// nudged along ExitNormal by epsilon world units
func (s *Set) ExitPoint(id int, epsilon float64) vmath.Vec2 {
	c := s.Get(id)
	if c == nil {
		return vmath.Vec2{}
	}
	return c.ExitAnchor.Add(c.ExitNormal.Normal().Scale(epsilon))
}
