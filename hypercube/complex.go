package hypercube

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

// MaxRooms is the largest complex: one address bit per face
const MaxRooms = 16

var (
	ErrAdjacency = errors.New("hypercube: connection violates vertex adjacency")
	ErrRoomCount = errors.New("hypercube: room count must be a power of two up to 16")
	ErrRoomShape = errors.New("hypercube: room grid must be square")
	ErrLink      = errors.New("hypercube: invalid 4D link")
)

// Complex is a tesseract-like set of rooms; rooms i and j are adjacent iff
// their indices differ in exactly one bit, and bit d is reached through face d
type Complex struct {
	ID       int
	Entrance grid.Coord // HypercubeEntrance cell in Normal space
	// ExitAnchor is the Normal-space position a traveler leaves to
	ExitAnchor vmath.Vec2
	ExitNormal grid.Direction

	Rooms []*Room
}

// Adjacent reports the tesseract edge rule popcount(i xor j) == 1
func Adjacent(i, j int) bool {
	return bits.OnesCount(uint(i^j)) == 1
}

// NewComplex wires sibling connections from the vertex indices and validates
// the result; any FourD links already on the rooms are kept
func NewComplex(id int, entrance grid.Coord, rooms []*Room) (*Complex, error) {
	n := len(rooms)
	if n == 0 || n > MaxRooms || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrRoomCount, n)
	}
	for i, r := range rooms {
		if r == nil || r.Grid == nil || r.Grid.Width != r.Grid.Height {
			return nil, fmt.Errorf("%w: room %d", ErrRoomShape, i)
		}
		r.Connections = make(map[grid.Direction]int, 4)
		for _, d := range grid.Directions {
			bit := 1 << uint(d)
			if bit < n {
				r.Connections[d] = i ^ bit
			}
		}
		if r.FourD == nil {
			r.FourD = make(map[grid.Direction]Link)
		}
	}

	c := &Complex{ID: id, Entrance: entrance, Rooms: rooms}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every stored connection against the adjacency law and
// that every unordered adjacent pair is connected in both directions
func (c *Complex) Validate() error {
	n := len(c.Rooms)
	for i, r := range c.Rooms {
		for d, j := range r.Connections {
			if j < 0 || j >= n || !Adjacent(i, j) {
				return fmt.Errorf("%w: room %d face %v → %d", ErrAdjacency, i, d, j)
			}
			if back, ok := c.Rooms[j].Connections[d]; !ok || back != i {
				return fmt.Errorf("%w: room %d face %v → %d not reciprocated", ErrAdjacency, i, d, j)
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if Adjacent(i, j) != c.connected(i, j) {
				return fmt.Errorf("%w: rooms %d and %d", ErrAdjacency, i, j)
			}
		}
	}
	return nil
}

func (c *Complex) connected(i, j int) bool {
	for _, t := range c.Rooms[i].Connections {
		if t == j {
			return true
		}
	}
	return false
}

// Room returns room id, nil when out of range
func (c *Complex) Room(id int) *Room {
	if id < 0 || id >= len(c.Rooms) {
		return nil
	}
	return c.Rooms[id]
}

// Chaos is the transition that ignores adjacency: with the given
// probability a recursive portal in room lands in an arbitrary other room
// The roll is a pure function of (room, cell, salt)
func (c *Complex) Chaos(room int, cell grid.Coord, salt uint64, probability float64) (int, bool) {
	n := len(c.Rooms)
	if n < 2 || probability <= 0 {
		return room, false
	}
	key := salt ^ uint64(room)*0xA24BAED4963EE407
	if vmath.HashUnit(cell.X, cell.Y, key) >= probability {
		return room, false
	}
	target := int(vmath.Hash2(cell.Y, cell.X, key) % uint64(n-1))
	if target >= room {
		target++
	}
	return target, true
}

// Layout composes all rooms into one backing grid at their positions
func (c *Complex) Layout() *grid.Grid {
	w, h := 0, 0
	cs := 1.0
	for _, r := range c.Rooms {
		if x := r.Position.X + r.Grid.Width; x > w {
			w = x
		}
		if y := r.Position.Y + r.Grid.Height; y > h {
			h = y
		}
		cs = r.Grid.CellSize
	}
	out := grid.New(w, h, cs)
	out.Fill(grid.WallCell)
	for _, r := range c.Rooms {
		for y := 0; y < r.Grid.Height; y++ {
			for x := 0; x < r.Grid.Width; x++ {
				out.Set(r.Position.Add(grid.Coord{X: x, Y: y}), r.Grid.CellAt(grid.Coord{X: x, Y: y}))
			}
		}
	}
	return out
}
