package portal

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

var (
	ErrOccupied = errors.New("portal: endpoint cell already registered")
	ErrSameCell = errors.New("portal: pair endpoints share a cell")
	ErrBroken   = errors.New("portal: asymmetric link")
)

// Endpoint is one side of a portal pair, Linked is the arena index of its partner
type Endpoint struct {
	Pos    grid.Coord
	Facing grid.Direction
	Linked int
}

// Crossing is the outcome of a successful portal traversal
type Crossing struct {
	Pos      vmath.Vec2
	Heading  float64
	From, To int // endpoint indices
	Rotation int // quarter turns applied
}

// Registry owns all endpoints by value; pairs occupy indices 2i and 2i+1
type Registry struct {
	endpoints []Endpoint
	index     map[grid.Coord]int

	cellSize  float64
	proximity float64 // world units
}

// NewRegistry creates an empty registry
// proximity is a ratio of cellSize, e.g. 0.5
func NewRegistry(cellSize, proximity float64) *Registry {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Registry{
		index:     make(map[grid.Coord]int),
		cellSize:  cellSize,
		proximity: proximity * cellSize,
	}
}

// AddPair links a and b bidirectionally and returns the pair index
func (r *Registry) AddPair(a grid.Coord, fa grid.Direction, b grid.Coord, fb grid.Direction) (int, error) {
	if a == b {
		return -1, fmt.Errorf("%w: %v", ErrSameCell, a)
	}
	if _, ok := r.index[a]; ok {
		return -1, fmt.Errorf("%w: %v", ErrOccupied, a)
	}
	if _, ok := r.index[b]; ok {
		return -1, fmt.Errorf("%w: %v", ErrOccupied, b)
	}

	ia := len(r.endpoints)
	ib := ia + 1
	r.endpoints = append(r.endpoints,
		Endpoint{Pos: a, Facing: fa, Linked: ib},
		Endpoint{Pos: b, Facing: fb, Linked: ia},
	)
	r.index[a] = ia
	r.index[b] = ib
	return ia / 2, nil
}

// Len returns the number of endpoints
func (r *Registry) Len() int {
	return len(r.endpoints)
}

// Pairs returns the number of portal pairs
func (r *Registry) Pairs() int {
	return len(r.endpoints) / 2
}

// At returns endpoint i
func (r *Registry) At(i int) Endpoint {
	return r.endpoints[i]
}

// Endpoints returns a copy of the arena
func (r *Registry) Endpoints() []Endpoint {
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// ByCoord returns the endpoint index registered at c
func (r *Registry) ByCoord(c grid.Coord) (int, bool) {
	i, ok := r.index[c]
	return i, ok
}

func (r *Registry) CellSize() float64 {
	return r.cellSize
}

// Validate checks link symmetry and index agreement
func (r *Registry) Validate() error {
	if len(r.endpoints)%2 != 0 {
		return fmt.Errorf("%w: odd endpoint count %d", ErrBroken, len(r.endpoints))
	}
	for i, e := range r.endpoints {
		if e.Linked < 0 || e.Linked >= len(r.endpoints) || e.Linked == i {
			return fmt.Errorf("%w: endpoint %d links to %d", ErrBroken, i, e.Linked)
		}
		if r.endpoints[e.Linked].Linked != i {
			return fmt.Errorf("%w: %d→%d→%d", ErrBroken, i, e.Linked, r.endpoints[e.Linked].Linked)
		}
		if j, ok := r.index[e.Pos]; !ok || j != i {
			return fmt.Errorf("%w: index mismatch at %v", ErrBroken, e.Pos)
		}
	}
	return nil
}

// center returns the world position of an endpoint's cell centre
func (r *Registry) center(e Endpoint) vmath.Vec2 {
	return vmath.Vec2{
		X: (float64(e.Pos.X) + 0.5) * r.cellSize,
		Y: (float64(e.Pos.Y) + 0.5) * r.cellSize,
	}
}

// nearest finds the closest unused endpoint within proximity of pos
func (r *Registry) nearest(pos vmath.Vec2, guard *Guard) (int, bool) {
	if len(r.endpoints) == 0 {
		return -1, false
	}

	c := grid.Coord{X: vmath.FloorDiv(pos.X, r.cellSize), Y: vmath.FloorDiv(pos.Y, r.cellSize)}
	reach := int(r.proximity/r.cellSize) + 1
	limit := r.proximity * r.proximity

	best := -1
	bestSq := limit
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			i, ok := r.index[grid.Coord{X: c.X + dx, Y: c.Y + dy}]
			if !ok || guard.Used(i) {
				continue
			}
			d := pos.Sub(r.center(r.endpoints[i])).LenSq()
			if d <= bestSq {
				best, bestSq = i, d
			}
		}
	}
	return best, best >= 0
}

// TryCross teleports a sample point through the nearest endpoint when it lies
// within proximity and approaches from the open side
// approach is the direction of motion; heading is carried through the rotation
// On success both endpoints of the pair are marked used in guard
func (r *Registry) TryCross(pos vmath.Vec2, heading float64, approach vmath.Vec2, guard *Guard) (Crossing, bool) {
	i, ok := r.nearest(pos, guard)
	if !ok {
		return Crossing{}, false
	}
	from := r.endpoints[i]
	if approach.Dot(from.Facing.Normal()) <= 0 {
		return Crossing{}, false
	}
	c := r.Transform(i, pos, heading)
	guard.Mark(i)
	guard.Mark(from.Linked)
	return c, true
}

// Transform applies endpoint i's translation and rotation unconditionally
func (r *Registry) Transform(i int, pos vmath.Vec2, heading float64) Crossing {
	from := r.endpoints[i]
	to := r.endpoints[from.Linked]
	rot := from.Facing.QuarterTurnsTo(to.Facing)

	src := r.center(from)
	dst := r.center(to)
	// pos + offset lands at dst + (pos - src); rotate that around dst
	moved := pos.Add(dst.Sub(src))
	return Crossing{
		Pos:      vmath.RotateAround(moved, dst, rot),
		Heading:  vmath.WrapAngle(heading + vmath.QuarterTurns(rot)),
		From:     i,
		To:       from.Linked,
		Rotation: rot,
	}
}
