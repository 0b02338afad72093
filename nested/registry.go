package nested

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

var (
	ErrNoGrid    = errors.New("nested: space has no grid")
	ErrParent    = errors.New("nested: parent must be registered first")
	ErrEntrance  = errors.New("nested: entrance already registered")
	ErrStart     = errors.New("nested: start position not traversable")
	ErrRoomScale = errors.New("nested: recursive room scale must be in (0, 1]")
)

// ExitEpsilon is the offset along ExitNormal applied when leaving a space,
// as a ratio of the parent's cell size
const ExitEpsilon = 0.05

type entranceKey struct {
	parent int
	pos    grid.Coord
}

// Registry owns all nested spaces, addressed by integer id
type Registry struct {
	spaces []*Space
	index  map[entranceKey]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[entranceKey]int)}
}

// Add registers a space and assigns its id
// A space nested in another must be added after its parent
func (r *Registry) Add(s *Space) (int, error) {
	if s.Grid == nil {
		return -1, ErrNoGrid
	}
	if s.Parent != TopLevel && (s.Parent < 0 || s.Parent >= len(r.spaces)) {
		return -1, fmt.Errorf("%w: parent %d", ErrParent, s.Parent)
	}
	key := entranceKey{s.Parent, s.Entrance}
	if _, ok := r.index[key]; ok {
		return -1, fmt.Errorf("%w: %v in %d", ErrEntrance, s.Entrance, s.Parent)
	}
	if !s.Grid.Classify(s.Start.X, s.Start.Y).Traversable() {
		return -1, fmt.Errorf("%w: %v", ErrStart, s.Start)
	}
	for _, room := range s.RecursiveRooms {
		if room.Scale <= 0 || room.Scale > 1 {
			return -1, fmt.Errorf("%w: %v", ErrRoomScale, room.Scale)
		}
	}

	s.ID = len(r.spaces)
	r.spaces = append(r.spaces, s)
	r.index[key] = s.ID
	return s.ID, nil
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.spaces)
}

// Get returns space id, nil when unknown
func (r *Registry) Get(id int) *Space {
	if r == nil || id < 0 || id >= len(r.spaces) {
		return nil
	}
	return r.spaces[id]
}

// ByEntrance finds the space entered through cell c of parent's grid
// parent is TopLevel for entrances in Normal space
func (r *Registry) ByEntrance(parent int, c grid.Coord) (int, bool) {
	if r == nil {
		return -1, false
	}
	id, ok := r.index[entranceKey{parent, c}]
	return id, ok
}

// Enter returns the local start position of space id
func (r *Registry) Enter(id int) (vmath.Vec2, bool) {
	s := r.Get(id)
	if s == nil {
		return vmath.Vec2{}, false
	}
	return s.Start, true
}

// ExitPoint returns the parent-frame position for leaving space id,
// nudged along ExitNormal so the entrance does not immediately re-trigger
func (r *Registry) ExitPoint(id int, parentCellSize float64) vmath.Vec2 {
	s := r.Get(id)
	if s == nil {
		return vmath.Vec2{}
	}
	return s.ExitAnchor.Add(s.ExitNormal.Normal().Scale(ExitEpsilon * parentCellSize))
}

// StepResult is the outcome of one movement step inside a space
type StepResult struct {
	Pos     vmath.Vec2
	Heading float64
	Cell    grid.Cell

	HitWall bool
	// Exiting signals leaving to the parent through the boundary or the exit cell
	Exiting bool
	// Child is the space entered through a chained entrance, -1 if none
	Child int

	Mirrored   bool // crossed the diagonal
	Reflected  bool // bounced off a mirror wall
	Teleported bool // recursive portal jump
	Deeper     bool // passed a recursive boundary
}

// Step advances a traveler by delta inside space id
// Motion is divided by time dilation and scaled by ScaleAt before applying
// mirror, boundary and cell rules
func (r *Registry) Step(id int, pos vmath.Vec2, heading float64, delta vmath.Vec2) StepResult {
	res := StepResult{Pos: pos, Heading: heading, Child: -1}
	s := r.Get(id)
	if s == nil {
		res.HitWall = true
		res.Cell = grid.WallCell
		return res
	}

	d := delta.Scale(1 / s.Mechanics.dilation())
	d = d.Scale(s.ScaleAt(pos))
	next := pos.Add(d)

	if s.Mechanics.Mirror && crossesDiagonal(pos, next) {
		next = vmath.Vec2{X: next.Y, Y: next.X}
		res.Heading = vmath.WrapAngle(res.Heading + vmath.HalfPi)
		res.Mirrored = true
	}

	if !s.Grid.Contains(next.X, next.Y) {
		res.Exiting = true
		res.Cell = grid.WallCell
		return res
	}

	c := s.Grid.ToCell(next.X, next.Y)
	cell := s.Grid.CellAt(c)
	res.Cell = cell

	switch cell.Kind {
	case grid.Empty, grid.Portal:
		res.Pos = next

	case grid.NonEuclideanEntrance:
		if child, ok := r.ByEntrance(id, c); ok {
			res.Child = child
		} else {
			res.Exiting = true
		}

	case grid.RecursiveBoundary:
		if s.Mechanics.RecursiveScaling && s.RoomAt(next) >= 0 {
			res.Pos = next
			res.Deeper = true
		} else {
			res.HitWall = true
		}

	case grid.RecursivePortal:
		if target, ok := s.portalTarget(next); ok {
			res.Pos = target
			res.Teleported = true
		} else {
			res.HitWall = true
		}

	case grid.MirrorWall:
		normal := s.MirrorNormal(c)
		bounced := pos.Add(d.Reflect(normal))
		if s.Grid.Classify(bounced.X, bounced.Y).Traversable() {
			res.Pos = bounced
		}
		res.Heading = ReflectHeading(res.Heading, normal)
		res.Reflected = true

	default:
		res.HitWall = true
	}
	return res
}
