package nested

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

const eps = 1e-9

// newSpace builds a bordered 12×12 space with an exit cell at the top middle
func newSpace(m Mechanics) *Space {
	g := grid.Bordered(12, 12, 1)
	g.Set(grid.Coord{X: 6, Y: 1}, grid.Of(grid.NonEuclideanEntrance))
	return &Space{
		Entrance:   grid.Coord{X: 4, Y: 4},
		Parent:     TopLevel,
		Grid:       g,
		Start:      vmath.V2(2.5, 2.5),
		ExitAnchor: vmath.V2(10, 4),
		ExitNormal: grid.East,
		Mechanics:  m,
		Salt:       7,
	}
}

func mustAdd(t *testing.T, r *Registry, s *Space) int {
	t.Helper()
	id, err := r.Add(s)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return id
}

func TestEnterAndLookup(t *testing.T) {
	r := NewRegistry()
	id := mustAdd(t, r, newSpace(Mechanics{}))

	got, ok := r.ByEntrance(TopLevel, grid.Coord{X: 4, Y: 4})
	if !ok || got != id {
		t.Fatalf("ByEntrance = %d, %v", got, ok)
	}
	if _, ok := r.ByEntrance(TopLevel, grid.Coord{X: 5, Y: 4}); ok {
		t.Error("unexpected space at other cell")
	}
	start, ok := r.Enter(id)
	if !ok || start != vmath.V2(2.5, 2.5) {
		t.Errorf("Enter = %v, %v", start, ok)
	}
	if _, ok := r.Enter(9); ok {
		t.Error("Enter on unknown id succeeded")
	}
}

func TestExitPoint(t *testing.T) {
	r := NewRegistry()
	id := mustAdd(t, r, newSpace(Mechanics{}))
	got := r.ExitPoint(id, 2)
	if want := vmath.V2(10+ExitEpsilon*2, 4); !got.Near(want, eps) {
		t.Errorf("ExitPoint = %v, want %v", got, want)
	}
}

func TestAdd_Errors(t *testing.T) {
	r := NewRegistry()
	mustAdd(t, r, newSpace(Mechanics{}))

	dup := newSpace(Mechanics{})
	if _, err := r.Add(dup); !errors.Is(err, ErrEntrance) {
		t.Errorf("duplicate entrance: %v", err)
	}

	orphan := newSpace(Mechanics{})
	orphan.Parent = 5
	if _, err := r.Add(orphan); !errors.Is(err, ErrParent) {
		t.Errorf("missing parent: %v", err)
	}

	walled := newSpace(Mechanics{})
	walled.Entrance = grid.Coord{X: 1, Y: 1}
	walled.Start = vmath.V2(0.5, 0.5)
	if _, err := r.Add(walled); !errors.Is(err, ErrStart) {
		t.Errorf("start in wall: %v", err)
	}

	scaled := newSpace(Mechanics{})
	scaled.Entrance = grid.Coord{X: 2, Y: 2}
	scaled.RecursiveRooms = []RecursiveRoom{{Origin: grid.Coord{X: 3, Y: 3}, Size: 3, Scale: 1.5}}
	if _, err := r.Add(scaled); !errors.Is(err, ErrRoomScale) {
		t.Errorf("bad scale: %v", err)
	}

	if _, err := r.Add(&Space{Parent: TopLevel}); !errors.Is(err, ErrNoGrid) {
		t.Errorf("nil grid: %v", err)
	}
}

func TestStep_Basic(t *testing.T) {
	r := NewRegistry()
	plain := mustAdd(t, r, newSpace(Mechanics{}))

	slowSpace := newSpace(Mechanics{TimeDilation: 2})
	slowSpace.Entrance = grid.Coord{X: 9, Y: 9}
	slow := mustAdd(t, r, slowSpace)

	tests := []struct {
		name    string
		id      int
		pos     vmath.Vec2
		delta   vmath.Vec2
		wantPos vmath.Vec2
		hit     bool
		exiting bool
	}{
		{"open", plain, vmath.V2(3.5, 5.5), vmath.V2(0.5, 0), vmath.V2(4, 5.5), false, false},
		{"dilated", slow, vmath.V2(3.5, 5.5), vmath.V2(0.5, 0), vmath.V2(3.75, 5.5), false, false},
		{"wall", plain, vmath.V2(1.5, 5.5), vmath.V2(-1, 0), vmath.V2(1.5, 5.5), true, false},
		{"exit cell", plain, vmath.V2(6.5, 2.5), vmath.V2(0, -1), vmath.V2(6.5, 2.5), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Step(tt.id, tt.pos, 0, tt.delta)
			if !res.Pos.Near(tt.wantPos, eps) {
				t.Errorf("pos = %v, want %v", res.Pos, tt.wantPos)
			}
			if res.HitWall != tt.hit || res.Exiting != tt.exiting {
				t.Errorf("hit=%v exiting=%v, want %v %v", res.HitWall, res.Exiting, tt.hit, tt.exiting)
			}
		})
	}
}

func TestStep_BoundaryExits(t *testing.T) {
	r := NewRegistry()
	s := newSpace(Mechanics{})
	s.Grid = grid.New(5, 5, 1)
	id := mustAdd(t, r, s)

	res := r.Step(id, vmath.V2(0.2, 2), math.Pi, vmath.V2(-0.5, 0))
	if !res.Exiting || res.Cell.Kind != grid.Wall {
		t.Errorf("leaving bounds: exiting=%v cell=%v", res.Exiting, res.Cell)
	}
}

func TestStep_ChainedEntrance(t *testing.T) {
	r := NewRegistry()
	parent := mustAdd(t, r, newSpace(Mechanics{}))

	child := newSpace(Mechanics{})
	child.Parent = parent
	child.Entrance = grid.Coord{X: 6, Y: 1}
	cid := mustAdd(t, r, child)

	res := r.Step(parent, vmath.V2(6.5, 2.5), 0, vmath.V2(0, -1))
	if res.Child != cid || res.Exiting {
		t.Errorf("child=%d exiting=%v, want %d false", res.Child, res.Exiting, cid)
	}
	// Inside the child the same cell is its own exit
	res = r.Step(cid, vmath.V2(6.5, 2.5), 0, vmath.V2(0, -1))
	if !res.Exiting || res.Child != -1 {
		t.Errorf("child exit: child=%d exiting=%v", res.Child, res.Exiting)
	}
}

func TestStep_MirrorDiagonal(t *testing.T) {
	r := NewRegistry()
	id := mustAdd(t, r, newSpace(Mechanics{Mirror: true}))

	res := r.Step(id, vmath.V2(4.2, 4.5), 0, vmath.V2(0.6, 0))
	if !res.Mirrored {
		t.Fatal("expected diagonal swap")
	}
	if want := vmath.V2(4.5, 4.8); !res.Pos.Near(want, eps) {
		t.Errorf("pos = %v, want %v", res.Pos, want)
	}
	if math.Abs(vmath.AngleDiff(res.Heading, math.Pi/2)) > eps {
		t.Errorf("heading = %v, want π/2", res.Heading)
	}

	// Staying on one side never swaps
	res = r.Step(id, vmath.V2(6.5, 4.5), 0, vmath.V2(0.5, 0))
	if res.Mirrored {
		t.Error("no crossing expected")
	}
}

func TestStep_MirrorWallReflects(t *testing.T) {
	r := NewRegistry()
	s := newSpace(Mechanics{})
	s.Grid.Set(grid.Coord{X: 3, Y: 3}, grid.Of(grid.MirrorWall))
	id := mustAdd(t, r, s)

	res := r.Step(id, vmath.V2(2.9, 3.5), 0, vmath.V2(0.2, 0))
	if !res.Reflected {
		t.Fatal("expected reflection")
	}
	if want := vmath.V2(2.9, 3.3); !res.Pos.Near(want, 1e-6) {
		t.Errorf("pos = %v, want %v", res.Pos, want)
	}
	if math.Abs(vmath.AngleDiff(res.Heading, 3*math.Pi/2)) > 1e-6 {
		t.Errorf("heading = %v, want 3π/2", res.Heading)
	}
}

func TestMirrorNormal_Deterministic(t *testing.T) {
	s := newSpace(Mechanics{})
	for _, c := range []grid.Coord{{X: 2, Y: 7}, {X: 9, Y: 3}, {X: 5, Y: 6}} {
		a, b := s.MirrorNormal(c), s.MirrorNormal(c)
		if a != b {
			t.Errorf("%v: normal changed between calls", c)
		}
		if math.Abs(a.Len()-1) > 1e-12 {
			t.Errorf("%v: normal not unit: %v", c, a)
		}
	}
	if n := s.MirrorNormal(grid.Coord{X: 4, Y: 4}); n.X != vmath.InvSqrt2 || n.Y != vmath.InvSqrt2 {
		t.Errorf("diagonal normal = %v", n)
	}
}

func TestScaleAt(t *testing.T) {
	s := newSpace(Mechanics{RecursiveScaling: true})
	s.RecursiveRooms = []RecursiveRoom{{Origin: grid.Coord{X: 2, Y: 2}, Size: 4, Scale: 0.5}}

	tests := []struct {
		pos  vmath.Vec2
		want float64
	}{
		{vmath.V2(4, 4), 1},
		{vmath.V2(5.9, 4), 1 - 0.95*0.5},
		{vmath.V2(2, 2), 0.5}, // corner clamps to Scale
		{vmath.V2(8, 8), 1},   // outside
	}
	for _, tt := range tests {
		if got := s.ScaleAt(tt.pos); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ScaleAt(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}

	s.Mechanics.RecursiveScaling = false
	if got := s.ScaleAt(vmath.V2(5.9, 4)); got != 1 {
		t.Errorf("scaling off: %v", got)
	}
}

func TestStep_RecursiveRooms(t *testing.T) {
	r := NewRegistry()
	s := newSpace(Mechanics{})
	s.Entrance = grid.Coord{X: 1, Y: 1}
	s.Start = vmath.V2(10.5, 10.5)
	s.RecursiveRooms = []RecursiveRoom{
		{Origin: grid.Coord{X: 1, Y: 1}, Size: 5, Scale: 0.5},
		{Origin: grid.Coord{X: 6, Y: 6}, Size: 4, Scale: 0.5},
	}
	for _, room := range s.RecursiveRooms {
		StampRoom(s.Grid, room)
	}
	id := mustAdd(t, r, s)

	// Boundary blocks without scaling
	res := r.Step(id, vmath.V2(6.5, 10.5), 0, vmath.V2(0, -0.8))
	if !res.HitWall || res.Cell.Kind != grid.RecursiveBoundary {
		t.Errorf("boundary without scaling: hit=%v cell=%v", res.HitWall, res.Cell)
	}

	// Portal in room 0 lands beside the portal of room 1
	res = r.Step(id, vmath.V2(2.5, 3.5), 0, vmath.V2(0.6, 0))
	if !res.Teleported {
		t.Fatal("expected teleport from room 0")
	}
	if want := vmath.V2(8.5, 7.5); !res.Pos.Near(want, eps) {
		t.Errorf("landing = %v, want %v", res.Pos, want)
	}

	// And back again
	res = r.Step(id, res.Pos, 0, vmath.V2(0, 0.6))
	if !res.Teleported {
		t.Fatal("expected teleport from room 1")
	}
	if want := vmath.V2(3.5, 2.5); !res.Pos.Near(want, eps) {
		t.Errorf("landing = %v, want %v", res.Pos, want)
	}
}

func TestStep_RecursiveBoundaryPassable(t *testing.T) {
	r := NewRegistry()
	s := newSpace(Mechanics{RecursiveScaling: true})
	s.RecursiveRooms = []RecursiveRoom{{Origin: grid.Coord{X: 6, Y: 6}, Size: 4, Scale: 0.5}}
	StampRoom(s.Grid, s.RecursiveRooms[0])
	id := mustAdd(t, r, s)

	res := r.Step(id, vmath.V2(6.5, 10.5), 0, vmath.V2(0, -0.8))
	if res.HitWall || !res.Deeper {
		t.Errorf("boundary with scaling: hit=%v deeper=%v", res.HitWall, res.Deeper)
	}
}

func TestGravityAndReality(t *testing.T) {
	s := newSpace(Mechanics{GravityFlux: true, RealityBleed: 0.5})

	tests := []struct {
		pos  vmath.Vec2
		want grid.Direction
		ok   bool
	}{
		{vmath.V2(1, 6), grid.East, true},
		{vmath.V2(6, 11), grid.North, true},
		{vmath.V2(11, 6), grid.West, true},
		{vmath.V2(6.5, 6), 0, false},
	}
	for _, tt := range tests {
		got, ok := s.GravityAt(tt.pos)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("GravityAt(%v) = %v, %v, want %v, %v", tt.pos, got, ok, tt.want, tt.ok)
		}
	}

	if got, _ := s.RealityTarget(vmath.V2(6, 6)); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("centre target = %v", got)
	}
	if got, _ := s.RealityTarget(vmath.V2(0, 0)); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("corner target = %v", got)
	}
	if _, ok := newSpace(Mechanics{}).RealityTarget(vmath.V2(0, 0)); ok {
		t.Error("no bleed should report false")
	}
}
