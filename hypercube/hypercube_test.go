package hypercube

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/vmath"
)

func newRooms(n, size int) []*Room {
	rooms := make([]*Room, n)
	for i := range rooms {
		rooms[i] = &Room{
			Grid:     grid.Bordered(size, size, 1),
			Position: grid.Coord{X: (i % 4) * size, Y: (i / 4) * size},
			Start:    vmath.V2(float64(size)/2, float64(size)/2),
		}
	}
	return rooms
}

func mustComplex(t *testing.T, n int, entrance grid.Coord) *Complex {
	t.Helper()
	c, err := NewComplex(0, entrance, newRooms(n, 10))
	if err != nil {
		t.Fatalf("NewComplex: %v", err)
	}
	return c
}

func TestAdjacencyLaw(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16} {
		c := mustComplex(t, n, grid.Coord{})
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				if got, want := c.connected(i, j), Adjacent(i, j); got != want {
					t.Errorf("n=%d rooms %d,%d: connected=%v, popcount rule=%v", n, i, j, got, want)
				}
			}
		}
	}
}

func TestAdjacent(t *testing.T) {
	tests := []struct {
		i, j int
		want bool
	}{
		{0, 1, true},
		{0, 8, true},
		{5, 7, true},
		{0, 3, false},
		{6, 9, false},
		{4, 4, false},
	}
	for _, tt := range tests {
		if got := Adjacent(tt.i, tt.j); got != tt.want {
			t.Errorf("Adjacent(%d, %d) = %v", tt.i, tt.j, got)
		}
	}
}

func TestValidate_RejectsTampering(t *testing.T) {
	c := mustComplex(t, 16, grid.Coord{})
	c.Rooms[0].Connections[grid.North] = 3
	if err := c.Validate(); !errors.Is(err, ErrAdjacency) {
		t.Errorf("non-adjacent link: %v", err)
	}

	c = mustComplex(t, 8, grid.Coord{})
	delete(c.Rooms[2].Connections, grid.East)
	if err := c.Validate(); !errors.Is(err, ErrAdjacency) {
		t.Errorf("missing link: %v", err)
	}
}

func TestNewComplex_Errors(t *testing.T) {
	if _, err := NewComplex(0, grid.Coord{}, newRooms(3, 8)); !errors.Is(err, ErrRoomCount) {
		t.Errorf("3 rooms: %v", err)
	}
	if _, err := NewComplex(0, grid.Coord{}, newRooms(32, 8)); !errors.Is(err, ErrRoomCount) {
		t.Errorf("32 rooms: %v", err)
	}
	rooms := newRooms(2, 8)
	rooms[1].Grid = grid.New(8, 6, 1)
	if _, err := NewComplex(0, grid.Coord{}, rooms); !errors.Is(err, ErrRoomShape) {
		t.Errorf("non-square: %v", err)
	}
}

func TestMapCoordAcrossFace(t *testing.T) {
	tests := []struct {
		name     string
		local    vmath.Vec2
		face     grid.Direction
		rotation int
		want     vmath.Vec2
	}{
		{"north", vmath.V2(3.2, -0.1), grid.North, 0, vmath.V2(3.2, 8.5)},
		{"east", vmath.V2(10.1, 4), grid.East, 0, vmath.V2(1.5, 4)},
		{"south", vmath.V2(3, 10.2), grid.South, 0, vmath.V2(3, 1.5)},
		{"west", vmath.V2(-0.1, 6), grid.West, 0, vmath.V2(8.5, 6)},
		{"clamped", vmath.V2(0.2, -0.1), grid.North, 0, vmath.V2(1.5, 8.5)},
		{"north rotated", vmath.V2(3.2, -0.1), grid.North, 1, vmath.V2(1.5, 3.2)},
		{"north half turn", vmath.V2(3.2, -0.1), grid.North, 2, vmath.V2(6.8, 1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapCoordAcrossFace(tt.local, tt.face, 10, tt.rotation, 1.5)
			if !got.Near(tt.want, 1e-9) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaceOf(t *testing.T) {
	tests := []struct {
		c    grid.Coord
		want grid.Direction
	}{
		{grid.Coord{X: 4, Y: 0}, grid.North},
		{grid.Coord{X: 9, Y: 4}, grid.East},
		{grid.Coord{X: 4, Y: 9}, grid.South},
		{grid.Coord{X: 0, Y: 4}, grid.West},
		{grid.Coord{X: 9, Y: 0}, grid.North},
		{grid.Coord{X: 7, Y: 4}, grid.East}, // nearest
		{grid.Coord{X: 1, Y: 6}, grid.West},
	}
	for _, tt := range tests {
		if got := FaceOf(tt.c, 10); got != tt.want {
			t.Errorf("FaceOf(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestFaceOfPoint(t *testing.T) {
	tests := []struct {
		p    vmath.Vec2
		want grid.Direction
		out  bool
	}{
		{vmath.V2(4, -0.1), grid.North, true},
		{vmath.V2(10, 4), grid.East, true},
		{vmath.V2(4, 10.5), grid.South, true},
		{vmath.V2(-0.01, 4), grid.West, true},
		{vmath.V2(10.5, -1), grid.North, true},
		{vmath.V2(0, 0), 0, false},
		{vmath.V2(9.99, 5), 0, false},
	}
	for _, tt := range tests {
		got, out := FaceOfPoint(tt.p, 10)
		if out != tt.out || (out && got != tt.want) {
			t.Errorf("FaceOfPoint(%v) = %v %v, want %v %v", tt.p, got, out, tt.want, tt.out)
		}
	}
}

func twoComplexes(t *testing.T) *Set {
	t.Helper()
	a, err := NewComplex(0, grid.Coord{X: 3, Y: 3}, newRooms(16, 10))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewComplex(1, grid.Coord{X: 12, Y: 3}, newRooms(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	// a.room5 east → b.room2 with a quarter turn, landing on the north face
	a.Rooms[5].FourD[grid.East] = Link{Complex: 1, Room: 2, Face: grid.West.Rotate(1), Rotation: 1}
	s, err := NewSet(a, b)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func TestResolveConnection(t *testing.T) {
	s := twoComplexes(t)

	l, ok := s.ResolveConnection(0, 5, grid.East)
	if !ok || l.Complex != 1 || l.Room != 2 || l.Rotation != 1 {
		t.Errorf("4D precedence: %+v %v", l, ok)
	}

	l, ok = s.ResolveConnection(0, 5, grid.North)
	if !ok || l.Complex != 0 || l.Room != 4 || l.Face != grid.South || l.Rotation != 0 {
		t.Errorf("sibling: %+v %v", l, ok)
	}

	// Complex b has 3 address bits; its west face leads nowhere
	if _, ok := s.ResolveConnection(1, 0, grid.West); ok {
		t.Error("unwired face should not resolve")
	}
	if _, ok := s.ResolveConnection(7, 0, grid.West); ok {
		t.Error("unknown complex should not resolve")
	}
}

func TestCross(t *testing.T) {
	s := twoComplexes(t)

	c, ok := s.Cross(0, 5, grid.East, vmath.V2(10.05, 3), 0)
	if !ok || !c.FourD {
		t.Fatalf("expected 4D crossing, got %+v %v", c, ok)
	}
	// West face placement (1.5, 3) in an 8-room rotated a quarter turn around (4, 4)
	if want := vmath.V2(5, 1.5); !c.Pos.Near(want, 1e-9) {
		t.Errorf("pos = %v, want %v", c.Pos, want)
	}
	if math.Abs(vmath.AngleDiff(c.Heading, math.Pi/2)) > 1e-12 {
		t.Errorf("heading = %v, want π/2", c.Heading)
	}

	c, ok = s.Cross(0, 5, grid.West, vmath.V2(-0.05, 6), math.Pi)
	if !ok || c.FourD || c.Room != 5^8 {
		t.Errorf("sibling crossing: %+v %v", c, ok)
	}
	if want := vmath.V2(8.5, 6); !c.Pos.Near(want, 1e-9) {
		t.Errorf("sibling pos = %v, want %v", c.Pos, want)
	}
}

func TestSetValidate_Links(t *testing.T) {
	a, _ := NewComplex(0, grid.Coord{X: 1, Y: 1}, newRooms(2, 8))
	a.Rooms[0].FourD[grid.East] = Link{Complex: 4, Room: 0, Face: grid.West}
	if _, err := NewSet(a); !errors.Is(err, ErrLink) {
		t.Errorf("missing target: %v", err)
	}

	a.Rooms[0].FourD[grid.East] = Link{Complex: 0, Room: 1, Face: grid.North, Rotation: 0}
	if _, err := NewSet(a); !errors.Is(err, ErrLink) {
		t.Errorf("face mismatch: %v", err)
	}

	a.Rooms[0].FourD[grid.East] = Link{Complex: 0, Room: 1, Face: grid.West, Rotation: 0}
	if _, err := NewSet(a); err != nil {
		t.Errorf("valid self link: %v", err)
	}
}

func TestChaos(t *testing.T) {
	c := mustComplex(t, 16, grid.Coord{})
	cell := grid.Coord{X: 4, Y: 6}

	if _, ok := c.Chaos(3, cell, 1, 0); ok {
		t.Error("zero probability fired")
	}

	hits := 0
	for salt := uint64(0); salt < 200; salt++ {
		r1, ok1 := c.Chaos(3, cell, salt, 1)
		r2, ok2 := c.Chaos(3, cell, salt, 1)
		if !ok1 || r1 != r2 || ok1 != ok2 {
			t.Fatalf("salt %d: not deterministic (%d,%v) (%d,%v)", salt, r1, ok1, r2, ok2)
		}
		if r1 == 3 || r1 < 0 || r1 >= 16 {
			t.Fatalf("salt %d: target %d", salt, r1)
		}
		if _, ok := c.Chaos(3, cell, salt, 0.3); ok {
			hits++
		}
	}
	// 0.3 of 200 rolls, loose bounds
	if hits < 30 || hits > 90 {
		t.Errorf("chaos hits = %d of 200 at p=0.3", hits)
	}
}

func TestLayoutAndPartner(t *testing.T) {
	c := mustComplex(t, 8, grid.Coord{})
	g := c.Layout()
	if g.Width != 40 || g.Height != 20 {
		t.Errorf("layout %dx%d, want 40x20", g.Width, g.Height)
	}

	r := c.Rooms[0]
	r.Portals = []PortalPair{{A: grid.Coord{X: 2, Y: 2}, B: grid.Coord{X: 7, Y: 6}}}
	if p, ok := r.Partner(grid.Coord{X: 7, Y: 6}); !ok || p != (grid.Coord{X: 2, Y: 2}) {
		t.Errorf("Partner = %v, %v", p, ok)
	}
	if _, ok := r.Partner(grid.Coord{X: 3, Y: 3}); ok {
		t.Error("no partner expected")
	}
}
