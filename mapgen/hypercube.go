package mapgen

import (
	"fmt"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/hypercube"
)

// roomFeatures are the special cells scattered through hypercube rooms
var roomFeatures = [...]grid.Kind{
	grid.RealityDistortionWall,
	grid.PerspectiveShiftWall,
	grid.RealityFracture,
	grid.DimensionalShift,
}

// buildComplexes places the hypercube complexes and joins consecutive ones
// with a two-way 4D link
func (b *builder) buildComplexes() (*hypercube.Set, error) {
	complexes := make([]*hypercube.Complex, 0, b.gen.Hypercubes)
	for k := 0; k < b.gen.Hypercubes; k++ {
		door, exit, ok := b.top.placeDoor(b.rng, interior(b.top.g, 0), grid.Of(grid.HypercubeEntrance), b.gen.PlacementAttempts)
		if !ok {
			return nil, fmt.Errorf("%w: entrance of complex %d", ErrPlacement, k)
		}

		rooms := make([]*hypercube.Room, b.gen.HypercubeRooms)
		for i := range rooms {
			r, err := b.newRoom(i, len(rooms))
			if err != nil {
				return nil, fmt.Errorf("complex %d: %w", k, err)
			}
			rooms[i] = r
		}
		c, err := hypercube.NewComplex(k, door, rooms)
		if err != nil {
			return nil, fmt.Errorf("mapgen: complex %d: %w", k, err)
		}
		c.ExitAnchor = b.top.g.CellCenter(door.Add(exit.Offset()))
		c.ExitNormal = exit
		complexes = append(complexes, c)
	}

	for k := 0; k+1 < len(complexes); k++ {
		if !b.linkFourD(complexes, k, k+1) {
			return nil, fmt.Errorf("%w: 4D link %d-%d", ErrPlacement, k, k+1)
		}
	}
	if len(complexes) > 2 {
		// Close the ring when it cannot double back on the first link
		b.linkFourD(complexes, len(complexes)-1, 0)
	}

	set, err := hypercube.NewSet(complexes...)
	if err != nil {
		return nil, fmt.Errorf("mapgen: %w", err)
	}
	set.Inset = b.cfg.Hypercube.Inset
	return set, nil
}

// newRoom builds vertex i of an n-room complex: doorways on every face with a
// sibling, a few special cells, an optional recursive portal pair and, in
// room 0, the exit back to Normal space
// The ring just inside the walls stays open so crossings always land
func (b *builder) newRoom(i, n int) (*hypercube.Room, error) {
	size := b.gen.RoomSize
	g := grid.Bordered(size, size, b.gen.CellSize)
	center := grid.Coord{X: size / 2, Y: size / 2}

	for _, d := range grid.Directions {
		if bit := 1 << uint(d); bit < n {
			g.Set(faceMid(d, size), grid.RoomLink(i^bit))
		}
	}

	s := newSite(g, center)
	area := interior(g, 1)
	if area.empty() {
		area = interior(g, 0)
	}

	r := &hypercube.Room{
		Grid:     g,
		Position: grid.Coord{X: (i % 4) * size, Y: (i / 4) * size},
		Start:    g.CellCenter(center),
	}
	if i == 0 {
		if _, ok := s.placeBlocking(b.rng, area, grid.Of(grid.HypercubeEntrance), b.gen.PlacementAttempts); !ok {
			return nil, fmt.Errorf("%w: exit of room 0", ErrPlacement)
		}
	}

	features := b.rng.IntRange(1, 3)
	for f := 0; f < features; f++ {
		k := roomFeatures[b.rng.Intn(len(roomFeatures))]
		s.placeBlocking(b.rng, area, grid.Of(k), b.gen.PlacementAttempts)
	}

	if b.rng.Intn(2) == 0 {
		pa, okA := s.placeBlocking(b.rng, area, grid.Of(grid.RecursivePortal), b.gen.PlacementAttempts)
		if okA {
			if pb, okB := s.placeBlocking(b.rng, area, grid.Of(grid.RecursivePortal), b.gen.PlacementAttempts); okB {
				r.Portals = append(r.Portals, hypercube.PortalPair{A: pa, B: pb})
			} else {
				g.Set(pa, grid.EmptyCell)
			}
		}
	}
	return r, nil
}

// linkFourD joins a random free face of a room in complex a to a random free
// face of a room in complex c, both ways, with a random rotation
func (b *builder) linkFourD(complexes []*hypercube.Complex, a, c int) bool {
	ca, cc := complexes[a], complexes[c]
	for attempt := 0; attempt < b.gen.PlacementAttempts; attempt++ {
		ra := b.rng.Intn(len(ca.Rooms))
		rc := b.rng.Intn(len(cc.Rooms))
		face := grid.Directions[b.rng.Intn(4)]
		rot := b.rng.Intn(4)
		landing := face.Opposite().Rotate(rot)

		from, to := ca.Rooms[ra], cc.Rooms[rc]
		if _, used := from.FourD[face]; used {
			continue
		}
		if _, used := to.FourD[landing]; used {
			continue
		}

		from.FourD[face] = hypercube.Link{Complex: c, Room: rc, Face: landing, Rotation: rot}
		back := landing.Opposite().QuarterTurnsTo(face)
		to.FourD[landing] = hypercube.Link{Complex: a, Room: ra, Face: face, Rotation: back}

		from.Grid.Set(faceMid(face, from.Size()), grid.FourDLink(face))
		to.Grid.Set(faceMid(landing, to.Size()), grid.FourDLink(landing))
		return true
	}
	return false
}
