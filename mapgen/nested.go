package mapgen

import (
	"fmt"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/maze"
	"github.com/lixenwraith/tesseract/nested"
)

// Nested space interiors rotate through three variants
const (
	variantMaze = iota
	variantRecursive
	variantMirror
	variantCount
)

// buildSpaces places the nested spaces; with three or more, the last one is
// entered from inside the first
func (b *builder) buildSpaces() (*nested.Registry, error) {
	reg := nested.NewRegistry()
	sites := make([]*site, 0, b.gen.NestedSpaces)

	for i := 0; i < b.gen.NestedSpaces; i++ {
		parent, host := nested.TopLevel, b.top
		if i >= 2 && i == b.gen.NestedSpaces-1 {
			parent, host = 0, sites[0]
		}

		door, exit, ok := host.placeDoor(b.rng, interior(host.g, 0), grid.Of(grid.NonEuclideanEntrance), b.gen.PlacementAttempts)
		if !ok {
			return nil, fmt.Errorf("%w: entrance of nested space %d", ErrPlacement, i)
		}

		s, inner := b.newSpace(i % variantCount)
		s.Entrance = door
		s.Parent = parent
		s.ExitAnchor = host.g.CellCenter(door.Add(exit.Offset()))
		s.ExitNormal = exit
		if _, err := reg.Add(s); err != nil {
			return nil, fmt.Errorf("mapgen: nested space %d: %w", i, err)
		}
		sites = append(sites, inner)
	}
	return reg, nil
}

// newSpace builds the grid and mechanics of one nested space
// The exit is an entrance cell in the middle of a random border side with the
// start position just inside it
func (b *builder) newSpace(variant int) (*nested.Space, *site) {
	n := b.gen.NestedSize
	g := grid.Bordered(n, n, b.gen.CellSize)

	side := grid.Directions[b.rng.Intn(4)]
	exit := faceMid(side, n)
	start := exit.Add(side.Opposite().Offset())

	s := &nested.Space{Grid: g, Start: g.CellCenter(start), Salt: b.rng.Next()}
	switch variant {
	case variantMaze:
		maze.Carve(g, maze.Config{Width: n, Height: n, Braiding: 0.4}, b.rng)
		s.Mechanics = nested.Mechanics{TimeDilation: 1.5, RealityBleed: 0.6}
	case variantRecursive:
		s.Mechanics = nested.Mechanics{RecursiveScaling: true, GravityFlux: true, RealityBleed: 0.75}
	case variantMirror:
		s.Mechanics = nested.Mechanics{Mirror: true, PerspectiveInversion: true}
	}

	g.Set(exit, grid.Of(grid.NonEuclideanEntrance))
	inner := newSite(g, start)
	inner.reserved[exit] = true
	inner.connect()

	switch variant {
	case variantRecursive:
		b.stampRecursiveRooms(s)
	case variantMirror:
		for i := 0; i < n/2; i++ {
			inner.placeBlocking(b.rng, interior(g, 1), grid.Of(grid.MirrorWall), b.gen.PlacementAttempts)
		}
	}
	return s, inner
}

// stampRecursiveRooms carves two recursive rooms into opposite quadrants,
// keeping the wall ring and the row inside it clear
func (b *builder) stampRecursiveRooms(s *nested.Space) {
	n := s.Grid.Width
	size := n / 3
	if size < 3 {
		return
	}
	for i, origin := range []grid.Coord{{X: 2, Y: 2}, {X: n - 2 - size, Y: n - 2 - size}} {
		if origin.X+size > n-2 || (i == 1 && origin.X < 2+size) {
			continue
		}
		r := nested.RecursiveRoom{Origin: origin, Size: size, Scale: 0.5 / float64(i+1)}
		if overlaps(r, s.Start.X/s.Grid.CellSize, s.Start.Y/s.Grid.CellSize) {
			continue
		}
		nested.StampRoom(s.Grid, r)
		s.RecursiveRooms = append(s.RecursiveRooms, r)
	}
}

func overlaps(r nested.RecursiveRoom, x, y float64) bool {
	return x >= float64(r.Origin.X) && x < float64(r.Origin.X+r.Size) &&
		y >= float64(r.Origin.Y) && y < float64(r.Origin.Y+r.Size)
}
