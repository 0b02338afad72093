package world

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/tesseract/distortion"
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/hypercube"
	"github.com/lixenwraith/tesseract/nested"
	"github.com/lixenwraith/tesseract/portal"
	"github.com/lixenwraith/tesseract/space"
	"github.com/lixenwraith/tesseract/vmath"
)

// World is everything a march reads; never mutated once installed
type World struct {
	Seed uint64

	Grid       *grid.Grid
	Portals    *portal.Registry
	Fields     *distortion.Set
	Spaces     *nested.Registry
	Hypercubes *hypercube.Set

	Spawn        vmath.Vec2
	SpawnHeading float64
}

// Validate checks cross-structure consistency of a freshly built world
func (w *World) Validate() error {
	if w.Grid == nil {
		return fmt.Errorf("world: no grid")
	}
	if w.Portals != nil {
		if err := w.Portals.Validate(); err != nil {
			return err
		}
		for _, e := range w.Portals.Endpoints() {
			if k := w.Grid.CellAt(e.Pos).Kind; k != grid.Portal {
				return fmt.Errorf("world: portal endpoint %v on %v cell", e.Pos, k)
			}
		}
	}
	if w.Hypercubes != nil {
		if err := w.Hypercubes.Validate(); err != nil {
			return err
		}
	}
	// Every entrance cell in Normal space must lead somewhere
	for _, c := range w.Grid.Find(grid.NonEuclideanEntrance) {
		if _, ok := w.Spaces.ByEntrance(nested.TopLevel, c); !ok {
			return fmt.Errorf("world: entrance %v has no nested space", c)
		}
	}
	for _, c := range w.Grid.Find(grid.HypercubeEntrance) {
		if _, ok := w.Hypercubes.ByEntrance(c); !ok {
			return fmt.Errorf("world: entrance %v has no complex", c)
		}
	}
	if w.Grid.IsOccupied(w.Spawn.X, w.Spawn.Y) {
		return fmt.Errorf("world: spawn %v is blocked", w.Spawn)
	}
	return nil
}

// GridFor returns the grid authoritative under ctx, nil for an unknown id
func (w *World) GridFor(ctx space.Context) *grid.Grid {
	switch ctx.Kind {
	case space.Nested:
		if s := w.Spaces.Get(ctx.Space); s != nil {
			return s.Grid
		}
		return nil
	case space.Hypercube:
		if c := w.Hypercubes.Get(ctx.Complex); c != nil {
			if r := c.Room(ctx.Room); r != nil {
				return r.Grid
			}
		}
		return nil
	}
	return w.Grid
}

// Store publishes whole worlds; readers never observe a partial replacement
type Store struct {
	current atomic.Pointer[World]
	version atomic.Uint64
}

func NewStore(w *World) *Store {
	s := &Store{}
	if w != nil {
		s.Swap(w)
	}
	return s
}

// Load returns the installed world, nil before the first Swap
func (s *Store) Load() *World {
	return s.current.Load()
}

// Swap installs w and returns the previous world
func (s *Store) Swap(w *World) *World {
	old := s.current.Swap(w)
	s.version.Add(1)
	return old
}

// Version counts installs, letting holders of a snapshot detect staleness
func (s *Store) Version() uint64 {
	return s.version.Load()
}
