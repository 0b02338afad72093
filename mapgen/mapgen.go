// Package mapgen builds complete seeded worlds
package mapgen

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/distortion"
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/portal"
	"github.com/lixenwraith/tesseract/vmath"
	"github.com/lixenwraith/tesseract/world"
)

var (
	ErrPortalPlacement = errors.New("mapgen: portal pair placement failed")
	ErrDisconnected    = errors.New("mapgen: spawn region too small")
	ErrPlacement       = errors.New("mapgen: feature placement failed")
)

// minPortalSpan is the shortest accepted distance between paired endpoints (cells)
const minPortalSpan = 5

// builder carries the state of one Regenerate call
type builder struct {
	cfg *config.Config
	gen config.Generator
	rng *vmath.FastRand

	top *site
}

// Regenerate builds a complete world from seed; identical seed and
// configuration give an identical world
// Failure leaves nothing half-built: the caller keeps its current world
func Regenerate(seed uint64, cfg *config.Config) (*world.World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	b := &builder{cfg: cfg, gen: cfg.Generator, rng: vmath.NewFastRand(seed)}
	gen := b.gen

	g := grid.Bordered(gen.Width, gen.Height, gen.CellSize)
	spawn := grid.Coord{X: 1, Y: 1}
	b.scatterWalls(g, spawn)
	b.top = newSite(g, spawn)
	b.top.reserveAround(spawn)
	if n := b.top.connect(); n < gen.MinSpawnRegion {
		return nil, fmt.Errorf("%w: %d cells, need %d", ErrDisconnected, n, gen.MinSpawnRegion)
	}

	spaces, err := b.buildSpaces()
	if err != nil {
		return nil, err
	}
	cubes, err := b.buildComplexes()
	if err != nil {
		return nil, err
	}
	b.placeShiftWalls()
	portals, err := b.placePortals()
	if err != nil {
		return nil, err
	}

	w := &world.World{
		Seed:       seed,
		Grid:       g,
		Portals:    portals,
		Fields:     b.placeFields(),
		Spaces:     spaces,
		Hypercubes: cubes,
		Spawn:      g.CellCenter(spawn),
	}
	if _, n := g.Reachable(spawn); n < gen.MinSpawnRegion {
		return nil, fmt.Errorf("%w: %d cells after placement", ErrDisconnected, n)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("mapgen: seed %d: %w", seed, err)
	}
	return w, nil
}

// scatterWalls drops straight wall runs of 3 to 8 cells until the interior
// reaches the configured density, then knocks openings into long runs
func (b *builder) scatterWalls(g *grid.Grid, spawn grid.Coord) {
	area := interior(g, 0)
	if area.empty() {
		return
	}
	target := int(b.gen.WallDensity * float64((area.X1-area.X0)*(area.Y1-area.Y0)))
	placed := 0
	for tries := 0; placed < target && tries < target*4+b.gen.PlacementAttempts; tries++ {
		c := area.random(b.rng)
		d := grid.East
		if b.rng.Intn(2) == 0 {
			d = grid.South
		}
		length := b.rng.IntRange(3, 8)
		for i := 0; i < length && placed < target; i++ {
			if c.X >= area.X1 || c.Y >= area.Y1 {
				break
			}
			if g.CellAt(c).Kind == grid.Empty && c != spawn {
				g.Set(c, grid.WallCell)
				placed++
			}
			c = c.Add(d.Offset())
		}
	}

	// One in five cells of a straight interior run opens up
	for y := area.Y0; y < area.Y1; y++ {
		for x := area.X0; x < area.X1; x++ {
			c := grid.Coord{X: x, Y: y}
			if g.CellAt(c).Kind != grid.Wall {
				continue
			}
			horizontal := x > area.X0 && x < area.X1-1 &&
				g.CellAt(grid.Coord{X: x - 1, Y: y}).Kind == grid.Wall && g.CellAt(grid.Coord{X: x + 1, Y: y}).Kind == grid.Wall
			vertical := y > area.Y0 && y < area.Y1-1 &&
				g.CellAt(grid.Coord{X: x, Y: y - 1}).Kind == grid.Wall && g.CellAt(grid.Coord{X: x, Y: y + 1}).Kind == grid.Wall
			if (horizontal || vertical) && b.rng.Float64() < 0.2 {
				g.Set(c, grid.EmptyCell)
			}
		}
	}
}

// placeShiftWalls adds reality distortion, perspective shift and dimensional
// shift cells; these are decorative and skipped when nothing fits
func (b *builder) placeShiftWalls() {
	g := b.top.g
	n := 1 + g.Width*g.Height/400
	area := interior(g, 0)
	for _, k := range []grid.Kind{grid.RealityDistortionWall, grid.PerspectiveShiftWall, grid.DimensionalShift} {
		for i := 0; i < n; i++ {
			b.top.placeBlocking(b.rng, area, grid.Of(k), b.gen.PlacementAttempts)
		}
	}
}

// placePortals links pairs of open cells at least minPortalSpan apart; each
// endpoint faces an open cell so a traveler exits into free space
func (b *builder) placePortals() (*portal.Registry, error) {
	g := b.top.g
	reg := portal.NewRegistry(g.CellSize, b.cfg.Portal.Proximity)
	area := interior(g, 0)
	span := minPortalSpan
	if m := (g.Width + g.Height) / 4; m < span {
		span = m
	}

	for i := 0; i < b.gen.PortalPairs; i++ {
		ok := false
		for attempt := 0; attempt < b.gen.PlacementAttempts && !ok; attempt++ {
			a, fa, okA := b.portalEnd(area)
			c, fc, okC := b.portalEnd(area)
			if !okA || !okC || a == c || a.Add(fa.Offset()) == c || c.Add(fc.Offset()) == a {
				continue
			}
			dx, dy := float64(a.X-c.X), float64(a.Y-c.Y)
			if dx*dx+dy*dy < float64(span*span) {
				continue
			}
			if _, err := reg.AddPair(a, fa, c, fc); err != nil {
				continue
			}
			for _, e := range [][2]grid.Coord{{a, a.Add(fa.Offset())}, {c, c.Add(fc.Offset())}} {
				g.Set(e[0], grid.Of(grid.Portal))
				b.top.reserveNear(e[0])
				b.top.reserved[e[1]] = true
			}
			ok = true
		}
		if !ok {
			return nil, fmt.Errorf("%w: pair %d after %d attempts", ErrPortalPlacement, i, b.gen.PlacementAttempts)
		}
	}
	return reg, nil
}

// portalEnd picks an open, unreserved cell and a facing with open space ahead
func (b *builder) portalEnd(area rect) (grid.Coord, grid.Direction, bool) {
	g := b.top.g
	c := area.random(b.rng)
	if b.top.reserved[c] || g.CellAt(c).Kind != grid.Empty {
		return c, 0, false
	}
	d := grid.Directions[b.rng.Intn(4)]
	ahead := c.Add(d.Offset())
	if g.CellAt(ahead).Kind != grid.Empty || b.top.reserved[ahead] {
		return c, 0, false
	}
	return c, d, true
}

// placeFields scatters distortion fields over the interior, centres in cells
func (b *builder) placeFields() *distortion.Set {
	g := b.top.g
	gen := b.gen
	fields := make([]distortion.Field, 0, gen.DistortionFields)
	for i := 0; i < gen.DistortionFields; i++ {
		fields = append(fields, distortion.Field{
			Center:   vmath.V2(b.rng.Uniform(1, float64(g.Width-1)), b.rng.Uniform(1, float64(g.Height-1))),
			Radius:   b.rng.Uniform(gen.RadiusMin, gen.RadiusMax),
			Strength: b.rng.Uniform(gen.StrengthMax/4, gen.StrengthMax),
			Kind:     distortion.Kind(b.rng.Intn(3)),
		})
	}
	return distortion.NewSet(g.CellSize, fields...)
}
