package march

import (
	"math"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/hypercube"
	"github.com/lixenwraith/tesseract/nested"
	"github.com/lixenwraith/tesseract/portal"
	"github.com/lixenwraith/tesseract/space"
	"github.com/lixenwraith/tesseract/vmath"
	"github.com/lixenwraith/tesseract/world"
)

// Marcher advances rays and travelers through one World
// It holds no mutable state; a single value serves any number of goroutines
type Marcher struct {
	World *world.World
	Opt   Options
}

func New(w *world.World, opt Options) *Marcher {
	return &Marcher{World: w, Opt: opt}
}

// March advances from origin along heading under ctx until a terminal cell,
// an entrance or exit, a guard, or maxDistance
// Room-to-room and 4D crossings inside a complex are followed inline;
// entering or leaving a space returns Switch
func (m *Marcher) March(origin vmath.Vec2, heading float64, ctx space.Context, maxDistance float64) Result {
	return m.walk(origin, heading, ctx, maxDistance, walkParams{distort: true, lock: -1})
}

// Walk is March with an observer called after every completed step
// Returning false from fn ends the march as Exhausted at the current position
func (m *Marcher) Walk(origin vmath.Vec2, heading float64, ctx space.Context, maxDistance float64, fn func(Sample) bool) Result {
	return m.walk(origin, heading, ctx, maxDistance, walkParams{distort: true, observe: fn, lock: -1})
}

// Trace follows Switch results, re-marching under the new context with the
// remaining budget, up to Opt.MaxSwitches; distances and counters accumulate
func (m *Marcher) Trace(origin vmath.Vec2, heading float64, ctx space.Context, maxDistance float64) Result {
	var acc Result
	total := 0.0
	for {
		r := m.March(origin, heading, ctx, maxDistance-total)
		total += r.Distance
		acc.PortalCrossings += r.PortalCrossings
		acc.RoomCrossings += r.RoomCrossings
		acc.FourD += r.FourD
		acc.Reflections += r.Reflections
		acc.Steps += r.Steps

		r.Distance = total
		r.PortalCrossings = acc.PortalCrossings
		r.RoomCrossings = acc.RoomCrossings
		r.FourD = acc.FourD
		r.Reflections = acc.Reflections
		r.Steps = acc.Steps
		r.Switches = acc.Switches

		if r.Outcome != Switch {
			return r
		}
		acc.Switches++
		r.Switches = acc.Switches
		if acc.Switches > m.Opt.MaxSwitches {
			r.Outcome = Loop
			r.Artifact = ArtifactSwitchLimit
			return r
		}
		origin, heading, ctx = r.Position, r.Heading, r.Context
	}
}

// FisheyeCorrect projects a ray distance onto the view direction
func FisheyeCorrect(distance, sampleHeading, viewHeading float64) float64 {
	return distance * math.Cos(vmath.AngleDiff(sampleHeading, viewHeading))
}

type walkParams struct {
	distort bool
	observe func(Sample) bool
	// lock is an endpoint barred from the start, -1 for none
	lock int
}

// walker is the state of one march call
type walker struct {
	w   *world.World
	opt Options

	ctx   space.Context
	g     *grid.Grid
	space *nested.Space
	room  *hypercube.Room

	pos      vmath.Vec2
	heading  float64
	dir      vmath.Vec2
	distance float64
	segment  int
	// segStart is the distance at which the current segment began
	segStart float64

	guard portal.Guard
	res   Result
}

func (m *Marcher) walk(origin vmath.Vec2, heading float64, ctx space.Context, maxDistance float64, p walkParams) Result {
	wk := walker{
		w:       m.World,
		opt:     m.Opt,
		pos:     origin,
		heading: vmath.WrapAngle(heading),
	}
	wk.dir = vmath.FromAngle(wk.heading)
	wk.res.LastPortal = -1
	if p.lock >= 0 {
		wk.guard.Mark(p.lock)
	}
	if !wk.bind(ctx) {
		wk.res.Cell = grid.WallCell
		wk.finish(Hit, ArtifactUnknownContext)
		return wk.res
	}

	// The origin itself may already be terminal
	if c := wk.g.ToCell(origin.X, origin.Y); !wk.passable(c) {
		if wk.touch(c, origin, vmath.AxisNone, 1, 1, origin) {
			return wk.res
		}
	}

	topCell := m.World.Grid.CellSize
	distortEvery := wk.opt.DistortionInterval * topCell
	portalEvery := wk.opt.PortalInterval * topCell
	nextDistort, nextPortal := distortEvery, portalEvery

	for wk.distance < maxDistance {
		cs := wk.g.CellSize
		step := math.Min(wk.opt.BaseStep+wk.opt.StepGrowth*wk.distance/cs, wk.opt.MaxStep) * cs
		if wk.space != nil {
			step *= wk.space.ScaleAt(wk.pos)
		}
		if rem := maxDistance - wk.distance; step > rem {
			step = rem
		}
		if step <= 0 {
			break
		}
		wk.res.Steps++
		if wk.advance(step) {
			return wk.res
		}

		if wk.ctx.Kind == space.Normal {
			if p.distort && wk.w.Fields != nil && wk.distance >= nextDistort {
				wk.turn(wk.heading + wk.w.Fields.AngleOffset(wk.pos, wk.heading, wk.distance))
				for nextDistort <= wk.distance {
					nextDistort += distortEvery
				}
			}
			if wk.w.Portals != nil && wk.distance >= nextPortal {
				if c, ok := wk.w.Portals.TryCross(wk.pos, wk.heading, wk.dir, &wk.guard); ok {
					wk.pos = c.Pos
					wk.turn(c.Heading)
					wk.redirected()
					wk.res.PortalCrossings++
					wk.res.LastPortal = c.To
					if lc := wk.g.ToCell(wk.pos.X, wk.pos.Y); !wk.passable(lc) {
						wk.res.Cell = wk.g.CellAt(lc)
						wk.res.Coord = lc
						wk.res.Edge = vmath.AxisNone
						wk.finish(Hit, ArtifactBlockedLanding)
						return wk.res
					}
				}
				for nextPortal <= wk.distance {
					nextPortal += portalEvery
				}
			}
		}

		if p.observe != nil && !p.observe(Sample{Distance: wk.distance, Position: wk.pos, Heading: wk.heading, Context: wk.ctx, Segment: wk.segment}) {
			break
		}
	}

	wk.res.Cell = grid.EmptyCell
	wk.finish(Exhausted, "")
	return wk.res
}

// bind makes ctx the active frame
func (wk *walker) bind(ctx space.Context) bool {
	wk.space, wk.room = nil, nil
	switch ctx.Kind {
	case space.Nested:
		wk.space = wk.w.Spaces.Get(ctx.Space)
		if wk.space == nil {
			return false
		}
		wk.g = wk.space.Grid
	case space.Hypercube:
		c := wk.w.Hypercubes.Get(ctx.Complex)
		if c == nil {
			return false
		}
		wk.room = c.Room(ctx.Room)
		if wk.room == nil {
			return false
		}
		wk.g = wk.room.Grid
	default:
		wk.g = wk.w.Grid
	}
	wk.ctx = ctx
	return wk.g != nil
}

// redirected starts a new segment after a position jump or reflection
func (wk *walker) redirected() {
	wk.segment++
	wk.segStart = wk.distance
}

func (wk *walker) turn(heading float64) {
	wk.heading = vmath.WrapAngle(heading)
	wk.dir = vmath.FromAngle(wk.heading)
}

// passable reports whether a ray continues through c in the active frame
func (wk *walker) passable(c grid.Coord) bool {
	if !wk.g.InBounds(c) {
		return false
	}
	cell := wk.g.CellAt(c)
	if cell.Traversable() {
		return true
	}
	if wk.space != nil && cell.Kind == grid.RecursiveBoundary && wk.space.Mechanics.RecursiveScaling {
		return wk.space.RoomAt(wk.g.CellCenter(c)) >= 0
	}
	return false
}

// advance moves one step, stopping at the first cell the ray cannot pass
// Returns true when the march is over
func (wk *walker) advance(step float64) bool {
	from := wk.pos
	to := from.Add(wk.dir.Scale(step))
	cs := wk.g.CellSize

	tr := vmath.NewGridTraverser(from.X/cs, from.Y/cs, to.X/cs, to.Y/cs)
	tr.Next()
	for tr.Next() {
		x, y := tr.Pos()
		c := grid.Coord{X: x, Y: y}
		if wk.passable(c) {
			continue
		}
		t := tr.Entry()
		at := from.Add(wk.dir.Scale(step * t))
		wk.distance += step * t
		wk.pos = at
		return wk.touch(c, at, tr.Axis(), tr.StepX(), tr.StepY(), from)
	}
	wk.pos = to
	wk.distance += step
	return false
}

// touch resolves the ray meeting cell c at point at
// Returns false when the ray was redirected and keeps going
func (wk *walker) touch(c grid.Coord, at vmath.Vec2, axis vmath.Axis, sx, sy int, from vmath.Vec2) bool {
	cell := wk.g.CellAt(c)
	wk.res.Cell = cell
	wk.res.Coord = c
	wk.res.Edge = axis
	wk.res.SurfaceOffset = surfaceOffset(at, wk.g.CellSize, axis, sx, sy)

	switch wk.ctx.Kind {
	case space.Nested:
		return wk.touchNested(c, cell, at, axis, sx, sy, from)
	case space.Hypercube:
		return wk.touchRoom(c, cell, at)
	}
	return wk.touchNormal(c, cell)
}

func (wk *walker) touchNormal(c grid.Coord, cell grid.Cell) bool {
	switch cell.Kind {
	case grid.NonEuclideanEntrance:
		if id, ok := wk.w.Spaces.ByEntrance(nested.TopLevel, c); ok {
			if next, err := wk.ctx.EnterNested(id); err == nil {
				start, _ := wk.w.Spaces.Enter(id)
				return wk.switchTo(next, start, ArtifactNestedEntrance)
			}
		}
	case grid.HypercubeEntrance:
		if id, ok := wk.w.Hypercubes.ByEntrance(c); ok {
			if next, err := wk.ctx.EnterHypercube(id); err == nil {
				start, _ := wk.w.Hypercubes.Enter(id)
				return wk.switchTo(next, start, ArtifactHypercubeEntry)
			}
		}
	}
	return wk.finish(Hit, "")
}

func (wk *walker) touchNested(c grid.Coord, cell grid.Cell, at vmath.Vec2, axis vmath.Axis, sx, sy int, from vmath.Vec2) bool {
	s := wk.space
	if !s.Grid.InBounds(c) {
		return wk.exitNested()
	}
	switch cell.Kind {
	case grid.NonEuclideanEntrance:
		if child, ok := wk.w.Spaces.ByEntrance(s.ID, c); ok {
			if next, err := wk.ctx.EnterNested(child); err == nil {
				start, _ := wk.w.Spaces.Enter(child)
				return wk.switchTo(next, start, ArtifactNestedEntrance)
			}
		}
		return wk.exitNested()
	case grid.MirrorWall:
		if axis != vmath.AxisNone {
			return wk.reflect(c, at, axis, sx, sy, from)
		}
	}
	return wk.finish(Hit, "")
}

func (wk *walker) exitNested() bool {
	s := wk.space
	next, err := wk.ctx.ExitNested(s.Parent)
	if err != nil {
		return wk.finish(Hit, "")
	}
	parentCell := wk.w.Grid.CellSize
	if p := wk.w.Spaces.Get(s.Parent); p != nil {
		parentCell = p.Grid.CellSize
	}
	return wk.switchTo(next, wk.w.Spaces.ExitPoint(s.ID, parentCell), ArtifactNestedExit)
}

// reflect bounces the ray off a mirror cell and backs it into open space
// A hashed fragment normal that would send the ray into the crossed edge
// falls back to the edge itself
func (wk *walker) reflect(c grid.Coord, at vmath.Vec2, axis vmath.Axis, sx, sy int, from vmath.Vec2) bool {
	if wk.res.Reflections >= wk.opt.MaxReflections {
		return wk.finish(Loop, ArtifactMirrorLoop)
	}
	d := wk.dir
	r := d.Reflect(wk.space.MirrorNormal(c))
	switch axis {
	case vmath.AxisX:
		if r.X*float64(sx) > 0 {
			r = vmath.Vec2{X: -d.X, Y: d.Y}
		}
	case vmath.AxisY:
		if r.Y*float64(sy) > 0 {
			r = vmath.Vec2{X: d.X, Y: -d.Y}
		}
	}

	back := math.Min(wk.opt.MirrorPushOff*wk.g.CellSize, at.Sub(from).Len())
	wk.pos = at.Sub(d.Scale(back))
	wk.turn(r.Angle())
	wk.redirected()
	wk.res.Reflections++
	return false
}

func (wk *walker) touchRoom(c grid.Coord, cell grid.Cell, at vmath.Vec2) bool {
	size := wk.room.Size()
	switch {
	case !wk.g.InBounds(c):
		return wk.crossFace(outsideFace(c, size), at)
	case cell.Kind == grid.RoomConnection:
		return wk.crossFace(hypercube.FaceOf(c, size), at)
	case cell.Kind == grid.FourDConnection:
		return wk.crossFace(cell.Face(), at)
	case cell.Kind == grid.HypercubeEntrance:
		next, err := wk.ctx.ExitHypercube()
		if err != nil {
			break
		}
		exit := wk.w.Hypercubes.ExitPoint(wk.ctx.Complex, wk.opt.ExitNudge*wk.w.Grid.CellSize)
		return wk.switchTo(next, exit, ArtifactHypercubeExit)
	}
	return wk.finish(Hit, "")
}

// crossFace follows the connection on face into the next room
func (wk *walker) crossFace(face grid.Direction, at vmath.Vec2) bool {
	cr, ok := wk.w.Hypercubes.Cross(wk.ctx.Complex, wk.ctx.Room, face, at, wk.heading)
	if !ok {
		return wk.finish(Hit, "")
	}
	if cr.FourD {
		if wk.res.FourD >= wk.opt.MaxFourD {
			return wk.finish(Loop, ArtifactFourDLoop)
		}
		wk.res.FourD++
	}
	next, err := wk.ctx.MoveRoom(cr.Complex, cr.Room)
	if err != nil || !wk.bind(next) {
		return wk.finish(Hit, "")
	}
	wk.pos = cr.Pos
	wk.turn(cr.Heading)
	wk.redirected()
	wk.res.RoomCrossings++

	if c := wk.g.ToCell(wk.pos.X, wk.pos.Y); !wk.g.CellAt(c).Traversable() {
		wk.res.Cell = wk.g.CellAt(c)
		wk.res.Coord = c
		wk.res.Edge = vmath.AxisNone
		return wk.finish(Hit, ArtifactBlockedLanding)
	}
	return false
}

// outsideFace names the face a coordinate beyond a size×size room lies past
func outsideFace(c grid.Coord, size int) grid.Direction {
	switch {
	case c.Y < 0:
		return grid.North
	case c.X >= size:
		return grid.East
	case c.Y >= size:
		return grid.South
	case c.X < 0:
		return grid.West
	}
	return hypercube.FaceOf(c, size)
}

func (wk *walker) switchTo(next space.Context, pos vmath.Vec2, artifact string) bool {
	wk.res.Outcome = Switch
	wk.res.Distance = wk.distance
	wk.res.SegmentDistance = wk.distance - wk.segStart
	wk.res.Context = next
	wk.res.Position = pos
	wk.res.Heading = wk.heading
	wk.res.Artifact = artifact
	return true
}

func (wk *walker) finish(o Outcome, artifact string) bool {
	wk.res.Outcome = o
	wk.res.Distance = wk.distance
	wk.res.SegmentDistance = wk.distance - wk.segStart
	wk.res.Context = wk.ctx
	wk.res.Position = wk.pos
	wk.res.Heading = wk.heading
	wk.res.Artifact = artifact
	return true
}

// surfaceOffset is the hit position along the crossed edge, oriented so a
// texture reads left to right from the viewer's side
func surfaceOffset(at vmath.Vec2, cellSize float64, axis vmath.Axis, sx, sy int) float64 {
	var f float64
	switch axis {
	case vmath.AxisX:
		f = vmath.Frac(at.Y / cellSize)
		if sx < 0 && f > 0 {
			f = 1 - f
		}
	case vmath.AxisY:
		f = vmath.Frac(at.X / cellSize)
		if sy > 0 && f > 0 {
			f = 1 - f
		}
	default:
		f = vmath.Frac(at.X / cellSize)
	}
	return f
}
