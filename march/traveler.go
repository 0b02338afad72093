package march

import (
	"math"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/hypercube"
	"github.com/lixenwraith/tesseract/parameter"
	"github.com/lixenwraith/tesseract/space"
	"github.com/lixenwraith/tesseract/vmath"
	"github.com/lixenwraith/tesseract/world"
)

// Traveler is the authoritative state of one moving observer
type Traveler struct {
	Pos     vmath.Vec2
	Heading float64
	Ctx     space.Context

	// Reality in (0,1]; lower values distort the view
	Reality float64
	// Gravity is the "down" direction; South is ordinary
	Gravity  grid.Direction
	Inverted bool

	// PortalLock bars the endpoint last exited until the traveler leaves it, -1 for none
	PortalLock int
	Tick       uint64
}

// Spawn places a traveler at the world's spawn point
func Spawn(w *world.World) Traveler {
	return Traveler{
		Pos:        w.Spawn,
		Heading:    w.SpawnHeading,
		Ctx:        space.Top,
		Reality:    parameter.RealityMax,
		Gravity:    grid.South,
		PortalLock: -1,
	}
}

// Event reports what one movement tick did
type Event struct {
	Blocked  bool
	Switched bool
	From, To space.Context
	// Cell stopped or switched the move
	Cell grid.Cell

	Portal     bool
	Rooms      int
	FourD      bool
	Chaos      bool
	Mirrored   bool
	Teleported bool
	Fractured  bool
	Inverted   bool
	GravityNow grid.Direction
}

// Move applies one movement tick of forward and strafe (rightward) motion in
// world units of the active frame, then the per-tick mechanics of the frame
// Gravity turns the movement vector by its offset from South
func (m *Marcher) Move(tr Traveler, forward, strafe float64) (Traveler, Event) {
	ev := Event{From: tr.Ctx}
	tr.Tick++

	delta := vmath.FromAngle(tr.Heading).Scale(forward).
		Add(vmath.FromAngle(tr.Heading + vmath.HalfPi).Scale(strafe)).
		RotateQuarter(grid.South.QuarterTurnsTo(tr.Gravity))

	switch tr.Ctx.Kind {
	case space.Nested:
		m.moveNested(&tr, delta, &ev)
	case space.Hypercube:
		m.moveRoom(&tr, delta, &ev)
	default:
		m.moveNormal(&tr, delta, &ev)
	}

	tr.Heading = vmath.WrapAngle(tr.Heading)
	ev.To = tr.Ctx
	ev.Switched = ev.From != ev.To
	if ev.Switched {
		tr.PortalLock = -1
	}
	ev.GravityNow = tr.Gravity
	return tr, ev
}

func (m *Marcher) moveNormal(tr *Traveler, delta vmath.Vec2, ev *Event) {
	if delta.LenSq() > 0 && !m.moveFree(tr, delta, ev) && !ev.Portal {
		// Slide along whichever axis is open
		if !m.moveFree(tr, vmath.Vec2{X: delta.X}, ev) {
			m.moveFree(tr, vmath.Vec2{Y: delta.Y}, ev)
		}
	}

	if ev.Blocked {
		switch ev.Cell.Kind {
		case grid.PerspectiveShiftWall:
			tr.Gravity = tr.Gravity.Rotate(1)
		case grid.DimensionalShift:
			tr.Gravity = tr.Gravity.Opposite()
		}
	}

	if tr.Ctx.Kind != space.Normal {
		return
	}
	g := m.World.Grid
	if tr.PortalLock >= 0 && m.World.Portals != nil {
		e := m.World.Portals.At(tr.PortalLock)
		if tr.Pos.Sub(g.CellCenter(e.Pos)).Len() > g.CellSize {
			tr.PortalLock = -1
		}
	}
	if nearKind(g, g.ToCell(tr.Pos.X, tr.Pos.Y), grid.RealityDistortionWall) {
		tr.Reality = lower(tr.Reality, parameter.RealityDistortionStep, parameter.RealityDistortionFloor)
	} else {
		tr.Reality = toward(tr.Reality, parameter.RealityMax, parameter.RealityBleedRate)
	}
}

// moveFree marches the traveler along delta in Normal space, keeping Radius
// cells of clearance; reports whether the traveler changed position or frame
func (m *Marcher) moveFree(tr *Traveler, delta vmath.Vec2, ev *Event) bool {
	dist := delta.Len()
	if dist == 0 {
		return false
	}
	h := delta.Angle()
	clear := m.Opt.Radius * m.World.Grid.CellSize
	r := m.walk(tr.Pos, h, tr.Ctx, dist+clear, walkParams{lock: tr.PortalLock})
	turn := r.Heading - h

	// An exit opening into a wall acts as a wall at the entry side
	if r.Artifact == ArtifactBlockedLanding {
		ev.Blocked = true
		ev.Cell = r.Cell
		return false
	}

	if r.PortalCrossings > 0 {
		ev.Portal = true
		tr.PortalLock = r.LastPortal
	}

	switch r.Outcome {
	case Switch:
		ev.Cell = r.Cell
		tr.Ctx = r.Context
		tr.Pos = r.Position
		tr.Heading += turn
		return true
	case Hit:
		ev.Blocked = true
		ev.Cell = r.Cell
		if r.PortalCrossings == 0 && r.Distance <= clear {
			return false
		}
	default:
		ev.Blocked = false
	}

	// Keep the clearance, but never back up past the last portal exit
	back := math.Min(clear, r.SegmentDistance)
	tr.Pos = r.Position.Sub(vmath.FromAngle(r.Heading).Scale(back))
	tr.Heading += turn
	return true
}

func (m *Marcher) moveNested(tr *Traveler, delta vmath.Vec2, ev *Event) {
	spaces := m.World.Spaces
	id := tr.Ctx.Space
	s := spaces.Get(id)
	if s == nil {
		ev.Blocked = true
		return
	}

	res := spaces.Step(id, tr.Pos, tr.Heading, delta)
	ev.Cell = res.Cell
	switch {
	case res.Child >= 0:
		if next, err := tr.Ctx.EnterNested(res.Child); err == nil {
			tr.Ctx = next
			tr.Pos, _ = spaces.Enter(res.Child)
		}
		return
	case res.Exiting:
		if next, err := tr.Ctx.ExitNested(s.Parent); err == nil {
			parentCell := m.World.Grid.CellSize
			if p := spaces.Get(s.Parent); p != nil {
				parentCell = p.Grid.CellSize
			}
			tr.Ctx = next
			tr.Pos = spaces.ExitPoint(id, parentCell)
			tr.Reality = math.Min(parameter.RealityMax, tr.Reality+parameter.RealityExitRestore)
		}
		return
	case res.HitWall:
		ev.Blocked = true
	default:
		tr.Pos = res.Pos
		tr.Heading = res.Heading
	}

	if res.Mirrored || res.Reflected {
		ev.Mirrored = true
		tr.Reality = lower(tr.Reality, parameter.RealityMirrorCost, parameter.RealityMirrorFloor)
	}
	if res.Teleported {
		ev.Teleported = true
		tr.Reality = lower(tr.Reality, parameter.RealityPortalCost, parameter.RealityPortalFloor)
	}

	if g, ok := s.GravityAt(tr.Pos); ok {
		tr.Gravity = g
	}
	if target, ok := s.RealityTarget(tr.Pos); ok {
		tr.Reality = toward(tr.Reality, target, parameter.RealityBleedRate)
	}
	if tr.Reality < parameter.RealityInversionThreshold && s.InInversionZone(tr.Pos) &&
		vmath.HashUnit(int(tr.Tick), id, m.Opt.ChaosSalt) < m.Opt.InversionProbability {
		tr.Inverted = !tr.Inverted
		tr.Heading += math.Pi
		ev.Inverted = true
	}
}

func (m *Marcher) moveRoom(tr *Traveler, delta vmath.Vec2, ev *Event) {
	set := m.World.Hypercubes
	cx := set.Get(tr.Ctx.Complex)
	if cx == nil || cx.Room(tr.Ctx.Room) == nil {
		ev.Blocked = true
		return
	}
	room := cx.Room(tr.Ctx.Room)
	g := room.Grid
	next := tr.Pos.Add(delta)
	c := g.ToCell(next.X, next.Y)
	salt := m.Opt.ChaosSalt ^ tr.Tick*0x9E3779B97F4A7C15

	if face, out := hypercube.FaceOfPoint(next, room.WorldSize()); out {
		m.crossRoom(tr, face, next, ev)
		return
	}

	cell := g.CellAt(c)
	ev.Cell = cell
	switch cell.Kind {
	case grid.Empty, grid.Portal:
		tr.Pos = next

	case grid.RealityFracture:
		tr.Pos = next
		ev.Fractured = true
		tr.Reality = lower(tr.Reality, parameter.RealityFractureCost, parameter.RealityFractureFloor)
		if vmath.HashUnit(c.X, c.Y, salt) < m.Opt.FractureJumpProbability {
			if target, ok := cx.Chaos(tr.Ctx.Room, c, salt, 1); ok {
				m.jumpRoom(tr, cx.ID, target, ev)
			}
		}

	case grid.RoomConnection:
		m.crossRoom(tr, hypercube.FaceOf(c, room.Size()), next, ev)

	case grid.FourDConnection:
		m.crossRoom(tr, cell.Face(), next, ev)

	case grid.RecursivePortal:
		if target, ok := cx.Chaos(tr.Ctx.Room, c, salt, m.Opt.ChaosProbability); ok {
			m.jumpRoom(tr, cx.ID, target, ev)
		} else if partner, ok := room.Partner(c); ok {
			if land, ok := landBeside(g, partner, delta); ok {
				tr.Pos = land
				ev.Teleported = true
			} else {
				ev.Blocked = true
			}
		} else {
			ev.Blocked = true
		}
		if !ev.Blocked {
			tr.Reality = lower(tr.Reality, parameter.RealityPortalCost, parameter.RealityPortalFloor)
		}

	case grid.HypercubeEntrance:
		if next, err := tr.Ctx.ExitHypercube(); err == nil {
			tr.Pos = set.ExitPoint(cx.ID, m.Opt.ExitNudge*m.World.Grid.CellSize)
			tr.Ctx = next
		}

	default:
		ev.Blocked = true
	}
}

// crossRoom moves through face; a missing connection or a blocked landing
// behaves as a wall
func (m *Marcher) crossRoom(tr *Traveler, face grid.Direction, local vmath.Vec2, ev *Event) {
	cr, ok := m.World.Hypercubes.Cross(tr.Ctx.Complex, tr.Ctx.Room, face, local, tr.Heading)
	if !ok {
		ev.Blocked = true
		return
	}
	next, err := tr.Ctx.MoveRoom(cr.Complex, cr.Room)
	if err != nil {
		ev.Blocked = true
		return
	}
	target := m.World.Hypercubes.Get(cr.Complex).Room(cr.Room)
	if !target.Grid.Classify(cr.Pos.X, cr.Pos.Y).Traversable() {
		ev.Blocked = true
		return
	}
	tr.Ctx = next
	tr.Pos = cr.Pos
	tr.Heading = cr.Heading
	ev.Rooms++
	if cr.FourD {
		ev.FourD = true
		tr.Reality = lower(tr.Reality, parameter.RealityFourDCost, parameter.RealityFourDFloor)
	}
}

// jumpRoom is the chaos transition: it ignores adjacency entirely
func (m *Marcher) jumpRoom(tr *Traveler, complex, room int, ev *Event) {
	next, err := tr.Ctx.MoveRoom(complex, room)
	if err != nil {
		return
	}
	tr.Ctx = next
	tr.Pos = m.World.Hypercubes.Get(complex).Room(room).Start
	ev.Chaos = true
	ev.Rooms++
}

// landBeside returns the centre of an open neighbour of c, preferring the
// side the traveler was moving toward
func landBeside(g *grid.Grid, c grid.Coord, motion vmath.Vec2) (vmath.Vec2, bool) {
	first := grid.DirectionOf(motion.Angle())
	for k := 0; k < 4; k++ {
		nb := c.Add(first.Rotate(k).Offset())
		if g.InBounds(nb) && g.CellAt(nb).Traversable() {
			return g.CellCenter(nb), true
		}
	}
	return vmath.Vec2{}, false
}

func nearKind(g *grid.Grid, c grid.Coord, k grid.Kind) bool {
	if g.CellAt(c).Kind == k {
		return true
	}
	for _, d := range grid.Directions {
		if g.CellAt(c.Add(d.Offset())).Kind == k {
			return true
		}
	}
	return false
}

// lower subtracts cost without dropping below floor; values already below stay
func lower(v, cost, floor float64) float64 {
	if v <= floor {
		return v
	}
	return math.Max(floor, v-cost)
}

func toward(v, target, rate float64) float64 {
	if v < target {
		return math.Min(target, v+rate)
	}
	return math.Max(target, v-rate)
}
