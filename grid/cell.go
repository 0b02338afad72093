package grid

import (
	"fmt"
	"math"

	"github.com/lixenwraith/tesseract/vmath"
)

// Kind classifies a grid cell
type Kind uint8

const (
	Empty Kind = iota
	Wall
	Portal
	NonEuclideanEntrance
	RealityDistortionWall
	PerspectiveShiftWall
	HypercubeEntrance
	RealityFracture
	DimensionalShift
	RecursiveBoundary
	RecursivePortal
	MirrorWall
	RoomConnection  // Param: target room id
	FourDConnection // Param: face (Direction)
)

var kindNames = [...]string{
	Empty:                 "empty",
	Wall:                  "wall",
	Portal:                "portal",
	NonEuclideanEntrance:  "non_euclidean_entrance",
	RealityDistortionWall: "reality_distortion",
	PerspectiveShiftWall:  "perspective_shift",
	HypercubeEntrance:     "hypercube_entrance",
	RealityFracture:       "reality_fracture",
	DimensionalShift:      "dimensional_shift",
	RecursiveBoundary:     "recursive_boundary",
	RecursivePortal:       "recursive_portal",
	MirrorWall:            "mirror",
	RoomConnection:        "room_connection",
	FourDConnection:       "4d_connection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Cell is one classified grid unit
// Param is only meaningful for RoomConnection (room id) and FourDConnection (face)
type Cell struct {
	Kind  Kind
	Param uint16
}

var (
	EmptyCell = Cell{Kind: Empty}
	WallCell  = Cell{Kind: Wall}
)

// Of returns a parameterless cell of kind k
func Of(k Kind) Cell {
	return Cell{Kind: k}
}

// RoomLink returns a RoomConnection cell targeting room id
func RoomLink(room int) Cell {
	return Cell{Kind: RoomConnection, Param: uint16(room)}
}

// FourDLink returns a FourDConnection cell on face d
func FourDLink(d Direction) Cell {
	return Cell{Kind: FourDConnection, Param: uint16(d)}
}

// Face returns the face carried by a FourDConnection cell
func (c Cell) Face() Direction {
	return Direction(c.Param & 3)
}

// Target returns the room carried by a RoomConnection cell
func (c Cell) Target() int {
	return int(c.Param)
}

// Traversable reports whether a traveler may occupy the cell
// Portal cells are walk-through; the portal itself is resolved by proximity
func (c Cell) Traversable() bool {
	return c.Kind == Empty || c.Kind == Portal
}

// IsEntrance reports whether hitting the cell switches space context
func (c Cell) IsEntrance() bool {
	return c.Kind == NonEuclideanEntrance || c.Kind == HypercubeEntrance
}

func (c Cell) String() string {
	switch c.Kind {
	case RoomConnection:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Param)
	case FourDConnection:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Face())
	}
	return c.Kind.String()
}

// Coord addresses a cell by column and row
type Coord struct {
	X, Y int
}

func (c Coord) Add(d Coord) Coord {
	return Coord{c.X + d.X, c.Y + d.Y}
}

// Direction is a cardinal facing; numeric order matches quarter turns clockwise on screen
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"N", "E", "S", "W"}

func (d Direction) String() string {
	return directionNames[d&3]
}

// Normal returns the outward unit vector of the facing
func (d Direction) Normal() vmath.Vec2 {
	switch d & 3 {
	case North:
		return vmath.Vec2{X: 0, Y: -1}
	case East:
		return vmath.Vec2{X: 1, Y: 0}
	case South:
		return vmath.Vec2{X: 0, Y: 1}
	}
	return vmath.Vec2{X: -1, Y: 0}
}

// Offset returns the neighbouring-cell step for the facing
func (d Direction) Offset() Coord {
	n := d.Normal()
	return Coord{int(n.X), int(n.Y)}
}

func (d Direction) Opposite() Direction {
	return (d + 2) & 3
}

// Angle returns the heading pointing along the facing
func (d Direction) Angle() float64 {
	return vmath.WrapAngle(float64(int(d&3)-1) * vmath.HalfPi)
}

// QuarterTurnsTo returns (to - d) mod 4, the clockwise quarter turns from d to to
func (d Direction) QuarterTurnsTo(to Direction) int {
	return int((to - d) & 3)
}

// Rotate returns the facing after steps clockwise quarter turns
func (d Direction) Rotate(steps int) Direction {
	return Direction((int(d) + steps%4 + 4) & 3)
}

// DirectionOf returns the facing closest to heading a
func DirectionOf(a float64) Direction {
	q := int(math.Round(vmath.WrapAngle(a)/vmath.HalfPi)) & 3
	// q counts quarter turns from East
	return East.Rotate(q)
}

// Directions lists the four facings in order
var Directions = [4]Direction{North, East, South, West}
