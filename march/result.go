package march

import (
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/space"
	"github.com/lixenwraith/tesseract/vmath"
)

// Outcome is how a march call ended
type Outcome uint8

const (
	// Hit stopped on a non-traversable cell
	Hit Outcome = iota
	// Switch reached an entrance or exit; continue under Result.Context
	Switch
	// Exhausted spent the distance budget in open space
	Exhausted
	// Loop tripped a transition guard
	Loop
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Switch:
		return "switch"
	case Exhausted:
		return "exhausted"
	case Loop:
		return "loop"
	}
	return "unknown"
}

// Artifact names for terminations that are not plain surface hits
const (
	ArtifactFourDLoop      = "4d_loop"
	ArtifactSwitchLimit    = "switch_limit"
	ArtifactMirrorLoop     = "mirror_loop"
	ArtifactNestedEntrance = "non_euclidean_entrance"
	ArtifactNestedExit     = "non_euclidean_exit"
	ArtifactHypercubeEntry = "hypercube_entrance"
	ArtifactHypercubeExit  = "hypercube_exit"
	ArtifactUnknownContext = "unknown_context"
	ArtifactBlockedLanding = "blocked_landing"
)

// Result describes where a march ended
// For Switch, Position and Heading are already expressed in Context
type Result struct {
	Outcome  Outcome
	Distance float64
	// SegmentDistance is the part of Distance traveled since the last
	// portal, room crossing or reflection
	SegmentDistance float64

	Cell  grid.Cell
	Coord grid.Coord
	// SurfaceOffset is the position along the crossed cell edge in [0,1)
	SurfaceOffset float64
	Edge          vmath.Axis

	Context  space.Context
	Position vmath.Vec2
	Heading  float64
	Artifact string

	PortalCrossings int
	// LastPortal is the endpoint the last portal crossing exited through, -1 if none
	LastPortal    int
	RoomCrossings int
	FourD         int
	Reflections   int
	// Switches counts the context switches followed by Trace
	Switches int
	Steps    int
}

// Sample is one step of a march, reported to a Walk observer
type Sample struct {
	Distance float64
	Position vmath.Vec2
	Heading  float64
	Context  space.Context
	// Segment increments whenever the position jumps: portal, room crossing, reflection
	Segment int
}
