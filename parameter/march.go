package parameter

// Marcher stepping, in cells; scaled by the grid cell size at use
const (
	// MarchBaseStep is the step length at the origin of a march
	MarchBaseStep = 0.05

	// MarchStepGrowth is added to the step per cell of traveled distance
	MarchStepGrowth = 0.01

	// MarchMaxStep caps the adaptive step
	MarchMaxStep = 0.25

	// MarchDistortionInterval is the traveled distance between heading re-derivations
	MarchDistortionInterval = 0.5

	// MarchPortalInterval is the traveled distance between portal crossing attempts
	MarchPortalInterval = 0.25

	// MarchMaxDistance is the default ray budget for rendering
	MarchMaxDistance = 40.0
)

// Transition guards
const (
	// MaxFourDTransitions caps 4D link traversals within one march call
	MaxFourDTransitions = 3

	// MaxContextSwitches caps context switches followed by Trace
	MaxContextSwitches = 8

	// PortalProximity is the crossing radius around an endpoint centre, ratio of cell size
	PortalProximity = 0.5

	// ExitNudge is the offset past a complex exit anchor, ratio of cell size
	ExitNudge = 0.05

	// MirrorPushOff moves a reflected ray away from the mirror surface (cells)
	MirrorPushOff = 0.1
)

// Chaos transition
const (
	// ChaosProbability is the chance a hypercube recursive portal ignores adjacency
	ChaosProbability = 0.3

	// ChaosSalt seeds the coordinate hash for chaos rolls
	ChaosSalt = 0x7E55E12AC7

	// HypercubeInset keeps a crossing this far inside the entered face (cells)
	HypercubeInset = 1.5
)
