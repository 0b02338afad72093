package parameter

// Reality level: 1 is full reality, lower values distort the view
const (
	RealityMax = 1.0

	// RealityBleedRate is the per-tick drift toward a nested space's bleed target
	RealityBleedRate = 0.001

	// RealityDistortionStep is the per-tick change near a reality distortion wall
	RealityDistortionStep  = 0.01
	RealityDistortionFloor = 0.5

	// RealityMirrorCost is lost crossing a mirror diagonal or bouncing off a mirror
	RealityMirrorCost  = 0.05
	RealityMirrorFloor = 0.7

	// RealityFourDCost is lost per 4D transition
	RealityFourDCost  = 0.05
	RealityFourDFloor = 0.8

	// RealityPortalCost is lost per recursive portal jump
	RealityPortalCost  = 0.2
	RealityPortalFloor = 0.3

	// RealityFractureCost is lost stepping through a reality fracture
	RealityFractureCost  = 0.3
	RealityFractureFloor = 0.1

	// RealityExitRestore is regained leaving a nested space
	RealityExitRestore = 0.2

	// RealityInversionThreshold enables perspective inversion below this level
	RealityInversionThreshold = 0.8

	// RealityDistortionRatio maps lost reality to view distortion
	RealityDistortionRatio = 0.5
)

// Movement
const (
	// MoveSpeed is traveler speed in cells per second
	MoveSpeed = 3.0

	// TurnSpeed is traveler turn rate in radians per second
	TurnSpeed = 2.5

	// TravelerRadius keeps a traveler this far from walls (cells)
	TravelerRadius = 0.2

	// FractureJumpProbability is the chance a reality fracture relocates the traveler
	FractureJumpProbability = 0.1

	// InversionProbability is the per-tick chance of inverting inside an inversion zone
	InversionProbability = 0.01
)
