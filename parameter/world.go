package parameter

// World generation
const (
	// WorldWidth and WorldHeight are the Normal grid dimensions (cells)
	WorldWidth  = 32
	WorldHeight = 32

	// WorldCellSize is world units per cell
	WorldCellSize = 1.0

	// WorldWallDensity is the fraction of interior cells turned into walls
	WorldWallDensity = 0.12

	// WorldPortalPairs is the number of portal pairs placed
	WorldPortalPairs = 4

	// WorldDistortionFields is the number of distortion fields placed
	WorldDistortionFields = 3

	// WorldDistortionRadiusMin and Max bound field radii (cells)
	WorldDistortionRadiusMin = 2.0
	WorldDistortionRadiusMax = 5.0

	// WorldDistortionStrengthMax bounds field strength (radians)
	WorldDistortionStrengthMax = 0.15

	// WorldNestedSpaces is the number of nested spaces placed
	WorldNestedSpaces = 3

	// WorldNestedSize is the edge of a nested space grid (cells)
	WorldNestedSize = 16

	// WorldHypercubes is the number of complexes placed
	WorldHypercubes = 2

	// WorldHypercubeRooms is rooms per complex, a power of two
	WorldHypercubeRooms = 16

	// WorldRoomSize is the edge of a hypercube room (cells)
	WorldRoomSize = 8

	// WorldPlacementAttempts bounds random placement retries per feature
	WorldPlacementAttempts = 200

	// WorldMinSpawnRegion is the smallest accepted spawn region (cells)
	WorldMinSpawnRegion = 64
)
