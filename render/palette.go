package render

import "github.com/lixenwraith/tesseract/grid"

// Surface colors (Tokyo Night base)
var (
	RgbBackground = RGB{26, 27, 38}
	RgbCeiling    = RGB{36, 40, 59}
	RgbFloor      = RGB{41, 46, 66}
	RgbFog        = RGB{20, 20, 28}

	RgbWall            = RGB{169, 177, 214}
	RgbPortal          = RGB{125, 207, 255}
	RgbEntrance        = RGB{187, 154, 247}
	RgbRealityWall     = RGB{247, 118, 142}
	RgbShiftWall       = RGB{224, 175, 104}
	RgbHypercubeExit   = RGB{158, 206, 106}
	RgbFracture        = RGB{255, 0, 124}
	RgbDimensional     = RGB{42, 195, 222}
	RgbRecursive       = RGB{115, 218, 202}
	RgbMirror          = RGB{192, 202, 245}
	RgbRoomConnection  = RGB{122, 162, 247}
	RgbFourDConnection = RGB{255, 158, 100}

	// RgbArtifact marks columns ended by a guard rather than a surface
	RgbArtifact = RGB{255, 255, 255}
)

var kindColors = [...]RGB{
	grid.Empty:                 RgbFog,
	grid.Wall:                  RgbWall,
	grid.Portal:                RgbPortal,
	grid.NonEuclideanEntrance:  RgbEntrance,
	grid.RealityDistortionWall: RgbRealityWall,
	grid.PerspectiveShiftWall:  RgbShiftWall,
	grid.HypercubeEntrance:     RgbHypercubeExit,
	grid.RealityFracture:       RgbFracture,
	grid.DimensionalShift:      RgbDimensional,
	grid.RecursiveBoundary:     RgbRecursive,
	grid.RecursivePortal:       RgbRecursive,
	grid.MirrorWall:            RgbMirror,
	grid.RoomConnection:        RgbRoomConnection,
	grid.FourDConnection:       RgbFourDConnection,
}

// KindColor returns the base surface color of a cell kind
func KindColor(k grid.Kind) RGB {
	if int(k) < len(kindColors) {
		return kindColors[k]
	}
	return RgbWall
}
