package vmath

import (
	"math"
)

func init() {
	for i := 0; i < LUTSize; i++ {
		rad := TwoPi * float64(i) / LUTSize
		SinLUT[i] = math.Sin(rad)
		CosLUT[i] = math.Cos(rad)
	}
}

// SinLUT and CosLUT sample one full turn at LUTSize points
var (
	SinLUT [LUTSize]float64
	CosLUT [LUTSize]float64
)

func lutIndex(angle float64) int {
	return int(WrapAngle(angle)*(LUTSize/TwoPi)) & LUTMask
}

// FastSin returns a table sine, ~0.4% max error
// Only for display sweeps; geometry uses math.Sin
func FastSin(angle float64) float64 {
	return SinLUT[lutIndex(angle)]
}

func FastCos(angle float64) float64 {
	return CosLUT[lutIndex(angle)]
}
