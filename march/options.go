package march

import (
	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/parameter"
)

// Options tunes a Marcher; lengths are in cells of the active grid
type Options struct {
	BaseStep           float64
	StepGrowth         float64
	MaxStep            float64
	DistortionInterval float64
	PortalInterval     float64
	MirrorPushOff      float64
	MaxReflections     int

	// MaxFourD caps 4D link traversals within one march call
	MaxFourD int
	// MaxSwitches caps the context switches Trace follows
	MaxSwitches int

	// ExitNudge offsets a complex exit along its normal, in Normal-space cells
	ExitNudge float64

	ChaosProbability float64
	ChaosSalt        uint64

	// Traveler
	Radius                  float64
	FractureJumpProbability float64
	InversionProbability    float64
}

const maxReflections = 16

func DefaultOptions() Options {
	return Options{
		BaseStep:                parameter.MarchBaseStep,
		StepGrowth:              parameter.MarchStepGrowth,
		MaxStep:                 parameter.MarchMaxStep,
		DistortionInterval:      parameter.MarchDistortionInterval,
		PortalInterval:          parameter.MarchPortalInterval,
		MirrorPushOff:           parameter.MirrorPushOff,
		MaxReflections:          maxReflections,
		MaxFourD:                parameter.MaxFourDTransitions,
		MaxSwitches:             parameter.MaxContextSwitches,
		ExitNudge:               parameter.ExitNudge,
		ChaosProbability:        parameter.ChaosProbability,
		ChaosSalt:               parameter.ChaosSalt,
		Radius:                  parameter.TravelerRadius,
		FractureJumpProbability: parameter.FractureJumpProbability,
		InversionProbability:    parameter.InversionProbability,
	}
}

// OptionsFrom maps a validated configuration onto marcher options
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		BaseStep:                cfg.March.BaseStep,
		StepGrowth:              cfg.March.StepGrowth,
		MaxStep:                 cfg.March.MaxStep,
		DistortionInterval:      cfg.March.DistortionInterval,
		PortalInterval:          cfg.March.PortalInterval,
		MirrorPushOff:           cfg.March.MirrorPushOff,
		MaxReflections:          maxReflections,
		MaxFourD:                cfg.March.MaxFourD,
		MaxSwitches:             cfg.March.MaxSwitches,
		ExitNudge:               cfg.Portal.ExitNudge,
		ChaosProbability:        cfg.Hypercube.ChaosProbability,
		ChaosSalt:               cfg.Hypercube.ChaosSalt,
		Radius:                  cfg.Traveler.Radius,
		FractureJumpProbability: cfg.Traveler.FractureJumpProbability,
		InversionProbability:    cfg.Traveler.InversionProbability,
	}
}
