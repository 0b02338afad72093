package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"time"

	"github.com/lixenwraith/tesseract/parameter"
	"github.com/lixenwraith/tesseract/toml"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

// March tunes the marcher; lengths are in cells
type March struct {
	BaseStep           float64 `toml:"base_step"`
	StepGrowth         float64 `toml:"step_growth"`
	MaxStep            float64 `toml:"max_step"`
	DistortionInterval float64 `toml:"distortion_interval"`
	PortalInterval     float64 `toml:"portal_interval"`
	MaxDistance        float64 `toml:"max_distance"`
	MaxFourD           int     `toml:"max_4d_transitions"`
	MaxSwitches        int     `toml:"max_context_switches"`
	MirrorPushOff      float64 `toml:"mirror_push_off"`
}

type Portal struct {
	// Proximity is the crossing radius, ratio of cell size
	Proximity float64 `toml:"proximity"`
	ExitNudge float64 `toml:"exit_nudge"`
}

type Hypercube struct {
	ChaosProbability float64 `toml:"chaos_probability"`
	ChaosSalt        uint64  `toml:"chaos_salt"`
	// Inset keeps crossings this many cells inside the entered face
	Inset float64 `toml:"inset"`
}

type Traveler struct {
	MoveSpeed               float64 `toml:"move_speed"`
	TurnSpeed               float64 `toml:"turn_speed"`
	Radius                  float64 `toml:"radius"`
	FractureJumpProbability float64 `toml:"fracture_jump_probability"`
	InversionProbability    float64 `toml:"inversion_probability"`
}

type Generator struct {
	Width             int     `toml:"width"`
	Height            int     `toml:"height"`
	CellSize          float64 `toml:"cell_size"`
	WallDensity       float64 `toml:"wall_density"`
	PortalPairs       int     `toml:"portal_pairs"`
	DistortionFields  int     `toml:"distortion_fields"`
	RadiusMin         float64 `toml:"distortion_radius_min"`
	RadiusMax         float64 `toml:"distortion_radius_max"`
	StrengthMax       float64 `toml:"distortion_strength_max"`
	NestedSpaces      int     `toml:"nested_spaces"`
	NestedSize        int     `toml:"nested_size"`
	Hypercubes        int     `toml:"hypercubes"`
	HypercubeRooms    int     `toml:"hypercube_rooms"`
	RoomSize          int     `toml:"room_size"`
	PlacementAttempts int     `toml:"placement_attempts"`
	MinSpawnRegion    int     `toml:"min_spawn_region"`
}

type Render struct {
	FOV      float64       `toml:"fov"`
	Tick     time.Duration `toml:"tick"`
	BatchMin int           `toml:"batch_min"`
	// Workers caps parallel column batches; 0 uses GOMAXPROCS
	Workers int `toml:"workers"`
}

type Serve struct {
	Addr          string        `toml:"addr"`
	Columns       int           `toml:"columns"`
	FrameInterval time.Duration `toml:"frame_interval"`
	SendBuffer    int           `toml:"send_buffer"`
}

// Config is the complete tuning surface
type Config struct {
	March     March     `toml:"march"`
	Portal    Portal    `toml:"portal"`
	Hypercube Hypercube `toml:"hypercube"`
	Traveler  Traveler  `toml:"traveler"`
	Generator Generator `toml:"generator"`
	Render    Render    `toml:"render"`
	Serve     Serve     `toml:"serve"`
}

// Default returns the built-in tuning
func Default() *Config {
	return &Config{
		March: March{
			BaseStep:           parameter.MarchBaseStep,
			StepGrowth:         parameter.MarchStepGrowth,
			MaxStep:            parameter.MarchMaxStep,
			DistortionInterval: parameter.MarchDistortionInterval,
			PortalInterval:     parameter.MarchPortalInterval,
			MaxDistance:        parameter.MarchMaxDistance,
			MaxFourD:           parameter.MaxFourDTransitions,
			MaxSwitches:        parameter.MaxContextSwitches,
			MirrorPushOff:      parameter.MirrorPushOff,
		},
		Portal: Portal{
			Proximity: parameter.PortalProximity,
			ExitNudge: parameter.ExitNudge,
		},
		Hypercube: Hypercube{
			ChaosProbability: parameter.ChaosProbability,
			ChaosSalt:        parameter.ChaosSalt,
			Inset:            parameter.HypercubeInset,
		},
		Traveler: Traveler{
			MoveSpeed:               parameter.MoveSpeed,
			TurnSpeed:               parameter.TurnSpeed,
			Radius:                  parameter.TravelerRadius,
			FractureJumpProbability: parameter.FractureJumpProbability,
			InversionProbability:    parameter.InversionProbability,
		},
		Generator: Generator{
			Width:             parameter.WorldWidth,
			Height:            parameter.WorldHeight,
			CellSize:          parameter.WorldCellSize,
			WallDensity:       parameter.WorldWallDensity,
			PortalPairs:       parameter.WorldPortalPairs,
			DistortionFields:  parameter.WorldDistortionFields,
			RadiusMin:         parameter.WorldDistortionRadiusMin,
			RadiusMax:         parameter.WorldDistortionRadiusMax,
			StrengthMax:       parameter.WorldDistortionStrengthMax,
			NestedSpaces:      parameter.WorldNestedSpaces,
			NestedSize:        parameter.WorldNestedSize,
			Hypercubes:        parameter.WorldHypercubes,
			HypercubeRooms:    parameter.WorldHypercubeRooms,
			RoomSize:          parameter.WorldRoomSize,
			PlacementAttempts: parameter.WorldPlacementAttempts,
			MinSpawnRegion:    parameter.WorldMinSpawnRegion,
		},
		Render: Render{
			FOV:      parameter.ViewFOV,
			Tick:     parameter.ViewTick,
			BatchMin: parameter.CastBatchMin,
		},
		Serve: Serve{
			Addr:          parameter.ServeAddr,
			Columns:       parameter.ServeColumns,
			FrameInterval: parameter.ServeFrameInterval,
			SendBuffer:    parameter.ServeSendBuffer,
		},
	}
}

// Load decodes the file at path over the defaults and validates the result
// An empty path yields the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders cfg as a TOML document accepted by Load
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func invalid(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

func probability(field string, p float64) error {
	if !(p >= 0 && p <= 1) {
		return invalid(field, "%v outside [0,1]", p)
	}
	return nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	m := c.March
	switch {
	case !(m.BaseStep > 0):
		return invalid("march.base_step", "must be positive, got %v", m.BaseStep)
	case m.StepGrowth < 0:
		return invalid("march.step_growth", "must not be negative, got %v", m.StepGrowth)
	case m.MaxStep < m.BaseStep:
		return invalid("march.max_step", "%v below base step %v", m.MaxStep, m.BaseStep)
	case !(m.DistortionInterval > 0):
		return invalid("march.distortion_interval", "must be positive, got %v", m.DistortionInterval)
	case !(m.PortalInterval > 0):
		return invalid("march.portal_interval", "must be positive, got %v", m.PortalInterval)
	case !(m.MaxDistance > 0):
		return invalid("march.max_distance", "must be positive, got %v", m.MaxDistance)
	case m.MaxFourD < 1:
		return invalid("march.max_4d_transitions", "must be at least 1, got %d", m.MaxFourD)
	case m.MaxSwitches < 1:
		return invalid("march.max_context_switches", "must be at least 1, got %d", m.MaxSwitches)
	case m.MirrorPushOff < 0:
		return invalid("march.mirror_push_off", "must not be negative, got %v", m.MirrorPushOff)
	}

	// Beyond half a cell the crossing point can sit in a cell beside the endpoint
	if p := c.Portal.Proximity; !(p > 0 && p <= 0.5) {
		return invalid("portal.proximity", "%v outside (0,0.5]", p)
	}
	if c.Portal.ExitNudge < 0 {
		return invalid("portal.exit_nudge", "must not be negative, got %v", c.Portal.ExitNudge)
	}

	if err := probability("hypercube.chaos_probability", c.Hypercube.ChaosProbability); err != nil {
		return err
	}

	tr := c.Traveler
	if !(tr.MoveSpeed > 0) || !(tr.TurnSpeed > 0) {
		return invalid("traveler", "speeds must be positive")
	}
	if tr.Radius < 0 || tr.Radius >= 0.5 {
		return invalid("traveler.radius", "%v outside [0,0.5)", tr.Radius)
	}
	if err := probability("traveler.fracture_jump_probability", tr.FractureJumpProbability); err != nil {
		return err
	}
	if err := probability("traveler.inversion_probability", tr.InversionProbability); err != nil {
		return err
	}

	g := c.Generator
	switch {
	case g.Width < 5 || g.Height < 5:
		return invalid("generator", "grid %dx%d smaller than 5x5", g.Width, g.Height)
	case !(g.CellSize > 0):
		return invalid("generator.cell_size", "must be positive, got %v", g.CellSize)
	case g.WallDensity < 0 || g.WallDensity >= 1:
		return invalid("generator.wall_density", "%v outside [0,1)", g.WallDensity)
	case g.PortalPairs < 0 || g.DistortionFields < 0 || g.NestedSpaces < 0 || g.Hypercubes < 0:
		return invalid("generator", "feature counts must not be negative")
	case g.RadiusMin <= 0 || g.RadiusMax < g.RadiusMin:
		return invalid("generator.distortion_radius", "bad range [%v,%v]", g.RadiusMin, g.RadiusMax)
	case g.NestedSize < 5:
		return invalid("generator.nested_size", "must be at least 5, got %d", g.NestedSize)
	case g.HypercubeRooms < 1 || g.HypercubeRooms > 16 || bits.OnesCount(uint(g.HypercubeRooms)) != 1:
		return invalid("generator.hypercube_rooms", "%d is not a power of two up to 16", g.HypercubeRooms)
	case g.RoomSize < 5:
		return invalid("generator.room_size", "must be at least 5, got %d", g.RoomSize)
	case g.PlacementAttempts < 1:
		return invalid("generator.placement_attempts", "must be at least 1, got %d", g.PlacementAttempts)
	case g.MinSpawnRegion < 1:
		return invalid("generator.min_spawn_region", "must be at least 1, got %d", g.MinSpawnRegion)
	}
	// Crossings must land past the wall ring and short of the far half
	if in := c.Hypercube.Inset; !(in >= 1 && in < float64(g.RoomSize)/2) {
		return invalid("hypercube.inset", "%v outside [1,%v)", in, float64(g.RoomSize)/2)
	}

	r := c.Render
	switch {
	case !(r.FOV > 0 && r.FOV < 3.1):
		return invalid("render.fov", "%v outside (0,3.1) radians", r.FOV)
	case r.Tick <= 0:
		return invalid("render.tick", "must be positive, got %v", r.Tick)
	case r.BatchMin < 1:
		return invalid("render.batch_min", "must be at least 1, got %d", r.BatchMin)
	case r.Workers < 0:
		return invalid("render.workers", "must not be negative, got %d", r.Workers)
	}

	s := c.Serve
	switch {
	case s.Columns < 1:
		return invalid("serve.columns", "must be at least 1, got %d", s.Columns)
	case s.FrameInterval <= 0:
		return invalid("serve.frame_interval", "must be positive, got %v", s.FrameInterval)
	case s.SendBuffer < 1:
		return invalid("serve.send_buffer", "must be at least 1, got %d", s.SendBuffer)
	}
	return nil
}
