// Package sim owns the authoritative traveler and the installed world
// Ticks, snapshots and regeneration serialize on one mutex so a frame is
// always taken between ticks
package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/mapgen"
	"github.com/lixenwraith/tesseract/march"
	"github.com/lixenwraith/tesseract/status"
	"github.com/lixenwraith/tesseract/vmath"
	"github.com/lixenwraith/tesseract/world"
)

// Input is one tick of intent; each axis is clamped to [-1,1]
type Input struct {
	Forward float64
	// Strafe is positive to the right
	Strafe float64
	// Turn is positive clockwise on screen
	Turn float64
}

// Frame is everything a render pass reads; nothing in it is mutated later
type Frame struct {
	World    *world.World
	Marcher  *march.Marcher
	Traveler march.Traveler
	Version  uint64
}

// Session drives one traveler through a replaceable world
type Session struct {
	mu       sync.Mutex
	cfg      *config.Config
	store    *world.Store
	marcher  *march.Marcher
	traveler march.Traveler

	ticks    *atomic.Int64
	regens   *atomic.Int64
	version  *atomic.Int64
	switches *atomic.Int64
	reality  *status.AtomicFloat
	context  *status.AtomicString
}

// New generates the first world from seed; reg may be nil
func New(cfg *config.Config, seed uint64, reg *status.Registry) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	s := &Session{
		cfg:      cfg,
		store:    world.NewStore(nil),
		ticks:    reg.Ints.Get(status.KeyTicks),
		regens:   reg.Ints.Get(status.KeyRegenerations),
		version:  reg.Ints.Get(status.KeyWorldVersion),
		switches: reg.Ints.Get(status.KeySwitches),
		reality:  reg.Floats.Get(status.KeyReality),
		context:  reg.Strings.Get(status.KeyContext),
	}
	if err := s.Regenerate(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Regenerate builds a world from seed and installs it with a fresh traveler
// On failure the current world and traveler stay as they were
func (s *Session) Regenerate(seed uint64) error {
	start := time.Now()
	w, err := mapgen.Regenerate(seed, s.cfg)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"seed": seed, "error": err}).Warn("world regeneration failed")
		return fmt.Errorf("sim: regenerate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Swap(w)
	s.marcher = march.New(w, march.OptionsFrom(s.cfg))
	s.traveler = march.Spawn(w)

	s.regens.Add(1)
	s.version.Store(int64(s.store.Version()))
	s.publish()

	logger.Log.WithFields(logrus.Fields{
		"seed":       seed,
		"width":      w.Grid.Width,
		"height":     w.Grid.Height,
		"portals":    w.Portals.Pairs(),
		"fields":     w.Fields.Len(),
		"spaces":     w.Spaces.Len(),
		"complexes":  w.Hypercubes.Len(),
		"version":    s.store.Version(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("world installed")
	return nil
}

// Tick turns, then moves the traveler by dt worth of input
// Motion is measured in cells of the active frame
func (s *Session) Tick(in Input, dt time.Duration) march.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := dt.Seconds()
	tr := s.traveler
	tr.Heading += vmath.Clamp(in.Turn, -1, 1) * s.cfg.Traveler.TurnSpeed * sec

	cellSize := s.cfg.Generator.CellSize
	if g := s.marcher.World.GridFor(tr.Ctx); g != nil {
		cellSize = g.CellSize
	}
	step := s.cfg.Traveler.MoveSpeed * sec * cellSize
	tr, ev := s.marcher.Move(tr, vmath.Clamp(in.Forward, -1, 1)*step, vmath.Clamp(in.Strafe, -1, 1)*step)
	s.traveler = tr

	s.ticks.Add(1)
	if ev.Switched {
		s.switches.Add(1)
		logger.Log.WithFields(logrus.Fields{
			"from": ev.From.String(),
			"to":   ev.To.String(),
			"cell": ev.Cell.Kind.String(),
			"tick": tr.Tick,
		}).Debug("context switch")
	}
	s.publish()
	return ev
}

// publish mirrors traveler state into the metrics; caller holds mu
func (s *Session) publish() {
	s.reality.Set(s.traveler.Reality)
	if label := s.traveler.Ctx.String(); s.context.Store(label) {
		logger.Log.WithField("context", label).Debug("context label")
	}
}

// Snapshot captures the installed world and traveler for one frame
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		World:    s.marcher.World,
		Marcher:  s.marcher,
		Traveler: s.traveler,
		Version:  s.store.Version(),
	}
}

// Traveler returns a copy of the authoritative traveler
func (s *Session) Traveler() march.Traveler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traveler
}

// World returns the installed world without taking the session lock
func (s *Session) World() *world.World {
	return s.store.Load()
}

func (s *Session) Config() *config.Config {
	return s.cfg
}
