package sim

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/mapgen"
	"github.com/lixenwraith/tesseract/status"
	"github.com/lixenwraith/tesseract/vmath"
)

func newSession(t *testing.T) (*Session, *status.Registry) {
	t.Helper()
	reg := status.NewRegistry()
	s, err := New(nil, 5, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, reg
}

func TestNew_InstallsSpawn(t *testing.T) {
	s, reg := newSession(t)
	f := s.Snapshot()
	if f.World == nil || f.Marcher == nil || f.Marcher.World != f.World {
		t.Fatal("frame is missing its world")
	}
	if f.Traveler.Pos != f.World.Spawn || !f.Traveler.Ctx.IsNormal() {
		t.Errorf("traveler %+v not at spawn %v", f.Traveler, f.World.Spawn)
	}
	if f.Version != 1 {
		t.Errorf("version = %d", f.Version)
	}
	label := reg.Strings.Get(status.KeyContext)
	if got := label.Load(); got != "normal" {
		t.Errorf("context metric = %q", got)
	}
	s.Tick(Input{}, time.Millisecond)
	if got := label.Changes(); got != 1 {
		t.Errorf("idle tick changed context label: %d changes", got)
	}
	if got := reg.Floats.Get(status.KeyReality).Get(); got != 1 {
		t.Errorf("reality metric = %v", got)
	}
}

func TestTick_TurnAndMove(t *testing.T) {
	s, reg := newSession(t)
	before := s.Traveler()

	s.Tick(Input{Turn: 1}, time.Second)
	turned := s.Traveler()
	want := vmath.WrapAngle(before.Heading + s.Config().Traveler.TurnSpeed)
	if math.Abs(vmath.AngleDiff(turned.Heading, want)) > 1e-9 {
		t.Errorf("heading = %v, want %v", turned.Heading, want)
	}
	if turned.Pos != before.Pos {
		t.Errorf("pure turn moved the traveler to %v", turned.Pos)
	}

	// Oversized input is clamped
	s.Tick(Input{Turn: 50}, 100*time.Millisecond)
	after := s.Traveler()
	if d := math.Abs(vmath.AngleDiff(turned.Heading, after.Heading)); d > s.Config().Traveler.TurnSpeed*0.1+1e-9 {
		t.Errorf("turn of %v exceeds the clamped rate", d)
	}

	if n := reg.Ints.Get(status.KeyTicks).Load(); n != 2 {
		t.Errorf("ticks = %d", n)
	}
}

func TestRegenerate_FailureKeepsWorld(t *testing.T) {
	s, reg := newSession(t)
	old := s.Snapshot()

	s.Config().Generator.PortalPairs = 500
	err := s.Regenerate(9)
	if !errors.Is(err, mapgen.ErrPortalPlacement) {
		t.Fatalf("err = %v", err)
	}
	cur := s.Snapshot()
	if cur.World != old.World || cur.Version != old.Version || cur.Traveler != old.Traveler {
		t.Error("failed regeneration replaced state")
	}
	if n := reg.Ints.Get(status.KeyRegenerations).Load(); n != 1 {
		t.Errorf("regenerations = %d", n)
	}
}

func TestRegenerate_Replaces(t *testing.T) {
	s, _ := newSession(t)
	s.Tick(Input{Forward: 1}, 200*time.Millisecond)
	if err := s.Regenerate(6); err != nil {
		t.Fatal(err)
	}
	f := s.Snapshot()
	if f.World.Seed != 6 || f.Version != 2 || s.World() != f.World {
		t.Errorf("seed %d version %d", f.World.Seed, f.Version)
	}
	if f.Traveler.Pos != f.World.Spawn || f.Traveler.Tick != 0 {
		t.Errorf("traveler not respawned: %+v", f.Traveler)
	}
}

// Snapshots taken while ticking and regenerating always pair a marcher with
// its own world
func TestSession_Concurrent(t *testing.T) {
	cfg := config.Default()
	s, err := New(cfg, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s.Tick(Input{Forward: 1, Turn: 0.3}, 30*time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			f := s.Snapshot()
			if f.Marcher.World != f.World {
				t.Error("snapshot mixes worlds")
				return
			}
			if f.World.GridFor(f.Traveler.Ctx) == nil {
				t.Errorf("traveler context %v unknown to its world", f.Traveler.Ctx)
				return
			}
		}
	}()
	for seed := uint64(2); seed < 6; seed++ {
		if err := s.Regenerate(seed); err != nil {
			t.Errorf("seed %d: %v", seed, err)
		}
	}
	close(stop)
	wg.Wait()
}
