package render

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/march"
	"github.com/lixenwraith/tesseract/parameter"
	"github.com/lixenwraith/tesseract/sim"
	"github.com/lixenwraith/tesseract/space"
	"github.com/lixenwraith/tesseract/status"
	"github.com/lixenwraith/tesseract/vmath"
)

// Column is the cast result for one screen column, left to right
type Column struct {
	// Heading is the sample heading the ray left the traveler with
	Heading float64
	// Distance is fisheye corrected; Raw is the traced distance
	Distance float64
	Raw      float64

	Outcome       march.Outcome
	Cell          grid.Cell
	SurfaceOffset float64
	Edge          vmath.Axis
	Context       space.Context
	Artifact      string

	Portals     int
	FourD       int
	Reflections int
}

// Hit reports whether the column ended on a drawable surface
func (c Column) Hit() bool {
	return c.Outcome == march.Hit || c.Outcome == march.Loop
}

// Caster traces one ray per column over a frame snapshot
// Columns are split into contiguous batches; each worker writes only its own
// range of the output slice
type Caster struct {
	Workers     int
	BatchMin    int
	MaxDistance float64

	reg       *status.Registry
	lastFrame *status.AtomicFloat
}

// NewCaster reads worker and batch limits from cfg; reg may be nil
func NewCaster(cfg *config.Config, reg *status.Registry) *Caster {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Caster{
		Workers:     cfg.Render.Workers,
		BatchMin:    cfg.Render.BatchMin,
		MaxDistance: cfg.March.MaxDistance,
	}
	if reg != nil {
		c.reg = reg
		c.lastFrame = reg.Floats.Get(status.KeyFrameMillis)
	}
	return c
}

// workers returns the batch count for columns
func (c *Caster) workers(columns int) int {
	n := c.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	batchMin := max(c.BatchMin, 1)
	if limit := (columns + batchMin - 1) / batchMin; n > limit {
		n = limit
	}
	return max(n, 1)
}

// SampleHeading returns the heading of column x of columns across fov, before
// reality wobble and gravity
func SampleHeading(view float64, x, columns int, fov float64) float64 {
	if columns <= 1 {
		return view
	}
	return view - fov/2 + fov*float64(x)/float64(columns-1)
}

// Cast traces columns rays across fov centred on the traveler's heading
// The result is ordered by column regardless of batch completion order
// A panic inside a batch worker comes back as an error with its stack
func (c *Caster) Cast(f sim.Frame, columns int, fov float64) ([]Column, error) {
	if columns <= 0 || f.Marcher == nil {
		return nil, nil
	}
	start := time.Now()
	out := make([]Column, columns)

	tr := f.Traveler
	gravity := vmath.QuarterTurns(grid.South.QuarterTurnsTo(tr.Gravity))
	wobble := (parameter.RealityMax - tr.Reality) * parameter.RealityDistortionRatio * 0.4
	phase := float64(tr.Tick) * 0.1
	maxDist := c.MaxDistance
	if maxDist <= 0 {
		maxDist = parameter.MarchMaxDistance
	}

	workers := c.workers(columns)
	per, rem := columns/workers, columns%workers

	var g errgroup.Group
	lo := 0
	for w := 0; w < workers; w++ {
		// First rem batches take one extra column
		n := per
		if w < rem {
			n++
		}
		batch := out[lo : lo+n]
		first := lo
		lo += n

		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("render: column batch %d..%d panicked: %v\n%s", first, first+len(batch)-1, r, debug.Stack())
				}
			}()
			for i := range batch {
				x := first + i
				sx := x
				if tr.Inverted {
					sx = columns - 1 - x
				}
				h := SampleHeading(tr.Heading, sx, columns, fov)
				if wobble > 0 {
					h += vmath.FastSin(phase+float64(x)*0.05) * wobble
				}
				h += gravity

				r := f.Marcher.Trace(tr.Pos, h, tr.Ctx, maxDist)
				batch[i] = Column{
					Heading:       h,
					Distance:      march.FisheyeCorrect(r.Distance, h, tr.Heading+gravity),
					Raw:           r.Distance,
					Outcome:       r.Outcome,
					Cell:          r.Cell,
					SurfaceOffset: r.SurfaceOffset,
					Edge:          r.Edge,
					Context:       r.Context,
					Artifact:      r.Artifact,
					Portals:       r.PortalCrossings,
					FourD:         r.FourD,
					Reflections:   r.Reflections,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.record(out, time.Since(start))
	return out, nil
}

// record folds one frame into the metrics after the join
func (c *Caster) record(cols []Column, elapsed time.Duration) {
	if c.reg == nil {
		return
	}
	var portals, fourD, loops int64
	longest := 0.0
	for _, col := range cols {
		portals += int64(col.Portals)
		fourD += int64(col.FourD)
		if col.Outcome == march.Loop {
			loops++
		}
		longest = max(longest, col.Raw)
	}
	r := c.reg
	r.Ints.Get(status.KeyRays).Add(int64(len(cols)))
	r.Ints.Get(status.KeyPortalCrossings).Add(portals)
	r.Ints.Get(status.KeyFourD).Add(fourD)
	r.Ints.Get(status.KeyLoops).Add(loops)
	r.Floats.Get(status.KeyMaxDistance).Max(longest)
	r.Ints.Get(status.KeyFrames).Add(1)
	c.lastFrame.Set(float64(elapsed.Microseconds()) / 1000)
}
