package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/march"
	"github.com/lixenwraith/tesseract/render"
	"github.com/lixenwraith/tesseract/sim"
	"github.com/lixenwraith/tesseract/status"
	"github.com/lixenwraith/tesseract/vmath"
)

// minimapRadius is the cell radius shown around the traveler
const minimapRadius = 6

type viewer struct {
	screen  tcell.Screen
	session *sim.Session
	caster  *render.Caster
	metrics *status.Registry
	buf     *render.Buffer
	keys    holds

	seed    uint64
	showMap bool
	last    march.Event
	notice  string
}

func newViewer(screen tcell.Screen, s *sim.Session, c *render.Caster, metrics *status.Registry, seed uint64) *viewer {
	w, h := screen.Size()
	return &viewer{
		screen:  screen,
		session: s,
		caster:  c,
		metrics: metrics,
		buf:     render.NewBuffer(w, h),
		seed:    seed,
		showMap: true,
	}
}

// run returns nil on quit, or the first frame that failed to render
func (v *viewer) run() error {
	tick := v.session.Config().Render.Tick
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	for {
		select {
		case ev := <-eventChan:
			if !v.handleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			ev := v.session.Tick(v.keys.input(now), tick)
			if ev.Switched || ev.Portal || ev.Chaos || ev.Fractured {
				v.last = ev
			}
			if err := v.draw(); err != nil {
				return err
			}
		}
	}
}

func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		now := ev.When()
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.keys.press(actForward, now)
		case tcell.KeyDown:
			v.keys.press(actBack, now)
		case tcell.KeyLeft:
			v.keys.press(actTurnLeft, now)
		case tcell.KeyRight:
			v.keys.press(actTurnRight, now)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'w':
				v.keys.press(actForward, now)
			case 's':
				v.keys.press(actBack, now)
			case 'a':
				v.keys.press(actStrafeLeft, now)
			case 'd':
				v.keys.press(actStrafeRight, now)
			case 'q':
				v.keys.press(actTurnLeft, now)
			case 'e':
				v.keys.press(actTurnRight, now)
			case 'm':
				v.showMap = !v.showMap
			case 'r':
				v.regenerate(v.seed + 1)
			case 'Q':
				return false
			}
		}
	case *tcell.EventResize:
		w, h := v.screen.Size()
		v.buf.Resize(w, h)
		v.screen.Sync()
	}
	return true
}

func (v *viewer) regenerate(seed uint64) {
	v.keys.release()
	if err := v.session.Regenerate(seed); err != nil {
		v.notice = fmt.Sprintf("seed %d failed: %v", seed, err)
		return
	}
	v.seed = seed
	v.last = march.Event{}
	v.notice = fmt.Sprintf("seed %d", seed)
	logger.Log.WithFields(logrus.Fields{"seed": seed}).Info("viewer regenerated world")
}

func (v *viewer) draw() error {
	width, height := v.buf.Bounds()
	if width <= 0 || height <= 1 {
		return nil
	}
	f := v.session.Snapshot()
	cfg := v.session.Config()

	cols, err := v.caster.Cast(f, width, cfg.Render.FOV)
	if err != nil {
		return err
	}
	view := render.View{
		Height:      height - 1,
		MaxDistance: cfg.March.MaxDistance,
		Reality:     f.Traveler.Reality,
		Tick:        f.Traveler.Tick,
	}
	v.buf.Clear()
	v.buf.DrawStrips(view.ShadeAll(cols), 1)
	v.drawHUD(f, width)
	if v.showMap {
		v.drawMinimap(f, width)
	}
	v.flush()
	return nil
}

func (v *viewer) drawHUD(f sim.Frame, width int) {
	tr := f.Traveler
	hud := fmt.Sprintf(" %s  reality %.2f  gravity %s  seed %d  %.1fms ",
		tr.Ctx, tr.Reality, tr.Gravity, v.seed, v.metrics.Floats.Get(status.KeyFrameMillis).Get())
	if tr.Inverted {
		hud += "inverted "
	}
	if v.last.Switched {
		hud += fmt.Sprintf("| %s -> %s ", v.last.From, v.last.To)
	}
	if v.notice != "" {
		hud += "| " + v.notice + " "
	}
	for x := 0; x < width; x++ {
		v.buf.Set(x, 0, ' ', render.RgbBackground, render.RgbCeiling)
	}
	v.buf.DrawText(0, 0, hud, render.RgbWall, render.RgbCeiling)
}

// drawMinimap shows the active grid around the traveler in the top-right corner
func (v *viewer) drawMinimap(f sim.Frame, width int) {
	g := f.World.GridFor(f.Traveler.Ctx)
	if g == nil {
		return
	}
	size := 2*minimapRadius + 1
	left := width - size - 1
	if left < 0 {
		return
	}
	at := g.ToCell(f.Traveler.Pos.X, f.Traveler.Pos.Y)
	for dy := -minimapRadius; dy <= minimapRadius; dy++ {
		for dx := -minimapRadius; dx <= minimapRadius; dx++ {
			c := grid.Coord{X: at.X + dx, Y: at.Y + dy}
			x, y := left+dx+minimapRadius, 1+dy+minimapRadius
			if !g.InBounds(c) {
				v.buf.Set(x, y, ' ', render.RgbBackground, render.RgbBackground)
				continue
			}
			cell := g.CellAt(c)
			fg := render.KindColor(cell.Kind)
			if cell.Kind == grid.Empty {
				fg = render.RgbFloor
			}
			v.buf.Set(x, y, rune(cell.Glyph()), fg, render.RgbBackground)
		}
	}
	// Sight line two cells out along the view heading
	h := f.Traveler.Heading
	for _, r := range [...]float64{1.5, 2.5} {
		sx := left + minimapRadius + int(math.Round(vmath.FastCos(h)*r))
		sy := 1 + minimapRadius + int(math.Round(vmath.FastSin(h)*r))
		if v.buf.Get(sx, sy).Rune == rune(grid.EmptyCell.Glyph()) {
			v.buf.Set(sx, sy, '·', render.RgbHypercubeExit, render.RgbBackground)
		}
	}
	arrows := [...]rune{grid.North: '^', grid.East: '>', grid.South: 'v', grid.West: '<'}
	v.buf.Set(left+minimapRadius, 1+minimapRadius, arrows[grid.DirectionOf(f.Traveler.Heading)], render.RgbHypercubeExit, render.RgbBackground)
}

func tcellColor(c render.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (v *viewer) flush() {
	v.buf.Range(func(x, y int, c render.Cell) {
		style := tcell.StyleDefault.Foreground(tcellColor(c.Fg)).Background(tcellColor(c.Bg))
		v.screen.SetContent(x, y, c.Rune, nil, style)
	})
	v.screen.Show()
}
