package main

import (
	"time"

	"github.com/lixenwraith/tesseract/sim"
)

// Terminals report presses and auto-repeat, never releases; a key counts as
// held until holdWindow passes without another repeat
const holdWindow = 150 * time.Millisecond

type action uint8

const (
	actForward action = iota
	actBack
	actStrafeLeft
	actStrafeRight
	actTurnLeft
	actTurnRight
	actionCount
)

type holds struct {
	last [actionCount]time.Time
}

func (h *holds) press(a action, now time.Time) {
	h.last[a] = now
}

func (h *holds) active(a action, now time.Time) bool {
	t := h.last[a]
	return !t.IsZero() && now.Sub(t) < holdWindow
}

func (h *holds) axis(pos, neg action, now time.Time) float64 {
	v := 0.0
	if h.active(pos, now) {
		v++
	}
	if h.active(neg, now) {
		v--
	}
	return v
}

// input folds held keys into one tick of intent
func (h *holds) input(now time.Time) sim.Input {
	return sim.Input{
		Forward: h.axis(actForward, actBack, now),
		Strafe:  h.axis(actStrafeRight, actStrafeLeft, now),
		Turn:    h.axis(actTurnRight, actTurnLeft, now),
	}
}

func (h *holds) release() {
	h.last = [actionCount]time.Time{}
}
