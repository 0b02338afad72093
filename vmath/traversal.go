package vmath

import (
	"math"
)

// Axis identifies which cell boundary a traversal step crossed
type Axis uint8

const (
	AxisNone Axis = iota // start cell, no boundary crossed
	AxisX                // crossed a vertical boundary (x = const)
	AxisY                // crossed a horizontal boundary (y = const)
)

// GridTraverser is a zero-allocation iterator for DDA grid traversal over a segment
// Coordinates are in cell units; cell (i, j) covers [i, i+1) × [j, j+1)
// Corner ties step X first so diagonal gaps between two cells are never skipped
type GridTraverser struct {
	currX, currY int
	stepX, stepY int

	tMaxX, tMaxY     float64
	tDeltaX, tDeltaY float64

	t    float64
	axis Axis

	started bool
	done    bool
}

// NewGridTraverser creates a new iterator from (x1, y1) to (x2, y2)
func NewGridTraverser(x1, y1, x2, y2 float64) GridTraverser {
	ix, iy := int(math.Floor(x1)), int(math.Floor(y1))

	t := GridTraverser{
		currX: ix, currY: iy,
		stepX: 1, stepY: 1,
	}

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		t.stepX = -1
		dx = -dx
	}
	if dy < 0 {
		t.stepY = -1
		dy = -dy
	}

	if dx == 0 {
		t.tMaxX = math.Inf(1)
		t.tDeltaX = math.Inf(1)
	} else {
		t.tDeltaX = 1 / dx
		if t.stepX > 0 {
			t.tMaxX = (float64(ix+1) - x1) / dx
		} else {
			t.tMaxX = (x1 - float64(ix)) / dx
		}
	}

	if dy == 0 {
		t.tMaxY = math.Inf(1)
		t.tDeltaY = math.Inf(1)
	} else {
		t.tDeltaY = 1 / dy
		if t.stepY > 0 {
			t.tMaxY = (float64(iy+1) - y1) / dy
		} else {
			t.tMaxY = (y1 - float64(iy)) / dy
		}
	}

	return t
}

// Next advances the traverser to the next cell
// Returns true if a valid cell is available via Pos()
func (t *GridTraverser) Next() bool {
	if t.done {
		return false
	}
	if !t.started {
		t.started = true
		return true
	}

	if t.tMaxX <= t.tMaxY {
		if t.tMaxX > 1 {
			t.done = true
			return false
		}
		t.t = t.tMaxX
		t.axis = AxisX
		t.currX += t.stepX
		t.tMaxX += t.tDeltaX
	} else {
		if t.tMaxY > 1 {
			t.done = true
			return false
		}
		t.t = t.tMaxY
		t.axis = AxisY
		t.currY += t.stepY
		t.tMaxY += t.tDeltaY
	}
	return true
}

// Pos returns the current grid coordinates
func (t *GridTraverser) Pos() (int, int) {
	return t.currX, t.currY
}

// Entry returns the segment parameter in [0, 1] at which the current cell was entered
func (t *GridTraverser) Entry() float64 {
	return t.t
}

// Axis returns the boundary crossed to enter the current cell
func (t *GridTraverser) Axis() Axis {
	return t.axis
}

// StepX returns the x stepping sign (+1 or -1)
func (t *GridTraverser) StepX() int {
	return t.stepX
}

// StepY returns the y stepping sign (+1 or -1)
func (t *GridTraverser) StepY() int {
	return t.stepY
}
