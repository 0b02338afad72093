package space

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("space: invalid transition")

// Kind tags which coordinate frame is authoritative
type Kind uint8

const (
	Normal Kind = iota
	Nested
	Hypercube
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Nested:
		return "nested"
	case Hypercube:
		return "hypercube"
	}
	return "unknown"
}

// Context is the active frame of one traveler
// Space is meaningful for Nested; Complex and Room for Hypercube
type Context struct {
	Kind    Kind
	Space   int
	Complex int
	Room    int
}

// Top is the Normal-space context
var Top = Context{Kind: Normal, Space: -1, Complex: -1, Room: -1}

func InNested(id int) Context {
	return Context{Kind: Nested, Space: id, Complex: -1, Room: -1}
}

func InHypercube(complex, room int) Context {
	return Context{Kind: Hypercube, Space: -1, Complex: complex, Room: room}
}

func (c Context) String() string {
	switch c.Kind {
	case Nested:
		return fmt.Sprintf("nested(%d)", c.Space)
	case Hypercube:
		return fmt.Sprintf("hypercube(%d/%d)", c.Complex, c.Room)
	}
	return "normal"
}

func (c Context) IsNormal() bool {
	return c.Kind == Normal
}

func invalid(from Context, op string) error {
	return fmt.Errorf("%w: %s from %v", ErrInvalidTransition, op, from)
}

// EnterNested moves from Normal, or from a parent nested space through a
// chained entrance, into nested space id
func (c Context) EnterNested(id int) (Context, error) {
	if c.Kind == Hypercube || id < 0 {
		return c, invalid(c, "enter nested")
	}
	return InNested(id), nil
}

// ExitNested leaves a nested space to its parent; parent < 0 is Normal
func (c Context) ExitNested(parent int) (Context, error) {
	if c.Kind != Nested {
		return c, invalid(c, "exit nested")
	}
	if parent < 0 {
		return Top, nil
	}
	return InNested(parent), nil
}

// EnterHypercube moves from Normal into room 0 of complex
func (c Context) EnterHypercube(complex int) (Context, error) {
	if c.Kind != Normal || complex < 0 {
		return c, invalid(c, "enter hypercube")
	}
	return InHypercube(complex, 0), nil
}

// ExitHypercube returns to Normal through the complex's declared exit
func (c Context) ExitHypercube() (Context, error) {
	if c.Kind != Hypercube {
		return c, invalid(c, "exit hypercube")
	}
	return Top, nil
}

// MoveRoom switches room, possibly across complexes through a 4D link
func (c Context) MoveRoom(complex, room int) (Context, error) {
	if c.Kind != Hypercube || complex < 0 || room < 0 {
		return c, invalid(c, "move room")
	}
	return InHypercube(complex, room), nil
}
