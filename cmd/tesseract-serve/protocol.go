package main

import (
	"github.com/lixenwraith/tesseract/render"
	"github.com/lixenwraith/tesseract/sim"
	"github.com/lixenwraith/tesseract/vmath"
)

// Command types accepted from clients
const (
	CommandInput      = "input"
	CommandRegenerate = "regenerate"
	CommandConfigure  = "configure"
)

// maxColumns bounds the per-frame column count a client may request
const maxColumns = 1024

// ClientCommand is one message from a client
type ClientCommand struct {
	Type    string  `json:"type" jsonschema:"enum=input,enum=regenerate,enum=configure,description=Command kind"`
	Forward float64 `json:"forward,omitempty" jsonschema:"description=Held forward intent from -1 to 1"`
	Strafe  float64 `json:"strafe,omitempty" jsonschema:"description=Held rightward intent from -1 to 1"`
	Turn    float64 `json:"turn,omitempty" jsonschema:"description=Held clockwise turn intent from -1 to 1"`
	Seed    uint64  `json:"seed,omitempty" jsonschema:"description=World seed for regenerate"`
	Columns int     `json:"columns,omitempty" jsonschema:"description=Columns per frame for configure"`
	FOV     float64 `json:"fov,omitempty" jsonschema:"description=Field of view in radians for configure"`
}

// ColumnMessage is one cast column
type ColumnMessage struct {
	Distance float64 `json:"d" jsonschema:"description=Fisheye corrected distance"`
	Raw      float64 `json:"raw" jsonschema:"description=Traced distance along the ray"`
	Kind     string  `json:"kind" jsonschema:"description=Cell kind that ended the ray"`
	Offset   float64 `json:"offset" jsonschema:"description=Texture offset along the surface from 0 to 1"`
	Edge     string  `json:"edge,omitempty" jsonschema:"enum=x,enum=y"`
	Outcome  string  `json:"outcome" jsonschema:"enum=hit,enum=switch,enum=exhausted,enum=loop"`
	Context  string  `json:"context"`
	Color    string  `json:"color" jsonschema:"description=Shaded surface color as #rrggbb"`
	Artifact string  `json:"artifact,omitempty"`
}

// FrameMessage is one streamed view
type FrameMessage struct {
	Type    string          `json:"type" jsonschema:"enum=frame"`
	Tick    uint64          `json:"tick"`
	Version uint64          `json:"version" jsonschema:"description=World installs since the session started"`
	Seed    uint64          `json:"seed"`
	Context string          `json:"context"`
	Reality float64         `json:"reality"`
	Gravity string          `json:"gravity"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Heading float64         `json:"heading"`
	Notice  string          `json:"notice,omitempty" jsonschema:"description=Result of the last regenerate or configure command"`
	Columns []ColumnMessage `json:"columns"`
}

// Protocol documents both directions of the stream for the schema endpoint
type Protocol struct {
	Command ClientCommand `json:"command"`
	Frame   FrameMessage  `json:"frame"`
}

func edgeName(a vmath.Axis) string {
	switch a {
	case vmath.AxisX:
		return "x"
	case vmath.AxisY:
		return "y"
	}
	return ""
}

// colorRows is the virtual screen height used to shade streamed columns
const colorRows = 64

// newFrame encodes a snapshot and its cast columns
func newFrame(f sim.Frame, cols []render.Column, maxDistance float64, notice string) FrameMessage {
	tr := f.Traveler
	view := render.View{Height: colorRows, MaxDistance: maxDistance, Reality: tr.Reality, Tick: tr.Tick}
	msg := FrameMessage{
		Type:    "frame",
		Tick:    tr.Tick,
		Version: f.Version,
		Seed:    f.World.Seed,
		Context: tr.Ctx.String(),
		Reality: tr.Reality,
		Gravity: tr.Gravity.String(),
		X:       tr.Pos.X,
		Y:       tr.Pos.Y,
		Heading: tr.Heading,
		Notice:  notice,
		Columns: make([]ColumnMessage, len(cols)),
	}
	for i, c := range cols {
		msg.Columns[i] = ColumnMessage{
			Distance: c.Distance,
			Raw:      c.Raw,
			Kind:     c.Cell.Kind.String(),
			Offset:   c.SurfaceOffset,
			Edge:     edgeName(c.Edge),
			Outcome:  c.Outcome.String(),
			Context:  c.Context.String(),
			Color:    view.Shade(i, c).Fg.Hex(),
			Artifact: c.Artifact,
		}
	}
	return msg
}
