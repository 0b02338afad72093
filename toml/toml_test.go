package toml

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

type marchSection struct {
	BaseStep float64 `toml:"base_step"`
	MaxFourD int     `toml:"max_4d_transitions"`
}

type viewSection struct {
	Tick  time.Duration `toml:"tick"`
	Addr  string        `toml:"addr"`
	Salt  uint64        `toml:"salt"`
	Tags  []string      `toml:"tags,omitempty"`
	Debug bool          `toml:"debug"`
}

type document struct {
	Name  string            `toml:"name"`
	March marchSection      `toml:"march"`
	View  *viewSection      `toml:"view"`
	Extra map[string]string `toml:"extra,omitempty"`
}

func TestUnmarshal_OverDefaults(t *testing.T) {
	input := []byte(`
# tuning
name = "tesseract"

[march]
base_step = 0.1 # cells
max_4d_transitions = 5

[view]
tick = "40ms"
addr = 'localhost:9000'
salt = 0xff
tags = [
  "a",
  "b",
]

[extra]
mode = "chaos"
`)
	doc := document{March: marchSection{BaseStep: 0.05, MaxFourD: 3}}
	if err := Unmarshal(input, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if doc.Name != "tesseract" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.March.BaseStep != 0.1 || doc.March.MaxFourD != 5 {
		t.Errorf("March = %+v", doc.March)
	}
	if doc.View == nil {
		t.Fatal("View pointer not allocated")
	}
	if doc.View.Tick != 40*time.Millisecond || doc.View.Addr != "localhost:9000" || doc.View.Salt != 255 {
		t.Errorf("View = %+v", *doc.View)
	}
	if len(doc.View.Tags) != 2 || doc.View.Tags[1] != "b" {
		t.Errorf("Tags = %v", doc.View.Tags)
	}
	if doc.Extra["mode"] != "chaos" {
		t.Errorf("Extra = %v", doc.Extra)
	}
}

func TestUnmarshal_KeepsAbsentFields(t *testing.T) {
	doc := document{March: marchSection{BaseStep: 0.05, MaxFourD: 3}}
	if err := Unmarshal([]byte("march.max_4d_transitions = 7\n"), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.March.BaseStep != 0.05 || doc.March.MaxFourD != 7 {
		t.Errorf("March = %+v", doc.March)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", "[march]\nstep = 1\n"},
		{"int into string", "name = 4\n"},
		{"float into int", "[march]\nmax_4d_transitions = 1.5\n"},
		{"negative uint", "[view]\nsalt = -1\n"},
		{"bad duration", "[view]\ntick = \"soon\"\n"},
		{"duplicate key", "name = \"a\"\nname = \"b\"\n"},
		{"table twice", "[march]\n[march]\n"},
		{"missing value", "name =\n"},
		{"two values", "name = \"a\" \"b\"\n"},
		{"unterminated", "name = \"abc\n"},
		{"scalar as table", "name = \"a\"\n[name]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc document
			if err := Unmarshal([]byte(tt.input), &doc); err == nil {
				t.Errorf("accepted %q", tt.input)
			}
		})
	}

	var doc document
	err := Unmarshal([]byte("[march]\nstep = 1\n"), &doc)
	if !errors.Is(err, ErrUnknownKey) || !strings.Contains(err.Error(), "march.step") {
		t.Errorf("unknown key error = %v", err)
	}

	_, err = Parse([]byte("a = 1\nb = ?\n"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Errorf("ParseError = %v", err)
	}
}

func TestParse_Values(t *testing.T) {
	tbl, err := Parse([]byte(`
i = -1_000
f = 2.5e-1
h = 0x10
ninf = -inf
s = "tab\there \"q\""
arr = [1, 2.0, "x", true]
inline = { a.b = 1, c = "d" }
a.b.c = false
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if tbl["i"] != int64(-1000) || tbl["f"] != 0.25 || tbl["h"] != int64(16) {
		t.Errorf("numbers: %v %v %v", tbl["i"], tbl["f"], tbl["h"])
	}
	if f, _ := tbl["ninf"].(float64); !math.IsInf(f, -1) {
		t.Errorf("ninf = %v", tbl["ninf"])
	}
	if tbl["s"] != "tab\there \"q\"" {
		t.Errorf("s = %q", tbl["s"])
	}
	if arr, _ := tbl["arr"].([]any); len(arr) != 4 || arr[3] != true {
		t.Errorf("arr = %v", tbl["arr"])
	}
	inline, _ := tbl["inline"].(Table)
	if ab, _ := inline["a"].(Table); ab["b"] != int64(1) || inline["c"] != "d" {
		t.Errorf("inline = %v", inline)
	}
	a, _ := tbl["a"].(Table)
	if b, _ := a["b"].(Table); b["c"] != false {
		t.Errorf("dotted = %v", tbl["a"])
	}
}

func TestMarshal_ReadsBack(t *testing.T) {
	in := document{
		Name:  "x\"y",
		March: marchSection{BaseStep: 1, MaxFourD: 3},
		View:  &viewSection{Tick: 33 * time.Millisecond, Addr: ":8090", Salt: 42, Debug: true},
	}
	data, err := Marshal(&in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	text := string(data)
	for _, want := range []string{"base_step = 1.0", "[march]", "[view]", `tick = "33ms"`} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "tags") || strings.Contains(text, "[extra]") {
		t.Errorf("omitempty fields written:\n%s", text)
	}
	if strings.Index(text, "name =") > strings.Index(text, "[march]") {
		t.Errorf("root scalar after sub-table:\n%s", text)
	}

	var out document
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("read back: %v\n%s", err, text)
	}
	if out.Name != in.Name || out.March != in.March {
		t.Errorf("read back %+v", out)
	}
	if v := out.View; v == nil || v.Tick != in.View.Tick || v.Addr != in.View.Addr || v.Salt != 42 || !v.Debug {
		t.Errorf("read back view %+v", v)
	}
}

func TestMarshal_RejectsNonTable(t *testing.T) {
	if _, err := Marshal(3); err == nil {
		t.Error("scalar root accepted")
	}
	var p *document
	if _, err := Marshal(p); err == nil {
		t.Error("nil root accepted")
	}
}
