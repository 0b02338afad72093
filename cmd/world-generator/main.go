package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/grid"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/mapgen"
	"github.com/lixenwraith/tesseract/nested"
	"github.com/lixenwraith/tesseract/world"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults when empty)")
	seed := flag.Uint64("seed", 1, "Generation seed")
	count := flag.Int("n", 1, "Number of consecutive seeds to generate")
	printConfig := flag.Bool("print-config", false, "Print the effective config and exit")
	quiet := flag.Bool("q", false, "Print statistics only")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	failed := 0
	for i := 0; i < max(*count, 1); i++ {
		s := *seed + uint64(i)
		start := time.Now()
		w, err := mapgen.Regenerate(s, cfg)
		dur := time.Since(start)
		if err != nil {
			logger.Log.WithField("seed", s).WithError(err).Error("generation failed")
			failed++
			continue
		}
		fmt.Printf("\n=== WORLD seed=%d (%v) ===\n", s, dur)
		printStats(os.Stdout, w)
		if !*quiet {
			dump(os.Stdout, w)
		}
	}
	if failed > 0 {
		os.Exit(2)
	}
}

func printStats(out io.Writer, w *world.World) {
	g := w.Grid
	fmt.Fprintf(out, "Grid: %dx%d cell=%.1f traversable=%d\n", g.Width, g.Height, g.CellSize, g.Traversable())
	fmt.Fprintf(out, "Spawn: (%.1f, %.1f) heading=%.2f\n", w.Spawn.X, w.Spawn.Y, w.SpawnHeading)
	fmt.Fprintf(out, "Portal pairs: %d  Fields: %d  Nested spaces: %d  Complexes: %d\n",
		w.Portals.Pairs(), w.Fields.Len(), w.Spaces.Len(), w.Hypercubes.Len())
}

// dump writes every grid of the world with the legend glyphs of grid.Cell
func dump(out io.Writer, w *world.World) {
	fmt.Fprintln(out, "\n-- normal space --")
	fmt.Fprint(out, w.Grid.String())

	for id := 0; id < w.Spaces.Len(); id++ {
		s := w.Spaces.Get(id)
		fmt.Fprintf(out, "\n-- nested %d (parent %d, entrance %d,%d, %s) --\n",
			s.ID, s.Parent, s.Entrance.X, s.Entrance.Y, describe(s.Mechanics, len(s.RecursiveRooms)))
		fmt.Fprint(out, s.Grid.String())
	}

	for id := 0; id < w.Hypercubes.Len(); id++ {
		c := w.Hypercubes.Get(id)
		fourD := 0
		for _, r := range c.Rooms {
			fourD += len(r.FourD)
		}
		fmt.Fprintf(out, "\n-- complex %d (%d rooms, entrance %d,%d, 4D faces %d) --\n",
			c.ID, len(c.Rooms), c.Entrance.X, c.Entrance.Y, fourD)
		fmt.Fprint(out, c.Layout().String())
	}

	fmt.Fprintln(out, "\nLegend:")
	for k := grid.Empty; k <= grid.FourDConnection; k++ {
		fmt.Fprintf(out, "  %c %v\n", grid.Of(k).Glyph(), k)
	}
}

func describe(m nested.Mechanics, rooms int) string {
	var tags []string
	if m.TimeDilation != 0 && m.TimeDilation != 1 {
		tags = append(tags, fmt.Sprintf("dilation %.1f", m.TimeDilation))
	}
	if m.GravityFlux {
		tags = append(tags, "gravity flux")
	}
	if m.RealityBleed > 0 {
		tags = append(tags, fmt.Sprintf("bleed %.2f", m.RealityBleed))
	}
	if m.PerspectiveInversion {
		tags = append(tags, "inversion")
	}
	if m.RecursiveScaling {
		tags = append(tags, fmt.Sprintf("%d recursive rooms", rooms))
	}
	if m.Mirror {
		tags = append(tags, "mirror")
	}
	if len(tags) == 0 {
		return "plain"
	}
	return strings.Join(tags, ", ")
}
