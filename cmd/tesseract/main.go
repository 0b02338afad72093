package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/render"
	"github.com/lixenwraith/tesseract/sim"
	"github.com/lixenwraith/tesseract/status"
)

const logDir = "logs"

var (
	configFlag = flag.String("config", "", "TOML tuning file (defaults when empty)")
	seedFlag   = flag.Uint64("seed", 0, "world seed (0 picks one from the clock)")
	debugFlag  = flag.Bool("debug", false, "write a debug log to "+logDir+"/"+logger.FileName)
	fovFlag    = flag.Float64("fov", 0, "field of view in radians (0 uses the configured value)")
)

func main() {
	flag.Parse()

	logger.Init()
	logFile, err := logger.SetupFile(logDir, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Log setup failed: %v (continuing without log)\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *fovFlag > 0 {
		cfg.Render.FOV = *fovFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	seed := *seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	metrics := status.NewRegistry()
	session, err := sim.New(cfg, seed, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate world: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic Recovery: Ensure terminal is reset even if the viewer crashes
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mTESSERACT CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	v := newViewer(screen, session, render.NewCaster(cfg, metrics), metrics, seed)
	if err := v.run(); err != nil {
		screen.Fini()
		logger.Log.WithError(err).Error("render failed")
		fmt.Fprintf(os.Stderr, "\n\x1b[31mTESSERACT CRASHED: %v\x1b[0m\n", err)
		os.Exit(1)
	}
	screen.Fini()
}
