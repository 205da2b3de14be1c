package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"mandelzoom/app"
	"mandelzoom/fractal/palette"
	"mandelzoom/fractal/viewport"
	"mandelzoom/hal"
	"mandelzoom/internal/buildinfo"
)

func main() {
	cfg := app.DefaultConfig()
	var (
		headless hal.HeadlessConfig
		terminal hal.TerminalConfig
		window   hal.WindowConfig
		runHead  bool
		runTerm  bool
		version  bool
	)

	flag.IntVar(&cfg.Width, "width", cfg.Width, "Framebuffer width in pixels.")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Framebuffer height in pixels.")
	flag.Var(&cfg.CenterX, "center-x", "Real part of the view center (decimal, full precision).")
	flag.Var(&cfg.CenterY, "center-y", "Imaginary part of the view center (decimal, full precision).")
	flag.Var(&cfg.Zoom, "zoom", "Plane distance between two adjacent pixels.")
	flag.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "Iteration budget per pixel.")
	flag.StringVar(&cfg.Preset, "preset", "", "Start at a named landmark: "+strings.Join(viewport.PresetNames(), ", ")+".")
	flag.StringVar(&cfg.Palette, "palette", cfg.Palette, "Color palette: "+strings.Join(palette.Names(), ", ")+".")
	flag.Var(&cfg.Metric, "metric", "Escape test: magnitude (|z|² > 4) or sumabs (|re|+|im| > 2).")
	flag.Var(&cfg.Precision, "precision", "Coordinate precision: fixed, float or auto.")
	flag.IntVar(&cfg.Workers, "workers", 0, "Row goroutines per frame (0 = GOMAXPROCS).")
	flag.BoolVar(&cfg.HUD, "hud", false, "Draw zoom, center and frame time over the image.")
	flag.BoolVar(&cfg.SkipUnchanged, "skip-unchanged", false, "Only render after the view changed.")
	flag.IntVar(&cfg.MaxFPS, "max-fps", 0, "Frame rate cap for the compute loop (0 = unlimited).")
	flag.IntVar(&cfg.LogEvery, "log-every", 0, "Log frame statistics every N frames (0 = never).")

	flag.BoolVar(&runHead, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 60, "Step rate in headless and terminal mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.Uint64Var(&headless.Frames, "frames", 0, "Stop after N presented frames in headless mode (0 = no limit).")
	flag.BoolVar(&runTerm, "terminal", false, "Draw in the terminal with half-block characters.")
	flag.IntVar(&window.Scale, "scale", 2, "Window size as a multiple of the framebuffer size.")
	flag.BoolVar(&version, "version", false, "Print the build identifier and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts := hal.Options{Width: cfg.Width, Height: cfg.Height}
	newProg := app.Program(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case runHead:
		err = hal.RunHeadless(ctx, newProg, opts, headless)
	case runTerm:
		terminal.Hz = headless.Hz
		err = hal.RunTerminal(ctx, newProg, opts, terminal)
	default:
		err = hal.RunWindow(newProg, opts, window)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
