// Package app connects the hal to the fractal packages: it owns the viewport store
// and the compute worker and turns key events into viewport writes.
package app

import (
	"context"
	"errors"
	"fmt"

	"mandelzoom/fractal/compute"
	"mandelzoom/fractal/escape"
	"mandelzoom/fractal/hud"
	"mandelzoom/fractal/palette"
	"mandelzoom/fractal/viewport"
	"mandelzoom/hal"
	"mandelzoom/internal/buildinfo"
)

// One pan action moves the view by width/PanDivisor pixels.
const PanDivisor = 10

type App struct {
	log    hal.Logger
	keys   <-chan hal.KeyEvent
	store  *viewport.Store
	worker *compute.Worker
	pan    int
}

// Program adapts New to a hal.NewProgramFunc.
func Program(cfg Config) hal.NewProgramFunc {
	return func(h hal.HAL) (hal.Program, error) {
		a, err := New(h, cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// New builds the store from cfg and starts the compute worker on h's framebuffer.
func New(h hal.HAL, cfg Config) (*App, error) {
	d := h.Display()
	if d == nil || d.Framebuffer() == nil {
		return nil, errors.New("app: no framebuffer")
	}
	fb := d.Framebuffer()
	w, ht := fb.Width(), fb.Height()

	pal, err := palette.ByName(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	v, err := cfg.Viewport(w, ht)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	store, err := viewport.NewStore(v, viewport.DefaultLimits(w, ht))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	lc := compute.Config{
		Workers:       cfg.Workers,
		Engine:        escape.Engine{Metric: cfg.Metric},
		Palette:       pal,
		Precision:     cfg.Precision,
		SkipUnchanged: cfg.SkipUnchanged,
		MaxFPS:        cfg.MaxFPS,
		LogEvery:      cfg.LogEvery,
	}
	if cfg.HUD {
		lc.Overlay = hud.New()
	}
	loop, err := compute.New(store, fb, h.Logger(), lc)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		log:   h.Logger(),
		store: store,
		pan:   w / PanDivisor,
	}
	if a.pan < 1 {
		a.pan = 1
	}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			a.keys = kbd.Events()
		}
	}

	a.log.WriteLineString(fmt.Sprintf("%s: %dx%d %s metric=%s precision=%s",
		buildinfo.String(), w, ht, v, cfg.Metric, cfg.Precision))
	a.worker = loop.Start(context.Background())
	return a, nil
}

// Store exposes the shared viewport.
func (a *App) Store() *viewport.Store { return a.store }

// Step applies all pending key events. It returns the worker's error once the worker
// has stopped and hal.ErrQuit on a quit action.
func (a *App) Step() error {
	select {
	case <-a.worker.Done():
		if err := a.worker.Err(); err != nil {
			return err
		}
		return hal.ErrQuit
	default:
	}

	for {
		select {
		case ev := <-a.keys:
			if err := a.Apply(ActionFor(ev)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Apply performs one action on the store. Rejected viewport writes are logged and
// leave the view as it was; only ActionQuit returns an error.
func (a *App) Apply(act Action) error {
	var err error
	switch act {
	case ActionNone:
		return nil
	case ActionQuit:
		return hal.ErrQuit
	case ActionZoomIn:
		err = a.store.ZoomIn()
	case ActionZoomOut:
		err = a.store.ZoomOut()
	case ActionPanLeft:
		err = a.store.Pan(-a.pan, 0)
	case ActionPanRight:
		err = a.store.Pan(a.pan, 0)
	case ActionPanUp:
		err = a.store.Pan(0, -a.pan)
	case ActionPanDown:
		err = a.store.Pan(0, a.pan)
	case ActionReset:
		err = a.store.Reset()
	case ActionMoreIterations:
		err = a.store.AdjustIterations(iterationStep(a.store.Snapshot().MaxIterations))
	case ActionFewerIterations:
		err = a.store.AdjustIterations(-iterationStep(a.store.Snapshot().MaxIterations))
	default:
		err = fmt.Errorf("unknown action %d", act)
	}
	if err != nil {
		a.log.WriteLineString(fmt.Sprintf("app: %s: %v", act, err))
	}
	return nil
}

// iterationStep changes the budget by a quarter, at least by one.
func iterationStep(n int) int {
	if s := n / 4; s > 1 {
		return s
	}
	return 1
}

// Close stops the worker. A worker that stopped because the framebuffer closed is not
// an error.
func (a *App) Close() error {
	err := a.worker.Stop()
	if errors.Is(err, hal.ErrClosed) {
		return nil
	}
	return err
}
