// Package compute runs the background loop that turns viewport snapshots into
// presented frames.
package compute

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"mandelzoom/fractal/escape"
	"mandelzoom/fractal/fixed"
	"mandelzoom/fractal/grid"
	"mandelzoom/fractal/palette"
	"mandelzoom/fractal/render"
	"mandelzoom/fractal/viewport"
	"mandelzoom/hal"

	"golang.org/x/sync/errgroup"
)

// ErrPresent wraps a presentation failure. It ends Run.
var ErrPresent = errors.New("compute: present failed")

// Overlay draws on top of a rendered frame before it is presented.
type Overlay interface {
	Draw(buf []byte, width, height int, snap viewport.Snapshot, stats Stats)
}

type Config struct {
	// Workers is the number of goroutines filling rows (default GOMAXPROCS).
	Workers int
	Engine  escape.Engine
	// Palette defaults to palette.Banded.
	Palette   palette.Func
	Precision Precision
	// SkipUnchanged makes Run wait for a viewport write instead of re-rendering
	// an unchanged snapshot.
	SkipUnchanged bool
	// MaxFPS caps the frame rate of Run (0 = unlimited).
	MaxFPS  int
	Overlay Overlay
	// LogEvery logs frame stats every N frames (0 = never).
	LogEvery int
}

// Stats describes one rendered frame.
type Stats struct {
	Frame    uint64
	Gen      uint64
	Duration time.Duration
	// Interior counts pixels that never escaped.
	Interior int
	// Overflowed counts pixels whose coordinate left the fixed-point range.
	Overflowed int
	// Float is set when the frame used float64 coordinates.
	Float bool
}

// Loop owns the grid and the per-axis coordinate tables; none of it is shared
// outside a frame.
type Loop struct {
	store *viewport.Store
	fb    hal.Framebuffer
	log   hal.Logger
	cfg   Config

	grid   *grid.Grid
	xs, ys []fixed.Real
	fx, fy []float64
	rows   []rowStats

	frame   uint64
	lastGen uint64
}

type rowStats struct {
	interior, overflowed int
}

func New(store *viewport.Store, fb hal.Framebuffer, log hal.Logger, cfg Config) (*Loop, error) {
	if fb.Format() != hal.PixelFormatRGBA8888 {
		return nil, fmt.Errorf("compute: unsupported pixel format %d", fb.Format())
	}
	w, h := fb.Width(), fb.Height()
	g, err := grid.New(w, h, escape.Interior)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Palette == nil {
		cfg.Palette = palette.Banded
	}
	return &Loop{
		store: store,
		fb:    fb,
		log:   log,
		cfg:   cfg,
		grid:  g,
		xs:    make([]fixed.Real, w),
		ys:    make([]fixed.Real, h),
		fx:    make([]float64, w),
		fy:    make([]float64, h),
		rows:  make([]rowStats, h),
	}, nil
}

// Frame renders and presents one frame from a fresh snapshot.
func (l *Loop) Frame(ctx context.Context) (Stats, error) {
	return l.render(ctx, l.store.Snapshot())
}

func (l *Loop) render(ctx context.Context, snap viewport.Snapshot) (Stats, error) {
	start := time.Now()
	w, h := l.grid.Width(), l.grid.Height()
	useFloat := l.cfg.Precision.useFloat(snap.Zoom)

	for x := range l.xs {
		l.xs[x] = viewport.Coord(snap.CenterX, snap.Zoom, x, w)
		l.fx[x] = l.xs[x].Float64()
	}
	for y := range l.ys {
		l.ys[y] = viewport.Coord(snap.CenterY, snap.Zoom, y, h)
		l.fy[y] = l.ys[y].Float64()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Workers)
	for y := 0; y < h; y++ {
		y := y
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := l.grid.Row(y)
			if err != nil {
				return err
			}
			l.rows[y] = l.fillRow(row, y, snap.MaxIterations, useFloat)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st := Stats{Gen: snap.Gen, Float: useFloat}
	for _, r := range l.rows {
		st.Interior += r.interior
		st.Overflowed += r.overflowed
	}

	buf := l.fb.Buffer()
	if err := render.Frame(l.grid, l.cfg.Palette, buf); err != nil {
		return st, err
	}
	st.Duration = time.Since(start)
	if l.cfg.Overlay != nil {
		l.cfg.Overlay.Draw(buf, w, h, snap, st)
	}
	if err := l.fb.Present(); err != nil {
		return st, fmt.Errorf("%w: %w", ErrPresent, err)
	}

	l.frame++
	st.Frame = l.frame
	if st.Overflowed > 0 {
		l.log.WriteLineString(fmt.Sprintf("compute: frame %d: %d pixels outside the fixed-point range", st.Frame, st.Overflowed))
	}
	return st, nil
}

func (l *Loop) fillRow(row []float64, y, maxIter int, useFloat bool) rowStats {
	var rs rowStats
	e := l.cfg.Engine
	ci, fci := l.ys[y], l.fy[y]
	for x := range row {
		var v float64
		if useFloat {
			v = e.DivergenceFloat(l.fx[x], fci, maxIter)
		} else {
			cr := l.xs[x]
			if cr.Overflowed() || ci.Overflowed() {
				rs.overflowed++
			}
			v = e.Divergence(cr, ci, maxIter)
		}
		if v == escape.Interior {
			rs.interior++
		}
		row[x] = v
	}
	return rs
}

// Run renders frames until ctx is cancelled, which returns nil, or a frame fails,
// which is logged and returned. Nothing is retried.
func (l *Loop) Run(ctx context.Context) error {
	var limit <-chan time.Time
	if l.cfg.MaxFPS > 0 {
		t := time.NewTicker(time.Second / time.Duration(l.cfg.MaxFPS))
		defer t.Stop()
		limit = t.C
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		snap := l.store.Snapshot()
		if l.cfg.SkipUnchanged && l.frame > 0 && snap.Gen == l.lastGen {
			var err error
			if snap, err = l.store.Wait(ctx, l.lastGen); err != nil {
				return nil
			}
		}

		st, err := l.render(ctx, snap)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.WriteLineString(fmt.Sprintf("compute: stopped: %v", err))
			return err
		}
		l.lastGen = snap.Gen

		if l.cfg.LogEvery > 0 && st.Frame%uint64(l.cfg.LogEvery) == 0 {
			l.log.WriteLineString(fmt.Sprintf("compute: frame %d gen %d %v interior=%d %s",
				st.Frame, st.Gen, st.Duration.Round(time.Microsecond), st.Interior, snap.Viewport))
		}

		if limit != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-limit:
			}
		}
	}
}
