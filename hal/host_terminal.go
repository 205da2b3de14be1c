package hal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TerminalConfig controls the terminal runner.
type TerminalConfig struct {
	// Hz is the step and redraw rate.
	Hz int
}

// RunTerminal shows frames in the terminal with one upper-half-block cell per two
// pixel rows, scaled to the terminal size. Log lines are held until the terminal is
// restored and then written to stderr.
func RunTerminal(ctx context.Context, newProg NewProgramFunc, opts Options, cfg TerminalConfig) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	logger := &heldLogger{}
	defer logger.flush(os.Stderr)
	defer screen.Fini()

	return runTerminal(ctx, screen, newHost(opts, logger), newProg, cfg)
}

func runTerminal(ctx context.Context, screen tcell.Screen, h *hostHAL, newProg NewProgramFunc, cfg TerminalConfig) (err error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid terminal hz: %d", cfg.Hz)
	}

	prog, err := h.start(newProg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, h.stop(prog)) }()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ke, ok := translateKey(ev); ok {
					h.kbd.emit(ke)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-t.C:
			if err := prog.Step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			drawHalfBlocks(screen, h.fb.latest(), h.fb.width, h.fb.height)
			screen.Show()
		}
	}
}

var tcellKeys = map[tcell.Key]KeyCode{
	tcell.KeyUp:     KeyUp,
	tcell.KeyDown:   KeyDown,
	tcell.KeyLeft:   KeyLeft,
	tcell.KeyRight:  KeyRight,
	tcell.KeyEnter:  KeyEnter,
	tcell.KeyEscape: KeyEscape,
	tcell.KeyHome:   KeyHome,
	tcell.KeyPgUp:   KeyPageUp,
	tcell.KeyPgDn:   KeyPageDown,
	// The terminal is in raw mode, so ^C arrives as a key instead of a signal.
	tcell.KeyCtrlC: KeyEscape,
}

// translateKey maps a tcell key to a press event. Terminals do not report releases.
func translateKey(ev *tcell.EventKey) (KeyEvent, bool) {
	if ev.Key() == tcell.KeyRune {
		return KeyEvent{Press: true, Rune: ev.Rune()}, true
	}
	code, ok := tcellKeys[ev.Key()]
	if !ok {
		return KeyEvent{}, false
	}
	return KeyEvent{Code: code, Press: true}, true
}

// drawHalfBlocks samples the w×h RGBA frame onto the whole screen. Each cell shows two
// pixel rows: the foreground of '▀' is the upper one, the background the lower one.
func drawHalfBlocks(screen tcell.Screen, pix []byte, w, h int) {
	sw, sh := screen.Size()
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 || len(pix) < w*h*4 {
		return
	}
	rows := sh * 2
	for cy := 0; cy < sh; cy++ {
		top := 2 * cy * h / rows
		bot := (2*cy + 1) * h / rows
		for cx := 0; cx < sw; cx++ {
			px := cx * w / sw
			style := tcell.StyleDefault.
				Foreground(rgbAt(pix, w, px, top)).
				Background(rgbAt(pix, w, px, bot))
			screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
}

func rgbAt(pix []byte, w, x, y int) tcell.Color {
	i := (x + y*w) * 4
	return tcell.NewRGBColor(int32(pix[i]), int32(pix[i+1]), int32(pix[i+2]))
}
