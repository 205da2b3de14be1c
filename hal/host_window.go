//go:build cgo

package hal

import (
	"errors"

	"mandelzoom/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a desktop window that shows the newest presented frame and forwards
// keyboard input. It blocks until the window closes or the program quits.
func RunWindow(newProg NewProgramFunc, opts Options, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	if cfg.Title == "" {
		cfg.Title = buildinfo.Name + " (" + buildinfo.Short() + ")"
	}

	h := New(opts).(*hostHAL)
	prog, err := h.start(newProg)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, prog: prog}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(h.fb.width*cfg.Scale, h.fb.height*cfg.Scale)
	ebiten.SetTPS(cfg.TPS)
	runErr := ebiten.RunGame(g)
	if errors.Is(runErr, ebiten.Termination) {
		runErr = nil
	}
	return errors.Join(runErr, h.stop(prog))
}

type hostGame struct {
	h     *hostHAL
	prog  Program
	fbImg *ebiten.Image
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	if err := g.prog.Step(); err != nil {
		if errors.Is(err, ErrQuit) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	g.fbImg.WritePixels(fb.latest())
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
