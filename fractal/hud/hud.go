// Package hud draws a small text overlay with the current viewport onto a frame.
package hud

import (
	"fmt"
	"image/color"
	"time"

	"mandelzoom/fractal/compute"
	"mandelzoom/fractal/viewport"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

type Overlay struct {
	font   *tinyfont.Font
	fg     color.RGBA
	shadow color.RGBA
}

func New() *Overlay {
	return &Overlay{
		font:   &proggy.TinySZ8pt7b,
		fg:     color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		shadow: color.RGBA{A: 0xFF},
	}
}

// Lines returns the overlay text for one frame.
func Lines(snap viewport.Snapshot, st compute.Stats) []string {
	mode := "fixed"
	if st.Float {
		mode = "float"
	}
	return []string{
		"zoom " + snap.Zoom.Text('e', 4),
		"re " + snap.CenterX.Text('g', 24),
		"im " + snap.CenterY.Text('g', 24),
		fmt.Sprintf("iter %d %s %v", snap.MaxIterations, mode, st.Duration.Round(time.Millisecond)),
	}
}

// Draw writes the overlay into an RGBA frame of width×height pixels.
func (o *Overlay) Draw(buf []byte, width, height int, snap viewport.Snapshot, st compute.Stats) {
	d := rgbaDisplay{buf: buf, w: width, h: height}
	step := int16(o.font.YAdvance)
	y := step
	for _, s := range Lines(snap, st) {
		if int(y) > height {
			return
		}
		tinyfont.WriteLine(d, o.font, 3, y+1, s, o.shadow)
		tinyfont.WriteLine(d, o.font, 2, y, s, o.fg)
		y += step
	}
}

// rgbaDisplay lets tinyfont draw into a raw RGBA frame.
type rgbaDisplay struct {
	buf  []byte
	w, h int
}

var _ drivers.Displayer = rgbaDisplay{}

func (d rgbaDisplay) Size() (x, y int16) { return int16(d.w), int16(d.h) }

func (d rgbaDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.w || iy < 0 || iy >= d.h {
		return
	}
	off := (ix + iy*d.w) * 4
	if off+3 >= len(d.buf) {
		return
	}
	d.buf[off] = c.R
	d.buf[off+1] = c.G
	d.buf[off+2] = c.B
	d.buf[off+3] = 0xFF
}

func (d rgbaDisplay) Display() error { return nil }
