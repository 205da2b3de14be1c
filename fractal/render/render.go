// Package render turns a grid of divergence fractions into RGBA bytes.
package render

import (
	"errors"
	"fmt"

	"mandelzoom/fractal/grid"
	"mandelzoom/fractal/palette"
)

// BytesPerPixel is the size of one R,G,B,A pixel.
const BytesPerPixel = 4

var ErrBufferSize = errors.New("render: buffer size mismatch")

// Frame writes every cell of g through m into buf as R,G,B,0xFF at (x+y*w)*4.
// buf must be exactly width*height*4 bytes.
func Frame(g *grid.Grid, m palette.Func, buf []byte) error {
	w, h := g.Width(), g.Height()
	if want := w * h * BytesPerPixel; len(buf) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBufferSize, len(buf), want)
	}
	for y := 0; y < h; y++ {
		row, err := g.Row(y)
		if err != nil {
			return err
		}
		out := buf[y*w*BytesPerPixel : (y+1)*w*BytesPerPixel]
		for x, v := range row {
			c := m(v)
			i := x * BytesPerPixel
			out[i] = c.R
			out[i+1] = c.G
			out[i+2] = c.B
			out[i+3] = 0xFF
		}
	}
	return nil
}
