// Package grid holds one divergence fraction per output pixel.
package grid

import (
	"errors"
	"fmt"

	"mandelzoom/fractal/escape"
)

var (
	ErrOutOfRange = errors.New("grid: index out of range")
	ErrValue      = errors.New("grid: value outside [0,1] and not interior")
	ErrSize       = errors.New("grid: invalid size")
)

// Grid is a dense row-major width×height array. Its dimensions never change.
//
// A Grid is not safe for concurrent use, except that distinct rows returned by Row
// may be written by different goroutines.
type Grid struct {
	w, h  int
	cells []float64
}

// New allocates a width×height grid with every cell set to fill.
func New(width, height int, fill float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	if !valid(fill) {
		return nil, fmt.Errorf("%w: %v", ErrValue, fill)
	}
	g := &Grid{w: width, h: height, cells: make([]float64, width*height)}
	g.Fill(fill)
	return g, nil
}

func valid(v float64) bool {
	return v == escape.Interior || (v >= 0 && v <= 1)
}

func (g *Grid) Width() int  { return g.w }
func (g *Grid) Height() int { return g.h }

func (g *Grid) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, g.w, g.h)
	}
	return x + y*g.w, nil
}

// Get returns a pointer to the cell at (x, y). Writes through it bypass the value
// check done by Set.
func (g *Grid) Get(x, y int) (*float64, error) {
	i, err := g.index(x, y)
	if err != nil {
		return nil, err
	}
	return &g.cells[i], nil
}

// Value returns a copy of the cell at (x, y).
func (g *Grid) Value(x, y int) (float64, error) {
	i, err := g.index(x, y)
	if err != nil {
		return 0, err
	}
	return g.cells[i], nil
}

func (g *Grid) Set(x, y int, v float64) error {
	i, err := g.index(x, y)
	if err != nil {
		return err
	}
	if !valid(v) {
		return fmt.Errorf("%w: %v at (%d,%d)", ErrValue, v, x, y)
	}
	g.cells[i] = v
	return nil
}

// Row returns row y as a slice aliasing the grid.
func (g *Grid) Row(y int) ([]float64, error) {
	if y < 0 || y >= g.h {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, y, g.h)
	}
	return g.cells[y*g.w : (y+1)*g.w : (y+1)*g.w], nil
}

func (g *Grid) Fill(v float64) {
	for i := range g.cells {
		g.cells[i] = v
	}
}
