package grid

import (
	"errors"
	"testing"

	"mandelzoom/fractal/escape"
)

func TestNewFills(t *testing.T) {
	g, err := New(3, 2, escape.Interior)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Width() != 3 || g.Height() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", g.Width(), g.Height())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			v, err := g.Value(x, y)
			if err != nil || v != escape.Interior {
				t.Fatalf("Value(%d,%d) = %v, %v", x, y, v, err)
			}
		}
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(0, 4, 0); !errors.Is(err, ErrSize) {
		t.Fatalf("New(0,4) err = %v, want ErrSize", err)
	}
	if _, err := New(2, 2, 1.5); !errors.Is(err, ErrValue) {
		t.Fatalf("New(fill=1.5) err = %v, want ErrValue", err)
	}
}

func TestGetIsMutable(t *testing.T) {
	g, _ := New(4, 4, 0)
	p, err := g.Get(1, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	*p = 0.5
	v, _ := g.Value(1, 2)
	if v != 0.5 {
		t.Fatalf("Value(1,2) = %v after write through Get, want 0.5", v)
	}
}

func TestOutOfRange(t *testing.T) {
	g, _ := New(4, 3, 0)
	for _, xy := range [][2]int{{4, 0}, {0, 3}, {-1, 0}, {0, -1}, {100, 100}} {
		if _, err := g.Get(xy[0], xy[1]); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Get(%d,%d) err = %v, want ErrOutOfRange", xy[0], xy[1], err)
		}
		if _, err := g.Value(xy[0], xy[1]); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Value(%d,%d) err = %v, want ErrOutOfRange", xy[0], xy[1], err)
		}
		if err := g.Set(xy[0], xy[1], 0); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Set(%d,%d) err = %v, want ErrOutOfRange", xy[0], xy[1], err)
		}
	}
	if _, err := g.Row(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Row(3) err = %v, want ErrOutOfRange", err)
	}
}

func TestSetValidates(t *testing.T) {
	g, _ := New(2, 2, 0)
	for _, v := range []float64{0, 1, 0.3, escape.Interior} {
		if err := g.Set(1, 1, v); err != nil {
			t.Fatalf("Set(%v): %v", v, err)
		}
	}
	for _, v := range []float64{-0.5, 1.01, 2} {
		if err := g.Set(1, 1, v); !errors.Is(err, ErrValue) {
			t.Fatalf("Set(%v) err = %v, want ErrValue", v, err)
		}
	}
}

func TestRowAliases(t *testing.T) {
	g, _ := New(3, 3, 0)
	row, err := g.Row(1)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if len(row) != 3 || cap(row) != 3 {
		t.Fatalf("Row len/cap = %d/%d, want 3/3", len(row), cap(row))
	}
	row[2] = 0.75
	if v, _ := g.Value(2, 1); v != 0.75 {
		t.Fatalf("Value(2,1) = %v, want 0.75", v)
	}
	if v, _ := g.Value(0, 2); v != 0 {
		t.Fatalf("Value(0,2) = %v, row write leaked", v)
	}
}
