package compute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"mandelzoom/fractal/escape"
	"mandelzoom/fractal/fixed"
	"mandelzoom/fractal/viewport"
	"mandelzoom/hal"
)

type fakeFB struct {
	w, h int
	buf  []byte

	mu        sync.Mutex
	presented [][]byte
	failAt    int // 1-based Present call that fails (0 = never)
	failErr   error
	notify    chan struct{}
}

func newFakeFB(w, h int) *fakeFB {
	return &fakeFB{w: w, h: h, buf: make([]byte, w*h*4), notify: make(chan struct{}, 1024)}
}

func (f *fakeFB) Width() int              { return f.w }
func (f *fakeFB) Height() int             { return f.h }
func (f *fakeFB) Format() hal.PixelFormat { return hal.PixelFormatRGBA8888 }
func (f *fakeFB) StrideBytes() int        { return f.w * 4 }
func (f *fakeFB) Buffer() []byte          { return f.buf }
func (f *fakeFB) ClearRGB(r, g, b uint8)  {}

func (f *fakeFB) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.presented)+1 >= f.failAt {
		return f.failErr
	}
	f.presented = append(f.presented, append([]byte(nil), f.buf...))
	select {
	case f.notify <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeFB) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.presented)
}

func (f *fakeFB) last() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presented[len(f.presented)-1]
}

func (f *fakeFB) waitFrames(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for f.count() < n {
		select {
		case <-f.notify:
		case <-deadline:
			t.Fatalf("presented %d frames, want %d", f.count(), n)
		}
	}
}

type memLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLog) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *memLog) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *memLog) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func newStore(t *testing.T, w, h int, zoom float64, iter int) *viewport.Store {
	t.Helper()
	s, err := viewport.NewStore(viewport.Viewport{
		Zoom:          fixed.FromFloat64(zoom),
		MaxIterations: iter,
	}, viewport.DefaultLimits(w, h))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func newLoop(t *testing.T, store *viewport.Store, fb *fakeFB, cfg Config) (*Loop, *memLog) {
	t.Helper()
	log := &memLog{}
	l, err := New(store, fb, log, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, log
}

// 4x4 at zoom 1 maps pixel (x, y) to c = (x-2, y-2).
func TestFrameFourByFour(t *testing.T) {
	for _, p := range []Precision{Fixed, Float} {
		t.Run(p.String(), func(t *testing.T) {
			fb := newFakeFB(4, 4)
			l, _ := newLoop(t, newStore(t, 4, 4, 1, 10), fb, Config{Workers: 3, Precision: p})
			st, err := l.Frame(context.Background())
			if err != nil {
				t.Fatalf("Frame: %v", err)
			}

			want := map[[2]int]float64{
				{0, 0}: 0,   // -2-2i
				{3, 0}: 0,   // 1-2i
				{0, 3}: 0,   // -2+1i
				{3, 3}: 0.1, // 1+1i escapes at 1
				{2, 2}: escape.Interior,
				{0, 2}: escape.Interior, // -2 stays on [-2, 2]
				{2, 0}: 0.1,             // -2i escapes at 1
			}
			for xy, w := range want {
				got, err := l.grid.Value(xy[0], xy[1])
				if err != nil {
					t.Fatalf("Value: %v", err)
				}
				if got != w {
					t.Fatalf("pixel %v = %v, want %v", xy, got, w)
				}
			}
			if st.Interior != 5 || st.Overflowed != 0 || st.Frame != 1 || st.Gen != 1 {
				t.Fatalf("stats = %+v, want 5 interior, frame 1, gen 1", st)
			}
			if st.Float != (p == Float) {
				t.Fatalf("stats.Float = %v for %v", st.Float, p)
			}

			px := fb.last()
			center := px[(2+2*4)*4:][:4]
			if center[0] != 0 || center[1] != 0 || center[2] != 0 || center[3] != 0xFF {
				t.Fatalf("center pixel = %v, want opaque black", center)
			}
			// Banded(0.1): 0.1*2^32 = 0x19999999
			corner := px[(3+3*4)*4:][:4]
			if corner[0] != 0x99 || corner[1] != 0x99 || corner[2] != 0x99 || corner[3] != 0xFF {
				t.Fatalf("corner pixel = %v, want [153 153 153 255]", corner)
			}
		})
	}
}

func TestWorkerCountDoesNotChangeOutput(t *testing.T) {
	var frames [][]byte
	for _, workers := range []int{1, 2, 7} {
		fb := newFakeFB(37, 23)
		store := newStore(t, 37, 23, 0.09, 40)
		if err := store.Pan(-6, 2); err != nil {
			t.Fatalf("Pan: %v", err)
		}
		l, _ := newLoop(t, store, fb, Config{Workers: workers})
		if _, err := l.Frame(context.Background()); err != nil {
			t.Fatalf("Frame: %v", err)
		}
		frames = append(frames, fb.last())
	}
	for i := 1; i < len(frames); i++ {
		if string(frames[i]) != string(frames[0]) {
			t.Fatalf("frame with worker set %d differs", i)
		}
	}
}

func TestDeepZoomCoordinatesStayDistinct(t *testing.T) {
	fb := newFakeFB(8, 8)
	store, err := viewport.NewStore(viewport.Viewport{
		CenterX:       fixed.FromFloat64(-0.75),
		CenterY:       fixed.FromFloat64(0.1),
		Zoom:          fixed.FromFloat64(1e-20),
		MaxIterations: 8,
	}, viewport.DefaultLimits(8, 8))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	l, _ := newLoop(t, store, fb, Config{Precision: Auto})
	st, err := l.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if st.Float {
		t.Fatal("auto precision used float64 at zoom 1e-20")
	}
	for x := 1; x < len(l.xs); x++ {
		if l.xs[x].Cmp(l.xs[x-1]) <= 0 {
			t.Fatalf("xs[%d] = %v not above xs[%d] = %v", x, l.xs[x], x-1, l.xs[x-1])
		}
	}
	// The same columns collapse to one value in float64.
	if l.fx[0] != l.fx[7] {
		t.Fatalf("float64 columns differ: %v %v", l.fx[0], l.fx[7])
	}
}

type recordingOverlay struct {
	calls int
	snap  viewport.Snapshot
}

func (o *recordingOverlay) Draw(buf []byte, w, h int, snap viewport.Snapshot, st Stats) {
	o.calls++
	o.snap = snap
	buf[0] = 0x42
}

func TestOverlayDrawsBeforePresent(t *testing.T) {
	fb := newFakeFB(4, 4)
	ov := &recordingOverlay{}
	l, _ := newLoop(t, newStore(t, 4, 4, 1, 10), fb, Config{Overlay: ov})
	if _, err := l.Frame(context.Background()); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if ov.calls != 1 || ov.snap.Gen != 1 {
		t.Fatalf("overlay calls/gen = %d/%d", ov.calls, ov.snap.Gen)
	}
	if fb.last()[0] != 0x42 {
		t.Fatal("overlay output not in presented frame")
	}
}

func TestRunStopsOnPresentFailure(t *testing.T) {
	cause := errors.New("surface lost")
	fb := newFakeFB(4, 4)
	fb.failAt, fb.failErr = 3, cause
	l, log := newLoop(t, newStore(t, 4, 4, 1, 10), fb, Config{})

	err := l.Run(context.Background())
	if !errors.Is(err, ErrPresent) || !errors.Is(err, cause) {
		t.Fatalf("Run err = %v, want ErrPresent wrapping cause", err)
	}
	if fb.count() != 2 {
		t.Fatalf("presented %d frames before failure, want 2", fb.count())
	}
	if !log.contains("surface lost") {
		t.Fatalf("failure not logged: %q", log.lines)
	}
}

func TestWorkerStop(t *testing.T) {
	fb := newFakeFB(8, 8)
	l, _ := newLoop(t, newStore(t, 8, 8, 0.5, 20), fb, Config{})
	w := l.Start(context.Background())
	fb.waitFrames(t, 2)
	if err := w.Err(); err != nil {
		t.Fatalf("Err() while running = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-w.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	n := fb.count()
	time.Sleep(20 * time.Millisecond)
	if fb.count() != n {
		t.Fatal("frames presented after Stop")
	}
}

func TestWorkerReportsFailure(t *testing.T) {
	fb := newFakeFB(4, 4)
	fb.failAt, fb.failErr = 1, hal.ErrClosed
	l, _ := newLoop(t, newStore(t, 4, 4, 1, 10), fb, Config{})
	w := l.Start(context.Background())
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on present failure")
	}
	if err := w.Err(); !errors.Is(err, hal.ErrClosed) {
		t.Fatalf("Err() = %v, want ErrClosed", err)
	}
}

func TestSkipUnchangedWaitsForWrite(t *testing.T) {
	fb := newFakeFB(4, 4)
	store := newStore(t, 4, 4, 1, 10)
	l, _ := newLoop(t, store, fb, Config{SkipUnchanged: true})
	w := l.Start(context.Background())
	defer w.Stop()

	fb.waitFrames(t, 1)
	time.Sleep(30 * time.Millisecond)
	if n := fb.count(); n != 1 {
		t.Fatalf("presented %d frames without a viewport change, want 1", n)
	}
	if err := store.ZoomIn(); err != nil {
		t.Fatalf("ZoomIn: %v", err)
	}
	fb.waitFrames(t, 2)
}

func TestMaxFPSPacesFrames(t *testing.T) {
	fb := newFakeFB(2, 2)
	l, _ := newLoop(t, newStore(t, 2, 2, 1, 4), fb, Config{MaxFPS: 50})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := fb.count(); n > 8 {
		t.Fatalf("presented %d frames in 100ms at 50 fps", n)
	}
}

func TestNewRejectsPixelFormat(t *testing.T) {
	_, err := New(newStore(t, 4, 4, 1, 10), rgb565FB{newFakeFB(4, 4)}, &memLog{}, Config{})
	if err == nil {
		t.Fatal("New accepted a non-RGBA framebuffer")
	}
}

type rgb565FB struct{ *fakeFB }

func (rgb565FB) Format() hal.PixelFormat { return hal.PixelFormatRGBA8888 + 1 }

func TestOverflowedPixelsAreCounted(t *testing.T) {
	fb := newFakeFB(4, 1)
	l, log := newLoop(t, newStore(t, 4, 1, 1, 10), fb, Config{})
	// Force coordinates outside the fixed range without going through the store.
	st, err := l.render(context.Background(), viewport.Snapshot{
		Viewport: viewport.Viewport{
			CenterX:       fixed.FromFloat64(255),
			Zoom:          fixed.One,
			MaxIterations: 10,
		},
		Gen: 9,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if st.Overflowed != 1 {
		t.Fatalf("Overflowed = %d, want 1", st.Overflowed)
	}
	if !log.contains(fmt.Sprintf("frame %d: 1 pixels", st.Frame)) {
		t.Fatalf("overflow not logged: %q", log.lines)
	}
}

type panickyOverlay struct{}

func (panickyOverlay) Draw([]byte, int, int, viewport.Snapshot, Stats) { panic("overlay broke") }

func TestWorkerRecoversPanic(t *testing.T) {
	fb := newFakeFB(4, 4)
	l, log := newLoop(t, newStore(t, 4, 4, 1, 10), fb, Config{Overlay: panickyOverlay{}})
	w := l.Start(context.Background())
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after panic")
	}
	var pe *PanicError
	if err := w.Err(); !errors.As(err, &pe) || pe.Value != "overlay broke" {
		t.Fatalf("Err() = %v, want PanicError", err)
	}
	if len(pe.Stack) == 0 || !log.contains("compute: panic: overlay broke") {
		t.Fatal("panic not logged with stack")
	}
	if fb.count() != 0 {
		t.Fatalf("presented %d frames, want 0", fb.count())
	}
}
