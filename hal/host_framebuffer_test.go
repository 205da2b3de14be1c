package hal

import (
	"errors"
	"sync"
	"testing"
)

func TestFramebufferPresentHandsOffFrames(t *testing.T) {
	fb := newHostFramebuffer(2, 2)
	if fb.Format() != PixelFormatRGBA8888 || fb.StrideBytes() != 8 || len(fb.Buffer()) != 16 {
		t.Fatalf("format/stride/len = %v/%d/%d", fb.Format(), fb.StrideBytes(), len(fb.Buffer()))
	}

	fb.ClearRGB(1, 2, 3)
	first := fb.Buffer()
	if err := fb.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if &fb.Buffer()[0] == &first[0] {
		t.Fatal("producer kept the presented buffer")
	}
	got := fb.latest()
	if &got[0] != &first[0] {
		t.Fatal("latest() did not return the presented frame")
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 || got[3] != 0xFF {
		t.Fatalf("pixel = %v, want [1 2 3 255]", got[:4])
	}
	if again := fb.latest(); &again[0] != &got[0] {
		t.Fatal("latest() changed without a new Present")
	}
	if fb.Presented() != 1 {
		t.Fatalf("Presented() = %d, want 1", fb.Presented())
	}
}

func TestFramebufferPresentNeverBlocks(t *testing.T) {
	fb := newHostFramebuffer(1, 1)
	for i := 0; i < 100; i++ {
		fb.ClearRGB(uint8(i), 0, 0)
		if err := fb.Present(); err != nil {
			t.Fatalf("Present #%d: %v", i, err)
		}
	}
	if got := fb.latest(); got[0] != 99 {
		t.Fatalf("latest() R = %d, want newest frame 99", got[0])
	}
}

func TestFramebufferClosed(t *testing.T) {
	fb := newHostFramebuffer(1, 1)
	fb.Close()
	fb.Close()
	if err := fb.Present(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Present after Close = %v, want ErrClosed", err)
	}
}

// The producer fills every frame with a single value; a consumer that sees two
// values in one frame observed a partial frame.
func TestFramebufferNoTornFrames(t *testing.T) {
	const frames = 2000
	fb := newHostFramebuffer(16, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= frames; i++ {
			v := uint8(i)
			buf := fb.Buffer()
			for j := 0; j < len(buf); j += 4 {
				buf[j], buf[j+1], buf[j+2] = v, v, v
			}
			if err := fb.Present(); err != nil {
				t.Errorf("Present: %v", err)
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			if got, want := fb.latest()[0], uint8(frames%256); got != want {
				t.Fatalf("last frame = %d, want %d", got, want)
			}
			return
		default:
		}
		pix := fb.latest()
		for j := 0; j < len(pix); j += 4 {
			if pix[j] != pix[0] || pix[j+1] != pix[0] || pix[j+2] != pix[0] {
				t.Fatalf("torn frame: pixel %d = %d, pixel 0 = %d", j/4, pix[j], pix[0])
			}
		}
	}
}
