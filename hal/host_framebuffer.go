package hal

import (
	"sync"
	"sync/atomic"
)

// hostFramebuffer is a triple-buffered RGBA framebuffer.
//
// One producer renders into back and Presents it; one consumer (the window, terminal
// or headless runner) picks up the newest finished frame with latest. A frame the
// consumer never picked up is recycled, so Present never blocks and the consumer
// never sees a frame that is still being written.
type hostFramebuffer struct {
	width  int
	height int
	stride int

	back   []byte      // producer-owned
	frames chan []byte // newest finished frame
	spare  chan []byte // buffers free for the producer

	front []byte // consumer-owned

	presented atomic.Uint64
	closed    chan struct{}
	closeOnce sync.Once
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 4
	alloc := func() []byte {
		b := make([]byte, stride*height)
		for i := 3; i < len(b); i += 4 {
			b[i] = 0xFF
		}
		return b
	}
	f := &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		back:   alloc(),
		front:  alloc(),
		frames: make(chan []byte, 1),
		spare:  make(chan []byte, 3),
		closed: make(chan struct{}),
	}
	f.spare <- alloc()
	return f
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGBA8888 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.back }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	for i := 0; i+3 < len(f.back); i += 4 {
		f.back[i] = r
		f.back[i+1] = g
		f.back[i+2] = b
		f.back[i+3] = 0xFF
	}
}

func (f *hostFramebuffer) Present() error {
	select {
	case <-f.closed:
		return ErrClosed
	default:
	}

	select {
	case stale := <-f.frames:
		f.spare <- stale
	default:
	}
	f.frames <- f.back
	f.presented.Add(1)

	select {
	case f.back = <-f.spare:
		return nil
	case <-f.closed:
		return ErrClosed
	}
}

// latest returns the newest presented frame. Only one goroutine may call it.
func (f *hostFramebuffer) latest() []byte {
	select {
	case fr := <-f.frames:
		f.spare <- f.front
		f.front = fr
	default:
	}
	return f.front
}

// Presented reports how many frames have been presented.
func (f *hostFramebuffer) Presented() uint64 { return f.presented.Load() }

func (f *hostFramebuffer) Close() {
	f.closeOnce.Do(func() { close(f.closed) })
}
