package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	// ErrClosed is returned by Present once the presentation side has shut down.
	ErrClosed = errors.New("hal: framebuffer closed")
	// ErrQuit is returned by a Program's Step to end the run cleanly.
	ErrQuit = errors.New("hal: quit")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGBA8888 is 32bpp: one byte each of R, G, B, A.
	PixelFormatRGBA8888 PixelFormat = iota + 1
)

// Framebuffer is a pixel buffer plus a "present" hook.
//
// Buffer returns the buffer for the next frame and may change after every Present,
// so callers fetch it again for each frame. Present hands the buffer to the display
// as one complete frame.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyHome
	KeyPageUp
	KeyPageDown
)

// KeyEvent is a keyboard event. Text input has Code KeyUnknown and a Rune.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// HAL is the program's only contact point with the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
}

// Program is driven by a runner from its presentation/input thread.
//
// Step is called once per tick and must not block. A Step error ends the run;
// ErrQuit ends it without reporting an error. Close is called once after the last Step.
type Program interface {
	Step() error
	Close() error
}

// NewProgramFunc builds the program once the HAL exists.
type NewProgramFunc func(HAL) (Program, error)

// Options are shared by all runners.
type Options struct {
	// Width and Height are the framebuffer size in pixels.
	Width, Height int
}

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title string
	// Scale is the window size as a multiple of the framebuffer size.
	Scale int
	// TPS is the ebiten update rate; each update runs one program Step.
	TPS int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 400
	}
	if o.Height <= 0 {
		o.Height = 300
	}
	return o
}
