package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	logger Logger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
}

// New returns a host HAL implementation logging to stdout.
func New(opts Options) HAL {
	return newHost(opts, &hostLogger{w: os.Stdout})
}

func newHost(opts Options, logger Logger) *hostHAL {
	opts = opts.withDefaults()
	return &hostHAL{
		logger: logger,
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// start builds the program and closes the framebuffer if that fails.
func (h *hostHAL) start(newProg NewProgramFunc) (Program, error) {
	prog, err := newProg(h)
	if err != nil {
		h.fb.Close()
		return nil, err
	}
	return prog, nil
}

// stop unblocks the producer before the program joins its workers.
func (h *hostHAL) stop(prog Program) error {
	h.fb.Close()
	return prog.Close()
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// heldLogger keeps lines in memory while something else owns the terminal.
type heldLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *heldLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *heldLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *heldLogger) flush(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		fmt.Fprintln(w, s)
	}
	l.lines = nil
}
