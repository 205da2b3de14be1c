package compute

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError is returned by a Worker whose loop panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("compute: panic: %v", e.Value)
}

// Worker is a Loop running on its own goroutine.
type Worker struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start runs l.Run on a new goroutine. The loop stops when ctx is cancelled or
// Stop is called. A panic in the loop is logged with its stack and becomes the
// worker's error.
func (l *Loop) Start(ctx context.Context) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer func() {
			if v := recover(); v != nil {
				pe := &PanicError{Value: v, Stack: debug.Stack()}
				l.logPanic(pe)
				w.err = pe
			}
		}()
		w.err = l.Run(ctx)
	}()
	return w
}

func (l *Loop) logPanic(pe *PanicError) {
	l.log.WriteLineString(pe.Error())
	for _, line := range strings.Split(string(pe.Stack), "\n") {
		if line == "" {
			continue
		}
		l.log.WriteLineString(line)
	}
}

// Done is closed once the loop has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns the loop's error once Done is closed, and nil before.
func (w *Worker) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Stop cancels the loop and waits for it to return.
func (w *Worker) Stop() error {
	w.cancel()
	<-w.done
	return w.err
}
