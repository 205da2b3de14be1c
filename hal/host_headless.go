package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz int
	// Ticks stops the run after N steps (0 = no limit).
	Ticks uint64
	// Frames stops the run once N frames were presented (0 = no limit).
	Frames uint64
}

// RunHeadless drives the program from a ticker without opening a window. Presented
// frames are consumed and dropped.
func RunHeadless(ctx context.Context, newProg NewProgramFunc, opts Options, cfg HeadlessConfig) error {
	return runHeadless(ctx, New(opts).(*hostHAL), newProg, cfg)
}

func runHeadless(ctx context.Context, h *hostHAL, newProg NewProgramFunc, cfg HeadlessConfig) (err error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	prog, err := h.start(newProg)
	if err != nil {
		return err
	}

	var tick uint64
	defer func() {
		h.logger.WriteLineString(fmt.Sprintf("headless: %d ticks, %d frames presented", tick, h.fb.Presented()))
		err = errors.Join(err, h.stop(prog))
	}()

	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.fb.latest()
			if err := prog.Step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
			if cfg.Frames > 0 && h.fb.Presented() >= cfg.Frames {
				return nil
			}
		}
	}
}
