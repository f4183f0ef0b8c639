package bsa

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Waiter blocks while the IOC acquires data.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// CountdownWaiter waits in one-second steps, rewriting a status line on Out
// before each step.
type CountdownWaiter struct {
	Out  io.Writer
	Tick time.Duration
}

// NewCountdownWaiter returns a waiter that counts down on w once per second.
func NewCountdownWaiter(w io.Writer) *CountdownWaiter {
	return &CountdownWaiter{Out: w, Tick: time.Second}
}

// Wait counts down whole ticks of d. A partial tick is rounded up.
func (w *CountdownWaiter) Wait(ctx context.Context, d time.Duration) error {
	tick := w.Tick
	if tick <= 0 {
		tick = time.Second
	}
	steps := int((d + tick - 1) / tick)

	t := time.NewTicker(tick)
	defer t.Stop()

	for i := steps; i > 0; i-- {
		if w.Out != nil {
			fmt.Fprintf(w.Out, "\rSleeping for %d seconds...", i)
		}
		select {
		case <-ctx.Done():
			w.finish()
			return ctx.Err()
		case <-t.C:
		}
	}
	w.finish()
	return nil
}

func (w *CountdownWaiter) finish() {
	if w.Out != nil {
		fmt.Fprintln(w.Out)
	}
}

// InstantWaiter records requested durations and returns immediately.
type InstantWaiter struct {
	Waited []time.Duration
}

// Wait records d.
func (w *InstantWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.Waited = append(w.Waited, d)
	return ctx.Err()
}

var (
	_ Waiter = (*CountdownWaiter)(nil)
	_ Waiter = (*InstantWaiter)(nil)
)
