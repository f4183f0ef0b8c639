package bsa

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCountdownWaiterWritesStatus(t *testing.T) {
	var buf bytes.Buffer
	w := &CountdownWaiter{Out: &buf, Tick: time.Millisecond}

	if err := w.Wait(context.Background(), 3*time.Millisecond); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"\rSleeping for 3 seconds...", "\rSleeping for 2 seconds...", "\rSleeping for 1 seconds..."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output should end with newline: %q", out)
	}
}

func TestCountdownWaiterRoundsUp(t *testing.T) {
	var buf bytes.Buffer
	w := &CountdownWaiter{Out: &buf, Tick: time.Millisecond}

	if err := w.Wait(context.Background(), 1500*time.Microsecond); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if got := strings.Count(buf.String(), "Sleeping"); got != 2 {
		t.Errorf("got %d status lines, want 2", got)
	}
}

func TestCountdownWaiterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &CountdownWaiter{Tick: time.Hour}
	if err := w.Wait(ctx, 2*time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}

func TestInstantWaiterRecords(t *testing.T) {
	w := &InstantWaiter{}
	_ = w.Wait(context.Background(), 90*time.Second)
	_ = w.Wait(context.Background(), 30*time.Second)

	if len(w.Waited) != 2 || w.Waited[0] != 90*time.Second {
		t.Errorf("Waited = %v", w.Waited)
	}
}
