package log

import (
	"context"
	"errors"
	"testing"
	"time"
)

type captureLogger struct {
	events []Event
}

func (c *captureLogger) Log(e Event) { c.events = append(c.events, e) }

func TestRecorderStampsEvents(t *testing.T) {
	capture := &captureLogger{}
	rec := NewRecorder(capture)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	ctx := WithTestID(context.Background(), "TC-BSA-001")
	rec.Command(ctx, CommandEvent{Operation: OperationGet, PV: "EDEF:SYS0:1:NAME"})

	if len(capture.events) != 1 {
		t.Fatalf("got %d events, want 1", len(capture.events))
	}
	e := capture.events[0]
	if e.RunID == "" || e.RunID != rec.RunID() {
		t.Errorf("RunID: got %q, want %q", e.RunID, rec.RunID())
	}
	if e.TestID != "TC-BSA-001" {
		t.Errorf("TestID: got %q", e.TestID)
	}
	if !e.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp: got %v, want %v", e.Timestamp, fixed)
	}
	if e.Kind != KindCommand || e.Command == nil {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestRecorderRunIDsAreUnique(t *testing.T) {
	a, b := NewRecorder(nil), NewRecorder(nil)
	if a.RunID() == b.RunID() {
		t.Errorf("run ids collide: %q", a.RunID())
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Header(context.Background(), "v", "1.0", nil)
	rec.Error(context.Background(), errors.New("x"), "y")
	if rec.RunID() != "" {
		t.Error("nil recorder should have empty run id")
	}
}

func TestRecorderSkipsNilError(t *testing.T) {
	capture := &captureLogger{}
	rec := NewRecorder(capture)
	rec.Error(context.Background(), nil, "ignored")
	rec.State(context.Background(), StateEntitySlot, "", "4", "located")

	if len(capture.events) != 1 || capture.events[0].StateChange == nil {
		t.Fatalf("unexpected events: %+v", capture.events)
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b)
	m.Log(Event{RunID: "r"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("fan-out failed: %d, %d", len(a.events), len(b.events))
	}
}

func TestParseKind(t *testing.T) {
	for k := KindHeader; k <= KindError; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("NOPE"); ok {
		t.Error("ParseKind accepted unknown name")
	}
}
