package log

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder stamps events with a run id, a timestamp, and the test id found
// in the context before handing them to a Logger.
// A nil *Recorder discards everything.
type Recorder struct {
	logger Logger
	runID  string
	now    func() time.Time
}

// NewRecorder creates a Recorder with a fresh run id.
func NewRecorder(logger Logger) *Recorder {
	return &Recorder{
		logger: OrNoop(logger),
		runID:  uuid.NewString(),
		now:    time.Now,
	}
}

// RunID returns the id stamped on every event.
func (r *Recorder) RunID() string {
	if r == nil {
		return ""
	}
	return r.runID
}

// Record stamps and logs an event.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	event.RunID = r.runID
	if event.TestID == "" {
		event.TestID = TestIDFromContext(ctx)
	}
	r.logger.Log(event)
}

// Header records the run header.
func (r *Recorder) Header(ctx context.Context, version, format string, args []string) {
	r.Record(ctx, Event{
		Kind:   KindHeader,
		Header: &HeaderEvent{Version: version, Format: format, Args: args},
	})
}

// Command records a PV command.
func (r *Recorder) Command(ctx context.Context, cmd CommandEvent) {
	r.Record(ctx, Event{Kind: KindCommand, Command: &cmd})
}

// Verification records a sequence check outcome.
func (r *Recorder) Verification(ctx context.Context, v VerificationEvent) {
	r.Record(ctx, Event{Kind: KindVerification, Verification: &v})
}

// State records a state change.
func (r *Recorder) State(ctx context.Context, entity StateEntity, oldState, newState, reason string) {
	r.Record(ctx, Event{
		Kind: KindState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// Error records a failure.
func (r *Recorder) Error(ctx context.Context, err error, during string) {
	if err == nil {
		return
	}
	r.Record(ctx, Event{
		Kind:  KindError,
		Error: &ErrorEventData{Message: err.Error(), Context: during},
	})
}
