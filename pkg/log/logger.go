package log

import "context"

// Logger is the interface components use to record trace events.
// Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records an event. Implementations must be thread-safe.
	Log(event Event)
}

// NoopLogger discards all events.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}

// OrNoop returns l, or NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

type testIDKey struct{}

// WithTestID returns a context carrying the id of the test case being run.
// Trace events recorded under this context are tagged with it.
func WithTestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, testIDKey{}, id)
}

// TestIDFromContext returns the test case id stored by WithTestID, or "".
func TestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(testIDKey{}).(string)
	return id
}
