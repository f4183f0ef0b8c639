package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
// Useful for seeing every PV command on the console with -verbose.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind.String()),
	}
	if event.TestID != "" {
		attrs = append(attrs, slog.String("test_id", event.TestID))
	}

	switch {
	case event.Header != nil:
		attrs = append(attrs, slog.String("version", event.Header.Version))
	case event.Command != nil:
		c := event.Command
		attrs = append(attrs,
			slog.String("op", c.Operation.String()),
			slog.String("pv", c.PV),
			slog.Int("exit_code", c.ExitCode),
			slog.Duration("duration", c.Duration),
		)
		if c.Operation == OperationPut {
			attrs = append(attrs, slog.String("value", c.Value))
		}
		if c.Stderr != "" {
			attrs = append(attrs, slog.String("stderr", c.Stderr))
		}
	case event.Verification != nil:
		v := event.Verification
		attrs = append(attrs,
			slog.Bool("passed", v.Passed),
			slog.Int("count", v.Count),
			slog.Int("interval", v.Interval),
		)
		if !v.Passed {
			attrs = append(attrs,
				slog.Int("index", v.Index),
				slog.String("reason", v.Reason),
			)
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
