// Package logging builds the operational slog.Logger handed to every
// harness component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phsym/console-slog"
)

// LevelCritical sits above slog.LevelError for failures that abort the run.
const LevelCritical = slog.LevelError + 4

// LevelNames lists the accepted -log-level values in order.
var LevelNames = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Format selects the handler.
type Format string

const (
	// FormatConsole writes colored human-readable lines.
	FormatConsole Format = "console"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	Level     slog.Level
	Format    Format
	AddSource bool
}

// ParseLevel maps a level name to an slog level. Names are case-insensitive;
// WARN is accepted as an alias of WARNING.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (choose from %s)", name, strings.Join(LevelNames, ", "))
	}
}

// ParseFormat validates a -log-format value.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatConsole, FormatJSON:
		return f, nil
	case "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown log format %q", name)
	}
}

// New returns a logger writing to w. The level is fixed for the lifetime of
// the logger.
func New(w io.Writer, opts Options) *slog.Logger {
	var handler slog.Handler
	switch opts.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   opts.AddSource,
			Level:       opts.Level,
			ReplaceAttr: replaceAttr,
		})
	default:
		handler = console.NewHandler(w, &console.HandlerOptions{
			AddSource: opts.AddSource,
			Level:     opts.Level,
		})
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
