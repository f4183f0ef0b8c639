// Package commands implements the bsacore-trace CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/version"
)

// FilterOptions holds the filter flags shared by view, export and filter.
type FilterOptions struct {
	RunID     string
	TestID    string
	Kind      string
	Operation string
	PV        string
	TimeStart string
	TimeEnd   string
}

// BuildFilter parses opts into a log.Filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{
		RunID:  opts.RunID,
		TestID: opts.TestID,
		PV:     opts.PV,
	}

	if opts.Kind != "" {
		k, ok := log.ParseKind(strings.ToUpper(opts.Kind))
		if !ok {
			return log.Filter{}, fmt.Errorf("invalid kind: %s (must be header, command, verify, state, or error)", opts.Kind)
		}
		filter.Kind = &k
	}

	if opts.Operation != "" {
		var op log.Operation
		switch strings.ToLower(opts.Operation) {
		case "get":
			op = log.OperationGet
		case "put":
			op = log.OperationPut
		default:
			return log.Filter{}, fmt.Errorf("invalid operation: %s (must be get or put)", opts.Operation)
		}
		filter.Operation = &op
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// eachEvent calls fn for every event in path that matches filter. Header
// events are checked for a readable format before filtering.
func eachEvent(path string, filter log.Filter, fn func(log.Event) error) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if h := event.Header; h != nil && !version.CanRead(h.Format) {
			return fmt.Errorf("trace format %q written by %s is not readable by this build (format %s)",
				h.Format, h.Version, version.TraceFormat)
		}
		if !filter.Matches(event) {
			continue
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}
