package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
)

// Stats summarises a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	TimeRange    struct{ Start, End time.Time }

	Runs  map[string]int
	Tests map[string]*TestStats

	Gets          int
	Puts          int
	FailedCommand int
	CommandTime   time.Duration

	Verifications      int
	FailedVerification int
	Errors             int
}

// TestStats summarises the events of one test case.
type TestStats struct {
	Events   int
	Commands int
	Passed   int
	Failed   int
}

func newStats() *Stats {
	return &Stats{
		EventsByKind: make(map[log.Kind]int),
		Runs:         make(map[string]int),
		Tests:        make(map[string]*TestStats),
	}
}

func (s *Stats) add(e log.Event) {
	s.TotalEvents++
	s.EventsByKind[e.Kind]++
	s.Runs[e.RunID]++

	if s.TimeRange.Start.IsZero() || e.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = e.Timestamp
	}
	if e.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = e.Timestamp
	}

	var ts *TestStats
	if e.TestID != "" {
		ts = s.Tests[e.TestID]
		if ts == nil {
			ts = &TestStats{}
			s.Tests[e.TestID] = ts
		}
		ts.Events++
	}

	switch {
	case e.Command != nil:
		if e.Command.Operation == log.OperationPut {
			s.Puts++
		} else {
			s.Gets++
		}
		if e.Command.Failed || e.Command.ExitCode != 0 || e.Command.Stderr != "" {
			s.FailedCommand++
		}
		s.CommandTime += e.Command.Duration
		if ts != nil {
			ts.Commands++
		}
	case e.Verification != nil:
		s.Verifications++
		if !e.Verification.Passed {
			s.FailedVerification++
		}
		if ts != nil {
			if e.Verification.Passed {
				ts.Passed++
			} else {
				ts.Failed++
			}
		}
	case e.Error != nil:
		s.Errors++
	}
}

// RunStats executes the stats command.
func RunStats(path string, w io.Writer) error {
	stats := newStats()
	if err := eachEvent(path, log.Filter{}, func(e log.Event) error {
		stats.add(e)
		return nil
	}); err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== BsaCore Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Runs:         %d\n", len(stats.Runs))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for k := log.KindHeader; k <= log.KindError; k++ {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Commands: %d get, %d put, %d with errors, %s total\n",
		stats.Gets, stats.Puts, stats.FailedCommand, stats.CommandTime.Round(time.Millisecond))
	fmt.Fprintf(w, "Verifications: %d (%d failed)\n", stats.Verifications, stats.FailedVerification)

	if len(stats.Tests) > 0 {
		ids := make([]string, 0, len(stats.Tests))
		for id := range stats.Tests {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tests:")
		for _, id := range ids {
			ts := stats.Tests[id]
			fmt.Fprintf(w, "  %-14s %d events, %d commands, %d passed, %d failed verifications\n",
				id, ts.Events, ts.Commands, ts.Passed, ts.Failed)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
