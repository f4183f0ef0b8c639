package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	test := event.TestID
	if test == "" {
		test = "-"
	}
	fmt.Fprintf(w, "%s [run:%s] [%s] %s\n", ts, shortenID(event.RunID), test, event.Kind)

	switch {
	case event.Header != nil:
		fmt.Fprintf(w, "  Version: %s (format %s)\n", event.Header.Version, event.Header.Format)
		if len(event.Header.Args) > 0 {
			fmt.Fprintf(w, "  Args: %s\n", strings.Join(event.Header.Args, " "))
		}
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.Verification != nil:
		formatVerificationDetails(w, event.Verification)
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
		if sc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}

	fmt.Fprintln(w)
}

func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	if cmd.Operation == log.OperationPut {
		fmt.Fprintf(w, "  %s %s = %q\n", cmd.Operation, cmd.PV, cmd.Value)
	} else {
		fmt.Fprintf(w, "  %s %s\n", cmd.Operation, cmd.PV)
	}
	if cmd.Command != "" {
		fmt.Fprintf(w, "  Command: %s\n", cmd.Command)
	}
	fmt.Fprintf(w, "  Exit: %d  Duration: %s\n", cmd.ExitCode, formatDuration(cmd.Duration))
	if cmd.Failed {
		fmt.Fprintln(w, "  Tool could not be started")
	}
	if out := strings.TrimSpace(cmd.Stdout); out != "" {
		fmt.Fprintf(w, "  Stdout: %s\n", truncate(out, 160))
	}
	if errText := strings.TrimSpace(cmd.Stderr); errText != "" {
		fmt.Fprintf(w, "  Stderr: %s\n", truncate(errText, 160))
	}
}

func formatVerificationDetails(w io.Writer, v *log.VerificationEvent) {
	if v.Passed {
		fmt.Fprintf(w, "  PASSED: %d values at interval %d\n", v.Count, v.Interval)
		return
	}
	fmt.Fprintf(w, "  FAILED (%s) at index %d of %d, interval %d\n", v.Reason, v.Index, v.Count, v.Interval)
	if v.Reason == "decrease" || v.Reason == "interval" {
		fmt.Fprintf(w, "  Previous: %d  Current: %d\n", v.Previous, v.Current)
	}
}

// shortenID returns the first 8 characters of a run ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// RunView executes the view command.
func RunView(path string, opts FilterOptions, output io.Writer) error {
	filter, err := BuildFilter(opts)
	if err != nil {
		return err
	}
	return eachEvent(path, filter, func(e log.Event) error {
		formatEvent(output, e)
		return nil
	})
}
