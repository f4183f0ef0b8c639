package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
)

// RunExport exports the trace file to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string, opts FilterOptions) error {
	filter, err := BuildFilter(opts)
	if err != nil {
		return err
	}

	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "jsonl" {
		return exportJSONL(path, filter, w)
	}
	return exportCSV(path, filter, w)
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return eachEvent(path, filter, func(e log.Event) error {
		if err := encoder.Encode(e); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

var csvHeader = []string{"timestamp", "run_id", "test_id", "kind", "operation", "pv", "value", "exit_code", "duration_ms", "detail"}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := eachEvent(path, filter, func(e log.Event) error {
		return cw.Write(csvRow(e))
	})
	cw.Flush()
	if err != nil {
		return err
	}
	return cw.Error()
}

func csvRow(e log.Event) []string {
	row := make([]string, len(csvHeader))
	row[0] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	row[1] = e.RunID
	row[2] = e.TestID
	row[3] = e.Kind.String()

	switch {
	case e.Header != nil:
		row[9] = e.Header.Version + " format " + e.Header.Format
	case e.Command != nil:
		row[4] = e.Command.Operation.String()
		row[5] = e.Command.PV
		row[6] = e.Command.Value
		row[7] = strconv.Itoa(e.Command.ExitCode)
		row[8] = strconv.FormatFloat(float64(e.Command.Duration)/float64(time.Millisecond), 'f', 3, 64)
		row[9] = e.Command.Stderr
	case e.Verification != nil:
		v := e.Verification
		if v.Passed {
			row[9] = fmt.Sprintf("passed count=%d interval=%d", v.Count, v.Interval)
		} else {
			row[9] = fmt.Sprintf("failed %s index=%d interval=%d", v.Reason, v.Index, v.Interval)
		}
	case e.StateChange != nil:
		row[9] = fmt.Sprintf("%s %s->%s %s", e.StateChange.Entity, e.StateChange.OldState, e.StateChange.NewState, e.StateChange.Reason)
	case e.Error != nil:
		row[9] = e.Error.Message
	}
	return row
}
