package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
)

var baseTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sampleEvents() []log.Event {
	return []log.Event{
		{
			Timestamp: baseTime, RunID: "0f8a9c1e-run", Kind: log.KindHeader,
			Header: &log.HeaderEvent{Version: "1.2.0", Format: "1.0", Args: []string{"TST:SYS0", "BSACORE_TEST"}},
		},
		{
			Timestamp: baseTime.Add(time.Second), RunID: "0f8a9c1e-run", TestID: "TC-BSA-001", Kind: log.KindCommand,
			Command: &log.CommandEvent{
				Operation: log.OperationPut, PV: "EDEF:SYS0:4:CTRL", Value: "1",
				Command: "caput EDEF:SYS0:4:CTRL 1", Stdout: "Old : EDEF:SYS0:4:CTRL 0\n", Duration: 40 * time.Millisecond,
			},
		},
		{
			Timestamp: baseTime.Add(31 * time.Second), RunID: "0f8a9c1e-run", TestID: "TC-BSA-001", Kind: log.KindCommand,
			Command: &log.CommandEvent{
				Operation: log.OperationGet, PV: "TST:SYS0:0:PULSEIDHST4",
				Stdout: "TST:SYS0:0:PULSEIDHST4 3 10 13 16\n", Duration: 20 * time.Millisecond,
			},
		},
		{
			Timestamp: baseTime.Add(32 * time.Second), RunID: "0f8a9c1e-run", TestID: "TC-BSA-001", Kind: log.KindVerification,
			Verification: &log.VerificationEvent{Passed: false, Count: 3, Interval: 9, Index: 1, Previous: 10, Current: 13, Reason: "interval"},
		},
		{
			Timestamp: baseTime.Add(33 * time.Second), RunID: "0f8a9c1e-run", TestID: "TC-BSA-000", Kind: log.KindError,
			Error: &log.ErrorEventData{Message: "edef slot not found", Context: "locate slot"},
		},
	}
}

func writeTrace(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.cbor")
	fl, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		fl.Log(e)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestBuildFilter(t *testing.T) {
	f, err := BuildFilter(FilterOptions{Kind: "command", Operation: "PUT", PV: "CTRL", TimeStart: "2026-03-02T09:00:00Z"})
	if err != nil {
		t.Fatalf("BuildFilter: %v", err)
	}
	if f.Kind == nil || *f.Kind != log.KindCommand {
		t.Errorf("Kind = %v", f.Kind)
	}
	if f.Operation == nil || *f.Operation != log.OperationPut {
		t.Errorf("Operation = %v", f.Operation)
	}
	if f.TimeStart == nil || !f.TimeStart.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("TimeStart = %v", f.TimeStart)
	}

	for _, bad := range []FilterOptions{
		{Kind: "frame"},
		{Operation: "post"},
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
	} {
		if _, err := BuildFilter(bad); err == nil {
			t.Errorf("BuildFilter(%+v) should fail", bad)
		}
	}
}

func TestRunView(t *testing.T) {
	path := writeTrace(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, FilterOptions{}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"2026-03-02T09:30:00.000000Z [run:0f8a9c1e] [-] HEADER",
		"Version: 1.2.0 (format 1.0)",
		`PUT EDEF:SYS0:4:CTRL = "1"`,
		"Command: caput EDEF:SYS0:4:CTRL 1",
		"Duration: 40.000ms",
		"FAILED (interval) at index 1 of 3, interval 9",
		"Previous: 10  Current: 13",
		"Context: locate slot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q:\n%s", want, out)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := writeTrace(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, FilterOptions{TestID: "TC-BSA-001", Operation: "get"}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "COMMAND") != 1 || !strings.Contains(out, "GET TST:SYS0:0:PULSEIDHST4") {
		t.Errorf("unexpected filtered output:\n%s", out)
	}
	if strings.Contains(out, "HEADER") {
		t.Error("header should be filtered out")
	}
}

func TestRejectsNewerFormat(t *testing.T) {
	events := sampleEvents()
	events[0].Header.Format = "2.0"
	path := writeTrace(t, events)

	err := RunView(path, FilterOptions{}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), `trace format "2.0"`) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out, FilterOptions{Kind: "verify"}); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var e log.Event
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if e.Verification == nil || e.Verification.Reason != "interval" {
		t.Errorf("round-tripped event = %+v", e)
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out, FilterOptions{}); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected header + 5 rows, got %d", len(records))
	}
	put := records[2]
	if put[3] != "COMMAND" || put[4] != "PUT" || put[5] != "EDEF:SYS0:4:CTRL" || put[8] != "40.000" {
		t.Errorf("put row = %v", put)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	if err := RunExport(path, "xml", "", FilterOptions{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.cbor")

	var summary bytes.Buffer
	if err := RunFilter(path, out, FilterOptions{PV: "PULSEIDHST"}, &summary); err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if !strings.Contains(summary.String(), "Filtered 1 events") {
		t.Errorf("summary = %q", summary.String())
	}

	rd, err := log.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer rd.Close()
	e, err := rd.Next()
	if err != nil {
		t.Fatal(err)
	}
	if e.Command == nil || e.Command.PV != "TST:SYS0:0:PULSEIDHST4" {
		t.Errorf("event = %+v", e)
	}
	if _, err := rd.Next(); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestRunStats(t *testing.T) {
	path := writeTrace(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Total Events: 5",
		"Runs:         1",
		"COMMAND:     2",
		"Commands: 1 get, 1 put, 0 with errors, 60ms total",
		"Verifications: 1 (1 failed)",
		"TC-BSA-001",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}
