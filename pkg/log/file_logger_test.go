package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.btrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("trace file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.btrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		RunID:     "run-123",
		TestID:    "TC-BSA-001",
		Kind:      KindCommand,
		Command: &CommandEvent{
			Operation: OperationPut,
			PV:        "EDEF:SYS0:4:CTRL",
			Value:     "1",
			Stdout:    "Old : EDEF:SYS0:4:CTRL 0\nNew : EDEF:SYS0:4:CTRL 1\n",
		},
	}

	logger.Log(event)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Err(); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("trace file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.RunID != event.RunID {
		t.Errorf("RunID: got %q, want %q", decoded.RunID, event.RunID)
	}
	if decoded.Command == nil {
		t.Fatal("Command is nil")
	}
	if decoded.Command.PV != event.Command.PV {
		t.Errorf("Command.PV: got %q, want %q", decoded.Command.PV, event.Command.PV)
	}
	if decoded.Command.Operation != OperationPut {
		t.Errorf("Command.Operation: got %v, want PUT", decoded.Command.Operation)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.btrace")

	for _, id := range []string{"run-1", "run-2"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), RunID: id, Kind: KindHeader, Header: &HeaderEvent{Version: "test"}})
		logger.Close()
	}

	events := readAll(t, path, Filter{})
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].RunID != "run-1" || events[1].RunID != "run-2" {
		t.Errorf("unexpected order: %q, %q", events[0].RunID, events[1].RunID)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.btrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(Event{Timestamp: time.Now(), RunID: "run", Kind: KindCommand, Command: &CommandEvent{PV: "X"}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if got := len(readAll(t, path, Filter{})); got != 100 {
		t.Errorf("got %d events, want 100", got)
	}
}

func TestFileLoggerIgnoresLogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.btrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Close()
	logger.Log(Event{Timestamp: time.Now(), RunID: "late"})

	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
	if got := len(readAll(t, path, Filter{})); got != 0 {
		t.Errorf("got %d events, want 0", got)
	}
}
