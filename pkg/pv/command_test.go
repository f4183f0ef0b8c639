package pv

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/hmbui/bsacore-test/internal/logging"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := os.Stat(DefaultShell); err != nil {
		t.Skipf("%s not available", DefaultShell)
	}
}

func TestCommandClientDefaults(t *testing.T) {
	c := NewCommandClient(CommandConfig{})
	if got := c.CommandLine("get", "EDEF:SYS0:1:NAME"); got != DefaultGetCommand+" EDEF:SYS0:1:NAME" {
		t.Errorf("get line = %q", got)
	}
	if got := c.CommandLine("put", "EDEF:SYS0:1:CTRL", "1"); got != DefaultPutCommand+" EDEF:SYS0:1:CTRL 1" {
		t.Errorf("put line = %q", got)
	}
}

func TestCommandClientQuotesArguments(t *testing.T) {
	c := NewCommandClient(CommandConfig{PutCommand: "caput"})
	got := c.CommandLine("put", "IOC:IN20:EV01:EDEFNAME", "BSA TEST; rm -rf /")
	if got != "caput IOC:IN20:EV01:EDEFNAME 'BSA TEST; rm -rf /'" {
		t.Errorf("put line = %q", got)
	}
}

func TestCommandClientGetCapturesStdout(t *testing.T) {
	requireShell(t)
	c := NewCommandClient(CommandConfig{GetCommand: "echo", Logger: logging.Discard()})

	out, err := c.Get(context.Background(), "EDEF:SYS0:1:NAME")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if strings.TrimSpace(out.Text) != "EDEF:SYS0:1:NAME" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.Failed() || out.ExitCode != 0 {
		t.Errorf("unexpected failure: %+v", out)
	}
}

func TestCommandClientPassesEnvironment(t *testing.T) {
	requireShell(t)
	c := NewCommandClient(CommandConfig{
		PutCommand: "echo $BSA_TEST_PREFIX",
		Env:        []string{"BSA_TEST_PREFIX=from-env"},
		Logger:     logging.Discard(),
	})

	out, err := c.Put(context.Background(), "EDEF:SYS0:2:MEASCNT", "2800")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if strings.TrimSpace(out.Text) != "from-env EDEF:SYS0:2:MEASCNT 2800" {
		t.Errorf("Text = %q", out.Text)
	}
}

func TestCommandClientReportsStderrAndExitCode(t *testing.T) {
	requireShell(t)
	c := NewCommandClient(CommandConfig{
		GetCommand: "echo 'not found' >&2; exit 3;",
		Logger:     logging.Discard(),
	})

	out, err := c.Get(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !out.Failed() || !strings.Contains(out.ErrText, "not found") {
		t.Errorf("ErrText = %q", out.ErrText)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
}

func TestCommandClientMissingShell(t *testing.T) {
	c := NewCommandClient(CommandConfig{Shell: "/nonexistent/shell", Logger: logging.Discard()})
	if _, err := c.Get(context.Background(), "X"); err == nil {
		t.Error("expected error for missing shell")
	}
}
