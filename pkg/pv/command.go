package pv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// Tool paths used when CommandConfig leaves them empty. The shell expands
// $EPICS_BASE_RELEASE from the inherited environment.
const (
	DefaultPutCommand = "$EPICS_BASE_RELEASE/bin/rhel6-x86_64/caput"
	DefaultGetCommand = "$EPICS_BASE_RELEASE/bin/rhel6-x86_64/caget"
	DefaultShell      = "/bin/sh"
)

// CommandConfig configures a CommandClient.
type CommandConfig struct {
	// PutCommand and GetCommand are shell words naming the tools. They are
	// passed to the shell unquoted so variables expand.
	PutCommand string
	GetCommand string

	// Shell runs the command line with "-c".
	Shell string

	// Env is the process environment. Nil inherits os.Environ().
	Env []string

	Logger *slog.Logger
}

// CommandClient implements Client by running caget/caput through the shell.
type CommandClient struct {
	put    string
	get    string
	shell  string
	env    []string
	logger *slog.Logger
}

// NewCommandClient creates a CommandClient, filling defaults.
func NewCommandClient(cfg CommandConfig) *CommandClient {
	c := &CommandClient{
		put:    cfg.PutCommand,
		get:    cfg.GetCommand,
		shell:  cfg.Shell,
		env:    cfg.Env,
		logger: cfg.Logger,
	}
	if c.put == "" {
		c.put = DefaultPutCommand
	}
	if c.get == "" {
		c.get = DefaultGetCommand
	}
	if c.shell == "" {
		c.shell = DefaultShell
	}
	if c.env == nil {
		c.env = os.Environ()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Get runs the read tool for name.
func (c *CommandClient) Get(ctx context.Context, name string) (Output, error) {
	return c.run(ctx, c.CommandLine("get", name))
}

// Put runs the write tool for name with value.
func (c *CommandClient) Put(ctx context.Context, name, value string) (Output, error) {
	return c.run(ctx, c.CommandLine("put", name, value))
}

// CommandLine returns the shell command line for op ("get" or "put").
// Arguments are quoted; the tool path is not.
func (c *CommandClient) CommandLine(op, name string, value ...string) string {
	if op == "put" {
		return c.put + " " + shellquote.Join(append([]string{name}, value...)...)
	}
	return c.get + " " + shellquote.Join(name)
}

func (c *CommandClient) run(ctx context.Context, line string) (Output, error) {
	c.logger.Info("## Running command: ##", "command", line)

	cmd := exec.CommandContext(ctx, c.shell, "-c", line)
	cmd.Env = c.env
	cmd.Stdin = strings.NewReader("")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Output{Text: stdout.String(), ErrText: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// A non-zero status still produced output worth inspecting.
		out.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		c.logger.Error("command could not be run", "command", line, "error", err)
		return out, fmt.Errorf("running %q: %w", line, err)
	}

	c.logger.Info("Return code", "code", out.ExitCode, "elapsed", time.Since(start))
	c.logger.Debug("Command output", "stdout", out.Text, "stderr", out.ErrText)
	return out, nil
}

var _ Client = (*CommandClient)(nil)
