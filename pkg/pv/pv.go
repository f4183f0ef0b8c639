// Package pv reads and writes EPICS process variables.
//
// The Client interface is the only way the harness touches the control
// system. CommandClient runs the Channel Access command line tools; the
// test harness supplies an in-memory implementation, and mocks holds a
// generated one for unit tests.
package pv

import (
	"context"
	"fmt"
	"strings"
)

// Output is what a read or write produced.
type Output struct {
	// Text is the tool's standard output.
	Text string
	// ErrText is the tool's standard error. Any non-empty value means the
	// control system reported a problem.
	ErrText string
	// ExitCode is the process exit status, 0 for in-memory clients.
	ExitCode int
}

// Failed reports whether the operation produced any error text, including
// a bare newline.
func (o Output) Failed() bool {
	return o.ErrText != ""
}

// Client reads and writes named fields.
//
// A returned error means the operation could not be attempted at all (the
// tool is missing, the context was cancelled). Control system failures are
// reported through Output.ErrText with a nil error.
type Client interface {
	Get(ctx context.Context, name string) (Output, error)
	Put(ctx context.Context, name, value string) (Output, error)
}

// Name builds "<namespace>:<slot>:<field>".
func Name(namespace string, slot int, field string) string {
	return fmt.Sprintf("%s:%d:%s", namespace, slot, field)
}

// Value strips the PV name the read tool echoes in front of the value.
// caget prints "<name> <value>"; anything that does not start with the
// name is returned trimmed but otherwise untouched.
func Value(text, name string) string {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, name); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		return strings.TrimSpace(rest)
	}
	return s
}

// Waveform splits array output into element tokens. caget prints
// "<name> <count> v1 v2 ..."; the first skip tokens are dropped.
func Waveform(text string, skip int) []string {
	fields := strings.Fields(text)
	if skip < 0 {
		skip = 0
	}
	if len(fields) <= skip {
		return nil
	}
	return fields[skip:]
}
