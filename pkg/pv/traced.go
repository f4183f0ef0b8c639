package pv

import (
	"context"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
)

// commandLiner is implemented by clients that run a shell command.
type commandLiner interface {
	CommandLine(op, name string, value ...string) string
}

// tracedClient records every call of the wrapped Client.
type tracedClient struct {
	next Client
	rec  *log.Recorder
}

// Traced wraps c so every Get and Put is recorded as a command event.
// A nil recorder returns c unchanged.
func Traced(c Client, rec *log.Recorder) Client {
	if rec == nil {
		return c
	}
	return &tracedClient{next: c, rec: rec}
}

func (t *tracedClient) Get(ctx context.Context, name string) (Output, error) {
	start := time.Now()
	out, err := t.next.Get(ctx, name)
	t.record(ctx, log.OperationGet, name, "", out, err, time.Since(start))
	return out, err
}

func (t *tracedClient) Put(ctx context.Context, name, value string) (Output, error) {
	start := time.Now()
	out, err := t.next.Put(ctx, name, value)
	t.record(ctx, log.OperationPut, name, value, out, err, time.Since(start))
	return out, err
}

func (t *tracedClient) record(ctx context.Context, op log.Operation, name, value string, out Output, err error, d time.Duration) {
	ev := log.CommandEvent{
		Operation: op,
		PV:        name,
		Value:     value,
		ExitCode:  out.ExitCode,
		Stdout:    out.Text,
		Stderr:    out.ErrText,
		Duration:  d,
		Failed:    err != nil,
	}
	if cl, ok := t.next.(commandLiner); ok {
		if op == log.OperationPut {
			ev.Command = cl.CommandLine("put", name, value)
		} else {
			ev.Command = cl.CommandLine("get", name)
		}
	}
	t.rec.Command(ctx, ev)
	if err != nil {
		t.rec.Error(ctx, err, op.String()+" "+name)
	}
}
