// Package interactive implements the -interactive PV console of bsacore-test.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/hmbui/bsacore-test/pkg/bsa"
	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

// Config configures a Console.
type Config struct {
	Client   pv.Client
	TestPV   string
	EDEFName string
	BasePV   string
	Logger   *slog.Logger
	Recorder *log.Recorder

	// Waiter paces the run command. Defaults to a countdown on the console.
	Waiter bsa.Waiter
}

// Console reads commands and drives one EDEF slot by hand.
type Console struct {
	cfg     Config
	rl      *readline.Instance
	out     io.Writer
	session *bsa.Session
	result  string
}

// New creates a console on the terminal.
func New(cfg Config) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bsa> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(cfg, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(cfg Config, out io.Writer) *Console {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Waiter == nil {
		cfg.Waiter = bsa.NewCountdownWaiter(out)
	}
	return &Console{cfg: cfg, out: out}
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context) {
	defer c.rl.Close()

	c.printHelp()

	for ctx.Err() == nil {
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			return
		}
		if c.Exec(ctx, line) {
			return
		}
	}
}

// Exec runs one command line. It returns true when the console should exit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "get", "g":
		c.cmdGet(ctx, args)
	case "put", "p":
		c.cmdPut(ctx, args)
	case "slot":
		c.cmdSlot(ctx)
	case "mask":
		c.cmdMask(ctx, args)
	case "meas":
		c.cmdMeas(ctx, args)
	case "run":
		c.cmdRun(ctx, args)
	case "verify", "v":
		c.cmdVerify(ctx, args)
	case "count":
		c.cmdCount(ctx)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
BsaCore Console Commands:
  PV access:
    get <pv>                 - Read a PV
    put <pv> <value>         - Write a PV

  EDEF slot:
    slot                     - Locate the slot carrying the EDEF name
    mask <i1..i5> <e1..e5>   - Write 5 inclusion then 5 exclusion masks
    meas <count> <avg>       - Write MEASCNT and AVGCNT
    run [seconds]            - Start acquisition, wait, read PULSEIDHST
    verify <interval> [skip] - Check the last history for a fixed interval
    count                    - Read the pulse-id count history

  General:
    help                     - Show this help
    quit                     - Exit`)
}

func (c *Console) print(out pv.Output) {
	if text := strings.TrimSpace(out.Text); text != "" {
		fmt.Fprintln(c.out, text)
	}
	if errText := strings.TrimSpace(out.ErrText); errText != "" {
		fmt.Fprintf(c.out, "Error: %s\n", errText)
	}
}

func (c *Console) cmdGet(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: get <pv>")
		return
	}
	out, err := c.cfg.Client.Get(ctx, args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.print(out)
}

func (c *Console) cmdPut(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: put <pv> <value>")
		return
	}
	out, err := c.cfg.Client.Put(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.print(out)
}

func (c *Console) cmdSlot(ctx context.Context) {
	s, err := bsa.New(ctx, bsa.Config{
		Client:   c.cfg.Client,
		TestName: "interactive",
		TestPV:   c.cfg.TestPV,
		EDEFName: c.cfg.EDEFName,
		BasePV:   c.cfg.BasePV,
		Logger:   c.cfg.Logger,
		Waiter:   c.cfg.Waiter,
		Recorder: c.cfg.Recorder,
	})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.session = s
	c.result = ""
	fmt.Fprintf(c.out, "EDEF '%s' is in slot %d\n", c.cfg.EDEFName, s.Slot())
}

// requireSession locates the slot on first use.
func (c *Console) requireSession(ctx context.Context) bool {
	if c.session == nil {
		c.cmdSlot(ctx)
	}
	return c.session != nil
}

func (c *Console) cmdMask(ctx context.Context, args []string) {
	want := bsa.InclusionMaskCount + bsa.ExclusionMaskCount
	if len(args) != want {
		fmt.Fprintf(c.out, "Usage: mask <i1..i%d> <e1..e%d> (%d values)\n",
			bsa.InclusionMaskCount, bsa.ExclusionMaskCount, want)
		return
	}
	masks := make([]uint32, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 32)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid mask %q: %v\n", a, err)
			return
		}
		masks[i] = uint32(v)
	}
	if !c.requireSession(ctx) {
		return
	}
	if err := c.session.SetupMasking(ctx, masks[:bsa.InclusionMaskCount], masks[bsa.InclusionMaskCount:]); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Masks written")
}

func (c *Console) cmdMeas(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: meas <count> <avg>")
		return
	}
	count, err1 := strconv.Atoi(args[0])
	avg, err2 := strconv.Atoi(args[1])
	if err := errors.Join(err1, err2); err != nil {
		fmt.Fprintf(c.out, "Invalid number: %v\n", err)
		return
	}
	if !c.requireSession(ctx) {
		return
	}
	if err := c.session.SetupMeasurement(ctx, count, avg); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Measurement configured")
}

func (c *Console) cmdRun(ctx context.Context, args []string) {
	d := bsa.DefaultWait
	if len(args) > 0 {
		sec, err := strconv.ParseFloat(args[0], 64)
		if err != nil || sec < 0 {
			fmt.Fprintf(c.out, "Invalid duration: %s\n", args[0])
			return
		}
		d = time.Duration(sec * float64(time.Second))
	}
	if !c.requireSession(ctx) {
		return
	}
	out, err := c.session.Run(ctx, d)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.result = out.Text
	fmt.Fprintf(c.out, "Read %d values from %s\n",
		len(pv.Waveform(out.Text, 2)), c.session.ResultPV())
}

func (c *Console) cmdVerify(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: verify <interval> [skip]")
		return
	}
	if c.session == nil || c.result == "" {
		fmt.Fprintln(c.out, "No result history; use 'run' first")
		return
	}
	interval, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid interval: %s\n", args[0])
		return
	}
	skip := 2
	if len(args) == 2 {
		if skip, err = strconv.Atoi(args[1]); err != nil {
			fmt.Fprintf(c.out, "Invalid skip: %s\n", args[1])
			return
		}
	}

	v := c.session.Verify(ctx, pv.Waveform(c.result, skip), interval)
	if v.Passed {
		fmt.Fprintf(c.out, "PASSED: %d values at interval %d\n", v.Count, interval)
		return
	}
	fmt.Fprintf(c.out, "FAILED (%s) at index %d\n", v.Reason, v.Index)
}

func (c *Console) cmdCount(ctx context.Context) {
	if !c.requireSession(ctx) {
		return
	}
	if err := c.session.CheckCountHistory(ctx); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s is readable\n", c.session.CountHistoryPV())
}
