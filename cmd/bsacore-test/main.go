// Command bsacore-test runs BsaCore integration tests against an IOC.
//
// It locates the EDEF slot reserved under edef_name, configures masks and
// measurement counts, starts acquisition, and checks that the pulse-id
// history published under test_pv_name advances by a fixed interval.
//
// Usage:
//
//	bsacore-test [flags] <test_pv_name> <edef_name>
//
// Flags:
//
//	-log-level string     Log level: DEBUG, INFO, WARNING, ERROR, CRITICAL (default "INFO")
//	-log_level string     Alias of -log-level
//	-log-format string    Log format: console, json (default "console")
//	-version              Print the version and exit
//	-base-pv string       EDEF namespace (default "EDEF:SYS0")
//	-tests string         Test case file or directory (default: built-in cases)
//	-recursive            Load test cases from subdirectories too
//	-pattern string       Run only tests whose ID or name matches (comma-separated globs)
//	-tags string          Run only tests with one of these tags
//	-exclude-tags string  Skip tests with any of these tags
//	-wait duration        Override the acquisition wait of every run step
//	-caput string         Write tool (default "$EPICS_BASE_RELEASE/bin/rhel6-x86_64/caput")
//	-caget string         Read tool (default "$EPICS_BASE_RELEASE/bin/rhel6-x86_64/caget")
//	-shell string         Shell used to run the tools (default "/bin/sh")
//	-reserve              Reserve the EDEF through IOC:IN20:EV01:EDEFNAME first
//	-simulate             Run against an in-memory IOC instead of the tools
//	-json                 Output results as JSON
//	-junit                Output results as JUnit XML
//	-verbose              List steps in text output and log every PV command
//	-trace string         File path for the command trace (CBOR format)
//	-interactive          Open the PV console instead of running tests
//	-stop-on-failure      Stop after the first failing test
//
// Examples:
//
//	# Run the built-in cases
//	bsacore-test TST:SYS0 BSACORE_TEST
//
//	# Dry run against the simulated IOC with a short wait
//	bsacore-test -simulate -wait 2s TST:SYS0 BSACORE_TEST
//
//	# Run one case and keep a trace for bsacore-trace
//	bsacore-test -pattern TC-BSA-001 -trace run.cbor TST:SYS0 BSACORE_TEST
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/hmbui/bsacore-test/cmd/bsacore-test/interactive"
	"github.com/hmbui/bsacore-test/internal/logging"
	"github.com/hmbui/bsacore-test/internal/testharness/mock"
	"github.com/hmbui/bsacore-test/internal/testharness/runner"
	"github.com/hmbui/bsacore-test/pkg/bsa"
	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/pv"
	"github.com/hmbui/bsacore-test/pkg/version"
)

type options struct {
	testPV   string
	edefName string

	logLevel    string
	logFormat   string
	showVersion bool

	basePV      string
	tests       string
	recursive   bool
	pattern     string
	tags        string
	excludeTags string
	wait        time.Duration

	caput string
	caget string
	shell string

	reserve       bool
	simulate      bool
	jsonOut       bool
	junitOut      bool
	verbose       bool
	trace         string
	interactive   bool
	stopOnFailure bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// parseArgs accepts flags before, between and after the two positional
// arguments.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("bsacore-test", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: bsacore-test [flags] <test_pv_name> <edef_name>")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Flags:")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.logLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	fs.StringVar(&o.logLevel, "log_level", "INFO", "Alias of -log-level")
	fs.StringVar(&o.logFormat, "log-format", "console", "Log format: console, json")
	fs.BoolVar(&o.showVersion, "version", false, "Print the version and exit")
	fs.StringVar(&o.basePV, "base-pv", bsa.DefaultBasePV, "EDEF namespace")
	fs.StringVar(&o.tests, "tests", "", "Test case file or directory (default: built-in cases)")
	fs.BoolVar(&o.recursive, "recursive", false, "Load test cases from subdirectories too")
	fs.StringVar(&o.pattern, "pattern", "", "Run only tests whose ID or name matches (comma-separated globs)")
	fs.StringVar(&o.tags, "tags", "", "Run only tests with one of these tags (comma-separated)")
	fs.StringVar(&o.excludeTags, "exclude-tags", "", "Skip tests with any of these tags (comma-separated)")
	fs.DurationVar(&o.wait, "wait", 0, "Override the acquisition wait of every run step")
	fs.StringVar(&o.caput, "caput", pv.DefaultPutCommand, "Write tool")
	fs.StringVar(&o.caget, "caget", pv.DefaultGetCommand, "Read tool")
	fs.StringVar(&o.shell, "shell", pv.DefaultShell, "Shell used to run the tools")
	fs.BoolVar(&o.reserve, "reserve", false, "Reserve the EDEF through "+bsa.DefaultReservationPV+" first")
	fs.BoolVar(&o.simulate, "simulate", false, "Run against an in-memory IOC instead of the tools")
	fs.BoolVar(&o.jsonOut, "json", false, "Output results as JSON")
	fs.BoolVar(&o.junitOut, "junit", false, "Output results as JUnit XML")
	fs.BoolVar(&o.verbose, "verbose", false, "List steps in text output and log every PV command")
	fs.StringVar(&o.trace, "trace", "", "File path for the command trace (CBOR format)")
	fs.BoolVar(&o.interactive, "interactive", false, "Open the PV console instead of running tests")
	fs.BoolVar(&o.stopOnFailure, "stop-on-failure", false, "Stop after the first failing test")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if o.showVersion {
		return o, nil
	}
	if len(positional) != 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected <test_pv_name> <edef_name>, got %d arguments", len(positional))
	}
	o.testPV, o.edefName = positional[0], positional[1]
	if o.jsonOut && o.junitOut {
		return nil, errors.New("-json and -junit are mutually exclusive")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String("bsacore-test"))
		return 0
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	format, err := logging.ParseFormat(opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := logging.New(stderr, logging.Options{Level: level, Format: format})

	defer func() {
		if r := recover(); r != nil {
			logger.Log(context.Background(), logging.LevelCritical, "unexpected failure",
				"type", fmt.Sprintf("%T", r),
				"message", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			code = 1
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []log.Logger
	if opts.trace != "" {
		fileLogger, err := log.NewFileLogger(opts.trace)
		if err != nil {
			logger.Error("failed to create trace file", "path", opts.trace, "error", err)
			return 1
		}
		defer func() {
			if err := fileLogger.Close(); err != nil {
				logger.Warn("closing trace file", "error", err)
			}
		}()
		sinks = append(sinks, fileLogger)
	}
	if opts.verbose {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}
	recorder := log.NewRecorder(log.NewMultiLogger(sinks...))
	recorder.Header(ctx, version.Version, version.TraceFormat, args)

	client, waiter := newClient(opts, logger, stderr)
	client = pv.Traced(client, recorder)

	logger.Info("BsaCore test harness",
		"version", version.Version,
		"test_pv", opts.testPV,
		"edef", opts.edefName,
		"run_id", recorder.RunID())

	if opts.interactive {
		return runConsole(ctx, consoleConfig(opts, client, waiter, logger, recorder), logger)
	}

	outputFormat := "text"
	switch {
	case opts.jsonOut:
		outputFormat = "json"
	case opts.junitOut:
		outputFormat = "junit"
	}

	r := runner.New(&runner.Config{
		Client:             client,
		TestPV:             opts.testPV,
		EDEFName:           opts.edefName,
		BasePV:             opts.basePV,
		Reserve:            opts.reserve,
		TestPath:           opts.tests,
		Recursive:          opts.recursive,
		Pattern:            opts.pattern,
		Tags:               opts.tags,
		ExcludeTags:        opts.excludeTags,
		Wait:               opts.wait,
		StopOnFirstFailure: opts.stopOnFailure,
		Verbose:            opts.verbose,
		Output:             stdout,
		OutputFormat:       outputFormat,
		Logger:             logger,
		Recorder:           recorder,
		Waiter:             waiter,
	})

	result, err := r.Run(ctx)
	if err != nil {
		logger.Error("test run aborted", "type", fmt.Sprintf("%T", err), "error", err)
		recorder.Error(ctx, err, "suite")
		return 1
	}
	if result.FailCount > 0 {
		return 1
	}
	return 0
}

// newClient returns the PV client and the waiter paced to it. The simulated
// IOC finishes a run as soon as it starts, so waits are skipped.
func newClient(opts *options, logger *slog.Logger, stderr io.Writer) (pv.Client, bsa.Waiter) {
	if opts.simulate {
		ioc := mock.NewIOCAt(opts.testPV, opts.basePV)
		if !opts.reserve {
			ioc.Reserve(1, opts.edefName)
		}
		logger.Warn("using the simulated IOC; no PVs are touched")
		return ioc, &bsa.InstantWaiter{}
	}
	return pv.NewCommandClient(pv.CommandConfig{
		PutCommand: opts.caput,
		GetCommand: opts.caget,
		Shell:      opts.shell,
		Logger:     logger,
	}), bsa.NewCountdownWaiter(stderr)
}

func consoleConfig(opts *options, client pv.Client, waiter bsa.Waiter, logger *slog.Logger, recorder *log.Recorder) interactive.Config {
	return interactive.Config{
		Client:   client,
		TestPV:   opts.testPV,
		EDEFName: opts.edefName,
		BasePV:   opts.basePV,
		Logger:   logger,
		Recorder: recorder,
		Waiter:   waiter,
	}
}

func runConsole(ctx context.Context, cfg interactive.Config, logger *slog.Logger) int {
	console, err := interactive.New(cfg)
	if err != nil {
		logger.Error("failed to start console", "error", err)
		return 1
	}
	console.Run(ctx)
	return 0
}
