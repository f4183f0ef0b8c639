// Package runner executes BsaCore test cases against an IOC.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/internal/testharness/engine"
	"github.com/hmbui/bsacore-test/internal/testharness/loader"
	"github.com/hmbui/bsacore-test/internal/testharness/reporter"
	"github.com/hmbui/bsacore-test/pkg/bsa"
	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

// Runner executes test cases against one EDEF reservation.
type Runner struct {
	config       *Config
	engine       *engine.Engine
	engineConfig *engine.EngineConfig
	reporter     reporter.Reporter
	logger       *slog.Logger
	waiter       bsa.Waiter
}

// Config configures the test runner.
type Config struct {
	// Client reads and writes PVs. Required.
	Client pv.Client

	// TestPV is the prefix of the result history PVs.
	TestPV string

	// EDEFName is the reservation name every test locates.
	EDEFName string

	// BasePV is the EDEF namespace. Defaults to bsa.DefaultBasePV.
	BasePV string

	// Reserve writes EDEFName to ReservationPV once before the suite.
	Reserve       bool
	ReservationPV string

	// TestPath is a test file or directory. Empty runs the built-in cases.
	TestPath  string
	Recursive bool

	// Pattern filters test cases by ID or name (comma-separated globs).
	Pattern string

	// Tags includes only tests with at least one of these tags (comma-separated).
	Tags string

	// ExcludeTags excludes tests with any of these tags (comma-separated).
	ExcludeTags string

	// Wait overrides the acquisition time of every run step when non-zero.
	Wait time.Duration

	// Timeout is the default test timeout.
	Timeout time.Duration

	// SuiteTimeout is the overall suite timeout (0 = auto-calculate).
	SuiteTimeout time.Duration

	// StopOnFirstFailure stops the suite after the first failing test.
	StopOnFirstFailure bool

	// Verbose lists steps and expectations in text output.
	Verbose bool

	// Output is where to write results.
	Output io.Writer

	// OutputFormat is "text", "json", or "junit".
	OutputFormat string

	Logger   *slog.Logger
	Recorder *log.Recorder

	// Waiter paces run and wait steps. Defaults to a countdown on stdout.
	Waiter bsa.Waiter
}

// New creates a runner with every BsaCore action registered.
func New(config *Config) *Runner {
	engineConfig := engine.DefaultConfig()
	if config.Timeout > 0 {
		engineConfig.DefaultTimeout = config.Timeout
	}
	engineConfig.SuiteTimeout = config.SuiteTimeout
	engineConfig.StopOnFirstFailure = config.StopOnFirstFailure
	if config.Wait > 0 {
		engineConfig.StepTimeout += config.Wait
	}

	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.BasePV == "" {
		config.BasePV = bsa.DefaultBasePV
	}
	if config.ReservationPV == "" {
		config.ReservationPV = bsa.DefaultReservationPV
	}

	r := &Runner{
		config:       config,
		engine:       engine.NewWithConfig(engineConfig),
		engineConfig: engineConfig,
		logger:       config.Logger,
		waiter:       config.Waiter,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.waiter == nil {
		r.waiter = bsa.NewCountdownWaiter(os.Stdout)
	}

	engineConfig.SetupPreconditions = r.setupPreconditions
	engineConfig.TeardownTest = r.teardownTest
	engineConfig.OnTestComplete = func(result *engine.TestResult) {
		r.logResult(result)
		r.reporter.ReportTest(result)
	}

	engine.RegisterDomainCheckers(r.engine)

	switch config.OutputFormat {
	case "json":
		r.reporter = reporter.NewJSONReporter(config.Output, true)
	case "junit":
		r.reporter = reporter.NewJUnitReporter(config.Output)
	default:
		r.reporter = reporter.NewTextReporter(config.Output, config.Verbose)
	}

	r.registerHandlers()
	return r
}

// LoadCases loads and filters the configured test cases.
func (r *Runner) LoadCases() ([]*loader.TestCase, error) {
	var (
		cases []*loader.TestCase
		err   error
	)
	if r.config.TestPath == "" {
		cases, err = loader.LoadBuiltin()
	} else {
		cases, err = loader.LoadPath(r.config.TestPath, r.config.Recursive)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}

	cases = filterByPattern(cases, r.config.Pattern)
	cases = filterByTags(cases, r.config.Tags)
	cases = filterByExcludeTags(cases, r.config.ExcludeTags)

	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases found matching filters (pattern=%q, tags=%q, exclude-tags=%q)",
			r.config.Pattern, r.config.Tags, r.config.ExcludeTags)
	}
	if err := r.checkActions(cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// checkActions rejects cases naming an action no handler is registered for,
// so a typo fails before any PV is written.
func (r *Runner) checkActions(cases []*loader.TestCase) error {
	for _, tc := range cases {
		for i, step := range tc.Steps {
			if !r.engine.HasHandler(step.Action) {
				return fmt.Errorf("%s step %d: unknown action %q", tc.ID, i+1, step.Action)
			}
		}
	}
	return nil
}

// Run executes all matching test cases and returns the suite result.
func (r *Runner) Run(ctx context.Context) (*engine.SuiteResult, error) {
	if r.config.Client == nil {
		return nil, errors.New("runner: Config.Client is required")
	}
	if r.config.TestPV == "" || r.config.EDEFName == "" {
		return nil, errors.New("runner: test PV and EDEF name are required")
	}

	cases, err := r.LoadCases()
	if err != nil {
		return nil, err
	}
	if r.config.Wait > 0 {
		extendTimeouts(cases, r.config.Wait)
	}

	if r.config.Reserve {
		if err := r.reserve(ctx); err != nil {
			return nil, err
		}
	}

	result := r.engine.RunSuite(ctx, fmt.Sprintf("BsaCore Tests (%s, %s)", r.config.TestPV, r.config.EDEFName), cases)
	r.reporter.ReportSummary(result)
	return result, nil
}

func (r *Runner) reserve(ctx context.Context) error {
	out, err := r.config.Client.Put(ctx, r.config.ReservationPV, r.config.EDEFName)
	if err != nil {
		return fmt.Errorf("reserving edef %q: %w", r.config.EDEFName, err)
	}
	if out.Failed() {
		return fmt.Errorf("reserving edef %q: %s", r.config.EDEFName, strings.TrimSpace(out.ErrText))
	}
	r.config.Recorder.State(ctx, log.StateEntitySlot, "", "reserved", r.config.EDEFName)
	r.logger.Info("EDEF reserved", "edef", r.config.EDEFName, "pv", r.config.ReservationPV)
	return nil
}

// extendTimeouts raises each test timeout so that every run step can wait
// the overridden duration.
func extendTimeouts(cases []*loader.TestCase, wait time.Duration) {
	for _, tc := range cases {
		runs := 0
		for _, s := range tc.Steps {
			if s.Action == ActionRun {
				runs++
			}
		}
		if runs == 0 {
			continue
		}
		needed := time.Duration(runs)*wait + time.Minute
		if d, err := time.ParseDuration(tc.Timeout); err == nil && d >= needed {
			continue
		}
		tc.Timeout = needed.String()
	}
}

func (r *Runner) setupPreconditions(ctx context.Context, tc *loader.TestCase, state *engine.ExecutionState) error {
	r.logger.Info("Starting test", "id", tc.ID, "name", tc.Name)
	r.config.Recorder.State(log.WithTestID(ctx, tc.ID), log.StateEntityRun, "", "started", tc.Name)
	return nil
}

func (r *Runner) teardownTest(ctx context.Context, tc *loader.TestCase, state *engine.ExecutionState) {
	delete(state.Custom, stateSession)
	delete(state.Custom, stateResultText)
}

func (r *Runner) logResult(result *engine.TestResult) {
	tc := result.TestCase
	switch {
	case result.Skipped:
		r.logger.Info("Test skipped", "id", tc.ID, "reason", result.SkipReason)
	case result.Passed:
		r.logger.Info(fmt.Sprintf("Test '%s' PASSED.", tc.Name), "id", tc.ID, "duration", result.Duration)
	default:
		r.logger.Error(fmt.Sprintf("Test '%s' FAILED.", tc.Name), "id", tc.ID, "error", result.Error)
	}
}
