// Package engine provides test execution orchestration for the BsaCore test harness.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/internal/testharness/loader"
)

// TestResult represents the outcome of a single test case.
type TestResult struct {
	// TestCase is the test case that was executed.
	TestCase *loader.TestCase

	// Passed indicates if all steps passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// StepResults contains results for each step.
	StepResults []*StepResult

	// Duration is how long the test took.
	Duration time.Duration

	// StartTime when the test started.
	StartTime time.Time

	// EndTime when the test finished.
	EndTime time.Time

	// Skipped indicates if the test was skipped.
	Skipped bool

	// SkipReason explains why the test was skipped.
	SkipReason string
}

// StepResult represents the outcome of a single step.
type StepResult struct {
	// Step is the step that was executed.
	Step *loader.Step

	// StepIndex is the index of this step (0-based).
	StepIndex int

	// Passed indicates if the step passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// ExpectResults maps expectation keys to their assertion results.
	ExpectResults map[string]*ExpectResult

	// Duration is how long the step took.
	Duration time.Duration

	// Output contains any captured output from the step.
	Output map[string]interface{}
}

// ExpectResult represents the result of checking an expectation.
type ExpectResult struct {
	Key      string
	Expected interface{}
	Actual   interface{}
	Passed   bool
	Message  string
}

// SuiteResult represents the outcome of running a test suite.
type SuiteResult struct {
	// SuiteName identifies the test suite.
	SuiteName string

	// Results contains results for each test case.
	Results []*TestResult

	PassCount int
	FailCount int
	SkipCount int

	// Duration is the total time for all tests.
	Duration time.Duration
}

// ActionHandler processes a test step action.
// Returns outputs to make available for subsequent steps, and an error if the action failed.
type ActionHandler func(ctx context.Context, step *loader.Step, state *ExecutionState) (map[string]interface{}, error)

// ExpectChecker checks an expectation against actual results.
type ExpectChecker func(key string, expected interface{}, state *ExecutionState) *ExpectResult

// ExecutionState holds state during test execution.
type ExecutionState struct {
	// TestCase being executed.
	TestCase *loader.TestCase

	// Outputs accumulated from previous steps.
	Outputs map[string]interface{}

	// Context for cancellation.
	Context context.Context

	// Custom state that handlers can use.
	Custom map[string]interface{}
}

// NewExecutionState creates a new execution state.
func NewExecutionState(ctx context.Context) *ExecutionState {
	return &ExecutionState{
		Outputs: make(map[string]interface{}),
		Custom:  make(map[string]interface{}),
		Context: ctx,
	}
}

// Get retrieves a value from outputs. A key written as "{{ name }}" looks
// up name.
func (s *ExecutionState) Get(key string) (interface{}, bool) {
	if len(key) > 4 && strings.HasPrefix(key, "{{") && strings.HasSuffix(key, "}}") {
		key = strings.TrimSpace(key[2 : len(key)-2])
	}
	v, ok := s.Outputs[key]
	return v, ok
}

// Set stores a value in outputs.
func (s *ExecutionState) Set(key string, value interface{}) {
	s.Outputs[key] = value
}

// EngineConfig configures the test engine.
type EngineConfig struct {
	// DefaultTimeout is the default timeout for test cases.
	DefaultTimeout time.Duration

	// StepTimeout is the default timeout for individual steps.
	StepTimeout time.Duration

	// SuiteTimeout bounds RunSuite. Zero derives it from the test timeouts.
	SuiteTimeout time.Duration

	// StopOnFirstFailure stops execution after the first test failure.
	StopOnFirstFailure bool

	// SetupPreconditions runs before the first step of every test case.
	SetupPreconditions func(ctx context.Context, tc *loader.TestCase, state *ExecutionState) error

	// TeardownTest runs after the last step of every executed test case.
	TeardownTest func(ctx context.Context, tc *loader.TestCase, state *ExecutionState)

	// OnTestComplete is called after each test case in RunSuite.
	OnTestComplete func(result *TestResult)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		DefaultTimeout: 5 * time.Minute,
		StepTimeout:    time.Minute,
	}
}
