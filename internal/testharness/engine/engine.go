package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hmbui/bsacore-test/internal/testharness/loader"
)

// Engine executes test cases.
type Engine struct {
	config   *EngineConfig
	handlers map[string]ActionHandler
	checkers map[string]ExpectChecker
	mu       sync.RWMutex
}

// New creates a new test engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new test engine with the given configuration.
func NewWithConfig(config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:   config,
		handlers: make(map[string]ActionHandler),
		checkers: make(map[string]ExpectChecker),
	}
	e.RegisterChecker(CheckerNameDefault, defaultChecker)
	return e
}

// RegisterHandler registers an action handler.
func (e *Engine) RegisterHandler(action string, handler ActionHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[action] = handler
}

// RegisterChecker registers an expectation checker.
func (e *Engine) RegisterChecker(key string, checker ExpectChecker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkers[key] = checker
}

// HasHandler reports whether an action is registered.
func (e *Engine) HasHandler(action string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.handlers[action]
	return ok
}

// Run executes a single test case. Steps run in order and the first
// failing step ends the test.
func (e *Engine) Run(ctx context.Context, tc *loader.TestCase) *TestResult {
	result := &TestResult{
		TestCase:  tc,
		StartTime: time.Now(),
	}
	finish := func() *TestResult {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	if tc.Skip {
		result.Skipped = true
		result.SkipReason = tc.SkipReason
		if result.SkipReason == "" {
			result.SkipReason = "skipped by test definition"
		}
		return finish()
	}

	timeout := e.config.DefaultTimeout
	if tc.Timeout != "" {
		if d, err := time.ParseDuration(tc.Timeout); err == nil {
			timeout = d
		}
	}

	testCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	state := NewExecutionState(testCtx)
	state.TestCase = tc

	if e.config.SetupPreconditions != nil {
		if err := e.config.SetupPreconditions(testCtx, tc, state); err != nil {
			result.Error = fmt.Errorf("precondition setup failed: %w", err)
			return finish()
		}
	}
	if e.config.TeardownTest != nil {
		defer e.config.TeardownTest(testCtx, tc, state)
	}

	result.Passed = true
	for i := range tc.Steps {
		stepResult := e.executeStep(testCtx, &tc.Steps[i], i, state)
		result.StepResults = append(result.StepResults, stepResult)

		if !stepResult.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("step %d (%s): %w", i+1, tc.Steps[i].Action, stepResult.Error)
			break
		}
	}

	return finish()
}

// executeStep executes a single step.
func (e *Engine) executeStep(ctx context.Context, step *loader.Step, index int, state *ExecutionState) *StepResult {
	result := &StepResult{
		Step:          step,
		StepIndex:     index,
		ExpectResults: make(map[string]*ExpectResult),
		Output:        make(map[string]interface{}),
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	timeout := e.config.StepTimeout
	if step.Timeout != "" {
		if d, err := time.ParseDuration(step.Timeout); err == nil {
			timeout = d
		}
	}

	// A step that waits must be allowed to finish its wait.
	if dur := stepDurationFromParams(step.Params); dur > 0 {
		if needed := dur + 10*time.Second; needed > timeout {
			timeout = needed
		}
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.mu.RLock()
	handler, exists := e.handlers[step.Action]
	e.mu.RUnlock()

	if !exists {
		result.Error = fmt.Errorf("unknown action: %s", step.Action)
		return result
	}

	resolved := *step
	resolved.Params = InterpolateParams(step.Params, state)

	outputs, err := handler(stepCtx, &resolved, state)
	if err != nil {
		result.Error = err
		return result
	}

	for k, v := range outputs {
		state.Set(k, v)
		result.Output[k] = v
	}

	outputCopy := make(map[string]interface{}, len(result.Output))
	for k, v := range result.Output {
		outputCopy[k] = v
	}
	state.Set(InternalStepOutput, outputCopy)

	result.Passed = true
	for key, expected := range InterpolateParams(step.Expect, state) {
		expectResult := e.checkExpectation(key, expected, state)
		result.ExpectResults[key] = expectResult
		if !expectResult.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("expectation failed: %s - %s", key, expectResult.Message)
		}
	}

	return result
}

// checkExpectation checks a single expectation.
func (e *Engine) checkExpectation(key string, expected interface{}, state *ExecutionState) *ExpectResult {
	e.mu.RLock()
	checker, exists := e.checkers[key]
	if !exists {
		checker = e.checkers[CheckerNameDefault]
	}
	e.mu.RUnlock()

	return checker(key, expected, state)
}

// RunSuite executes all test cases sequentially.
func (e *Engine) RunSuite(ctx context.Context, name string, cases []*loader.TestCase) *SuiteResult {
	result := &SuiteResult{SuiteName: name}
	if result.SuiteName == "" {
		result.SuiteName = "BsaCore Test Suite"
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	suiteTimeout := e.config.SuiteTimeout
	if suiteTimeout == 0 {
		var total time.Duration
		for _, tc := range cases {
			d := e.config.DefaultTimeout
			if tc.Timeout != "" {
				if parsed, err := time.ParseDuration(tc.Timeout); err == nil {
					d = parsed
				}
			}
			total += d
		}
		suiteTimeout = total + 2*time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, suiteTimeout)
	defer cancel()

	for _, tc := range cases {
		if ctx.Err() != nil {
			return result
		}

		testResult := e.Run(ctx, tc)
		result.Results = append(result.Results, testResult)

		switch {
		case testResult.Skipped:
			result.SkipCount++
		case testResult.Passed:
			result.PassCount++
		default:
			result.FailCount++
		}

		if e.config.OnTestComplete != nil {
			e.config.OnTestComplete(testResult)
		}

		if !testResult.Passed && !testResult.Skipped && e.config.StopOnFirstFailure {
			break
		}
	}

	return result
}

// stepDurationFromParams extracts an explicit wait duration from step parameters.
// It checks duration_seconds and duration_ms, returning the longer of the two.
func stepDurationFromParams(params map[string]interface{}) time.Duration {
	var d time.Duration
	if sec, ok := params["duration_seconds"]; ok {
		if v, ok := ToFloat64(sec); ok {
			d = time.Duration(v * float64(time.Second))
		}
	}
	if ms, ok := params["duration_ms"]; ok {
		if v, ok := ToFloat64(ms); ok {
			if md := time.Duration(v * float64(time.Millisecond)); md > d {
				d = md
			}
		}
	}
	return d
}
