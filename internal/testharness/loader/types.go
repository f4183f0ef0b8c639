// Package loader provides YAML test case loading for the BsaCore test harness.
package loader

import "strconv"

// TestCase represents a single test case loaded from YAML.
type TestCase struct {
	// ID is the unique test case identifier (e.g., "TC-BSA-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the test.
	Name string `yaml:"name"`

	// Description explains what the test validates.
	Description string `yaml:"description"`

	// Steps are the actions to execute in order.
	Steps []Step `yaml:"steps"`

	// Timeout is the maximum duration for the test (e.g., "5m").
	Timeout string `yaml:"timeout,omitempty"`

	// Tags for categorizing tests.
	Tags []string `yaml:"tags,omitempty"`

	// Skip disables the test case; SkipReason is reported instead.
	Skip       bool   `yaml:"skip,omitempty"`
	SkipReason string `yaml:"skip_reason,omitempty"`
}

// Step represents a single action in a test case.
type Step struct {
	// Action is the action to perform (e.g., "setup_masking", "run").
	Action string `yaml:"action"`

	// Params are parameters for the action.
	Params map[string]interface{} `yaml:"params,omitempty"`

	// Expect defines expected outcomes after the action.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Timeout overrides the engine step timeout for this step.
	Timeout string `yaml:"timeout,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`
}

// LoadError provides details about a test case loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Line > 0 {
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + msg
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
