package engine

import (
	"fmt"
	"strings"
)

// ToFloat64 converts various numeric types to float64 for comparison.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// defaultChecker compares the output named by key with expected.
// "present" passes for any value.
func defaultChecker(key string, expected interface{}, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(key)
	if !exists {
		return &ExpectResult{
			Key:      key,
			Expected: expected,
			Passed:   false,
			Message:  fmt.Sprintf("key %q not found in outputs", key),
		}
	}

	if expStr, ok := expected.(string); ok && expStr == "present" {
		return &ExpectResult{
			Key:      key,
			Expected: expected,
			Actual:   actual,
			Passed:   true,
			Message:  fmt.Sprintf("%s = %v", key, actual),
		}
	}

	passed := fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	result := &ExpectResult{
		Key:      key,
		Expected: expected,
		Actual:   actual,
		Passed:   passed,
	}
	if passed {
		result.Message = fmt.Sprintf("%s = %v", key, expected)
	} else {
		result.Message = fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	return result
}

// CheckerTokenCountAtLeast checks that the history had at least the
// expected number of values.
func CheckerTokenCountAtLeast(key string, expected interface{}, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(KeyTokenCount)
	if !exists {
		return &ExpectResult{Key: key, Expected: expected, Message: fmt.Sprintf("output key %q not found", KeyTokenCount)}
	}
	a, ok1 := ToFloat64(actual)
	e, ok2 := ToFloat64(expected)
	if !ok1 || !ok2 {
		return &ExpectResult{
			Key: key, Expected: expected, Actual: actual,
			Message: fmt.Sprintf("cannot compare non-numeric values: %T and %T", actual, expected),
		}
	}
	passed := a >= e
	return &ExpectResult{
		Key: key, Expected: expected, Actual: actual, Passed: passed,
		Message: fmt.Sprintf("%v >= %v = %v", a, e, passed),
	}
}

// CheckerResultErrorContains checks the error text of the last history read.
func CheckerResultErrorContains(key string, expected interface{}, state *ExecutionState) *ExpectResult {
	actual, _ := state.Get(KeyResultError)
	text := fmt.Sprintf("%v", actual)
	if actual == nil {
		text = ""
	}
	want := fmt.Sprintf("%v", expected)
	passed := strings.Contains(text, want)
	return &ExpectResult{
		Key: key, Expected: expected, Actual: text, Passed: passed,
		Message: fmt.Sprintf("%q contains %q = %v", text, want, passed),
	}
}

// CheckerSlotInRange checks the located slot against [min, max].
func CheckerSlotInRange(key string, expected interface{}, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(KeySlot)
	if !exists {
		return &ExpectResult{Key: key, Expected: expected, Message: fmt.Sprintf("output key %q not found", KeySlot)}
	}
	bounds, ok := expected.([]interface{})
	if !ok || len(bounds) != 2 {
		return &ExpectResult{Key: key, Expected: expected, Actual: actual, Message: "expected [min, max]"}
	}
	lo, ok1 := ToFloat64(bounds[0])
	hi, ok2 := ToFloat64(bounds[1])
	v, ok3 := ToFloat64(actual)
	if !ok1 || !ok2 || !ok3 {
		return &ExpectResult{Key: key, Expected: expected, Actual: actual, Message: "non-numeric range or slot"}
	}
	passed := v >= lo && v <= hi
	return &ExpectResult{
		Key: key, Expected: expected, Actual: actual, Passed: passed,
		Message: fmt.Sprintf("%v in [%v, %v] = %v", v, lo, hi, passed),
	}
}

// RegisterDomainCheckers registers the BsaCore-specific checkers.
func RegisterDomainCheckers(e *Engine) {
	e.RegisterChecker(CheckerNameTokenCountAtLeast, CheckerTokenCountAtLeast)
	e.RegisterChecker(CheckerNameResultErrorContains, CheckerResultErrorContains)
	e.RegisterChecker(CheckerNameSlotInRange, CheckerSlotInRange)
}
