package engine

// Infrastructure keys used internally by the engine.
const (
	InternalStepOutput = "__step_output"
)

// Output keys read by engine-level checkers.
const (
	KeyTokenCount  = "token_count"
	KeyResultError = "result_error"
	KeySlot        = "slot"
)

// Checker registration names. These are the expectation keys that appear in
// YAML test files and select a checker instead of the default comparison.
const (
	CheckerNameDefault             = "default"
	CheckerNameTokenCountAtLeast   = "token_count_at_least"
	CheckerNameResultErrorContains = "result_error_contains"
	CheckerNameSlotInRange         = "slot_in_range"
)
