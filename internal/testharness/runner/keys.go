package runner

// Step actions.
const (
	ActionLocateSlot        = "locate_slot"
	ActionSetupMasking      = "setup_masking"
	ActionSetupMeasurement  = "setup_measurement"
	ActionRun               = "run"
	ActionVerifyResult      = "verify_result"
	ActionCheckCountHistory = "check_count_history"
	ActionWait              = "wait"
)

// Step parameters.
const (
	ParamEDEFName         = "edef_name"
	ParamReserve          = "reserve"
	ParamInclusion        = "inclusion"
	ParamExclusion        = "exclusion"
	ParamMeasurementCount = "measurement_count"
	ParamAverageSamples   = "average_samples"
	ParamDurationSeconds  = "duration_seconds"
	ParamDurationMs       = "duration_ms"
	ParamExpectedInterval = "expected_interval"
	ParamSkipTokens       = "skip_tokens"
)

// Step outputs.
const (
	KeySlot           = "slot"
	KeyEDEFName       = "edef_name"
	KeyMasked         = "masks_applied"
	KeyConfigured     = "measurement_configured"
	KeyRunOK          = "run_ok"
	KeyResultText     = "result_text"
	KeyResultError    = "result_error"
	KeyVerified       = "verified"
	KeyTokenCount     = "token_count"
	KeyFailureIndex   = "failure_index"
	KeyFailureReason  = "failure_reason"
	KeyCountHistoryOK = "count_history_ok"
	KeyWaited         = "waited"
)

// Keys into ExecutionState.Custom.
const (
	stateSession    = "bsa_session"
	stateResultText = "bsa_result_text"
)

// DefaultSkipTokens is the number of leading caget tokens (PV name and
// element count) ahead of the waveform values.
const DefaultSkipTokens = 2
