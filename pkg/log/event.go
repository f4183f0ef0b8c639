package log

import "time"

// Event is a single trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies one harness invocation (UUID).
	RunID string `cbor:"2,keyasint"`

	// TestID is the test case the event belongs to, if any.
	TestID string `cbor:"3,keyasint,omitempty"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Header       *HeaderEvent       `cbor:"10,keyasint,omitempty"`
	Command      *CommandEvent      `cbor:"11,keyasint,omitempty"`
	Verification *VerificationEvent `cbor:"12,keyasint,omitempty"`
	StateChange  *StateChangeEvent  `cbor:"13,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"`
}

// Kind classifies an event.
type Kind uint8

const (
	// KindHeader marks the start of a run.
	KindHeader Kind = 0
	// KindCommand is a PV read or write.
	KindCommand Kind = 1
	// KindVerification is a sequence check outcome.
	KindVerification Kind = 2
	// KindState is a slot state change.
	KindState Kind = 3
	// KindError is a failure.
	KindError Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "HEADER"
	case KindCommand:
		return "COMMAND"
	case KindVerification:
		return "VERIFY"
	case KindState:
		return "STATE"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseKind returns the Kind for a name as printed by String.
func ParseKind(s string) (Kind, bool) {
	for k := KindHeader; k <= KindError; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Operation is the direction of a PV command.
type Operation uint8

const (
	// OperationGet reads a PV (caget).
	OperationGet Operation = 0
	// OperationPut writes a PV (caput).
	OperationPut Operation = 1
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OperationGet:
		return "GET"
	case OperationPut:
		return "PUT"
	default:
		return "UNKNOWN"
	}
}

// HeaderEvent identifies the tool that wrote the trace.
type HeaderEvent struct {
	Version string   `cbor:"1,keyasint"`
	Format  string   `cbor:"2,keyasint"`
	Args    []string `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures one invocation of an external PV tool.
type CommandEvent struct {
	Operation Operation `cbor:"1,keyasint"`

	// PV is the full process variable name.
	PV string `cbor:"2,keyasint"`

	// Value written (puts only).
	Value string `cbor:"3,keyasint,omitempty"`

	// Command is the shell command line, when a process was run.
	Command string `cbor:"4,keyasint,omitempty"`

	ExitCode int    `cbor:"5,keyasint"`
	Stdout   string `cbor:"6,keyasint,omitempty"`
	Stderr   string `cbor:"7,keyasint,omitempty"`

	// Duration of the invocation. Stored as nanoseconds.
	Duration time.Duration `cbor:"8,keyasint,omitempty"`

	// Failed is set when the tool could not be invoked at all.
	Failed bool `cbor:"9,keyasint,omitempty"`
}

// VerificationEvent captures a pulse-id sequence check.
type VerificationEvent struct {
	Passed   bool `cbor:"1,keyasint"`
	Count    int  `cbor:"2,keyasint"`
	Interval int  `cbor:"3,keyasint"`

	// Index of the first offending token (failures only).
	Index    int    `cbor:"4,keyasint,omitempty"`
	Previous int64  `cbor:"5,keyasint,omitempty"`
	Current  int64  `cbor:"6,keyasint,omitempty"`
	Reason   string `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures slot lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntitySlot is an EDEF slot.
	StateEntitySlot StateEntity = 0
	// StateEntityRun is a measurement run.
	StateEntityRun StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySlot:
		return "SLOT"
	case StateEntityRun:
		return "RUN"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures a failure.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
