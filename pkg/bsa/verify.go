package bsa

import (
	"strconv"
	"strings"
)

// FailureReason says why a sequence failed verification.
type FailureReason string

const (
	ReasonNone       FailureReason = ""
	ReasonEmpty      FailureReason = "empty"
	ReasonConversion FailureReason = "conversion"
	ReasonDecrease   FailureReason = "decrease"
	ReasonInterval   FailureReason = "interval"
)

// Verification is the outcome of VerifySequence.
type Verification struct {
	Passed bool
	Reason FailureReason

	// Count is the number of tokens examined.
	Count int

	// Index is the position of the offending token. For a decrease or an
	// interval mismatch, Previous and Current hold the two values compared.
	Index    int
	Previous int64
	Current  int64

	// Err is set for conversion failures.
	Err error
}

// ParseToken converts one result token to an integer.
func ParseToken(token string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil {
		return 0, &ConversionError{Value: token, Err: err}
	}
	return v, nil
}

// VerifySequence checks that tokens form a strictly increasing sequence
// whose consecutive differences all equal interval exactly. It stops at the
// first failure.
func VerifySequence(tokens []string, interval int) Verification {
	if len(tokens) == 0 {
		return Verification{Reason: ReasonEmpty}
	}

	prev, err := ParseToken(tokens[0])
	if err != nil {
		return Verification{Reason: ReasonConversion, Count: 1, Index: 0, Err: err}
	}

	want := int64(interval)
	for i := 1; i < len(tokens); i++ {
		cur, err := ParseToken(tokens[i])
		if err != nil {
			return Verification{Reason: ReasonConversion, Count: i + 1, Index: i, Previous: prev, Err: err}
		}
		if cur < prev {
			return Verification{Reason: ReasonDecrease, Count: i + 1, Index: i, Previous: prev, Current: cur}
		}
		// cur >= prev here, so the difference fits in a uint64.
		if want < 0 || uint64(cur)-uint64(prev) != uint64(want) {
			return Verification{Reason: ReasonInterval, Count: i + 1, Index: i, Previous: prev, Current: cur}
		}
		prev = cur
	}

	return Verification{Passed: true, Count: len(tokens)}
}
