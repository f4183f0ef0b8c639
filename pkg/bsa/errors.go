package bsa

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotNotFound is returned when no slot carries the reservation name.
	ErrSlotNotFound = errors.New("edef slot not found")

	// ErrRun is returned when the control system reports an error while
	// starting a run or reading the count history.
	ErrRun = errors.New("test run error")
)

// MaskKind names a mask list.
type MaskKind string

const (
	MaskInclusion MaskKind = "inclusion"
	MaskExclusion MaskKind = "exclusion"
)

// MaskCountError reports a mask list of the wrong length.
type MaskCountError struct {
	Kind MaskKind
	Got  int
	Want int
}

func (e *MaskCountError) Error() string {
	return fmt.Sprintf("the %s mask list has %d masks, expected exactly %d", e.Kind, e.Got, e.Want)
}

// ConversionError reports a result token that is not a base-10 integer.
type ConversionError struct {
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert value %q to int: %v", e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
