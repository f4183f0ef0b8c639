// Package log provides a structured command trace for BsaCore test runs.
//
// This package defines the Logger interface and Event types for capturing
// every PV read and write a run performs, together with verification
// outcomes and slot state changes. It is separate from operational logging
// (slog): the trace is a complete machine-readable record of what the
// harness asked the control system and what came back.
//
// # Basic Usage
//
// Components accept a Logger and record events as they happen:
//
//	// Mirror events to the console via slog
//	trace := log.NewSlogAdapter(logger)
//
//	// Keep a binary trace file
//	file, _ := log.NewFileLogger("run.btrace")
//
//	// Both
//	trace = log.NewMultiLogger(log.NewSlogAdapter(logger), file)
//
// # Event Kinds
//
//   - Header: tool version and run id, written once per file session
//   - Command: a caget/caput invocation with its output (CommandEvent)
//   - Verification: the result of a pulse-id sequence check
//   - State: slot reservation and discovery (StateChangeEvent)
//   - Error: failures that ended a step
//
// # File Format
//
// Trace files use CBOR encoding with the .btrace extension. The
// bsacore-trace CLI provides viewing, filtering, and export.
package log
