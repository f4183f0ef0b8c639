// Package version holds the tool version and the trace file format version.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the release of the harness. Overridden at build time with
// -ldflags "-X github.com/hmbui/bsacore-test/pkg/version.Version=...".
var Version = "0.1.0-dev"

// TraceFormat is the trace file format written by this build.
const TraceFormat = "1.0"

// String returns the line printed by -version.
func String(program string) string {
	return fmt.Sprintf("%s %s (trace format %s)", program, Version, TraceFormat)
}

// FormatVersion represents a parsed "major.minor" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (FormatVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return FormatVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	return v.Major == other.Major
}

// CanRead reports whether this build can decode a trace written with the
// given format string.
func CanRead(format string) bool {
	theirs, err := Parse(format)
	if err != nil {
		return false
	}
	ours, _ := Parse(TraceFormat)
	return ours.Compatible(theirs)
}
