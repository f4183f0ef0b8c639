package loader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed cases/*.yaml
var builtinFS embed.FS

// ParseTestCase parses a test case from YAML bytes.
func ParseTestCase(data []byte) (*TestCase, error) {
	var tc TestCase
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, &LoadError{Line: yamlErrorLine(err), Message: "failed to parse YAML", Cause: err}
	}

	if tc.ID == "" {
		return nil, &LoadError{Message: "test case ID is required"}
	}

	if len(tc.Steps) == 0 {
		return nil, &LoadError{Message: "test case must have at least one step"}
	}

	if tc.Timeout != "" {
		if _, err := time.ParseDuration(tc.Timeout); err != nil {
			return nil, &LoadError{Message: "invalid timeout", Cause: err}
		}
	}

	for i, step := range tc.Steps {
		if step.Action == "" {
			return nil, &LoadError{Message: fmt.Sprintf("step %d has no action", i+1)}
		}
		if step.Timeout != "" {
			if _, err := time.ParseDuration(step.Timeout); err != nil {
				return nil, &LoadError{Message: fmt.Sprintf("step %d: invalid timeout", i+1), Cause: err}
			}
		}
	}

	if tc.Name == "" {
		tc.Name = tc.ID
	}

	return &tc, nil
}

// yamlErrorLine extracts "line N" from a yaml.v3 syntax error.
func yamlErrorLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		_, _ = fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}

// LoadTestCase loads a test case from a file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}
	return parseNamed(path, data)
}

func parseNamed(name string, data []byte) (*TestCase, error) {
	tc, err := ParseTestCase(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = name
			return nil, le
		}
		return nil, &LoadError{File: name, Message: err.Error()}
	}
	return tc, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDirectory loads all test cases from a directory.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*TestCase, error) {
	var cases []*TestCase

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		tc, err := LoadTestCase(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}

	return cases, checkUniqueIDs(cases)
}

// LoadDirectoryRecursive loads all test cases from a directory and subdirectories.
func LoadDirectoryRecursive(dir string) ([]*TestCase, error) {
	var cases []*TestCase

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		tc, err := LoadTestCase(path)
		if err != nil {
			return err
		}
		cases = append(cases, tc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cases, checkUniqueIDs(cases)
}

// LoadPath loads a single file, a directory, or a directory tree when
// recursive is set.
func LoadPath(p string, recursive bool) ([]*TestCase, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, &LoadError{File: p, Message: "failed to stat", Cause: err}
	}
	if !info.IsDir() {
		tc, err := LoadTestCase(p)
		if err != nil {
			return nil, err
		}
		return []*TestCase{tc}, nil
	}
	if recursive {
		return LoadDirectoryRecursive(p)
	}
	return LoadDirectory(p)
}

// LoadBuiltin returns the test cases compiled into the binary, sorted by ID.
func LoadBuiltin() ([]*TestCase, error) {
	var cases []*TestCase
	err := fs.WalkDir(builtinFS, "cases", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		data, err := builtinFS.ReadFile(p)
		if err != nil {
			return err
		}
		tc, err := parseNamed(path.Base(p), data)
		if err != nil {
			return err
		}
		cases = append(cases, tc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].ID < cases[j].ID })
	return cases, checkUniqueIDs(cases)
}

func checkUniqueIDs(cases []*TestCase) error {
	seen := make(map[string]bool, len(cases))
	for _, tc := range cases {
		if seen[tc.ID] {
			return &LoadError{Message: fmt.Sprintf("duplicate test case ID %q", tc.ID)}
		}
		seen[tc.ID] = true
	}
	return nil
}
