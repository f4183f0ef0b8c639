package runner

import (
	"testing"

	"github.com/hmbui/bsacore-test/internal/testharness/loader"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name, pattern string
		want          bool
	}{
		{"TC-BSA-001", "*", true},
		{"TC-BSA-001", "", true},
		{"TC-BSA-001", "TC-BSA-001", true},
		{"TC-BSA-001", "TC-BSA-002", false},
		{"TC-BSA-001", "TC-BSA*", true},
		{"TC-BSA-001", "*BSA*", true},
		{"TC-BSA-001", "*001", true},
		{"TC-BSA-001", "TC-BSA-00?", true},
		{"TC-BSA-001", "TC-EDEF*", false},
		{"TC-BSA-001", "[", false},
		{"[", "[", true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.pattern, func(t *testing.T) {
			got := matchPattern(tt.name, tt.pattern)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.name, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestFilterByPattern_CommaSeparated(t *testing.T) {
	cases := []*loader.TestCase{
		{ID: "TC-BSA-000", Name: "averaged"},
		{ID: "TC-BSA-001", Name: "unaveraged"},
		{ID: "TC-EDEF-001", Name: "reservation"},
		{ID: "TC-MASK-001", Name: "masks"},
	}

	filtered := filterByPattern(cases, "TC-BSA*,TC-MASK*")
	if len(filtered) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(filtered), ids(filtered))
	}
	assertContainsID(t, filtered, "TC-BSA-000")
	assertContainsID(t, filtered, "TC-BSA-001")
	assertContainsID(t, filtered, "TC-MASK-001")
}

func TestFilterByPattern_EmptySegments(t *testing.T) {
	cases := []*loader.TestCase{
		{ID: "TC-BSA-000"},
		{ID: "TC-EDEF-001"},
	}

	filtered := filterByPattern(cases, "TC-BSA*,, TC-EDEF* ")
	if len(filtered) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(filtered))
	}

	filtered = filterByPattern(cases, " , ")
	if len(filtered) != 2 {
		t.Fatalf("expected all cases for a blank pattern, got %d", len(filtered))
	}
}

func TestFilterByPattern_NoDuplicates(t *testing.T) {
	cases := []*loader.TestCase{
		{ID: "TC-BSA-001", Name: "unaveraged"},
	}

	filtered := filterByPattern(cases, "TC-BSA*,*averaged")
	if len(filtered) != 1 {
		t.Fatalf("expected 1 match (no duplicates), got %d", len(filtered))
	}
}

func TestFilterByTags(t *testing.T) {
	cases := []*loader.TestCase{
		{ID: "TC-001", Tags: []string{"long", "averaging"}},
		{ID: "TC-002", Tags: []string{"count-history"}},
		{ID: "TC-003", Tags: []string{"long"}},
		{ID: "TC-004"},
	}

	filtered := filterByTags(cases, "long")
	if len(filtered) != 2 {
		t.Fatalf("expected 2, got %d: %v", len(filtered), ids(filtered))
	}
	assertContainsID(t, filtered, "TC-001")
	assertContainsID(t, filtered, "TC-003")

	filtered = filterByTags(cases, "count-history,averaging")
	if len(filtered) != 2 {
		t.Fatalf("expected 2, got %d: %v", len(filtered), ids(filtered))
	}

	if got := filterByTags(cases, ""); len(got) != 4 {
		t.Fatalf("expected 4 for empty filter, got %d", len(got))
	}
}

func TestFilterByExcludeTags(t *testing.T) {
	cases := []*loader.TestCase{
		{ID: "TC-001", Tags: []string{"long", "averaging"}},
		{ID: "TC-002", Tags: []string{"count-history"}},
		{ID: "TC-003"},
	}

	filtered := filterByExcludeTags(cases, "long")
	if len(filtered) != 2 {
		t.Fatalf("expected 2, got %d: %v", len(filtered), ids(filtered))
	}
	assertContainsID(t, filtered, "TC-002")
	assertContainsID(t, filtered, "TC-003")

	if got := filterByExcludeTags(cases, ""); len(got) != 3 {
		t.Fatalf("expected 3 for empty exclude, got %d", len(got))
	}
}

// helpers

func ids(cases []*loader.TestCase) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.ID
	}
	return out
}

func assertContainsID(t *testing.T, cases []*loader.TestCase, id string) {
	t.Helper()
	for _, c := range cases {
		if c.ID == id {
			return
		}
	}
	t.Errorf("expected to find %s in results %v", id, ids(cases))
}
