package runner

import (
	"path"
	"slices"
	"strings"

	"github.com/hmbui/bsacore-test/internal/testharness/loader"
)

// filterByPattern keeps test cases whose ID or name matches one of the
// comma-separated glob patterns (e.g. "TC-BSA-00*,*count*").
func filterByPattern(cases []*loader.TestCase, pattern string) []*loader.TestCase {
	patterns := parseList(pattern)
	if len(patterns) == 0 {
		return cases
	}
	var filtered []*loader.TestCase
	for _, tc := range cases {
		for _, p := range patterns {
			if matchPattern(tc.ID, p) || matchPattern(tc.Name, p) {
				filtered = append(filtered, tc)
				break
			}
		}
	}
	return filtered
}

// filterByTags keeps only tests that have at least one of the given tags.
func filterByTags(cases []*loader.TestCase, tags string) []*loader.TestCase {
	wanted := parseList(tags)
	if len(wanted) == 0 {
		return cases
	}
	var filtered []*loader.TestCase
	for _, tc := range cases {
		if hasAnyTag(tc.Tags, wanted) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// filterByExcludeTags removes tests that have any of the given tags.
func filterByExcludeTags(cases []*loader.TestCase, excludeTags string) []*loader.TestCase {
	excluded := parseList(excludeTags)
	if len(excluded) == 0 {
		return cases
	}
	var filtered []*loader.TestCase
	for _, tc := range cases {
		if !hasAnyTag(tc.Tags, excluded) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// parseList splits a comma-separated string into trimmed non-empty items.
func parseList(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func hasAnyTag(testTags, wanted []string) bool {
	for _, t := range testTags {
		if slices.Contains(wanted, t) {
			return true
		}
	}
	return false
}

// matchPattern performs shell glob matching. A malformed pattern only
// matches itself.
func matchPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	ok, err := path.Match(pattern, name)
	if err != nil {
		return name == pattern
	}
	return ok
}
