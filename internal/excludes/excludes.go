// Package excludes implements the deny-list pattern matching shared by the
// cloud-sync and git adapters.
//
// Matching rule: a pattern is matched with path.Match against both the
// slash-separated path relative to the sync root and its final element. A
// pattern ending in "/" denotes a directory and matches the directory itself
// and everything beneath it. Patterns are case-sensitive and never anchored to
// the filesystem root.
package excludes

import (
	"path"
	"strings"
)

// Matcher evaluates a fixed, ordered set of exclusion patterns.
type Matcher struct {
	patterns []string
}

// NewMatcher builds a matcher from the given patterns. The slice is copied so
// later mutation of the argument cannot change matching behavior.
func NewMatcher(patterns []string) *Matcher {
	owned := make([]string, len(patterns))
	copy(owned, patterns)
	return &Matcher{patterns: owned}
}

// Patterns returns a copy of the configured patterns.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Match reports whether relPath (slash-separated, relative to the sync root)
// is denied by any pattern.
func (m *Matcher) Match(relPath string) bool {
	relPath = strings.TrimPrefix(path.Clean("/"+relPath), "/")
	if relPath == "" || relPath == "." {
		return false
	}
	for _, pattern := range m.patterns {
		if matchOne(pattern, relPath) {
			return true
		}
	}
	return false
}

func matchOne(pattern, relPath string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		// Directory pattern: the directory itself or anything under a
		// matching path segment.
		if nameMatch(dir, relPath) {
			return true
		}
		segments := strings.Split(relPath, "/")
		for i := range segments {
			prefix := strings.Join(segments[:i+1], "/")
			if nameMatch(dir, prefix) || nameMatch(dir, segments[i]) {
				return true
			}
		}
		return false
	}
	return nameMatch(pattern, relPath) || nameMatch(pattern, path.Base(relPath))
}

// nameMatch applies glob matching, treating an unparseable pattern as a
// literal string comparison.
func nameMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return ok
}
