package excludes

import "testing"

func TestMatchDefaults(t *testing.T) {
	m := NewMatcher([]string{".git/", ".gitignore", ".DS_Store", "*.tmp"})

	cases := []struct {
		path string
		want bool
	}{
		{"a.txt", false},
		{"b.tmp", true},
		{"notes/b.tmp", true},
		{".git", true},
		{".git/config", true},
		{"docs/.git/config", true},
		{".gitignore", true},
		{"docs/.gitignore", true},
		{".DS_Store", true},
		{"photos/.DS_Store", true},
		{"gitignore", false},
		{"docs/readme.md", false},
		{"tmp", false},
	}
	for _, tc := range cases {
		if got := m.Match(tc.path); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestMatchDirectoryPattern(t *testing.T) {
	m := NewMatcher([]string{"cache/"})

	for _, denied := range []string{"cache", "cache/a", "cache/a/b", "deep/cache/file"} {
		if !m.Match(denied) {
			t.Errorf("Match(%q) = false, want true", denied)
		}
	}
	for _, allowed := range []string{"cached", "a/cached/file", "cache.txt"} {
		if m.Match(allowed) {
			t.Errorf("Match(%q) = true, want false", allowed)
		}
	}
}

func TestMatchGlobPattern(t *testing.T) {
	m := NewMatcher([]string{"draft-*"})
	if !m.Match("draft-1.md") {
		t.Error("expected draft-1.md to be excluded")
	}
	if !m.Match("notes/draft-2.md") {
		t.Error("expected nested draft-2.md to be excluded")
	}
	if m.Match("mydraft-1.md") {
		t.Error("mydraft-1.md should not match draft-*")
	}
}

func TestMatchNormalizesPath(t *testing.T) {
	m := NewMatcher([]string{".git/"})
	if !m.Match("/.git/config") {
		t.Error("leading slash should be tolerated")
	}
	if !m.Match("./.git/config") {
		t.Error("leading ./ should be tolerated")
	}
	if m.Match("") {
		t.Error("empty path never matches")
	}
	if m.Match(".") {
		t.Error("root never matches")
	}
}

func TestMatchBadGlobFallsBackToLiteral(t *testing.T) {
	m := NewMatcher([]string{"[unclosed"})
	if !m.Match("[unclosed") {
		t.Error("unparseable pattern should match as a literal")
	}
	if m.Match("unclosed") {
		t.Error("unparseable pattern must not match other names")
	}
}

func TestMatcherCopiesPatterns(t *testing.T) {
	patterns := []string{"*.tmp"}
	m := NewMatcher(patterns)
	patterns[0] = "*.txt"
	if m.Match("a.txt") {
		t.Error("mutating the input slice must not change matching")
	}
	if !m.Match("a.tmp") {
		t.Error("matcher lost its original pattern")
	}
}

func TestPatternsReturnsCopy(t *testing.T) {
	m := NewMatcher([]string{"*.tmp"})
	got := m.Patterns()
	got[0] = "*.txt"
	if m.Match("a.txt") {
		t.Error("mutating Patterns() result must not change matching")
	}
}
