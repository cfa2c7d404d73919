package rule

import (
	"testing"

	"github.com/joeychilson/redirector/logger"
)

func wildcardRule(id, pattern string, enabled bool) Rule {
	return Rule{ID: id, Pattern: pattern, Enabled: enabled, Kind: KindWildcard}
}

func TestFindFirstMatchWins(t *testing.T) {
	m := NewMatcher(logger.Noop())
	rules := []Rule{
		wildcardRule("a", "*://example.com/*", true),
		wildcardRule("b", "*://example.com/page*", true),
	}

	matched, ok := m.Find("https://example.com/page", rules)
	if !ok {
		t.Fatal("Find() should match")
	}
	if matched.ID != "a" {
		t.Errorf("Find() matched %q, want earliest rule %q", matched.ID, "a")
	}
}

func TestFindSkipsDisabled(t *testing.T) {
	m := NewMatcher(logger.Noop())
	rules := []Rule{
		wildcardRule("a", "*://example.com/*", false),
		wildcardRule("b", "*://example.com/*", true),
	}

	matched, ok := m.Find("https://example.com/page", rules)
	if !ok {
		t.Fatal("Find() should match the enabled rule")
	}
	if matched.ID != "b" {
		t.Errorf("Find() matched %q, want %q", matched.ID, "b")
	}

	onlyDisabled := []Rule{wildcardRule("a", "*", false)}
	if _, ok := m.Find("https://anything", onlyDisabled); ok {
		t.Error("Find() must never select a disabled rule")
	}
}

func TestFindSkipsInvalidPattern(t *testing.T) {
	m := NewMatcher(logger.Noop())
	rules := []Rule{
		{ID: "bad", Pattern: `[unclosed`, Enabled: true, Kind: KindRegex},
		wildcardRule("good", "*://example.com/*", true),
	}

	matched, ok := m.Find("https://example.com/page", rules)
	if !ok {
		t.Fatal("Find() should continue past invalid patterns")
	}
	if matched.ID != "good" {
		t.Errorf("Find() matched %q, want %q", matched.ID, "good")
	}
}

func TestFindNoMatch(t *testing.T) {
	m := NewMatcher(logger.Noop())

	if _, ok := m.Find("https://example.com", nil); ok {
		t.Error("Find() on empty rules should not match")
	}

	rules := []Rule{wildcardRule("a", "*://other.com/*", true)}
	if _, ok := m.Find("https://example.com", rules); ok {
		t.Error("Find() should not match unrelated rules")
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	m := NewMatcher(logger.Noop())
	rules := []Rule{wildcardRule("a", "*://Example.COM/*", true)}

	if _, ok := m.Find("HTTPS://example.com/Page", rules); !ok {
		t.Error("Find() should match case-insensitively")
	}
}

func TestFindUsesPatternCache(t *testing.T) {
	m := NewMatcher(logger.Noop())
	rules := []Rule{wildcardRule("a", "*://example.com/*", true)}

	// Repeated lookups must stay deterministic with the cache warm.
	for i := 0; i < 3; i++ {
		matched, ok := m.Find("https://example.com/x", rules)
		if !ok || matched.ID != "a" {
			t.Fatal("Find() result changed across cached lookups")
		}
	}
}
