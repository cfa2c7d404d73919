package rule

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects how a rule's pattern is interpreted.
type Kind int

const (
	// KindWildcard patterns use `*` (any sequence) and `?` (any single
	// character); every other character matches literally.
	KindWildcard Kind = iota
	// KindRegex patterns are compiled directly as regular expressions.
	KindRegex
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k == KindRegex {
		return "regex"
	}
	return "wildcard"
}

// Rule decides whether and how a URL is rewritten. The pattern selects
// matching URLs; the prefix selects the rewrite mode (see the redirect
// package).
type Rule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pattern   string    `json:"pattern"`
	Prefix    string    `json:"prefix"`
	Enabled   bool      `json:"isEnabled"`
	Kind      Kind      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ruleJSON is the wire representation. The pattern kind travels as the
// boolean `isRegex` flag for compatibility with existing clients.
type ruleJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pattern   string    `json:"pattern"`
	Prefix    string    `json:"prefix"`
	Enabled   bool      `json:"isEnabled"`
	Regex     bool      `json:"isRegex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleJSON{
		ID:        r.ID,
		Name:      r.Name,
		Pattern:   r.Pattern,
		Prefix:    r.Prefix,
		Enabled:   r.Enabled,
		Regex:     r.Kind == KindRegex,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID = w.ID
	r.Name = w.Name
	r.Pattern = w.Pattern
	r.Prefix = w.Prefix
	r.Enabled = w.Enabled
	r.Kind = KindWildcard
	if w.Regex {
		r.Kind = KindRegex
	}
	r.CreatedAt = w.CreatedAt
	r.UpdatedAt = w.UpdatedAt
	return nil
}

// New creates an enabled rule with a generated ID and timestamps.
func New(name, pattern, prefix string, kind Kind) Rule {
	now := time.Now().UTC()
	return Rule{
		ID:        uuid.NewString(),
		Name:      name,
		Pattern:   pattern,
		Prefix:    prefix,
		Enabled:   true,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Compile builds the rule's matcher. Regex patterns compile as-is;
// wildcard patterns are translated first. Matching is case-insensitive
// and unanchored in both modes.
func (r Rule) Compile() (*regexp.Regexp, error) {
	expr := r.Pattern
	if r.Kind == KindWildcard {
		expr = translateWildcard(r.Pattern)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", r.Kind, r.Pattern, err)
	}
	return re, nil
}

// translateWildcard converts a wildcard pattern to a regular expression:
// literal dots are escaped, `*` matches any sequence and `?` matches
// exactly one character.
func translateWildcard(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	for _, c := range pattern {
		switch c {
		case '.':
			b.WriteString(`\.`)
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteByte('.')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
