package rule

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joeychilson/redirector/logger"
)

const defaultCacheSize = 256

// Matcher finds the first enabled rule whose pattern matches a URL.
// Compiled patterns are cached in an LRU so hot rules are not recompiled
// on every navigation; the cache never changes matching behavior.
type Matcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
	log   logger.Logger
}

// NewMatcher creates a matcher with the default pattern cache size.
func NewMatcher(log logger.Logger) *Matcher {
	if log == nil {
		log = logger.Noop()
	}
	cache, _ := lru.New[string, *regexp.Regexp](defaultCacheSize)
	return &Matcher{cache: cache, log: log}
}

// Find returns the earliest-indexed enabled rule whose pattern matches
// url, scanning rules in order. Disabled rules are skipped. A rule whose
// pattern fails to compile is treated as non-matching and the scan
// continues; the scan never aborts. The second return is false when no
// rule matches.
func (m *Matcher) Find(url string, rules []Rule) (Rule, bool) {
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		re, err := m.compile(r)
		if err != nil {
			m.log.Debug("skipping rule with invalid pattern",
				"rule_id", r.ID, "pattern", r.Pattern, "error", err)
			continue
		}
		if re.MatchString(url) {
			return r, true
		}
	}
	return Rule{}, false
}

// compile returns the cached matcher for a rule, compiling on miss.
func (m *Matcher) compile(r Rule) (*regexp.Regexp, error) {
	key := r.Kind.String() + ":" + r.Pattern
	if re, ok := m.cache.Get(key); ok {
		return re, nil
	}
	re, err := r.Compile()
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, re)
	return re, nil
}
