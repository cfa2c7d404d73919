// Package redirect constructs redirect target URLs from a matched rule.
package redirect

import (
	"net/url"
	"strings"

	"github.com/joeychilson/redirector/logger"
	"github.com/joeychilson/redirector/rule"
)

// Builder computes the redirect destination for a URL and a matched rule.
type Builder struct {
	log logger.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Noop()
	}
	return &Builder{log: log}
}

// Build returns the destination URL for originalURL under r. It never
// fails: on any parse error it returns originalURL unchanged, which
// callers must treat as "no redirect" (string equality is the contract).
//
// The rule's prefix selects the construction mode, checked in order:
//
//  1. Full-URL prefix (starts with http:// or https://): the prefix is
//     parsed as a URL and its `url` query parameter is set to the full
//     original URL. Other query parameters are untouched; an existing
//     `url` parameter is overwritten.
//  2. Path-bearing prefix (contains a slash): raw string concatenation
//     prefix + originalURL, no separator normalization. Rule authors are
//     responsible for trailing slashes and query markers.
//  3. Bare-domain prefix: the original URL's host is replaced by the
//     prefix; scheme, path, query and fragment are preserved verbatim.
func (b *Builder) Build(originalURL string, r rule.Rule) string {
	switch {
	case strings.HasPrefix(r.Prefix, "http://") || strings.HasPrefix(r.Prefix, "https://"):
		return b.buildFullURL(originalURL, r.Prefix)
	case strings.Contains(r.Prefix, "/"):
		return r.Prefix + originalURL
	default:
		return b.buildHostSwap(originalURL, r.Prefix)
	}
}

// buildFullURL wraps originalURL as the `url` query parameter of prefix.
func (b *Builder) buildFullURL(originalURL, prefix string) string {
	u, err := url.Parse(prefix)
	if err != nil {
		b.log.Warn("redirect prefix is not a valid URL, passing through",
			"prefix", prefix, "error", err)
		return originalURL
	}
	q := u.Query()
	q.Set("url", originalURL)
	u.RawQuery = q.Encode()
	return u.String()
}

// buildHostSwap replaces the host of originalURL with prefix, keeping
// scheme, path, query and fragment.
func (b *Builder) buildHostSwap(originalURL, prefix string) string {
	u, err := url.Parse(originalURL)
	if err != nil || u.Scheme == "" {
		b.log.Warn("cannot parse navigation URL, passing through",
			"url", originalURL, "error", err)
		return originalURL
	}

	var sb strings.Builder
	sb.WriteString(u.Scheme)
	sb.WriteString("://")
	sb.WriteString(prefix)
	sb.WriteString(u.EscapedPath())
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.EscapedFragment())
	}
	return sb.String()
}
