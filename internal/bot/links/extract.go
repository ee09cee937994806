// Package links extracts canonical post URLs from chat messages.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

// statusLinkPattern matches plain-text post links the transport did not
// annotate. The numeric status id segment is required.
var statusLinkPattern = regexp.MustCompile(`https?://(?:www\.)?(?:twitter\.com|x\.com)/[^/\s]+/status/\d+`)

var statusIDPattern = regexp.MustCompile(`/status/(\d+)`)

// Extract returns the deduplicated, insertion-ordered canonical post URLs
// found in a message. Annotation-derived URLs come first (the transport's
// own parse of "this is a link" is authoritative), pattern matches over the
// raw text are appended. URLs are normalized with Normalize before
// deduplication. A message with no text and no annotations yields nil.
func Extract(text string, annotations []string) []string {
	var candidates []string
	candidates = append(candidates, annotations...)
	if text != "" {
		candidates = append(candidates, statusLinkPattern.FindAllString(text, -1)...)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, raw := range candidates {
		url := Normalize(raw)
		if !isPostLink(url) {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

// Normalize strips the query string and fragment from a URL. Normalizing
// an already-normalized URL yields the same URL.
func Normalize(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return url
}

// postHosts is the known social-platform domain set.
var postHosts = map[string]struct{}{
	"twitter.com": {},
	"x.com":       {},
}

// isPostLink reports whether raw points at a post on a known platform
// domain and carries a numeric status id segment.
func isPostLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if _, ok := postHosts[host]; !ok {
		return false
	}
	return statusIDPattern.MatchString(u.Path)
}

// StatusID returns the numeric status id segment of a post URL, or ""
// when the URL does not contain one.
func StatusID(url string) string {
	m := statusIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
