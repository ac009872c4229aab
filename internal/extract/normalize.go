package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	spacesExpr  = regexp.MustCompile(`\s+`)
	integerExpr = regexp.MustCompile(`\d[\d,.\s\x{202f}\x{00a0}]*`)
	decimalExpr = regexp.MustCompile(`\d+(?:\.\d+)?`)
	salvageExpr = regexp.MustCompile(`(www\.[^\s/]+|https?://[^\s/]+)`)
)

// NormalizeText collapses runs of whitespace to a single space and trims.
// Empty-after-trim is absent, never an empty string with meaning.
func NormalizeText(s string) string {
	return strings.TrimSpace(spacesExpr.ReplaceAllString(s, " "))
}

// ResolveURL turns href into an absolute URL. Absolute http(s) values pass
// through, root-relative paths are resolved against the page origin, other
// relative values are joined against the base. Unresolvable values come back
// empty.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return ""
	}

	if strings.HasPrefix(href, "/") {
		return baseURL.Scheme + "://" + baseURL.Host + href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// HostAllowed reports whether resolved's host matches the allow suffix.
// An empty suffix allows everything.
func HostAllowed(resolved, allowHost string) bool {
	if allowHost == "" {
		return true
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	allowHost = strings.ToLower(allowHost)
	return host == allowHost || strings.HasSuffix(host, "."+allowHost)
}

// FirstInt extracts the first run of digits from s, stripping thousands
// separators (commas, dots, regular and narrow no-break spaces). Returns
// ok=false when no digits are present.
func FirstInt(s string) (int, bool) {
	match := integerExpr.FindString(s)
	if match == "" {
		return 0, false
	}
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstFloat extracts the first floating-point-looking substring.
func FirstFloat(s string) (float64, bool) {
	match := decimalExpr.FindString(s)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeLinkedIn validates a LinkedIn profile URL: it must be absolute and
// its host must contain linkedin.com, otherwise the value is dropped.
func NormalizeLinkedIn(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if !strings.Contains(strings.ToLower(u.Host), "linkedin.com") {
		return ""
	}
	return raw
}

// SalvageURL pulls a plausible URL out of a malformed value ("see www.x.com
// for details"). Returns empty when nothing URL-shaped is present.
func SalvageURL(raw string) string {
	match := salvageExpr.FindString(raw)
	if match == "" {
		return ""
	}
	if !strings.HasPrefix(match, "http") {
		match = "https://" + match
	}
	return match
}
