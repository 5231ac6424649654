package browser

import (
	"net/url"
	"regexp"
	"strings"
)

// MatchURL reports whether rawURL matches a glob pattern. "**" matches any
// sequence of characters, "*" any sequence without a slash and "?" a literal
// question mark. A pattern without wildcards must equal the URL.
func MatchURL(pattern, rawURL string) bool {
	if pattern == "" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == rawURL
	}

	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	if re.MatchString(rawURL) {
		return true
	}

	// Query strings and fragments do not take part in the match.
	if u, err := url.Parse(rawURL); err == nil && (u.RawQuery != "" || u.Fragment != "" || u.ForceQuery) {
		u.RawQuery = ""
		u.Fragment = ""
		u.ForceQuery = false
		return re.MatchString(u.String())
	}
	return false
}

// ResolveURL resolves target against base. Absolute targets are returned as is.
func ResolveURL(base, target string) (string, error) {
	t, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if t.IsAbs() || base == "" {
		return t.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(b.Path, "/") && !strings.HasPrefix(target, "/") {
		b.Path += "/"
	}
	return b.ResolveReference(t).String(), nil
}
