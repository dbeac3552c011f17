// Package urlutil canonicalizes article URLs so the rest of the pipeline
// can use them as stable identity keys.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParamRe matches query parameter names injected by analytics
// campaigns. Prefix match, case-insensitive.
var trackingParamRe = regexp.MustCompile(`(?i)^(utm_|yclid|gclid|fbclid)`)

// Normalize returns a canonical form of the URL: the fragment is dropped and
// tracking query parameters are removed. On any parse failure the input is
// returned unchanged, so the function never fails the caller.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		var kept []string
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if i := strings.Index(pair, "="); i >= 0 {
				key = pair[:i]
			}
			if trackingParamRe.MatchString(key) {
				continue
			}
			kept = append(kept, pair)
		}
		u.RawQuery = strings.Join(kept, "&")
	}

	return u.String()
}

// Domain returns the lower-cased host of the URL, or "unknown" when the URL
// cannot be parsed or has no host. Used as the diversification key.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.ToLower(u.Host)
}
