package model

import (
	"net/url"
	"strings"
)

// hostHasAuthoritativeSuffix reports whether rawURL's host ends in ".edu" or
// ".gov" (spec §4.2 Stage C). Parsing failures are treated as non-authoritative
// rather than propagating an error — a malformed source URL should never
// silently earn a citation boost.
func hostHasAuthoritativeSuffix(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".gov")
}
