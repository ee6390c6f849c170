package csp

import (
	"net/http"
	"strings"
)

// Recognized header names, in lookup priority order. X-WebKit-CSP is the
// legacy experimental name; its capitalization is not MIME-canonical, so
// lookups fold case over the raw keys instead of relying on http.Header's
// canonicalization.
const (
	HeaderName       = "Content-Security-Policy"
	LegacyHeaderName = "X-WebKit-CSP"
)

// PolicyFromHeader finds the first recognized CSP header, preferring
// Content-Security-Policy over X-WebKit-CSP, and parses its value. ok is
// false when neither header is present.
func PolicyFromHeader(h http.Header) (p *Policy, ok bool) {
	for _, name := range []string{HeaderName, LegacyHeaderName} {
		if value, found := headerLookup(h, name); found {
			return ParsePolicy(value), true
		}
	}
	return nil, false
}

// WritePolicyHeader removes every case variant of both recognized header
// names from h, then writes the serialized policy under both names. An
// empty or nil policy only removes; stale headers never outlive the policy
// they carried.
func WritePolicyHeader(h http.Header, p *Policy) {
	for key := range h {
		if strings.EqualFold(key, HeaderName) || strings.EqualFold(key, LegacyHeaderName) {
			delete(h, key)
		}
	}
	if p == nil || p.Empty() {
		return
	}
	value := p.String()
	h[HeaderName] = []string{value}
	h[LegacyHeaderName] = []string{value}
}

// headerLookup scans h for name case-insensitively, returning the first
// value of the first matching key.
func headerLookup(h http.Header, name string) (string, bool) {
	for key, values := range h {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}
