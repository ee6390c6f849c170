package csp

import (
	"regexp"
	"strings"
)

var (
	rxNonce  = regexp.MustCompile(`(?i)^'?nonce-(.+?)'?$`)
	rxHash   = regexp.MustCompile(`(?i)^'?(sha256|sha384|sha512)-(.+?)'?$`)
	rxScheme = regexp.MustCompile(`(?i)^\w+:$`)
	// Permissive generic-URL grammar: optional scheme, optionally wildcarded
	// host, optional port (numeric or *), optional path. Quoted tokens never
	// match; they belong to the keyword/opaque space.
	rxHost = regexp.MustCompile(`(?i)^([a-z][a-z0-9+.-]*://)?(\*\.)?[a-z0-9*]([a-z0-9._-]*[a-z0-9])?(:(\d+|\*))?(/[^\s'"]*)?$`)
)

// ParseSource classifies one raw token into a Source. It is total:
// unrecognized input degrades to OpaqueSource rather than failing. The
// classification order matters because the categories overlap lexically;
// first match wins.
func ParseSource(raw string) Source {
	if kw, ok := keywordByText[strings.ToLower(raw)]; ok {
		return kw
	}
	if m := rxNonce.FindStringSubmatch(raw); m != nil {
		return NonceSource(m[1])
	}
	if m := rxHash.FindStringSubmatch(raw); m != nil {
		return HashSource{
			Algorithm: HashAlgorithm(strings.ToLower(m[1])),
			Digest:    m[2],
		}
	}
	if rxScheme.MatchString(raw) {
		return NewSchemeSource(raw)
	}
	if rxHost.MatchString(raw) {
		return HostSource(raw)
	}
	return OpaqueSource(raw)
}

// ParseSources classifies a whitespace-delimited run of tokens.
func ParseSources(tokens []string) []Source {
	sources := make([]Source, 0, len(tokens))
	for _, tok := range tokens {
		sources = append(sources, ParseSource(tok))
	}
	return sources
}
