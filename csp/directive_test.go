package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectiveNoneCollapsing(t *testing.T) {
	empty := NewDirective("default-src")
	none := mustParseDirective(t, "default-src 'none'")

	assert.Equal(t, "default-src 'none'", empty.String())
	assert.Equal(t, "default-src 'none'", none.String())
	assert.Zero(t, none.Len(), "parsed singleton 'none' collapses to an empty list")
	assert.True(t, empty.Equal(none))
}

func TestDirectiveNameOnlyEquality(t *testing.T) {
	a := NewDirective("script-src", Self)
	b := NewDirective("script-src", UnsafeInline, NewSchemeSource("https"))
	c := NewDirective("Script-SRC")

	assert.True(t, a.Equal(b), "equality ignores sources")
	assert.True(t, a.Equal(c), "equality folds case")
	assert.False(t, a.Equal(NewDirective("style-src", Self)))
}

func TestDirectiveMutations(t *testing.T) {
	d := mustParseDirective(t, "script-src 'self'")

	d.Append(NewSchemeSource("https"))
	assert.Equal(t, "script-src 'self' https:", d.String())

	d.Prepend(NewNonceSource("abc"))
	assert.Equal(t, "script-src 'nonce-abc' 'self' https:", d.String())

	// Append and Prepend skip sources already present.
	d.Append(Self).Prepend(NewSchemeSource("https"))
	assert.Equal(t, "script-src 'nonce-abc' 'self' https:", d.String())

	d.Remove(Self)
	assert.Equal(t, "script-src 'nonce-abc' https:", d.String())

	d.Replace(None)
	assert.Equal(t, "script-src 'none'", d.String())

	d.RemoveAll()
	assert.Zero(t, d.Len())
	assert.Equal(t, "script-src 'none'", d.String())
}

func TestDirectiveRemoveKind(t *testing.T) {
	d := mustParseDirective(t, "script-src 'nonce-a' 'self' 'nonce-b' 'sha256-x' weird$token")
	require.True(t, d.ContainsKind(KindNonce))
	require.True(t, d.ContainsKind(KindOpaque))

	d.RemoveKind(KindNonce)
	assert.Equal(t, "script-src 'self' 'sha256-x' weird$token", d.String())
	assert.False(t, d.ContainsKind(KindNonce))

	d.RemoveKind(KindOpaque)
	assert.Equal(t, "script-src 'self' 'sha256-x'", d.String())
}

func TestDirectiveContains(t *testing.T) {
	d := mustParseDirective(t, "img-src 'self' data: cdn.example.com")

	assert.True(t, d.Contains(Self))
	assert.True(t, d.ContainsKeyword(Self))
	assert.True(t, d.Contains(NewSchemeSource("data")))
	assert.True(t, d.Contains(HostSource("cdn.example.com")))
	assert.True(t, d.ContainsKind(KindScheme))
	assert.False(t, d.ContainsKeyword(UnsafeInline))
	assert.False(t, d.ContainsKind(KindNonce))
}

func TestDirectiveAllowsHost(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		host      string
		want      bool
	}{
		{"exact host", "img-src example.com", "example.com", true},
		{"exact host case folded", "img-src Example.COM", "example.com", true},
		{"wildcard subdomain", "img-src *.example.com", "cdn.example.com", true},
		{"wildcard nested subdomain", "img-src *.example.com", "a.b.example.com", true},
		{"wildcard does not match apex", "img-src *.example.com", "example.com", false},
		{"full url source", "img-src https://cdn.example.com:443/assets", "cdn.example.com", true},
		{"star keyword", "img-src *", "anything.example.org", true},
		{"uncovered host", "img-src example.com", "evil.example.org", false},
		{"keywords only", "img-src 'self'", "example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParseDirective(t, tt.directive)
			assert.Equal(t, tt.want, d.AllowsHost(tt.host))
		})
	}
}

func TestParseDirectiveEmptySegments(t *testing.T) {
	for _, segment := range []string{"", "   ", "\t \t"} {
		_, ok := ParseDirective(segment)
		assert.False(t, ok, "segment %q", segment)
	}
}

func TestParseDirectiveUnknownNameVerbatim(t *testing.T) {
	d := mustParseDirective(t, "  Custom-Thing  token1   'token2'  ")
	assert.Equal(t, "Custom-Thing", d.Name())
	assert.Equal(t, "Custom-Thing token1 'token2'", d.String())

	_, known := KnownDirectiveName(d.Name())
	assert.False(t, known)
}

func TestKnownDirectiveName(t *testing.T) {
	name, ok := KnownDirectiveName("Script-Src")
	require.True(t, ok)
	assert.Equal(t, ScriptSrc, name)

	_, ok = KnownDirectiveName("not-a-directive")
	assert.False(t, ok)
}

func mustParseDirective(t *testing.T, segment string) *Directive {
	t.Helper()
	d, ok := ParseDirective(segment)
	require.True(t, ok, "segment %q", segment)
	return d
}
