package csp

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePolicyHeader(t *testing.T) {
	h := http.Header{"Foo": []string{"bar"}}
	WritePolicyHeader(h, ParsePolicy("default-src 'self'"))

	assert.Equal(t, http.Header{
		"Foo":                     []string{"bar"},
		"Content-Security-Policy": []string{"default-src 'self'"},
		"X-WebKit-CSP":            []string{"default-src 'self'"},
	}, h)
}

func TestWritePolicyHeaderReplacesCaseVariants(t *testing.T) {
	h := http.Header{
		"content-security-policy": []string{"img-src *"},
		"X-Webkit-Csp":            []string{"img-src *"},
		"Foo":                     []string{"bar"},
	}
	WritePolicyHeader(h, ParsePolicy("default-src 'none'"))

	assert.Equal(t, http.Header{
		"Foo":                     []string{"bar"},
		"Content-Security-Policy": []string{"default-src 'none'"},
		"X-WebKit-CSP":            []string{"default-src 'none'"},
	}, h)
}

func TestWritePolicyHeaderEmptyPolicyRemovesOnly(t *testing.T) {
	h := http.Header{
		"Content-Security-Policy": []string{"img-src *"},
		"X-WebKit-CSP":            []string{"img-src *"},
	}
	WritePolicyHeader(h, &Policy{})
	assert.Empty(t, h)

	h = http.Header{"Content-Security-Policy": []string{"img-src *"}}
	WritePolicyHeader(h, nil)
	assert.Empty(t, h)
}

func TestPolicyFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Security-Policy", "default-src 'self'")

	p, ok := PolicyFromHeader(h)
	require.True(t, ok)
	assert.Equal(t, "default-src 'self'", p.String())
}

func TestPolicyFromHeaderPrefersStandardName(t *testing.T) {
	h := http.Header{
		"Content-Security-Policy": []string{"default-src 'self'"},
		"X-WebKit-CSP":            []string{"default-src 'none'"},
	}
	p, ok := PolicyFromHeader(h)
	require.True(t, ok)
	assert.Equal(t, "default-src 'self'", p.String())
}

func TestPolicyFromHeaderLegacyFallback(t *testing.T) {
	h := http.Header{"X-WebKit-CSP": []string{"img-src *"}}
	p, ok := PolicyFromHeader(h)
	require.True(t, ok)
	assert.Equal(t, "img-src *", p.String())
}

func TestPolicyFromHeaderAbsent(t *testing.T) {
	h := http.Header{"Foo": []string{"bar"}}
	_, ok := PolicyFromHeader(h)
	assert.False(t, ok)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := http.Header{}
	WritePolicyHeader(h, ParsePolicy("default-src 'self'; script-src 'nonce-abc'"))

	p, ok := PolicyFromHeader(h)
	require.True(t, ok)
	assert.Equal(t, "default-src 'self'; script-src 'nonce-abc'", p.String())
}
