// Package csp parses, models, mutates, and re-serializes
// Content-Security-Policy header values. Malformed input never fails to
// parse: unrecognized tokens are carried verbatim so that already-deployed,
// possibly-imperfect headers survive a parse/serialize round trip.
package csp

import "fmt"

// SourceKind identifies the runtime variant of a Source.
type SourceKind string

const (
	KindKeyword SourceKind = "keyword"
	KindScheme  SourceKind = "scheme"
	KindHost    SourceKind = "host"
	KindNonce   SourceKind = "nonce"
	KindHash    SourceKind = "hash"
	KindOpaque  SourceKind = "opaque"
)

// Source is one token within a directive's permission list. Two sources are
// equal iff their String() forms are equal; implementations are immutable
// once constructed.
type Source interface {
	Kind() SourceKind
	String() string
}

// KeywordSource is one of the closed set of well-known keywords and sandbox
// flags. Keywords serialize quoted ('self'), sandbox flags and the wildcard
// serialize bare.
type KeywordSource string

const (
	None         KeywordSource = "none"
	Self         KeywordSource = "self"
	UnsafeInline KeywordSource = "unsafe-inline"
	UnsafeEval   KeywordSource = "unsafe-eval"
	Wildcard     KeywordSource = "*"

	AllowForms                          KeywordSource = "allow-forms"
	AllowPointerLock                    KeywordSource = "allow-pointer-lock"
	AllowPopups                         KeywordSource = "allow-popups"
	AllowPopupsToEscapeSandbox          KeywordSource = "allow-popups-to-escape-sandbox"
	AllowModals                         KeywordSource = "allow-modals"
	AllowOrientationLock                KeywordSource = "allow-orientation-lock"
	AllowPresentation                   KeywordSource = "allow-presentation"
	AllowSameOrigin                     KeywordSource = "allow-same-origin"
	AllowScripts                        KeywordSource = "allow-scripts"
	AllowStorageAccessByUserActivation  KeywordSource = "allow-storage-access-by-user-activation"
	AllowTopNavigation                  KeywordSource = "allow-top-navigation"
	AllowTopNavigationByUserActivation  KeywordSource = "allow-top-navigation-by-user-activation"
	AllowDownloadsWithoutUserActivation KeywordSource = "allow-downloads-without-user-activation"
)

// quotedKeywords are the keyword sources whose canonical form carries single
// quotes. Sandbox flags and the wildcard stay bare.
var quotedKeywords = map[KeywordSource]struct{}{
	None:         {},
	Self:         {},
	UnsafeInline: {},
	UnsafeEval:   {},
}

// KeywordSources lists every member of the closed keyword/flag catalog.
var KeywordSources = []KeywordSource{
	None, Self, UnsafeInline, UnsafeEval, Wildcard,
	AllowForms, AllowPointerLock, AllowPopups, AllowPopupsToEscapeSandbox,
	AllowModals, AllowOrientationLock, AllowPresentation, AllowSameOrigin,
	AllowScripts, AllowStorageAccessByUserActivation, AllowTopNavigation,
	AllowTopNavigationByUserActivation, AllowDownloadsWithoutUserActivation,
}

// keywordByText maps canonical text back to the catalog member.
var keywordByText = func() map[string]KeywordSource {
	m := make(map[string]KeywordSource, len(KeywordSources))
	for _, k := range KeywordSources {
		m[k.String()] = k
	}
	return m
}()

func (s KeywordSource) Kind() SourceKind { return KindKeyword }

func (s KeywordSource) String() string {
	if _, quoted := quotedKeywords[s]; quoted {
		return "'" + string(s) + "'"
	}
	return string(s)
}

// SchemeSource is a URI scheme token, held without the trailing colon and
// always serialized with one.
type SchemeSource string

// NewSchemeSource normalizes value by trimming a single trailing colon.
func NewSchemeSource(value string) SchemeSource {
	if n := len(value); n > 0 && value[n-1] == ':' {
		value = value[:n-1]
	}
	return SchemeSource(value)
}

func (s SchemeSource) Kind() SourceKind { return KindScheme }

func (s SchemeSource) String() string { return string(s) + ":" }

// HostSource is a URL or host-pattern token, carried exactly as given.
// Scheme, port, path, and wildcard structure are not semantically parsed.
type HostSource string

func (s HostSource) Kind() SourceKind { return KindHost }

func (s HostSource) String() string { return string(s) }

// NonceSource holds the bare nonce payload, without the nonce- prefix or
// surrounding quotes.
type NonceSource string

// NewNonceSource builds a nonce source from either a bare payload or an
// already decorated token ("nonce-abc", "'nonce-abc'", any prefix casing).
func NewNonceSource(value string) NonceSource {
	if m := rxNonce.FindStringSubmatch(value); m != nil {
		return NonceSource(m[1])
	}
	return NonceSource(value)
}

func (s NonceSource) Kind() SourceKind { return KindNonce }

func (s NonceSource) String() string {
	return fmt.Sprintf("'nonce-%s'", string(s))
}

// HashAlgorithm is a digest algorithm accepted in hash sources.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	SHA384 HashAlgorithm = "sha384"
	SHA512 HashAlgorithm = "sha512"
)

// HashSource is a cryptographic digest of inline content. The digest text is
// opaque to this package.
type HashSource struct {
	Algorithm HashAlgorithm
	Digest    string
}

func NewHashSource(algorithm HashAlgorithm, digest string) HashSource {
	return HashSource{Algorithm: algorithm, Digest: digest}
}

func (s HashSource) Kind() SourceKind { return KindHash }

func (s HashSource) String() string {
	return fmt.Sprintf("'%s-%s'", s.Algorithm, s.Digest)
}

// OpaqueSource carries any token the classifier does not recognize,
// verbatim, so unknown grammar survives a round trip.
type OpaqueSource string

func (s OpaqueSource) Kind() SourceKind { return KindOpaque }

func (s OpaqueSource) String() string { return string(s) }

// SourceEqual reports whether two sources render to the same canonical text.
func SourceEqual(a, b Source) bool {
	return a.String() == b.String()
}
