package csp

import (
	"strings"

	"github.com/gobwas/glob"
)

// DirectiveName is a well-known directive name in its canonical form.
// Arbitrary names remain representable; the catalog only drives typed lookup
// and never changes parsing behavior.
type DirectiveName string

const (
	BaseURI        DirectiveName = "base-uri"
	ChildSrc       DirectiveName = "child-src"
	ConnectSrc     DirectiveName = "connect-src"
	DefaultSrc     DirectiveName = "default-src"
	FontSrc        DirectiveName = "font-src"
	FormAction     DirectiveName = "form-action"
	FrameAncestors DirectiveName = "frame-ancestors"
	FrameSrc       DirectiveName = "frame-src"
	ImgSrc         DirectiveName = "img-src"
	MediaSrc       DirectiveName = "media-src"
	ObjectSrc      DirectiveName = "object-src"
	PluginTypes    DirectiveName = "plugin-types"
	ReportURI      DirectiveName = "report-uri"
	ReportTo       DirectiveName = "report-to"
	Sandbox        DirectiveName = "sandbox"
	ScriptSrc      DirectiveName = "script-src"
	StyleSrc       DirectiveName = "style-src"
)

// DirectiveNames lists the well-known directive catalog.
var DirectiveNames = []DirectiveName{
	BaseURI, ChildSrc, ConnectSrc, DefaultSrc, FontSrc, FormAction,
	FrameAncestors, FrameSrc, ImgSrc, MediaSrc, ObjectSrc, PluginTypes,
	ReportURI, ReportTo, Sandbox, ScriptSrc, StyleSrc,
}

// KnownDirectiveName matches name against the catalog, case-insensitively.
func KnownDirectiveName(name string) (DirectiveName, bool) {
	lower := strings.ToLower(name)
	for _, d := range DirectiveNames {
		if string(d) == lower {
			return d, true
		}
	}
	return "", false
}

// Directive is a name-tagged, ordered list of sources. Identity is by name
// alone, case-insensitively; two directives with the same name compare equal
// regardless of their source lists. The zero source list serializes as
// 'none'.
type Directive struct {
	name    string
	sources []Source
}

// NewDirective builds a directive carrying name verbatim.
func NewDirective(name string, sources ...Source) *Directive {
	d := &Directive{name: name}
	d.sources = append(d.sources, sources...)
	return d
}

// Name returns the directive name as first seen.
func (d *Directive) Name() string { return d.name }

// Is reports whether the directive carries the given well-known name.
func (d *Directive) Is(name DirectiveName) bool {
	return strings.EqualFold(d.name, string(name))
}

// Equal reports name-only equality, case-insensitive.
func (d *Directive) Equal(other *Directive) bool {
	if d == nil || other == nil {
		return d == other
	}
	return strings.EqualFold(d.name, other.name)
}

// Sources returns a copy of the source list.
func (d *Directive) Sources() []Source {
	out := make([]Source, len(d.sources))
	copy(out, d.sources)
	return out
}

// Len returns the number of sources held.
func (d *Directive) Len() int { return len(d.sources) }

// Append adds sources to the end of the list, skipping any already present.
func (d *Directive) Append(sources ...Source) *Directive {
	for _, src := range sources {
		if !d.Contains(src) {
			d.sources = append(d.sources, src)
		}
	}
	return d
}

// Prepend adds sources to the front of the list, preserving their given
// order and skipping any already present.
func (d *Directive) Prepend(sources ...Source) *Directive {
	var fresh []Source
	for _, src := range sources {
		if !d.Contains(src) {
			fresh = append(fresh, src)
		}
	}
	if len(fresh) > 0 {
		d.sources = append(fresh, d.sources...)
	}
	return d
}

// Replace swaps the entire source list.
func (d *Directive) Replace(sources ...Source) *Directive {
	d.sources = nil
	d.sources = append(d.sources, sources...)
	return d
}

// Remove drops every source whose canonical text equals any of the given
// sources.
func (d *Directive) Remove(sources ...Source) *Directive {
	kept := d.sources[:0]
	for _, have := range d.sources {
		drop := false
		for _, src := range sources {
			if SourceEqual(have, src) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, have)
		}
	}
	d.sources = kept
	return d
}

// RemoveKind drops every source of the given runtime variant, regardless of
// value.
func (d *Directive) RemoveKind(kind SourceKind) *Directive {
	kept := d.sources[:0]
	for _, have := range d.sources {
		if have.Kind() != kind {
			kept = append(kept, have)
		}
	}
	d.sources = kept
	return d
}

// RemoveAll empties the source list; the directive then serializes as
// 'none'.
func (d *Directive) RemoveAll() *Directive {
	return d.Replace()
}

// Contains reports whether a source with the same canonical text is present.
func (d *Directive) Contains(src Source) bool {
	for _, have := range d.sources {
		if SourceEqual(have, src) {
			return true
		}
	}
	return false
}

// ContainsKeyword reports whether the given catalog keyword is present.
func (d *Directive) ContainsKeyword(kw KeywordSource) bool {
	return d.Contains(kw)
}

// ContainsKind reports whether any source of the given variant is present.
func (d *Directive) ContainsKind(kind SourceKind) bool {
	for _, have := range d.sources {
		if have.Kind() == kind {
			return true
		}
	}
	return false
}

// AllowsHost reports whether host is already covered by this directive's
// host-pattern sources or the * wildcard. Patterns like *.example.com are
// compiled as globs against the bare hostname; the scheme, port, and path of
// a host source are ignored for the comparison. This is an aid for avoiding
// redundant additions, not an implementation of browser matching rules.
func (d *Directive) AllowsHost(host string) bool {
	host = strings.ToLower(host)
	for _, have := range d.sources {
		switch s := have.(type) {
		case KeywordSource:
			if s == Wildcard {
				return true
			}
		case HostSource:
			g, err := glob.Compile(strings.ToLower(hostPattern(string(s))))
			if err != nil {
				continue
			}
			if g.Match(host) {
				return true
			}
		}
	}
	return false
}

// hostPattern strips the scheme, port, and path off a host source token,
// leaving only the (possibly wildcarded) hostname.
func hostPattern(token string) string {
	if i := strings.Index(token, "://"); i >= 0 {
		token = token[i+3:]
	}
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	if i := strings.LastIndexByte(token, ':'); i >= 0 {
		token = token[:i]
	}
	return token
}

// String renders "name src1 src2 ..." in canonical form; an empty source
// list renders as 'none' for readability.
func (d *Directive) String() string {
	var b strings.Builder
	b.WriteString(d.name)
	if len(d.sources) == 0 {
		b.WriteByte(' ')
		b.WriteString(None.String())
		return b.String()
	}
	for _, src := range d.sources {
		b.WriteByte(' ')
		b.WriteString(src.String())
	}
	return b.String()
}

// ParseDirective parses one "name token token ..." segment. It reports false
// only for an effectively empty segment (nothing but whitespace between
// semicolons). Every token is classified individually; a singleton 'none'
// source list collapses to empty per the directive invariant.
func ParseDirective(segment string) (*Directive, bool) {
	fields := strings.Fields(segment)
	if len(fields) == 0 {
		return nil, false
	}
	d := NewDirective(fields[0], ParseSources(fields[1:])...)
	if len(d.sources) == 1 && SourceEqual(d.sources[0], None) {
		d.sources = nil
	}
	return d, true
}
