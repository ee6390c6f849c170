package csp

import (
	"sort"
	"strings"

	"github.com/fvbommel/sortorder"
)

// Policy is an ordered collection of directives, unique by name. The first
// declaration of a name wins at parse time; later duplicates are dropped
// entirely, matching how user agents honor only the first occurrence.
//
// A Policy and its directives are single-writer: concurrent mutation must be
// serialized by the caller.
type Policy struct {
	directives []*Directive
}

// NewPolicy builds a policy from directives in order. Duplicate names follow
// last-wins replacement, as AddOrReplace does.
func NewPolicy(directives ...*Directive) *Policy {
	p := &Policy{}
	p.AddOrReplace(directives...)
	return p
}

// ParsePolicy parses a raw header value. It is total: malformed tokens are
// carried as opaque sources, empty segments are skipped, and duplicate
// directive names beyond the first are ignored.
func ParsePolicy(text string) *Policy {
	p := &Policy{}
	for _, segment := range strings.Split(text, ";") {
		d, ok := ParseDirective(segment)
		if !ok {
			continue
		}
		if _, exists := p.Get(DirectiveName(d.Name())); exists {
			continue
		}
		p.directives = append(p.directives, d)
	}
	return p
}

// String renders the policy in canonical form: directives in insertion
// order, sources space-delimited, directives joined with "; ". Output is
// stable under re-parsing, though whitespace of arbitrary input is
// normalized and empty source lists render as 'none'.
func (p *Policy) String() string {
	parts := make([]string, 0, len(p.directives))
	for _, d := range p.directives {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// Directives returns a copy of the directive list. The directives themselves
// are shared; mutating one mutates the policy.
func (p *Policy) Directives() []*Directive {
	out := make([]*Directive, len(p.directives))
	copy(out, p.directives)
	return out
}

// Len returns the number of directives present.
func (p *Policy) Len() int { return len(p.directives) }

// Empty reports whether no directives are present.
func (p *Policy) Empty() bool { return len(p.directives) == 0 }

// Get returns the first directive matching name, case-insensitively. The
// returned directive is the policy's own; mutations through it are visible
// in the policy.
func (p *Policy) Get(name DirectiveName) (*Directive, bool) {
	for _, d := range p.directives {
		if d.Is(name) {
			return d, true
		}
	}
	return nil, false
}

// Prepend merges the given directive's sources into the front of the
// existing directive of the same name, first stripping any 'none' keyword
// from it. When no directive of that name exists the call is a no-op: a
// template meant to augment a declared directive must never introduce a new
// permissive one.
func (p *Policy) Prepend(d *Directive) *Policy {
	existing, ok := p.Get(DirectiveName(d.Name()))
	if !ok {
		return p
	}
	existing.Remove(None)
	existing.Prepend(d.Sources()...)
	return p
}

// AddOrReplace replaces the slot of a same-named directive wholesale, or
// appends at the end when the name is new. With multiple same-named
// arguments the last one wins.
func (p *Policy) AddOrReplace(directives ...*Directive) *Policy {
	for _, d := range directives {
		replaced := false
		for i, have := range p.directives {
			if have.Equal(d) {
				p.directives[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			p.directives = append(p.directives, d)
		}
	}
	return p
}

// Remove drops directives by name equality.
func (p *Policy) Remove(directives ...*Directive) *Policy {
	kept := p.directives[:0]
	for _, have := range p.directives {
		drop := false
		for _, d := range directives {
			if have.Equal(d) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, have)
		}
	}
	p.directives = kept
	return p
}

// RemoveName drops the directive carrying the given name, if present.
func (p *Policy) RemoveName(name DirectiveName) *Policy {
	return p.Remove(NewDirective(string(name)))
}

// IsNone reports whether the named directive is present and effectively
// 'none': an empty source list or the lone 'none' keyword.
func (p *Policy) IsNone(name DirectiveName) bool {
	d, ok := p.Get(name)
	if !ok {
		return false
	}
	switch d.Len() {
	case 0:
		return true
	case 1:
		return d.ContainsKeyword(None)
	}
	return false
}

// IsUnsafe reports whether the named directive carries any unsafe-* keyword.
func (p *Policy) IsUnsafe(name DirectiveName) bool {
	d, ok := p.Get(name)
	if !ok {
		return false
	}
	return d.ContainsKeyword(UnsafeInline) || d.ContainsKeyword(UnsafeEval)
}

// AllowInjectedScript widens the policy so an injected inline <script>
// decorated with nonce is permitted. An empty nonce falls back to the
// 'unsafe-inline' keyword.
func (p *Policy) AllowInjectedScript(nonce string) *Policy {
	return p.allowInjected(ScriptSrc, nonce)
}

// AllowInjectedStyle widens the policy so an injected inline <style>
// decorated with nonce is permitted. An empty nonce falls back to the
// 'unsafe-inline' keyword.
func (p *Policy) AllowInjectedStyle(nonce string) *Policy {
	return p.allowInjected(StyleSrc, nonce)
}

// allowInjected opens the most specific applicable directive for inline
// content of the given kind. It widens only directives the caller already
// declared: with neither the specific directive nor default-src present,
// nothing is synthesized.
func (p *Policy) allowInjected(name DirectiveName, nonce string) *Policy {
	target, ok := p.Get(name)
	if !ok {
		if target, ok = p.Get(DefaultSrc); !ok {
			return p
		}
	}
	var opening Source = UnsafeInline
	if nonce != "" {
		opening = NewNonceSource(nonce)
	}
	p.widen(target, opening)
	return p
}

// widen applies the common opening steps: already-permissive directives stay
// untouched, 'none' or empty lists are replaced outright, anything else gets
// the opening sources prepended.
func (p *Policy) widen(target *Directive, opening ...Source) {
	if target.ContainsKeyword(UnsafeInline) {
		return
	}
	if target.Len() == 0 || target.ContainsKeyword(None) {
		target.Replace(opening...)
		return
	}
	target.Prepend(opening...)
}

// Sorted returns a copy of the policy in canonical review order:
// default-src first, reporting directives last, natural name order between.
// Directives are shared with the receiver.
func (p *Policy) Sorted() *Policy {
	sorted := &Policy{directives: p.Directives()}
	sort.SliceStable(sorted.directives, func(i, j int) bool {
		a, b := sorted.directives[i], sorted.directives[j]
		an, bn := strings.ToLower(a.Name()), strings.ToLower(b.Name())
		aDefault, bDefault := an == string(DefaultSrc), bn == string(DefaultSrc)
		aReport := an == string(ReportTo) || an == string(ReportURI)
		bReport := bn == string(ReportTo) || bn == string(ReportURI)
		switch {
		case aDefault != bDefault:
			return aDefault
		case aReport != bReport:
			return bReport
		default:
			return sortorder.NaturalLess(an, bn)
		}
	})
	return sorted
}

// StrictPolicy returns a restrictive baseline: same-origin https content
// only, no embedding, no plugins.
func StrictPolicy() *Policy {
	return NewPolicy(
		NewDirective(string(DefaultSrc), Self, NewSchemeSource("https")),
		NewDirective(string(ObjectSrc), None),
		NewDirective(string(FrameAncestors), None),
	)
}

// DefaultPolicy returns a workable baseline for sites with inline assets:
// same-origin plus https and data, inline allowed.
func DefaultPolicy() *Policy {
	return NewPolicy(
		NewDirective(string(DefaultSrc), Self, NewSchemeSource("https"), NewSchemeSource("data"), UnsafeInline),
		NewDirective(string(ObjectSrc), None),
		NewDirective(string(FrameAncestors), None),
	)
}
