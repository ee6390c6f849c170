package csp

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/pkg/errors"
)

// InlineHashes scans an HTML document for inline <script> and <style>
// elements and returns one hash source per element, in document order.
// Script elements with a src attribute are external and skipped.
func InlineHashes(html io.Reader, algo HashAlgorithm) (scripts, styles []Source, err error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing html document")
	}

	var hashErr error
	doc.Find("script:not([src])").Each(func(i int, s *goquery.Selection) {
		src, err := hashContent(s.Text(), algo)
		if err != nil {
			hashErr = err
			return
		}
		scripts = append(scripts, src)
	})
	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		src, err := hashContent(s.Text(), algo)
		if err != nil {
			hashErr = err
			return
		}
		styles = append(styles, src)
	})
	return scripts, styles, hashErr
}

// AllowInlineContent widens the policy to permit every inline script and
// style in the document via hash sources. Directive selection follows the
// injection rules: script-src/style-src when declared, default-src as the
// fallback, and no directive is ever synthesized.
func (p *Policy) AllowInlineContent(html io.Reader, algo HashAlgorithm) error {
	scripts, styles, err := InlineHashes(html, algo)
	if err != nil {
		return err
	}
	p.allowSources(ScriptSrc, scripts)
	p.allowSources(StyleSrc, styles)
	return nil
}

func (p *Policy) allowSources(name DirectiveName, sources []Source) {
	if len(sources) == 0 {
		return
	}
	target, ok := p.Get(name)
	if !ok {
		if target, ok = p.Get(DefaultSrc); !ok {
			return
		}
	}
	p.widen(target, sources...)
}

func hashContent(content string, algo HashAlgorithm) (Source, error) {
	var digest []byte
	switch algo {
	case SHA256:
		sum := sha256.Sum256([]byte(content))
		digest = sum[:]
	case SHA384:
		sum := sha512.Sum384([]byte(content))
		digest = sum[:]
	case SHA512:
		sum := sha512.Sum512([]byte(content))
		digest = sum[:]
	default:
		return nil, errors.Errorf("unsupported hash algorithm: %s", algo)
	}
	return NewHashSource(algo, base64.StdEncoding.EncodeToString(digest)), nil
}

var rxCSSURL = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)

// CollectStylesheetHosts parses stylesheet text and returns one host source
// per distinct origin referenced through url(...) values or @import rules.
// Relative references carry no origin and are skipped. The result is meant
// to widen style-src, img-src, or font-src before deploying a stylesheet
// the policy does not yet cover.
func CollectStylesheetHosts(stylesheet string) ([]Source, error) {
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return nil, errors.Wrap(err, "parsing stylesheet")
	}

	seen := make(map[string]struct{})
	var hosts []Source
	add := func(ref string) {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return
		}
		origin := u.Scheme + "://" + u.Host
		if _, dup := seen[origin]; dup {
			return
		}
		seen[origin] = struct{}{}
		hosts = append(hosts, HostSource(origin))
	}

	var walk func(rules []*css.Rule)
	walk = func(rules []*css.Rule) {
		for _, rule := range rules {
			if rule.Kind == css.AtRule && strings.EqualFold(rule.Name, "@import") {
				for _, ref := range importRefs(rule.Prelude) {
					add(ref)
				}
			}
			for _, decl := range rule.Declarations {
				for _, m := range rxCSSURL.FindAllStringSubmatch(decl.Value, -1) {
					add(m[1])
				}
			}
			walk(rule.Rules)
		}
	}
	walk(sheet.Rules)
	return hosts, nil
}

// importRefs extracts the target of an @import prelude, which is either a
// url(...) form or a bare quoted string.
func importRefs(prelude string) []string {
	if m := rxCSSURL.FindAllStringSubmatch(prelude, -1); len(m) > 0 {
		refs := make([]string, 0, len(m))
		for _, g := range m {
			refs = append(refs, g[1])
		}
		return refs
	}
	fields := strings.Fields(prelude)
	if len(fields) == 0 {
		return nil
	}
	ref := strings.Trim(fields[0], `'"`)
	if ref == "" {
		return nil
	}
	return []string{ref}
}
