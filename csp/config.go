package csp

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DirectiveConfig is one directive in a YAML policy preset. Source tokens
// are written in header syntax ('self', https:, *.example.com, ...) and run
// through the classifier, so a preset can express anything a header can.
type DirectiveConfig struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources,omitempty"`
}

// Config is a declarative policy preset:
//
//	directives:
//	  - name: default-src
//	    sources: ["'self'", "https:"]
//	  - name: object-src
//	    sources: ["'none'"]
type Config struct {
	Directives []DirectiveConfig `yaml:"directives"`
}

// LoadConfig reads and decodes a YAML policy preset.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes a YAML policy preset from raw bytes.
func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &cfg, nil
}

// Policy builds a policy from the preset, preserving directive order. A
// same-named directive appearing twice follows last-wins replacement.
func (c *Config) Policy() *Policy {
	p := &Policy{}
	for _, dc := range c.Directives {
		if dc.Name == "" {
			continue
		}
		d := NewDirective(dc.Name, ParseSources(dc.Sources)...)
		if d.Len() == 1 && d.ContainsKeyword(None) {
			d.Replace()
		}
		p.AddOrReplace(d)
	}
	return p
}

// Apply merges the preset into an existing policy: sources are prepended to
// same-named directives already present, and missing directives are added.
// Unlike Policy.Prepend this does introduce new directives, because a preset
// states intent for the whole header.
func (c *Config) Apply(p *Policy) *Policy {
	for _, dc := range c.Directives {
		if dc.Name == "" {
			continue
		}
		d := NewDirective(dc.Name, ParseSources(dc.Sources)...)
		if _, exists := p.Get(DirectiveName(dc.Name)); exists {
			p.Prepend(d)
			continue
		}
		p.AddOrReplace(d)
	}
	return p
}
