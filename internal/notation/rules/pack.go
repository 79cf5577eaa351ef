package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// Pack is a YAML rule pack. Its rules take priority over the built-in rules
// of the layers they name.
//
//	rules:
//	  - name: hbar
//	    layer: common
//	    literal: '\hbar'
//	    basic: h bar
//	  - name: floor
//	    pattern: '\\lfloor(.+?)\\rfloor'
//	    basic: the floor of $1
//	    advanced: floor $1
type Pack struct {
	Rules []PackRule `yaml:"rules"`
}

// PackRule is one rule in a pack. Exactly one of Literal and Pattern is set.
type PackRule struct {
	Name         string `yaml:"name"`
	Layer        string `yaml:"layer"`
	Literal      string `yaml:"literal"`
	Pattern      string `yaml:"pattern"`
	Basic        string `yaml:"basic"`
	Intermediate string `yaml:"intermediate"`
	Advanced     string `yaml:"advanced"`
}

// ParsePack decodes a pack into rules with their Layer set, in file order.
// Rules without a layer go to the common layer.
func ParsePack(data []byte) ([]Rule, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, packError("decode: %v", err)
	}
	out := make([]Rule, 0, len(p.Rules))
	for i, pr := range p.Rules {
		r, err := pr.rule()
		if err != nil {
			return nil, packError("rule %d: %v", i, err)
		}
		r.Layer = pr.Layer
		if r.Layer == "" {
			r.Layer = domain.LayerCommon
		}
		out = append(out, r)
	}
	return out, nil
}

func (pr PackRule) rule() (Rule, error) {
	if pr.Name == "" {
		return Rule{}, fmt.Errorf("missing name")
	}
	if pr.Basic == "" && pr.Intermediate == "" && pr.Advanced == "" {
		return Rule{}, fmt.Errorf("%s: no phrasing", pr.Name)
	}
	phrasings := make([]Phrasing, 0, 3)
	for _, p := range []Phrasing{
		{MinLevel: domain.AudienceBasic, Text: pr.Basic},
		{MinLevel: domain.AudienceIntermediate, Text: pr.Intermediate},
		{MinLevel: domain.AudienceAdvanced, Text: pr.Advanced},
	} {
		if p.Text != "" {
			phrasings = append(phrasings, p)
		}
	}

	switch {
	case pr.Literal != "" && pr.Pattern != "":
		return Rule{}, fmt.Errorf("%s: both literal and pattern set", pr.Name)
	case pr.Literal != "":
		return LiteralLevels(pr.Name, pr.Literal, phrasings), nil
	case pr.Pattern != "":
		re, err := regexp.Compile(pr.Pattern)
		if err != nil {
			return Rule{}, fmt.Errorf("%s: %w", pr.Name, err)
		}
		r := Rule{
			Name:      pr.Name,
			Match:     Matcher{Kind: MatchPattern, Pattern: re},
			Transform: Transform{Kind: TransformTemplate, Phrasings: phrasings},
		}
		if err := r.Validate(); err != nil {
			return Rule{}, err
		}
		return r, nil
	default:
		return Rule{}, fmt.Errorf("%s: neither literal nor pattern set", pr.Name)
	}
}

// ApplyPack parses data and prepends its rules to the builder's layers.
func ApplyPack(b *Builder, data []byte) error {
	rs, err := ParsePack(data)
	if err != nil {
		return err
	}
	var order []string
	byLayer := make(map[string][]Rule)
	for _, r := range rs {
		if _, ok := byLayer[r.Layer]; !ok {
			order = append(order, r.Layer)
		}
		byLayer[r.Layer] = append(byLayer[r.Layer], r)
	}
	for _, layer := range order {
		b.Prepend(layer, byLayer[layer]...)
	}
	return nil
}

// LoadPackFile reads a pack from disk and applies it to b.
func LoadPackFile(b *Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return packError("read %s: %v", path, err)
	}
	return ApplyPack(b, data)
}

func packError(format string, args ...any) error {
	return &domain.ConfigurationError{Field: "rules.pack", Reason: fmt.Sprintf(format, args...)}
}
