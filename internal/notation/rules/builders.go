package rules

import (
	"regexp"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// Phrasings for the three audience levels. Empty strings are skipped, so a
// rule can override only the levels it cares about.
func levels(basic, intermediate, advanced string) []Phrasing {
	out := []Phrasing{{MinLevel: domain.AudienceBasic, Text: basic}}
	if intermediate != "" {
		out = append(out, Phrasing{MinLevel: domain.AudienceIntermediate, Text: intermediate})
	}
	if advanced != "" {
		out = append(out, Phrasing{MinLevel: domain.AudienceAdvanced, Text: advanced})
	}
	return out
}

// Literal builds a static rule for an exact token with one phrasing.
func Literal(name, token, text string) Rule {
	return LiteralLevels(name, token, levels(text, "", ""))
}

// LiteralLevels builds a static rule with explicit phrasings.
func LiteralLevels(name, token string, phrasings []Phrasing) Rule {
	return Rule{
		Name:      name,
		Match:     Matcher{Kind: MatchLiteral, Token: token},
		Transform: Transform{Kind: TransformStatic, Phrasings: phrasings},
	}
}

// Pattern builds a template rule over an RE2 expression. It panics on an
// invalid expression, like regexp.MustCompile.
func Pattern(name, expr string, phrasings []Phrasing) Rule {
	return Rule{
		Name:      name,
		Match:     Matcher{Kind: MatchPattern, Pattern: regexp.MustCompile(expr)},
		Transform: Transform{Kind: TransformTemplate, Phrasings: phrasings},
	}
}

// Command builds a template rule for a command and its arguments.
func Command(name, token string, args []Arg, phrasings []Phrasing) Rule {
	return Rule{
		Name:      name,
		Match:     Matcher{Kind: MatchCommand, Token: token, Args: args},
		Transform: Transform{Kind: TransformTemplate, Phrasings: phrasings},
	}
}

// CommandFunc builds a rule for a command whose phrasing is computed.
func CommandFunc(name, token string, args []Arg, fn func([]string, domain.AudienceLevel) string) Rule {
	return Rule{
		Name:      name,
		Match:     Matcher{Kind: MatchCommand, Token: token, Args: args},
		Transform: Transform{Kind: TransformFunc, Func: fn},
	}
}

// Environment builds the structural rule.
func Environment() Rule {
	return Rule{
		Name:      "environment",
		Match:     Matcher{Kind: MatchEnvironment},
		Transform: Transform{Kind: TransformStatic},
	}
}

// Group builds the rule that unwraps bare brace groups.
func Group() Rule {
	return Rule{
		Name:      "group",
		Match:     Matcher{Kind: MatchGroup},
		Transform: Transform{Kind: TransformTemplate, Phrasings: levels("$1", "", "")},
	}
}

var (
	one      = []Arg{{}}
	two      = []Arg{{}, {}}
	limits   = []Arg{{Prefix: "_", Optional: true}, {Prefix: "^", Optional: true}}
	lower    = []Arg{{Prefix: "_", Optional: true}}
	rootArgs = []Arg{{Bracket: true, Optional: true}, {}}
)
