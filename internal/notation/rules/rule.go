// Package rules defines rewrite rules and the immutable rule table.
//
// A rule pairs a matcher with a transform. Both are tagged variants over
// closed enumerations; the engine dispatches on the tag with a switch.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/delim"
)

// MatchKind enumerates the ways a rule can recognise notation.
type MatchKind int

const (
	// MatchLiteral matches an exact token. Control words (\in) do not match
	// a longer control word (\int).
	MatchLiteral MatchKind = iota

	// MatchPattern matches an RE2 pattern; captures become $1..$9.
	MatchPattern

	// MatchCommand matches a command followed by arguments read with the
	// delimiter matcher.
	MatchCommand

	// MatchGroup matches a bare brace group and captures its interior.
	MatchGroup

	// MatchEnvironment marks the structural rule; the engine hands its
	// spans to the grid extractor.
	MatchEnvironment
)

// String returns the string representation.
func (k MatchKind) String() string {
	switch k {
	case MatchLiteral:
		return "literal"
	case MatchPattern:
		return "pattern"
	case MatchCommand:
		return "command"
	case MatchGroup:
		return "group"
	case MatchEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Arg describes one argument of a MatchCommand rule.
type Arg struct {
	// Prefix must appear before the argument, e.g. "_" or "^".
	Prefix string

	// Optional arguments capture "" when absent.
	Optional bool

	// Bracket reads a [..] group instead of a regular argument.
	Bracket bool
}

// Matcher recognises notation in text. Exactly the fields for Kind are used.
type Matcher struct {
	Kind MatchKind

	// Token is the literal for MatchLiteral and the command for MatchCommand.
	Token string

	// Pattern is used by MatchPattern.
	Pattern *regexp.Regexp

	// Args is used by MatchCommand.
	Args []Arg
}

// Match is one occurrence found by a rule.
type Match struct {
	Span     domain.Span
	Captures []string
}

// TransformKind enumerates the ways a rule produces replacement text.
type TransformKind int

const (
	// TransformStatic emits the selected phrasing verbatim.
	TransformStatic TransformKind = iota

	// TransformTemplate substitutes $1..$9 in the selected phrasing.
	TransformTemplate

	// TransformFunc calls Func.
	TransformFunc
)

// Phrasing is one wording registered for a minimum audience level.
type Phrasing struct {
	MinLevel domain.AudienceLevel
	Text     string
}

// Transform produces replacement text for a match.
type Transform struct {
	Kind      TransformKind
	Phrasings []Phrasing
	Func      func(captures []string, level domain.AudienceLevel) string
}

// Select returns the phrasing whose MinLevel is the highest one not above
// level. When none qualifies the most basic phrasing is returned.
func (t Transform) Select(level domain.AudienceLevel) Phrasing {
	if len(t.Phrasings) == 0 {
		return Phrasing{}
	}
	best := -1
	lowest := 0
	for i, p := range t.Phrasings {
		if p.MinLevel < t.Phrasings[lowest].MinLevel {
			lowest = i
		}
		if p.MinLevel <= level && (best == -1 || p.MinLevel > t.Phrasings[best].MinLevel) {
			best = i
		}
	}
	if best == -1 {
		return t.Phrasings[lowest]
	}
	return t.Phrasings[best]
}

// Apply renders the replacement for the given captures.
func (t Transform) Apply(captures []string, level domain.AudienceLevel) string {
	switch t.Kind {
	case TransformFunc:
		return t.Func(captures, level)
	case TransformTemplate:
		return expand(t.Select(level).Text, captures)
	default:
		return t.Select(level).Text
	}
}

// expand replaces $1..$9 with captures; missing captures expand to "".
func expand(tmpl string, captures []string) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '$' && i+1 < len(tmpl) && tmpl[i+1] >= '1' && tmpl[i+1] <= '9' {
			n := int(tmpl[i+1] - '1')
			if n < len(captures) {
				b.WriteString(captures[n])
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Rule is an immutable matcher/transform pair.
type Rule struct {
	// Name identifies the rule in listings and rule packs.
	Name string

	// Layer is "common" or a domain name; set by the Builder.
	Layer string

	Match     Matcher
	Transform Transform
}

// Validate checks the rule is internally consistent.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: rule without name", domain.ErrInvalidInput)
	}
	switch r.Match.Kind {
	case MatchLiteral, MatchCommand:
		if r.Match.Token == "" {
			return fmt.Errorf("%w: rule %s: empty token", domain.ErrInvalidInput, r.Name)
		}
	case MatchPattern:
		if r.Match.Pattern == nil {
			return fmt.Errorf("%w: rule %s: nil pattern", domain.ErrInvalidInput, r.Name)
		}
		if r.Match.Pattern.MatchString("") {
			return fmt.Errorf("%w: rule %s: pattern matches empty text", domain.ErrInvalidInput, r.Name)
		}
	case MatchGroup, MatchEnvironment:
	default:
		return fmt.Errorf("%w: rule %s: match kind %d", domain.ErrUnsupportedType, r.Name, r.Match.Kind)
	}
	switch r.Transform.Kind {
	case TransformStatic, TransformTemplate:
		if len(r.Transform.Phrasings) == 0 && r.Match.Kind != MatchEnvironment {
			return fmt.Errorf("%w: rule %s: no phrasings", domain.ErrInvalidInput, r.Name)
		}
	case TransformFunc:
		if r.Transform.Func == nil {
			return fmt.Errorf("%w: rule %s: nil func", domain.ErrInvalidInput, r.Name)
		}
	default:
		return fmt.Errorf("%w: rule %s: transform kind %d", domain.ErrUnsupportedType, r.Name, r.Transform.Kind)
	}
	return nil
}

// Structural reports whether the rule is handled by the grid extractor.
func (r Rule) Structural() bool {
	return r.Match.Kind == MatchEnvironment
}

// Replace renders the replacement text for m, padded so it never fuses
// with neighbouring words.
func (r Rule) Replace(m Match, level domain.AudienceLevel) string {
	return " " + r.Transform.Apply(m.Captures, level) + " "
}

// Fault is a construct a rule recognised but could not read, such as a
// command whose argument group is unterminated. Span runs from the start of
// the construct to one past the opener that failed.
type Fault struct {
	Span domain.Span
	Err  error
}

// FindAll returns the non-overlapping occurrences of the rule in text, left
// to right. Structural rules return nothing; the engine locates them.
func (r Rule) FindAll(text string, m *delim.Matcher) []Match {
	matches, _ := r.Find(text, m)
	return matches
}

// Find is FindAll that also reports the constructs the rule recognised but
// could not read because of a delimiter error.
func (r Rule) Find(text string, m *delim.Matcher) ([]Match, []Fault) {
	switch r.Match.Kind {
	case MatchLiteral:
		return findLiteral(text, r.Match.Token), nil
	case MatchPattern:
		return findPattern(text, r.Match.Pattern), nil
	case MatchCommand:
		return findCommand(text, r.Match, m)
	case MatchGroup:
		return findGroups(text, m)
	default:
		return nil, nil
	}
}

func findLiteral(text, token string) []Match {
	var out []Match
	for pos := 0; pos < len(text); {
		i := strings.Index(text[pos:], token)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(token)
		if boundaryOK(text, token, start, end) {
			out = append(out, Match{Span: domain.Span{Start: start, End: end}})
			pos = end
			continue
		}
		pos = start + 1
	}
	return out
}

// boundaryOK enforces that control words are not prefixes of longer ones
// and are not the escaped tail of a control symbol such as \\in.
func boundaryOK(text, token string, start, end int) bool {
	if token[0] == '\\' && delim.IsLetter(token[len(token)-1]) {
		if end < len(text) && delim.IsLetter(text[end]) {
			return false
		}
	}
	if token[0] == '\\' && start > 0 && text[start-1] == '\\' {
		// Preceded by a backslash: part of "\\" followed by letters.
		return escapedRun(text, start)
	}
	return true
}

// escapedRun reports whether the backslash at text[start] begins a command
// rather than closing a "\\" pair.
func escapedRun(text string, start int) bool {
	n := 0
	for i := start - 1; i >= 0 && text[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}

func findPattern(text string, re *regexp.Regexp) []Match {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		caps := make([]string, 0, len(loc)/2-1)
		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] < 0 {
				caps = append(caps, "")
				continue
			}
			caps = append(caps, text[loc[g]:loc[g+1]])
		}
		out = append(out, Match{Span: domain.Span{Start: loc[0], End: loc[1]}, Captures: caps})
	}
	return out
}

func findCommand(text string, mt Matcher, m *delim.Matcher) ([]Match, []Fault) {
	var out []Match
	var faults []Fault
	for _, lit := range findLiteral(text, mt.Token) {
		if len(out) > 0 && lit.Span.Start < out[len(out)-1].Span.End {
			continue
		}
		caps, end, ok, err := readArgs(text, lit.Span.End, mt.Args, m)
		if err != nil {
			faults = append(faults, Fault{Span: domain.Span{Start: lit.Span.Start, End: end}, Err: err})
			continue
		}
		if !ok {
			continue
		}
		out = append(out, Match{Span: domain.Span{Start: lit.Span.Start, End: end}, Captures: caps})
	}
	return out, faults
}

// readArgs reads the argument list starting at pos. A missing argument makes
// the command not match. A delimiter error is returned with end set one past
// the opener that failed.
func readArgs(text string, pos int, args []Arg, m *delim.Matcher) ([]string, int, bool, error) {
	caps := make([]string, 0, len(args))
	for _, a := range args {
		p := pos
		if a.Prefix != "" {
			q := skipSpace(text, p)
			if !strings.HasPrefix(text[q:], a.Prefix) {
				if a.Optional {
					caps = append(caps, "")
					continue
				}
				return nil, 0, false, nil
			}
			p = q + len(a.Prefix)
		}

		var arg delim.Argument
		var ok bool
		var err error
		if a.Bracket {
			arg, ok, err = m.ReadOptional(text, p)
		} else {
			arg, ok, err = m.ReadArgument(text, p)
		}
		if err != nil {
			return nil, openerEnd(text, p), false, err
		}
		if !ok {
			if a.Optional && a.Prefix == "" {
				caps = append(caps, "")
				continue
			}
			return nil, 0, false, nil
		}
		caps = append(caps, arg.Text)
		pos = arg.End
	}
	return caps, pos, true, nil
}

// openerEnd returns one past the first non-space byte at or after p.
func openerEnd(text string, p int) int {
	q := len(text) - len(strings.TrimLeft(text[p:], " \t\r\n"))
	return min(q+1, len(text))
}

func skipSpace(text string, i int) int {
	for i < len(text) && text[i] == ' ' {
		i++
	}
	return i
}

// findGroups returns outermost bare brace groups. Escaped braces are ignored.
// A brace that cannot be matched is reported as a fault.
func findGroups(text string, m *delim.Matcher) ([]Match, []Fault) {
	var out []Match
	var faults []Fault
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i += len(delim.CommandAt(text, i)) - 1
		case '{':
			sp, err := m.Match(text, i)
			if err != nil {
				faults = append(faults, Fault{Span: domain.Span{Start: i, End: i + 1}, Err: err})
				continue
			}
			out = append(out, Match{Span: domain.Span{Start: sp.Start, End: sp.End}, Captures: []string{delim.Interior(text, sp)}})
			i = sp.End - 1
		}
	}
	return out, faults
}
