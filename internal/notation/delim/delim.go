// Package delim finds balanced delimiter and environment spans by linear
// scanning. It never uses backtracking patterns, so adversarial nesting costs
// at most one pass over the text per call.
package delim

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// Kind is the family of an opening delimiter.
type Kind int

// Delimiter kinds.
const (
	KindBrace Kind = iota
	KindParen
	KindBracket
	KindEnvironment
)

// String returns the string representation.
func (k Kind) String() string {
	switch k {
	case KindBrace:
		return "brace"
	case KindParen:
		return "paren"
	case KindBracket:
		return "bracket"
	case KindEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

const (
	beginPrefix = `\begin{`
	endPrefix   = `\end{`
)

// Opener describes the opening delimiter found at an offset.
type Opener struct {
	Kind Kind

	// Name is the environment name; empty for bracket kinds.
	Name string

	// Len is the byte length of the opener token.
	Len int
}

// Closer returns the token that closes this opener.
func (o Opener) Closer() string {
	switch o.Kind {
	case KindBrace:
		return "}"
	case KindParen:
		return ")"
	case KindBracket:
		return "]"
	default:
		return endPrefix + o.Name + "}"
	}
}

// token returns the opener text itself.
func (o Opener) token() string {
	switch o.Kind {
	case KindBrace:
		return "{"
	case KindParen:
		return "("
	case KindBracket:
		return "["
	default:
		return beginPrefix + o.Name + "}"
	}
}

// OpenerAt reports the opener starting at text[i], if any.
func OpenerAt(text string, i int) (Opener, bool) {
	if i < 0 || i >= len(text) {
		return Opener{}, false
	}
	switch text[i] {
	case '{':
		return Opener{Kind: KindBrace, Len: 1}, true
	case '(':
		return Opener{Kind: KindParen, Len: 1}, true
	case '[':
		return Opener{Kind: KindBracket, Len: 1}, true
	case '\\':
		if !strings.HasPrefix(text[i:], beginPrefix) {
			return Opener{}, false
		}
		rest := text[i+len(beginPrefix):]
		end := strings.IndexByte(rest, '}')
		if end <= 0 {
			return Opener{}, false
		}
		name := rest[:end]
		if !validEnvName(name) {
			return Opener{}, false
		}
		return Opener{Kind: KindEnvironment, Name: name, Len: len(beginPrefix) + end + 1}, true
	}
	return Opener{}, false
}

func validEnvName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && c != '*' {
			return false
		}
	}
	return true
}

// Matcher finds the closing delimiter for an opener.
// It is stateless apart from its depth limit and safe for concurrent use.
type Matcher struct {
	maxDepth int
}

// New creates a Matcher that fails once nesting exceeds maxDepth.
func New(maxDepth int) *Matcher {
	if maxDepth < 1 {
		maxDepth = domain.DefaultMaxDepth
	}
	return &Matcher{maxDepth: maxDepth}
}

// MaxDepth returns the configured nesting limit.
func (m *Matcher) MaxDepth() int {
	return m.maxDepth
}

// Match returns the span from the opener at text[i] to one past its closer.
func (m *Matcher) Match(text string, i int) (domain.Span, error) {
	return m.MatchDepth(text, i, 0)
}

// MatchDepth is Match for an opener already nested depth levels deep.
// The depth counts toward the limit and is recorded on the span.
func (m *Matcher) MatchDepth(text string, i, depth int) (domain.Span, error) {
	op, ok := OpenerAt(text, i)
	if !ok {
		return domain.Span{}, domain.NewStructureError(i, "?", domain.ErrNotOpener)
	}
	if depth+1 > m.maxDepth {
		return domain.Span{}, domain.NewStructureError(i, op.token(), domain.ErrMaxDepth)
	}

	var end int
	var err error
	if op.Kind == KindEnvironment {
		end, err = m.scanEnvironment(text, i, op, depth)
	} else {
		end, err = m.scanBracket(text, i, op, depth)
	}
	if err != nil {
		return domain.Span{}, err
	}
	return domain.Span{Start: i, End: end, Depth: depth}, nil
}

// scanBracket walks forward counting only openers and closers of op's kind.
// Control symbols such as \{ and \} are skipped.
func (m *Matcher) scanBracket(text string, start int, op Opener, depth int) (int, error) {
	open := op.token()[0]
	closer := op.Closer()[0]
	level := 1
	for j := start + op.Len; j < len(text); {
		c := text[j]
		switch {
		case c == '\\':
			j += skipCommand(text, j)
			continue
		case c == open:
			level++
			if depth+level > m.maxDepth {
				return 0, domain.NewStructureError(j, op.token(), domain.ErrMaxDepth)
			}
		case c == closer:
			level--
			if level == 0 {
				return j + 1, nil
			}
		}
		j++
	}
	return 0, domain.NewStructureError(start, op.token(), domain.ErrUnterminated)
}

// scanEnvironment pairs \begin{name} with \end{name}, nesting only on the same name.
func (m *Matcher) scanEnvironment(text string, start int, op Opener, depth int) (int, error) {
	beginTag := op.token()
	endTag := op.Closer()
	level := 1
	pos := start + op.Len
	for pos < len(text) {
		nextEnd := strings.Index(text[pos:], endTag)
		if nextEnd == -1 {
			break
		}
		nextBegin := strings.Index(text[pos:], beginTag)
		if nextBegin != -1 && nextBegin < nextEnd {
			level++
			if depth+level > m.maxDepth {
				return 0, domain.NewStructureError(pos+nextBegin, beginTag, domain.ErrMaxDepth)
			}
			pos += nextBegin + len(beginTag)
			continue
		}
		level--
		if level == 0 {
			return pos + nextEnd + len(endTag), nil
		}
		pos += nextEnd + len(endTag)
	}
	return 0, domain.NewStructureError(start, beginTag, domain.ErrUnterminated)
}

// Interior returns the text strictly between the span's opener and closer.
func Interior(text string, sp domain.Span) string {
	op, ok := OpenerAt(text, sp.Start)
	if !ok {
		return ""
	}
	from := sp.Start + op.Len
	to := sp.End - len(op.Closer())
	if from > to {
		return ""
	}
	return text[from:to]
}

// skipCommand returns the byte length of the command starting at text[j] == '\\'.
// A control word (\alpha) spans its letters; a control symbol (\{, \\) spans two bytes.
func skipCommand(text string, j int) int {
	if j+1 >= len(text) {
		return 1
	}
	if !isLetter(text[j+1]) {
		return 2
	}
	k := j + 1
	for k < len(text) && isLetter(text[k]) {
		k++
	}
	return k - j
}

// CommandAt returns the control word or symbol starting at text[j], including the backslash.
func CommandAt(text string, j int) string {
	if j >= len(text) || text[j] != '\\' {
		return ""
	}
	return text[j : j+skipCommand(text, j)]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsLetter reports whether c is an ASCII letter, the only characters allowed in control words.
func IsLetter(c byte) bool {
	return isLetter(c)
}

// SplitTopLevel splits s on sep wherever all brackets and environments are
// balanced relative to s. Consecutive separators yield empty parts.
func SplitTopLevel(s, sep string) []string {
	if sep == "" {
		return []string{s}
	}
	var parts []string
	level := 0
	last := 0
	for j := 0; j < len(s); {
		if level == 0 && strings.HasPrefix(s[j:], sep) {
			parts = append(parts, s[last:j])
			j += len(sep)
			last = j
			continue
		}
		c := s[j]
		switch {
		case c == '\\':
			switch {
			case strings.HasPrefix(s[j:], beginPrefix):
				level++
				j += envTagLen(s, j, len(beginPrefix))
			case strings.HasPrefix(s[j:], endPrefix):
				if level > 0 {
					level--
				}
				j += envTagLen(s, j, len(endPrefix))
			default:
				j += skipCommand(s, j)
			}
			continue
		case c == '{' || c == '(' || c == '[':
			level++
		case c == '}' || c == ')' || c == ']':
			if level > 0 {
				level--
			}
		}
		j++
	}
	return append(parts, s[last:])
}

// envTagLen returns the length of a \begin{..} or \end{..} tag at s[j].
func envTagLen(s string, j, prefix int) int {
	end := strings.IndexByte(s[j+prefix:], '}')
	if end < 0 {
		return len(s) - j
	}
	return prefix + end + 1
}

// Argument is one macro argument read by ReadArgument.
type Argument struct {
	// Text is the argument content without enclosing braces.
	Text string

	// End is the offset one past the argument in the source.
	End int

	// Grouped is true when the argument was a brace group.
	Grouped bool
}

// ReadArgument reads a single macro argument starting at or after text[i]:
// a brace group, a control sequence, or one character. Leading spaces are
// skipped. It returns false when no argument is present.
func (m *Matcher) ReadArgument(text string, i int) (Argument, bool, error) {
	j := skipSpaces(text, i)
	if j >= len(text) {
		return Argument{}, false, nil
	}
	switch c := text[j]; {
	case c == '{':
		sp, err := m.Match(text, j)
		if err != nil {
			return Argument{}, false, err
		}
		return Argument{Text: Interior(text, sp), End: sp.End, Grouped: true}, true, nil
	case c == '\\':
		n := skipCommand(text, j)
		return Argument{Text: text[j : j+n], End: j + n}, true, nil
	case c == '}' || c == ')' || c == ']' || c == '&' || c == '^' || c == '_':
		return Argument{}, false, nil
	default:
		_, size := utf8.DecodeRuneInString(text[j:])
		return Argument{Text: text[j : j+size], End: j + size}, true, nil
	}
}

// ReadOptional reads a bracketed optional argument such as the index of \sqrt[3]{x}.
func (m *Matcher) ReadOptional(text string, i int) (Argument, bool, error) {
	j := skipSpaces(text, i)
	if j >= len(text) || text[j] != '[' {
		return Argument{}, false, nil
	}
	sp, err := m.Match(text, j)
	if err != nil {
		return Argument{}, false, err
	}
	return Argument{Text: Interior(text, sp), End: sp.End, Grouped: true}, true, nil
}

func skipSpaces(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	return i
}
