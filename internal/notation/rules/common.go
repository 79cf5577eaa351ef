package rules

import (
	"strings"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// commonRules is the layer every context falls back to. Order is priority:
// the structural rule first, then commands that read arguments, then bare
// literals, then single characters, then brace groups.
func commonRules() []Rule {
	var r []Rule
	r = append(r, Environment())
	r = append(r, largeOperators()...)
	r = append(r, constructs()...)
	r = append(r, scripts()...)
	r = append(r, escapes()...)
	r = append(r, greek()...)
	r = append(r, commandWords()...)
	r = append(r, symbols()...)
	r = append(r, Group())
	return r
}

func largeOperators() []Rule {
	bounded := func(noun string) func([]string, domain.AudienceLevel) string {
		return func(c []string, _ domain.AudienceLevel) string {
			var b strings.Builder
			b.WriteString("the " + noun)
			if c[0] != "" {
				b.WriteString(" from " + c[0])
			}
			if c[1] != "" {
				b.WriteString(" to " + c[1])
			}
			b.WriteString(" of")
			return b.String()
		}
	}
	return []Rule{
		CommandFunc("sum", `\sum`, limits, bounded("sum")),
		CommandFunc("product", `\prod`, limits, bounded("product")),
		CommandFunc("double-integral", `\iint`, limits, bounded("double integral")),
		CommandFunc("contour-integral", `\oint`, limits, bounded("contour integral")),
		CommandFunc("integral", `\int`, limits, bounded("integral")),
		CommandFunc("limit", `\lim`, lower, func(c []string, _ domain.AudienceLevel) string {
			if c[0] == "" {
				return "the limit of"
			}
			return "the limit as " + c[0] + " of"
		}),
	}
}

func constructs() []Rule {
	frac := levels(
		"the fraction with numerator $1 and denominator $2",
		"the fraction $1 over $2",
		"$1 over $2",
	)
	return []Rule{
		Command("fraction", `\frac`, two, frac),
		Command("display-fraction", `\dfrac`, two, frac),
		Command("text-fraction", `\tfrac`, two, frac),
		Command("binomial", `\binom`, two, levels("the binomial coefficient $1 choose $2", "$1 choose $2", "")),
		CommandFunc("root", `\sqrt`, rootArgs, func(c []string, level domain.AudienceLevel) string {
			switch c[0] {
			case "":
				if level >= domain.AudienceAdvanced {
					return "root " + c[1]
				}
				return "the square root of " + c[1]
			case "2":
				return "the square root of " + c[1]
			case "3":
				return "the cube root of " + c[1]
			default:
				return "the root of index " + c[0] + " of " + c[1]
			}
		}),
		Command("bar", `\bar`, one, levels("$1 bar", "", "")),
		Command("overline", `\overline`, one, levels("$1 bar", "", "")),
		Command("hat", `\hat`, one, levels("$1 hat", "", "")),
		Command("vec", `\vec`, one, levels("vector $1", "", "")),
		Command("dot-accent", `\dot`, one, levels("$1 dot", "", "")),
		Command("ddot-accent", `\ddot`, one, levels("$1 double dot", "", "")),
		Command("tilde", `\tilde`, one, levels("$1 tilde", "", "")),
		CommandFunc("blackboard", `\mathbb`, one, func(c []string, _ domain.AudienceLevel) string {
			if name, ok := numberSets[c[0]]; ok {
				return name
			}
			return "blackboard " + c[0]
		}),
		Command("calligraphic", `\mathcal`, one, levels("script $1", "", "")),
		Command("text", `\text`, one, levels("$1", "", "")),
		Command("roman", `\mathrm`, one, levels("$1", "", "")),
		Command("bold", `\mathbf`, one, levels("$1", "", "")),
		Command("italic", `\mathit`, one, levels("$1", "", "")),
		Command("operator-name", `\operatorname`, one, levels("$1", "", "")),
	}
}

var numberSets = map[string]string{
	"R": "the real numbers",
	"N": "the natural numbers",
	"Z": "the integers",
	"Q": "the rational numbers",
	"C": "the complex numbers",
}

func scripts() []Rule {
	return []Rule{
		CommandFunc("superscript", "^", one, func(c []string, level domain.AudienceLevel) string {
			switch c[0] {
			case "2":
				return "squared"
			case "3":
				return "cubed"
			case "*":
				return "star"
			case `\prime`:
				return "prime"
			}
			if level == domain.AudienceBasic {
				return "to the power of " + c[0]
			}
			return "to the " + c[0]
		}),
		Command("subscript", "_", one, levels("subscript $1", "sub $1", "")),
	}
}

// escapes covers control symbols, which must be claimed before the single
// characters they contain.
func escapes() []Rule {
	return []Rule{
		Literal("left", `\left`, ""),
		Literal("right", `\right`, ""),
		Literal("thin-space", `\,`, ""),
		Literal("medium-space", `\:`, ""),
		Literal("thick-space", `\;`, ""),
		Literal("negative-space", `\!`, ""),
		Literal("quad", `\quad`, ""),
		Literal("qquad", `\qquad`, ""),
		Literal("open-brace", `\{`, "open brace"),
		Literal("close-brace", `\}`, "close brace"),
		Literal("double-bar", `\|`, "double vertical bar"),
		Literal("percent", `\%`, "percent"),
		Literal("line-break", `\\`, ","),
	}
}

func greek() []Rule {
	lower := []string{
		"alpha", "beta", "gamma", "delta", "epsilon", "varepsilon", "zeta", "eta",
		"theta", "vartheta", "iota", "kappa", "lambda", "mu", "nu", "xi", "pi",
		"rho", "sigma", "tau", "upsilon", "phi", "varphi", "chi", "psi", "omega",
	}
	upper := []string{
		"Gamma", "Delta", "Theta", "Lambda", "Xi", "Pi", "Sigma", "Upsilon",
		"Phi", "Psi", "Omega",
	}
	out := make([]Rule, 0, len(lower)+len(upper))
	for _, name := range lower {
		spoken := strings.TrimPrefix(name, "var")
		out = append(out, Literal(name, `\`+name, spoken))
	}
	for _, name := range upper {
		out = append(out, Literal(name, `\`+name, "capital "+strings.ToLower(name)))
	}
	return out
}

func commandWords() []Rule {
	return []Rule{
		LiteralLevels("leq", `\leq`, levels("is less than or equal to", "", "")),
		LiteralLevels("le", `\le`, levels("is less than or equal to", "", "")),
		LiteralLevels("geq", `\geq`, levels("is greater than or equal to", "", "")),
		LiteralLevels("ge", `\ge`, levels("is greater than or equal to", "", "")),
		LiteralLevels("neq", `\neq`, levels("is not equal to", "", "")),
		LiteralLevels("ne", `\ne`, levels("is not equal to", "", "")),
		Literal("approx", `\approx`, "is approximately equal to"),
		Literal("equiv", `\equiv`, "is equivalent to"),
		Literal("propto", `\propto`, "is proportional to"),
		Literal("sim", `\sim`, "is similar to"),
		Literal("pm", `\pm`, "plus or minus"),
		Literal("mp", `\mp`, "minus or plus"),
		LiteralLevels("times", `\times`, levels("multiplied by", "times", "")),
		LiteralLevels("cdot", `\cdot`, levels("multiplied by", "times", "")),
		Literal("div", `\div`, "divided by"),
		Literal("infinity", `\infty`, "infinity"),
		Literal("to", `\to`, "to"),
		Literal("rightarrow", `\rightarrow`, "to"),
		Literal("mapsto", `\mapsto`, "maps to"),
		Literal("implies-arrow", `\Rightarrow`, "implies"),
		Literal("implies", `\implies`, "implies"),
		Literal("iff", `\iff`, "if and only if"),
		Literal("iff-arrow", `\Leftrightarrow`, "if and only if"),
		Literal("ldots", `\ldots`, "dot dot dot"),
		Literal("cdots", `\cdots`, "dot dot dot"),
		Literal("dots", `\dots`, "dot dot dot"),
		Literal("partial", `\partial`, "partial"),
		Literal("nabla", `\nabla`, "nabla"),
		Literal("forall", `\forall`, "for all"),
		Literal("exists", `\exists`, "there exists"),
		Literal("neg", `\neg`, "not"),
		Literal("land", `\land`, "and"),
		Literal("wedge", `\wedge`, "and"),
		Literal("lor", `\lor`, "or"),
		Literal("vee", `\vee`, "or"),
		Literal("cup", `\cup`, "union"),
		Literal("cap", `\cap`, "intersection"),
		Literal("setminus", `\setminus`, "minus"),
		Literal("subseteq", `\subseteq`, "is a subset of or equal to"),
		Literal("subset", `\subset`, "is a subset of"),
		Literal("emptyset", `\emptyset`, "the empty set"),
		Literal("notin", `\notin`, "is not in"),
		Literal("in", `\in`, "in"),
		Literal("mid", `\mid`, "divides"),
		Literal("vert", `\vert`, "vertical bar"),
		Literal("circ", `\circ`, "composed with"),
		Literal("prime", `\prime`, "prime"),
		Literal("top", `\top`, "transpose"),
		Literal("ell", `\ell`, "ell"),
		Literal("langle", `\langle`, "open angle bracket"),
		Literal("rangle", `\rangle`, "close angle bracket"),
		Literal("sin", `\sin`, "sine"),
		Literal("cos", `\cos`, "cosine"),
		Literal("tan", `\tan`, "tangent"),
		Literal("sec", `\sec`, "secant"),
		Literal("csc", `\csc`, "cosecant"),
		Literal("cot", `\cot`, "cotangent"),
		Literal("arcsin", `\arcsin`, "arc sine"),
		Literal("arccos", `\arccos`, "arc cosine"),
		Literal("arctan", `\arctan`, "arc tangent"),
		Literal("sinh", `\sinh`, "hyperbolic sine"),
		Literal("cosh", `\cosh`, "hyperbolic cosine"),
		Literal("tanh", `\tanh`, "hyperbolic tangent"),
		LiteralLevels("log", `\log`, levels("the logarithm of", "log", "")),
		LiteralLevels("ln", `\ln`, levels("the natural logarithm of", "natural log", "")),
		Literal("exp", `\exp`, "exponential"),
		Literal("max", `\max`, "max"),
		Literal("min", `\min`, "min"),
		Literal("sup", `\sup`, "supremum"),
		Literal("inf", `\inf`, "infimum"),
		Literal("det", `\det`, "determinant"),
		Literal("gcd", `\gcd`, "gcd"),
	}
}

// symbols covers plain characters. Multi-character operators precede the
// characters they start with.
func symbols() []Rule {
	return []Rule{
		Literal("less-equal", "<=", "is less than or equal to"),
		Literal("greater-equal", ">=", "is greater than or equal to"),
		Literal("not-equal", "!=", "is not equal to"),
		Literal("double-prime", "''", "double prime"),
		Pattern("absolute-value", `\|([^|]*[^|\\])\|`, levels("the absolute value of $1", "", "")),
		Literal("plus", "+", "plus"),
		Literal("minus", "-", "minus"),
		LiteralLevels("equals", "=", levels("is equal to", "equals", "")),
		Literal("less", "<", "is less than"),
		Literal("greater", ">", "is greater than"),
		Literal("asterisk", "*", "times"),
		LiteralLevels("slash", "/", levels("divided by", "", "over")),
		Literal("factorial", "!", "factorial"),
		Literal("prime-mark", "'", "prime"),
		Literal("bar-mark", "|", "vertical bar"),
		Literal("open-bracket", "[", "open bracket"),
		Literal("close-bracket", "]", "close bracket"),
		Literal("alignment", "&", ""),
		Literal("tie", "~", ""),
	}
}
