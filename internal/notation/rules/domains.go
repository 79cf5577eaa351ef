package rules

// Domain layers run ahead of the common layer and rephrase notation whose
// reading depends on the field.

func calculusRules() []Rule {
	return []Rule{
		Pattern("second-derivative", `\\frac\{d\^\{?2\}?\}\{d([a-zA-Z])\^\{?2\}?\}`,
			levels("the second derivative with respect to $1 of", "", "d squared by d $1 squared of")),
		Pattern("derivative", `\\frac\{d\}\{d([a-zA-Z])\}`,
			levels("the derivative with respect to $1 of", "", "d by d $1 of")),
		Pattern("partial-derivative", `\\frac\{\\partial\}\{\\partial ?([a-zA-Z])\}`,
			levels("the partial derivative with respect to $1 of", "", "partial by partial $1 of")),
		Pattern("differential", `\\,\s*d([a-zA-Z])\b`, levels("d $1", "", "")),
		Literal("approaches", `\to`, "approaches"),
		Literal("gradient", `\nabla`, "the gradient of"),
		Literal("partial-symbol", `\partial`, "the partial of"),
	}
}

func linearAlgebraRules() []Rule {
	return []Rule{
		Pattern("transpose", `\^(?:\{T\}|\{\\top\}|\\top\b|T\b)`, levels("transpose", "", "")),
		Pattern("inverse", `\^\{-1\}`, levels("inverse", "", "")),
		Pattern("norm", `\\\|(.+?)\\\|`, levels("the norm of $1", "", "norm $1")),
		Pattern("inner-product", `\\langle(.+?),(.+?)\\rangle`, levels("the inner product of $1 and $2", "", "")),
		Pattern("bold-vector", `\\mathbf\{([^{}]*)\}`, levels("vector $1", "", "")),
		Literal("cross", `\times`, "cross"),
		Literal("dot-product", `\cdot`, "dot"),
		Literal("determinant", `\det`, "the determinant of"),
	}
}

func probabilityRules() []Rule {
	return []Rule{
		Pattern("conditional", `P\(([^()|]+)\|([^()|]+)\)`, levels("the probability of $1 given $2", "", "P of $1 given $2")),
		Pattern("probability", `P\(([^()|]+)\)`, levels("the probability of $1", "", "P of $1")),
		Pattern("expectation", `(?:E|\\mathbb\{E\})\[([^\[\]]+)\]`, levels("the expected value of $1", "", "E of $1")),
		Pattern("variance", `\\operatorname\{Var\}\(([^()]+)\)`, levels("the variance of $1", "", "")),
		Literal("given", `\mid`, "given"),
		Literal("distributed", `\sim`, "is distributed as"),
	}
}

func setTheoryRules() []Rule {
	return []Rule{
		Pattern("cardinality", `\|([^|]*[^|\\])\|`, levels("the cardinality of $1", "", "")),
		Literal("element", `\in`, "is an element of"),
		Literal("not-element", `\notin`, "is not an element of"),
		Literal("such-that", `\mid`, "such that"),
		Literal("set-open", `\{`, "the set of"),
		Literal("set-close", `\}`, ""),
		Literal("empty-set", `\emptyset`, "the empty set"),
	}
}
