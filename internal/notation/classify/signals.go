package classify

import (
	"regexp"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

func tok(token string, weight float64) Signal {
	return Signal{Token: token, Weight: weight}
}

func pat(expr string, weight float64) Signal {
	return Signal{Pattern: regexp.MustCompile(expr), Weight: weight}
}

// DefaultDomains returns the built-in domains in the same order as the rule
// table's domain layers.
func DefaultDomains() []Domain {
	return []Domain{
		{Name: domain.LayerCalculus, Signals: []Signal{
			tok(`\int`, 2),
			tok(`\iint`, 2),
			tok(`\oint`, 2),
			tok(`\lim`, 2),
			tok(`\frac{d}`, 2),
			tok(`\partial`, 2),
			tok(`\nabla`, 1),
			tok(`\sum`, 1),
			tok(`\infty`, 0.5),
			tok(`\to`, 0.5),
			pat(`\bd[a-z]\b`, 1),
		}},
		{Name: domain.LayerLinearAlgebra, Signals: []Signal{
			tok(`\begin{pmatrix}`, 1.5),
			tok(`\begin{bmatrix}`, 1.5),
			tok(`\begin{vmatrix}`, 2),
			pat(`(?:^|[^A-Za-z\\])matrix\(`, 1.5),
			pat(`(?:^|[^A-Za-z\\])vector\(`, 2),
			tok(`\det`, 2),
			tok(`^T`, 1.5),
			tok(`^{T}`, 1.5),
			tok(`\top`, 1.5),
			tok(`^{-1}`, 1),
			tok(`\mathbf`, 1),
			tok(`\|`, 1),
			tok(`\langle`, 1),
			tok(`\cdot`, 0.5),
			tok(`\times`, 0.5),
		}},
		{Name: domain.LayerProbability, Signals: []Signal{
			pat(`\bP\(`, 2),
			pat(`\bE\[`, 2),
			tok(`\mathbb{E}`, 2),
			tok(`\operatorname{Var}`, 2),
			tok(`\sim`, 1),
			tok(`\binom`, 1),
			tok(`\mid`, 0.5),
		}},
		{Name: domain.LayerSetTheory, Signals: []Signal{
			tok(`\notin`, 2),
			tok(`\cup`, 2),
			tok(`\cap`, 2),
			tok(`\subset`, 2),
			tok(`\subseteq`, 2),
			tok(`\emptyset`, 2),
			tok(`\setminus`, 2),
			tok(`\in`, 1),
			tok(`\{`, 1),
			tok(`\mid`, 0.5),
			tok(`\forall`, 0.5),
			tok(`\exists`, 0.5),
		}},
	}
}
