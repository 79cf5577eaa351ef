package domain

// Rule layer names. The common layer applies to every conversion; at most
// one domain layer is active per conversion and is tried before common.
const (
	LayerCommon        = "common"
	LayerCalculus      = "calculus"
	LayerLinearAlgebra = "linear_algebra"
	LayerProbability   = "probability"
	LayerSetTheory     = "set_theory"
)

// DomainLayers returns the built-in domain layers in registration order.
func DomainLayers() []string {
	return []string{LayerCalculus, LayerLinearAlgebra, LayerProbability, LayerSetTheory}
}
