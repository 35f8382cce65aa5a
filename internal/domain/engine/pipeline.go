package engine

type PipelinePhase string

// Discounts are additive on the original subtotal: each offer is computed
// against its own eligible base, percentage offers before fixed ones.
const (
	Subtotal   PipelinePhase = "subtotal"
	Percentage PipelinePhase = "percentage"
	Fixed      PipelinePhase = "fixed"
	Totals     PipelinePhase = "totals"
)

var discountPhases = []PipelinePhase{Percentage, Fixed}

func phaseFor(t string) (PipelinePhase, bool) {
	switch t {
	case "percentage":
		return Percentage, true
	case "fixed":
		return Fixed, true
	}
	return "", false
}
