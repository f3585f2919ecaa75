// Package billing holds per-model pricing and the per-user request and
// token quotas enforced at the HTTP edge.
package billing

import "math"

type modelPricing struct {
	inputPerMillion  float64
	outputPerMillion float64
}

// Pricing in USD per million tokens.
var pricing = map[string]modelPricing{
	"claude-sonnet-4-5-20250929": {inputPerMillion: 3.0, outputPerMillion: 15.0},
	"claude-sonnet-4-20250514":   {inputPerMillion: 3.0, outputPerMillion: 15.0},
	"claude-haiku-4-5-20251001":  {inputPerMillion: 1.0, outputPerMillion: 5.0},
}

var defaultPricing = modelPricing{inputPerMillion: 3.0, outputPerMillion: 15.0}

// CalculateCost returns the USD cost of one model call, rounded to six
// decimal places. Unknown models fall back to the default rate.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := pricing[model]
	if !ok {
		p = defaultPricing
	}
	cost := float64(inputTokens)/1_000_000*p.inputPerMillion +
		float64(outputTokens)/1_000_000*p.outputPerMillion
	return math.Round(cost*1_000_000) / 1_000_000
}
