package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vetevidence/vetagent/internal/calc"
	"github.com/vetevidence/vetagent/internal/core"
)

type calculatorInput struct {
	CalculatorType string          `json:"calculator_type"`
	Parameters     json.RawMessage `json:"parameters"`
}

// NewClinicalCalculator wires the deterministic calculators behind one
// dispatching tool. Out-of-domain parameters surface as tool errors,
// which the loop feeds back to the model as {error} payloads.
func NewClinicalCalculator() (core.Tool, Handler) {
	def := core.Tool{
		Name:        ToolClinicalCalculator,
		Description: "Run a clinical calculation: drug_dose, fluid_rate, energy_requirement, toxicity or iris_staging. Parameters are calculator-specific.",
		InputSchema: clinicalCalculatorSchema,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in calculatorInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid clinical_calculator input: %w", err)
		}
		if len(in.Parameters) == 0 {
			return nil, fmt.Errorf("clinical_calculator requires parameters")
		}

		run := func(result any, err error) (any, error) {
			if err != nil {
				return nil, err
			}
			return result, nil
		}

		switch in.CalculatorType {
		case "drug_dose":
			var p calc.DrugDoseInput
			if err := json.Unmarshal(in.Parameters, &p); err != nil {
				return nil, fmt.Errorf("invalid drug_dose parameters: %w", err)
			}
			res, err := calc.DrugDose(p)
			return run(res, err)

		case "fluid_rate":
			var p calc.FluidRateInput
			if err := json.Unmarshal(in.Parameters, &p); err != nil {
				return nil, fmt.Errorf("invalid fluid_rate parameters: %w", err)
			}
			res, err := calc.FluidRate(p)
			return run(res, err)

		case "energy_requirement":
			var p calc.RERInput
			if err := json.Unmarshal(in.Parameters, &p); err != nil {
				return nil, fmt.Errorf("invalid energy_requirement parameters: %w", err)
			}
			res, err := calc.RER(p)
			return run(res, err)

		case "toxicity":
			var p calc.ToxicityInput
			if err := json.Unmarshal(in.Parameters, &p); err != nil {
				return nil, fmt.Errorf("invalid toxicity parameters: %w", err)
			}
			res, err := calc.Toxicity(p)
			return run(res, err)

		case "iris_staging":
			var p calc.IRISInput
			if err := json.Unmarshal(in.Parameters, &p); err != nil {
				return nil, fmt.Errorf("invalid iris_staging parameters: %w", err)
			}
			res, err := calc.IRISStaging(p)
			return run(res, err)

		default:
			return nil, fmt.Errorf("unknown calculator type: %s", in.CalculatorType)
		}
	}

	return def, handler
}
