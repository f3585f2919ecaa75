package calc

import (
	"fmt"
	"math"
)

// RERInput computes resting energy requirement:
// 2-45 kg uses the allometric formula 70 x kg^0.75, outside that range
// the linear formula 30 x kg + 70.
type RERInput struct {
	WeightKg      float64 `json:"weight_kg"`
	Species       string  `json:"species,omitempty"`
	IllnessFactor float64 `json:"illness_factor,omitempty"`
	LifeStage     string  `json:"life_stage,omitempty"` // adult, puppy, kitten, senior, pregnant, lactating
}

type RERResult struct {
	RERKcal       float64  `json:"rer_kcal"`
	MERKcal       float64  `json:"mer_kcal"`
	IllnessFactor float64  `json:"illness_factor"`
	FormulaUsed   string   `json:"formula_used"`
	Notes         []string `json:"notes,omitempty"`
}

var merFactors = map[string]map[string]float64{
	SpeciesCanine: {
		"adult": 1.6, "senior": 1.4, "puppy": 3.0, "pregnant": 1.8, "lactating": 4.0,
	},
	SpeciesFeline: {
		"adult": 1.4, "senior": 1.1, "kitten": 2.5, "pregnant": 1.6, "lactating": 2.5,
	},
}

func RER(in RERInput) (RERResult, error) {
	if in.WeightKg <= 0 {
		return RERResult{}, invalidf("weight must be positive, got %g", in.WeightKg)
	}
	if in.IllnessFactor < 0 {
		return RERResult{}, invalidf("illness factor must be positive, got %g", in.IllnessFactor)
	}

	species := in.Species
	if species == "" {
		species = SpeciesCanine
	}
	stage := in.LifeStage
	if stage == "" {
		stage = "adult"
	}

	var rer float64
	var formula string
	if in.WeightKg >= 2 && in.WeightKg <= 45 {
		rer = 70 * math.Pow(in.WeightKg, 0.75)
		formula = fmt.Sprintf("70 x %g^0.75 = %d kcal/day", in.WeightKg, int(math.Round(rer)))
	} else {
		rer = 30*in.WeightKg + 70
		formula = fmt.Sprintf("30 x %g + 70 = %d kcal/day", in.WeightKg, int(math.Round(rer)))
	}

	factor := in.IllnessFactor
	if factor == 0 {
		factor = 1.4
		if f, ok := merFactors[species][stage]; ok {
			factor = f
		}
	}

	var notes []string
	if species == SpeciesFeline && in.WeightKg > 8 {
		notes = append(notes, "Overweight cat: consider a weight-management plan")
	}
	if stage == "puppy" || stage == "kitten" {
		notes = append(notes, "Growing animals need frequent small meals to meet higher demand")
	}
	if factor > 1.5 {
		notes = append(notes, "High energy requirement: monitor body weight and condition score")
	}

	return RERResult{
		RERKcal:       math.Round(rer),
		MERKcal:       math.Round(rer * factor),
		IllnessFactor: factor,
		FormulaUsed:   formula,
		Notes:         notes,
	}, nil
}
