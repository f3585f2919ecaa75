package calc

type IRISInput struct {
	CreatinineMgDl   float64 `json:"creatinine_mg_dl"`
	SDMAUgDl         float64 `json:"sdma_ug_dl,omitempty"`
	Species          string  `json:"species"`
	UPC              float64 `json:"upc,omitempty"`
	BloodPressureMmHg float64 `json:"blood_pressure_mmhg,omitempty"`
}

type IRISResult struct {
	Stage                int      `json:"stage"` // 1-4
	StageDescription     string   `json:"stage_description"`
	SubstageProteinuria  string   `json:"substage_proteinuria,omitempty"`
	SubstageHypertension string   `json:"substage_hypertension,omitempty"`
	CreatinineRange      string   `json:"creatinine_range"`
	Notes                []string `json:"notes,omitempty"`
	Recommendations      []string `json:"management_recommendations"`
}

// IRISStaging stages chronic kidney disease from creatinine with
// species-specific cut points (IRIS guidelines), plus UPC and blood
// pressure substaging.
func IRISStaging(in IRISInput) (IRISResult, error) {
	if in.CreatinineMgDl <= 0 {
		return IRISResult{}, invalidf("creatinine must be positive, got %g", in.CreatinineMgDl)
	}
	if in.UPC < 0 {
		return IRISResult{}, invalidf("UPC must be positive, got %g", in.UPC)
	}
	if in.BloodPressureMmHg < 0 {
		return IRISResult{}, invalidf("blood pressure must be positive, got %g", in.BloodPressureMmHg)
	}

	species := in.Species
	if species == "" {
		species = SpeciesCanine
	}

	stage := irisStage(in.CreatinineMgDl, species)

	var notes []string
	var recs []string

	if in.SDMAUgDl > 18 {
		notes = append(notes, "SDMA above 18 ug/dL: may reflect declining renal function earlier than creatinine")
	}

	var proteinuria string
	if in.UPC > 0 {
		borderlineCutoff := 0.5
		if species == SpeciesFeline {
			borderlineCutoff = 0.4
		}
		switch {
		case in.UPC < 0.2:
			proteinuria = "Non-proteinuric (NP)"
		case in.UPC <= borderlineCutoff:
			proteinuria = "Borderline proteinuric (BP)"
		default:
			proteinuria = "Proteinuric (P)"
		}
		if in.UPC > 0.5 {
			recs = append(recs, "Proteinuria management: consider an ACE inhibitor or ARB")
		}
	}

	var hypertension string
	if in.BloodPressureMmHg > 0 {
		switch {
		case in.BloodPressureMmHg < 140:
			hypertension = "Normotensive (AP0)"
		case in.BloodPressureMmHg < 160:
			hypertension = "Prehypertensive (AP1)"
		case in.BloodPressureMmHg < 180:
			hypertension = "Hypertensive (AP2)"
		default:
			hypertension = "Severely hypertensive (AP3)"
		}
		if in.BloodPressureMmHg >= 160 {
			recs = append(recs, "Hypertension management: consider amlodipine (first choice in cats) or an ACE inhibitor")
			notes = append(notes, "Sustained hypertension risks target-organ damage (eyes, brain, kidneys, heart)")
		}
	}

	switch stage {
	case 1:
		recs = append(recs,
			"Monitor creatinine, SDMA, UPC and blood pressure every 3-6 months",
			"Address any underlying renal insult (infection, uroliths)")
	case 2:
		recs = append(recs,
			"Start a renal diet (phosphate restricted, moderate protein)",
			"Recheck renal values every 2-3 months",
			"Encourage water intake")
	case 3:
		recs = append(recs,
			"Renal diet plus phosphate binders",
			"Supplement fluids (consider subcutaneous fluids)",
			"Monitor electrolytes and acid-base status",
			"Assess anemia; consider erythropoietin therapy",
			"Recheck every 1-2 months")
	case 4:
		recs = append(recs,
			"End-stage disease: aggressive supportive care",
			"Subcutaneous fluids, phosphate binders, antacids, antiemetics",
			"Assess quality of life and prognosis",
			"Recheck every 2-4 weeks")
	}

	return IRISResult{
		Stage:                stage,
		StageDescription:     irisStageDescription(stage),
		SubstageProteinuria:  proteinuria,
		SubstageHypertension: hypertension,
		CreatinineRange:      irisCreatinineRange(stage, species),
		Notes:                notes,
		Recommendations:      recs,
	}, nil
}

func irisStage(creatinine float64, species string) int {
	stage1Cutoff := 1.4
	if species == SpeciesFeline {
		stage1Cutoff = 1.6
	}
	switch {
	case creatinine < stage1Cutoff:
		return 1
	case creatinine <= 2.8:
		return 2
	case creatinine <= 5.0:
		return 3
	default:
		return 4
	}
}

func irisStageDescription(stage int) string {
	switch stage {
	case 1:
		return "Stage 1 - Nonazotemic"
	case 2:
		return "Stage 2 - Mild renal azotemia"
	case 3:
		return "Stage 3 - Moderate renal azotemia"
	default:
		return "Stage 4 - Severe renal azotemia"
	}
}

func irisCreatinineRange(stage int, species string) string {
	if species == SpeciesFeline {
		switch stage {
		case 1:
			return "<1.6 mg/dL"
		case 2:
			return "1.6-2.8 mg/dL"
		case 3:
			return "2.9-5.0 mg/dL"
		default:
			return ">5.0 mg/dL"
		}
	}
	switch stage {
	case 1:
		return "<1.4 mg/dL"
	case 2:
		return "1.4-2.8 mg/dL"
	case 3:
		return "2.9-5.0 mg/dL"
	default:
		return ">5.0 mg/dL"
	}
}
