package calc

import (
	"fmt"
	"strings"
)

type ToxicityInput struct {
	WeightKg       float64 `json:"weight_kg"`
	Substance      string  `json:"substance"`
	AmountIngested float64 `json:"amount_ingested"` // g or mg depending on substance
	SubstanceType  string  `json:"substance_type,omitempty"`
	Species        string  `json:"species,omitempty"`
}

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type ToxicityResult struct {
	DosePerKg          float64  `json:"dose_per_kg"`
	ToxicDoseThreshold float64  `json:"toxic_dose_threshold"`
	Severity           Severity `json:"severity"`
	ClinicalSigns      []string `json:"clinical_signs"`
	TreatmentPriority  string   `json:"treatment_priority"`
	Notes              []string `json:"notes,omitempty"`
}

// Theobromine content per gram of chocolate (mg/g).
var chocolateTheobromine = map[string]float64{
	"white":        0.009,
	"milk":         2.4,
	"dark":         5.5,
	"semisweet":    5.3,
	"baking":       16.0,
	"cocoa_powder": 28.5,
}

// Theobromine severity bands (mg/kg).
const (
	theobromineMild     = 20 // GI signs
	theobromineModerate = 40 // cardiac signs
	theobromineSevere   = 60 // seizures, death risk
)

func Toxicity(in ToxicityInput) (ToxicityResult, error) {
	if in.WeightKg <= 0 {
		return ToxicityResult{}, invalidf("weight must be positive, got %g", in.WeightKg)
	}
	if in.AmountIngested < 0 {
		return ToxicityResult{}, invalidf("ingested amount must not be negative, got %g", in.AmountIngested)
	}

	species := in.Species
	if species == "" {
		species = SpeciesCanine
	}

	switch strings.ToLower(in.Substance) {
	case "chocolate":
		return chocolateToxicity(in.WeightKg, in.AmountIngested, in.SubstanceType, species), nil
	case "xylitol":
		return xylitolToxicity(in.WeightKg, in.AmountIngested, species), nil
	case "ibuprofen":
		return ibuprofenToxicity(in.WeightKg, in.AmountIngested, species), nil
	case "grape", "raisin":
		return grapeToxicity(in.WeightKg, in.AmountIngested), nil
	default:
		dosePerKg := in.AmountIngested / in.WeightKg
		return ToxicityResult{
			DosePerKg:         round2(dosePerKg),
			Severity:          SeverityModerate,
			ClinicalSigns:     []string{"No toxicity data for this substance; contact a poison control center"},
			TreatmentPriority: "Consult ASPCA Animal Poison Control (888-426-4435)",
			Notes:             []string{fmt.Sprintf("Unknown substance %q, dose %.2f per kg", in.Substance, dosePerKg)},
		}, nil
	}
}

func chocolateToxicity(weightKg, amountG float64, chocolateType, species string) ToxicityResult {
	if chocolateType == "" {
		chocolateType = "dark"
	}
	perGram, ok := chocolateTheobromine[strings.ToLower(chocolateType)]
	if !ok {
		perGram = chocolateTheobromine["dark"]
	}
	totalTheobromine := amountG * perGram
	dosePerKg := totalTheobromine / weightKg

	var severity Severity
	var signs []string
	var priority string

	switch {
	case dosePerKg < theobromineMild:
		severity = SeverityNone
		signs = []string{"No significant signs expected"}
		priority = "Monitor at home; treatment usually unnecessary"
	case dosePerKg < theobromineModerate:
		severity = SeverityMild
		signs = []string{"Vomiting", "Diarrhea", "Polyuria", "Polydipsia", "Restlessness"}
		priority = "Induce emesis if within 2 hours of ingestion; activated charcoal"
	case dosePerKg < theobromineSevere:
		severity = SeverityModerate
		signs = []string{"Tachycardia", "Arrhythmias", "Muscle tremors", "Agitation", "Hyperthermia"}
		priority = "Urgent veterinary care: emesis, charcoal, cardiac monitoring, IV fluids"
	default:
		severity = SeveritySevere
		signs = []string{"Seizures", "Severe arrhythmias", "Rhabdomyolysis", "Renal failure", "Death possible"}
		priority = "Emergency: intensive care, anticonvulsants, cardiac monitoring, aggressive fluids"
	}

	if species == SpeciesFeline {
		signs = append(signs, "Cats are more sensitive to theobromine")
	}

	return ToxicityResult{
		DosePerKg:          round2(dosePerKg),
		ToxicDoseThreshold: theobromineMild,
		Severity:           severity,
		ClinicalSigns:      signs,
		TreatmentPriority:  priority,
		Notes: []string{
			fmt.Sprintf("Chocolate type: %s", chocolateType),
			fmt.Sprintf("Theobromine content: %g mg/g", perGram),
			fmt.Sprintf("Total theobromine ingested: %.0f mg", totalTheobromine),
			fmt.Sprintf("Dose: %.1f mg/kg", dosePerKg),
		},
	}
}

func xylitolToxicity(weightKg, amountMg float64, species string) ToxicityResult {
	dosePerKg := amountMg / weightKg

	// >100 mg/kg hypoglycemia, >500 mg/kg hepatic failure.
	var severity Severity
	var signs []string
	switch {
	case dosePerKg < 100:
		severity = SeverityMild
		signs = []string{"Possible mild hypoglycemia", "Monitor mentation and appetite"}
	case dosePerKg < 500:
		severity = SeverityModerate
		signs = []string{"Hypoglycemia (weakness, ataxia, seizures)", "Vomiting"}
	default:
		severity = SeveritySevere
		signs = []string{"Acute hepatic failure", "Severe hypoglycemia", "Coagulopathy", "Death possible"}
	}

	priority := "Monitor blood glucose"
	if dosePerKg >= 100 {
		priority = "Emergency: glucose monitoring, dextrose infusion, hepatoprotectants"
	}

	note := "Xylitol is highly toxic to dogs"
	if species == SpeciesFeline {
		note = "Cats are less sensitive to xylitol than dogs, but monitoring is still warranted"
	}

	return ToxicityResult{
		DosePerKg:          round2(dosePerKg),
		ToxicDoseThreshold: 100,
		Severity:           severity,
		ClinicalSigns:      signs,
		TreatmentPriority:  priority,
		Notes:              []string{note},
	}
}

func ibuprofenToxicity(weightKg, amountMg float64, species string) ToxicityResult {
	dosePerKg := amountMg / weightKg

	var severity Severity
	var signs []string
	threshold := 25.0

	if species == SpeciesFeline {
		// Cats metabolize NSAIDs poorly; treat any exposure as severe.
		threshold = 0
		severity = SeverityNone
		if dosePerKg > 0 {
			severity = SeveritySevere
		}
		signs = []string{"Cats are extremely sensitive to ibuprofen", "Renal failure", "GI ulceration", "Potentially fatal"}
	} else {
		switch {
		case dosePerKg < 25:
			severity = SeverityMild
			signs = []string{"Possibly asymptomatic or mild GI upset"}
		case dosePerKg < 50:
			severity = SeverityModerate
			signs = []string{"Vomiting", "Diarrhea", "GI ulceration", "Melena"}
		default:
			severity = SeveritySevere
			signs = []string{"Acute renal failure", "GI perforation", "Seizures", "Coma"}
		}
	}

	priority := "Monitor and seek veterinary advice"
	if severity == SeveritySevere {
		priority = "Emergency: emesis, GI protectants, renal monitoring"
	}

	return ToxicityResult{
		DosePerKg:          round2(dosePerKg),
		ToxicDoseThreshold: threshold,
		Severity:           severity,
		ClinicalSigns:      signs,
		TreatmentPriority:  priority,
		Notes:              []string{"Ibuprofen is not a safe NSAID in dogs or cats; meloxicam or carprofen are preferred"},
	}
}

func grapeToxicity(weightKg, amountG float64) ToxicityResult {
	dosePerKg := amountG / weightKg

	severity := SeverityNone
	priority := "No ingestion risk"
	if amountG > 0 {
		severity = SeveritySevere
		priority = "Emergency: emesis, activated charcoal, 48h aggressive fluids, renal monitoring"
	}

	return ToxicityResult{
		DosePerKg:          round2(dosePerKg),
		ToxicDoseThreshold: 0, // no safe dose established
		Severity:           severity,
		ClinicalSigns:      []string{"No known safe dose for grapes/raisins", "Acute renal failure", "Vomiting", "Oliguria/anuria"},
		TreatmentPriority:  priority,
		Notes: []string{
			"The toxic mechanism of grapes in dogs is not well understood",
			"Individual sensitivity varies widely; treat any ingestion as an emergency",
			"Early aggressive treatment carries a better prognosis",
		},
	}
}
