package calc

import "strings"

type DrugDoseInput struct {
	WeightKg    float64 `json:"weight_kg"`
	DoseMgPerKg float64 `json:"dose_mg_per_kg"`
	// Pointer so an omitted concentration (no volume wanted) is
	// distinguishable from an explicit, invalid zero.
	ConcentrationMgPerMl *float64 `json:"concentration_mg_per_ml,omitempty"`
	Frequency            string   `json:"frequency,omitempty"` // SID, BID, TID, QID, q8h...
}

type DrugDoseResult struct {
	TotalDoseMg float64  `json:"total_dose_mg"`
	VolumeMl    float64  `json:"volume_ml,omitempty"`
	DailyDoseMg float64  `json:"daily_dose_mg"`
	Frequency   string   `json:"frequency"`
	Notes       []string `json:"notes,omitempty"`
}

var frequencyPerDay = map[string]int{
	"SID": 1, "QD": 1, "Q24H": 1,
	"BID": 2, "Q12H": 2,
	"TID": 3, "Q8H": 3,
	"QID": 4, "Q6H": 4,
}

func DrugDose(in DrugDoseInput) (DrugDoseResult, error) {
	if in.WeightKg <= 0 {
		return DrugDoseResult{}, invalidf("weight must be positive, got %g", in.WeightKg)
	}
	if in.DoseMgPerKg <= 0 {
		return DrugDoseResult{}, invalidf("dose must be positive, got %g", in.DoseMgPerKg)
	}
	if in.ConcentrationMgPerMl != nil && *in.ConcentrationMgPerMl <= 0 {
		return DrugDoseResult{}, invalidf("concentration must be positive, got %g", *in.ConcentrationMgPerMl)
	}

	freq := strings.ToUpper(strings.TrimSpace(in.Frequency))
	if freq == "" {
		freq = "BID"
	}
	timesPerDay, ok := frequencyPerDay[freq]
	if !ok {
		timesPerDay = 2
	}

	totalDose := in.WeightKg * in.DoseMgPerKg

	var volume float64
	if in.ConcentrationMgPerMl != nil {
		volume = round2(totalDose / *in.ConcentrationMgPerMl)
	}

	var notes []string
	if in.WeightKg < 1 {
		notes = append(notes, "Very low body weight: verify dose precision carefully")
	}
	if in.WeightKg > 80 {
		notes = append(notes, "Giant-breed weight: confirm the maximum total dose")
	}

	return DrugDoseResult{
		TotalDoseMg: round2(totalDose),
		VolumeMl:    volume,
		DailyDoseMg: round2(totalDose * float64(timesPerDay)),
		Frequency:   freq,
		Notes:       notes,
	}, nil
}
