package calc

type FluidRateInput struct {
	WeightKg              float64 `json:"weight_kg"`
	DehydrationPercent    float64 `json:"dehydration_percent"` // 0-15
	CorrectionHours       float64 `json:"correction_hours,omitempty"`
	MaintenanceFactor     float64 `json:"maintenance_factor,omitempty"` // ml/kg/day
	Species               string  `json:"species,omitempty"`
	OngoingLossesMlPerHour float64 `json:"ongoing_losses_ml_per_hour,omitempty"`
}

type FluidRateResult struct {
	DeficitMl              float64  `json:"deficit_ml"`
	MaintenanceMlPerDay    float64  `json:"maintenance_ml_per_day"`
	CorrectionRateMlPerHour float64 `json:"correction_rate_ml_per_hour"`
	TotalRateMlPerHour     float64  `json:"total_rate_ml_per_hour"`
	TotalVolume24h         float64  `json:"total_volume_24h"`
	Notes                  []string `json:"notes,omitempty"`
}

// FluidRate computes rehydration plus maintenance fluid rates.
// Deficit = weight (kg) x dehydration (%) x 10; maintenance defaults to
// 60 ml/kg/day for dogs and 50 for cats.
func FluidRate(in FluidRateInput) (FluidRateResult, error) {
	if in.WeightKg <= 0 {
		return FluidRateResult{}, invalidf("weight must be positive, got %g", in.WeightKg)
	}
	if in.DehydrationPercent < 0 || in.DehydrationPercent > 15 {
		return FluidRateResult{}, invalidf("dehydration percent must be between 0 and 15, got %g", in.DehydrationPercent)
	}
	if in.CorrectionHours < 0 {
		return FluidRateResult{}, invalidf("correction hours must be positive, got %g", in.CorrectionHours)
	}

	species := in.Species
	if species == "" {
		species = SpeciesCanine
	}
	correctionHours := in.CorrectionHours
	if correctionHours == 0 {
		correctionHours = 24
	}
	maintenanceFactor := in.MaintenanceFactor
	if maintenanceFactor == 0 {
		if species == SpeciesFeline {
			maintenanceFactor = 50
		} else {
			maintenanceFactor = 60
		}
	}

	maintenancePerDay := in.WeightKg * maintenanceFactor
	maintenancePerHour := maintenancePerDay / 24

	deficit := in.WeightKg * in.DehydrationPercent * 10
	correctionPerHour := deficit / correctionHours

	totalPerHour := maintenancePerHour + correctionPerHour + in.OngoingLossesMlPerHour

	var notes []string
	if in.DehydrationPercent >= 10 {
		notes = append(notes, "Severe dehydration (>=10%): correct faster over the first 4-6 hours, then slow down")
	}
	if species == SpeciesFeline && totalPerHour > in.WeightKg*5 {
		notes = append(notes, "High fluid rate for a cat: watch for volume overload")
	}
	if in.DehydrationPercent >= 12 {
		notes = append(notes, "Extreme dehydration: consider colloids or hypertonic saline")
	}

	return FluidRateResult{
		DeficitMl:               round1(deficit),
		MaintenanceMlPerDay:     round1(maintenancePerDay),
		CorrectionRateMlPerHour: round1(correctionPerHour),
		TotalRateMlPerHour:      round1(totalPerHour),
		TotalVolume24h:          round1(totalPerHour * 24),
		Notes:                   notes,
	}, nil
}
