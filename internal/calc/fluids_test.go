package calc

import (
	"errors"
	"testing"
)

func TestFluidRate(t *testing.T) {
	tests := []struct {
		name            string
		in              FluidRateInput
		wantDeficit     float64
		wantMaintenance float64
		wantTotalHourly float64
		wantErr         bool
	}{
		{
			name:            "8 percent dehydrated 20kg dog over 24h",
			in:              FluidRateInput{WeightKg: 20, DehydrationPercent: 8, Species: SpeciesCanine},
			wantDeficit:     1600,  // 20 x 8 x 10
			wantMaintenance: 1200,  // 20 x 60
			wantTotalHourly: 116.7, // 1600/24 + 1200/24
		},
		{
			name:            "cat maintenance factor is 50",
			in:              FluidRateInput{WeightKg: 4, DehydrationPercent: 0, Species: SpeciesFeline},
			wantDeficit:     0,
			wantMaintenance: 200,
			wantTotalHourly: 8.3,
		},
		{
			name:            "faster correction window",
			in:              FluidRateInput{WeightKg: 10, DehydrationPercent: 6, CorrectionHours: 12},
			wantDeficit:     600,
			wantMaintenance: 600,
			wantTotalHourly: 75, // 600/12 + 600/24
		},
		{
			name:            "ongoing losses added to hourly rate",
			in:              FluidRateInput{WeightKg: 10, DehydrationPercent: 0, OngoingLossesMlPerHour: 10},
			wantDeficit:     0,
			wantMaintenance: 600,
			wantTotalHourly: 35,
		},
		{
			name:    "zero weight rejected",
			in:      FluidRateInput{WeightKg: 0, DehydrationPercent: 8},
			wantErr: true,
		},
		{
			name:    "dehydration above 15 percent rejected",
			in:      FluidRateInput{WeightKg: 10, DehydrationPercent: 16},
			wantErr: true,
		},
		{
			name:    "negative dehydration rejected",
			in:      FluidRateInput{WeightKg: 10, DehydrationPercent: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FluidRate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.DeficitMl != tt.wantDeficit {
				t.Errorf("DeficitMl = %g, want %g", got.DeficitMl, tt.wantDeficit)
			}
			if got.MaintenanceMlPerDay != tt.wantMaintenance {
				t.Errorf("MaintenanceMlPerDay = %g, want %g", got.MaintenanceMlPerDay, tt.wantMaintenance)
			}
			if got.TotalRateMlPerHour != tt.wantTotalHourly {
				t.Errorf("TotalRateMlPerHour = %g, want %g", got.TotalRateMlPerHour, tt.wantTotalHourly)
			}
		})
	}
}

func TestFluidRate_SevereDehydrationNote(t *testing.T) {
	got, err := FluidRate(FluidRateInput{WeightKg: 20, DehydrationPercent: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Notes) < 2 {
		t.Errorf("expected severe and extreme dehydration notes, got %v", got.Notes)
	}
}
