package calc

import (
	"errors"
	"math"
	"testing"
)

func TestRER(t *testing.T) {
	tests := []struct {
		name     string
		in       RERInput
		wantRER  float64
		wantMER  float64
		wantErr  bool
	}{
		{
			name:    "20kg dog uses allometric formula",
			in:      RERInput{WeightKg: 20, Species: SpeciesCanine},
			wantRER: 662, // 70 x 20^0.75
			wantMER: 1059, // adult dog factor 1.6
		},
		{
			name:    "4kg cat adult",
			in:      RERInput{WeightKg: 4, Species: SpeciesFeline},
			wantRER: math.Round(70 * math.Pow(4, 0.75)),
			wantMER: math.Round(70 * math.Pow(4, 0.75) * 1.4),
		},
		{
			name:    "1.5kg kitten uses linear formula",
			in:      RERInput{WeightKg: 1.5, Species: SpeciesFeline, LifeStage: "kitten"},
			wantRER: 115, // 30 x 1.5 + 70
			wantMER: math.Round(115 * 2.5),
		},
		{
			name:    "50kg giant breed uses linear formula",
			in:      RERInput{WeightKg: 50, Species: SpeciesCanine},
			wantRER: 1570, // 30 x 50 + 70
			wantMER: math.Round(1570 * 1.6),
		},
		{
			name:    "explicit illness factor overrides life stage",
			in:      RERInput{WeightKg: 20, Species: SpeciesCanine, IllnessFactor: 1.0},
			wantRER: 662,
			wantMER: 662,
		},
		{
			name:    "zero weight rejected",
			in:      RERInput{WeightKg: 0},
			wantErr: true,
		},
		{
			name:    "negative illness factor rejected",
			in:      RERInput{WeightKg: 10, IllnessFactor: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RER(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RERKcal != tt.wantRER {
				t.Errorf("RERKcal = %g, want %g", got.RERKcal, tt.wantRER)
			}
			if got.MERKcal != tt.wantMER {
				t.Errorf("MERKcal = %g, want %g", got.MERKcal, tt.wantMER)
			}
			if got.FormulaUsed == "" {
				t.Error("FormulaUsed should describe the formula applied")
			}
		})
	}
}

func TestRER_BoundaryWeights(t *testing.T) {
	// 2 kg and 45 kg are inclusive bounds of the allometric formula.
	at2, err := RER(RERInput{WeightKg: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Round(70 * math.Pow(2, 0.75)); at2.RERKcal != want {
		t.Errorf("RER at 2kg = %g, want allometric %g", at2.RERKcal, want)
	}

	at45, err := RER(RERInput{WeightKg: 45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Round(70 * math.Pow(45, 0.75)); at45.RERKcal != want {
		t.Errorf("RER at 45kg = %g, want allometric %g", at45.RERKcal, want)
	}

	above, err := RER(RERInput{WeightKg: 45.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Round(30*45.5 + 70); above.RERKcal != want {
		t.Errorf("RER at 45.5kg = %g, want linear %g", above.RERKcal, want)
	}
}
