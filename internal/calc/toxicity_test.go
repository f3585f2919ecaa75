package calc

import (
	"errors"
	"testing"
)

func TestToxicity_Chocolate(t *testing.T) {
	tests := []struct {
		name         string
		weightKg     float64
		amountG      float64
		chocType     string
		wantSeverity Severity
	}{
		// 100g milk chocolate = 240mg theobromine; 24 mg/kg in a 10kg dog.
		{"milk chocolate mild band", 10, 100, "milk", SeverityMild},
		// 50g baking chocolate = 800mg; 80 mg/kg in a 10kg dog.
		{"baking chocolate severe band", 10, 50, "baking", SeveritySevere},
		// White chocolate is nearly theobromine free.
		{"white chocolate no significant dose", 10, 200, "white", SeverityNone},
		// 100g dark = 550mg; 55 mg/kg lands in the moderate band.
		{"dark chocolate moderate band", 10, 100, "dark", SeverityModerate},
		// Unrecognized type falls back to dark as worst plausible case.
		{"unknown type treated as dark", 10, 100, "ruby", SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Toxicity(ToxicityInput{
				WeightKg:       tt.weightKg,
				Substance:      "chocolate",
				AmountIngested: tt.amountG,
				SubstanceType:  tt.chocType,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q (dose %g mg/kg)", got.Severity, tt.wantSeverity, got.DosePerKg)
			}
		})
	}
}

func TestToxicity_Xylitol(t *testing.T) {
	// 5000mg in a 10kg dog = 500 mg/kg, hepatic failure territory.
	got, err := Toxicity(ToxicityInput{WeightKg: 10, Substance: "xylitol", AmountIngested: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Severity != SeveritySevere {
		t.Errorf("Severity = %q, want severe at 500 mg/kg", got.Severity)
	}

	// 500mg in a 10kg dog = 50 mg/kg, below the hypoglycemia threshold.
	got, err = Toxicity(ToxicityInput{WeightKg: 10, Substance: "xylitol", AmountIngested: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Severity != SeverityMild {
		t.Errorf("Severity = %q, want mild at 50 mg/kg", got.Severity)
	}
}

func TestToxicity_IbuprofenFelineAlwaysSevere(t *testing.T) {
	// 10 mg/kg would be sub-threshold in a dog.
	cat, err := Toxicity(ToxicityInput{WeightKg: 4, Substance: "ibuprofen", AmountIngested: 40, Species: SpeciesFeline})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Severity != SeveritySevere {
		t.Errorf("feline severity = %q, want severe at any exposure", cat.Severity)
	}

	dog, err := Toxicity(ToxicityInput{WeightKg: 10, Substance: "ibuprofen", AmountIngested: 100, Species: SpeciesCanine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dog.Severity != SeverityMild {
		t.Errorf("canine severity = %q, want mild at 10 mg/kg", dog.Severity)
	}
}

func TestToxicity_GrapeNoSafeDose(t *testing.T) {
	got, err := Toxicity(ToxicityInput{WeightKg: 25, Substance: "grape", AmountIngested: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Severity != SeveritySevere {
		t.Errorf("Severity = %q, want severe for any grape ingestion", got.Severity)
	}
	if got.ToxicDoseThreshold != 0 {
		t.Errorf("ToxicDoseThreshold = %g, want 0 (none established)", got.ToxicDoseThreshold)
	}
}

func TestToxicity_UnknownSubstance(t *testing.T) {
	got, err := Toxicity(ToxicityInput{WeightKg: 10, Substance: "playdough", AmountIngested: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TreatmentPriority == "" {
		t.Error("unknown substances should still direct the caller to poison control")
	}
}

func TestToxicity_InvalidInput(t *testing.T) {
	if _, err := Toxicity(ToxicityInput{WeightKg: 0, Substance: "chocolate", AmountIngested: 10}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero weight: got %v, want ErrInvalidInput", err)
	}
	if _, err := Toxicity(ToxicityInput{WeightKg: 10, Substance: "chocolate", AmountIngested: -5}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative amount: got %v, want ErrInvalidInput", err)
	}
}
