package calc

import (
	"errors"
	"testing"
)

func mgPerMl(v float64) *float64 { return &v }

func TestDrugDose(t *testing.T) {
	tests := []struct {
		name        string
		in          DrugDoseInput
		wantTotal   float64
		wantVolume  float64
		wantDaily   float64
		wantFreq    string
		wantErr     bool
	}{
		{
			name:       "standard oral dose with concentration",
			in:         DrugDoseInput{WeightKg: 10, DoseMgPerKg: 15, ConcentrationMgPerMl: mgPerMl(25), Frequency: "BID"},
			wantTotal:  150,
			wantVolume: 6,
			wantDaily:  300,
			wantFreq:   "BID",
		},
		{
			name:      "no concentration skips volume",
			in:        DrugDoseInput{WeightKg: 4.5, DoseMgPerKg: 2.2, Frequency: "SID"},
			wantTotal: 9.9,
			wantDaily: 9.9,
			wantFreq:  "SID",
		},
		{
			name:      "qXh frequency alias",
			in:        DrugDoseInput{WeightKg: 20, DoseMgPerKg: 5, Frequency: "q8h"},
			wantTotal: 100,
			wantDaily: 300,
			wantFreq:  "Q8H",
		},
		{
			name:      "unknown frequency falls back to BID",
			in:        DrugDoseInput{WeightKg: 10, DoseMgPerKg: 10, Frequency: "PRN"},
			wantTotal: 100,
			wantDaily: 200,
			wantFreq:  "PRN",
		},
		{
			name:      "empty frequency defaults to BID",
			in:        DrugDoseInput{WeightKg: 10, DoseMgPerKg: 10},
			wantTotal: 100,
			wantDaily: 200,
			wantFreq:  "BID",
		},
		{
			name:    "zero weight rejected",
			in:      DrugDoseInput{WeightKg: 0, DoseMgPerKg: 15},
			wantErr: true,
		},
		{
			name:    "negative weight rejected",
			in:      DrugDoseInput{WeightKg: -3, DoseMgPerKg: 15},
			wantErr: true,
		},
		{
			name:    "zero dose rejected",
			in:      DrugDoseInput{WeightKg: 10, DoseMgPerKg: 0},
			wantErr: true,
		},
		{
			name:    "negative concentration rejected",
			in:      DrugDoseInput{WeightKg: 10, DoseMgPerKg: 15, ConcentrationMgPerMl: mgPerMl(-1)},
			wantErr: true,
		},
		{
			name:    "explicit zero concentration rejected",
			in:      DrugDoseInput{WeightKg: 10, DoseMgPerKg: 15, ConcentrationMgPerMl: mgPerMl(0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DrugDose(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TotalDoseMg != tt.wantTotal {
				t.Errorf("TotalDoseMg = %g, want %g", got.TotalDoseMg, tt.wantTotal)
			}
			if got.VolumeMl != tt.wantVolume {
				t.Errorf("VolumeMl = %g, want %g", got.VolumeMl, tt.wantVolume)
			}
			if got.DailyDoseMg != tt.wantDaily {
				t.Errorf("DailyDoseMg = %g, want %g", got.DailyDoseMg, tt.wantDaily)
			}
			if got.Frequency != tt.wantFreq {
				t.Errorf("Frequency = %q, want %q", got.Frequency, tt.wantFreq)
			}
		})
	}
}

func TestDrugDose_WeightNotes(t *testing.T) {
	low, err := DrugDose(DrugDoseInput{WeightKg: 0.5, DoseMgPerKg: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(low.Notes) == 0 {
		t.Error("expected a low-weight note for a 0.5 kg patient")
	}

	giant, err := DrugDose(DrugDoseInput{WeightKg: 90, DoseMgPerKg: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(giant.Notes) == 0 {
		t.Error("expected a giant-breed note for a 90 kg patient")
	}
}
