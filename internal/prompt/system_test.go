package prompt

import (
	"regexp"
	"strings"
	"testing"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/tools"
)

func contextFor(species string, conditions ...string) *core.PatientContext {
	return &core.PatientContext{
		Patient: &core.PatientInfo{
			Name:              "Mochi",
			Species:           species,
			ChronicConditions: conditions,
		},
	}
}

func TestBuild_NoContextIncludesAllSafetyBlocks(t *testing.T) {
	out := Build(nil, core.ModeChat)

	for _, want := range []string{
		"Contraindicated Drugs in Cats",
		"MDR1 Breed Warning",
		"### Renal Patients",
		"## Disclaimer",
		tools.ToolKnowledgeSearch,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q with no patient context", want)
		}
	}
}

// Every tool the instruction tells the model to call must be
// dispatchable, or the model burns rounds on unknown-tool errors.
func TestBuild_ToolRulesNameRegisteredTools(t *testing.T) {
	out := Build(nil, core.ModeChat)

	registered := make(map[string]bool)
	for _, def := range tools.NewDefaultRegistry(nil, nil).Definitions() {
		registered[def.Name] = true
	}

	for _, name := range []string{tools.ToolKnowledgeSearch, tools.ToolDrugInfo} {
		if !strings.Contains(out, name) {
			t.Errorf("tool rules missing registered tool %q", name)
		}
	}

	for _, word := range regexp.MustCompile(`\b[a-z]+(?:_[a-z]+)+\b`).FindAllString(out, -1) {
		if !registered[word] {
			t.Errorf("instruction mentions %q, which the registry does not offer", word)
		}
	}
}

func TestBuild_CanineDropsCatBlockKeepsMDR1(t *testing.T) {
	out := Build(contextFor("canine"), core.ModeChat)

	if strings.Contains(out, "Contraindicated Drugs in Cats") {
		t.Error("cat contraindications should not appear for a known canine patient")
	}
	if !strings.Contains(out, "MDR1 Breed Warning") {
		t.Error("MDR1 warning must appear for canine patients")
	}
}

func TestBuild_FelineDropsMDR1KeepsCatBlock(t *testing.T) {
	out := Build(contextFor("feline"), core.ModeChat)

	if !strings.Contains(out, "Contraindicated Drugs in Cats") {
		t.Error("cat contraindications must appear for feline patients")
	}
	if strings.Contains(out, "MDR1 Breed Warning") {
		t.Error("MDR1 warning should not appear for a known feline patient")
	}
}

func TestBuild_UnknownSpeciesIncludesBothSpeciesBlocks(t *testing.T) {
	out := Build(contextFor("rabbit"), core.ModeChat)

	if !strings.Contains(out, "Contraindicated Drugs in Cats") {
		t.Error("cat block must appear for unknown species")
	}
	if !strings.Contains(out, "MDR1 Breed Warning") {
		t.Error("MDR1 block must appear for unknown species")
	}
}

func TestBuild_CKDBlockConditions(t *testing.T) {
	// Healthy patient with context: no CKD block.
	healthy := Build(contextFor("canine"), core.ModeChat)
	if strings.Contains(healthy, "### Renal Patients") {
		t.Error("CKD block should not appear for a patient without renal disease")
	}

	// Chronic condition mentioning the kidney triggers it.
	renal := Build(contextFor("canine", "Chronic kidney disease stage 2"), core.ModeChat)
	if !strings.Contains(renal, "### Renal Patients") {
		t.Error("CKD block must appear when a renal condition is recorded")
	}

	// Diagnoses count too.
	diag := Build(&core.PatientContext{
		Patient:   &core.PatientInfo{Name: "Taro", Species: "feline"},
		Diagnoses: []core.Diagnosis{{Name: "慢性腎臟病", NameEn: "Chronic kidney disease"}},
	}, core.ModeChat)
	if !strings.Contains(diag, "### Renal Patients") {
		t.Error("CKD block must appear when a renal diagnosis is recorded")
	}
}

func TestBuild_NoteSummaryModeOmitsToolBlock(t *testing.T) {
	out := Build(nil, core.ModeNoteSummary)

	if strings.Contains(out, "## Tool Usage Rules") {
		t.Error("tool usage rules should not appear in note summary mode")
	}
	if !strings.Contains(out, "## Structured Note Mode") {
		t.Error("note summary instructions missing")
	}
	if !strings.Contains(out, "SOAP") {
		t.Error("note summary mode must ask for SOAP structure")
	}
}

func TestBuild_RendersPatientContext(t *testing.T) {
	pc := &core.PatientContext{
		Patient: &core.PatientInfo{
			Name:      "Mochi",
			Species:   "feline",
			WeightKg:  4.2,
			Allergies: []string{"penicillin"},
		},
		Prescriptions: []core.Prescription{
			{DrugName: "Amlodipine", Dosage: 0.625, DosageUnit: "mg", Frequency: "SID", Route: "PO"},
		},
		LabOrders: []core.LabOrder{
			{TestName: "Creatinine", Status: "completed", Result: "2.9 mg/dL"},
		},
	}

	out := Build(pc, core.ModeChat)
	for _, want := range []string{
		"## Current Patient",
		"- Weight: 4.2 kg",
		"penicillin",
		"Amlodipine 0.625 mg SID PO",
		"Creatinine - completed: 2.9 mg/dL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered context missing %q", want)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	pc := contextFor("canine", "CKD")
	a := Build(pc, core.ModeChat)
	b := Build(pc, core.ModeChat)
	if a != b {
		t.Error("system instruction must be deterministic for identical input")
	}
}
