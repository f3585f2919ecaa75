package prompt

import (
	"fmt"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
)

// renderPatientContext turns the structured EMR context into a readable
// block. Absent sections render nothing; the output is deterministic
// for a given context.
func renderPatientContext(pc *core.PatientContext) string {
	if pc == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Current Patient\n")

	if p := pc.Patient; p != nil {
		sb.WriteString(fmt.Sprintf("- Name: %s\n", p.Name))
		if p.Species != "" {
			sb.WriteString(fmt.Sprintf("- Species: %s\n", p.Species))
		}
		if p.Breed != "" {
			sb.WriteString(fmt.Sprintf("- Breed: %s\n", p.Breed))
		}
		if p.WeightKg > 0 {
			sb.WriteString(fmt.Sprintf("- Weight: %g kg\n", p.WeightKg))
		}
		if p.Sex != "" {
			sex := p.Sex
			if p.IsNeutered {
				sex += ", neutered"
			}
			sb.WriteString(fmt.Sprintf("- Sex: %s\n", sex))
		}
		if p.AgeDescription != "" {
			sb.WriteString(fmt.Sprintf("- Age: %s\n", p.AgeDescription))
		}
		if len(p.Allergies) > 0 {
			sb.WriteString(fmt.Sprintf("- Allergies: %s\n", strings.Join(p.Allergies, ", ")))
		}
		if len(p.ChronicConditions) > 0 {
			sb.WriteString(fmt.Sprintf("- Chronic conditions: %s\n", strings.Join(p.ChronicConditions, ", ")))
		}
	}

	if r := pc.MedicalRecord; r != nil {
		sb.WriteString(fmt.Sprintf("\n## Visit\n- Date: %s (%s, %s)\n", r.VisitDate, r.VisitType, r.Status))
		if r.ChiefComplaint != "" {
			sb.WriteString(fmt.Sprintf("- Chief complaint: %s\n", r.ChiefComplaint))
		}
	}

	if len(pc.Diagnoses) > 0 {
		sb.WriteString("\n## Diagnoses\n")
		for _, d := range pc.Diagnoses {
			line := d.Name
			if d.NameEn != "" && d.NameEn != d.Name {
				line += " (" + d.NameEn + ")"
			}
			if d.Type != "" {
				line += " [" + d.Type + "]"
			}
			sb.WriteString("- " + line + "\n")
		}
	}

	if len(pc.Prescriptions) > 0 {
		sb.WriteString("\n## Active Prescriptions\n")
		for _, rx := range pc.Prescriptions {
			line := rx.DrugName
			if rx.DrugNameEn != "" && rx.DrugNameEn != rx.DrugName {
				line += " (" + rx.DrugNameEn + ")"
			}
			if rx.Dosage > 0 {
				line += fmt.Sprintf(" %g %s", rx.Dosage, rx.DosageUnit)
			}
			if rx.Frequency != "" {
				line += " " + rx.Frequency
			}
			if rx.Route != "" {
				line += " " + rx.Route
			}
			if rx.DurationDays > 0 {
				line += fmt.Sprintf(" for %d days", rx.DurationDays)
			}
			sb.WriteString("- " + line + "\n")
			if rx.Instructions != "" {
				sb.WriteString("  Instructions: " + rx.Instructions + "\n")
			}
		}
	}

	if len(pc.LabOrders) > 0 {
		sb.WriteString("\n## Lab Orders\n")
		for _, lab := range pc.LabOrders {
			line := lab.TestName
			if lab.TestCategory != "" {
				line += " (" + lab.TestCategory + ")"
			}
			line += " - " + lab.Status
			if lab.Result != "" {
				line += ": " + lab.Result
			}
			sb.WriteString("- " + line + "\n")
			if lab.Notes != "" {
				sb.WriteString("  Notes: " + lab.Notes + "\n")
			}
		}
	}

	if h := pc.Hospital; h != nil {
		sb.WriteString("\n## Hospitalization\n")
		sb.WriteString(fmt.Sprintf("- Admitted %s (%d days, %s)\n", h.AdmissionDate, h.DaysHospitalized, h.Status))
		if h.Diagnosis != "" {
			sb.WriteString("- Diagnosis: " + h.Diagnosis + "\n")
		}
		if h.CPRStatus != "" {
			sb.WriteString("- CPR status: " + h.CPRStatus + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// patientSpecies extracts a normalized species, empty when unknown.
func patientSpecies(pc *core.PatientContext) string {
	if pc == nil || pc.Patient == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(pc.Patient.Species))
}

// hasRenalCondition reports whether any chronic condition or diagnosis
// mentions kidney disease.
func hasRenalCondition(pc *core.PatientContext) bool {
	if pc == nil {
		return false
	}
	matches := func(s string) bool {
		s = strings.ToLower(s)
		return strings.Contains(s, "kidney") ||
			strings.Contains(s, "renal") ||
			strings.Contains(s, "ckd") ||
			strings.Contains(s, "腎")
	}
	if pc.Patient != nil {
		for _, c := range pc.Patient.ChronicConditions {
			if matches(c) {
				return true
			}
		}
	}
	for _, d := range pc.Diagnoses {
		if matches(d.Name) || matches(d.NameEn) {
			return true
		}
	}
	return false
}
