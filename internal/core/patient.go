package core

// PatientContext is the clinical context an EMR supplies alongside a
// query. All fields are optional; species and chronic conditions drive
// the conditional safety blocks in the system instruction.
type PatientContext struct {
	Patient       *PatientInfo    `json:"patient,omitempty"`
	MedicalRecord *MedicalRecord  `json:"medical_record,omitempty"`
	Diagnoses     []Diagnosis     `json:"diagnoses,omitempty"`
	Prescriptions []Prescription  `json:"prescriptions,omitempty"`
	LabOrders     []LabOrder      `json:"lab_orders,omitempty"`
	Hospital      *Hospitalization `json:"hospitalization,omitempty"`
}

type PatientInfo struct {
	Name              string   `json:"name"`
	Species           string   `json:"species"`
	Breed             string   `json:"breed,omitempty"`
	WeightKg          float64  `json:"weight_kg,omitempty"`
	Sex               string   `json:"sex,omitempty"`
	AgeDescription    string   `json:"age_description,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	ChronicConditions []string `json:"chronic_conditions,omitempty"`
	IsNeutered        bool     `json:"is_neutered,omitempty"`
}

type MedicalRecord struct {
	VisitDate      string `json:"visit_date"`
	VisitType      string `json:"visit_type"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	Status         string `json:"status"`
}

type Diagnosis struct {
	Name   string `json:"diagnosis_name"`
	NameEn string `json:"diagnosis_name_en,omitempty"`
	Type   string `json:"diagnosis_type,omitempty"`
}

type Prescription struct {
	DrugName     string  `json:"drug_name"`
	DrugNameEn   string  `json:"drug_name_en,omitempty"`
	Dosage       float64 `json:"dosage,omitempty"`
	DosageUnit   string  `json:"dosage_unit,omitempty"`
	Frequency    string  `json:"frequency,omitempty"`
	Route        string  `json:"route,omitempty"`
	DurationDays int     `json:"duration_days,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
}

type LabOrder struct {
	TestName     string `json:"test_name"`
	TestCategory string `json:"test_category,omitempty"`
	Result       string `json:"result,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

type Hospitalization struct {
	AdmissionDate    string `json:"admission_date"`
	DaysHospitalized int    `json:"days_hospitalized"`
	Diagnosis        string `json:"diagnosis,omitempty"`
	CPRStatus        string `json:"cpr_status"`
	Status           string `json:"status"`
}
