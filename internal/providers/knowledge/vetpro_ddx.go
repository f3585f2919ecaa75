package knowledge

import (
	"context"
	"strings"
)

// RefTerm is one entry of the symptom or lab-finding reference index,
// used to resolve free-text input to standard ids.
type RefTerm struct {
	ID        string `json:"id"`
	Name      string `json:"enName"`
	NameLocal string `json:"zhName,omitempty"`
	Section   string `json:"section,omitempty"`
}

// DDXCandidate is one ranked differential from the encyclopedia's
// diagnosis engine.
type DDXCandidate struct {
	Slug            string   `json:"slug"`
	Name            string   `json:"nameEn"`
	NameLocal       string   `json:"nameZh,omitempty"`
	BodySystem      string   `json:"bodySystem,omitempty"`
	Description     string   `json:"description,omitempty"`
	CompositeScore  float64  `json:"compositeScore"`
	UrgencyScore    float64  `json:"urgencyScore,omitempty"`
	MatchedSymptoms []string `json:"matchedSymptoms,omitempty"`
	MatchedLabs     []string `json:"matchedLabs,omitempty"`
	Species         []string `json:"species,omitempty"`
}

// DDXQuery is the differential diagnosis request. Symptom, lab and
// exclusion lists carry resolved reference ids, not free text.
type DDXQuery struct {
	SymptomIDs []string
	LabIDs     []string
	Species    string
	Exclude    []string
}

// SearchSymptoms resolves a free-text symptom against the reference
// index.
func (v *VetPro) SearchSymptoms(ctx context.Context, query string) ([]RefTerm, error) {
	var out []RefTerm
	if err := v.get(ctx, "/symptoms", map[string]string{"q": query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchLabFindings resolves a free-text lab abnormality against the
// reference index.
func (v *VetPro) SearchLabFindings(ctx context.Context, query string) ([]RefTerm, error) {
	var out []RefTerm
	if err := v.get(ctx, "/lab-findings", map[string]string{"q": query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DDX ranks differentials for a resolved symptom and lab presentation.
func (v *VetPro) DDX(ctx context.Context, q DDXQuery) ([]DDXCandidate, error) {
	var out struct {
		ResultCount int            `json:"resultCount"`
		Results     []DDXCandidate `json:"results"`
	}
	params := map[string]string{
		"symptoms": strings.Join(q.SymptomIDs, ","),
		"labs":     strings.Join(q.LabIDs, ","),
		"species":  q.Species,
		"exclude":  strings.Join(q.Exclude, ","),
	}
	if err := v.get(ctx, "/ddx", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
