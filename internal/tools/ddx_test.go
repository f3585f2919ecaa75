package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
)

func TestDifferentialDiagnosis_ResolvesAndRanks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/symptoms":
			if r.URL.Query().Get("q") == "vomiting" {
				w.Write([]byte(`[{"id": "S012", "enName": "Vomiting"}]`))
				return
			}
			w.Write([]byte(`[]`))
		case "/lab-findings":
			w.Write([]byte(`[{"id": "L003", "enName": "Azotaemia"}]`))
		case "/ddx":
			q := r.URL.Query()
			if q.Get("symptoms") != "S012" || q.Get("labs") != "L003" || q.Get("species") != "cat" {
				t.Errorf("ddx query = %v", q)
			}
			w.Write([]byte(`{"resultCount": 1, "results": [
				{"slug": "chronic-kidney-disease", "nameEn": "Chronic kidney disease", "compositeScore": 7.5}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	_, handler := NewDifferentialDiagnosis(newToolVetPro(srv.URL), nil)
	out, err := handler(context.Background(), json.RawMessage(
		`{"symptoms": ["vomiting", "feather plucking"], "labs": ["azotaemia"], "species": "feline"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	res := out.(DDXResult)
	if res.Source != "vetpro" || len(res.Differentials) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Differentials[0].Slug != "chronic-kidney-disease" {
		t.Errorf("top = %q", res.Differentials[0].Slug)
	}
	// The unresolvable symptom is reported, not fatal.
	if len(res.Notes) != 1 {
		t.Errorf("notes = %v", res.Notes)
	}
	if res.ResolvedSymptoms[1].ID != "" {
		t.Errorf("resolved = %+v", res.ResolvedSymptoms)
	}
}

func TestDifferentialDiagnosis_FallbackWhenUnconfigured(t *testing.T) {
	lit := &stubSource{
		sourceType: core.SourceVector,
		items: []core.KnowledgeItem{
			{Source: core.SourceVector, Title: "Feline azotemia workup", Content: "Review."},
		},
	}

	_, handler := NewDifferentialDiagnosis(nil, knowledge.NewMerger(lit))
	out, err := handler(context.Background(), json.RawMessage(
		`{"symptoms": ["polyuria", "polydipsia"], "labs": ["azotemia"], "species": "cat"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	res := out.(DDXResult)
	if res.Source != "fallback" || len(res.Differentials) == 0 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Supplements) != 1 {
		t.Errorf("supplements = %+v", res.Supplements)
	}
	if len(res.Notes) == 0 {
		t.Error("expected a degradation note")
	}
}

func TestFallbackDDX_RanksBySymptomOverlap(t *testing.T) {
	out := fallbackDDX(
		[]string{"polyuria", "polydipsia", "weight loss", "vomiting"},
		[]string{"azotemia"},
		"cat",
		nil,
	)
	if len(out) == 0 {
		t.Fatal("expected candidates")
	}
	if out[0].Slug != "chronic-kidney-disease" {
		t.Errorf("top differential = %s, want chronic-kidney-disease", out[0].Slug)
	}
	// 4 symptoms + 1 lab at half weight.
	if out[0].CompositeScore != 4.5 {
		t.Errorf("score = %g, want 4.5", out[0].CompositeScore)
	}
	if len(out[0].MatchedLabs) != 1 {
		t.Errorf("matched labs = %v", out[0].MatchedLabs)
	}
}

func TestFallbackDDX_SpeciesFilter(t *testing.T) {
	// GDV is canine-only; a cat presentation must not rank it.
	out := fallbackDDX([]string{"abdominal distension", "retching"}, nil, "cat", nil)
	for _, c := range out {
		if c.Slug == "gastric-dilatation-volvulus" {
			t.Error("GDV ranked for a cat")
		}
	}
}

func TestFallbackDDX_Exclusion(t *testing.T) {
	out := fallbackDDX([]string{"polyuria", "polydipsia"}, nil, "dog", []string{"Diabetes mellitus"})
	for _, c := range out {
		if c.Slug == "diabetes-mellitus" {
			t.Error("excluded condition still ranked")
		}
	}
}

func TestFallbackDDX_NoMatches(t *testing.T) {
	out := fallbackDDX([]string{"feather plucking"}, nil, "dog", nil)
	if len(out) != 0 {
		t.Errorf("expected no candidates, got %d", len(out))
	}
}

func TestNormalizeSpecies(t *testing.T) {
	tests := map[string]string{
		"canine": "dog",
		"Feline": "cat",
		"dog":    "dog",
		"rabbit": "rabbit",
		"":       "",
	}
	for in, want := range tests {
		if got := normalizeSpecies(in); got != want {
			t.Errorf("normalizeSpecies(%q) = %q, want %q", in, got, want)
		}
	}
}
