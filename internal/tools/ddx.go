package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
	"github.com/vetevidence/vetagent/pkg/log"
)

type ddxInput struct {
	Symptoms []string `json:"symptoms"`
	Labs     []string `json:"labs,omitempty"`
	Species  string   `json:"species,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
}

const maxDifferentials = 20

// ResolvedTerm records how one free-text symptom or lab input mapped
// onto the reference index. A nil-equivalent ID means no match.
type ResolvedTerm struct {
	Input string `json:"input"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

// DDXResult is the ranked differential list. Source records whether the
// encyclopedia engine answered or the local fallback table did.
type DDXResult struct {
	Differentials    []knowledge.DDXCandidate `json:"differentials"`
	ResolvedSymptoms []ResolvedTerm           `json:"resolvedSymptoms,omitempty"`
	ResolvedLabs     []ResolvedTerm           `json:"resolvedLabs,omitempty"`
	Species          string                   `json:"species,omitempty"`
	TotalResults     int                      `json:"totalResults"`
	Source           string                   `json:"source"`
	Supplements      []core.KnowledgeItem     `json:"supplements,omitempty"`
	Notes            []string                 `json:"notes,omitempty"`
}

// NewDifferentialDiagnosis wires the differential_diagnosis tool. Free
// text resolves against the encyclopedia's symptom and lab reference
// indexes before the ranking engine runs; on failure a local condition
// table plus a literature search keep the tool useful offline.
func NewDifferentialDiagnosis(vetpro *knowledge.VetPro, merger *knowledge.Merger) (core.Tool, Handler) {
	def := core.Tool{
		Name:        ToolDifferentialDiagnosis,
		Description: "Rank differential diagnoses from presenting signs, lab abnormalities and species.",
		InputSchema: differentialDiagnosisSchema,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in ddxInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid differential_diagnosis input: %w", err)
		}
		if len(in.Symptoms) == 0 {
			return nil, fmt.Errorf("differential_diagnosis requires at least one symptom")
		}

		species := normalizeSpecies(in.Species)
		var notes []string

		resolvedSymptoms := resolveTerms(ctx, vetpro.SearchSymptoms, in.Symptoms)
		resolvedLabs := resolveTerms(ctx, vetpro.SearchLabFindings, in.Labs)

		if unresolved := unresolvedInputs(resolvedSymptoms); len(unresolved) > 0 {
			notes = append(notes, "No reference match for symptoms: "+strings.Join(unresolved, ", "))
		}
		if unresolved := unresolvedInputs(resolvedLabs); len(unresolved) > 0 {
			notes = append(notes, "No reference match for lab findings: "+strings.Join(unresolved, ", "))
		}

		symptomIDs := resolvedIDs(resolvedSymptoms)
		labIDs := resolvedIDs(resolvedLabs)

		if len(symptomIDs) > 0 || len(labIDs) > 0 {
			exclude := resolvedIDs(resolveTerms(ctx, vetpro.SearchSymptoms, in.Exclude))

			candidates, err := vetpro.DDX(ctx, knowledge.DDXQuery{
				SymptomIDs: symptomIDs,
				LabIDs:     labIDs,
				Species:    species,
				Exclude:    exclude,
			})
			if err == nil {
				total := len(candidates)
				if len(candidates) > maxDifferentials {
					candidates = candidates[:maxDifferentials]
				}
				return DDXResult{
					Differentials:    candidates,
					ResolvedSymptoms: resolvedSymptoms,
					ResolvedLabs:     resolvedLabs,
					Species:          species,
					TotalResults:     total,
					Source:           "vetpro",
					Notes:            notes,
				}, nil
			}
			log.FromCtx(ctx).Warn().Err(err).Msg("ddx engine unavailable, using fallback table")
			notes = append(notes, "The diagnosis engine was unavailable; ranked against the built-in condition table.")
		} else {
			notes = append(notes, "No input resolved against the reference indexes; ranked against the built-in condition table.")
		}

		fallback := fallbackDDX(in.Symptoms, in.Labs, species, in.Exclude)

		var supplements []core.KnowledgeItem
		if merger != nil {
			query := strings.Join(in.Symptoms, " ") + " differential diagnosis"
			if species != "" {
				query += " " + species
			}
			supplements = merger.Search(ctx, query, 3)
			for i := range supplements {
				supplements[i].Content = snippet(supplements[i].Content)
			}
		}

		return DDXResult{
			Differentials:    fallback,
			ResolvedSymptoms: resolvedSymptoms,
			ResolvedLabs:     resolvedLabs,
			Species:          species,
			TotalResults:     len(fallback),
			Source:           "fallback",
			Supplements:      supplements,
			Notes:            notes,
		}, nil
	}

	return def, handler
}

// resolveTerms maps each free-text input to the first reference index
// match. Lookup failures leave the term unresolved rather than failing
// the tool.
func resolveTerms(ctx context.Context, search func(context.Context, string) ([]knowledge.RefTerm, error), inputs []string) []ResolvedTerm {
	resolved := make([]ResolvedTerm, 0, len(inputs))
	for _, input := range inputs {
		term := ResolvedTerm{Input: input}
		matches, err := search(ctx, input)
		if err == nil && len(matches) > 0 {
			term.ID = matches[0].ID
			term.Name = matches[0].Name
		}
		resolved = append(resolved, term)
	}
	return resolved
}

func resolvedIDs(terms []ResolvedTerm) []string {
	var ids []string
	for _, t := range terms {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func unresolvedInputs(terms []ResolvedTerm) []string {
	var inputs []string
	for _, t := range terms {
		if t.ID == "" {
			inputs = append(inputs, t.Input)
		}
	}
	return inputs
}

func normalizeSpecies(species string) string {
	switch strings.ToLower(strings.TrimSpace(species)) {
	case "canine", "dog":
		return "dog"
	case "feline", "cat":
		return "cat"
	default:
		return strings.ToLower(strings.TrimSpace(species))
	}
}

// fallbackCondition is one row of the built-in differential table. The
// keyword lists are matched as substrings against the caller's free
// text signs.
type fallbackCondition struct {
	Slug       string
	Name       string
	BodySystem string
	Species    []string
	Symptoms   []string
	Labs       []string
	Urgency    float64
}

var fallbackConditions = []fallbackCondition{
	{
		Slug: "chronic-kidney-disease", Name: "Chronic kidney disease", BodySystem: "urinary",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"polyuria", "polydipsia", "weight loss", "vomiting", "inappetence", "lethargy"},
		Labs:     []string{"azotemia", "azotaemia", "creatinine", "isosthenuria", "sdma"},
		Urgency:  0.5,
	},
	{
		Slug: "acute-kidney-injury", Name: "Acute kidney injury", BodySystem: "urinary",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"vomiting", "anuria", "oliguria", "lethargy", "anorexia"},
		Labs:     []string{"azotemia", "azotaemia", "hyperkalemia", "hyperkalaemia", "creatinine"},
		Urgency:  0.9,
	},
	{
		Slug: "diabetes-mellitus", Name: "Diabetes mellitus", BodySystem: "endocrine",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"polyuria", "polydipsia", "polyphagia", "weight loss"},
		Labs:     []string{"hyperglycemia", "hyperglycaemia", "glucosuria", "fructosamine"},
		Urgency:  0.5,
	},
	{
		Slug: "diabetic-ketoacidosis", Name: "Diabetic ketoacidosis", BodySystem: "endocrine",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"vomiting", "lethargy", "anorexia", "dehydration", "tachypnea"},
		Labs:     []string{"hyperglycemia", "ketonuria", "ketones", "acidosis"},
		Urgency:  0.95,
	},
	{
		Slug: "hyperthyroidism", Name: "Hyperthyroidism", BodySystem: "endocrine",
		Species:  []string{"cat"},
		Symptoms: []string{"weight loss", "polyphagia", "vomiting", "hyperactivity", "tachycardia"},
		Labs:     []string{"t4", "thyroxine", "alt elevation"},
		Urgency:  0.4,
	},
	{
		Slug: "hypoadrenocorticism", Name: "Hypoadrenocorticism (Addison's disease)", BodySystem: "endocrine",
		Species:  []string{"dog"},
		Symptoms: []string{"lethargy", "vomiting", "diarrhea", "collapse", "weakness"},
		Labs:     []string{"hyperkalemia", "hyponatremia", "azotemia", "cortisol"},
		Urgency:  0.8,
	},
	{
		Slug: "pancreatitis", Name: "Pancreatitis", BodySystem: "gastrointestinal",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"vomiting", "abdominal pain", "anorexia", "lethargy", "diarrhea"},
		Labs:     []string{"lipase", "cpl", "fpl", "amylase"},
		Urgency:  0.7,
	},
	{
		Slug: "parvoviral-enteritis", Name: "Parvoviral enteritis", BodySystem: "gastrointestinal",
		Species:  []string{"dog"},
		Symptoms: []string{"vomiting", "diarrhea", "diarrhoea", "bloody diarrhea", "lethargy", "anorexia"},
		Labs:     []string{"leukopenia", "neutropenia"},
		Urgency:  0.9,
	},
	{
		Slug: "gastric-dilatation-volvulus", Name: "Gastric dilatation-volvulus", BodySystem: "gastrointestinal",
		Species:  []string{"dog"},
		Symptoms: []string{"abdominal distension", "retching", "unproductive vomiting", "collapse", "restlessness"},
		Labs:     []string{"lactate"},
		Urgency:  1.0,
	},
	{
		Slug: "foreign-body-obstruction", Name: "Gastrointestinal foreign body", BodySystem: "gastrointestinal",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"vomiting", "anorexia", "abdominal pain", "lethargy"},
		Labs:     []string{"hypochloremia", "alkalosis"},
		Urgency:  0.85,
	},
	{
		Slug: "congestive-heart-failure", Name: "Congestive heart failure", BodySystem: "cardiovascular",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"cough", "dyspnea", "tachypnea", "exercise intolerance", "syncope"},
		Labs:     []string{"ntprobnp", "troponin"},
		Urgency:  0.9,
	},
	{
		Slug: "feline-lower-urinary-tract-disease", Name: "Feline lower urinary tract disease", BodySystem: "urinary",
		Species:  []string{"cat"},
		Symptoms: []string{"stranguria", "pollakiuria", "hematuria", "inappropriate urination", "vocalizing"},
		Labs:     []string{"crystalluria", "hematuria"},
		Urgency:  0.8,
	},
	{
		Slug: "immune-mediated-hemolytic-anemia", Name: "Immune-mediated hemolytic anemia", BodySystem: "hematologic",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"lethargy", "pale mucous membranes", "icterus", "weakness", "collapse"},
		Labs:     []string{"anemia", "anaemia", "spherocytes", "hyperbilirubinemia", "agglutination"},
		Urgency:  0.9,
	},
	{
		Slug: "hepatic-lipidosis", Name: "Hepatic lipidosis", BodySystem: "hepatic",
		Species:  []string{"cat"},
		Symptoms: []string{"anorexia", "weight loss", "icterus", "vomiting", "lethargy"},
		Labs:     []string{"alp", "bilirubin", "alt elevation"},
		Urgency:  0.8,
	},
	{
		Slug: "pyometra", Name: "Pyometra", BodySystem: "reproductive",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"polyuria", "polydipsia", "vaginal discharge", "lethargy", "anorexia", "abdominal distension"},
		Labs:     []string{"leukocytosis", "neutrophilia"},
		Urgency:  0.9,
	},
	{
		Slug: "osteoarthritis", Name: "Osteoarthritis", BodySystem: "musculoskeletal",
		Species:  []string{"dog", "cat"},
		Symptoms: []string{"lameness", "stiffness", "reluctance to jump", "decreased activity"},
		Labs:     []string{},
		Urgency:  0.2,
	},
}

// fallbackDDX scores the built-in table: one point per matched symptom,
// half a point per matched lab, zeroed for excluded or species-mismatched
// conditions. Ties break toward higher urgency.
func fallbackDDX(symptoms, labs []string, species string, exclude []string) []knowledge.DDXCandidate {
	excluded := map[string]bool{}
	for _, e := range exclude {
		excluded[strings.ToLower(strings.TrimSpace(e))] = true
	}

	var out []knowledge.DDXCandidate
	for _, cond := range fallbackConditions {
		if excluded[strings.ToLower(cond.Name)] || excluded[cond.Slug] {
			continue
		}
		if species != "" && !containsString(cond.Species, species) {
			continue
		}

		matchedSymptoms := matchTerms(symptoms, cond.Symptoms)
		if len(matchedSymptoms) == 0 {
			continue
		}
		matchedLabs := matchTerms(labs, cond.Labs)

		score := float64(len(matchedSymptoms)) + 0.5*float64(len(matchedLabs))

		out = append(out, knowledge.DDXCandidate{
			Slug:            cond.Slug,
			Name:            cond.Name,
			BodySystem:      cond.BodySystem,
			CompositeScore:  score,
			UrgencyScore:    cond.Urgency,
			MatchedSymptoms: matchedSymptoms,
			MatchedLabs:     matchedLabs,
			Species:         cond.Species,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompositeScore != out[j].CompositeScore {
			return out[i].CompositeScore > out[j].CompositeScore
		}
		return out[i].UrgencyScore > out[j].UrgencyScore
	})
	return out
}

// matchTerms returns the inputs that match any condition keyword in
// either direction of substring containment.
func matchTerms(inputs, keywords []string) []string {
	var matched []string
	for _, input := range inputs {
		in := strings.ToLower(strings.TrimSpace(input))
		if in == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(in, kw) || strings.Contains(kw, in) {
				matched = append(matched, input)
				break
			}
		}
	}
	return matched
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
