package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
	"github.com/vetevidence/vetagent/pkg/log"
)

type drugInfoInput struct {
	DrugName          string   `json:"drug_name"`
	Species           string   `json:"species,omitempty"`
	CheckInteractions []string `json:"check_interactions,omitempty"`
}

// DrugInfoResult fuses the encyclopedia monograph with interaction
// checks, falling back to literature search when the monograph is
// missing.
type DrugInfoResult struct {
	Found        bool                        `json:"found"`
	DrugName     string                      `json:"drugName"`
	Detail       *knowledge.DrugDetail       `json:"detail,omitempty"`
	Interactions []knowledge.DrugInteraction `json:"interactions,omitempty"`
	Literature   []core.KnowledgeItem        `json:"literature,omitempty"`
	Sources      []string                    `json:"sources"`
}

// NewDrugInfo wires the drug_info tool. Name matches against the drug
// index resolve to a monograph; concurrent drug names resolve to ids
// for the interaction check; the merger supplies literature when the
// encyclopedia has no monograph for the drug.
func NewDrugInfo(vetpro *knowledge.VetPro, merger *knowledge.Merger) (core.Tool, Handler) {
	def := core.Tool{
		Name:        ToolDrugInfo,
		Description: "Look up a veterinary drug: dosing, indications, contraindications, adverse effects and interactions. Accepts generic or trade names.",
		InputSchema: drugInfoSchema,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in drugInfoInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid drug_info input: %w", err)
		}
		if strings.TrimSpace(in.DrugName) == "" {
			return nil, fmt.Errorf("drug_info requires a drug_name")
		}

		result := DrugInfoResult{DrugName: in.DrugName}

		// name (lowercased) -> drug id, filled as index lookups happen
		// so interaction resolution reuses them.
		knownIDs := map[string]string{}

		listed, err := vetpro.SearchDrugs(ctx, in.DrugName, in.Species)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("drug", in.DrugName).Msg("drug index search failed")
		}
		for _, d := range listed {
			knownIDs[strings.ToLower(d.Name)] = d.ID
			if d.NameLocal != "" {
				knownIDs[strings.ToLower(d.NameLocal)] = d.ID
			}
		}

		if len(listed) > 0 {
			detail, derr := vetpro.GetDrug(ctx, listed[0].Slug)
			if derr != nil {
				log.FromCtx(ctx).Warn().Err(derr).Str("slug", listed[0].Slug).Msg("drug monograph fetch failed")
			} else {
				result.Found = true
				result.Detail = detail
				result.Sources = append(result.Sources, "vetpro")
			}
		}

		if len(in.CheckInteractions) > 0 {
			ids := resolveDrugIDs(ctx, vetpro, result.Detail, knownIDs, in.CheckInteractions)
			if len(ids) >= 2 {
				interactions, ierr := vetpro.Interactions(ctx, ids)
				if ierr != nil {
					log.FromCtx(ctx).Warn().Err(ierr).Msg("interaction check failed")
				} else if len(interactions) > 0 {
					result.Interactions = interactions
					result.Sources = append(result.Sources, "vetpro_interactions")
				}
			}
		}

		if !result.Found {
			items := merger.MergeDrugResults(ctx, vetpro, in.DrugName, in.Species, 5)
			for i := range items {
				items[i].Content = snippet(items[i].Content)
			}
			if len(items) > 0 {
				result.Found = true
				result.Literature = items
				result.Sources = append(result.Sources, "literature")
			}
		}

		if len(result.Sources) == 0 {
			result.Sources = []string{}
		}
		return result, nil
	}

	return def, handler
}

// resolveDrugIDs maps the main drug plus each concurrent drug name to
// drug index ids, deduplicated. Unresolvable names are skipped, not
// fatal.
func resolveDrugIDs(ctx context.Context, vetpro *knowledge.VetPro, detail *knowledge.DrugDetail, knownIDs map[string]string, names []string) []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if detail != nil {
		add(detail.ID)
	}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if id, ok := knownIDs[key]; ok {
			add(id)
			continue
		}
		listed, err := vetpro.SearchDrugs(ctx, name, "")
		if err != nil || len(listed) == 0 {
			continue
		}
		knownIDs[key] = listed[0].ID
		add(listed[0].ID)
	}
	return ids
}
