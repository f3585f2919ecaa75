package knowledge

import (
	"context"
	"net/url"
	"strings"
)

// DrugListItem is one row of the drug index.
type DrugListItem struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"nameEn"`
	NameLocal        string   `json:"nameZh,omitempty"`
	Classification   string   `json:"classification,omitempty"`
	Formulation      string   `json:"formulation,omitempty"`
	SupportedSpecies []string `json:"supportedSpecies,omitempty"`
}

// DrugDetail is the full monograph behind /drugs/{slug}.
type DrugDetail struct {
	ID               string            `json:"id"`
	Slug             string            `json:"slug"`
	Name             string            `json:"nameEn"`
	NameLocal        string            `json:"nameZh,omitempty"`
	TradeNames       []string          `json:"tradeNames,omitempty"`
	Classification   string            `json:"classification,omitempty"`
	Formulation      string            `json:"formulation,omitempty"`
	SupportedSpecies []string          `json:"supportedSpecies,omitempty"`
	Dosages          []DrugDosage      `json:"dosages,omitempty"`
	Interactions     []DrugInteraction `json:"interactions,omitempty"`
}

// DrugDosage is one species-specific dosing line.
type DrugDosage struct {
	Species   string `json:"species"`
	Indication string `json:"indication,omitempty"`
	Dose      string `json:"dose,omitempty"`
	Route     string `json:"route,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// DrugInteraction is one pairwise interaction record.
type DrugInteraction struct {
	DrugA     DrugRef `json:"drugA"`
	DrugB     DrugRef `json:"drugB"`
	Severity  string  `json:"severity"`
	Mechanism string  `json:"mechanism,omitempty"`
	Level     string  `json:"interactionLevel,omitempty"`
}

// DrugRef identifies one side of an interaction pair.
type DrugRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"nameEn"`
}

// SearchDrugs queries the drug index by name or classification. The
// species filter narrows to drugs with dosing data for that species.
func (v *VetPro) SearchDrugs(ctx context.Context, query, species string) ([]DrugListItem, error) {
	var out struct {
		Total int            `json:"total"`
		Drugs []DrugListItem `json:"drugs"`
	}
	err := v.get(ctx, "/drugs", map[string]string{"q": query, "species": species}, &out)
	if err != nil {
		return nil, err
	}
	return out.Drugs, nil
}

// GetDrug fetches the full monograph for one drug slug.
func (v *VetPro) GetDrug(ctx context.Context, slug string) (*DrugDetail, error) {
	var out DrugDetail
	if err := v.get(ctx, "/drugs/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Interactions checks a set of resolved drug ids pairwise. Fewer than
// two ids cannot interact and short-circuit to an empty result.
func (v *VetPro) Interactions(ctx context.Context, drugIDs []string) ([]DrugInteraction, error) {
	if len(drugIDs) < 2 {
		return nil, nil
	}

	var out struct {
		InteractionCount int               `json:"interactionCount"`
		Interactions     []DrugInteraction `json:"interactions"`
	}
	err := v.get(ctx, "/drugs/interactions", map[string]string{"drugs": strings.Join(drugIDs, ",")}, &out)
	if err != nil {
		return nil, err
	}
	return out.Interactions, nil
}
