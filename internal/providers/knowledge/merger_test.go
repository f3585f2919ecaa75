package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/vetevidence/vetagent/internal/core"
)

type fakeSource struct {
	sourceType core.SourceType
	items      []core.KnowledgeItem
	err        error
}

func (f *fakeSource) Type() core.SourceType { return f.sourceType }

func (f *fakeSource) Search(_ context.Context, _ string, _ int) ([]core.KnowledgeItem, error) {
	return f.items, f.err
}

func item(source core.SourceType, title, slug string) core.KnowledgeItem {
	return core.KnowledgeItem{Source: source, Title: title, Slug: slug}
}

func TestMerge_ScoresByWeightAndPosition(t *testing.T) {
	results := map[core.SourceType][]core.KnowledgeItem{
		core.SourceEncyclopedia: {
			item(core.SourceEncyclopedia, "Canine chronic kidney disease overview", "ckd"),
			item(core.SourceEncyclopedia, "Feline hyperthyroidism management", "hyperthyroid"),
		},
		core.SourcePubMed: {
			item(core.SourcePubMed, "Novel biomarkers in canine nephropathy", ""),
		},
	}

	merged := Merge(results, 10)
	if len(merged) != 3 {
		t.Fatalf("got %d items, want 3", len(merged))
	}

	// Encyclopedia rank 0: 1.0 x 1.0
	if merged[0].RelevanceScore != 1.0 {
		t.Errorf("top score = %g, want 1.0", merged[0].RelevanceScore)
	}
	// Encyclopedia rank 1: 1.0 x 0.9
	if merged[1].RelevanceScore != 0.9 {
		t.Errorf("second score = %g, want 0.9", merged[1].RelevanceScore)
	}
	// PubMed rank 0: 0.5 x 1.0
	if merged[2].RelevanceScore != 0.5 {
		t.Errorf("third score = %g, want 0.5", merged[2].RelevanceScore)
	}
}

func TestMerge_PositionDecayFloor(t *testing.T) {
	var items []core.KnowledgeItem
	for i := 0; i < 12; i++ {
		items = append(items, core.KnowledgeItem{
			Source: core.SourceEncyclopedia,
			Title:  "distinct title number " + string(rune('a'+i)),
		})
	}
	merged := Merge(map[core.SourceType][]core.KnowledgeItem{core.SourceEncyclopedia: items}, 20)

	last := merged[len(merged)-1]
	if last.RelevanceScore != 0.3 {
		t.Errorf("deep item score = %g, want floor 0.3", last.RelevanceScore)
	}
}

func TestMerge_SlugDedupFirstSeenWins(t *testing.T) {
	results := map[core.SourceType][]core.KnowledgeItem{
		core.SourceEncyclopedia: {
			item(core.SourceEncyclopedia, "Canine parvovirus enteritis", "parvo"),
		},
		core.SourceVector: {
			item(core.SourceVector, "Totally different title entirely", "parvo"),
		},
	}

	merged := Merge(results, 10)
	if len(merged) != 1 {
		t.Fatalf("got %d items, want 1 after slug dedup", len(merged))
	}
	if merged[0].Source != core.SourceEncyclopedia {
		t.Errorf("survivor source = %s, want encyclopedia", merged[0].Source)
	}
}

func TestMerge_EmptySlugsNeverCollide(t *testing.T) {
	results := map[core.SourceType][]core.KnowledgeItem{
		core.SourcePubMed: {
			item(core.SourcePubMed, "Retrospective study of canine lymphoma outcomes", ""),
			item(core.SourcePubMed, "Feline injection site sarcoma incidence", ""),
		},
	}
	merged := Merge(results, 10)
	if len(merged) != 2 {
		t.Fatalf("empty slugs deduped: got %d items, want 2", len(merged))
	}
}

func TestMerge_NearIdenticalTitlesDedup(t *testing.T) {
	results := map[core.SourceType][]core.KnowledgeItem{
		core.SourceVector: {
			item(core.SourceVector, "Treatment of canine chronic kidney disease", ""),
		},
		core.SourcePubMed: {
			item(core.SourcePubMed, "Treatment of canine chronic kidney disease.", ""),
		},
	}

	merged := Merge(results, 10)
	if len(merged) != 1 {
		t.Fatalf("got %d items, want 1 after title dedup", len(merged))
	}
	// Vector (0.7) outranks PubMed (0.5); the higher score survives.
	if merged[0].RelevanceScore != 0.7 {
		t.Errorf("survivor score = %g, want 0.7", merged[0].RelevanceScore)
	}
}

func TestMerge_Truncation(t *testing.T) {
	var items []core.KnowledgeItem
	titles := []string{
		"Canine diabetes mellitus insulin protocols",
		"Feline asthma bronchodilator therapy",
		"Equine colic surgical indications",
		"Canine osteosarcoma limb amputation",
		"Feline chronic gingivostomatitis extraction",
	}
	for _, title := range titles {
		items = append(items, item(core.SourceEncyclopedia, title, ""))
	}

	merged := Merge(map[core.SourceType][]core.KnowledgeItem{core.SourceEncyclopedia: items}, 3)
	if len(merged) != 3 {
		t.Fatalf("got %d items, want 3 after truncation", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].RelevanceScore > merged[i-1].RelevanceScore {
			t.Errorf("results not sorted at %d: %g > %g", i, merged[i].RelevanceScore, merged[i-1].RelevanceScore)
		}
	}
}

func TestMerger_SourceFailureIsolated(t *testing.T) {
	ok := &fakeSource{
		sourceType: core.SourceEncyclopedia,
		items:      []core.KnowledgeItem{item(core.SourceEncyclopedia, "Canine pancreatitis diagnosis", "panc")},
	}
	broken := &fakeSource{
		sourceType: core.SourcePubMed,
		err:        errors.New("upstream down"),
	}

	m := NewMerger(ok, broken)
	merged := m.Search(context.Background(), "pancreatitis", 10)
	if len(merged) != 1 {
		t.Fatalf("got %d items, want 1 from the healthy source", len(merged))
	}
	if merged[0].Slug != "panc" {
		t.Errorf("unexpected survivor %+v", merged[0])
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		over bool // above the dedup cutoff
	}{
		{"Canine chronic kidney disease", "Canine chronic kidney disease", true},
		{"Canine chronic kidney disease", "canine Chronic Kidney Disease.", true},
		{"Canine chronic kidney disease", "Feline hyperthyroidism treatment", false},
		{"", "Canine chronic kidney disease", false},
	}
	for _, tt := range tests {
		got := titleSimilarity(tt.a, tt.b) > titleSimilarityCutoff
		if got != tt.over {
			t.Errorf("titleSimilarity(%q, %q) over cutoff = %v, want %v", tt.a, tt.b, got, tt.over)
		}
	}
}
