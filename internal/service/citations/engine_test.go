package citations

import (
	"strings"
	"testing"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/tools"
)

func searchRecord(items ...core.KnowledgeItem) core.ToolCallRecord {
	return core.ToolCallRecord{
		Name:   tools.ToolKnowledgeSearch,
		Result: tools.KnowledgeSearchResult{Results: items, TotalResults: len(items)},
	}
}

func item(title, content string) core.KnowledgeItem {
	return core.KnowledgeItem{
		Source:  core.SourceEncyclopedia,
		Title:   title,
		Content: content,
		Citation: core.KnowledgeCitation{
			Title:  title,
			Source: "VetPro Encyclopedia",
			Year:   2021,
		},
		Year: 2021,
	}
}

func TestProcessEmpty(t *testing.T) {
	if got := Process(nil); len(got) != 0 {
		t.Fatalf("expected no citations, got %d", len(got))
	}
	records := []core.ToolCallRecord{
		{Name: tools.ToolClinicalCalculator, Result: map[string]any{"result": 662.0}},
	}
	if got := Process(records); len(got) != 0 {
		t.Fatalf("non-search records must not produce citations, got %d", len(got))
	}
}

func TestProcessRenumbersAfterDedup(t *testing.T) {
	dup := "Chronic kidney disease management in cats requires staged dietary phosphorus restriction."
	records := []core.ToolCallRecord{
		searchRecord(
			item("CKD Overview", dup),
			item("CKD Overview Reprint", "  chronic   kidney disease management in cats requires staged dietary phosphorus restriction.  "),
			item("Feline Hypertension", "A prospective cohort evaluated amlodipine monotherapy in hypertensive cats."),
		),
	}

	got := Process(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
	for i, c := range got {
		if c.ID != i+1 {
			t.Errorf("citation %d: id = %d, want %d", i, c.ID, i+1)
		}
	}
	if got[0].Title != "CKD Overview" {
		t.Errorf("first survivor = %q, want first-seen kept", got[0].Title)
	}
}

func TestDeduplicateLineage(t *testing.T) {
	raw := []core.EnrichedCitation{
		{Citation: core.Citation{ID: 1, Title: "A", Excerpt: "unique first"}},
		{Citation: core.Citation{ID: 2, Title: "B", Excerpt: "shared body text"}},
		{Citation: core.Citation{ID: 3, Title: "C", Excerpt: "Shared  body   text"}},
	}

	unique, duplicates := deduplicate(raw)
	if len(unique) != 2 || len(duplicates) != 1 {
		t.Fatalf("got %d unique, %d duplicates", len(unique), len(duplicates))
	}
	// The duplicate points at B's renumbered id, not its raw id.
	if duplicates[0].DuplicateOf != 2 {
		t.Errorf("duplicateOf = %d, want 2", duplicates[0].DuplicateOf)
	}
	if unique[1].ID != 2 {
		t.Errorf("kept citation id = %d, want 2", unique[1].ID)
	}
}

func TestEvidenceGradingPriority(t *testing.T) {
	tests := []struct {
		name    string
		excerpt string
		want    core.EvidenceLevel
	}{
		{"systematic review", "A systematic review of 14 trials on feline CKD diets.", LevelI},
		{"review beats retrospective", "This systematic review pooled retrospective cohort data.", LevelI},
		{"rct", "A randomized controlled trial of meloxicam in dogs.", LevelII},
		{"cohort", "A retrospective cohort of 212 dogs with GDV.", LevelIII},
		{"case report", "Case report: ibuprofen toxicosis in a kitten.", LevelIV},
		{"chinese case report", "犬隻中毒病例報告，描述巧克力攝入後的臨床病程。", LevelIV},
		{"chinese systematic review", "貓慢性腎病飲食介入之系統性回顧。", LevelI},
		{"default", "Dosing guidance from the clinical formulary.", LevelV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := []core.EnrichedCitation{{Citation: core.Citation{Excerpt: tt.excerpt}}}
			grade(cs)
			if cs[0].EvidenceLevel != tt.want {
				t.Errorf("level = %s, want %s", cs[0].EvidenceLevel, tt.want)
			}
		})
	}
}

func TestCrossReferencesDirected(t *testing.T) {
	// A's keywords are a small set mostly contained in B, so A links to
	// B. B carries many extra keywords, so its overlap ratio with A
	// stays under the threshold.
	a := "azotemia proteinuria hypertension"
	b := "azotemia proteinuria hyperphosphatemia anemia inappetence weight loss dehydration hypokalemia acidosis"

	cs := []core.EnrichedCitation{
		{Citation: core.Citation{ID: 1, Excerpt: a}},
		{Citation: core.Citation{ID: 2, Excerpt: b}},
	}
	crossReference(cs)

	if len(cs[0].CrossReferences) != 1 || cs[0].CrossReferences[0] != 2 {
		t.Errorf("citation 1 crossRefs = %v, want [2]", cs[0].CrossReferences)
	}
	if len(cs[1].CrossReferences) != 0 {
		t.Errorf("citation 2 crossRefs = %v, want none", cs[1].CrossReferences)
	}
}

func TestExtractKeywordsCJK(t *testing.T) {
	// CJK sequences longer than two runes survive; punctuation splits.
	kw := extractKeywords("貓咪慢性腎病, chronic kidney disease (CKD)!")
	if !kw["貓咪慢性腎病"] {
		t.Errorf("expected CJK keyword retained, got %v", kw)
	}
	if !kw["chronic"] || !kw["kidney"] || !kw["disease"] {
		t.Errorf("expected english keywords, got %v", kw)
	}
	if !kw["ckd"] {
		t.Errorf("three-letter tokens pass the length filter: %v", kw)
	}
	if kw["的"] {
		t.Errorf("stop word leaked: %v", kw)
	}
}

func TestExcerptTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	records := []core.ToolCallRecord{searchRecord(item("Long", long))}
	got := Process(records)
	if len(got) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(got))
	}
	if n := len([]rune(got[0].Excerpt)); n != excerptLength {
		t.Errorf("excerpt length = %d, want %d", n, excerptLength)
	}
}

func TestFormatForDisplay(t *testing.T) {
	cs := []core.EnrichedCitation{
		{
			Citation:        core.Citation{ID: 1, Title: "CKD Staging", Source: "PubMed", Year: 2020},
			EvidenceLevel:   LevelI,
			CrossReferences: []int{2},
		},
		{
			Citation:      core.Citation{ID: 2, Title: "Renal Diets", Source: "VetPro Encyclopedia"},
			EvidenceLevel: LevelV,
		},
	}

	out := FormatForDisplay(cs)
	if !strings.Contains(out, "## Sources") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "[1] CKD Staging (2020) - PubMed [Evidence Level I] - related: [2]") {
		t.Errorf("unexpected first line:\n%s", out)
	}
	if !strings.Contains(out, "[2] Renal Diets - VetPro Encyclopedia [Evidence Level V]") {
		t.Errorf("unexpected second line:\n%s", out)
	}
	if FormatForDisplay(nil) != "" {
		t.Error("empty list should render nothing")
	}
}
