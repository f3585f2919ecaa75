// Package citations turns raw retrieval hits into deduplicated,
// evidence-graded, cross-referenced citations for display.
package citations

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/tools"
)

const (
	LevelI   core.EvidenceLevel = "I"
	LevelII  core.EvidenceLevel = "II"
	LevelIII core.EvidenceLevel = "III"
	LevelIV  core.EvidenceLevel = "IV"
	LevelV   core.EvidenceLevel = "V"
)

const (
	excerptLength     = 300
	fingerprintLength = 100
	crossRefThreshold = 0.3
)

// Process runs the full pipeline over the request's tool-call records:
// extract literature hits, deduplicate by content fingerprint, grade
// evidence, cross-reference. The returned citations are renumbered
// contiguously from 1; duplicates are excluded.
func Process(records []core.ToolCallRecord) []core.EnrichedCitation {
	raw := extract(records)
	survivors, _ := deduplicate(raw)
	grade(survivors)
	crossReference(survivors)
	return survivors
}

// extract walks the knowledge-search tool records and assigns
// sequential ids in encounter order.
func extract(records []core.ToolCallRecord) []core.EnrichedCitation {
	var out []core.EnrichedCitation
	id := 1

	for _, record := range records {
		if record.Name != tools.ToolKnowledgeSearch {
			continue
		}

		items := knowledgeItems(record.Result)
		for _, item := range items {
			title := item.Title
			if title == "" {
				title = "Unknown"
			}
			source := item.Citation.Source
			if source == "" {
				source = string(item.Source)
			}
			if source == "" {
				source = "Unknown"
			}
			out = append(out, core.EnrichedCitation{
				Citation: core.Citation{
					ID:         id,
					Title:      title,
					Source:     source,
					Year:       item.Year,
					Excerpt:    truncateRunes(item.Content, excerptLength),
					Similarity: item.Similarity,
				},
			})
			id++
		}
	}
	return out
}

// knowledgeItems tolerates both the typed search payload and a bare
// item slice in the record.
func knowledgeItems(result any) []core.KnowledgeItem {
	switch v := result.(type) {
	case tools.KnowledgeSearchResult:
		return v.Results
	case *tools.KnowledgeSearchResult:
		if v != nil {
			return v.Results
		}
		return nil
	case []core.KnowledgeItem:
		return v
	default:
		return nil
	}
}

// deduplicate keeps the first citation per content fingerprint and
// renumbers survivors contiguously from 1. Duplicates are excluded;
// their DuplicateOf records the kept citation's renumbered id so the
// lineage never points at an excluded entry.
func deduplicate(citations []core.EnrichedCitation) (unique, duplicates []core.EnrichedCitation) {
	keptIndex := map[string]int{}

	for _, c := range citations {
		fp := fingerprint(c.Excerpt)
		if idx, seen := keptIndex[fp]; seen {
			c.DuplicateOf = idx + 1
			duplicates = append(duplicates, c)
			continue
		}
		keptIndex[fp] = len(unique)
		unique = append(unique, c)
	}

	for i := range unique {
		unique[i].ID = i + 1
	}
	return unique, duplicates
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// fingerprint normalizes whitespace, lower-cases and keeps the leading
// characters; near-identical excerpts collapse to the same key.
func fingerprint(text string) string {
	normalized := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	return strings.ToLower(truncateRunes(normalized, fingerprintLength))
}

// evidenceFamily pairs a level with the keyword family that signals it.
// Order is strict priority: review terminology can co-occur with weaker
// study terms, so the first match wins.
type evidenceFamily struct {
	level       core.EvidenceLevel
	description string
	keywords    []string
}

var evidenceFamilies = []evidenceFamily{
	{LevelI, "Systematic review / Meta-analysis", []string{"meta-analysis", "systematic review", "cochrane", "系統性回顧"}},
	{LevelII, "Randomized controlled trial (RCT)", []string{"randomized", "rct", "controlled trial", "隨機對照"}},
	{LevelIII, "Non-randomized controlled study", []string{"cohort", "case-control", "prospective", "retrospective", "世代研究"}},
	{LevelIV, "Case series / Expert opinion", []string{"case report", "case series", "病例報告"}},
}

func grade(citations []core.EnrichedCitation) {
	for i := range citations {
		content := strings.ToLower(citations[i].Excerpt)

		citations[i].EvidenceLevel = LevelV
		citations[i].EvidenceDescription = "Textbook / Clinical experience"
		for _, family := range evidenceFamilies {
			if containsAny(content, family.keywords) {
				citations[i].EvidenceLevel = family.level
				citations[i].EvidenceDescription = family.description
				break
			}
		}
	}
}

// crossReference links citation i to every j whose keyword overlap with
// i exceeds the threshold. The ratio is normalized by i's own keyword
// count, so the relation is directed and not necessarily symmetric.
func crossReference(citations []core.EnrichedCitation) {
	keywords := make([]map[string]bool, len(citations))
	for i := range citations {
		keywords[i] = extractKeywords(citations[i].Excerpt)
	}

	for i := range citations {
		if len(keywords[i]) == 0 {
			continue
		}
		var refs []int
		for j := range citations {
			if i == j {
				continue
			}
			overlap := 0
			for w := range keywords[i] {
				if keywords[j][w] {
					overlap++
				}
			}
			if float64(overlap)/float64(len(keywords[i])) > crossRefThreshold {
				refs = append(refs, citations[j].ID)
			}
		}
		citations[i].CrossReferences = refs
	}
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true,
	"has": true, "have": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "should": true,
	"can": true, "could": true, "may": true, "might": true,
	"of": true, "in": true, "to": true, "for": true, "with": true,
	"on": true, "at": true, "by": true, "from": true,
	"and": true, "or": true, "not": true,
	"this": true, "that": true, "these": true, "those": true,
	"的": true, "是": true, "在": true, "了": true, "和": true,
	"與": true, "為": true, "有": true, "不": true, "可": true,
}

// nonWordRe keeps word characters and CJK ideographs; everything else
// becomes a separator.
var nonWordRe = regexp.MustCompile(`[^\w\x{4e00}-\x{9fff}]+`)

func extractKeywords(text string) map[string]bool {
	words := nonWordRe.Split(strings.ToLower(text), -1)
	out := map[string]bool{}
	for _, w := range words {
		if len([]rune(w)) > 2 && !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FormatForDisplay renders the citation list appended to an answer.
func FormatForDisplay(citations []core.EnrichedCitation) string {
	if len(citations) == 0 {
		return ""
	}

	lines := []string{"## Sources\n"}
	for _, c := range citations {
		line := fmt.Sprintf("[%d] %s", c.ID, c.Title)
		if c.Year > 0 {
			line += fmt.Sprintf(" (%d)", c.Year)
		}
		line += " - " + c.Source
		if c.EvidenceLevel != "" {
			line += fmt.Sprintf(" [Evidence Level %s]", c.EvidenceLevel)
		}
		if len(c.CrossReferences) > 0 {
			refs := make([]string, len(c.CrossReferences))
			for i, r := range c.CrossReferences {
				refs[i] = fmt.Sprintf("%d", r)
			}
			line += fmt.Sprintf(" - related: [%s]", strings.Join(refs, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
