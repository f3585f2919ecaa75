package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/pkg/log"
)

// Trust weight per source. The curated encyclopedia outranks the local
// index, which outranks raw PubMed abstracts.
var sourceWeights = map[core.SourceType]float64{
	core.SourceEncyclopedia: 1.0,
	core.SourceVector:       0.7,
	core.SourcePubMed:       0.5,
}

// mergeOrder fixes which source wins slug and title collisions.
var mergeOrder = []core.SourceType{
	core.SourceEncyclopedia,
	core.SourceVector,
	core.SourcePubMed,
}

const (
	// Items past this rank within their source all share the decay floor.
	positionDecayStep  = 0.1
	positionDecayFloor = 0.3

	// Title pairs with token Jaccard above this are duplicates.
	titleSimilarityCutoff = 0.7
)

// Merger fans a query out to all sources concurrently and fuses the
// results into one ranked list.
type Merger struct {
	sources []Source
}

func NewMerger(sources ...Source) *Merger {
	return &Merger{sources: sources}
}

// Search queries every source in parallel. A failing source is logged
// and contributes nothing; the merge proceeds with whatever arrived.
func (m *Merger) Search(ctx context.Context, query string, maxResults int) []core.KnowledgeItem {
	results := make(map[core.SourceType][]core.KnowledgeItem, len(m.sources))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, src := range m.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			items, err := src.Search(ctx, query, maxResults)
			if err != nil {
				log.FromCtx(ctx).Warn().Err(err).
					Str("source", string(src.Type())).
					Msg("knowledge source failed")
				return
			}
			mu.Lock()
			results[src.Type()] = items
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return Merge(results, maxResults)
}

// MergeDrugResults fuses the encyclopedia drug index (primary) with
// the literature sources (fallback) for one drug name. Both sides run
// concurrently and failures contribute nothing, as in Search.
func (m *Merger) MergeDrugResults(ctx context.Context, drugs *VetPro, drugName, species string, maxResults int) []core.KnowledgeItem {
	if maxResults <= 0 {
		maxResults = 5
	}

	results := make(map[core.SourceType][]core.KnowledgeItem, 2)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		listed, err := drugs.SearchDrugs(ctx, drugName, species)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("drug", drugName).Msg("drug index search failed")
			return
		}
		if len(listed) > maxResults {
			listed = listed[:maxResults]
		}
		items := make([]core.KnowledgeItem, 0, len(listed))
		for _, d := range listed {
			content := d.Classification
			if d.Formulation != "" {
				content += ". " + d.Formulation
			}
			if len(d.SupportedSpecies) > 0 {
				content += ". Species: " + strings.Join(d.SupportedSpecies, ", ")
			}
			items = append(items, core.KnowledgeItem{
				Source:     core.SourceEncyclopedia,
				Title:      d.Name,
				TitleLocal: d.NameLocal,
				Content:    content,
				Slug:       d.Slug,
				Citation: core.KnowledgeCitation{
					Title:      d.Name,
					Source:     "VetPro Drug Database",
					SourceType: core.SourceEncyclopedia,
				},
			})
		}
		mu.Lock()
		results[core.SourceEncyclopedia] = items
		mu.Unlock()
	}()

	for _, src := range m.sources {
		if src.Type() != core.SourceVector {
			continue
		}
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			items, err := src.Search(ctx, drugName+" veterinary pharmacology", 3)
			if err != nil {
				log.FromCtx(ctx).Warn().Err(err).Str("drug", drugName).Msg("drug literature search failed")
				return
			}
			mu.Lock()
			results[core.SourceVector] = items
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return Merge(results, maxResults)
}

// Merge scores, deduplicates and ranks the per-source result lists.
// Score is trust weight times a position decay within the source list;
// the decay never drops below a floor so deep hits from a trusted
// source still beat nothing.
func Merge(results map[core.SourceType][]core.KnowledgeItem, maxResults int) []core.KnowledgeItem {
	var merged []core.KnowledgeItem
	seenSlugs := map[string]bool{}

	for _, source := range mergeOrder {
		weight, ok := sourceWeights[source]
		if !ok {
			continue
		}
		for i, item := range results[source] {
			if item.Slug != "" {
				if seenSlugs[item.Slug] {
					continue
				}
				seenSlugs[item.Slug] = true
			}

			decay := 1 - positionDecayStep*float64(i)
			if decay < positionDecayFloor {
				decay = positionDecayFloor
			}
			item.RelevanceScore = weight * decay
			merged = append(merged, item)
		}
	}

	merged = dedupeByTitle(merged)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	if maxResults > 0 && len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged
}

// dedupeByTitle removes items whose title is near-identical to an
// earlier one. The survivor keeps its place but takes the higher score
// of the pair.
func dedupeByTitle(items []core.KnowledgeItem) []core.KnowledgeItem {
	var out []core.KnowledgeItem
	for _, item := range items {
		dup := -1
		for i, kept := range out {
			if titleSimilarity(kept.Title, item.Title) > titleSimilarityCutoff {
				dup = i
				break
			}
		}
		if dup == -1 {
			out = append(out, item)
			continue
		}
		if item.RelevanceScore > out[dup].RelevanceScore {
			score := item.RelevanceScore
			out[dup] = item
			out[dup].RelevanceScore = score
		}
	}
	return out
}

// titleSimilarity is token Jaccard over lowercased titles.
func titleSimilarity(a, b string) float64 {
	ta := titleTokens(a)
	tb := titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func titleTokens(title string) map[string]bool {
	tokens := map[string]bool{}
	for _, f := range strings.Fields(strings.ToLower(title)) {
		f = strings.Trim(f, ".,;:()[]\"'")
		if f != "" {
			tokens[f] = true
		}
	}
	return tokens
}
