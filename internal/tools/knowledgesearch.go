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

const (
	defaultSearchResults = 8
	snippetLength        = 300
)

type knowledgeSearchInput struct {
	Query                  string `json:"query"`
	Species                string `json:"species,omitempty"`
	IncludeDetail          bool   `json:"include_detail,omitempty"`
	IncludeSecondarySource *bool  `json:"include_secondary_source,omitempty"`
	MaxResults             int    `json:"max_results,omitempty"`
}

// KnowledgeSearchResult is the payload fed back to the model and later
// read by the citation engine.
type KnowledgeSearchResult struct {
	Query         string                   `json:"query"`
	TotalResults  int                      `json:"totalResults"`
	Results       []core.KnowledgeItem     `json:"results"`
	DiseaseDetail *knowledge.DiseaseDetail `json:"diseaseDetail,omitempty"`
	Sources       []string                 `json:"sources"`
}

// NewKnowledgeSearch wires the fusion merger behind the
// knowledge_search tool. With include_detail the first encyclopedia
// hit is expanded into its full disease monograph.
func NewKnowledgeSearch(vetpro *knowledge.VetPro, merger *knowledge.Merger) (core.Tool, Handler) {
	def := core.Tool{
		Name:        ToolKnowledgeSearch,
		Description: "Search veterinary literature and the clinical encyclopedia. Returns ranked, cited evidence snippets. Query must be in English.",
		InputSchema: knowledgeSearchSchema,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in knowledgeSearchInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid knowledge_search input: %w", err)
		}
		if strings.TrimSpace(in.Query) == "" {
			return nil, fmt.Errorf("knowledge_search requires a non-empty query")
		}

		query := in.Query
		if in.Species != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(in.Species)) {
			query = in.Species + " " + query
		}

		maxResults := in.MaxResults
		if maxResults <= 0 {
			maxResults = defaultSearchResults
		}

		items := merger.Search(ctx, query, maxResults)

		includeSecondary := in.IncludeSecondarySource == nil || *in.IncludeSecondarySource
		if !includeSecondary {
			filtered := items[:0]
			for _, item := range items {
				if item.Source != core.SourcePubMed {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}

		var detail *knowledge.DiseaseDetail
		if in.IncludeDetail {
			for _, item := range items {
				if item.Source != core.SourceEncyclopedia || item.Slug == "" {
					continue
				}
				d, derr := vetpro.GetDisease(ctx, item.Slug)
				if derr != nil {
					log.FromCtx(ctx).Warn().Err(derr).Str("slug", item.Slug).Msg("disease detail fetch failed")
				} else {
					detail = d
				}
				break
			}
		} else {
			for i := range items {
				items[i].Content = snippet(items[i].Content)
			}
		}

		seen := map[core.SourceType]bool{}
		sources := []string{}
		for _, item := range items {
			if !seen[item.Source] {
				seen[item.Source] = true
				sources = append(sources, string(item.Source))
			}
		}

		return KnowledgeSearchResult{
			Query:         query,
			TotalResults:  len(items),
			Results:       items,
			DiseaseDetail: detail,
			Sources:       sources,
		}, nil
	}

	return def, handler
}

// snippet truncates on a rune boundary so multi-byte text stays valid.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "..."
}
