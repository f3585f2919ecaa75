package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inbucket/html2text"

	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/pkg/log"
)

// PubMed queries the NCBI E-utilities: esearch for PMIDs, then efetch
// for article metadata and abstracts.
type PubMed struct {
	client *resty.Client
	apiKey string
}

func NewPubMed(cfg *config.PubMedConfig) *PubMed {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PubMed{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetHeader("User-Agent", core.AppUserAgent),
		apiKey: cfg.APIKey,
	}
}

func (p *PubMed) Type() core.SourceType {
	return core.SourcePubMed
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []struct {
		MedlineCitation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Texts []struct {
						Label string `xml:"Label,attr"`
						Text  string `xml:",innerxml"`
					} `xml:"AbstractText"`
				} `xml:"Abstract"`
				Journal struct {
					Title string `xml:"Title"`
					Issue struct {
						PubDate struct {
							Year string `xml:"Year"`
						} `xml:"PubDate"`
					} `xml:"JournalIssue"`
				} `xml:"Journal"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

func (p *PubMed) Search(ctx context.Context, query string, limit int) ([]core.KnowledgeItem, error) {
	ids, err := p.esearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := p.efetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(items)).Str("query", query).Msg("pubmed search")
	return items, nil
}

func (p *PubMed) esearch(ctx context.Context, query string, limit int) ([]string, error) {
	// Scope results to veterinary literature.
	term := fmt.Sprintf("(%s) AND (veterinary OR dog OR cat OR canine OR feline)", query)

	req := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"db":      "pubmed",
			"term":    term,
			"retmode": "json",
			"retmax":  strconv.Itoa(limit),
			"sort":    "relevance",
		})
	if p.apiKey != "" {
		req.SetQueryParam("api_key", p.apiKey)
	}

	var out esearchResponse
	resp, err := req.SetResult(&out).Get("/esearch.fcgi")
	if err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pubmed esearch http %d", resp.StatusCode())
	}
	return out.ESearchResult.IDList, nil
}

func (p *PubMed) efetch(ctx context.Context, ids []string) ([]core.KnowledgeItem, error) {
	req := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"db":      "pubmed",
			"id":      strings.Join(ids, ","),
			"retmode": "xml",
		})
	if p.apiKey != "" {
		req.SetQueryParam("api_key", p.apiKey)
	}

	resp, err := req.Get("/efetch.fcgi")
	if err != nil {
		return nil, fmt.Errorf("pubmed efetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pubmed efetch http %d", resp.StatusCode())
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(resp.Body(), &set); err != nil {
		return nil, fmt.Errorf("pubmed efetch decode: %w", err)
	}

	var items []core.KnowledgeItem
	for _, a := range set.Articles {
		art := a.MedlineCitation.Article

		var parts []string
		for _, t := range art.Abstract.Texts {
			text := cleanAbstract(t.Text)
			if text == "" {
				continue
			}
			if t.Label != "" {
				text = t.Label + ": " + text
			}
			parts = append(parts, text)
		}
		abstract := strings.Join(parts, "\n")
		if abstract == "" {
			continue
		}

		year, _ := strconv.Atoi(art.Journal.Issue.PubDate.Year)
		pmid := a.MedlineCitation.PMID

		items = append(items, core.KnowledgeItem{
			Source:  core.SourcePubMed,
			Title:   art.Title,
			Content: abstract,
			Year:    year,
			Citation: core.KnowledgeCitation{
				Title:      art.Title,
				Source:     "PubMed",
				Year:       year,
				PMID:       pmid,
				Journal:    art.Journal.Title,
				URL:        "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
				SourceType: core.SourcePubMed,
			},
		})
	}
	return items, nil
}

// cleanAbstract strips the inline markup NCBI occasionally embeds in
// AbstractText (italics, sub/sup, stray entities).
func cleanAbstract(raw string) string {
	text, err := html2text.FromString(raw, html2text.Options{TextOnly: true})
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(text)
}
