package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/pkg/breaker"
	"github.com/vetevidence/vetagent/pkg/log"
	"github.com/vetevidence/vetagent/pkg/retry"
)

// ErrNotConfigured is returned by a nil gateway so callers degrade the
// same way they do on an upstream outage.
var ErrNotConfigured = errors.New("vetpro gateway not configured")

// Cross-search caps: the encyclopedia index returns diseases and drugs
// separately, diseases carry more weight in fusion.
const (
	searchDiseaseCap = 5
	searchDrugCap    = 3
)

// VetPro queries the curated veterinary encyclopedia API. The upstream
// is a shared dependency, so calls run behind a process-wide circuit
// breaker with a short timeout and a single retry. Methods tolerate a
// nil receiver for deployments without an encyclopedia subscription.
type VetPro struct {
	client  *resty.Client
	breaker *breaker.Breaker
	retrier *retry.Retrier
}

// DiseaseListItem is one row of the cross-search disease index.
type DiseaseListItem struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"nameEn"`
	NameLocal   string `json:"nameZh,omitempty"`
	BodySystem  string `json:"bodySystem,omitempty"`
	Description string `json:"description,omitempty"`
}

// DiseaseDetail is the full monograph behind /diseases/{slug}. The
// structured sections keep their upstream shape and pass through to
// the model untouched.
type DiseaseDetail struct {
	ID                 string          `json:"id"`
	Slug               string          `json:"slug"`
	Name               string          `json:"nameEn"`
	NameLocal          string          `json:"nameZh,omitempty"`
	BodySystem         string          `json:"bodySystem,omitempty"`
	Description        string          `json:"description,omitempty"`
	Etiology           json.RawMessage `json:"etiology,omitempty"`
	ClinicalSigns      json.RawMessage `json:"clinicalSigns,omitempty"`
	Diagnosis          json.RawMessage `json:"diagnosis,omitempty"`
	Treatment          json.RawMessage `json:"treatment,omitempty"`
	Prognosis          json.RawMessage `json:"prognosis,omitempty"`
	StagingSystem      json.RawMessage `json:"stagingSystem,omitempty"`
	EmergencyNotes     string          `json:"emergencyNotes,omitempty"`
	ClinicalPearls     []string        `json:"clinicalPearls,omitempty"`
	Aliases            []string        `json:"aliases,omitempty"`
	Species            []string        `json:"species,omitempty"`
}

type searchResponse struct {
	Diseases []DiseaseListItem `json:"diseases"`
	Drugs    []DrugListItem    `json:"drugs"`
}

func NewVetPro(cfg *config.VetProConfig) *VetPro {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", core.AppUserAgent)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &VetPro{
		client:  client,
		breaker: breaker.New(breaker.NewDefaultConfig()),
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    1,
			BackoffFactor: 2,
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      time.Second,
			Jitter:        50 * time.Millisecond,
		}),
	}
}

func (v *VetPro) Type() core.SourceType {
	return core.SourceEncyclopedia
}

// get runs one GET behind the breaker. 4xx responses are permanent and
// never retried; transport errors and 5xx count toward opening the
// breaker. Empty param values are omitted from the query string.
func (v *VetPro) get(ctx context.Context, path string, params map[string]string, out any) error {
	if v == nil {
		return ErrNotConfigured
	}
	if err := v.breaker.Allow(); err != nil {
		return fmt.Errorf("vetpro: %w", err)
	}

	err := v.retrier.Do(ctx, func() error {
		req := v.client.R().SetContext(ctx).SetResult(out)
		for k, val := range params {
			if val != "" {
				req.SetQueryParam(k, val)
			}
		}
		resp, err := req.Get(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			herr := fmt.Errorf("vetpro %s http %d", path, resp.StatusCode())
			if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
				return retry.Permanent(herr)
			}
			return herr
		}
		return nil
	})
	if err != nil {
		v.breaker.Failure()
		return err
	}
	v.breaker.Success()
	return nil
}

// Search cross-searches the disease and drug indexes and flattens both
// into knowledge items, diseases first.
func (v *VetPro) Search(ctx context.Context, query string, limit int) ([]core.KnowledgeItem, error) {
	var out searchResponse
	if err := v.get(ctx, "/search", map[string]string{"q": query}, &out); err != nil {
		return nil, err
	}

	diseases := out.Diseases
	if len(diseases) > searchDiseaseCap {
		diseases = diseases[:searchDiseaseCap]
	}
	drugs := out.Drugs
	if len(drugs) > searchDrugCap {
		drugs = drugs[:searchDrugCap]
	}

	items := make([]core.KnowledgeItem, 0, len(diseases)+len(drugs))
	for _, d := range diseases {
		items = append(items, core.KnowledgeItem{
			Source:     core.SourceEncyclopedia,
			Title:      d.Name,
			TitleLocal: d.NameLocal,
			Content:    d.Description,
			Slug:       d.Slug,
			Citation: core.KnowledgeCitation{
				Title:      d.Name,
				Source:     "VetPro Encyclopedia",
				SourceType: core.SourceEncyclopedia,
			},
		})
	}
	for _, d := range drugs {
		content := d.Classification
		if d.Formulation != "" {
			content += ". " + d.Formulation
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

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	log.FromCtx(ctx).Debug().Int("count", len(items)).Str("query", query).Msg("vetpro search")
	return items, nil
}

// GetDisease fetches the full monograph for one disease slug.
func (v *VetPro) GetDisease(ctx context.Context, slug string) (*DiseaseDetail, error) {
	var out DiseaseDetail
	if err := v.get(ctx, "/diseases/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
