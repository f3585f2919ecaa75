package knowledge

import (
	"context"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/storage/sqlite"
	"github.com/vetevidence/vetagent/pkg/log"
)

// Literature searches the local vector index of ingested articles.
// Without an embedder, or when the embedding API is down, it degrades
// to FTS keyword search instead of returning garbage neighbors.
type Literature struct {
	repo     *sqlite.LiteratureRepo
	embedder *Embedder
}

func NewLiterature(repo *sqlite.LiteratureRepo, embedder *Embedder) *Literature {
	return &Literature{repo: repo, embedder: embedder}
}

func (l *Literature) Type() core.SourceType {
	return core.SourceVector
}

func (l *Literature) Search(ctx context.Context, query string, limit int) ([]core.KnowledgeItem, error) {
	var (
		hits []core.LiteratureHit
		err  error
	)

	if l.embedder != nil {
		vector, embErr := l.embedder.EmbedOne(ctx, query)
		if embErr != nil {
			// A down embedding API degrades to keyword search, the
			// same path an unconfigured embedder takes.
			log.FromCtx(ctx).Warn().Err(embErr).Msg("embedding failed, falling back to keyword search")
			hits, err = l.repo.SearchKeyword(ctx, query, limit)
		} else {
			hits, err = l.repo.SearchVector(ctx, vector, limit)
		}
	} else {
		log.FromCtx(ctx).Debug().Msg("no embedding backend, using keyword search")
		hits, err = l.repo.SearchKeyword(ctx, query, limit)
	}
	if err != nil {
		return nil, err
	}

	items := make([]core.KnowledgeItem, 0, len(hits))
	for _, h := range hits {
		items = append(items, core.KnowledgeItem{
			Source:     core.SourceVector,
			Title:      h.Document.Title,
			TitleLocal: h.Document.TitleLocal,
			Content:    h.Content,
			Slug:       h.Document.Slug,
			Year:       h.Document.Year,
			Similarity: h.Similarity,
			Citation: core.KnowledgeCitation{
				Title:      h.Document.Title,
				Source:     h.Document.Source,
				Year:       h.Document.Year,
				Journal:    h.Document.Journal,
				URL:        h.Document.URL,
				SourceType: core.SourceVector,
			},
		})
	}
	return items, nil
}
