package knowledge

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vetevidence/vetagent/internal/config"
)

// Embedder turns text into vectors through an OpenAI-compatible
// embeddings endpoint.
type Embedder struct {
	client *openai.Client
	model  string
}

// NewEmbedder returns nil when no API key is configured; callers treat
// a nil embedder as "keyword search only".
func NewEmbedder(cfg *config.LiteratureConfig) *Embedder {
	if !cfg.EmbeddingsEnabled() {
		return nil
	}

	oc := openai.DefaultConfig(cfg.EmbeddingAPIKey)
	if cfg.EmbeddingBaseURL != "" {
		oc.BaseURL = cfg.EmbeddingBaseURL
	}
	return &Embedder{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.EmbeddingModel,
	}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings count mismatch: sent %d, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne is the single-query convenience used by search.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
