package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/vetevidence/vetagent/pkg/log"
)

// LiteratureConfig drives the local vector index over ingested
// veterinary literature.
type LiteratureConfig struct {
	EmbeddingAPIKey  string `env:"OPENAI_API_KEY"`
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDims    int    `env:"EMBEDDING_DIMS" envDefault:"1536"`
	ChunkTokens      int    `env:"LITERATURE_CHUNK_TOKENS" envDefault:"400"`
	ChunkOverlap     int    `env:"LITERATURE_CHUNK_OVERLAP" envDefault:"40"`
}

func NewLiteratureConfig(ctx context.Context) *LiteratureConfig {
	c := &LiteratureConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Literature config")
	}
	return c
}

// EmbeddingsEnabled reports whether semantic search can run. Without a
// key the literature source falls back to keyword search.
func (c LiteratureConfig) EmbeddingsEnabled() bool {
	return c.EmbeddingAPIKey != ""
}
