package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/vetevidence/vetagent/pkg/log"
)

type PubMedConfig struct {
	BaseURL    string `env:"PUBMED_API_URL" envDefault:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	APIKey     string `env:"PUBMED_API_KEY"`
	TimeoutSec int    `env:"PUBMED_TIMEOUT_SECS" envDefault:"5"`
}

func NewPubMedConfig(ctx context.Context) *PubMedConfig {
	c := &PubMedConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse PubMed config")
	}
	return c
}
