package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/vetevidence/vetagent/pkg/log"
)

// VetProConfig points at the veterinary encyclopedia search API.
type VetProConfig struct {
	BaseURL    string `env:"VETPRO_API_URL,required,notEmpty"`
	APIKey     string `env:"VETPRO_API_KEY"`
	TimeoutSec int    `env:"VETPRO_TIMEOUT_SECS" envDefault:"5"`
}

func NewVetProConfig(ctx context.Context) *VetProConfig {
	c := &VetProConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse VetPro config")
	}
	return c
}
