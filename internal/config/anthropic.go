package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/vetevidence/vetagent/pkg/log"
)

type AnthropicConfig struct {
	APIKey    string `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	Model     string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens int    `env:"ANTHROPIC_MAX_TOKENS" envDefault:"4096"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}
