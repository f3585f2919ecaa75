package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/vetevidence/vetagent/pkg/log"
)

type ServerConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HTTP_PORT" envDefault:"8080"`

	// Comma-separated list of accepted API keys. Empty disables auth.
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
