package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/vetevidence/vetagent/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"VETAGENT_RUNTIME_PATH" envDefault:".vetagent"`

	// Transport Flags
	EnableHTTP bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableCLI  bool `env:"ENABLE_CLI" envDefault:"false"`

	// Agent Loop
	MaxRoundsChat    int `env:"AGENT_MAX_ROUNDS" envDefault:"5"`
	TimeBudgetSecs   int `env:"AGENT_TIME_BUDGET_SECS" envDefault:"40"`
	MaxToolResultLen int `env:"AGENT_MAX_TOOL_RESULT_LEN" envDefault:"8000"`

	// Context Management
	ContextWindowSize int `env:"CONTEXT_WINDOW_SIZE" envDefault:"30"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "vetagent.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
