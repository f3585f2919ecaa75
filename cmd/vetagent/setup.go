package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
	"github.com/vetevidence/vetagent/internal/providers/llm"
	"github.com/vetevidence/vetagent/internal/service/agent"
	"github.com/vetevidence/vetagent/internal/service/billing"
	"github.com/vetevidence/vetagent/internal/storage/sqlite"
	"github.com/vetevidence/vetagent/internal/tools"
	"github.com/vetevidence/vetagent/internal/transport/cli"
	"github.com/vetevidence/vetagent/internal/transport/httpapi"
	"github.com/vetevidence/vetagent/pkg/kv"
	"github.com/vetevidence/vetagent/pkg/log"
	"github.com/vetevidence/vetagent/pkg/srv"
)

// app holds the wired object graph shared by the serve, ask and ingest
// commands.
type app struct {
	appCfg  *config.AppConfig
	anthCfg *config.AnthropicConfig
	litCfg  *config.LiteratureConfig

	db       *sql.DB
	history  *sqlite.History
	usage    *sqlite.UsageRepo
	litRepo  *sqlite.LiteratureRepo
	embedder *knowledge.Embedder
	vetpro   *knowledge.VetPro
	merger   *knowledge.Merger
	agent    *agent.Agent
}

func newApp(ctx context.Context) *app {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	anthCfg := config.NewAnthropicConfig(ctx)
	litCfg := config.NewLiteratureConfig(ctx)

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	litRepo := sqlite.NewLiteratureRepo(db)
	embedder := knowledge.NewEmbedder(litCfg)

	// Knowledge sources in trust order. The encyclopedia needs a
	// subscription; without one the gateway stays nil and its tools
	// degrade to the literature index and fallback tables.
	var vetpro *knowledge.VetPro
	sources := []knowledge.Source{}
	if os.Getenv("VETPRO_API_URL") != "" {
		vetpro = knowledge.NewVetPro(config.NewVetProConfig(ctx))
		sources = append(sources, vetpro)
	} else {
		logger.Warn().Msg("VETPRO_API_URL unset, encyclopedia source disabled")
	}
	sources = append(sources,
		knowledge.NewLiterature(litRepo, embedder),
		knowledge.NewPubMed(config.NewPubMedConfig(ctx)),
	)
	merger := knowledge.NewMerger(sources...)

	registry := tools.NewDefaultRegistry(vetpro, merger)
	model := llm.NewAnthropic(anthCfg.APIKey, anthCfg.Model, anthCfg.MaxTokens)
	history := sqlite.NewHistory(db)

	return &app{
		appCfg:   appCfg,
		anthCfg:  anthCfg,
		litCfg:   litCfg,
		db:       db,
		history:  history,
		usage:    sqlite.NewUsageRepo(db),
		litRepo:  litRepo,
		embedder: embedder,
		vetpro:   vetpro,
		merger:   merger,
		agent:    agent.New(appCfg, model, registry, history, anthCfg.MaxTokens),
	}
}

// NewServices wires the long-running transports for the serve command.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	a := newApp(ctx)
	services := []srv.Service{srv.NewCleanup(a.db.Close)}

	if a.appCfg.EnableHTTP {
		serverCfg := config.NewServerConfig(ctx)
		validator := httpapi.NewStaticValidator(serverCfg.APIKeys)
		limiter := billing.NewLimiter(kv.NewMemStore())
		services = append(services, httpapi.NewServer(serverCfg, a.agent, limiter, a.usage, validator, a.anthCfg.Model))
	}

	if a.appCfg.EnableCLI {
		console, err := cli.NewReadLine(a.agent, a.appCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize console transport")
		}
		services = append(services, console)
	}

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
