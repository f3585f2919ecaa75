// Package httpapi exposes the agent over HTTP: a blocking JSON endpoint
// and a streaming SSE endpoint, with API-key auth and rate limiting at
// the edge.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/service/agent"
	"github.com/vetevidence/vetagent/internal/service/billing"
	"github.com/vetevidence/vetagent/internal/storage/sqlite"
	"github.com/vetevidence/vetagent/pkg/log"
)

// UsageRecorder persists per-request usage accounting. Matches the
// sqlite usage repository.
type UsageRecorder interface {
	Record(ctx context.Context, rec sqlite.UsageRecord) error
}

type Server struct {
	cfg       *config.ServerConfig
	agent     *agent.Agent
	limiter   *billing.Limiter
	usage     UsageRecorder
	validator Validator
	model     string

	srv *http.Server
}

func NewServer(cfg *config.ServerConfig, ag *agent.Agent, limiter *billing.Limiter, usage UsageRecorder, validator Validator, model string) *Server {
	s := &Server{
		cfg:       cfg,
		agent:     ag,
		limiter:   limiter,
		usage:     usage,
		validator: validator,
		model:     model,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("POST /v1/chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr()).Msg("http api listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": core.AppVersion,
	})
}

// authorize validates the key and consumes a rate-limit slot. A nil
// identity return means the response has already been written.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) *Identity {
	ident, ok := s.validator.Validate(r.Context(), bearerToken(r))
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing API key")
		return nil
	}

	res := s.limiter.Check(ident.UserID, "chat", ident.Tier)
	w.Header().Set("X-RateLimit-Remaining", formatInt(res.Remaining))
	if !res.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))
	}
	if !res.Allowed {
		writeError(w, http.StatusTooManyRequests, res.Reason)
		return nil
	}

	if s.limiter.TokensExhausted(ident.UserID, ident.Tier) {
		writeError(w, http.StatusTooManyRequests, "daily token quota exhausted")
		return nil
	}
	return &ident
}

// account records usage without blocking the response path.
func (s *Server) account(ctx context.Context, userID string, tier billing.Tier, action string, usage core.TokenUsage, toolCalls int, latencyMs int64) {
	cost := billing.CalculateCost(s.model, usage.InputTokens, usage.OutputTokens)
	s.limiter.RecordTokens(userID, tier, usage.InputTokens+usage.OutputTokens)

	if s.usage == nil {
		return
	}
	rec := sqlite.UsageRecord{
		UserID:       userID,
		Action:       action,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		ToolCalls:    toolCalls,
		LatencyMs:    int(latencyMs),
		Model:        s.model,
		CostUSD:      cost,
	}
	logger := log.FromCtx(ctx)
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.usage.Record(bg, rec); err != nil {
			logger.Error().Err(err).Msg("failed to record usage")
		}
	}()
}
