package srv

import (
	"context"

	"github.com/vetevidence/vetagent/pkg/log"
)

// Service is anything with a blocking Start and a graceful Shutdown:
// the HTTP API, the console transport, resource cleanups.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches each service in its own goroutine. A start
// failure is fatal for the whole process.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, s := range services {
		go func(s Service) {
			if err := s.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", s)
			}
		}(s)
	}
}

// ShutdownServices blocks until ctx is cancelled, then shuts every
// service down, logging rather than aborting on individual failures.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)
	for _, s := range services {
		if err := s.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", s)
		}
	}
}
