package srv

import "context"

// NewCleanup wraps a teardown function as a Service with a no-op Start,
// so resource closers share the shutdown path with real services.
func NewCleanup(fn func() error) Service {
	return cleanupService{fn: fn}
}

type cleanupService struct {
	fn func() error
}

func (cleanupService) Start(context.Context) error { return nil }

func (c cleanupService) Shutdown(context.Context) error {
	if c.fn == nil {
		return nil
	}
	return c.fn()
}
