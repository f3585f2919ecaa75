package agent

import (
	"errors"
	"fmt"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
)

// ErrValidation marks a request rejected at the boundary, before the
// loop starts. Transports map it to a 400.
var ErrValidation = errors.New("invalid request")

const (
	// Byte cap screens out oversized payloads before tokenizing them.
	maxTurnLength = 32_000
	maxTurnTokens = 8_000
)

func validate(req core.Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrValidation)
	}

	for i, t := range req.Messages {
		if t.Role != core.RoleUser && t.Role != core.RoleAssistant {
			return fmt.Errorf("%w: message %d has unsupported role %q", ErrValidation, i, t.Role)
		}
		if t.Content == "" {
			return fmt.Errorf("%w: message %d has empty content", ErrValidation, i)
		}
		if len(t.Content) > maxTurnLength {
			return fmt.Errorf("%w: message %d exceeds %d bytes", ErrValidation, i, maxTurnLength)
		}
		if n := knowledge.CountTokens(t.Content); n > maxTurnTokens {
			return fmt.Errorf("%w: message %d is %d tokens, limit is %d", ErrValidation, i, n, maxTurnTokens)
		}
	}

	if last := req.Messages[len(req.Messages)-1]; last.Role != core.RoleUser {
		return fmt.Errorf("%w: conversation must end with a user message", ErrValidation)
	}

	switch req.Mode {
	case "", core.ModeChat, core.ModeNoteSummary:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, req.Mode)
	}
	return nil
}
