package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/prompt"
	"github.com/vetevidence/vetagent/pkg/log"
)

// RunStreaming executes the same loop as Run but emits events as the
// model produces them: text_delta per fragment, tool_call per dispatch,
// then citations, tool_calls and done on completion, or a single error
// event on a fatal failure. The channel is closed when the run ends.
func (a *Agent) RunStreaming(ctx context.Context, req core.Request) <-chan core.StreamEvent {
	events := make(chan core.StreamEvent, 16)

	go func() {
		defer close(events)

		emit := func(ev core.StreamEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		if err := a.streamLoop(ctx, req, emit); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("streaming run failed")
			emit(core.StreamEvent{Type: core.EventError, Data: err.Error()})
		}
	}()

	return events
}

// streamLoop mirrors run but uses ChatStream so text reaches the caller
// incrementally.
func (a *Agent) streamLoop(ctx context.Context, req core.Request, emit func(core.StreamEvent)) error {
	logger := log.FromCtx(ctx)

	if err := validate(req); err != nil {
		return err
	}

	mode := req.Mode
	if mode == "" {
		mode = core.ModeChat
	}

	start := a.now()
	deadline := start.Add(time.Duration(a.cfg.TimeBudgetSecs) * time.Second)

	history, err := a.loadHistory(ctx, req)
	if err != nil {
		return err
	}

	messages := make([]core.Message, 0, len(history)+len(req.Messages))
	for _, t := range append(history, req.Messages...) {
		messages = append(messages, core.TextMessage(t.Role, t.Content))
	}

	system := prompt.Build(req.Context, mode)
	rounds := a.maxRounds(mode)

	var records []core.ToolCallRecord
	var usage core.TokenUsage

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		offerTools := mode != core.ModeNoteSummary &&
			round < rounds-1 &&
			a.now().Before(deadline)

		chatReq := core.ChatRequest{
			System:    system,
			Messages:  messages,
			MaxTokens: a.maxTokens,
		}
		if offerTools {
			chatReq.Tools = a.registry.Definitions()
			if round == 0 {
				chatReq.ToolChoice = "any"
			}
		}

		resp, err := a.model.ChatStream(ctx, chatReq, func(text string) {
			emit(core.StreamEvent{Type: core.EventTextDelta, Data: text})
		})
		if err != nil {
			return fmt.Errorf("model call failed: %w", err)
		}
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		turn := core.Message{Role: core.RoleAssistant, Content: resp.Content}

		if resp.StopReason != core.StopToolUse {
			_, err := a.finish(ctx, req, turn.Text(), records, usage, start, emit)
			return err
		}

		uses := turn.ToolUses()
		if len(uses) == 0 {
			logger.Warn().Msg("tool_use stop without tool_use blocks")
			_, err := a.finish(ctx, req, turn.Text(), records, usage, start, emit)
			return err
		}

		for _, u := range uses {
			emit(core.StreamEvent{Type: core.EventToolCall, Data: map[string]any{
				"name":  u.Name,
				"input": json.RawMessage(u.Input),
			}})
		}

		results, roundRecords := a.executeRound(ctx, uses)
		records = append(records, roundRecords...)

		messages = append(messages,
			turn,
			core.Message{Role: core.RoleUser, Content: results},
		)
	}

	logger.Warn().Int("rounds", rounds).Msg("round budget exhausted")
	emit(core.StreamEvent{Type: core.EventTextDelta, Data: roundsExhaustedContent})
	_, err = a.finish(ctx, req, roundsExhaustedContent, records, usage, start, emit)
	return err
}
