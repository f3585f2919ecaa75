// Package agent drives the model round loop: build the system
// instruction, call the model, execute requested tools, feed results
// back, and stop on end_turn or when the round budget runs out.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/prompt"
	"github.com/vetevidence/vetagent/internal/service/citations"
	"github.com/vetevidence/vetagent/internal/tools"
	"github.com/vetevidence/vetagent/pkg/log"
)

// roundsExhaustedContent is returned when the round cap is hit before
// the model produces a final answer. A terminal state, not an error.
const roundsExhaustedContent = "抱歉，處理過程中工具呼叫次數超過上限。請嘗試簡化問題。"

// HistoryRepository persists conversation turns. Optional; a nil
// repository makes the agent stateless across requests.
type HistoryRepository interface {
	EnsureConversation(ctx context.Context, conversationID, userID string) error
	AddTurn(ctx context.Context, conversationID string, turn core.Turn) error
	GetTurns(ctx context.Context, conversationID string, limit int) ([]core.Turn, error)
}

type Agent struct {
	cfg       *config.AppConfig
	model     core.ModelClient
	registry  *tools.Registry
	history   HistoryRepository
	maxTokens int
	now       func() time.Time
}

func New(cfg *config.AppConfig, model core.ModelClient, registry *tools.Registry, history HistoryRepository, maxTokens int) *Agent {
	return &Agent{
		cfg:       cfg,
		model:     model,
		registry:  registry,
		history:   history,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// Run executes the agent loop to completion and returns the terminal
// response. Model client failures are fatal; tool failures are fed back
// to the model as error payloads.
func (a *Agent) Run(ctx context.Context, req core.Request) (*core.Response, error) {
	return a.run(ctx, req)
}

// round policy per mode: ModeNoteSummary is a single round without
// tools, ModeChat allows up to MaxRoundsChat model calls.
func (a *Agent) maxRounds(mode core.Mode) int {
	if mode == core.ModeNoteSummary {
		return 1
	}
	return a.cfg.MaxRoundsChat
}

func (a *Agent) run(ctx context.Context, req core.Request) (*core.Response, error) {
	logger := log.FromCtx(ctx)

	if err := validate(req); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = core.ModeChat
	}

	start := a.now()
	deadline := start.Add(time.Duration(a.cfg.TimeBudgetSecs) * time.Second)

	history, err := a.loadHistory(ctx, req)
	if err != nil {
		return nil, err
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
			return nil, err
		}

		// The final round never offers tools, and neither does any
		// round once the wall-clock budget is spent: the model has to
		// answer with what it has.
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
				// Force retrieval on the opening round so the model
				// does not answer clinical questions from memory.
				chatReq.ToolChoice = "any"
			}
		}

		resp, err := a.model.Chat(ctx, chatReq)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		turn := core.Message{Role: core.RoleAssistant, Content: resp.Content}

		if resp.StopReason != core.StopToolUse {
			return a.finish(ctx, req, turn.Text(), records, usage, start, nil)
		}

		uses := turn.ToolUses()
		if len(uses) == 0 {
			logger.Warn().Msg("tool_use stop without tool_use blocks")
			return a.finish(ctx, req, turn.Text(), records, usage, start, nil)
		}

		results, roundRecords := a.executeRound(ctx, uses)
		records = append(records, roundRecords...)

		messages = append(messages,
			turn,
			core.Message{Role: core.RoleUser, Content: results},
		)
	}

	logger.Warn().Int("rounds", rounds).Msg("round budget exhausted")
	return a.finish(ctx, req, roundsExhaustedContent, records, usage, start, nil)
}

// executeRound dispatches every tool_use block of one model turn
// concurrently and waits for all of them. A failed call becomes a
// structured error result; the round never aborts.
func (a *Agent) executeRound(ctx context.Context, uses []core.ContentBlock) ([]core.ContentBlock, []core.ToolCallRecord) {
	logger := log.FromCtx(ctx)

	results := make([]core.ContentBlock, len(uses))
	records := make([]core.ToolCallRecord, len(uses))

	var wg sync.WaitGroup
	for i, use := range uses {
		wg.Add(1)
		go func(i int, use core.ContentBlock) {
			defer wg.Done()

			logger.Info().Str("tool", use.Name).Msg("executing tool")
			result, err := a.registry.Execute(ctx, use.Name, use.Input)
			isError := false
			if err != nil {
				result = map[string]string{"error": err.Error()}
				isError = true
			}

			var input map[string]any
			if len(use.Input) > 0 {
				_ = json.Unmarshal(use.Input, &input)
			}
			records[i] = core.ToolCallRecord{Name: use.Name, Input: input, Result: result}

			payload, merr := json.Marshal(result)
			if merr != nil {
				payload = []byte(fmt.Sprintf(`{"error":%q}`, merr.Error()))
				isError = true
			}
			results[i] = core.ContentBlock{
				Type:      core.BlockToolResult,
				ToolUseID: use.ID,
				Content:   truncateResult(string(payload), a.cfg.MaxToolResultLen),
				IsError:   isError,
			}
		}(i, use)
	}
	wg.Wait()

	return results, records
}

func (a *Agent) finish(ctx context.Context, req core.Request, content string, records []core.ToolCallRecord, usage core.TokenUsage, start time.Time, emit func(core.StreamEvent)) (*core.Response, error) {
	enriched := citations.Process(records)

	resp := &core.Response{
		Content:   content,
		ToolCalls: records,
		Citations: enriched,
		Usage:     usage,
		LatencyMs: a.now().Sub(start).Milliseconds(),
	}

	a.persist(ctx, req, content)

	if emit != nil {
		if len(enriched) > 0 {
			emit(core.StreamEvent{Type: core.EventCitations, Data: enriched})
		}
		if len(records) > 0 {
			emit(core.StreamEvent{Type: core.EventToolCalls, Data: toolCallSummaries(records)})
		}
		emit(core.StreamEvent{Type: core.EventDone, Data: map[string]any{
			"toolCalls":  toolCallSummaries(records),
			"citations":  enriched,
			"tokenUsage": usage,
			"latencyMs":  resp.LatencyMs,
		}})
	}
	return resp, nil
}

// loadHistory returns the stored turns preceding this request and
// records the request's new turns. Best effort past the read: storage
// write failures are logged, not fatal.
func (a *Agent) loadHistory(ctx context.Context, req core.Request) ([]core.Turn, error) {
	if a.history == nil || req.ConversationID == "" {
		return nil, nil
	}
	logger := log.FromCtx(ctx)

	if err := a.history.EnsureConversation(ctx, req.ConversationID, req.UserID); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}
	prior, err := a.history.GetTurns(ctx, req.ConversationID, a.cfg.ContextWindowSize)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	for _, t := range req.Messages {
		if err := a.history.AddTurn(ctx, req.ConversationID, t); err != nil {
			logger.Error().Err(err).Msg("failed to save turn")
		}
	}
	return prior, nil
}

func (a *Agent) persist(ctx context.Context, req core.Request, content string) {
	if a.history == nil || req.ConversationID == "" || content == "" {
		return
	}
	turn := core.Turn{Role: core.RoleAssistant, Content: content}
	if err := a.history.AddTurn(ctx, req.ConversationID, turn); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to save assistant turn")
	}
}

func toolCallSummaries(records []core.ToolCallRecord) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any{"name": r.Name, "input": r.Input}
	}
	return out
}
