package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/pkg/log"
)

// handleChatStream runs the agent in streaming mode and relays its
// events as server-sent events, one JSON object per event.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	ident := s.authorize(w, r)
	if ident == nil {
		return
	}

	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	agentReq := core.Request{
		Messages:       req.Messages,
		ConversationID: req.ConversationID,
		UserID:         ident.UserID,
		Context:        req.Context,
		Mode:           req.Mode,
	}

	logger := log.FromCtx(r.Context())
	for ev := range s.agent.RunStreaming(r.Context(), agentReq) {
		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("failed to marshal stream event")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()

		if ev.Type == core.EventDone {
			if done, ok := ev.Data.(map[string]any); ok {
				if usage, ok := done["tokenUsage"].(core.TokenUsage); ok {
					toolCalls := 0
					if summaries, ok := done["toolCalls"].([]map[string]any); ok {
						toolCalls = len(summaries)
					}
					latencyMs, _ := done["latencyMs"].(int64)
					s.account(r.Context(), ident.UserID, ident.Tier, "chat_stream", usage, toolCalls, latencyMs)
				}
			}
		}
	}
}
