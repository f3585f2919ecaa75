package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/service/agent"
	"github.com/vetevidence/vetagent/pkg/conv"
	"github.com/vetevidence/vetagent/pkg/log"
)

const maxRequestBody = 1 << 20 // 1 MiB

type chatRequest struct {
	Messages       []core.Turn          `json:"messages"`
	ConversationID string               `json:"conversationId,omitempty"`
	Mode           core.Mode            `json:"mode,omitempty"`
	Context        *core.PatientContext `json:"context,omitempty"`
}

type chatResponse struct {
	RequestID  string                   `json:"requestId"`
	Content    string                   `json:"content"`
	AnswerHTML string                   `json:"answerHtml"`
	ToolCalls  []core.ToolCallRecord    `json:"toolCalls"`
	Citations  []core.EnrichedCitation  `json:"citations"`
	TokenUsage core.TokenUsage          `json:"tokenUsage"`
	LatencyMs  int64                    `json:"latencyMs"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ident := s.authorize(w, r)
	if ident == nil {
		return
	}

	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	agentReq := core.Request{
		Messages:       req.Messages,
		ConversationID: req.ConversationID,
		UserID:         ident.UserID,
		Context:        req.Context,
		Mode:           req.Mode,
	}

	resp, err := s.agent.Run(r.Context(), agentReq)
	if err != nil {
		if errors.Is(err, agent.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromCtx(r.Context()).Error().Err(err).Msg("agent run failed")
		writeError(w, http.StatusBadGateway, "model request failed")
		return
	}

	s.account(r.Context(), ident.UserID, ident.Tier, "chat", resp.Usage, len(resp.ToolCalls), resp.LatencyMs)

	writeJSON(w, http.StatusOK, chatResponse{
		RequestID:  uuid.NewString(),
		Content:    resp.Content,
		AnswerHTML: conv.MarkdownToHTML([]byte(resp.Content)),
		ToolCalls:  resp.ToolCalls,
		Citations:  resp.Citations,
		TokenUsage: resp.Usage,
		LatencyMs:  resp.LatencyMs,
	})
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return chatRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
