package core

import "context"

// ChatRequest is a single model call. ToolChoice follows the Messages
// API values: empty means "auto", "any" forces a tool call.
type ChatRequest struct {
	System     string
	Messages   []Message
	Tools      []Tool
	ToolChoice string
	MaxTokens  int
}

// ModelClient is the LLM provider boundary. Chat blocks until the model
// turn completes; ChatStream invokes onDelta for each text fragment as
// it arrives and returns the fully accumulated turn.
type ModelClient interface {
	Chat(ctx context.Context, req ChatRequest) (ModelResponse, error)
	ChatStream(ctx context.Context, req ChatRequest, onDelta func(text string)) (ModelResponse, error)
}
