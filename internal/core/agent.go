package core

// Mode selects the agent's round policy.
type Mode string

const (
	// ModeChat is the general clinical Q&A mode: up to 5 tool rounds.
	ModeChat Mode = "chat"
	// ModeNoteSummary is the fast path for pre-summarized clinical
	// contexts (structured note generation): a single round, no tools.
	ModeNoteSummary Mode = "note_summary"
)

// Request is one agent invocation. Messages must be non-empty and end
// with a user turn.
type Request struct {
	Messages       []Turn          `json:"messages"`
	ConversationID string          `json:"conversationId,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Context        *PatientContext `json:"context,omitempty"`
	Mode           Mode            `json:"mode,omitempty"`
}

// ToolCallRecord captures one tool invocation. Never mutated after
// creation; read later for citation extraction.
type ToolCallRecord struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Result any            `json:"result"`
}

// Citation is a raw literature reference attached to a response.
type Citation struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Year       int     `json:"year,omitempty"`
	Excerpt    string  `json:"excerpt,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// EvidenceLevel grades study design strength, I (systematic review)
// through V (textbook or clinical experience).
type EvidenceLevel string

// EnrichedCitation extends a raw citation with evidence grading and
// cross-reference links. Ids are stable within one response only.
type EnrichedCitation struct {
	Citation
	EvidenceLevel       EvidenceLevel `json:"evidenceLevel"`
	EvidenceDescription string        `json:"evidenceDescription"`
	CrossReferences     []int         `json:"crossReferences,omitempty"`
	DuplicateOf         int           `json:"duplicateOf,omitempty"`
}

// Response is the terminal artifact of one agent run.
type Response struct {
	Content   string           `json:"content"`
	ToolCalls []ToolCallRecord   `json:"toolCalls"`
	Citations []EnrichedCitation `json:"citations"`
	Usage     TokenUsage       `json:"tokenUsage"`
	LatencyMs int64            `json:"latencyMs"`
}

// Stream event types emitted by the agent in streaming mode.
const (
	EventTextDelta = "text_delta"
	EventToolCall  = "tool_call"
	EventToolCalls = "tool_calls"
	EventCitations = "citations"
	EventDone      = "done"
	EventError     = "error"
)

// StreamEvent is one typed event on the agent's output channel. The
// channel is single-producer single-consumer per request.
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
