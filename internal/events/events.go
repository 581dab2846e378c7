package events

import "time"

// Type represents an emitted event type.
type Type string

const (
	RunStarted       Type = "RunStarted"
	ModelResponded   Type = "ModelResponded"
	ToolCallStarted  Type = "ToolCallStarted"
	ToolCallFinished Type = "ToolCallFinished"
	ToolCallFailed   Type = "ToolCallFailed"
	FinalAnswerReady Type = "FinalAnswerReady"
	RunFinished      Type = "RunFinished"
	RunError         Type = "RunError"
)

// Event is the common envelope for renderer events.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RunStartedPayload is emitted at the beginning of a run.
type RunStartedPayload struct {
	WorkingRoot string    `json:"working_root"`
	Model       string    `json:"model"`
	RunID       string    `json:"run_id"`
	Prompt      string    `json:"prompt"`
	StartedAt   time.Time `json:"started_at"`
}

// ModelRespondedPayload reports one model round trip.
type ModelRespondedPayload struct {
	Iteration      int  `json:"iteration"`
	FunctionCalls  int  `json:"function_calls"`
	PromptTokens   int  `json:"prompt_tokens"`
	ResponseTokens int  `json:"response_tokens"`
	HasUsage       bool `json:"has_usage"`
}

// ToolCallStartedPayload marks tool call start.
type ToolCallStartedPayload struct {
	ToolName  string    `json:"tool_name"`
	Input     any       `json:"input"`
	StartedAt time.Time `json:"started_at"`
}

// ToolCallFinishedPayload marks tool call end.
type ToolCallFinishedPayload struct {
	ToolName   string `json:"tool_name"`
	Status     string `json:"status"`
	Preview    string `json:"preview"`
	LineCount  int    `json:"line_count"`
	Truncated  bool   `json:"truncated"`
	ByteCount  int    `json:"byte_count"`
	DurationMs int64  `json:"duration_ms"`
}

// FinalAnswerPayload is emitted when final answer is ready.
type FinalAnswerPayload struct {
	Answer string `json:"answer"`
}

// RunFinishedPayload closes the run.
type RunFinishedPayload struct {
	Status     string    `json:"status"`
	Iterations int       `json:"iterations"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunErrorPayload records a run error.
type RunErrorPayload struct {
	Message string `json:"message"`
}
