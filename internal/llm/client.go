package llm

import (
	"context"

	"agentbox/internal/tools"
)

// Role tags a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a model-issued request to run a tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// FunctionResult is the outcome of one ToolCall, fed back to the model.
type FunctionResult struct {
	CallID   string
	Name     string
	Response map[string]any
}

// Turn is one role-tagged entry of the conversation.
type Turn struct {
	Role    Role
	Text    string
	Calls   []ToolCall
	Results []FunctionResult
}

// UserTurn wraps a prompt.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// Usage is token telemetry reported by the provider.
type Usage struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
}

// Response is either FinalText or FunctionCalls.
type Response interface {
	usage() *Usage
	isResponse()
}

// FinalText is a plain-text answer with no tool calls.
type FinalText struct {
	Text  string
	Usage *Usage
}

// FunctionCalls asks the caller to run tools and report back. Text holds
// any commentary the model emitted alongside the calls.
type FunctionCalls struct {
	Text  string
	Calls []ToolCall
	Usage *Usage
}

func (r FinalText) usage() *Usage     { return r.Usage }
func (r FunctionCalls) usage() *Usage { return r.Usage }
func (FinalText) isResponse()         {}
func (FunctionCalls) isResponse()     {}

// UsageOf returns the token usage attached to a response, if any.
func UsageOf(r Response) *Usage {
	if r == nil {
		return nil
	}
	return r.usage()
}

// Request is one model invocation.
type Request struct {
	Model        string
	SystemPrompt string
	Temperature  float32
	Turns        []Turn
	Tools        []tools.Spec
}

// Client is the model boundary consumed by the agent loop.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
