package llm

import (
	"context"
	"fmt"
	"sync"
)

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// ScriptedClient replays a fixed list of responses and records every
// request it receives. Once the script runs out it repeats the last entry.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []Response
	requests  []Request
}

// NewScriptedClient returns a client that answers with responses in order.
func NewScriptedClient(responses ...Response) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

func (s *ScriptedClient) Generate(_ context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := req
	snapshot.Turns = append([]Turn(nil), req.Turns...)
	s.requests = append(s.requests, snapshot)
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("%w: script is empty", ErrEmptyResponse)
	}
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

// Requests returns the requests seen so far.
func (s *ScriptedClient) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// NewMockClient returns the deterministic client used by mock mode: it
// lists the working directory once, then answers.
func NewMockClient() *ScriptedClient {
	return NewScriptedClient(
		FunctionCalls{Calls: []ToolCall{{ID: "call_1", Name: "get_files_info", Args: map[string]any{"directory": "."}}}},
		FinalText{Text: "Mock response: listed the working directory. [tool:get_files_info]"},
	)
}
