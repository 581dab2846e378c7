package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentbox/internal/config"
	"agentbox/internal/events"
	"agentbox/internal/llm"
	"agentbox/internal/render"
	"agentbox/internal/sandbox"
	"agentbox/internal/tools"
	"agentbox/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrIterationsExhausted means the cap was hit without a final answer.
	ErrIterationsExhausted = errors.New("maximum iterations reached without a final response")
	// ErrMalformedResponse means the model client broke its contract.
	ErrMalformedResponse = errors.New("malformed model response")
)

const (
	StatusSuccess   = "success"
	StatusExhausted = "exhausted"
	StatusFailure   = "failure"
)

// RunResult captures run output for JSON mode.
type RunResult struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"timestamp_start"`
	FinishedAt  time.Time        `json:"timestamp_end"`
	WorkingRoot string           `json:"working_root"`
	Prompt      string           `json:"prompt"`
	Model       string           `json:"model"`
	Iterations  int              `json:"iterations"`
	Status      string           `json:"status"`
	FinalAnswer string           `json:"final_answer"`
	Usage       llm.Usage        `json:"usage"`
	ToolCalls   []ToolCallRecord `json:"tool_calls"`
	Events      []events.Event   `json:"events"`
}

// ToolCallRecord records tool call history.
type ToolCallRecord struct {
	Iteration  int       `json:"iteration"`
	CallID     string    `json:"call_id"`
	ToolName   string    `json:"tool_name"`
	Input      any       `json:"input"`
	Output     string    `json:"output"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Agent runs the orchestration loop.
type Agent struct {
	client   llm.Client
	tools    *tools.Registry
	root     sandbox.Root
	renderer render.Renderer
	logger   *zap.Logger
	cfg      config.Config
}

// NewAgent constructs an Agent. renderer may be nil.
func NewAgent(client llm.Client, toolsReg *tools.Registry, root sandbox.Root, renderer render.Renderer, logger *zap.Logger, cfg config.Config) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{client: client, tools: toolsReg, root: root, renderer: renderer, logger: logger, cfg: cfg}
}

type state int

const (
	awaitingModel state = iota
	hasFunctionCalls
	done
	exhausted
)

// Run drives the conversation until the model answers in plain text or
// cfg.MaxIterations model calls have been made. The model is never called
// more than MaxIterations times. The returned RunResult is filled in on
// every path, including errors.
func (a *Agent) Run(ctx context.Context, prompt string) (RunResult, error) {
	started := time.Now()
	result := RunResult{
		RunID:       uuid.NewString(),
		StartedAt:   started,
		WorkingRoot: a.root.Path(),
		Prompt:      prompt,
		Model:       a.cfg.Model,
		Status:      StatusFailure,
	}

	emit := func(typ events.Type, payload any) {
		event := events.Event{Type: typ, Timestamp: time.Now(), Payload: payload}
		result.Events = append(result.Events, event)
		if a.renderer != nil {
			a.renderer.Emit(event)
		}
	}
	fail := func(err error) (RunResult, error) {
		a.logger.Error("run failed", zap.String("run_id", result.RunID), zap.Int("iterations", result.Iterations), zap.Error(err))
		emit(events.RunError, events.RunErrorPayload{Message: err.Error()})
		result.FinishedAt = time.Now()
		emit(events.RunFinished, events.RunFinishedPayload{Status: result.Status, Iterations: result.Iterations, FinishedAt: result.FinishedAt})
		return result, err
	}

	emit(events.RunStarted, events.RunStartedPayload{
		WorkingRoot: result.WorkingRoot,
		Model:       a.cfg.Model,
		RunID:       result.RunID,
		Prompt:      prompt,
		StartedAt:   started,
	})

	conversation := []llm.Turn{llm.UserTurn(prompt)}
	specs := a.tools.Specs()
	var pending llm.FunctionCalls

	st := awaitingModel
	for {
		switch st {
		case awaitingModel:
			if result.Iterations >= a.cfg.MaxIterations {
				st = exhausted
				continue
			}
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			result.Iterations++
			a.logger.Debug("model request", zap.Int("iteration", result.Iterations), zap.Int("turns", len(conversation)))
			resp, err := a.client.Generate(ctx, llm.Request{
				Model:        a.cfg.Model,
				SystemPrompt: systemPrompt(),
				Temperature:  a.cfg.Temperature,
				Turns:        conversation,
				Tools:        specs,
			})
			if err != nil {
				return fail(fmt.Errorf("model request: %w", err))
			}
			a.recordUsage(&result, resp, emit)

			switch r := resp.(type) {
			case llm.FinalText:
				result.FinalAnswer = strings.TrimSpace(r.Text)
				st = done
			case llm.FunctionCalls:
				if len(r.Calls) == 0 {
					return fail(fmt.Errorf("%w: function call response without calls", ErrMalformedResponse))
				}
				pending = r
				st = hasFunctionCalls
			default:
				return fail(fmt.Errorf("%w: unexpected response %T", ErrMalformedResponse, resp))
			}

		case hasFunctionCalls:
			conversation = append(conversation, llm.Turn{Role: llm.RoleModel, Text: pending.Text, Calls: pending.Calls})
			results := make([]llm.FunctionResult, 0, len(pending.Calls))
			for _, call := range pending.Calls {
				results = append(results, a.dispatch(ctx, &result, call, emit))
			}
			conversation = append(conversation, llm.Turn{Role: llm.RoleTool, Results: results})
			pending = llm.FunctionCalls{}
			st = awaitingModel

		case done:
			result.Status = StatusSuccess
			result.FinishedAt = time.Now()
			a.logger.Info("run finished", zap.String("run_id", result.RunID), zap.Int("iterations", result.Iterations))
			emit(events.FinalAnswerReady, events.FinalAnswerPayload{Answer: result.FinalAnswer})
			emit(events.RunFinished, events.RunFinishedPayload{Status: result.Status, Iterations: result.Iterations, FinishedAt: result.FinishedAt})
			return result, nil

		case exhausted:
			result.Status = StatusExhausted
			return fail(fmt.Errorf("%w (%d)", ErrIterationsExhausted, a.cfg.MaxIterations))
		}
	}
}

// dispatch runs one call. Failures become error results for the model;
// they never abort the batch.
func (a *Agent) dispatch(ctx context.Context, result *RunResult, call llm.ToolCall, emit func(events.Type, any)) llm.FunctionResult {
	input := sanitizeInput(call.Args)
	start := time.Now()
	emit(events.ToolCallStarted, events.ToolCallStartedPayload{ToolName: call.Name, Input: input, StartedAt: start})

	res := a.tools.Dispatch(ctx, call.Name, call.Args)
	duration := time.Since(start).Milliseconds()

	status := "success"
	eventType := events.ToolCallFinished
	if !res.OK() {
		status = "error"
		eventType = events.ToolCallFailed
		a.logger.Warn("tool call failed", zap.String("tool", call.Name), zap.Error(res.Err))
	} else {
		a.logger.Debug("tool call finished", zap.String("tool", call.Name), zap.Int64("duration_ms", duration))
	}

	text := res.Text()
	preview := util.PreviewOutput(util.RedactSecrets(text), 12, 2000)
	emit(eventType, events.ToolCallFinishedPayload{
		ToolName:   call.Name,
		Status:     status,
		Preview:    preview.Text,
		LineCount:  preview.Lines,
		Truncated:  preview.Truncated,
		ByteCount:  len(text),
		DurationMs: duration,
	})
	result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
		Iteration:  result.Iterations,
		CallID:     call.ID,
		ToolName:   call.Name,
		Input:      input,
		Output:     util.RedactSecrets(text),
		Status:     status,
		StartedAt:  start,
		DurationMs: duration,
	})

	return llm.FunctionResult{CallID: call.ID, Name: call.Name, Response: res.Payload()}
}

func (a *Agent) recordUsage(result *RunResult, resp llm.Response, emit func(events.Type, any)) {
	payload := events.ModelRespondedPayload{Iteration: result.Iterations}
	if calls, ok := resp.(llm.FunctionCalls); ok {
		payload.FunctionCalls = len(calls.Calls)
	}
	if usage := llm.UsageOf(resp); usage != nil {
		result.Usage.PromptTokens += usage.PromptTokens
		result.Usage.ResponseTokens += usage.ResponseTokens
		payload.PromptTokens = usage.PromptTokens
		payload.ResponseTokens = usage.ResponseTokens
		payload.HasUsage = true
	}
	emit(events.ModelResponded, payload)
}

func sanitizeInput(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return util.RedactSecrets(fmt.Sprint(args))
	}
	return util.RedactSecrets(string(data))
}
