package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/openai/openai-go/v3/shared/constant"

	"agentbox/internal/tools"
)

// OpenAIClient implements Client on any OpenAI-compatible chat completion
// endpoint, OpenRouter by default.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient constructs a client with base URL and the shared
// retrying HTTP transport.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(NewHTTPClient()),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: client}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	messages, err := openAIMessages(req.SystemPrompt, req.Turns)
	if err != nil {
		return nil, err
	}
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.Model),
		Messages:    messages,
		Temperature: param.NewOpt(float64(req.Temperature)),
	}
	if defs := openAITools(req.Tools); len(defs) > 0 {
		params.Tools = defs
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")}
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseChatCompletion(resp)
}

func openAIMessages(systemPrompt string, turns []Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, turn := range turns {
		switch turn.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(turn.Text))
		case RoleModel:
			toolCallParams := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(turn.Calls))
			for _, call := range turn.Calls {
				args, err := json.Marshal(call.Args)
				if err != nil {
					return nil, fmt.Errorf("encode arguments for %s: %w", call.Name, err)
				}
				toolCallParams = append(toolCallParams, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: string(args),
						},
						Type: constant.Function("function"),
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCallParams}
			if turn.Text != "" {
				assistant.Content.OfString = param.NewOpt(turn.Text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case RoleTool:
			for _, result := range turn.Results {
				payload, err := json.Marshal(result.Response)
				if err != nil {
					return nil, fmt.Errorf("encode result for %s: %w", result.Name, err)
				}
				messages = append(messages, openai.ToolMessage(string(payload), result.CallID))
			}
		}
	}
	return messages, nil
}

// openAITools converts tool specs to OpenAI function tool definitions.
func openAITools(specs []tools.Spec) []openai.ChatCompletionToolUnionParam {
	var defs []openai.ChatCompletionToolUnionParam
	for _, spec := range specs {
		defs = append(defs, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        spec.Name,
					Description: param.NewOpt(spec.Description),
					Parameters:  spec.JSONSchema(),
				},
			},
		})
	}
	return defs
}

func parseChatCompletion(resp *openai.ChatCompletion) (Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	usage := &Usage{
		PromptTokens:   int(resp.Usage.PromptTokens),
		ResponseTokens: int(resp.Usage.CompletionTokens),
	}
	msg := resp.Choices[0].Message
	var calls []ToolCall
	for _, toolCall := range msg.ToolCalls {
		if toolCall.Type != "function" {
			continue
		}
		fn := toolCall.AsFunction()
		args := map[string]any{}
		if fn.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(fn.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("decode arguments for %s: %w", fn.Function.Name, err)
			}
		}
		calls = append(calls, ToolCall{ID: fn.ID, Name: fn.Function.Name, Args: args})
	}
	if len(calls) > 0 {
		return FunctionCalls{Text: msg.Content, Calls: calls, Usage: usage}, nil
	}
	return FinalText{Text: msg.Content, Usage: usage}, nil
}
