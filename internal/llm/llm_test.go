package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"google.golang.org/genai"

	"agentbox/internal/tools"
)

var testSpecs = []tools.Spec{
	{Name: "get_files_info", Description: "list", Params: []tools.Param{{Name: "directory", Type: tools.ParamString}}},
	{Name: "run_python_file", Description: "run", Params: []tools.Param{
		{Name: "file_path", Type: tools.ParamString, Required: true},
		{Name: "args", Type: tools.ParamStringArray},
	}},
}

func conversation() []Turn {
	return []Turn{
		UserTurn("what files are here?"),
		{Role: RoleModel, Text: "let me look", Calls: []ToolCall{
			{ID: "c1", Name: "get_files_info", Args: map[string]any{"directory": "."}},
			{ID: "c2", Name: "run_python_file", Args: map[string]any{"file_path": "main.py"}},
		}},
		{Role: RoleTool, Results: []FunctionResult{
			{CallID: "c1", Name: "get_files_info", Response: map[string]any{"output": "- main.py"}},
			{CallID: "c2", Name: "run_python_file", Response: map[string]any{"error": "boom"}},
		}},
	}
}

func TestGeminiContents(t *testing.T) {
	contents := geminiContents(conversation())
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[0].Parts[0].Text != "what files are here?" {
		t.Fatalf("unexpected user content: %+v", contents[0])
	}
	if contents[1].Role != genai.RoleModel || len(contents[1].Parts) != 3 || contents[1].Parts[0].Text != "let me look" {
		t.Fatalf("unexpected model content: %+v", contents[1])
	}
	if contents[1].Parts[2].FunctionCall.Name != "run_python_file" || contents[1].Parts[2].FunctionCall.ID != "c2" {
		t.Fatalf("expected calls in order, got %+v", contents[1].Parts[2].FunctionCall)
	}
	results := contents[2].Parts
	if len(results) != 2 || results[0].FunctionResponse.Name != "get_files_info" || results[1].FunctionResponse.Response["error"] != "boom" {
		t.Fatalf("unexpected function responses: %+v", contents[2])
	}
}

func TestGeminiTools(t *testing.T) {
	decls := geminiTools(testSpecs)[0].FunctionDeclarations
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	run := decls[1].Parameters
	if run.Type != genai.TypeObject || len(run.Required) != 1 || run.Required[0] != "file_path" {
		t.Fatalf("unexpected schema: %+v", run)
	}
	if run.Properties["args"].Type != genai.TypeArray || run.Properties["args"].Items.Type != genai.TypeString {
		t.Fatalf("expected array of strings for args: %+v", run.Properties["args"])
	}
	if geminiTools(nil) != nil {
		t.Fatalf("expected no tools for empty spec list")
	}
}

func TestParseGeminiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
			genai.NewPartFromText("let me look"),
			{FunctionCall: &genai.FunctionCall{Name: "get_files_info", Args: map[string]any{"directory": "pkg"}}},
		}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 3},
	}
	parsed, err := parseGeminiResponse(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls, ok := parsed.(FunctionCalls)
	if !ok {
		t.Fatalf("expected FunctionCalls, got %T", parsed)
	}
	if len(calls.Calls) != 1 || calls.Calls[0].Args["directory"] != "pkg" || calls.Text != "let me look" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if usage := UsageOf(parsed); usage == nil || usage.PromptTokens != 12 || usage.ResponseTokens != 3 {
		t.Fatalf("unexpected usage: %+v", usage)
	}

	text := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("done", genai.RoleModel)}}}
	parsed, err = parseGeminiResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final, ok := parsed.(FinalText); !ok || final.Text != "done" {
		t.Fatalf("expected final text, got %+v", parsed)
	}

	if _, err := parseGeminiResponse(&genai.GenerateContentResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestOpenAIMessages(t *testing.T) {
	messages, err := openAIMessages("system", conversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// system, user, assistant, two tool messages
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	if messages[2].OfAssistant == nil || len(messages[2].OfAssistant.ToolCalls) != 2 {
		t.Fatalf("expected assistant tool calls, got %+v", messages[2])
	}
	if got := messages[2].OfAssistant.Content.OfString.Value; got != "let me look" {
		t.Fatalf("expected assistant text alongside tool calls, got %q", got)
	}
	if messages[3].OfTool == nil || messages[3].OfTool.ToolCallID != "c1" {
		t.Fatalf("expected first tool result for c1, got %+v", messages[3])
	}
	if messages[4].OfTool == nil || messages[4].OfTool.ToolCallID != "c2" {
		t.Fatalf("expected second tool result for c2, got %+v", messages[4])
	}
}

func TestOpenAITools(t *testing.T) {
	defs := openAITools(testSpecs)
	if len(defs) != 2 || defs[0].OfFunction == nil || defs[0].OfFunction.Function.Name != "get_files_info" {
		t.Fatalf("unexpected tool definitions: %+v", defs)
	}
	raw, err := json.Marshal(defs[1].OfFunction.Function.Parameters)
	if err != nil {
		t.Fatalf("marshal parameters: %v", err)
	}
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	if schema["type"] != "object" {
		t.Fatalf("unexpected schema: %s", raw)
	}
}

func TestScriptedClientRepeatsLast(t *testing.T) {
	client := NewScriptedClient(FinalText{Text: "a"}, FinalText{Text: "b"})
	var texts []string
	for i := 0; i < 3; i++ {
		resp, err := client.Generate(context.Background(), Request{Turns: []Turn{UserTurn("q")}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		texts = append(texts, resp.(FinalText).Text)
	}
	if texts[0] != "a" || texts[1] != "b" || texts[2] != "b" {
		t.Fatalf("unexpected sequence: %v", texts)
	}
	if len(client.Requests()) != 3 {
		t.Fatalf("expected 3 recorded requests, got %d", len(client.Requests()))
	}
}

func TestParseGeminiResponseAssignsMissingCallIDs(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
			{FunctionCall: &genai.FunctionCall{Name: "get_files_info", Args: map[string]any{}}},
			{FunctionCall: &genai.FunctionCall{Name: "get_files_info", Args: map[string]any{"directory": "pkg"}}},
			{FunctionCall: &genai.FunctionCall{ID: "given", Name: "get_file_content", Args: map[string]any{"file_path": "a"}}},
		}}}},
	}
	parsed, err := parseGeminiResponse(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := parsed.(FunctionCalls).Calls
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[0].ID == "" || calls[1].ID == "" || calls[0].ID == calls[1].ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", calls[0].ID, calls[1].ID)
	}
	if calls[2].ID != "given" {
		t.Fatalf("expected provider id to be kept, got %q", calls[2].ID)
	}

	contents := geminiContents([]Turn{{Role: RoleModel, Calls: calls}, {Role: RoleTool, Results: []FunctionResult{{CallID: calls[0].ID, Name: calls[0].Name}}}})
	if contents[1].Parts[0].FunctionResponse.ID != contents[0].Parts[0].FunctionCall.ID {
		t.Fatalf("expected response id to match call id")
	}
}
