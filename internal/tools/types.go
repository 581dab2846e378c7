package tools

import "context"

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	ParamString      ParamType = "string"
	ParamStringArray ParamType = "array"
)

// Param declares one named tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Spec is the contract a tool advertises to the model.
type Spec struct {
	Name        string
	Description string
	Params      []Param
}

// JSONSchema renders the parameter shape as a JSON schema object.
func (s Spec) JSONSchema() map[string]any {
	properties := map[string]any{}
	required := []string{}
	for _, p := range s.Params {
		prop := map[string]any{"type": string(p.Type), "description": p.Description}
		if p.Type == ParamStringArray {
			prop["items"] = map[string]any{"type": "string"}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Result is the outcome of one tool call. Err is nil on success.
type Result struct {
	Name   string
	Output string
	Err    error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Text renders the result as plain text for display.
func (r Result) Text() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return r.Output
}

// Payload is the structured form fed back to the model.
func (r Result) Payload() map[string]any {
	if r.Err != nil {
		return map[string]any{"error": r.Err.Error()}
	}
	return map[string]any{"output": r.Output}
}

// Tool is one callable the model may invoke.
type Tool interface {
	Spec() Spec
	Execute(ctx context.Context, args map[string]any) Result
}

func success(name, output string) Result {
	return Result{Name: name, Output: output}
}

func failure(name string, err error) Result {
	return Result{Name: name, Err: err}
}
