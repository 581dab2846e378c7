package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"agentbox/internal/config"
	"agentbox/internal/sandbox"
)

// Registry stores available tools in registration order.
type Registry struct {
	order []string
	tools map[string]Tool
}

// Builtin returns the full tool set, each confined to root.
func Builtin(root sandbox.Root, limits config.ToolLimits) []Tool {
	return []Tool{
		NewListDirTool(root),
		NewReadFileTool(root, limits.MaxChars),
		NewWriteFileTool(root),
		NewScriptTool(root, limits.Interpreter, limits.ScriptExt, limits.ScriptTimeout),
	}
}

// NewRegistry builds a registry from tools. Duplicate names panic.
func NewRegistry(items ...Tool) *Registry {
	reg := &Registry{tools: map[string]Tool{}}
	for _, item := range items {
		name := item.Spec().Name
		if _, dup := reg.tools[name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool %q", name))
		}
		reg.order = append(reg.order, name)
		reg.tools[name] = item
	}
	return reg
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the advertised tool specs in registration order.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Dispatch runs the named tool. It never panics or returns a Go error;
// every failure comes back as a Result.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (res Result) {
	tool, ok := r.Get(name)
	if !ok {
		return failure(name, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, strings.Join(r.Names(), ", ")))
	}
	defer func() {
		if p := recover(); p != nil {
			res = failure(name, fmt.Errorf("tool %q panicked: %v", name, p))
		}
	}()
	return tool.Execute(ctx, args)
}
