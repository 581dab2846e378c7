package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"agentbox/internal/events"
)

// StdoutRenderer streams events to a plain text writer. Without verbose
// it prints only the final answer and errors.
type StdoutRenderer struct {
	w       io.Writer
	mu      sync.Mutex
	verbose bool
}

// NewStdoutRenderer creates a renderer for plain text output.
func NewStdoutRenderer(w io.Writer, verbose bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, verbose: verbose}
}

func (r *StdoutRenderer) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case events.RunStarted:
		if payload, ok := event.Payload.(events.RunStartedPayload); ok && r.verbose {
			fmt.Fprintf(r.w, "User prompt: %s\n", payload.Prompt)
			fmt.Fprintf(r.w, "Working directory: %s | model: %s | run: %s\n", payload.WorkingRoot, payload.Model, payload.RunID)
		}
	case events.ModelResponded:
		if payload, ok := event.Payload.(events.ModelRespondedPayload); ok && r.verbose && payload.HasUsage {
			fmt.Fprintf(r.w, "Prompt tokens: %d\n", payload.PromptTokens)
			fmt.Fprintf(r.w, "Response tokens: %d\n", payload.ResponseTokens)
		}
	case events.ToolCallStarted:
		if payload, ok := event.Payload.(events.ToolCallStartedPayload); ok {
			if r.verbose {
				fmt.Fprintf(r.w, "Calling function: %s(%v)\n", payload.ToolName, payload.Input)
			} else {
				fmt.Fprintf(r.w, " - Calling function: %s\n", payload.ToolName)
			}
		}
	case events.ToolCallFinished, events.ToolCallFailed:
		if payload, ok := event.Payload.(events.ToolCallFinishedPayload); ok && r.verbose {
			fmt.Fprintf(r.w, "-> %s %s (%dms, %d lines, %d bytes)\n", payload.ToolName, payload.Status, payload.DurationMs, payload.LineCount, payload.ByteCount)
			for _, line := range strings.Split(payload.Preview, "\n") {
				if line != "" {
					fmt.Fprintf(r.w, "   %s\n", line)
				}
			}
			if payload.Truncated {
				fmt.Fprintln(r.w, "   ...")
			}
		}
	case events.FinalAnswerReady:
		if payload, ok := event.Payload.(events.FinalAnswerPayload); ok {
			fmt.Fprintln(r.w, "Final response:")
			fmt.Fprintln(r.w, payload.Answer)
		}
	case events.RunError:
		if payload, ok := event.Payload.(events.RunErrorPayload); ok {
			fmt.Fprintf(r.w, "Error: %s\n", payload.Message)
		}
	}
}

func (r *StdoutRenderer) Close() error {
	return nil
}
