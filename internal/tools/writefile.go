package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"agentbox/internal/sandbox"
)

// WriteFileTool creates or overwrites a file under the root.
type WriteFileTool struct {
	root sandbox.Root
}

// NewWriteFileTool constructs a file writing tool.
func NewWriteFileTool(root sandbox.Root) *WriteFileTool {
	return &WriteFileTool{root: root}
}

func (w *WriteFileTool) Spec() Spec {
	return Spec{
		Name:        "write_file",
		Description: "Writes content to a file within the working directory, creating parent directories as needed and overwriting any existing file.",
		Params: []Param{
			{
				Name:        "file_path",
				Type:        ParamString,
				Description: "Path to the file to write, relative to the working directory.",
				Required:    true,
			},
			{
				Name:        "content",
				Type:        ParamString,
				Description: "The full content to write to the file.",
				Required:    true,
			},
		},
	}
}

type writeFileArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// Execute truncates and replaces the target. The write is not atomic; a
// concurrent reader may observe a partial file.
func (w *WriteFileTool) Execute(_ context.Context, raw map[string]any) Result {
	name := w.Spec().Name
	var args writeFileArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(name, err)
	}

	target, err := w.root.Resolve(args.FilePath)
	if err != nil {
		return failure(name, fmt.Errorf("cannot write %q: %w", args.FilePath, err))
	}
	if target == w.root.Path() {
		return failure(name, fmt.Errorf("cannot write to %q: %w", args.FilePath, ErrIsADirectory))
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return failure(name, fmt.Errorf("cannot write to %q: %w", args.FilePath, ErrIsADirectory))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return failure(name, fmt.Errorf("failed to create directory: %w", err))
	}
	if err := os.WriteFile(target, []byte(args.Content), 0o644); err != nil {
		return failure(name, fmt.Errorf("failed to write: %w", err))
	}
	return success(name, fmt.Sprintf("Successfully wrote to %q (%d characters written)", args.FilePath, utf8.RuneCountInString(args.Content)))
}
