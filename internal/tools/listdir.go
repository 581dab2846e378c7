package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentbox/internal/sandbox"
)

// ListDirTool lists the immediate children of a directory under the root.
type ListDirTool struct {
	root sandbox.Root
}

// NewListDirTool constructs a directory listing tool.
func NewListDirTool(root sandbox.Root) *ListDirTool {
	return &ListDirTool{root: root}
}

func (l *ListDirTool) Spec() Spec {
	return Spec{
		Name:        "get_files_info",
		Description: "Lists files in the specified directory along with their sizes, constrained to the working directory.",
		Params: []Param{{
			Name:        "directory",
			Type:        ParamString,
			Description: "The directory to list files from, relative to the working directory. If not provided, lists files in the working directory itself.",
		}},
	}
}

type listDirArgs struct {
	Directory string `json:"directory"`
}

// Execute renders one line per entry. Entries come back in the order the
// filesystem enumerates them, which is not guaranteed to be sorted.
func (l *ListDirTool) Execute(_ context.Context, raw map[string]any) Result {
	name := l.Spec().Name
	var args listDirArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(name, err)
	}
	if args.Directory == "" {
		args.Directory = "."
	}

	target, err := l.root.Resolve(args.Directory)
	if err != nil {
		return failure(name, fmt.Errorf("cannot list %q: %w", args.Directory, err))
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return failure(name, fmt.Errorf("%q: %w", args.Directory, ErrNotADirectory))
	}

	dir, err := os.Open(target)
	if err != nil {
		return failure(name, err)
	}
	defer dir.Close()
	entries, err := dir.ReadDir(-1)
	if err != nil {
		return failure(name, err)
	}

	var b strings.Builder
	for _, entry := range entries {
		size, isDir, err := entryStat(filepath.Join(target, entry.Name()))
		if err != nil {
			return failure(name, err)
		}
		fmt.Fprintf(&b, "- %s: file_size=%d bytes, is_dir=%t\n", entry.Name(), size, isDir)
	}
	return success(name, b.String())
}

// entryStat follows symlinks like a plain stat; a dangling link reports
// its own size.
func entryStat(path string) (int64, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		info, err = os.Lstat(path)
	}
	if err != nil {
		return 0, false, err
	}
	return info.Size(), info.IsDir(), nil
}
