package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"agentbox/internal/sandbox"
)

// ReadFileTool returns the text of a file, capped at maxChars characters.
type ReadFileTool struct {
	root     sandbox.Root
	maxChars int
}

// NewReadFileTool constructs a file reading tool.
func NewReadFileTool(root sandbox.Root, maxChars int) *ReadFileTool {
	return &ReadFileTool{root: root, maxChars: maxChars}
}

func (r *ReadFileTool) Spec() Spec {
	return Spec{
		Name:        "get_file_content",
		Description: fmt.Sprintf("Retrieves the content (up to %d characters) of a specified file within the working directory.", r.maxChars),
		Params: []Param{{
			Name:        "file_path",
			Type:        ParamString,
			Description: "Path to the file to read, relative to the working directory.",
			Required:    true,
		}},
	}
}

type readFileArgs struct {
	FilePath string `json:"file_path"`
}

func (r *ReadFileTool) Execute(_ context.Context, raw map[string]any) Result {
	name := r.Spec().Name
	var args readFileArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(name, err)
	}

	target, err := r.root.Resolve(args.FilePath)
	if err != nil {
		return failure(name, fmt.Errorf("cannot read %q: %w", args.FilePath, err))
	}
	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return failure(name, fmt.Errorf("file %q does not exist or is not a regular file: %w", args.FilePath, ErrNotFound))
	}

	file, err := os.Open(target)
	if err != nil {
		return failure(name, err)
	}
	defer file.Close()

	content, more, err := readChars(bufio.NewReader(file), r.maxChars)
	if err != nil {
		return failure(name, fmt.Errorf("reading %q: %w", args.FilePath, err))
	}
	if more {
		content += fmt.Sprintf(`[...File "%s" truncated at %d characters]`, args.FilePath, r.maxChars)
	}
	return success(name, content)
}

// readChars decodes at most limit runes and reports whether input remains.
// The read stops at the cap, so the cost is bounded by limit rather than by
// the file size.
func readChars(rd *bufio.Reader, limit int) (string, bool, error) {
	var b strings.Builder
	for n := 0; n < limit; n++ {
		ch, size, err := rd.ReadRune()
		if errors.Is(err, io.EOF) {
			return b.String(), false, nil
		}
		if err != nil {
			return "", false, err
		}
		if ch == utf8.RuneError && size == 1 {
			return "", false, ErrDecode
		}
		b.WriteRune(ch)
	}
	if _, err := rd.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return b.String(), false, nil
		}
		return "", false, err
	}
	return b.String(), true, nil
}
