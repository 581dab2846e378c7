package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"agentbox/internal/sandbox"
)

func TestReadFileUnderCap(t *testing.T) {
	root := newSandbox(t)
	writeFixture(t, root, "main.py", "print('héllo')\n")

	res := NewReadFileTool(root, 100).Execute(context.Background(), map[string]any{"file_path": "main.py"})
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Output != "print('héllo')\n" {
		t.Fatalf("unexpected content: %q", res.Output)
	}
}

func TestReadFileExactlyCap(t *testing.T) {
	root := newSandbox(t)
	writeFixture(t, root, "exact.txt", strings.Repeat("é", 10))

	res := NewReadFileTool(root, 10).Execute(context.Background(), map[string]any{"file_path": "exact.txt"})
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Output != strings.Repeat("é", 10) {
		t.Fatalf("expected untruncated content, got %q", res.Output)
	}
}

func TestReadFileTruncates(t *testing.T) {
	root := newSandbox(t)
	writeFixture(t, root, "lorem.txt", strings.Repeat("a", 25))

	res := NewReadFileTool(root, 10).Execute(context.Background(), map[string]any{"file_path": "lorem.txt"})
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := strings.Repeat("a", 10) + `[...File "lorem.txt" truncated at 10 characters]`
	if res.Output != want {
		t.Fatalf("expected %q, got %q", want, res.Output)
	}
}

func TestReadFileErrors(t *testing.T) {
	root := newSandbox(t)
	writeFixture(t, root, "pkg/x.py", "x")
	tool := NewReadFileTool(root, 10)

	cases := []struct {
		path string
		want error
	}{
		{"/etc/passwd", sandbox.ErrOutsideRoot},
		{"../secret.txt", sandbox.ErrOutsideRoot},
		{"missing.txt", ErrNotFound},
		{"pkg", ErrNotFound},
		{"", ErrNotFound},
	}
	for _, tc := range cases {
		res := tool.Execute(context.Background(), map[string]any{"file_path": tc.path})
		if !errors.Is(res.Err, tc.want) {
			t.Fatalf("path %q: expected %v, got %v", tc.path, tc.want, res.Err)
		}
	}
}

func TestReadFileBinary(t *testing.T) {
	root := newSandbox(t)
	writeFixture(t, root, "blob.bin", string([]byte{0xff, 0xfe, 0x00, 0x01}))

	res := NewReadFileTool(root, 10).Execute(context.Background(), map[string]any{"file_path": "blob.bin"})
	if !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("expected decode error, got %v", res.Err)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	root := newSandbox(t)
	writer := NewWriteFileTool(root)
	reader := NewReadFileTool(root, 50)

	for i, content := range []string{"", "lorem ipsum", "ünïcödé ✓", strings.Repeat("z", 50)} {
		path := fmt.Sprintf("round/%d.txt", i)
		if res := writer.Execute(context.Background(), map[string]any{"file_path": path, "content": content}); !res.OK() {
			t.Fatalf("write %s: %v", path, res.Err)
		}
		res := reader.Execute(context.Background(), map[string]any{"file_path": path})
		if !res.OK() {
			t.Fatalf("read %s: %v", path, res.Err)
		}
		if res.Output != content {
			t.Fatalf("round trip %s: expected %q, got %q", path, content, res.Output)
		}
	}
}
