package tools

import (
	"os"
	"path/filepath"
	"testing"

	"agentbox/internal/sandbox"
)

func newSandbox(t *testing.T) sandbox.Root {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "calculator")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create sandbox: %v", err)
	}
	root, err := sandbox.NewRoot(dir)
	if err != nil {
		t.Fatalf("failed to build root: %v", err)
	}
	return root
}

func writeFixture(t *testing.T, root sandbox.Root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root.Path(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}
