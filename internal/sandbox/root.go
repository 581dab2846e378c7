package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is matched by every ContainmentError.
var ErrOutsideRoot = errors.New("path is outside the permitted working directory")

// ContainmentError reports a path that resolves outside the working root.
type ContainmentError struct {
	Path string
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf("%q is outside the permitted working directory", e.Path)
}

func (e *ContainmentError) Is(target error) bool {
	return target == ErrOutsideRoot
}

// Root is the directory every tool operation is confined to.
// The zero value is not usable; construct it with NewRoot.
type Root struct {
	path string
}

// NewRoot resolves dir to an absolute, symlink-free directory path.
func NewRoot(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Root{}, fmt.Errorf("working directory: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return Root{}, fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return Root{}, fmt.Errorf("working directory %s is not a directory", resolved)
	}
	return Root{path: filepath.Clean(resolved)}, nil
}

// Path returns the absolute root directory.
func (r Root) Path() string { return r.path }

// Resolve joins rel onto the root and verifies the result stays inside it.
// Absolute input is rejected before joining. The join is lexical: ".."
// segments are collapsed, symlinks below the root are not followed.
func (r Root) Resolve(rel string) (string, error) {
	if rel == "" {
		rel = "."
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, string(filepath.Separator)) || filepath.VolumeName(rel) != "" {
		return "", &ContainmentError{Path: rel}
	}
	target := filepath.Join(r.path, rel)
	if !r.contains(target) {
		return "", &ContainmentError{Path: rel}
	}
	return target, nil
}

// contains compares by path components, so a sibling sharing the root's
// name as a string prefix does not pass.
func (r Root) contains(target string) bool {
	rel, err := filepath.Rel(r.path, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
