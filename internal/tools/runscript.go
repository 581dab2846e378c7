package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"agentbox/internal/sandbox"
)

// ScriptTool runs a script file under the root with an interpreter.
type ScriptTool struct {
	root        sandbox.Root
	interpreter string
	ext         string
	timeout     time.Duration
}

// NewScriptTool constructs a script runner. ext includes the leading dot.
func NewScriptTool(root sandbox.Root, interpreter, ext string, timeout time.Duration) *ScriptTool {
	return &ScriptTool{root: root, interpreter: interpreter, ext: ext, timeout: timeout}
}

func (s *ScriptTool) Spec() Spec {
	return Spec{
		Name:        "run_python_file",
		Description: fmt.Sprintf("Executes a %s file within the working directory with optional command-line arguments and returns its output.", s.ext),
		Params: []Param{
			{
				Name:        "file_path",
				Type:        ParamString,
				Description: "Path to the script to execute, relative to the working directory.",
				Required:    true,
			},
			{
				Name:        "args",
				Type:        ParamStringArray,
				Description: "Optional command-line arguments to pass to the script.",
			},
		},
	}
}

type scriptArgs struct {
	FilePath string   `json:"file_path"`
	Args     []string `json:"args"`
}

func (s *ScriptTool) Execute(ctx context.Context, raw map[string]any) Result {
	name := s.Spec().Name
	var args scriptArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(name, err)
	}

	target, err := s.root.Resolve(args.FilePath)
	if err != nil {
		return failure(name, fmt.Errorf("cannot execute %q: %w", args.FilePath, err))
	}
	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return failure(name, fmt.Errorf("%q does not exist or is not a regular file: %w", args.FilePath, ErrNotFound))
	}
	if !strings.HasSuffix(args.FilePath, s.ext) {
		return failure(name, fmt.Errorf("%q is not a %s file: %w", args.FilePath, s.ext, ErrWrongFileKind))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.interpreter, append([]string{target}, args.Args...)...)
	cmd.Dir = s.root.Path()
	configureProcess(cmd)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return failure(name, fmt.Errorf("executing %q: script %w after %s", args.FilePath, ErrTimeout, s.timeout))
		}
		return failure(name, fmt.Errorf("executing %q: %w", args.FilePath, ctxErr))
	}

	exitCode := 0
	if err != nil {
		if exitErr := (&exec.ExitError{}); errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return failure(name, fmt.Errorf("executing %q: %w: %v", args.FilePath, ErrSpawn, err))
		}
	}
	return success(name, formatScriptOutput(exitCode, stdout.String(), stderr.String()))
}

// formatScriptOutput reports a non-zero exit code in place of the streams.
func formatScriptOutput(exitCode int, stdout, stderr string) string {
	if exitCode != 0 {
		return fmt.Sprintf("Process exited with code %d", exitCode)
	}
	if stdout == "" && stderr == "" {
		return "No output produced"
	}
	var parts []string
	if stdout != "" {
		parts = append(parts, "STDOUT: "+stdout)
	}
	if stderr != "" {
		parts = append(parts, "STDERR: "+stderr)
	}
	return strings.Join(parts, "\n")
}
