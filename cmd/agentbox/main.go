package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agentbox/internal/agent"
	"agentbox/internal/config"
	"agentbox/internal/llm"
	"agentbox/internal/render"
	"agentbox/internal/sandbox"
	"agentbox/internal/tools"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reportedError marks a run failure the renderer or JSON payload already
// showed to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	// cobra falls back to os.Args on a nil slice
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentbox [prompt]",
		Short:         "agentbox - tool-using coding agent confined to a working directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			root, err := sandbox.NewRoot(cfg.WorkDir)
			if err != nil {
				return err
			}
			registry := tools.NewRegistry(tools.Builtin(root, cfg.ToolLimits)...)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			client, err := buildClient(ctx, cfg)
			if err != nil {
				return err
			}
			logger.Debug("starting run",
				zap.String("provider", cfg.Provider),
				zap.String("model", cfg.Model),
				zap.String("root", root.Path()),
				zap.Bool("mock", cfg.MockLLM))

			if cfg.JSON {
				ag := agent.NewAgent(client, registry, root, nil, logger, cfg)
				result, runErr := ag.Run(ctx, prompt)
				payload, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, string(payload))
				if runErr != nil {
					return &reportedError{err: runErr}
				}
				return nil
			}

			renderer := render.NewStdoutRenderer(stdout, cfg.Verbose)
			ag := agent.NewAgent(client, registry, root, renderer, logger, cfg)
			_, runErr := ag.Run(ctx, prompt)
			_ = renderer.Close()
			if runErr != nil {
				return &reportedError{err: runErr}
			}
			return nil
		},
	}

	cmd.Flags().String("provider", config.DefaultProvider, "Model provider (gemini or openai)")
	cmd.Flags().String("model", "", "Model name (defaults per provider)")
	cmd.Flags().String("workdir", ".", "Working directory the tools are confined to")
	cmd.Flags().Int("max-iterations", config.DefaultMaxIterations, "Maximum model calls per run")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Overall run timeout (e.g. 5m)")
	cmd.Flags().Bool("verbose", false, "Print prompt, token usage and tool output")
	cmd.Flags().Bool("json", false, "Output the run result as JSON")

	return cmd
}

func buildClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch {
	case cfg.MockLLM:
		return llm.NewMockClient(), nil
	case cfg.Provider == config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL), nil
	default:
		return llm.NewGeminiClient(ctx, cfg.APIKey)
	}
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
