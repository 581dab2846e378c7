package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultProvider      = ProviderGemini
	DefaultModel         = "gemini-2.5-flash"
	DefaultOpenAIModel   = "openai/gpt-4o-mini"
	DefaultBaseURL       = "https://openrouter.ai/api/v1"
	DefaultMaxIterations = 20
	DefaultTimeout       = 5 * time.Minute
	DefaultMaxChars      = 10000
	DefaultScriptTimeout = 30 * time.Second
	DefaultInterpreter   = "python3"
	DefaultScriptExt     = ".py"
)

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("api key is required")

// ToolLimits bounds what the sandboxed tools may do.
type ToolLimits struct {
	MaxChars      int
	ScriptTimeout time.Duration
	Interpreter   string
	ScriptExt     string
}

// Config holds runtime configuration values. It is built once in main and
// passed down explicitly.
type Config struct {
	Provider      string
	Model         string
	BaseURL       string
	APIKey        string
	MockLLM       bool
	WorkDir       string
	MaxIterations int
	Temperature   float32
	Timeout       time.Duration
	Verbose       bool
	JSON          bool
	ToolLimits    ToolLimits
}

type rawToolLimits struct {
	MaxChars      int    `mapstructure:"max_chars"`
	ScriptTimeout string `mapstructure:"script_timeout"`
	Interpreter   string `mapstructure:"interpreter"`
	ScriptExt     string `mapstructure:"script_ext"`
}

type rawConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	MockLLM       bool          `mapstructure:"mock_llm"`
	WorkDir       string        `mapstructure:"workdir"`
	MaxIterations int           `mapstructure:"max_iterations"`
	Temperature   float32       `mapstructure:"temperature"`
	Timeout       string        `mapstructure:"timeout"`
	Verbose       bool          `mapstructure:"verbose"`
	JSON          bool          `mapstructure:"json"`
	ToolLimits    rawToolLimits `mapstructure:"tool_limits"`
}

// Load resolves configuration from defaults, config files, .env, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AGENTBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("api_key", "")
	v.SetDefault("mock_llm", false)
	v.SetDefault("workdir", ".")
	v.SetDefault("max_iterations", DefaultMaxIterations)
	v.SetDefault("temperature", 0)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("verbose", false)
	v.SetDefault("json", false)
	v.SetDefault("tool_limits.max_chars", DefaultMaxChars)
	v.SetDefault("tool_limits.script_timeout", DefaultScriptTimeout.String())
	v.SetDefault("tool_limits.interpreter", DefaultInterpreter)
	v.SetDefault("tool_limits.script_ext", DefaultScriptExt)

	if cmd != nil {
		_ = v.BindPFlag("provider", cmd.Flags().Lookup("provider"))
		_ = v.BindPFlag("model", cmd.Flags().Lookup("model"))
		_ = v.BindPFlag("workdir", cmd.Flags().Lookup("workdir"))
		_ = v.BindPFlag("max_iterations", cmd.Flags().Lookup("max-iterations"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
		_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &raw, WeaklyTypedInput: true})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, err
	}

	timeout, err := parseDuration(raw.Timeout, DefaultTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
	}
	scriptTimeout, err := parseDuration(raw.ToolLimits.ScriptTimeout, DefaultScriptTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid script timeout duration: %w", err)
	}

	cfg := Config{
		Provider:      strings.ToLower(strings.TrimSpace(raw.Provider)),
		Model:         raw.Model,
		BaseURL:       raw.BaseURL,
		APIKey:        raw.APIKey,
		MockLLM:       raw.MockLLM,
		WorkDir:       raw.WorkDir,
		MaxIterations: raw.MaxIterations,
		Temperature:   raw.Temperature,
		Timeout:       timeout,
		Verbose:       raw.Verbose,
		JSON:          raw.JSON,
		ToolLimits: ToolLimits{
			MaxChars:      raw.ToolLimits.MaxChars,
			ScriptTimeout: scriptTimeout,
			Interpreter:   raw.ToolLimits.Interpreter,
			ScriptExt:     raw.ToolLimits.ScriptExt,
		},
	}

	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Provider != ProviderGemini && cfg.Provider != ProviderOpenAI {
		return Config{}, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, ProviderGemini, ProviderOpenAI)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = lookupAPIKey(cfg.Provider)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values. Load calls it; tests building a Config
// literal can call it too.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Model == "" {
		c.Model = DefaultModel
		if c.Provider == ProviderOpenAI {
			c.Model = DefaultOpenAIModel
		}
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ToolLimits.MaxChars <= 0 {
		c.ToolLimits.MaxChars = DefaultMaxChars
	}
	if c.ToolLimits.ScriptTimeout <= 0 {
		c.ToolLimits.ScriptTimeout = DefaultScriptTimeout
	}
	if c.ToolLimits.Interpreter == "" {
		c.ToolLimits.Interpreter = DefaultInterpreter
	}
	if c.ToolLimits.ScriptExt == "" {
		c.ToolLimits.ScriptExt = DefaultScriptExt
	}
	if !strings.HasPrefix(c.ToolLimits.ScriptExt, ".") {
		c.ToolLimits.ScriptExt = "." + c.ToolLimits.ScriptExt
	}
}

// Validate reports configuration that cannot start a run.
func (c Config) Validate() error {
	if c.APIKey == "" && !c.MockLLM {
		return fmt.Errorf("%w: set %s", ErrMissingAPIKey, strings.Join(apiKeyEnv(c.Provider), " or "))
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func apiKeyEnv(provider string) []string {
	if provider == ProviderOpenAI {
		return []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY"}
	}
	return []string{"GEMINI_API_KEY"}
}

// lookupAPIKey checks the process environment first, then a .env file in
// the current directory.
func lookupAPIKey(provider string) string {
	names := apiKeyEnv(provider)
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	dotenv := loadDotEnv(".env")
	if dotenv == nil {
		return ""
	}
	for _, name := range names {
		if value := dotenv.GetString(strings.ToLower(name)); value != "" {
			return value
		}
	}
	return ""
}

func loadDotEnv(path string) *viper.Viper {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil
	}
	return v
}

func loadConfigFile(v *viper.Viper) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "agentbox")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
