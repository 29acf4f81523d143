// Package config loads the tool configuration from .fdg/config.json inside the
// workspace root, with defaults suitable for a standard clang toolchain.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete fdg configuration
type Config struct {
	Version   int    `json:"version" mapstructure:"version"`
	Workspace string `json:"workspace" mapstructure:"workspace"`

	Compiler CompilerConfig `json:"compiler" mapstructure:"compiler"`
	LLM      LLMConfig      `json:"llm" mapstructure:"llm"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// CompilerConfig controls the header trace invocations
type CompilerConfig struct {
	// Binary is the compiler front end used for include traces
	Binary string `json:"binary" mapstructure:"binary"`
	// TraceTimeoutMs bounds one trace invocation; 0 means no timeout
	TraceTimeoutMs int `json:"traceTimeoutMs" mapstructure:"traceTimeoutMs"`
	// IgnorePrefixes lists toolchain roots whose headers are dropped from traces
	IgnorePrefixes []string `json:"ignorePrefixes" mapstructure:"ignorePrefixes"`
	// Workers bounds concurrent trace invocations; 0 means sequential
	Workers int `json:"workers" mapstructure:"workers"`
}

// LLMConfig controls the text-generation service
type LLMConfig struct {
	Model       string  `json:"model" mapstructure:"model"`
	APIBase     string  `json:"apiBase" mapstructure:"apiBase"`
	Temperature float32 `json:"temperature" mapstructure:"temperature"`
	NSample     int     `json:"nSample" mapstructure:"nSample"`
	MaxTokens   int     `json:"maxTokens" mapstructure:"maxTokens"`
	Retries     int     `json:"retries" mapstructure:"retries"`
}

// CacheConfig controls the persistent header-resolution cache
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		Workspace: ".",
		Compiler: CompilerConfig{
			Binary:         "clang++",
			TraceTimeoutMs: 0,
			IgnorePrefixes: []string{"/usr/lib/"},
			Workers:        0,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o",
			Temperature: 0.9,
			NSample:     10,
			MaxTokens:   2048,
			Retries:     5,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <workspace>/.fdg/config.json.
// A missing config file yields the defaults; FDG_* environment variables
// override individual keys (e.g. FDG_COMPILER_BINARY).
func LoadConfig(workspace string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("workspace", workspace)
	v.SetDefault("compiler.binary", def.Compiler.Binary)
	v.SetDefault("compiler.traceTimeoutMs", def.Compiler.TraceTimeoutMs)
	v.SetDefault("compiler.ignorePrefixes", def.Compiler.IgnorePrefixes)
	v.SetDefault("compiler.workers", def.Compiler.Workers)
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.apiBase", def.LLM.APIBase)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("llm.nSample", def.LLM.NSample)
	v.SetDefault("llm.maxTokens", def.LLM.MaxTokens)
	v.SetDefault("llm.retries", def.LLM.Retries)
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(workspace, ".fdg"))

	v.SetEnvPrefix("FDG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Missing file is fine, defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Workspace == "" {
		cfg.Workspace = workspace
	}

	return &cfg, nil
}

// Save writes the configuration to <workspace>/.fdg/config.json
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".fdg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Compiler.Binary == "" {
		return &ConfigError{Field: "compiler.binary", Message: "compiler binary must not be empty"}
	}
	if c.LLM.NSample < 1 {
		return &ConfigError{Field: "llm.nSample", Message: "sample count must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
