package config

import (
	"fmt"
	"strings"
	"time"

	internal "github.com/arborhq/arbor/arbor"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Arbor        ArborConfig        `mapstructure:"arbor"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Tree         TreeConfig         `mapstructure:"tree"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to the embedded .db file
}

// ArborConfig stores application-level settings.
type ArborConfig struct {
	DataDir  string         `mapstructure:"data_dir"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ConversationConfig stores settings for the conversation engine.
type ConversationConfig struct {
	HistoryCapacity int `mapstructure:"history_capacity"` // Bounded ledger size
	RecentWindow    int `mapstructure:"recent_window"`    // Turns sent to the assistant
	MaxMessageLen   int `mapstructure:"max_message_len"`  // Utterance length bound

	// Rate limiting for assistant calls
	RateLimitEnabled    bool          `mapstructure:"rate_limit_enabled"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"`

	// Telemetry
	EnableTracing bool `mapstructure:"enable_tracing"`

	// Transcript persistence (best effort, off the turn's critical path)
	TranscriptEnabled bool `mapstructure:"transcript_enabled"`
}

// LLMConfig stores assistant provider configurations.
type LLMConfig struct {
	BaseURL      string        `mapstructure:"base_url"`       // OpenAI-compatible endpoint
	APIKey       string        `mapstructure:"api_key"`        // Bearer token, usually from env
	Model        string        `mapstructure:"model"`          // Model identifier
	MaxNewTokens int           `mapstructure:"max_new_tokens"` // Max tokens to generate
	Temperature  float32       `mapstructure:"temperature"`    // Sampling temperature
	Timeout      time.Duration `mapstructure:"timeout"`        // Per-request HTTP timeout
}

// TreeConfig stores document tree settings.
type TreeConfig struct {
	AutosaveInterval     time.Duration `mapstructure:"autosave_interval"`
	SummaryCacheCapacity int           `mapstructure:"summary_cache_capacity"`
	SummaryMaxLen        int           `mapstructure:"summary_max_len"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.Reset()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Application defaults
	viper.SetDefault("arbor.data_dir", internal.DefaultDataDir())
	viper.SetDefault("arbor.database.path", internal.DefaultDatabasePath())

	// Conversation defaults
	viper.SetDefault("conversation.history_capacity", 100)
	viper.SetDefault("conversation.recent_window", 5)
	viper.SetDefault("conversation.max_message_len", 4000)
	viper.SetDefault("conversation.rate_limit_enabled", true)
	viper.SetDefault("conversation.rate_limit_capacity", 10)
	viper.SetDefault("conversation.rate_limit_refill_rate", "1s")
	viper.SetDefault("conversation.enable_tracing", true)
	viper.SetDefault("conversation.transcript_enabled", true)

	// LLM defaults
	viper.SetDefault("llm.base_url", "http://localhost:11434/v1")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.model", "llama3.1")
	viper.SetDefault("llm.max_new_tokens", 1024)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.timeout", "60s")

	// Tree defaults
	viper.SetDefault("tree.autosave_interval", "30s")
	viper.SetDefault("tree.summary_cache_capacity", 256)
	viper.SetDefault("tree.summary_max_len", 500)

	viper.AutomaticEnv()
	// Replace dots with underscores in env var names, e.g. llm.api_key becomes LLM_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. Not an error to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
