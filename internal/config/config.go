package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Logging
	LogFormat string
	LogLevel  string

	// LLM provider
	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMStatsWindow  time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Sessions
	MaxSessions int
	SessionTTL  time.Duration

	// Summaries
	SummaryChunkTokens int

	// PDF
	PDFFallbackPdftotext bool
}

var defaults = map[string]any{
	"PORT":                   "8501",
	"LOG_FORMAT":             "json",
	"LOG_LEVEL":              "info",
	"LLM_PROVIDER":           "gemini",
	"GEMINI_MODEL":           "gemini-flash-lite-latest",
	"ANTHROPIC_MODEL":        "claude-sonnet-4-5-20250929",
	"LLM_STATS_WINDOW":       "1h",
	"MAX_UPLOAD_BYTES":       52428800, // 50MB
	"MAX_SESSIONS":           256,
	"SESSION_TTL":            "2h",
	"SUMMARY_CHUNK_TOKENS":   6000,
	"PDF_FALLBACK_PDFTOTEXT": true,
}

// Load reads the configuration from the environment and, when it exists,
// the dotenv file envFile. Environment variables win over the file and
// overrides (usually command line flags) win over both.
func Load(envFile string, overrides map[string]any) (Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	for key, val := range overrides {
		v.Set(key, val)
	}

	cfg := Config{
		Port: v.GetString("PORT"),

		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),

		LLMProvider:     strings.ToLower(v.GetString("LLM_PROVIDER")),
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		AnthropicAPIKey: v.GetString("ANTHROPIC_API_KEY"),
		AnthropicModel:  v.GetString("ANTHROPIC_MODEL"),
		LLMStatsWindow:  v.GetDuration("LLM_STATS_WINDOW"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		MaxSessions: v.GetInt("MAX_SESSIONS"),
		SessionTTL:  v.GetDuration("SESSION_TTL"),

		SummaryChunkTokens: v.GetInt("SUMMARY_CHUNK_TOKENS"),

		PDFFallbackPdftotext: v.GetBool("PDF_FALLBACK_PDFTOTEXT"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.SummaryChunkTokens <= 0 {
		cfg.SummaryChunkTokens = 6000
	}
	if cfg.LLMStatsWindow <= 0 {
		cfg.LLMStatsWindow = time.Hour
	}

	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LLMProvider {
	case "gemini", "anthropic":
	default:
		return fmt.Errorf("LLM_PROVIDER must be gemini or anthropic, got %q", c.LLMProvider)
	}
	return nil
}
