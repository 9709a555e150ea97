package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	// LLM backend
	LLMProvider          string
	LLMBaseURL           string
	LLMAPIKey            string
	LLMModel             string
	LLMTimeout           time.Duration
	LLMMaxRetries        int
	LLMRequestsPerMinute int
	LLMDisableThinking   bool

	// Chunking and extraction
	ChunkSize    int
	ChunkOverlap int
	TopChunks    int
	ExtractDelay time.Duration
	Keywords     []string // nil means the built-in list
	StrictFields bool
	MergePolicy  string

	BatchConcurrency int

	// Result store. Postgres wins over Redis; neither means memory.
	RedisURL    string
	DatabaseURL string
	ResultTTL   time.Duration

	// Server
	Port           string
	APIKey         string
	JWTSecret      string
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

var defaults = map[string]any{
	"llm_provider":            "openai",
	"llm_base_url":            "",
	"llm_api_key":             "",
	"llm_model":               "qwen3",
	"llm_timeout":             "120s",
	"llm_max_retries":         2,
	"llm_requests_per_minute": 0,
	"llm_disable_thinking":    false,

	"chunk_size":    4000,
	"chunk_overlap": 200,
	"top_chunks":    5,
	"extract_delay": "500ms",
	"keywords":      "",
	"strict_fields": false,
	"merge_policy":  "first",

	"batch_concurrency": 1,

	"redis_url":    "",
	"database_url": "",
	"result_ttl":   "0s",

	"port":              "8090",
	"susdigest_api_key": "",
	"jwt_secret":        "",
	"worker_count":      2,
	"max_queue_size":    100,
	"max_upload_bytes":  52428800, // 50MB
	"job_ttl":           "1h",

	"pdf_fallback_pdftotext": true,

	"log_level": "info",
}

// NewViper returns a viper instance with defaults set and environment
// lookup enabled. A .env file in the working directory is loaded first if
// present. Callers may bind flags onto it before calling FromViper.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML, TOML or JSON config file into v. Keys are the
// lowercase environment names. Environment variables still win.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path (optional) and the environment.
func LoadFile(path string) (Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper builds a Config and fills zero values with defaults.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		LLMProvider:          strings.ToLower(v.GetString("llm_provider")),
		LLMBaseURL:           v.GetString("llm_base_url"),
		LLMAPIKey:            v.GetString("llm_api_key"),
		LLMModel:             v.GetString("llm_model"),
		LLMTimeout:           v.GetDuration("llm_timeout"),
		LLMMaxRetries:        v.GetInt("llm_max_retries"),
		LLMRequestsPerMinute: v.GetInt("llm_requests_per_minute"),
		LLMDisableThinking:   v.GetBool("llm_disable_thinking"),

		ChunkSize:    v.GetInt("chunk_size"),
		ChunkOverlap: v.GetInt("chunk_overlap"),
		TopChunks:    v.GetInt("top_chunks"),
		ExtractDelay: v.GetDuration("extract_delay"),
		Keywords:     splitList(v.Get("keywords")),
		StrictFields: v.GetBool("strict_fields"),
		MergePolicy:  strings.ToLower(v.GetString("merge_policy")),

		BatchConcurrency: v.GetInt("batch_concurrency"),

		RedisURL:    v.GetString("redis_url"),
		DatabaseURL: v.GetString("database_url"),
		ResultTTL:   v.GetDuration("result_ttl"),

		Port:           v.GetString("port"),
		APIKey:         v.GetString("susdigest_api_key"),
		JWTSecret:      v.GetString("jwt_secret"),
		WorkerCount:    v.GetInt("worker_count"),
		MaxQueueSize:   v.GetInt("max_queue_size"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		JobTTL:         v.GetDuration("job_ttl"),

		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),

		LogLevel: v.GetString("log_level"),
	}

	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.LLMMaxRetries < 0 {
		cfg.LLMMaxRetries = 0
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.ExtractDelay < 0 {
		cfg.ExtractDelay = 0
	}
	return cfg, nil
}

// splitList accepts a comma-separated string or a list from a config file.
func splitList(raw any) []string {
	var parts []string
	switch t := raw.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks what every command needs.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "gemini", "anthropic":
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %s", c.LLMProvider)
		}
	case "compat":
		if c.LLMBaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required for provider compat")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not one of openai, compat, gemini, anthropic", c.LLMProvider)
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.ChunkOverlap < 0 || c.ChunkSize <= c.ChunkOverlap {
		return fmt.Errorf("CHUNK_SIZE (%d) must exceed CHUNK_OVERLAP (%d)", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopChunks <= 0 {
		return fmt.Errorf("TOP_CHUNKS must be positive")
	}
	if c.MergePolicy != "first" && c.MergePolicy != "majority" {
		return fmt.Errorf("MERGE_POLICY %q is not one of first, majority", c.MergePolicy)
	}
	return nil
}

// ValidateServer adds the checks the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" && c.JWTSecret == "" {
		return errors.New("SUSDIGEST_API_KEY or JWT_SECRET is required")
	}
	return nil
}

// SlogLevel maps LogLevel onto slog levels; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
