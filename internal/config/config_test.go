package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChunkSize != 4000 || cfg.ChunkOverlap != 200 || cfg.TopChunks != 5 {
		t.Errorf("unexpected chunk defaults %d/%d/%d", cfg.ChunkSize, cfg.ChunkOverlap, cfg.TopChunks)
	}
	if cfg.ExtractDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %s", cfg.ExtractDelay)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Errorf("expected 120s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.LLMProvider != "openai" || cfg.MergePolicy != "first" {
		t.Errorf("unexpected provider/policy %q/%q", cfg.LLMProvider, cfg.MergePolicy)
	}
	if cfg.Keywords != nil {
		t.Errorf("expected nil keywords, got %v", cfg.Keywords)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TOP_CHUNKS", "8")
	t.Setenv("EXTRACT_DELAY", "2s")
	t.Setenv("KEYWORDS", "emissions, Scope 1 ,,net zero")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("STRICT_FIELDS", "true")
	t.Setenv("WORKER_COUNT", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopChunks != 8 || cfg.ExtractDelay != 2*time.Second {
		t.Errorf("env not applied: top=%d delay=%s", cfg.TopChunks, cfg.ExtractDelay)
	}
	if want := []string{"emissions", "Scope 1", "net zero"}; !reflect.DeepEqual(cfg.Keywords, want) {
		t.Errorf("expected %v, got %v", want, cfg.Keywords)
	}
	if cfg.LLMProvider != "gemini" || !cfg.StrictFields {
		t.Errorf("unexpected provider %q strict=%v", cfg.LLMProvider, cfg.StrictFields)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected invalid worker count to fall back to 2, got %d", cfg.WorkerCount)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "susdigest.yaml")
	body := "top_chunks: 3\nkeywords:\n  - water\n  - MWh\nllm_model: file-model\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_MODEL", "env-model")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopChunks != 3 {
		t.Errorf("expected top 3 from file, got %d", cfg.TopChunks)
	}
	if want := []string{"water", "MWh"}; !reflect.DeepEqual(cfg.Keywords, want) {
		t.Errorf("expected %v, got %v", want, cfg.Keywords)
	}
	if cfg.LLMModel != "env-model" {
		t.Errorf("expected env to win, got %q", cfg.LLMModel)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{LLMProvider: "openai", LLMAPIKey: "k", LLMModel: "m", ChunkSize: 4000, ChunkOverlap: 200, TopChunks: 5, MergePolicy: "first"}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.LLMAPIKey = "" }},
		{"compat without url", func(c *Config) { c.LLMProvider = "compat"; c.LLMAPIKey = "" }},
		{"unknown provider", func(c *Config) { c.LLMProvider = "llama" }},
		{"overlap too big", func(c *Config) { c.ChunkOverlap = 4000 }},
		{"no chunks", func(c *Config) { c.TopChunks = 0 }},
		{"bad policy", func(c *Config) { c.MergePolicy = "last" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}

	compat := base
	compat.LLMProvider, compat.LLMAPIKey, compat.LLMBaseURL = "compat", "", "http://localhost:8000/v1"
	if err := compat.Validate(); err != nil {
		t.Errorf("compat without key should be valid: %v", err)
	}

	if err := base.ValidateServer(); err == nil {
		t.Error("expected server validation to require auth")
	}
	base.JWTSecret = "s"
	if err := base.ValidateServer(); err != nil {
		t.Errorf("expected JWT secret to satisfy server auth: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "": slog.LevelInfo, "loud": slog.LevelInfo} {
		if got := (Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q): expected %s, got %s", in, want, got)
		}
	}
}
