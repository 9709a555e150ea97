package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/susdigest/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "susdigest",
	Short: "Extract sustainability metrics from corporate reports",
	Long: `susdigest pulls emissions, energy, climate-target and water metrics out of
sustainability reports and builds comparison tables.

For each document it:
  - extracts the text (PDF, DOCX, HTML, Markdown, CSV, plain text)
  - splits it into overlapping windows and ranks them by keyword relevance
  - asks an LLM to fill the metric schema from the top windows
  - merges the partial answers into one record per company

Configuration comes from the environment (or a .env file) and an optional
--config file. See "susdigest schema" for the fields extracted.`,
	SilenceUsage: true,
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"provider":    "llm_provider",
	"model":       "llm_model",
	"base-url":    "llm_base_url",
	"top":         "top_chunks",
	"delay":       "extract_delay",
	"merge":       "merge_policy",
	"strict":      "strict_fields",
	"concurrency": "batch_concurrency",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(extractCmd, batchCmd, watchCmd, validateCmd, schemaCmd)
}

// llmFlags adds the flags shared by commands that call the LLM.
func llmFlags(fs *pflag.FlagSet) {
	fs.String("provider", "", "LLM provider: openai, compat, gemini, anthropic")
	fs.String("model", "", "LLM model name")
	fs.String("base-url", "", "LLM base URL")
	fs.Int("top", 0, "number of top-ranked chunks sent to the LLM")
	fs.Duration("delay", 0, "pause between LLM calls")
	fs.String("merge", "", "merge policy: first or majority")
	fs.Bool("strict", false, "reject unknown fields in LLM replies")
}

// loadConfig layers defaults, the config file, the environment and any
// flags the user set on cmd.
func loadConfig(cmd *cobra.Command, validate bool) (config.Config, *slog.Logger, error) {
	v := config.NewViper()
	if err := config.ReadFile(v, cfgFile); err != nil {
		return config.Config{}, nil, err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = err
			}
		}
	})
	if bindErr != nil {
		return config.Config{}, nil, bindErr
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if validate {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, log, nil
}
