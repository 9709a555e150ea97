package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Extract several reports into comparison tables",
	Long: `Run the extraction pipeline on each report and write comparison.csv,
comparison.json and comparison.xlsx to --out-dir. A report that fails still
gets a row of empty values so the table keeps one row per company.

Examples:
  susdigest batch reports/*.pdf --out-dir results
  susdigest batch google.pdf apple.pdf --concurrency 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("out-dir", ".", "directory for the comparison tables")
	f.Int("concurrency", 1, "documents processed at once")
	llmFlags(f)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	stats := extract.NewLLMStats(0)
	p, closeLLM, err := pipeline.Build(ctx, cfg, stats, log)
	if err != nil {
		return err
	}
	defer closeLLM()
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	inputs := make([]pipeline.Input, len(args))
	for i, path := range args {
		inputs[i] = pipeline.Input{Filename: path}
	}
	results, summary := p.RunBatch(ctx, inputs, cfg.BatchConcurrency)
	for _, res := range results {
		persist(ctx, st, p.Model(), res, log)
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	records := pipeline.Records(results)
	for _, name := range []string{"comparison.csv", "comparison.json", "comparison.xlsx"} {
		path := filepath.Join(outDir, name)
		if err := writeTable(path, records); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	log.Info("wrote tables", "dir", outDir, "rows", len(records), "llm", stats.Snapshot(), "rate_limit", p.RateLimit())

	docs := make([]map[string]any, len(results))
	for i, res := range results {
		d := map[string]any{
			"source":    res.Source,
			"subject":   res.Subject,
			"attempted": res.Attempted,
			"succeeded": res.Succeeded,
			"no_data":   res.NoData,
			"filled":    res.Record.Filled(),
		}
		if res.Err != nil {
			d["error"] = res.Err.Error()
		}
		docs[i] = d
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"summary": summary, "documents": docs})
}
