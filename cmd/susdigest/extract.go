package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract metrics from one report",
	Long: `Extract metrics from one report and print the merged record as JSON.

The company is inferred from the filename (google, apple, amazon, microsoft,
bp) unless --subject is given.

Examples:
  susdigest extract reports/google_2023.pdf
  susdigest extract esg.pdf --subject Tesla --out tesla.json
  susdigest extract apple.pdf --merge-into comparison.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("subject", "", "company name (default: inferred from filename)")
	f.String("out", "", "write the record to a .csv, .json or .xlsx file")
	f.String("merge-into", "", "replace or add this company's row in a .csv or .json table")
	llmFlags(f)
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	subject, _ := cmd.Flags().GetString("subject")
	res := p.Run(ctx, pipeline.Input{Subject: subject, Filename: args[0]})
	if res.Err != nil {
		return res.Err
	}
	if res.Interrupted {
		log.Warn("interrupted, writing partial result", "succeeded", res.Succeeded)
	}
	persist(ctx, st, p.Model(), res, log)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeTable(out, pipeline.Records([]pipeline.Result{res})); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Info("wrote record", "path", out)
	}
	if table, _ := cmd.Flags().GetString("merge-into"); table != "" {
		if err := mergeInto(table, res.Record); err != nil {
			return err
		}
		log.Info("merged row", "table", table, "subject", res.Subject)
	}

	log.Info("llm stats", "stats", stats.Snapshot())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Record)
}
