package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/parser"
	"github.com/dgallion1/susdigest/internal/pipeline"
	"github.com/dgallion1/susdigest/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract each report dropped into a directory",
	Long: `Watch a directory and run the extraction pipeline on every supported
report written into it. Each result replaces that company's row in --table.
Runs until interrupted.

Examples:
  susdigest watch inbox --table inbox/comparison.csv
  susdigest watch inbox --existing`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.String("table", "", "comparison table to update (default: <dir>/comparison.csv)")
	f.Bool("existing", false, "also process reports already in the directory")
	f.Duration("settle", 2*time.Second, "quiet period before a new file is read")
	llmFlags(f)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	p, closeLLM, err := pipeline.Build(ctx, cfg, extract.NewLLMStats(0), log)
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

	dir := args[0]
	table, _ := cmd.Flags().GetString("table")
	if table == "" {
		table = filepath.Join(dir, "comparison.csv")
	}
	existing, _ := cmd.Flags().GetBool("existing")
	settle, _ := cmd.Flags().GetDuration("settle")

	paths, err := watch.Start(ctx, watch.Config{
		Dir:         dir,
		Accept:      parser.IsSupportedExtension,
		Exclude:     []string{table},
		InitialScan: existing,
		Debounce:    settle,
	}, log)
	if err != nil {
		return err
	}
	log.Info("watching", "dir", dir, "table", table)

	for path := range paths {
		res := p.Run(ctx, pipeline.Input{Filename: path})
		if res.Err != nil {
			log.Error("skipped report", "path", path, "error", res.Err)
			continue
		}
		persist(ctx, st, p.Model(), res, log)
		if err := mergeInto(table, res.Record); err != nil {
			log.Error("table update failed", "table", table, "error", err)
			continue
		}
		log.Info("table updated", "subject", res.Subject, "fields_filled", res.Record.Filled())
		if ctx.Err() != nil {
			break
		}
	}
	return nil
}
