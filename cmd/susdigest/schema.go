package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the record JSON Schema and the field guide sent to the LLM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}
		guide := make([]map[string]string, 0, len(report.Fields))
		for _, f := range report.Fields {
			guide = append(guide, map[string]string{
				"name":        f.Name,
				"type":        string(f.Kind),
				"description": extract.FieldGuide[f.Name],
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"schema": report.JSONSchema(cfg.StrictFields),
			"fields": guide,
		})
	},
}
