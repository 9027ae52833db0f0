package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

type extractOutput struct {
	judgment.Judgment
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Parse a raw judge answer and score it",
		Long: `Read a raw judge answer from a file or stdin, extract the judgment with
the strategy chain (whole-text JSON, embedded JSON object, labeled sections)
and print it together with its score as JSON.

Exits with status 2 when no strategy yields a valid judgment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			table, err := cfg.Scoring.Table()
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			fields, _ := cmd.Flags().GetStringSlice("field")
			extractor := judgment.NewExtractor(judgment.WithRequiredFields(fields...))

			j, strategy, err := extractor.ExtractWithStrategy(raw)
			if err != nil {
				logger.Debug("extraction failed", "source", path, "error", err)
				return err
			}
			logger.Debug("judgment extracted", "source", path, "strategy", strategy)

			return writeJSON(cmd.OutOrStdout(), extractOutput{
				Judgment: j,
				Strategy: strategy,
				Score:    scoring.Score(j, table),
			})
		},
	}

	cmd.Flags().StringSlice("field", nil, "additional required field (repeatable)")

	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
