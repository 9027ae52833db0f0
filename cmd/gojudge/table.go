package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/datar-psa/gojudge/judgment"
)

func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the effective score table",
		Long: `Print the score table after applying the scoring overrides from --config.
Environment overrides (GOJUDGE_SCORING_*) apply when a config file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			table, err := cfg.Scoring.Table()
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), table.Map())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERDICT\tHIGH\tMEDIUM\tLOW")
			for _, v := range []judgment.Verdict{judgment.VerdictPass, judgment.VerdictFail} {
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", v,
					table.Weight(v, judgment.ConfidenceHigh),
					table.Weight(v, judgment.ConfidenceMedium),
					table.Weight(v, judgment.ConfidenceLow),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Bool("json", false, "print the table as JSON")

	return cmd
}
