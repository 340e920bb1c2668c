package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"podium/internal/athlete/models"
	"podium/internal/cleaning"
	"podium/internal/ingest"
)

type cleanResult struct {
	DecodeIssues int                    `json:"decode_issues"`
	Report       *models.CleaningReport `json:"report"`
}

func cleanCmd(opts *options) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "clean",
		Short: "Run the cleaning pipeline and report what every step changed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := cleaning.LoadRules(opts.rulesPath)
			if err != nil {
				return err
			}
			table, err := ingest.LoadTable(cmd.Context(), opts.dataPath)
			if err != nil {
				return err
			}
			if err := ingest.RequireColumns(table, ingest.EssentialColumns...); err != nil {
				return err
			}
			entries, issues := ingest.DecodeEntries(table)
			cleaned, report, err := cleaning.New(rules, cleaning.WithLogger(opts.logger(cmd))).Clean(cmd.Context(), entries)
			if err != nil {
				return err
			}

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := ingest.WriteEntries(f, cleaned); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			if opts.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), cleanResult{DecodeIssues: len(issues), Report: report})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "decode issues: %d\n", len(issues))
			return writeCleaningText(cmd.OutOrStdout(), report)
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "", "write the cleaned entries to this CSV file")
	return c
}
