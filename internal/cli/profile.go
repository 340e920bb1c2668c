package cli

import (
	"github.com/spf13/cobra"

	"podium/internal/ingest"
	"podium/internal/profiling"
)

func profileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Describe the structure and quality of the raw participation file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := ingest.LoadTable(cmd.Context(), opts.dataPath)
			if err != nil {
				return err
			}
			p := profiling.Profile(table)
			if opts.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			return writeProfileText(cmd.OutOrStdout(), p)
		},
	}
}
