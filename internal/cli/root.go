// Package cli runs the profiling, cleaning and reporting pipeline offline
// against local CSV files.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"podium/internal/platform/config"
	"podium/internal/platform/logger"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// options are the flags shared by every command.
type options struct {
	dataPath   string
	coordsPath string
	rulesPath  string
	format     string
	verbose    bool
}

func (o *options) validate() error {
	if o.format != FormatJSON && o.format != FormatText {
		return fmt.Errorf("unknown format %q: use %s or %s", o.format, FormatJSON, FormatText)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "podium",
		Short:         "Profile, clean and explore the Olympic athlete dataset",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dataPath, "data", "jjoo.csv", "participation CSV file")
	flags.StringVar(&opts.coordsPath, "coords", "", "NOC coordinates CSV file (optional)")
	flags.StringVar(&opts.rulesPath, "rules", "", "cleaning rules YAML file (defaults when empty)")
	flags.StringVarP(&opts.format, "format", "f", FormatText, "output format: json or text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")

	cmd.AddCommand(
		profileCmd(opts),
		cleanCmd(opts),
		reportCmd(opts),
		tokenCmd(opts),
	)
	return cmd
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return logger.Discard()
	}
	return logger.NewWithWriter(config.LogConfig{Level: "debug"}, cmd.ErrOrStderr())
}
