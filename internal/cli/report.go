package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	analysismodels "podium/internal/analysis/models"
	analysisservice "podium/internal/analysis/service"
	"podium/internal/athlete/models"
	"podium/internal/cleaning"
	datasetservice "podium/internal/dataset/service"
	"podium/internal/dataset/store"
	dErrors "podium/pkg/domain-errors"
)

// Report is the offline summary of one dataset.
type Report struct {
	Snapshot models.SnapshotSummary       `json:"snapshot"`
	Overview analysismodels.Overview      `json:"overview"`
	Filters  analysismodels.FilterOptions `json:"filters"`
	Medals   []analysismodels.MedalRow    `json:"medals"`
	Cleaning *models.CleaningReport       `json:"cleaning"`
}

func reportCmd(opts *options) *cobra.Command {
	var (
		top    int
		sortBy string
	)

	c := &cobra.Command{
		Use:   "report",
		Short: "Load, clean and summarize the dataset with a medal table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if top < analysismodels.MinMedalTop || top > analysismodels.MaxMedalTop {
				return dErrors.Newf(dErrors.CodeValidation, "top must be between %d and %d", analysismodels.MinMedalTop, analysismodels.MaxMedalTop)
			}
			by, err := analysismodels.ParseMedalSort(sortBy)
			if err != nil {
				return err
			}
			rules, err := cleaning.LoadRules(opts.rulesPath)
			if err != nil {
				return err
			}
			log := opts.logger(cmd)
			ctx := cmd.Context()

			datasets, err := datasetservice.New(store.NewInMemory(), datasetservice.Sources{
				DataPath:   opts.dataPath,
				CoordsPath: opts.coordsPath,
			}, cleaning.New(rules, cleaning.WithLogger(log)), datasetservice.WithLogger(log))
			if err != nil {
				return err
			}
			snap, err := datasets.Reload(ctx)
			if err != nil {
				return err
			}
			analyses, err := analysisservice.New(datasets, analysisservice.WithLogger(log))
			if err != nil {
				return err
			}

			r := Report{Snapshot: snap.Summary(), Cleaning: snap.Cleaning}
			if r.Overview, err = analyses.Overview(ctx, analysismodels.Filter{}); err != nil {
				return err
			}
			if r.Filters, err = analyses.FilterOptions(ctx); err != nil {
				return err
			}
			if r.Medals, err = analyses.MedalTable(ctx, analysismodels.Filter{}, by, top); err != nil {
				return err
			}

			if opts.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeReportText(cmd, r)
		},
	}
	c.Flags().IntVar(&top, "top", analysismodels.DefaultMedalTop, "rows in the medal table")
	c.Flags().StringVar(&sortBy, "sort-by", string(analysismodels.SortTotalMedals), "medal table order")
	return c
}

func writeReportText(cmd *cobra.Command, r Report) error {
	w := cmd.OutOrStdout()
	o := r.Overview
	fmt.Fprintf(w, "snapshot %s (%s)\n", r.Snapshot.ID, r.Snapshot.Source)
	fmt.Fprintf(w, "years %d-%d  athletes %d  entries %d  nocs %d  editions %d  disciplines %d  medals %d\n\n",
		r.Filters.MinYear, r.Filters.MaxYear, o.Athletes, o.Entries, o.NOCs, o.Editions, o.Disciplines, o.Medals)

	tw := newTable(w)
	fmt.Fprintln(tw, "NOC\tATHLETES\tMEDALS\tGOLD\tSILVER\tBRONZE")
	for _, m := range r.Medals {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", m.NOC, m.TotalAthletes, m.TotalMedals, m.Gold, m.Silver, m.Bronze)
	}
	return tw.Flush()
}
