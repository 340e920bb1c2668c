package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"podium/internal/athlete/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeProfileText(w io.Writer, p *models.Profile) error {
	fmt.Fprintf(w, "rows: %d  columns: %d  duplicate rows: %d\n\n", p.Rows, p.Columns, p.DuplicateRows)

	tw := newTable(w)
	fmt.Fprintln(tw, "COLUMN\tKIND\tMISSING\tDISTINCT\tINVALID\tSUMMARY")
	for _, c := range p.ColumnStats {
		summary := ""
		if c.Summary != nil {
			s := c.Summary
			summary = fmt.Sprintf("min=%g q1=%g median=%g q3=%g max=%g mean=%.2f sd=%.2f",
				s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Mean, s.StdDev)
		} else if len(c.TopValues) > 0 {
			top := make([]string, len(c.TopValues))
			for i, v := range c.TopValues {
				top[i] = fmt.Sprintf("%s (%d)", v.Value, v.Count)
			}
			summary = strings.Join(top, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d (%.1f%%)\t%d\t%d\t%s\n",
			c.Name, c.Kind, c.Missing, c.MissingRatio*100, c.Distinct, c.Invalid, summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(p.Issues) > 0 {
		fmt.Fprintln(w, "\nissues:")
		for _, issue := range p.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
	return nil
}

func writeCleaningText(w io.Writer, r *models.CleaningReport) error {
	fmt.Fprintf(w, "input rows: %d  output rows: %d\n\n", r.InputRows, r.OutputRows)
	tw := newTable(w)
	fmt.Fprintln(tw, "STEP\tAFFECTED\tDROPPED")
	for _, s := range r.Steps {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Name, s.Affected, s.Dropped)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nmissing after cleaning:")
	for _, m := range models.Metrics {
		fmt.Fprintf(w, "  %s: %d\n", m, r.MissingAfter[m])
	}
	return nil
}
