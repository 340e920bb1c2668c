// Package cleaning turns decoded entries into an analysis-ready set and
// reports what every step changed.
package cleaning

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"podium/internal/athlete/models"
)

var tracer = otel.Tracer("podium/internal/cleaning")

// Cleaner applies the configured steps in order.
type Cleaner struct {
	rules  Rules
	logger *slog.Logger
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets the logger used for per-step summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// New builds a Cleaner. Rules are expected to be validated already.
func New(rules Rules, opts ...Option) *Cleaner {
	c := &Cleaner{rules: rules}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the rules the cleaner runs with.
func (c *Cleaner) Rules() Rules {
	return c.rules
}

type stepFunc func(entries []models.Entry) ([]models.Entry, models.StepReport)

// Clean runs the pipeline over a copy of entries. The input slice is not
// modified.
func (c *Cleaner) Clean(ctx context.Context, entries []models.Entry) ([]models.Entry, *models.CleaningReport, error) {
	ctx, span := tracer.Start(ctx, "cleaning.Clean")
	defer span.End()

	out := make([]models.Entry, len(entries))
	copy(out, entries)
	report := &models.CleaningReport{InputRows: len(entries), Steps: []models.StepReport{}}

	for _, name := range c.rules.ordered() {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		_, stepSpan := tracer.Start(ctx, "cleaning."+name)
		var step models.StepReport
		out, step = c.step(name)(out)
		step.Name = name
		stepSpan.SetAttributes(
			attribute.Int("cleaning.affected", step.Affected),
			attribute.Int("cleaning.dropped", step.Dropped),
		)
		stepSpan.End()
		report.Steps = append(report.Steps, step)
		if c.logger != nil {
			c.logger.DebugContext(ctx, "cleaning step applied",
				"step", name,
				"affected", step.Affected,
				"dropped", step.Dropped,
				"rows", len(out),
			)
		}
	}

	report.OutputRows = len(out)
	report.MissingAfter = missingCounts(out)
	span.SetAttributes(
		attribute.Int("cleaning.input_rows", report.InputRows),
		attribute.Int("cleaning.output_rows", report.OutputRows),
	)
	return out, report, nil
}

func (c *Cleaner) step(name string) stepFunc {
	switch name {
	case StepNormalize:
		return newNormalizer(c.rules.Aliases).apply
	case StepDeduplicate:
		return deduplicate
	case StepDeriveAge:
		return deriveAge
	case StepPhysicalBounds:
		return boundsFilter{bounds: c.rules.Bounds, policy: c.rules.BoundsPolicy}.apply
	case StepImpute:
		return imputePhysical
	}
	return func(entries []models.Entry) ([]models.Entry, models.StepReport) {
		return entries, models.StepReport{}
	}
}

func missingCounts(entries []models.Entry) map[models.Metric]int {
	out := make(map[models.Metric]int, len(models.Metrics))
	for _, m := range models.Metrics {
		out[m] = 0
	}
	for i := range entries {
		for _, m := range models.Metrics {
			if entries[i].Metric(m) == nil {
				out[m]++
			}
		}
	}
	return out
}
