// Package service owns the dataset lifecycle: it loads the CSV sources,
// profiles and cleans them, and publishes the result as the current snapshot.
package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"podium/internal/athlete/models"
	"podium/internal/audit"
	"podium/internal/cleaning"
	"podium/internal/dataset/metrics"
	"podium/internal/ingest"
	"podium/internal/profiling"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/sentinel"
)

var tracer = otel.Tracer("podium/internal/dataset")

// Store persists snapshots. Current returns sentinel.ErrNotFound before the
// first Save.
type Store interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Current(ctx context.Context) (*models.Snapshot, error)
}

// AuditPublisher records lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sources locates the input files. CoordsPath may be empty, in which case
// snapshots carry no coordinates.
type Sources struct {
	DataPath   string
	CoordsPath string
}

type Service struct {
	store   Store
	sources Sources
	cleaner *cleaning.Cleaner
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// reloads are serialized so two admins cannot interleave saves
	mu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, sources Sources, cleaner *cleaning.Cleaner, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("snapshot store is required")
	}
	if cleaner == nil {
		return nil, errors.New("cleaner is required")
	}
	if sources.DataPath == "" {
		return nil, errors.New("data path is required")
	}
	s := &Service{
		store:   store,
		sources: sources,
		cleaner: cleaner,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reload builds a new snapshot from the sources and makes it current. On
// failure the previous snapshot keeps being served.
func (s *Service) Reload(ctx context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ctx, span := tracer.Start(ctx, "dataset.Reload")
	defer span.End()

	snap, err := s.build(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		s.metrics.ObserveReload(metrics.ResultFailure, start)
		s.logger.ErrorContext(ctx, "dataset reload failed",
			"source", s.sources.DataPath,
			"error", err,
		)
		s.emit(ctx, audit.Event{
			Type:   audit.EventDatasetReloadFailed,
			Source: filepath.Base(s.sources.DataPath),
			Reason: err.Error(),
		})
		return nil, err
	}

	dropped := snap.Cleaning.InputRows - snap.Cleaning.OutputRows
	span.SetAttributes(
		attribute.String("dataset.snapshot_id", snap.ID.String()),
		attribute.Int("dataset.raw_rows", snap.RawRows),
		attribute.Int("dataset.entries", len(snap.Entries)),
	)
	s.metrics.ObserveReload(metrics.ResultSuccess, start)
	s.metrics.SetSnapshot(len(snap.Entries), len(snap.Issues), dropped)
	s.logger.InfoContext(ctx, "dataset reloaded",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"raw_rows", snap.RawRows,
		"entries", len(snap.Entries),
		"decode_issues", len(snap.Issues),
		"profile_issues", len(snap.Profile.Issues),
		"dropped", dropped,
		"duration", time.Since(start),
	)
	s.emit(ctx, audit.Event{
		Type:       audit.EventDatasetLoaded,
		SnapshotID: snap.ID.String(),
		Source:     snap.Source,
		Rows:       snap.RawRows,
	})
	s.emit(ctx, audit.Event{
		Type:       audit.EventDatasetCleaned,
		SnapshotID: snap.ID.String(),
		Source:     snap.Source,
		Rows:       snap.Cleaning.OutputRows,
		Dropped:    dropped,
	})
	return snap, nil
}

func (s *Service) build(ctx context.Context) (*models.Snapshot, error) {
	var (
		table  *models.RawTable
		coords []models.Coordinate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := ingest.LoadTable(gctx, s.sources.DataPath)
		if err != nil {
			return err
		}
		if err := ingest.RequireColumns(t, ingest.EssentialColumns...); err != nil {
			return err
		}
		table = t
		return nil
	})
	if s.sources.CoordsPath != "" {
		g.Go(func() error {
			c, err := ingest.LoadCoordinates(gctx, s.sources.CoordsPath)
			if err != nil {
				return err
			}
			coords = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := profiling.Profile(table)
	entries, issues := ingest.DecodeEntries(table)
	cleaned, report, err := s.cleaner.Clean(ctx, entries)
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		ID:          uuid.New(),
		Source:      filepath.Base(s.sources.DataPath),
		LoadedAt:    s.now().UTC(),
		RawRows:     len(table.Rows),
		Entries:     cleaned,
		Coordinates: coords,
		Profile:     profile,
		Cleaning:    report,
		Issues:      issues,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save snapshot")
	}
	return snap, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", event.Type,
			"error", err,
		)
	}
}

// Current returns the snapshot being served.
func (s *Service) Current(ctx context.Context) (*models.Snapshot, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no dataset loaded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read snapshot")
	}
	return snap, nil
}

func (s *Service) Summary(ctx context.Context) (models.SnapshotSummary, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return models.SnapshotSummary{}, err
	}
	return snap.Summary(), nil
}

func (s *Service) Profile(ctx context.Context) (*models.Profile, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Profile, nil
}

func (s *Service) Cleaning(ctx context.Context) (*models.CleaningReport, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Cleaning, nil
}

// Issues returns up to limit decode issues in row order and the total count.
func (s *Service) Issues(ctx context.Context, limit int) ([]models.Issue, int, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(snap.Issues)
	if limit > total {
		limit = total
	}
	out := make([]models.Issue, limit)
	copy(out, snap.Issues)
	return out, total, nil
}

// Run reloads every interval until ctx is done. Failures are logged and the
// loop keeps going.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = s.Reload(ctx)
		}
	}
}
