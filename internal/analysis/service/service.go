// Package service answers exploratory questions over the current dataset
// snapshot, caching results per snapshot.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"podium/internal/analysis/metrics"
	"podium/internal/analysis/models"
	athlete "podium/internal/athlete/models"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SnapshotSource,Cache

// SnapshotSource yields the snapshot analyses run over.
type SnapshotSource interface {
	Current(ctx context.Context) (*athlete.Snapshot, error)
}

// Cache stores encoded results. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Operation names, used for cache keys and metric labels.
const (
	OpFilters         = "filters"
	OpOverview        = "overview"
	OpParticipation   = "participation"
	OpDisciplines     = "disciplines"
	OpMedals          = "medals"
	OpMedalMap        = "medal_map"
	OpDistribution    = "distribution"
	OpHeightWeight    = "height_weight"
	OpDisciplineTree  = "discipline_tree"
	OpAgeByDiscipline = "age_by_discipline"
	OpAgeByGroup      = "age_by_group"
	OpMedalTrend      = "medal_trend"
)

const defaultCacheTTL = 10 * time.Minute

type Service struct {
	source   SnapshotSource
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

// WithCache enables result caching. A non-positive ttl uses the default.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func New(source SnapshotSource, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, errors.New("snapshot source is required")
	}
	s := &Service{
		source:   source,
		cacheTTL: defaultCacheTTL,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	return run(ctx, s, OpFilters, "", func(snap *athlete.Snapshot) models.FilterOptions {
		return ComputeFilterOptions(snap.Entries)
	})
}

func (s *Service) Overview(ctx context.Context, f models.Filter) (models.Overview, error) {
	return run(ctx, s, OpOverview, f.Key(), func(snap *athlete.Snapshot) models.Overview {
		return ComputeOverview(f.Apply(snap.Entries))
	})
}

func (s *Service) Participation(ctx context.Context, f models.Filter) ([]models.GenderCount, error) {
	return run(ctx, s, OpParticipation, f.Key(), func(snap *athlete.Snapshot) []models.GenderCount {
		return ParticipationByGender(f.Apply(snap.Entries))
	})
}

func (s *Service) Disciplines(ctx context.Context, f models.Filter) ([]models.DisciplineCount, error) {
	return run(ctx, s, OpDisciplines, f.Key(), func(snap *athlete.Snapshot) []models.DisciplineCount {
		return DisciplinesPerYear(f.Apply(snap.Entries))
	})
}

func (s *Service) MedalTable(ctx context.Context, f models.Filter, by models.MedalSort, top int) ([]models.MedalRow, error) {
	key := f.Key() + "|" + string(by) + "|" + itoa(top)
	return run(ctx, s, OpMedals, key, func(snap *athlete.Snapshot) []models.MedalRow {
		return MedalTable(f.Apply(snap.Entries), by, top)
	})
}

func (s *Service) MedalMap(ctx context.Context, f models.Filter) ([]models.MedalMapPoint, error) {
	return run(ctx, s, OpMedalMap, f.Key(), func(snap *athlete.Snapshot) []models.MedalMapPoint {
		return MedalMap(f.Apply(snap.Entries), snap.Coordinates)
	})
}

func (s *Service) Distribution(ctx context.Context, f models.Filter, metric athlete.Metric, by models.GroupBy) (models.Distribution, error) {
	key := f.Key() + "|" + string(metric) + "|" + string(by)
	return run(ctx, s, OpDistribution, key, func(snap *athlete.Snapshot) models.Distribution {
		return MetricDistribution(f.Apply(snap.Entries), metric, by)
	})
}

func (s *Service) HeightWeight(ctx context.Context, f models.Filter, colorBy models.GroupBy, limit int) (models.HeightWeight, error) {
	key := f.Key() + "|" + string(colorBy) + "|" + itoa(limit)
	return run(ctx, s, OpHeightWeight, key, func(snap *athlete.Snapshot) models.HeightWeight {
		return HeightWeightPoints(f.Apply(snap.Entries), colorBy, limit)
	})
}

func (s *Service) DisciplineTree(ctx context.Context, f models.Filter) ([]models.TreeNode, error) {
	return run(ctx, s, OpDisciplineTree, f.Key(), func(snap *athlete.Snapshot) []models.TreeNode {
		return DisciplineTree(f.Apply(snap.Entries))
	})
}

func (s *Service) AgeByDiscipline(ctx context.Context, f models.Filter, top int) ([]models.DisciplineAge, error) {
	key := f.Key() + "|" + itoa(top)
	return run(ctx, s, OpAgeByDiscipline, key, func(snap *athlete.Snapshot) []models.DisciplineAge {
		return AverageAgeByDiscipline(f.Apply(snap.Entries), top)
	})
}

func (s *Service) AgeByGroup(ctx context.Context, f models.Filter) ([]models.GroupAge, error) {
	return run(ctx, s, OpAgeByGroup, f.Key(), func(snap *athlete.Snapshot) []models.GroupAge {
		return AgeByDisciplineGroup(f.Apply(snap.Entries))
	})
}

// MedalTrend ignores the filter's NOC in favour of noc.
func (s *Service) MedalTrend(ctx context.Context, f models.Filter, noc string) (models.MedalTrend, error) {
	f.NOC = ""
	noc = strings.ToUpper(strings.TrimSpace(noc))
	key := f.Key() + "|" + noc
	return run(ctx, s, OpMedalTrend, key, func(snap *athlete.Snapshot) models.MedalTrend {
		return ComputeMedalTrend(f.Apply(snap.Entries), noc)
	})
}

// run resolves the current snapshot and serves op from cache when possible.
// Cache failures are logged and never fail the request.
func run[T any](ctx context.Context, s *Service, op, params string, compute func(*athlete.Snapshot) T) (T, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation(op, start)

	var zero T
	snap, err := s.source.Current(ctx)
	if err != nil {
		return zero, err
	}
	if s.cache == nil {
		return compute(snap), nil
	}

	key := CacheKey(snap.ID.String(), op, params)
	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncrementCacheError("get")
		s.logger.WarnContext(ctx, "analysis cache get failed", "operation", op, "error", err)
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			s.metrics.IncrementCacheHit(op)
			return v, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cache entry", "operation", op, "key", key)
	}
	s.metrics.IncrementCacheMiss(op)

	v := compute(snap)
	encoded, err := json.Marshal(v)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to encode analysis result", "operation", op, "error", err)
		return v, nil
	}
	if err := s.cache.Set(ctx, key, encoded, s.cacheTTL); err != nil {
		s.metrics.IncrementCacheError("set")
		s.logger.WarnContext(ctx, "analysis cache set failed", "operation", op, "error", err)
	}
	return v, nil
}

// CacheKey scopes params to a snapshot so a reload never serves stale
// results.
func CacheKey(snapshotID, op, params string) string {
	return "podium:analysis:" + snapshotID + ":" + op + ":" + params
}
