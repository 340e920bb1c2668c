package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"podium/internal/athlete/models"
	"podium/pkg/platform/sentinel"
	"podium/pkg/platform/tx"
)

// Schema creates the snapshot tables. At most one snapshot is current.
const Schema = `
CREATE TABLE IF NOT EXISTS dataset_snapshots (
	id         UUID PRIMARY KEY,
	source     TEXT NOT NULL,
	loaded_at  TIMESTAMPTZ NOT NULL,
	raw_rows   INTEGER NOT NULL,
	profile    JSONB NOT NULL,
	cleaning   JSONB NOT NULL,
	issues     JSONB NOT NULL,
	is_current BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE UNIQUE INDEX IF NOT EXISTS dataset_snapshots_one_current
	ON dataset_snapshots (is_current) WHERE is_current;
CREATE TABLE IF NOT EXISTS dataset_entries (
	snapshot_id        UUID NOT NULL REFERENCES dataset_snapshots (id) ON DELETE CASCADE,
	position           INTEGER NOT NULL,
	name               TEXT NOT NULL,
	gender             TEXT NOT NULL,
	born_date          DATE,
	age                DOUBLE PRECISION,
	height_cm          DOUBLE PRECISION,
	weight_kg          DOUBLE PRECISION,
	noc                TEXT NOT NULL,
	country            TEXT NOT NULL,
	year               INTEGER NOT NULL,
	season             TEXT NOT NULL,
	city               TEXT NOT NULL,
	discipline         TEXT NOT NULL,
	discipline_grouped TEXT NOT NULL,
	event              TEXT NOT NULL,
	medal              TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
CREATE TABLE IF NOT EXISTS dataset_coordinates (
	snapshot_id UUID NOT NULL REFERENCES dataset_snapshots (id) ON DELETE CASCADE,
	noc         TEXT NOT NULL,
	country     TEXT NOT NULL,
	capital     TEXT NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (snapshot_id, noc)
);`

// DefaultRetention is how many snapshots are kept, the current one included.
const DefaultRetention = 3

var entryColumns = []string{
	"snapshot_id", "position", "name", "gender", "born_date", "age", "height_cm", "weight_kg",
	"noc", "country", "year", "season", "city", "discipline", "discipline_grouped", "event", "medal",
}

var coordinateColumns = []string{"snapshot_id", "noc", "country", "capital", "latitude", "longitude"}

// PostgresStore persists snapshots with lib/pq. Entries are bulk loaded with
// COPY. The last loaded snapshot is memoized so reads only hit the database
// to check which snapshot is current.
type PostgresStore struct {
	db        *sql.DB
	retention int

	mu     sync.Mutex
	cached *models.Snapshot
}

type PostgresOption func(*PostgresStore)

// WithRetention keeps the n most recent snapshots; values below 1 are
// ignored.
func WithRetention(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n >= 1 {
			s.retention = n
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, retention: DefaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure dataset schema: %w", err)
	}
	return nil
}

// Save writes the snapshot and marks it current in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot == nil {
		return sentinel.ErrInvalidState
	}
	profile, err := json.Marshal(snapshot.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	cleaning, err := json.Marshal(snapshot.Cleaning)
	if err != nil {
		return fmt.Errorf("marshal cleaning report: %w", err)
	}
	issues, err := json.Marshal(snapshot.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	err = tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		if _, err := sqlTx.ExecContext(ctx, `UPDATE dataset_snapshots SET is_current = FALSE WHERE is_current`); err != nil {
			return fmt.Errorf("clear current snapshot: %w", err)
		}
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO dataset_snapshots (id, source, loaded_at, raw_rows, profile, cleaning, issues, is_current)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
			snapshot.ID, snapshot.Source, snapshot.LoadedAt, snapshot.RawRows, profile, cleaning, issues,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		if err := copyEntries(ctx, sqlTx, snapshot.ID, snapshot.Entries); err != nil {
			return err
		}
		if err := copyCoordinates(ctx, sqlTx, snapshot.ID, snapshot.Coordinates); err != nil {
			return err
		}
		_, err = sqlTx.ExecContext(ctx, `
			DELETE FROM dataset_snapshots
			WHERE id NOT IN (SELECT id FROM dataset_snapshots ORDER BY loaded_at DESC LIMIT $1)`,
			s.retention,
		)
		if err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.mu.Lock()
	s.cached = snapshot
	s.mu.Unlock()
	return nil
}

func copyEntries(ctx context.Context, tx *sql.Tx, id uuid.UUID, entries []models.Entry) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("dataset_entries", entryColumns...))
	if err != nil {
		return fmt.Errorf("prepare entries copy: %w", err)
	}
	for i := range entries {
		e := &entries[i]
		var born any
		if e.BornDate != nil {
			born = e.BornDate.Format("2006-01-02")
		}
		_, err := stmt.ExecContext(ctx,
			id, i, e.Name, string(e.Gender), born, nullable(e.Age), nullable(e.HeightCm), nullable(e.WeightKg),
			e.NOC, e.Country, e.Year, string(e.Season), e.City, e.Discipline, e.DisciplineGroup, e.Event, string(e.Medal),
		)
		if err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy entry %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush entries copy: %w", err)
	}
	return stmt.Close()
}

func copyCoordinates(ctx context.Context, tx *sql.Tx, id uuid.UUID, coords []models.Coordinate) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("dataset_coordinates", coordinateColumns...))
	if err != nil {
		return fmt.Errorf("prepare coordinates copy: %w", err)
	}
	for _, c := range coords {
		if _, err := stmt.ExecContext(ctx, id, c.NOC, c.Country, c.Capital, c.Latitude, c.Longitude); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy coordinate %s: %w", c.NOC, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush coordinates copy: %w", err)
	}
	return stmt.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Current returns the current snapshot, loading it from the database when
// another instance saved a newer one.
func (s *PostgresStore) Current(ctx context.Context) (*models.Snapshot, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM dataset_snapshots WHERE is_current`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find current snapshot: %w", err)
	}

	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()
	if cached != nil && cached.ID == id {
		return cached, nil
	}

	snapshot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached = snapshot
	s.mu.Unlock()
	return snapshot, nil
}

func (s *PostgresStore) load(ctx context.Context, id uuid.UUID) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{ID: id}
	var profile, cleaning, issues []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT source, loaded_at, raw_rows, profile, cleaning, issues
		FROM dataset_snapshots WHERE id = $1`, id,
	).Scan(&snapshot.Source, &snapshot.LoadedAt, &snapshot.RawRows, &profile, &cleaning, &issues)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(profile, &snapshot.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(cleaning, &snapshot.Cleaning); err != nil {
		return nil, fmt.Errorf("unmarshal cleaning report: %w", err)
	}
	if err := json.Unmarshal(issues, &snapshot.Issues); err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}

	if snapshot.Entries, err = s.loadEntries(ctx, id); err != nil {
		return nil, err
	}
	if snapshot.Coordinates, err = s.loadCoordinates(ctx, id); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *PostgresStore) loadEntries(ctx context.Context, id uuid.UUID) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, gender, born_date, age, height_cm, weight_kg, noc, country, year, season,
		       city, discipline, discipline_grouped, event, medal
		FROM dataset_entries WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var (
			e                       models.Entry
			gender, season, medal   string
			born                    sql.NullTime
			age, heightCm, weightKg sql.NullFloat64
		)
		if err := rows.Scan(&e.Name, &gender, &born, &age, &heightCm, &weightKg, &e.NOC, &e.Country, &e.Year,
			&season, &e.City, &e.Discipline, &e.DisciplineGroup, &e.Event, &medal); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Gender = models.Gender(gender)
		e.Season = models.Season(season)
		e.Medal = models.Medal(medal)
		if born.Valid {
			t := born.Time
			e.BornDate = &t
		}
		e.Age = fromNull(age)
		e.HeightCm = fromNull(heightCm)
		e.WeightKg = fromNull(weightKg)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) loadCoordinates(ctx context.Context, id uuid.UUID) ([]models.Coordinate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT noc, country, capital, latitude, longitude
		FROM dataset_coordinates WHERE snapshot_id = $1 ORDER BY noc`, id)
	if err != nil {
		return nil, fmt.Errorf("query coordinates: %w", err)
	}
	defer rows.Close()

	coords := []models.Coordinate{}
	for rows.Next() {
		var c models.Coordinate
		if err := rows.Scan(&c.NOC, &c.Country, &c.Capital, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan coordinate: %w", err)
		}
		coords = append(coords, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coordinates: %w", err)
	}
	return coords, nil
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
