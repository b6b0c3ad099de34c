// Package postgres persists snapshots in PostgreSQL tables. Each dataset
// is replaced wholesale inside one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and creates the snapshot tables if missing.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS obstacles (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL,
            state TEXT,
            city TEXT NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            agl INTEGER NOT NULL CHECK (agl > 0)
        )`,
		`CREATE TABLE IF NOT EXISTS airports (
            ident TEXT PRIMARY KEY,
            name TEXT,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS notam_outages (
            seq INTEGER PRIMARY KEY,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            agl TEXT NOT NULL,
            text TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS snapshot_metadata (
            singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
            dof_date TEXT NOT NULL,
            apt_date TEXT,
            apt_count INTEGER NOT NULL,
            obs_count INTEGER NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var (
	obstacleColumns = []string{"seq", "id", "state", "city", "lat", "lon", "agl"}
	airportColumns  = []string{"ident", "name", "lat", "lon"}
	outageColumns   = []string{"seq", "lat", "lon", "agl", "text"}
)

// ReplaceObstacles swaps the obstacles table contents.
func (s *Store) ReplaceObstacles(ctx context.Context, obstacles []domain.Obstacle) error {
	return s.replace(ctx, "obstacles", obstacleColumns, obstacleRows(obstacles))
}

// ReplaceAirports swaps the airports table contents.
func (s *Store) ReplaceAirports(ctx context.Context, airports map[string]domain.Airport) error {
	return s.replace(ctx, "airports", airportColumns, airportRows(airports))
}

// ReplaceOutages swaps the notam_outages table contents; an empty slice
// clears it.
func (s *Store) ReplaceOutages(ctx context.Context, outages []domain.Outage) error {
	return s.replace(ctx, "notam_outages", outageColumns, outageRows(outages))
}

// CountObstacles returns the persisted obstacle count.
func (s *Store) CountObstacles(ctx context.Context) (int, error) {
	return s.count(ctx, "obstacles")
}

// CountAirports returns the persisted airport count.
func (s *Store) CountAirports(ctx context.Context) (int, error) {
	return s.count(ctx, "airports")
}

// ReadMetadata loads the singleton metadata row. The bool is false when no
// row exists yet.
func (s *Store) ReadMetadata(ctx context.Context) (domain.Metadata, bool, error) {
	var (
		md      domain.Metadata
		aptDate *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT dof_date, apt_date, apt_count, obs_count FROM snapshot_metadata WHERE singleton`,
	).Scan(&md.DOFDate, &aptDate, &md.APTCount, &md.OBSCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Metadata{}, false, nil
	}
	if err != nil {
		return domain.Metadata{}, false, fmt.Errorf("read metadata: %w", err)
	}
	if aptDate != nil {
		md.APTDate = *aptDate
	}
	return md, true, nil
}

// WriteMetadata upserts the singleton metadata row.
func (s *Store) WriteMetadata(ctx context.Context, md domain.Metadata) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO snapshot_metadata (singleton, dof_date, apt_date, apt_count, obs_count, updated_at)
VALUES (TRUE, $1, $2, $3, $4, NOW())
ON CONFLICT (singleton) DO UPDATE
SET dof_date = EXCLUDED.dof_date,
    apt_date = EXCLUDED.apt_date,
    apt_count = EXCLUDED.apt_count,
    obs_count = EXCLUDED.obs_count,
    updated_at = NOW()`,
		md.DOFDate, nullable(md.APTDate), md.APTCount, md.OBSCount)
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Store) replace(ctx context.Context, table string, columns []string, rows [][]any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s replace: %w", table, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s replace: %w", table, err)
	}
	return nil
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// obstacleRows keeps file order in seq.
func obstacleRows(obstacles []domain.Obstacle) [][]any {
	rows := make([][]any, len(obstacles))
	for i, o := range obstacles {
		rows[i] = []any{i, o.ID, nullable(o.State), o.City, o.Lat, o.Lon, o.AGL}
	}
	return rows
}

// airportRows orders rows by identifier so COPY input is deterministic.
func airportRows(airports map[string]domain.Airport) [][]any {
	idents := make([]string, 0, len(airports))
	for id := range airports {
		idents = append(idents, id)
	}
	sort.Strings(idents)

	rows := make([][]any, len(idents))
	for i, id := range idents {
		a := airports[id]
		rows[i] = []any{id, nullable(a.Name), a.Lat, a.Lon}
	}
	return rows
}

func outageRows(outages []domain.Outage) [][]any {
	rows := make([][]any, len(outages))
	for i, o := range outages {
		rows[i] = []any{i, o.Lat, o.Lon, o.AGL, o.Text}
	}
	return rows
}

// nullable maps "" to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
