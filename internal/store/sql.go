package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/i474232898/statewise/internal/snapshot"
	"github.com/i474232898/statewise/internal/weather"
)

var _ snapshot.Store = (*SQLStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS daily_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	state TEXT NOT NULL,
	weather TEXT,
	activities TEXT NOT NULL,
	user_note TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_daily_snapshots_state ON daily_snapshots(state);
`

// json (not jsonb) keeps the provider payload byte-for-byte.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS daily_snapshots (
	id BIGSERIAL PRIMARY KEY,
	state TEXT NOT NULL,
	weather JSON,
	activities JSON NOT NULL,
	user_note TEXT,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_daily_snapshots_state ON daily_snapshots(state);
`

const selectColumns = `SELECT id, state, weather, activities, user_note, created_at FROM daily_snapshots`

type snapshotRow struct {
	ID         int64          `db:"id"`
	State      string         `db:"state"`
	Weather    sql.NullString `db:"weather"`
	Activities string         `db:"activities"`
	UserNote   sql.NullString `db:"user_note"`
	CreatedAt  int64          `db:"created_at"`
}

// SQLStore persists snapshots in SQLite (driver "sqlite") or Postgres (driver "postgres").
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQL connects to the database and ensures the schema exists.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection: SQLite has a single writer and ":memory:" is per connection.
		db.SetMaxOpenConns(1)
	}

	s := NewSQLStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open connection. Call EnsureSchema before first use.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating daily_snapshots table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Create inserts a new row and returns the snapshot with its assigned id.
func (s *SQLStore) Create(ctx context.Context, snap snapshot.Snapshot) (snapshot.Snapshot, error) {
	activities := snap.Activities
	if activities == nil {
		activities = []snapshot.Activity{}
	}
	actJSON, err := json.Marshal(activities)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to serialize activities: %w", err)
	}

	var weatherJSON sql.NullString
	if raw := snap.Weather.Raw(); len(raw) > 0 {
		weatherJSON = sql.NullString{String: string(raw), Valid: true}
	}
	var note sql.NullString
	if snap.UserNote != nil {
		note = sql.NullString{String: *snap.UserNote, Valid: true}
	}
	createdAt := s.now()

	query := s.db.Rebind(`
		INSERT INTO daily_snapshots (state, weather, activities, user_note, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	var id int64
	if err := s.db.QueryRowxContext(ctx, query,
		snap.State, weatherJSON, string(actJSON), note, createdAt.UnixMilli()).Scan(&id); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	snap.ID = id
	snap.Activities = activities
	snap.CreatedAt = time.UnixMilli(createdAt.UnixMilli()).UTC()
	return snap, nil
}

// Get loads a snapshot by id.
func (s *SQLStore) Get(ctx context.Context, id int64) (snapshot.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(selectColumns+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, snapshot.ErrNotFound
		}
		return snapshot.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return row.toSnapshot()
}

// ListByState returns up to limit snapshots, newest first. An empty state lists all states.
func (s *SQLStore) ListByState(ctx context.Context, state string, limit int) ([]snapshot.Snapshot, error) {
	query := selectColumns
	var args []interface{}
	if state != "" {
		query += ` WHERE lower(state) = lower(?)`
		args = append(args, strings.TrimSpace(state))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []snapshotRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	result := make([]snapshot.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := row.toSnapshot()
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	return result, nil
}

func (r snapshotRow) toSnapshot() (snapshot.Snapshot, error) {
	snap := snapshot.Snapshot{
		ID:        r.ID,
		State:     r.State,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.Weather.Valid {
		rec, err := weather.NewRecord([]byte(r.Weather.String))
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("failed to decode weather of snapshot %d: %w", r.ID, err)
		}
		snap.Weather = rec
	}
	if err := json.Unmarshal([]byte(r.Activities), &snap.Activities); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to decode activities of snapshot %d: %w", r.ID, err)
	}
	if snap.Activities == nil {
		snap.Activities = []snapshot.Activity{}
	}
	if r.UserNote.Valid {
		note := r.UserNote.String
		snap.UserNote = &note
	}
	return snap, nil
}
