package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"route-collection-service/internal/domain"
	"route-collection-service/internal/platform/obs"
	"route-collection-service/internal/ports"
)

// SQLite-backed implementation of the SnapshotRepository port. Snapshots
// store the manager's export payload verbatim as JSON.
type SqliteSnapshotRepository struct{ DB *sql.DB }

func NewSqliteSnapshotRepository(db *sql.DB) *SqliteSnapshotRepository {
	return &SqliteSnapshotRepository{DB: db}
}

// Initialize the SQLite snapshot schema.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS route_snapshots (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("init schema: create route_snapshots: %w", err)
	}
	return nil
}

func (s *SqliteSnapshotRepository) Save(ctx context.Context, name string, routes []*domain.Route) (err error) {
	defer obs.Time(ctx, "snapshot.sqlite.Save")(&err)

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("save snapshot: name must not be empty")
	}

	payload, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("save snapshot %q: marshal payload: %w", name, err)
	}

	query := `
	INSERT OR REPLACE INTO route_snapshots (name, payload, saved_at)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.DB.ExecContext(ctx, query, name, string(payload)); err != nil {
		return fmt.Errorf("save snapshot %q: insert: %w", name, err)
	}
	return nil
}

func (s *SqliteSnapshotRepository) Load(ctx context.Context, name string) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "snapshot.sqlite.Load")(&err)

	query := `SELECT payload FROM route_snapshots WHERE name = ?;`

	var payload string
	err = s.DB.QueryRowContext(ctx, query, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %q: %w", name, ports.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: query: %w", name, err)
	}

	var routes []*domain.Route
	if err := json.Unmarshal([]byte(payload), &routes); err != nil {
		return nil, fmt.Errorf("load snapshot %q: parse payload: %w", name, err)
	}
	return routes, nil
}

func (s *SqliteSnapshotRepository) List(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "snapshot.sqlite.List")(&err)

	query := `SELECT name FROM route_snapshots ORDER BY saved_at, name;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: query: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, 16)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("list snapshots: scan row: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: row iteration: %w", err)
	}
	return names, nil
}
