package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/openmined/agentsync/internal/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS generated_files (
    path TEXT PRIMARY KEY,
    recorded_at TEXT NOT NULL -- RFC3339
);
`

// SQLiteStore persists the manifest in a sqlite database.
type SQLiteStore struct {
	db     *sqlx.DB
	dbPath string
}

// OpenSQLiteStore opens or creates the manifest database at dbPath.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	conn, err := db.NewSqliteDB(db.WithPath(dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init manifest schema: %w", err)
	}

	return &SQLiteStore{db: conn, dbPath: dbPath}, nil
}

func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	var paths []string
	if err := s.db.SelectContext(ctx, &paths, "SELECT path FROM generated_files ORDER BY path"); err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	return paths, nil
}

// Replace swaps the whole manifest in a single transaction.
func (s *SQLiteStore) Replace(ctx context.Context, paths []string) error {
	if s.db == nil {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin manifest tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM generated_files"); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, "INSERT INTO generated_files (path, recorded_at) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare manifest insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range normalize(paths) {
		if _, err := stmt.ExecContext(ctx, p, now); err != nil {
			return fmt.Errorf("insert %s: %w", p, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM generated_files"); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return ErrStoreClosed
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		slog.Error("close manifest", "path", s.dbPath, "error", err)
	}
	return err
}
