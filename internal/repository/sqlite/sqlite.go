package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"podmanager/internal/repository"
)

// querier is the subset of *sql.DB and *sql.Tx used by sessions
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements repository.Store using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Store = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath and migrates it.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers and keeps an in-memory database alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vertex_types (
		name TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS vertex_properties (
		type_name TEXT NOT NULL,
		name TEXT NOT NULL,
		semantic TEXT NOT NULL,
		PRIMARY KEY (type_name, name),
		FOREIGN KEY (type_name) REFERENCES vertex_types(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS vertices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type_name TEXT NOT NULL,
		properties JSON NOT NULL DEFAULT '{}',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (from_id, to_id, label),
		FOREIGN KEY (from_id) REFERENCES vertices(id) ON DELETE CASCADE,
		FOREIGN KEY (to_id) REFERENCES vertices(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_vertices_type ON vertices(type_name);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id, label);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id, label);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// InTx runs fn in a transaction and saves changed objects before committing
func (r *Repository) InTx(ctx context.Context, fn func(repository.Session) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := newSession(tx)
	if err := fn(s); err != nil {
		return err
	}
	if err := s.flush(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// View runs fn against a session on the database without a transaction
func (r *Repository) View(ctx context.Context, fn func(repository.Session) error) error {
	return fn(newSession(r.db))
}
