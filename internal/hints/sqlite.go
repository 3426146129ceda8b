package hints

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS brands (name TEXT PRIMARY KEY);
CREATE TABLE IF NOT EXISTS categories (name TEXT PRIMARY KEY);`

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and creates if needed) the hint tables in a SQLite file.
// ":memory:" is supported; the pool is then pinned to one connection.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("hints.sqlite.open", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN", dsn, fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		logger.Error("hints.sqlite.migrate_failed", "error", err)
		return nil, common.NewAppError("DB_MIGRATE", dsn, fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Brands(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM brands ORDER BY name")
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM categories ORDER BY name")
}

func (s *SQLiteStore) AddBrand(ctx context.Context, name string) error {
	return s.insert(ctx, "INSERT OR IGNORE INTO brands (name) VALUES (?)", name)
}

func (s *SQLiteStore) AddCategory(ctx context.Context, name string) error {
	return s.insert(ctx, "INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("hints.sqlite.close")
	return s.db.Close()
}

func (s *SQLiteStore) insert(ctx context.Context, query, name string) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

func (s *SQLiteStore) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("hints.sqlite.rows_close_error", "error", err)
		}
	}()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
