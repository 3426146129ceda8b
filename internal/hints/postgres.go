package hints

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS brands (name TEXT PRIMARY KEY);
CREATE TABLE IF NOT EXISTS categories (name TEXT PRIMARY KEY);`

type PoolConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and makes sure the hint tables exist.
func OpenPostgres(ctx context.Context, cfg PoolConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("hints.postgres.connect")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("hints.postgres.parse_config_failed", "error", err)
		return nil, common.NewAppError("DB_CONFIG", "invalid HINTS_DSN", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-analyst"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("hints.postgres.connect_failed", "error", err)
		return nil, common.NewAppError("DB_OPEN", "connect", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if _, err := pool.Exec(dialCtx, postgresSchema); err != nil {
		pool.Close()
		logger.Error("hints.postgres.migrate_failed", "error", err)
		return nil, common.NewAppError("DB_MIGRATE", "create tables", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}

	logger.Info("hints.postgres.connected")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Brands(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM brands ORDER BY name")
}

func (s *PostgresStore) Categories(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM categories ORDER BY name")
}

func (s *PostgresStore) AddBrand(ctx context.Context, name string) error {
	return s.insert(ctx, "INSERT INTO brands (name) VALUES ($1) ON CONFLICT DO NOTHING", name)
}

func (s *PostgresStore) AddCategory(ctx context.Context, name string) error {
	return s.insert(ctx, "INSERT INTO categories (name) VALUES ($1) ON CONFLICT DO NOTHING", name)
}

// Ping checks connectivity, bounded by a 1s timeout when ctx has none.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}
	s.logger.Debug("hints.postgres.ping")
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.logger.Info("hints.postgres.close")
	s.pool.Close()
	return nil
}

func (s *PostgresStore) insert(ctx context.Context, query, name string) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, n); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

func (s *PostgresStore) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
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
