package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

var ErrMissingDSN = errors.New(
	"DATABASE_URL environment variable is not set. Please create a .env file with DATABASE_URL=your_connection_string")

const (
	defaultConnectTimeout = 5 * time.Second
	defaultMaxConnIdle    = 2 * time.Minute
	defaultMaxConnLife    = 30 * time.Minute
)

type DB struct {
	DSN         string `json:"-" yaml:"dsn" envconfig:"DATABASE_URL"`
	MaxConns    int32  `yaml:"maxConns" envconfig:"DB_MAX_CONNS" default:"10"`
	AutoMigrate bool   `yaml:"autoMigrate" envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// Provider hands out the process-wide connection pool.
type Provider interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
}

// LazyPool connects on first use and reuses the pool afterwards.
// A failed connect is not cached, the next call retries.
type LazyPool struct {
	cfg DB

	mu   sync.Mutex
	pool *pgxpool.Pool
}

var _ Provider = (*LazyPool)(nil)

func NewLazyPool(cfg DB) *LazyPool {
	return &LazyPool{cfg: cfg}
}

func (p *LazyPool) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return p.pool, nil
	}
	pool, err := NewPostgresDB(ctx, &p.cfg)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p.pool, nil
}

func (p *LazyPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

func NewPostgresDB(ctx context.Context, cfg *DB) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.ParseConfig")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnIdleTime = defaultMaxConnIdle
	poolCfg.MaxConnLifetime = defaultMaxConnLife

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

// Migrate runs a goose command (up, down, status, ...) against the embedded migrations.
func Migrate(ctx context.Context, cfg DB, files embed.FS, command string, args ...string) error {
	if cfg.DSN == "" {
		return ErrMissingDSN
	}
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return errors.Wrap(err, "sql.Open")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Run(command, db, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
