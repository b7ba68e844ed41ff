package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"eventcalendar/internal/domain"
)

// Options configures the connection pool behind a Pool.
type Options struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Pool is the process-wide storage handle. The underlying *sqlx.DB is opened
// on first use and then shared by every request until Close. A failed open is
// not cached, so the next call tries again.
type Pool struct {
	open   func(ctx context.Context) (*sqlx.DB, error)
	logger *slog.Logger

	mu     sync.Mutex
	db     *sqlx.DB
	closed bool
}

// NewPool returns a Pool that connects with opts. No connection is made yet.
func NewPool(opts Options, logger *slog.Logger) *Pool {
	p := &Pool{logger: logger}
	p.open = func(ctx context.Context) (*sqlx.DB, error) {
		return connect(ctx, opts, logger)
	}
	return p
}

// NewPoolFromDB wraps an already open database handle.
func NewPoolFromDB(db *sql.DB) *Pool {
	x := sqlx.NewDb(db, "postgres")
	return &Pool{
		db:     x,
		logger: slog.Default(),
		open: func(context.Context) (*sqlx.DB, error) {
			return x, nil
		},
	}
}

func connect(ctx context.Context, opts Options, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", opts.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, classify(fmt.Errorf("ping database: %w", err))
	}
	logger.Info("database connected",
		"maxOpenConns", opts.MaxOpenConns,
		"maxIdleConns", opts.MaxIdleConns,
		"connMaxLifetime", opts.ConnMaxLifetime,
	)
	return db, nil
}

// DB returns the shared handle, opening it if needed.
func (p *Pool) DB(ctx context.Context) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("%w: pool closed", domain.ErrStorageUnavailable)
	}
	if p.db != nil {
		return p.db, nil
	}
	db, err := p.open(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "database unavailable", "err", err)
		return nil, classify(err)
	}
	p.db = db
	return db, nil
}

// Ping checks that the database answers.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	return classify(db.PingContext(ctx))
}

// Close releases the handle. Later calls to DB fail.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
