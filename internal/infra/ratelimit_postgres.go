package infra

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLimiter is a fixed-window counter shared by every instance
// pointing at the same database.
type PostgresLimiter struct {
	pool   *pgxpool.Pool
	limit  int
	window time.Duration
	now    func() time.Time
	log    *logger.ZapLogger

	mu        sync.Mutex
	lastSweep time.Time
}

func NewPostgresLimiter(pool *pgxpool.Pool, limit int, window time.Duration, log *logger.ZapLogger) *PostgresLimiter {
	return &PostgresLimiter{
		pool:   pool,
		limit:  limit,
		window: window,
		now:    time.Now,
		log:    log,
	}
}

func (l *PostgresLimiter) windowStart() time.Time {
	return l.now().UTC().Truncate(l.window)
}

func (l *PostgresLimiter) Exceeded(ctx context.Context, key string) (bool, error) {
	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count FROM rate_limits WHERE key = $1 AND window_start = $2`,
		key, l.windowStart(),
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate limit read: %w", err)
	}
	return n >= l.limit, nil
}

func (l *PostgresLimiter) Hit(ctx context.Context, key string) error {
	_, err := l.incr(ctx, key)
	return err
}

func (l *PostgresLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.incr(ctx, key)
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

func (l *PostgresLimiter) incr(ctx context.Context, key string) (int, error) {
	l.maybeSweep(ctx)

	var n int
	err := l.pool.QueryRow(ctx, `
		INSERT INTO rate_limits (key, window_start, count) VALUES ($1, $2, 1)
		ON CONFLICT (key, window_start) DO UPDATE SET count = rate_limits.count + 1
		RETURNING count`,
		key, l.windowStart(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return n, nil
}

// maybeSweep deletes finished windows at most once per window.
func (l *PostgresLimiter) maybeSweep(ctx context.Context) {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) < l.window {
		l.mu.Unlock()
		return
	}
	l.lastSweep = now
	l.mu.Unlock()

	if err := l.sweep(ctx); err != nil {
		l.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "rate limit sweep failed",
			Error:   err,
		})
	}
}

func (l *PostgresLimiter) sweep(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < $1`, l.windowStart()); err != nil {
		return fmt.Errorf("rate limit sweep: %w", err)
	}
	return nil
}
