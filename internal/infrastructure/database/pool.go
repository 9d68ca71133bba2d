package database

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// Pool wraps a pooled *sqlx.DB and makes connection acquisition optional:
// callers that can't get a pooled connection fall back to a direct one
// rather than failing outright (spec §4.1). Acquired connections that
// error out are discarded rather than returned to the pool.
type Pool struct {
	pooled *sqlx.DB
	dsn    string
}

func NewPool(pooled *sqlx.DB, dsn string) *Pool {
	return &Pool{pooled: pooled, dsn: dsn}
}

// Acquire returns the pooled connection, or (if the pool is unhealthy) a
// fresh direct connection built from the same DSN.
func (p *Pool) Acquire(ctx context.Context) (*sqlx.DB, error) {
	if p.pooled != nil {
		if err := p.pooled.PingContext(ctx); err == nil {
			return p.pooled, nil
		}
		logger.DBLogger().Msg("pooled connection unhealthy, falling back to direct connection")
	}

	direct, err := sqlx.ConnectContext(ctx, "postgres", p.dsn)
	if err != nil {
		return nil, err
	}
	return direct, nil
}

// Discard closes a connection obtained from Acquire when it errored mid-use,
// so a broken connection is never handed back for reuse.
func (p *Pool) Discard(conn *sqlx.DB, cause error) {
	if conn == nil || conn == p.pooled {
		return
	}
	if isConnectionBroken(cause) {
		_ = conn.Close()
	}
}

func isConnectionBroken(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, driver.ErrBadConn)
}
