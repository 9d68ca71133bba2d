package database

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// MonitorPool periodically logs connection-pool stats and pings the
// database, surfacing pool exhaustion before it shows up as a request
// timeout elsewhere in the pipeline.
func MonitorPool(db *sqlx.DB, maxOpenConns, maxIdleConns int, healthCheckPeriod time.Duration) {
	ticker := time.NewTicker(healthCheckPeriod)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()
		logger.DBLogger().
			Int("max_open_conns", maxOpenConns).
			Int("max_idle_conns", maxIdleConns).
			Int("open_connections", stats.OpenConnections).
			Int("in_use", stats.InUse).
			Int("idle", stats.Idle).
			Msg("database connection pool stats")

		if err := db.Ping(); err != nil {
			logger.ErrorLogger().Err(err).Msg("database connection pool health check failed")
		}
	}
}
