package managers

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"server-notes/internal/interfaces"
)

// DatabaseMgr defines the interface for database management.
// It hands out the connection pool to the stores and reports whether the database is reachable.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
	Ping(ctx context.Context) error
}

// DatabaseManager is responsible for managing the database connection pool.
type DatabaseManager struct {
	Pool    interfaces.PgxPoolIface
	Timeout time.Duration
}

// GetPool returns the database connection pool managed by the DatabaseManager.
func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// Ping checks the connection to the database, giving up after the configured timeout.
func (dbMgr *DatabaseManager) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, dbMgr.Timeout)
	defer cancel()
	return dbMgr.Pool.Ping(pingCtx)
}

// NewDatabaseManager creates and initializes a new instance of DatabaseManager with the provided database connection pool.
func NewDatabaseManager(pool interfaces.PgxPoolIface, timeout time.Duration) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool, Timeout: timeout}
}
