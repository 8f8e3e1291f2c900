package store

import (
	"fmt"
	"os"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// ProjectionStore persists the scored player projections between drafts.
// Draft sessions themselves are never persisted; resetting a draft rebuilds
// the pool from this store.
type ProjectionStore interface {
	// SavePlayers replaces the stored projection set.
	SavePlayers(players []models.Player) error

	// LoadPlayers returns all stored projections.
	LoadPlayers() ([]models.Player, error)

	// SetPlayerPoints updates a single player's projected points, as pushed
	// by the warehouse sync.
	SetPlayerPoints(id string, points float64) error

	// Ping reports whether the backing store is reachable.
	Ping() error

	Close() error
}

// New selects a store implementation from the DB_DRIVER environment
// variable: "postgres", "sqlite" or "memory" (the default).
func New() (ProjectionStore, error) {
	driver := os.Getenv("DB_DRIVER")

	switch driver {
	case "postgres":
		connString := os.Getenv("DATABASE_URL")
		if connString == "" {
			return nil, fmt.Errorf("DB_DRIVER=postgres requires DATABASE_URL")
		}
		logger.Info("Using PostgreSQL projection store")
		return NewPostgresStore(connString)

	case "sqlite":
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dbPath = "predictor.db"
		}
		logger.Info("Using SQLite projection store", "path", dbPath)
		return NewSQLiteStore(dbPath)

	case "", "memory":
		logger.Info("Using in-memory projection store")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
