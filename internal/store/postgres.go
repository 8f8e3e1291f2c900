package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// PostgresStore implements ProjectionStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL projection store. The connection
// is verified with retries to ride out DNS propagation delays in Kubernetes.
func NewPostgresStore(connString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		points DOUBLE PRECISION NOT NULL DEFAULT 0,
		attrs JSONB NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_projections_position ON projections(position);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) SavePlayers(players []models.Player) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM projections`); err != nil {
		return fmt.Errorf("failed to clear projections: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO projections (id, name, position, points, attrs)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			attrs = EXCLUDED.attrs
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pl := range players {
		if pl.ID == "" {
			pl.ID = uuid.NewString()
		}
		attrs, err := json.Marshal(pl.Attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal attrs for %s: %w", pl.Name, err)
		}
		if _, err := stmt.Exec(pl.ID, pl.Name, string(pl.Position), pl.Points, string(attrs)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", pl.Name, err)
		}
	}

	return tx.Commit()
}

func (p *PostgresStore) LoadPlayers() ([]models.Player, error) {
	rows, err := p.db.Query(`
		SELECT id, name, position, points, attrs
		FROM projections
		ORDER BY points DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (p *PostgresStore) SetPlayerPoints(id string, points float64) error {
	result, err := p.db.Exec(`UPDATE projections SET points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("player %s not found", id)
	}
	return nil
}

func (p *PostgresStore) Ping() error { return p.db.Ping() }

func (p *PostgresStore) Close() error { return p.db.Close() }
