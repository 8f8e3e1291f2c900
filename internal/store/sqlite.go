package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// SQLiteStore implements ProjectionStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite projection store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		points REAL NOT NULL DEFAULT 0,
		attrs TEXT NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_projections_position ON projections(position);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SavePlayers(players []models.Player) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM projections`); err != nil {
		return fmt.Errorf("failed to clear projections: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO projections (id, name, position, points, attrs)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		attrs, err := json.Marshal(p.Attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal attrs for %s: %w", p.Name, err)
		}
		if _, err := stmt.Exec(p.ID, p.Name, string(p.Position), p.Points, string(attrs)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadPlayers() ([]models.Player, error) {
	rows, err := s.db.Query(`
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

func (s *SQLiteStore) SetPlayerPoints(id string, points float64) error {
	result, err := s.db.Exec(`UPDATE projections SET points = ? WHERE id = ?`, points, id)
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

func (s *SQLiteStore) Ping() error { return s.db.Ping() }

func (s *SQLiteStore) Close() error { return s.db.Close() }

// scanPlayers builds players from a projection result set. Shared by the
// SQLite and PostgreSQL stores, whose column layouts match.
func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	var players []models.Player
	for rows.Next() {
		var p models.Player
		var pos, attrs string
		if err := rows.Scan(&p.ID, &p.Name, &pos, &p.Points, &attrs); err != nil {
			return nil, err
		}
		p.Position = models.Position(pos)
		if err := json.Unmarshal([]byte(attrs), &p.Attrs); err != nil {
			p.Attrs = nil
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
