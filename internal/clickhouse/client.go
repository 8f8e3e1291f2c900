package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Client pulls projected fantasy points from the analytics warehouse.
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

// GetProjectedPoints retrieves the current projection for one player.
func (c *Client) GetProjectedPoints(ctx context.Context, playerID string) (float64, error) {
	var points float64

	query := `
		SELECT round(avg(projected_points), 2) as points
		FROM player_projections
		WHERE player_id = $1
		AND updated_at >= now() - INTERVAL 7 DAY
	`

	row := c.conn.QueryRow(ctx, query, playerID)
	if err := row.Scan(&points); err != nil {
		return 0, err
	}

	return points, nil
}

// GetAllProjectedPoints retrieves the latest projections for every player
// with a fresh row in the warehouse.
func (c *Client) GetAllProjectedPoints(ctx context.Context) (map[string]float64, error) {
	points := make(map[string]float64)

	query := `
		SELECT
			player_id,
			round(avg(projected_points), 2) as points
		FROM player_projections
		WHERE updated_at >= now() - INTERVAL 7 DAY
		GROUP BY player_id
	`

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var pts float64
		if err := rows.Scan(&id, &pts); err != nil {
			return nil, err
		}
		points[id] = pts
	}

	return points, nil
}

// SyncProjections pushes the latest warehouse projections through updateFunc,
// typically the projection store's point setter. Called periodically to keep
// the draft board current between sessions.
func (c *Client) SyncProjections(ctx context.Context, updateFunc func(playerID string, points float64) error) error {
	allPoints, err := c.GetAllProjectedPoints(ctx)
	if err != nil {
		return err
	}

	for playerID, points := range allPoints {
		if err := updateFunc(playerID, points); err != nil {
			return fmt.Errorf("failed to update points for %s: %w", playerID, err)
		}
	}

	return nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
