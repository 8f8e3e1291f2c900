package clickhouse

import (
	"context"
	"math/rand"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
)

// ProjectionSource is the warehouse surface main wires against, so local
// development can run without a ClickHouse instance.
type ProjectionSource interface {
	GetProjectedPoints(ctx context.Context, playerID string) (float64, error)
	GetAllProjectedPoints(ctx context.Context) (map[string]float64, error)
	SyncProjections(ctx context.Context, updateFunc func(playerID string, points float64) error) error
	Close() error
}

// MockClient provides a mock warehouse client for local development. It
// perturbs a fixed baseline by up to ±10% so re-syncs visibly move numbers.
type MockClient struct {
	basePoints map[string]float64
}

// NewMockClient creates a mock warehouse client seeded with the given
// baseline projections.
func NewMockClient(basePoints map[string]float64) *MockClient {
	logger.Info("Using MOCK ClickHouse client for local development")

	if basePoints == nil {
		basePoints = map[string]float64{}
	}
	return &MockClient{basePoints: basePoints}
}

func (m *MockClient) perturb(base float64) float64 {
	if base <= 0 {
		return base
	}
	return base * (0.9 + rand.Float64()*0.2)
}

func (m *MockClient) GetProjectedPoints(_ context.Context, playerID string) (float64, error) {
	base, ok := m.basePoints[playerID]
	if !ok {
		base = 100
	}
	return m.perturb(base), nil
}

func (m *MockClient) GetAllProjectedPoints(_ context.Context) (map[string]float64, error) {
	result := make(map[string]float64, len(m.basePoints))
	for id, base := range m.basePoints {
		result[id] = m.perturb(base)
	}
	return result, nil
}

func (m *MockClient) SyncProjections(ctx context.Context, updateFunc func(playerID string, points float64) error) error {
	allPoints, err := m.GetAllProjectedPoints(ctx)
	if err != nil {
		return err
	}

	for playerID, points := range allPoints {
		if err := updateFunc(playerID, points); err != nil {
			logger.Warn("Failed to update points", "player", playerID, "error", err)
		}
	}

	logger.Debug("Mock warehouse sync complete", "players", len(allPoints))
	return nil
}

// Close is a no-op for the mock client.
func (m *MockClient) Close() error { return nil }
