package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/KianBaghai/fantasy-predictor/internal/models"
)

// MemoryStore implements ProjectionStore using in-memory storage.
type MemoryStore struct {
	mu      sync.RWMutex
	players []models.Player
}

// NewMemoryStore creates a new in-memory projection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SavePlayers(players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players = make([]models.Player, len(players))
	copy(m.players, players)
	for i := range m.players {
		if m.players[i].ID == "" {
			m.players[i].ID = uuid.NewString()
		}
	}
	return nil
}

func (m *MemoryStore) LoadPlayers() ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Copies to avoid race conditions with callers mutating the slice
	out := make([]models.Player, len(m.players))
	copy(out, m.players)
	return out, nil
}

func (m *MemoryStore) SetPlayerPoints(id string, points float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.players {
		if m.players[i].ID == id {
			m.players[i].Points = points
			return nil
		}
	}
	return fmt.Errorf("player %s not found", id)
}

func (m *MemoryStore) Ping() error { return nil }

func (m *MemoryStore) Close() error { return nil }
