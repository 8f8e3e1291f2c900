package pubsub

import "github.com/KianBaghai/fantasy-predictor/internal/logger"

// MockNATSPubSub stands in for the broker when tests or tooling want the
// Upstream interface without any NATS at all
type MockNATSPubSub struct {
	*PubSub
}

// NewMockNATSPubSub creates an in-memory Upstream
func NewMockNATSPubSub() *MockNATSPubSub {
	logger.Info("Using mock NATS (in-memory pub/sub)")
	return &MockNATSPubSub{PubSub: New()}
}

// Close is a no-op for the mock
func (m *MockNATSPubSub) Close() {}
