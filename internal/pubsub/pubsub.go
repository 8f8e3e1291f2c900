package pubsub

import (
	"sync"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
)

// Event is one draft event fanned out to clients. Types in use:
// draft:start, draft:pick, draft:complete, draft:reset, projections:updated.
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Upstream is an external broker the local fan-out can bridge to (NATS in
// production, the embedded server in development)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub fans events out to in-process subscribers, optionally routing
// publishes through an upstream broker first
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
}

// New creates a purely local PubSub
func New() *PubSub {
	return &PubSub{}
}

// NewWithUpstream creates a PubSub bridged to an upstream broker:
// publishes go to the upstream, and upstream deliveries are forwarded to
// local subscribers. That way every service instance sees every event.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{upstream: upstream}

	go func() {
		ch := upstream.Subscribe()
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("Upstream event channel closed")
	}()

	return ps
}

// Subscribe registers a new subscriber channel
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 10)
	ps.subscribers = append(ps.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to every subscriber. With an upstream
// configured the event goes there instead and comes back through the
// bridge subscription.
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	subs := make([]chan Event, len(ps.subscribers))
	copy(subs, ps.subscribers)
	ps.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than block the draft loop
		}
	}
}
