package pubsub

import (
	"testing"
	"time"

	"github.com/KianBaghai/fantasy-predictor/internal/logger"
)

func init() {
	logger.Init()
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	defer ps.Unsubscribe(ch1)
	defer ps.Unsubscribe(ch2)

	ps.Publish(Event{Type: "draft:pick", Payload: map[string]interface{}{"overall": 1}})

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != "draft:pick" {
				t.Errorf("subscriber %d got type %q, want draft:pick", i, ev.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive event", i)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := New()

	ch := ps.Subscribe()
	ps.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel should be closed after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic
	ps.Publish(Event{Type: "draft:reset"})
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	ps := New()

	ch := ps.Subscribe()
	defer ps.Unsubscribe(ch)

	// Channel buffer is 10; flood past it. Publish must return promptly.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			ps.Publish(Event{Type: "draft:pick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

// fakeUpstream loops publishes back to its subscribers the way a broker
// does
type fakeUpstream struct {
	ch chan Event
}

func (f *fakeUpstream) Publish(e Event)          { f.ch <- e }
func (f *fakeUpstream) Subscribe() chan Event    { return f.ch }
func (f *fakeUpstream) Unsubscribe(c chan Event) {}

func TestUpstreamBridge(t *testing.T) {
	up := &fakeUpstream{ch: make(chan Event, 10)}
	ps := NewWithUpstream(up)

	sub := ps.Subscribe()
	defer ps.Unsubscribe(sub)

	ps.Publish(Event{Type: "draft:start"})

	select {
	case ev := <-sub:
		if ev.Type != "draft:start" {
			t.Errorf("got type %q, want draft:start", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("event did not round-trip through the upstream bridge")
	}
}
