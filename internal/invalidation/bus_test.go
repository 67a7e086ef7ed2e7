package invalidation

import (
	"context"
	"testing"
)

func TestLocalBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewLocalBus()

	var got []Event
	bus.Subscribe(func(ev Event) { got = append(got, ev) })
	bus.Subscribe(func(ev Event) { got = append(got, ev) })

	if err := bus.Publish(context.Background(), Event{Topic: TopicStock, ProductIDs: []string{"brg-1"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0].Topic != TopicStock || len(got[0].ProductIDs) != 1 || got[0].ProductIDs[0] != "brg-1" {
		t.Fatalf("unexpected event: %+v", got[0])
	}
}

func TestLocalBusNoSubscribers(t *testing.T) {
	bus := NewLocalBus()
	if err := bus.Publish(context.Background(), Event{Topic: TopicStock}); err != nil {
		t.Fatalf("publish without subscribers should not fail: %v", err)
	}
}
