// Package invalidation carries stock-change notifications from writers to the
// recap cache. Every path that mutates stock publishes an event; subscribers
// drop their cached recaps immediately instead of waiting out a polling
// interval. RedisBus fans events out across instances, LocalBus serves a
// single process.
package invalidation

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

const TopicStock = "stock"

// Event announces that stock data changed. ProductIDs may be empty when the
// exact scope is unknown; subscribers treat that as "drop everything".
type Event struct {
	Topic      string   `json:"topic"`
	ProductIDs []string `json:"product_ids,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(fn func(Event))
}

// LocalBus delivers events to in-process subscribers only.
type LocalBus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (b *LocalBus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// RedisBus publishes events on a Redis channel and relays received events to
// local subscribers, so every instance behind the load balancer invalidates
// together.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   *LocalBus
	cancel  context.CancelFunc
}

func NewRedisBus(addr string, password string, db int, channel string) *RedisBus {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if channel == "" {
		channel = "assunnahmart:invalidation"
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		local:   NewLocalBus(),
	}
}

func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(fn func(Event)) {
	b.local.Subscribe(fn)
}

// Run consumes the Redis channel until the context is canceled. Malformed
// payloads are logged and skipped.
func (b *RedisBus) Run(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	sub := b.client.Subscribe(ctx, b.channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("invalidation: bad payload: %v", err)
					continue
				}
				b.local.Publish(ctx, ev)
			}
		}
	}()
}

func (b *RedisBus) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.client.Close()
}
