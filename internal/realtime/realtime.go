// Package realtime pushes per-user events over Redis Pub/Sub.
//
// Every user has one channel, user:<id>. Publishing to a channel with no
// subscriber is not an error; offline users read their persisted notifications later.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	EventNotification = "notification"
	EventNewBooking   = "new_booking"
)

type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
	At   time.Time       `json:"at"`
}

// Publisher emits an event onto one user's channel.
type Publisher interface {
	Emit(ctx context.Context, userID, event string, payload any) error
}

func Channel(userID string) string { return "user:" + userID }

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type Hub struct {
	client *redis.Client
	log    *slog.Logger
	now    func() time.Time
}

func NewHub(client *redis.Client, log *slog.Logger) *Hub {
	return &Hub{client: client, log: log, now: time.Now}
}

func (h *Hub) Emit(ctx context.Context, userID, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Event{Name: event, Data: data, At: h.now().UTC()})
	if err != nil {
		return err
	}
	receivers, err := h.client.Publish(ctx, Channel(userID), msg).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	h.log.Debug("realtime event", "event", event, "user_id", userID, "receivers", receivers)
	return nil
}

// Subscription streams a user's events until Close is called or its context ends.
type Subscription struct {
	Events <-chan Event
	ps     *redis.PubSub
}

func (s *Subscription) Close() error { return s.ps.Close() }

func (h *Hub) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ps := h.client.Subscribe(ctx, Channel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel(userID), err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					h.log.Warn("dropping malformed realtime message", "channel", m.Channel, "err", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return &Subscription{Events: out, ps: ps}, nil
}

// Nop drops every event. Used when no Redis is configured.
type Nop struct{}

func (Nop) Emit(context.Context, string, string, any) error { return nil }
