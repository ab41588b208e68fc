package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/baharkarakas/servicehub-backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T) *Hub {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHub(client, logger.Discard())
}

func TestEmitReachesOnlyThatUser(t *testing.T) {
	hub := newHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := hub.Subscribe(ctx, "provider-1")
	require.NoError(t, err)
	defer provider.Close()
	other, err := hub.Subscribe(ctx, "customer-1")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, hub.Emit(ctx, "provider-1", EventNewBooking, map[string]any{"id": "b-1", "amount": 500}))

	select {
	case ev := <-provider.Events:
		assert.Equal(t, EventNewBooking, ev.Name)
		var data map[string]any
		require.NoError(t, json.Unmarshal(ev.Data, &data))
		assert.Equal(t, "b-1", data["id"])
	case <-ctx.Done():
		t.Fatal("provider did not receive event")
	}

	select {
	case ev := <-other.Events:
		t.Fatalf("unexpected event on other channel: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEmitWithoutSubscribers(t *testing.T) {
	hub := newHub(t)
	assert.NoError(t, hub.Emit(context.Background(), "nobody", EventNotification, "hi"))
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	hub := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := hub.Subscribe(ctx, "u-1")
	require.NoError(t, err)
	defer sub.Close()

	cancel()
	select {
	case _, ok := <-sub.Events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "user:abc", Channel("abc"))
	assert.NoError(t, Nop{}.Emit(context.Background(), "x", "y", nil))
}
