package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToAllSubscribers(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	saleID := int64(12)
	ev := NewConsumablesUpdated("sell", []int64{1}, &saleID)
	hub.Notify(context.Background(), ev)

	for _, ch := range []<-chan Event{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, ev.ID, got.ID)
			assert.Equal(t, TypeConsumablesUpdated, got.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHub_CancelUnsubscribesAndCloses(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()

	assert.Equal(t, 0, hub.Subscribers())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Notify(context.Background(), NewConsumablesUpdated("edit", []int64{1}, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
}

type fakePublisher struct {
	channel string
	payload []byte
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestRedisNotifier_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "gameclub:test")

	ev := NewConsumablesUpdated("multi-sell", []int64{1, 2}, nil)
	n.Notify(context.Background(), ev)

	assert.Equal(t, "gameclub:test", pub.channel)
	var got Event
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, []int64{1, 2}, got.ConsumableIDs)

	decoded, err := decodeEvent(string(pub.payload))
	require.NoError(t, err)
	assert.Equal(t, "multi-sell", decoded.Reason)
}
