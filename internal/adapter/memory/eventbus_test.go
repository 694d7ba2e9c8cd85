package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alanyang/twig/internal/adapter/memory"
	"github.com/alanyang/twig/internal/domain/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBus_DeliversToSubscribers(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	var (
		mu  sync.Mutex
		got []event.Event
	)
	received := make(chan struct{}, 2)
	handler := func(_ context.Context, e event.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		received <- struct{}{}
	}
	sub1, err := bus.Subscribe(ctx, event.ChannelRegistry, handler)
	require.NoError(t, err)
	sub2, err := bus.Subscribe(ctx, event.ChannelRegistry, handler)
	require.NoError(t, err)

	gen := uuid.New()
	require.NoError(t, bus.Publish(ctx, event.Reloaded(gen, 3, 1)))

	for range 2 {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
	sub1.Unsubscribe()
	sub2.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, event.TypePromptsReloaded, e.Type)
		assert.Equal(t, gen, e.Generation)
		assert.Equal(t, 3, e.Loaded)
		assert.Equal(t, 1, e.Skipped)
	}
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	calls := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelRegistry, func(_ context.Context, e event.Event) {
		calls <- e
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.Reloaded(uuid.New(), 0, 0)))
	select {
	case <-calls:
		t.Fatal("handler ran after Unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_ContextCancelEndsSubscription(t *testing.T) {
	bus := memory.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := bus.Subscribe(ctx, event.ChannelRegistry, func(context.Context, event.Event) {})
	require.NoError(t, err)
	cancel()
	sub.Unsubscribe()
}

func TestEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := memory.NewEventBus()
	assert.NoError(t, bus.Publish(context.Background(), event.ReloadFailed(assert.AnError)))
}
