package pubsub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/pkg/pubsub"
)

func TestMemoryBroker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewMemoryBroker()
	received := make(chan string, 10)
	subscriber := broker.NewSubscriber([]string{"changes"}, func(ctx context.Context, p *pubsub.Pack, _ time.Time) {
		received <- string(p.Msg)
	})
	subscriber.Subscribe(ctx)

	require.NoError(t, broker.Publish(ctx, "changes", &pubsub.Pack{Key: []byte("items"), Msg: []byte("1")}))
	require.NoError(t, broker.Publish(ctx, "other", &pubsub.Pack{Msg: []byte("ignored")}))
	require.NoError(t, broker.Publish(ctx, "changes", &pubsub.Pack{Key: []byte("items"), Msg: []byte("2")}))

	require.Equal(t, "1", waitFor(t, received))
	require.Equal(t, "2", waitFor(t, received))

	require.NoError(t, subscriber.Stop(ctx))
	require.NoError(t, broker.Publish(ctx, "changes", &pubsub.Pack{Msg: []byte("3")}))

	select {
	case msg := <-received:
		t.Fatalf("unexpected message after stop: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitFor(t *testing.T, c chan string) string {
	select {
	case s := <-c:
		return s
	case <-time.After(time.Second):
		t.Fatal("timeout")
		return ""
	}
}
