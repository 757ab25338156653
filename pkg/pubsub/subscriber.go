package pubsub

import (
	"context"
	"time"
)

type SubscribeHandler func(context.Context, *Pack, time.Time)

// Subscriber consumes topics and calls its handler for every pack. Subscribe
// returns once the subscription is established; delivery continues in the
// background until ctx is done or Stop is called.
type Subscriber interface {
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
