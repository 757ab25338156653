package pubsub

import "context"

// Pack is one broker message. Packs with the same Key keep their relative
// order on brokers that partition by key.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
