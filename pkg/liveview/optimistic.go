package liveview

import (
	"context"

	"github.com/tavern-lab/backend/pkg/xcontext"
)

// Optimistic applies mutate to the local row of key, then runs the remote
// write. When the write fails the collection is resynchronized from the
// server and the write error is returned.
func Optimistic[T any](
	ctx context.Context,
	c *Collection[T],
	key string,
	mutate func(*T),
	write func(context.Context) error,
	resync func(context.Context) error,
) error {
	c.Update(key, mutate)

	err := write(ctx)
	if err == nil {
		return nil
	}

	if resync != nil {
		if rerr := resync(ctx); rerr != nil {
			xcontext.Logger(ctx).Warnf("Cannot resync after a failed write: %v", rerr)
		}
	}

	return err
}

// ResyncWith builds a resync function replacing the collection with a fresh
// fetch.
func ResyncWith[T any](c *Collection[T], fetch FetchFunc[T]) func(context.Context) error {
	return func(ctx context.Context) error {
		rows, err := fetch(ctx)
		if err != nil {
			return err
		}

		c.Replace(rows)
		return nil
	}
}
