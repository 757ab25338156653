package router

import (
	"context"
	"net/http"
	"time"

	"github.com/tavern-lab/backend/pkg/xcontext"
)

// requestContext carries the cancellation of the HTTP request and the values
// of the router root context.
type requestContext struct {
	context.Context
	values context.Context
}

func (c requestContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.values.Value(key)
}

func (r *Router) newContext(w http.ResponseWriter, req *http.Request) context.Context {
	var ctx context.Context = requestContext{Context: req.Context(), values: r.ctx}
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	ctx = xcontext.WithStartTime(ctx, time.Now())
	return ctx
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		newCtx, err := m(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

func runClosers(ctx context.Context, closers []CloserFunc) {
	for _, c := range closers {
		c(ctx)
	}
}
