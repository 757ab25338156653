package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func Logger(env string) router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		latency := time.Since(xcontext.StartTime(ctx))
		info := fmt.Sprintf("%s | %s | %s", req.Method, req.URL.Path, latency)

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				if env == "local" {
					xcontext.Logger(ctx).Warnf("%s | %d | %s", info, errx.Code, errx.Message)
				} else {
					xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
				}
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d | %v", info, -1, err)
			}
		} else {
			xcontext.Logger(ctx).Infof("%s | %d", info, 0)
		}
	}
}
