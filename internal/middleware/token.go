package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type AccessTokenResponse interface {
	AccessTokenInfo() string
}

func HandleSetAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		tokenResp, ok := xcontext.Response(ctx).(AccessTokenResponse)
		if !ok {
			return nil, nil
		}

		cfg := xcontext.Configs(ctx)
		http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
			Name:     cfg.Auth.AccessToken.Name,
			Value:    tokenResp.AccessTokenInfo(),
			Path:     "/",
			Expires:  time.Now().Add(cfg.Auth.AccessToken.Expiration),
			Secure:   cfg.Env != "local",
			HttpOnly: false,
		})

		return nil, nil
	}
}

// HandleClearAccessToken removes the access token cookie on logout.
func HandleClearAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if _, ok := xcontext.Response(ctx).(ClearSessionResponse); !ok {
			return nil, nil
		}

		http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
			Name:   xcontext.Configs(ctx).Auth.AccessToken.Name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})

		return nil, nil
	}
}
