package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type authVerifyFunc func(context.Context, *http.Request) string

// AuthVerifier resolves the requester from the first verifier that
// recognizes the request.
type AuthVerifier struct {
	verifiers []authVerifyFunc
	optional  bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

// WithAccessToken accepts a bearer token, the access token cookie or the
// access_token query parameter. The query form is meant for websocket
// handshakes, where browsers cannot set headers.
func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.verifiers = append(a.verifiers, verifyAccessToken)
	return a
}

func (a *AuthVerifier) WithSession() *AuthVerifier {
	a.verifiers = append(a.verifiers, verifySession)
	return a
}

// Optional lets anonymous requests through without a user id.
func (a *AuthVerifier) Optional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		for _, verify := range a.verifiers {
			if userID := verify(ctx, req); userID != "" {
				return xcontext.WithRequestUserID(ctx, userID), nil
			}
		}

		if a.optional {
			return nil, nil
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func verifyAccessToken(ctx context.Context, req *http.Request) string {
	token := strings.TrimSpace(strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		if cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name); err == nil {
			token = cookie.Value
		}
	}

	if token == "" {
		token = req.URL.Query().Get("access_token")
	}

	if token == "" {
		return ""
	}

	var accessToken model.AccessToken
	if err := xcontext.TokenEngine(ctx).Verify(token, &accessToken); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
		return ""
	}

	return accessToken.ID
}

func verifySession(ctx context.Context, req *http.Request) string {
	store := xcontext.SessionStore(ctx)
	if store == nil {
		return ""
	}

	session, err := store.Get(req, xcontext.Configs(ctx).Session.Name)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get session: %v", err)
		return ""
	}

	userID, ok := session.Values[model.SessionUserIDKey].(string)
	if !ok {
		return ""
	}

	return userID
}
