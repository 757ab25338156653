package middleware

import (
	"context"
	"errors"

	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type SessionResponse interface {
	SessionInfo() map[string]any
}

type ClearSessionResponse interface {
	ClearSession()
}

func HandleSaveSession() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		sessionResp, ok := xcontext.Response(ctx).(SessionResponse)
		if !ok {
			return nil, nil
		}

		sessionInfo := sessionResp.SessionInfo()
		if sessionInfo == nil {
			return nil, errors.New("no session info")
		}

		req, w := xcontext.HTTPRequest(ctx), xcontext.HTTPWriter(ctx)
		session, err := xcontext.SessionStore(ctx).Get(req, xcontext.Configs(ctx).Session.Name)
		if err != nil {
			return nil, err
		}

		for k, v := range sessionInfo {
			session.Values[k] = v
		}

		if err := session.Save(req, w); err != nil {
			return nil, err
		}

		return nil, nil
	}
}

// HandleClearSession expires the session cookie when the response asks so.
func HandleClearSession() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if _, ok := xcontext.Response(ctx).(ClearSessionResponse); !ok {
			return nil, nil
		}

		req, w := xcontext.HTTPRequest(ctx), xcontext.HTTPWriter(ctx)
		session, err := xcontext.SessionStore(ctx).Get(req, xcontext.Configs(ctx).Session.Name)
		if err != nil {
			// A broken cookie is as good as a cleared one.
			xcontext.Logger(ctx).Debugf("Cannot get session: %v", err)
			return nil, nil
		}

		session.Values = map[any]any{}
		session.Options.MaxAge = -1
		return nil, session.Save(req, w)
	}
}
