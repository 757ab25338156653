package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/config"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type rollRequest struct {
	RoomID string `json:"room_id"`
	Sides  int    `json:"sides"`
}

type rollResponse struct {
	Roller string `json:"roller"`
	Sides  int    `json:"sides"`
}

type envelope struct {
	Code  int             `json:"code"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func roll(ctx context.Context, req *rollRequest) (*rollResponse, error) {
	switch req.RoomID {
	case "missing":
		return nil, errorx.New(errorx.NotFound, "Not found room")
	case "broken":
		return nil, errors.New("connection reset")
	}

	return &rollResponse{Roller: xcontext.RequestUserID(ctx), Sides: req.Sides}, nil
}

func serve(t *testing.T, h http.Handler, req *http.Request) (int, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func Test_Router_Envelope(t *testing.T) {
	r := New(context.Background())
	r.Before(func(ctx context.Context) (context.Context, error) {
		return xcontext.WithRequestUserID(ctx, "user-1"), nil
	})
	GET(r, "/getRoll", roll)
	POST(r, "/rollDice", roll)
	h := r.Handler(config.ServerConfigs{})

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   int
	}{
		{
			name:       "query",
			req:        httptest.NewRequest(http.MethodGet, "/getRoll?room_id=r1&sides=20", nil),
			wantStatus: http.StatusOK,
		},
		{
			name:       "json body",
			req:        httptest.NewRequest(http.MethodPost, "/rollDice", strings.NewReader(`{"room_id":"r1","sides":20}`)),
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong method",
			req:        httptest.NewRequest(http.MethodGet, "/rollDice", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   int(errorx.BadRequest),
		},
		{
			name:       "invalid body",
			req:        httptest.NewRequest(http.MethodPost, "/rollDice", strings.NewReader(`{"sides":"many"`)),
			wantStatus: http.StatusBadRequest,
			wantCode:   int(errorx.BadRequest),
		},
		{
			name:       "domain error",
			req:        httptest.NewRequest(http.MethodGet, "/getRoll?room_id=missing", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   int(errorx.NotFound),
		},
		{
			name:       "unexpected error",
			req:        httptest.NewRequest(http.MethodGet, "/getRoll?room_id=broken", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   int(errorx.Unknown.Code),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serve(t, h, tt.req)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantCode, resp.Code)
			if tt.wantCode != 0 {
				require.NotEmpty(t, resp.Error)
				return
			}

			var data rollResponse
			require.NoError(t, json.Unmarshal(resp.Data, &data))
			require.Equal(t, rollResponse{Roller: "user-1", Sides: 20}, data)
		})
	}
}

func Test_Router_BranchMiddlewares(t *testing.T) {
	r := New(context.Background())

	var closed []error
	r.AddCloser(func(ctx context.Context) { closed = append(closed, xcontext.Error(ctx)) })

	private := r.Branch()
	private.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})
	GET(private, "/private", roll)
	GET(r, "/public", roll)
	h := r.Handler(config.ServerConfigs{})

	status, resp := serve(t, h, httptest.NewRequest(http.MethodGet, "/private?sides=6", nil))
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, int(errorx.Unauthenticated), resp.Code)

	// The branch middleware does not leak into the parent.
	status, resp = serve(t, h, httptest.NewRequest(http.MethodGet, "/public?sides=6", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 0, resp.Code)

	require.Len(t, closed, 2)
	require.True(t, errorx.Is(closed[0], errorx.Unauthenticated))
	require.NoError(t, closed[1])
}

func Test_Router_AfterSeesResponse(t *testing.T) {
	r := New(context.Background())

	var seen *rollResponse
	r.After(func(ctx context.Context) (context.Context, error) {
		seen, _ = xcontext.Response(ctx).(*rollResponse)
		return nil, nil
	})
	POST(r, "/rollDice", roll)

	status, _ := serve(t, r.Handler(config.ServerConfigs{}),
		httptest.NewRequest(http.MethodPost, "/rollDice", strings.NewReader(`{"sides":8}`)))
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, seen)
	require.Equal(t, 8, seen.Sides)
}
