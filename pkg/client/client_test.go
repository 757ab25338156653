package client

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func newTestServer(t *testing.T) *httptest.Server {
	r := router.New(testutil.MockContext())

	router.POST(r, "/login", func(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
		if req.Password != "secret" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid email or password")
		}

		return &model.LoginResponse{AccessToken: "token-1", User: model.User{ID: "user-1", Email: req.Email}}, nil
	})

	router.GET(r, "/getRoomLogs", func(ctx context.Context, req *model.GetRoomLogsRequest) (*model.GetRoomLogsResponse, error) {
		if req.RoomID != "room-1" {
			return nil, errorx.New(errorx.NotFound, "Not found room")
		}

		// Echo the authorization so the test can see the bearer token.
		author := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
		return &model.GetRoomLogsResponse{Logs: []model.RoomLog{
			{ID: "1", RoomID: req.RoomID, Author: author, Content: fmt.Sprintf("limit %d", req.Limit)},
		}}, nil
	})

	server := httptest.NewServer(r.Handler(xcontext.Configs(testutil.MockContext()).ApiServer.ServerConfigs))
	t.Cleanup(server.Close)
	return server
}

func Test_Client_LoginAndCall(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	c := New(server.URL, server.Client())

	_, err := c.Login(ctx, &model.LoginRequest{Email: "a@b.c", Password: "wrong"})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
	require.Equal(t, "Invalid email or password", err.Error())
	require.Empty(t, c.AccessToken())

	resp, err := c.Login(ctx, &model.LoginRequest{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "user-1", resp.User.ID)
	require.Equal(t, "token-1", c.AccessToken())

	logs, err := c.GetRoomLogs(ctx, &model.GetRoomLogsRequest{RoomID: "room-1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)
	require.Equal(t, "Bearer token-1", logs.Logs[0].Author)
	require.Equal(t, "limit 5", logs.Logs[0].Content)

	_, err = c.GetRoomLogs(ctx, &model.GetRoomLogsRequest{RoomID: "room-2"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_Client_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	_, err := c.GetMe(context.Background(), &model.GetMeRequest{})
	require.True(t, errorx.Is(err, errorx.Unavailable))
}

func Test_encodeQuery(t *testing.T) {
	values := encodeQuery(&model.GetRoomLogsRequest{RoomID: "room-1"})
	require.Equal(t, "room_id=room-1", values.Encode())

	values = encodeQuery(&model.GetListBadgeRequest{Mine: true})
	require.Equal(t, "mine=true", values.Encode())

	require.Empty(t, encodeQuery(nil))
}

func Test_RealtimeEndpoint(t *testing.T) {
	require.Equal(t, "ws://localhost:8080/realtime", RealtimeEndpoint("http://localhost:8080/"))
	require.Equal(t, "wss://api.tavern.test/realtime", RealtimeEndpoint("https://api.tavern.test"))
}

func Test_DecodeRow(t *testing.T) {
	participant, err := DecodeRow[model.RoomParticipant](map[string]any{
		"room_id":      "room-1",
		"character_id": "char-1",
		"character": map[string]any{
			"id":         "char-1",
			"name":       "Aria",
			"hp_current": float64(7),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "room-1", participant.RoomID)
	require.NotNil(t, participant.Character)
	require.Equal(t, 7, participant.Character.HPCurrent)
}
