package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type RealtimeDomain interface {
	ServeRealtime(context.Context, *model.ServeRealtimeRequest) error
}

type realtimeDomain struct {
	hub *changefeed.Hub
}

func NewRealtimeDomain(hub *changefeed.Hub) *realtimeDomain {
	return &realtimeDomain{hub: hub}
}

// ServeRealtime binds the websocket of the request to a new hub session and
// blocks until either side goes away.
func (d *realtimeDomain) ServeRealtime(ctx context.Context, req *model.ServeRealtimeRequest) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errorx.New(errorx.Unauthenticated, "User is not valid")
	}

	client := xcontext.WSClient(ctx)
	if client == nil {
		return errorx.New(errorx.BadRequest, "Require a websocket connection")
	}

	session, err := d.hub.Register(uuid.NewString(), userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot register realtime session: %v", err)
		return errorx.Unknown
	}
	defer d.hub.Unregister(session.ID)

	xcontext.Logger(ctx).Debugf("Realtime session %s of user %s is opened", session.ID, userID)

	compress := xcontext.Configs(ctx).RealtimeServer.CompressFrames
	go func() {
		for {
			select {
			case frame := <-session.Frames():
				if err := client.Write(frame, compress); err != nil {
					return
				}
			case <-session.Done():
				// The hub dropped a session that fell behind.
				client.Close()
				return
			case <-client.Done():
				return
			}
		}
	}()

	for msg := range client.R {
		session.HandleDirective(ctx, msg)
	}

	xcontext.Logger(ctx).Debugf("Realtime session %s is closed", session.ID)
	return nil
}
