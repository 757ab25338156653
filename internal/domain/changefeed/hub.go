package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// Hub fans change events out to the registered sessions. Every event goes
// through the policy before it reaches a session.
type Hub struct {
	policy   RowPolicy
	sessions *xsync.MapOf[string, *Session]
}

// NewHub creates a hub. A nil policy sends every row as it is.
func NewHub(policy RowPolicy) *Hub {
	if policy == nil {
		policy = openPolicy{}
	}

	return &Hub{policy: policy, sessions: xsync.NewMapOf[*Session]()}
}

// Register creates the session of one websocket connection. Frames for the
// connection are read from Session.Frames.
func (h *Hub) Register(sessionID, userID string) (*Session, error) {
	s := newSession(sessionID, userID, h.policy)
	if _, existed := h.sessions.LoadOrStore(sessionID, s); existed {
		return nil, errors.New("the session has already registered")
	}

	return s, nil
}

// Unregister drops the session and all of its subscriptions.
func (h *Hub) Unregister(sessionID string) {
	s, ok := h.sessions.LoadAndDelete(sessionID)
	if !ok {
		return
	}

	s.close()
}

func (h *Hub) Count() int {
	return h.sessions.Size()
}

// SubscriptionCount sums the subscriptions of every session.
func (h *Hub) SubscriptionCount() int {
	count := 0
	h.sessions.Range(func(_ string, s *Session) bool {
		count += s.SubscriptionCount()
		return true
	})
	return count
}

func (h *Hub) Dispatch(ctx context.Context, event *model.ChangeEvent) {
	h.sessions.Range(func(_ string, s *Session) bool {
		s.notify(ctx, event)
		return true
	})
}

// SubscribeHandler decodes packs published by the Emitter and dispatches them.
func (h *Hub) SubscribeHandler(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.ChangeEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal change event: %v", err)
		return
	}

	h.Dispatch(ctx, &event)
}
