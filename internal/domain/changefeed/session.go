package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const frameBufferSize = 256

// Session holds the subscriptions of one connection. All of them are
// multiplexed on the same frame channel. A session whose reader falls
// frameBufferSize frames behind is closed.
type Session struct {
	ID     string
	UserID string

	policy        RowPolicy
	frames        chan []byte
	done          chan struct{}
	closeOnce     sync.Once
	seq           uint64
	subscriptions *xsync.MapOf[string, *subscription]
}

func newSession(id, userID string, policy RowPolicy) *Session {
	return &Session{
		ID:            id,
		UserID:        userID,
		policy:        policy,
		frames:        make(chan []byte, frameBufferSize),
		done:          make(chan struct{}),
		subscriptions: xsync.NewMapOf[*subscription](),
	}
}

func (s *Session) Frames() <-chan []byte {
	return s.frames
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.subscriptions.Range(func(id string, _ *subscription) bool {
			s.subscriptions.Delete(id)
			return true
		})
	})
}

func (s *Session) SubscriptionCount() int {
	return s.subscriptions.Size()
}

// HandleDirective applies one client directive. Invalid directives are
// answered with an error frame, they never close the session.
func (s *Session) HandleDirective(ctx context.Context, msg []byte) {
	var directive model.Directive
	if err := json.Unmarshal(msg, &directive); err != nil {
		s.sendError(ctx, "", "Invalid directive")
		return
	}

	switch directive.Op {
	case model.DirectiveSubscribe:
		var req model.Subscription
		if err := json.Unmarshal(directive.Data, &req); err != nil {
			s.sendError(ctx, "", "Invalid subscription")
			return
		}

		sub, err := newSubscription(req)
		if err != nil {
			s.sendError(ctx, req.ID, errorMessage(err))
			return
		}

		s.subscriptions.Store(sub.id, sub)
		s.send(ctx, model.FrameSubscribed, model.Unsubscription{ID: sub.id})

	case model.DirectiveUnsubscribe:
		var req model.Unsubscription
		if err := json.Unmarshal(directive.Data, &req); err != nil {
			s.sendError(ctx, "", "Invalid unsubscription")
			return
		}

		s.subscriptions.Delete(req.ID)
		s.send(ctx, model.FrameUnsubscribed, req)

	case model.DirectivePing:
		s.send(ctx, model.FramePong, nil)

	default:
		s.sendError(ctx, "", "Unknown op "+directive.Op)
	}
}

func (s *Session) notify(ctx context.Context, event *model.ChangeEvent) {
	var view *model.ChangeEvent
	s.subscriptions.Range(func(id string, sub *subscription) bool {
		if !sub.match(event) {
			return true
		}

		if view == nil {
			view = s.policy.View(ctx, s.UserID, event)
		}

		return s.send(ctx, model.FrameChange, model.ChangeNotification{Subscription: id, Event: *view})
	})
}

func (s *Session) sendError(ctx context.Context, id, message string) {
	s.send(ctx, model.FrameError, model.FrameErrorData{ID: id, Message: message})
}

// send queues one frame without blocking. It returns false once the session
// is closed.
func (s *Session) send(ctx context.Context, op string, data any) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	b, err := json.Marshal(model.EventResponse{
		Op:   op,
		Seq:  atomic.AddUint64(&s.seq, 1),
		Data: data,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal frame: %v", err)
		return true
	}

	select {
	case s.frames <- b:
		return true
	default:
		xcontext.Logger(ctx).Warnf("Realtime session %s is too slow, closing it", s.ID)
		s.close()
		return false
	}
}

func errorMessage(err error) string {
	var errx errorx.Error
	if errors.As(err, &errx) {
		return errx.Message
	}
	return err.Error()
}
