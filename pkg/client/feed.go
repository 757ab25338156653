package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/ws"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const (
	feedWriteWait  = 10 * time.Second
	feedBufferSize = 64
)

var ErrFeedClosed = errors.New("feed is closed")

// Feed multiplexes change subscriptions over one websocket.
type Feed struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	counter uint64

	subscriptions *xsync.MapOf[string, *FeedSubscription]

	done      chan struct{}
	closeOnce sync.Once
}

// DialFeed connects to the realtime endpoint, e.g. ws://host:port/realtime.
func DialFeed(ctx context.Context, endpoint, accessToken string) (*Feed, error) {
	header := http.Header{}
	if accessToken != "" {
		header.Set("Authorization", "Bearer "+accessToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return nil, errorx.New(errorx.Unavailable, "Cannot connect to the realtime server: %v", err)
	}

	f := &Feed{
		conn:          conn,
		subscriptions: xsync.NewMapOf[*FeedSubscription](),
		done:          make(chan struct{}),
	}

	go f.readLoop(ctx)
	return f, nil
}

// RealtimeEndpoint turns an http API endpoint into its websocket feed url.
func RealtimeEndpoint(apiEndpoint string) string {
	endpoint := strings.TrimRight(apiEndpoint, "/")
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}

	return endpoint + "/realtime"
}

// Subscribe registers a subscription and waits for the server to accept it.
// An empty id is generated.
func (f *Feed) Subscribe(ctx context.Context, sub model.Subscription) (*FeedSubscription, error) {
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("%s-%d", sub.Table, atomic.AddUint64(&f.counter, 1))
	}

	s := &FeedSubscription{
		ID:     sub.ID,
		feed:   f,
		events: make(chan model.ChangeEvent, feedBufferSize),
		ack:    make(chan error, 1),
		done:   make(chan struct{}),
	}

	if _, loaded := f.subscriptions.LoadOrStore(s.ID, s); loaded {
		return nil, errorx.New(errorx.AlreadyExists, "Subscription %s already exists", s.ID)
	}

	if err := f.send(model.DirectiveSubscribe, sub); err != nil {
		f.subscriptions.Delete(s.ID)
		return nil, err
	}

	select {
	case err := <-s.ack:
		if err != nil {
			f.subscriptions.Delete(s.ID)
			return nil, err
		}
		return s, nil

	case <-ctx.Done():
		// The server may already hold the subscription.
		s.release()
		if err := f.send(model.DirectiveUnsubscribe, model.Unsubscription{ID: s.ID}); err != nil &&
			!errors.Is(err, ErrFeedClosed) {
			xcontext.Logger(ctx).Warnf("Cannot unsubscribe %s: %v", s.ID, err)
		}
		return nil, ctx.Err()

	case <-f.done:
		return nil, ErrFeedClosed
	}
}

func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Close releases every subscription and closes their channels.
func (f *Feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.done)

		f.writeMu.Lock()
		f.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.writeMu.Unlock()

		err = f.conn.Close()
		f.subscriptions.Range(func(id string, s *FeedSubscription) bool {
			s.close()
			f.subscriptions.Delete(id)
			return true
		})
	})

	return err
}

// Ping asks the server for a pong frame.
func (f *Feed) Ping() error {
	return f.send(model.DirectivePing, nil)
}

func (f *Feed) send(op string, data any) error {
	select {
	case <-f.done:
		return ErrFeedClosed
	default:
	}

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = b
	}

	msg, err := json.Marshal(model.Directive{Op: op, Data: raw})
	if err != nil {
		return err
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return f.conn.WriteMessage(websocket.TextMessage, msg)
}

func (f *Feed) readLoop(ctx context.Context) {
	defer f.Close()

	for {
		t, msg, err := f.conn.ReadMessage()
		if err != nil {
			select {
			case <-f.done:
			default:
				xcontext.Logger(ctx).Warnf("Realtime connection is closed: %v", err)
			}
			return
		}

		// Binary frames are zlib compressed.
		if t == websocket.BinaryMessage {
			msg, err = ws.Decompress(msg)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot decompress realtime frame: %v", err)
				continue
			}
		}

		var frame model.RawEventResponse
		if err := json.Unmarshal(msg, &frame); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid realtime frame: %v", err)
			continue
		}

		f.handleFrame(ctx, frame)
	}
}

func (f *Feed) handleFrame(ctx context.Context, frame model.RawEventResponse) {
	switch frame.Op {
	case model.FrameSubscribed:
		var data model.Unsubscription
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}

		if s, ok := f.subscriptions.Load(data.ID); ok {
			s.acknowledge(nil)
		}

	case model.FrameError:
		var data model.FrameErrorData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}

		if s, ok := f.subscriptions.Load(data.ID); ok && data.ID != "" {
			s.acknowledge(errorx.New(errorx.BadRequest, "%s", data.Message))
		} else {
			xcontext.Logger(ctx).Warnf("Realtime error: %s", data.Message)
		}

	case model.FrameChange:
		var data model.ChangeNotification
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid change frame: %v", err)
			return
		}

		if s, ok := f.subscriptions.Load(data.Subscription); ok {
			s.deliver(data.Event)
		}

	case model.FrameUnsubscribed, model.FramePong:
	}
}

type FeedSubscription struct {
	ID string

	feed   *Feed
	events chan model.ChangeEvent
	ack    chan error

	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// Events is closed when the subscription is cancelled or the feed closes.
func (s *FeedSubscription) Events() <-chan model.ChangeEvent {
	return s.events
}

// Cancel unsubscribes on the server and closes the events channel.
func (s *FeedSubscription) Cancel() error {
	s.release()
	err := s.feed.send(model.DirectiveUnsubscribe, model.Unsubscription{ID: s.ID})
	if errors.Is(err, ErrFeedClosed) {
		return nil
	}

	return err
}

func (s *FeedSubscription) release() {
	s.feed.subscriptions.Delete(s.ID)
	s.close()
}

func (s *FeedSubscription) acknowledge(err error) {
	select {
	case s.ack <- err:
	default:
	}
}

func (s *FeedSubscription) deliver(event model.ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.events <- event:
	case <-s.done:
	}
}

func (s *FeedSubscription) close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}
