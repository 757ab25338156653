package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var ErrClosed = errors.New("connection is closed")

type MessageInfo struct {
	msg             []byte
	needCompression bool
}

// Client owns one websocket connection. Inbound text frames are delivered on
// R, which is closed when the peer goes away. Outbound frames are queued
// through Write.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte

	w          chan MessageInfo
	done       chan struct{}
	closeOnce  sync.Once
	compressed bool
}

// NewClient starts the reader and writer loops. When compressed is true,
// inbound frames are zlib streams and are inflated before delivery.
func NewClient(conn *websocket.Conn, compressed bool) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn:       conn,
		R:          make(chan []byte, 128),
		w:          make(chan MessageInfo, 128),
		done:       make(chan struct{}),
		compressed: compressed,
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)
	defer c.Close()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t == websocket.CloseMessage {
			return
		}

		if t != websocket.TextMessage && t != websocket.BinaryMessage {
			continue
		}

		if c.compressed {
			msg, err = Decompress(msg)
			if err != nil {
				continue
			}
		}

		select {
		case c.R <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) runWriter() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Conn.Close()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case msgInfo := <-c.w:
			msg, msgType := msgInfo.msg, websocket.TextMessage
			if msgInfo.needCompression {
				msgType = websocket.BinaryMessage
				var err error
				msg, err = Compress(msgInfo.msg)
				if err != nil {
					continue
				}
			}

			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(msgType, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Client) Write(msg []byte, needCompression bool) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.w <- MessageInfo{msg: msg, needCompression: needCompression}:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Done is closed once the client is closed by either side.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
