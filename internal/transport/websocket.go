package transport

import (
	"ctchen222/Battleship/pkg/proto"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn carries one JSON body per websocket message. The 8-byte length
// header is not used; websocket framing already delimits messages.
type WSConn struct {
	conn *websocket.Conn
	opts options

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewWSConn wraps an upgraded websocket connection.
func NewWSConn(conn *websocket.Conn, opts ...Option) *WSConn {
	o := buildOptions(opts)
	if o.maxBody <= 0 {
		o.maxBody = proto.DefaultMaxBodySize
	}
	conn.SetReadLimit(int64(o.maxBody))
	return &WSConn{conn: conn, opts: o}
}

// ReadMessage blocks until one data message is decoded. Connection level
// failures, including close frames, are reported as proto.ErrFraming.
func (c *WSConn) ReadMessage() (proto.Message, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if err == websocket.ErrReadLimit {
				return nil, fmt.Errorf("%w: %w: %w", proto.ErrFraming, proto.ErrFrameTooLarge, err)
			}
			return nil, fmt.Errorf("%w: %w", proto.ErrFraming, err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		return proto.Unmarshal(data)
	}
}

// WriteMessage sends msg as a single text message.
func (c *WSConn) WriteMessage(msg proto.Message) error {
	body, err := proto.Marshal(msg)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.opts.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, body)
}

// Close sends a close frame when possible and closes the connection.
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.wmu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
