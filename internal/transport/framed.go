package transport

import (
	"bufio"
	"ctchen222/Battleship/pkg/proto"
	"net"
	"sync"
	"time"
)

// FramedConn carries length-prefixed JSON frames over a byte stream.
// Writes are serialized; reads must come from a single goroutine.
type FramedConn struct {
	conn net.Conn
	r    *bufio.Reader
	opts options

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewFramedConn wraps conn.
func NewFramedConn(conn net.Conn, opts ...Option) *FramedConn {
	return &FramedConn{
		conn: conn,
		r:    bufio.NewReader(conn),
		opts: buildOptions(opts),
	}
}

// ReadMessage blocks until one complete frame is decoded.
func (c *FramedConn) ReadMessage() (proto.Message, error) {
	return proto.ReadMessage(c.r, c.opts.maxBody)
}

// WriteMessage frames msg and writes it in one call.
func (c *FramedConn) WriteMessage(msg proto.Message) error {
	frame, err := proto.Encode(msg)
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
	_, err = c.conn.Write(frame)
	return err
}

// Close closes the underlying stream. Later calls return the first result.
func (c *FramedConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *FramedConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
