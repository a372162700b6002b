package transport

import "time"

// Transport names as reported in events and the admin API.
const (
	TCP       = "tcp"
	WebSocket = "ws"
	Bot       = "bot"
)

const defaultWriteTimeout = 10 * time.Second

type options struct {
	maxBody      int
	writeTimeout time.Duration
}

// Option configures a connection.
type Option func(*options)

// WithMaxBody bounds the size of an incoming message body.
func WithMaxBody(n int) Option {
	return func(o *options) { o.maxBody = n }
}

// WithWriteTimeout bounds each outgoing write. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

func buildOptions(opts []Option) options {
	o := options{writeTimeout: defaultWriteTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
