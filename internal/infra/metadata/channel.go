package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Reconnect policy defaults: attempts are bounded in count, not wall-clock
// time, with a fixed backoff between them.
const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
)

// ErrChannelFailed means reconnect attempts are exhausted. The channel is
// unusable from then on; the caller is expected to treat this as fatal.
var ErrChannelFailed = errors.New("metadata channel failed")

// StateKind enumerates the connection states of the channel.
type StateKind int

const (
	StateConnected StateKind = iota
	StateReconnecting
	StateFailed
)

func (k StateKind) String() string {
	switch k {
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConnState is the channel's current connection state. Attempt is only
// meaningful while reconnecting.
type ConnState struct {
	Kind    StateKind
	Attempt int
}

// Conn is one duplex connection delivering text frames.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// DialFunc performs one connection handshake.
type DialFunc func(ctx context.Context) (Conn, error)

// WebsocketDial returns the production DialFunc for a websocket endpoint.
func WebsocketDial(url string) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial: %w", err)
		}
		return conn, nil
	}
}

// Channel delivers now-playing messages in network order, surviving
// transient connection failures via bounded retry with fixed backoff.
// It is the process-wide metadata singleton; one receive loop consumes it.
type Channel struct {
	dial        DialFunc
	maxAttempts int
	backoff     time.Duration

	conn Conn

	mu    sync.RWMutex
	state ConnState
}

// Dial performs the initial handshake and returns a connected channel.
// maxAttempts and backoff of zero select the defaults.
func Dial(ctx context.Context, dial DialFunc, maxAttempts int, backoff time.Duration) (*Channel, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	conn, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("metadata handshake: %w", err)
	}

	return &Channel{
		dial:        dial,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		conn:        conn,
		state:       ConnState{Kind: StateConnected},
	}, nil
}

// State returns the current connection state.
func (c *Channel) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Close releases the underlying connection.
func (c *Channel) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ReceiveNext returns the next now-playing message, in the order the
// network delivers them. A transient failure (closed connection, malformed
// frame) triggers the reconnect state machine; once that is exhausted the
// channel is failed for good and every call returns ErrChannelFailed.
func (c *Channel) ReceiveNext(ctx context.Context) (*Message, error) {
	if c.State().Kind == StateFailed {
		return nil, ErrChannelFailed
	}

	msg, err := c.readMessage()
	if err == nil {
		return msg, nil
	}
	log.Warn().Err(err).Msg("Metadata receive failed, reconnecting")

	return c.reconnect(ctx)
}

func (c *Channel) readMessage() (*Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	return &msg, nil
}

// reconnect runs the bounded retry loop and, on success, delivers the
// first message of the fresh connection.
func (c *Channel) reconnect(ctx context.Context) (*Message, error) {
	for attempt := 1; ; attempt++ {
		c.setState(ConnState{Kind: StateReconnecting, Attempt: attempt})

		msg, err := c.redial(ctx)
		if err == nil {
			c.setState(ConnState{Kind: StateConnected})
			log.Info().Int("attempt", attempt).Msg("Metadata channel reconnected")
			return msg, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("max", c.maxAttempts).Msg("Reconnect failed")

		if attempt >= c.maxAttempts {
			c.setState(ConnState{Kind: StateFailed})
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrChannelFailed, attempt, err)
		}

		select {
		case <-ctx.Done():
			c.setState(ConnState{Kind: StateFailed})
			return nil, ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

// redial closes the previous connection if still open, performs a fresh
// handshake and reads the first message of the new connection.
func (c *Channel) redial(ctx context.Context) (*Message, error) {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c.readMessage()
}

func (c *Channel) setState(state ConnState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
