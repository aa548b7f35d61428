// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// MessageHandler receives every inbound message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateChangeHandler is notified on every state transition. err is non-nil
// for transitions caused by a failure.
type StateChangeHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // label for logs and metrics
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns sensible defaults for exchange streaming feeds.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
		MaxMessageSize: 1 << 20,
	}
}

// Client is a WebSocket client that reconnects with exponential backoff.
type Client struct {
	config Config

	mu    sync.RWMutex
	state State
	conn  *websocket.Conn

	handlerMu sync.RWMutex
	onMessage MessageHandler
	onState   StateChangeHandler

	writeMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsconn: URL is required")
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config: config,
		state:  StateDisconnected,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// OnMessage registers the inbound message handler. Call before Connect.
func (c *Client) OnMessage(h MessageHandler) {
	c.handlerMu.Lock()
	c.onMessage = h
	c.handlerMu.Unlock()
}

// OnStateChange registers the state transition handler. Call before Connect.
func (c *Client) OnStateChange(h StateChangeHandler) {
	c.handlerMu.Lock()
	c.onState = h
	c.handlerMu.Unlock()
}

// Connect establishes the WebSocket connection and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting, nil)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected, nil)

	c.wg.Add(1)
	go c.readLoop()

	if c.config.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop()
	}

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}
	return conn, nil
}

// Send sends a raw text message.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()

	if conn == nil || state != StateConnected {
		return errors.New("wsconn: not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client is currently connected.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close gracefully closes the connection. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.state = StateClosed
		c.mu.Unlock()

		if conn != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
		}
		c.wg.Wait()
	})
	return nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || c.State() == StateClosed {
				return
			}
			if !c.reconnect(err) {
				return
			}
			continue
		}

		c.handlerMu.RLock()
		handler := c.onMessage
		c.handlerMu.RUnlock()
		if handler != nil {
			handler(c.ctx, data)
		}
	}
}

// reconnect re-establishes the connection after a read failure.
// Returns false when the client is closed or the reconnect budget is spent.
func (c *Client) reconnect(cause error) bool {
	c.setState(StateReconnecting, cause)

	backoff := c.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		if c.config.MaxReconnects > 0 && attempt > c.config.MaxReconnects {
			c.setState(StateDisconnected, cause)
			return false
		}

		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(backoff):
		}

		dialCtx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
		conn, err := c.dial(dialCtx)
		cancel()
		if err == nil {
			c.mu.Lock()
			if c.state == StateClosed {
				c.mu.Unlock()
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return false
			}
			c.conn = conn
			c.mu.Unlock()
			c.setState(StateConnected, nil)
			return true
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.RLock()
		conn := c.conn
		connected := c.state == StateConnected
		c.mu.RUnlock()
		if conn == nil || !connected {
			continue
		}

		// A failed ping surfaces as a read error; the read loop reconnects.
		pingCtx, cancel := context.WithTimeout(c.ctx, c.config.PongTimeout)
		_ = conn.Ping(pingCtx)
		cancel()
	}
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.handlerMu.RLock()
	handler := c.onState
	c.handlerMu.RUnlock()
	if handler != nil {
		handler(state, err)
	}
}
