package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"mbtidash/internal/core"
	applog "mbtidash/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// ErrCircuitOpen is returned while the broker is considered unavailable.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Publisher announces resolved views.
type Publisher interface {
	PublishViewResolved(ctx context.Context, res core.ViewResult, requestID string) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishViewResolved(context.Context, core.ViewResult, string) error { return nil }
func (NoopPublisher) Close() error                                                     { return nil }

// Client publishes view events to a topic exchange. Run owns the
// connection; publishing fails fast while disconnected.
type Client struct {
	url          string
	exchangeName string
	routingKey   string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	failMu       sync.Mutex
	lastFailure  time.Time

	logger *applog.Logger
}

// ErrNotConnected is returned by publishes before Run has connected.
var ErrNotConnected = errors.New("amqp: not connected")

// NewClient returns an unconnected client. Call Run to connect.
func NewClient(url, exchangeName, routingKey string) *Client {
	return &Client{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       applog.Default(applog.ComponentEvents),
	}
}

// SetLogger routes the client's records through logger under the events
// component. Call it before Run.
func (c *Client) SetLogger(logger *applog.Logger) {
	if logger != nil {
		c.logger = logger.WithComponent(applog.ComponentEvents)
	}
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func (c *Client) currentChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.conn == nil || c.conn.IsClosed() {
		return nil, ErrNotConnected
	}
	return c.channel, nil
}

func (c *Client) resetLocked() {
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// PublishViewResolved publishes a ViewResolvedMessage for res.
func (c *Client) PublishViewResolved(ctx context.Context, res core.ViewResult, requestID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	body, err := NewViewResolvedMessage(res, requestID).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	channel, err := c.currentChannel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.resetLocked()
			c.mu.Unlock()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	c.logger.DebugContext(ctx, "Published view event",
		applog.FieldOperation, applog.OpPublish,
		applog.FieldSelection, res.Selection.String(),
		applog.FieldExchange, c.exchangeName,
		applog.FieldRoutingKey, c.routingKey)
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.failMu.Lock()
	last := c.lastFailure
	c.failMu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordFailure() {
	c.failMu.Lock()
	c.lastFailure = time.Now()
	c.failMu.Unlock()

	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// exponentialBackoff returns the wait before reconnect attempt n, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Run connects to the broker and keeps reconnecting with exponential
// backoff until ctx ends. It always returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()

	for attempt := 0; ; {
		c.mu.Lock()
		c.resetLocked()
		err := c.connectLocked()
		var closed chan *amqp091.Error
		if err == nil {
			closed = c.conn.NotifyClose(make(chan *amqp091.Error, 1))
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.WarnContext(ctx, "AMQP connect failed", applog.FieldAttempt, attempt+1, applog.FieldError, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			attempt++
			continue
		}

		attempt = 0
		c.recordSuccess()
		c.logger.InfoContext(ctx, "AMQP connected", applog.FieldExchange, c.exchangeName)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			c.logger.WarnContext(ctx, "AMQP connection closed", applog.FieldError, amqpErr)
		}
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
