// Package rabbitmq provides a RabbitMQ-backed transport. Message attributes
// travel as AMQP headers, so the codec metadata survives the broker unchanged.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	envelo "github.com/envelo/envelo-go"
	"github.com/envelo/envelo-go/contracts"
)

var (
	// ErrClosed is returned when the transport has been closed.
	ErrClosed = errors.New("rabbitmq: transport is closed")
)

// Transport publishes and pulls messages over a single AMQP connection.
// A lost connection is redialled lazily on the next operation.
type Transport struct {
	url         string
	dialTimeout time.Duration
	durable     bool
	logger      *slog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

var _ envelo.Transport = (*Transport)(nil)

// TransportOption configures the transport
type TransportOption func(*Transport)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithDialTimeout sets the timeout for establishing a connection
func WithDialTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) {
		t.dialTimeout = timeout
	}
}

// WithDurableQueues controls whether DeclareQueue creates durable queues
func WithDurableQueues(durable bool) TransportOption {
	return func(t *Transport) {
		t.durable = durable
	}
}

// NewTransport connects to the broker and returns a ready transport
func NewTransport(connectionString string, options ...TransportOption) (*Transport, error) {
	t := &Transport{
		url:         connectionString,
		dialTimeout: 30 * time.Second,
		durable:     true,
		logger:      slog.Default(),
	}

	for _, opt := range options {
		opt(t)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.connect(context.Background()); err != nil {
		return nil, err
	}

	return t, nil
}

// connect dials the broker and opens the shared channel. Callers hold mu.
func (t *Transport) connect(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, t.dialTimeout)
	defer cancel()

	connChan := make(chan *amqp.Connection, 1)
	errChan := make(chan error, 1)

	go func() {
		conn, err := amqp.Dial(t.url)
		if err != nil {
			errChan <- err
			return
		}
		connChan <- conn
	}()

	select {
	case conn := <-connChan:
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to open channel: %w", err)
		}
		t.conn = conn
		t.ch = ch
		t.logger.Info("connected to RabbitMQ", "url", sanitizeURL(t.url))
		return nil

	case err := <-errChan:
		return fmt.Errorf("failed to connect to %s: %w", sanitizeURL(t.url), err)

	case <-dialCtx.Done():
		return fmt.Errorf("failed to connect to %s: %w", sanitizeURL(t.url), dialCtx.Err())
	}
}

// channel returns the live channel, redialling the connection if it dropped.
func (t *Transport) channel(ctx context.Context) (*amqp.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}

	if t.conn == nil || t.conn.IsClosed() {
		t.logger.Warn("connection lost, redialling", "url", sanitizeURL(t.url))
		if err := t.connect(ctx); err != nil {
			return nil, err
		}
	}

	if t.ch == nil || t.ch.IsClosed() {
		ch, err := t.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to open channel: %w", err)
		}
		t.ch = ch
	}

	return t.ch, nil
}

// Send publishes a message directly to the named queue
func (t *Transport) Send(ctx context.Context, queue string, msg contracts.Message) error {
	ch, err := t.channel(ctx)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "text/plain",
		Body:         []byte(msg.Body),
		Headers:      headersFromAttributes(msg.Attributes),
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now(),
	}

	// Default exchange routes by queue name.
	if err := ch.PublishWithContext(ctx, "", queue, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}

	t.logger.Debug("published message",
		"queue", queue,
		"messageId", publishing.MessageId,
		"bodyBytes", len(publishing.Body))

	return nil
}

// Receive pulls up to max messages from the queue. AMQP delivers every header
// with each message, so attributeNames is accepted for interface compatibility
// and otherwise ignored.
func (t *Transport) Receive(ctx context.Context, queue string, max int, attributeNames []string) ([]contracts.Message, error) {
	_ = attributeNames

	ch, err := t.channel(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]contracts.Message, 0, max)
	for len(messages) < max {
		select {
		case <-ctx.Done():
			// Deliveries already pulled were auto-acked, so hand them over
			// alongside the cancellation.
			return messages, ctx.Err()
		default:
		}

		delivery, ok, err := ch.Get(queue, true)
		if err != nil {
			return messages, fmt.Errorf("failed to get message from queue %s: %w", queue, err)
		}
		if !ok {
			break
		}

		messages = append(messages, contracts.Message{
			Body:       string(delivery.Body),
			Attributes: attributesFromHeaders(delivery.Headers),
		})
	}

	t.logger.Debug("received messages", "queue", queue, "count", len(messages))
	return messages, nil
}

// DeclareQueue creates the queue if it does not exist
func (t *Transport) DeclareQueue(ctx context.Context, name string) error {
	ch, err := t.channel(ctx)
	if err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(name, t.durable, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// DeleteQueue deletes a queue
func (t *Transport) DeleteQueue(ctx context.Context, name string) error {
	ch, err := t.channel(ctx)
	if err != nil {
		return err
	}

	if _, err := ch.QueueDelete(name, false, false, false); err != nil {
		return fmt.Errorf("failed to delete queue %s: %w", name, err)
	}
	return nil
}

// IsConnected returns connection status
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed && t.conn != nil && !t.conn.IsClosed()
}

// Close closes the channel and connection
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.ch != nil {
		t.ch.Close()
		t.ch = nil
	}
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

// headersFromAttributes copies message attributes into an AMQP header table.
func headersFromAttributes(attributes map[string]string) amqp.Table {
	if len(attributes) == 0 {
		return nil
	}
	headers := make(amqp.Table, len(attributes))
	for name, value := range attributes {
		headers[name] = value
	}
	return headers
}

// attributesFromHeaders keeps string-valued headers only; brokers and other
// publishers may attach values of any AMQP type.
func attributesFromHeaders(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attributes := make(map[string]string, len(headers))
	for name, value := range headers {
		if s, ok := value.(string); ok {
			attributes[name] = s
		}
	}
	if len(attributes) == 0 {
		return nil
	}
	return attributes
}

// sanitizeURL strips credentials from a connection URL for logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
