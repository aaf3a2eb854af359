package envelo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/envelo/envelo-go/contracts"
	"github.com/envelo/envelo-go/envelope"
	"github.com/envelo/envelo-go/interceptors"
)

// Client provides the main entry point for envelo-go. Messages sent and
// received through it pass the interceptor chain, so bodies are encoded
// and decoded transparently and the codec metadata attribute is managed
// without the application noticing.
type Client struct {
	transport Transport
	engine    *envelope.Engine
	chain     *interceptors.Chain
	logger    *slog.Logger
}

// clientConfig holds client configuration
type clientConfig struct {
	logger       *slog.Logger
	engine       *envelope.Engine
	interceptors []interceptors.Interceptor
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithEngine sets the envelope engine the client encodes with
func WithEngine(engine *envelope.Engine) ClientOption {
	return func(cfg *clientConfig) {
		cfg.engine = engine
	}
}

// WithInterceptors appends custom interceptors. They run before the codec
// on the way out, in the order given, and after it in reverse on the way
// in.
func WithInterceptors(ics ...interceptors.Interceptor) ClientOption {
	return func(cfg *clientConfig) {
		cfg.interceptors = append(cfg.interceptors, ics...)
	}
}

// NewClient creates a client on top of transport. Without options the
// client uses the default engine: no compression, no encoding, MD5
// checksums.
func NewClient(transport Transport, options ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	cfg := &clientConfig{
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.engine == nil {
		cfg.engine = envelope.NewEngine()
	}

	// The codec sits last in the chain: it must see the final attribute
	// set outbound and present the decoded body first inbound.
	chain := interceptors.NewChain(cfg.logger)
	for _, interceptor := range cfg.interceptors {
		chain.Add(interceptor)
	}
	chain.Add(interceptors.NewCodecInterceptor(cfg.engine, cfg.logger))

	return &Client{
		transport: transport,
		engine:    cfg.engine,
		chain:     chain,
		logger:    cfg.logger,
	}, nil
}

// Send encodes one message through the interceptor chain and delivers it
// to the named queue.
func (c *Client) Send(ctx context.Context, queue string, msg contracts.Message) error {
	prepared, err := c.chain.ExecuteSend(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := c.transport.Send(ctx, queue, prepared); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.logger.Debug("message sent",
		"queue", queue,
		"bodyBytes", len(prepared.Body),
		"attributeCount", len(prepared.Attributes),
	)
	return nil
}

// BatchEntry is the per-message outcome of SendBatch.
type BatchEntry struct {
	// ID identifies the entry in logs and results.
	ID string
	// Err is nil when the entry was delivered.
	Err error
}

// SendBatch sends each message independently: one failing entry does not
// stop the others. The returned entries parallel the input order; the
// summary error is non-nil when at least one entry failed.
func (c *Client) SendBatch(ctx context.Context, queue string, msgs []contracts.Message) ([]BatchEntry, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	c.logger.Info("sending batch",
		"queue", queue,
		"messageCount", len(msgs),
	)

	entries := make([]BatchEntry, len(msgs))
	var firstError error
	successCount := 0

	for i, msg := range msgs {
		entry := BatchEntry{ID: uuid.New().String()}
		if err := c.Send(ctx, queue, msg); err != nil {
			entry.Err = err
			c.logger.Error("failed to send message in batch",
				"queue", queue,
				"index", i,
				"entryId", entry.ID,
				"error", err,
			)
			if firstError == nil {
				firstError = err
			}
		} else {
			successCount++
		}
		entries[i] = entry
	}

	if firstError != nil {
		return entries, fmt.Errorf("batch send completed with errors: %d/%d succeeded, first error: %w",
			successCount, len(msgs), firstError)
	}

	c.logger.Info("batch sent",
		"queue", queue,
		"messageCount", len(msgs),
	)
	return entries, nil
}

// Receive fetches up to max messages from the named queue and decodes
// them through the interceptor chain. The codec metadata attribute is
// added to attributeNames when missing, so encoded bodies can always be
// restored.
func (c *Client) Receive(ctx context.Context, queue string, max int, attributeNames ...string) ([]contracts.Message, error) {
	names := c.engine.EnsureMetadataRequested(attributeNames)

	received, err := c.transport.Receive(ctx, queue, max, names)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	out := make([]contracts.Message, 0, len(received))
	for _, msg := range received {
		decoded, err := c.chain.ExecuteReceive(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		out = append(out, decoded)
	}

	c.logger.Debug("messages received",
		"queue", queue,
		"messageCount", len(out),
	)
	return out, nil
}

// Engine returns the envelope engine the client encodes with.
func (c *Client) Engine() *envelope.Engine {
	return c.engine
}

// Transport returns the underlying transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
