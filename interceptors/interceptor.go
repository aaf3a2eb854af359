package interceptors

import (
	"context"
	"log/slog"

	"github.com/envelo/envelo-go/contracts"
)

// SendInterceptor processes an outbound message before it reaches the
// transport. The returned message is what travels on.
type SendInterceptor interface {
	InterceptSend(ctx context.Context, msg contracts.Message) (contracts.Message, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// ReceiveInterceptor processes an inbound message after the transport
// delivered it. The returned message is what the application sees.
type ReceiveInterceptor interface {
	InterceptReceive(ctx context.Context, msg contracts.Message) (contracts.Message, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// Interceptor handles both directions.
type Interceptor interface {
	SendInterceptor
	ReceiveInterceptor
}

// SendInterceptorFunc is a function adapter for SendInterceptor
type SendInterceptorFunc struct {
	name string
	fn   func(ctx context.Context, msg contracts.Message) (contracts.Message, error)
}

// NewSendInterceptorFunc creates a new function-based send interceptor
func NewSendInterceptorFunc(name string, fn func(ctx context.Context, msg contracts.Message) (contracts.Message, error)) *SendInterceptorFunc {
	return &SendInterceptorFunc{name: name, fn: fn}
}

// InterceptSend implements SendInterceptor
func (i *SendInterceptorFunc) InterceptSend(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	return i.fn(ctx, msg)
}

// Name implements SendInterceptor
func (i *SendInterceptorFunc) Name() string {
	return i.name
}

// ReceiveInterceptorFunc is a function adapter for ReceiveInterceptor
type ReceiveInterceptorFunc struct {
	name string
	fn   func(ctx context.Context, msg contracts.Message) (contracts.Message, error)
}

// NewReceiveInterceptorFunc creates a new function-based receive interceptor
func NewReceiveInterceptorFunc(name string, fn func(ctx context.Context, msg contracts.Message) (contracts.Message, error)) *ReceiveInterceptorFunc {
	return &ReceiveInterceptorFunc{name: name, fn: fn}
}

// InterceptReceive implements ReceiveInterceptor
func (i *ReceiveInterceptorFunc) InterceptReceive(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	return i.fn(ctx, msg)
}

// Name implements ReceiveInterceptor
func (i *ReceiveInterceptorFunc) Name() string {
	return i.name
}

// Chain manages the interceptors around a transport. Send interceptors
// run in registration order, receive interceptors in reverse registration
// order, so the last transformation applied outbound is the first one
// undone inbound.
type Chain struct {
	send    []SendInterceptor
	receive []ReceiveInterceptor
	logger  *slog.Logger
}

// NewChain creates an empty interceptor chain
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	return &Chain{logger: logger}
}

// Add appends an interceptor to both directions of the chain
func (c *Chain) Add(interceptor Interceptor) *Chain {
	c.send = append(c.send, interceptor)
	c.receive = append(c.receive, interceptor)
	return c
}

// AddSend appends a send-only interceptor
func (c *Chain) AddSend(interceptor SendInterceptor) *Chain {
	c.send = append(c.send, interceptor)
	return c
}

// AddReceive appends a receive-only interceptor
func (c *Chain) AddReceive(interceptor ReceiveInterceptor) *Chain {
	c.receive = append(c.receive, interceptor)
	return c
}

// ExecuteSend runs msg through the send interceptors in order. The first
// failing interceptor stops the chain.
func (c *Chain) ExecuteSend(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	for _, interceptor := range c.send {
		var err error
		msg, err = interceptor.InterceptSend(ctx, msg)
		if err != nil {
			c.logger.Error("send interceptor failed",
				"interceptor", interceptor.Name(),
				"error", err,
			)
			return contracts.Message{}, err
		}
	}
	return msg, nil
}

// ExecuteReceive runs msg through the receive interceptors in reverse
// order. The first failing interceptor stops the chain.
func (c *Chain) ExecuteReceive(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	for i := len(c.receive) - 1; i >= 0; i-- {
		interceptor := c.receive[i]

		var err error
		msg, err = interceptor.InterceptReceive(ctx, msg)
		if err != nil {
			c.logger.Error("receive interceptor failed",
				"interceptor", interceptor.Name(),
				"error", err,
			)
			return contracts.Message{}, err
		}
	}
	return msg, nil
}
