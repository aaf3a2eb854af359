package interceptors

import (
	"context"
	"log/slog"

	"github.com/envelo/envelo-go/contracts"
)

// LoggingInterceptor logs messages crossing the transport boundary in
// both directions.
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// InterceptSend implements SendInterceptor
func (i *LoggingInterceptor) InterceptSend(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	i.logger.Info("sending message",
		"bodyBytes", len(msg.Body),
		"attributeCount", len(msg.Attributes),
	)
	return msg, nil
}

// InterceptReceive implements ReceiveInterceptor
func (i *LoggingInterceptor) InterceptReceive(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	i.logger.Info("received message",
		"bodyBytes", len(msg.Body),
		"attributeCount", len(msg.Attributes),
	)
	return msg, nil
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}
