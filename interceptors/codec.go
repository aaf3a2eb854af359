package interceptors

import (
	"context"
	"log/slog"

	"github.com/envelo/envelo-go/contracts"
	"github.com/envelo/envelo-go/envelope"
)

// CodecInterceptor applies the envelope codec at the transport boundary:
// outbound bodies are compressed, encoded, and described by the metadata
// attribute; inbound bodies are restored according to the metadata they
// carry.
type CodecInterceptor struct {
	engine *envelope.Engine
	logger *slog.Logger
}

// NewCodecInterceptor creates a codec interceptor around engine. A nil
// engine gets the default configuration.
func NewCodecInterceptor(engine *envelope.Engine, logger *slog.Logger) *CodecInterceptor {
	if engine == nil {
		engine = envelope.NewEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CodecInterceptor{engine: engine, logger: logger}
}

// InterceptSend implements SendInterceptor
func (i *CodecInterceptor) InterceptSend(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	encoded, err := i.engine.EncodeMessage(msg)
	if err != nil {
		return contracts.Message{}, err
	}

	i.logger.Debug("encoded outbound message",
		"rawBytes", len(msg.Body),
		"encodedBytes", len(encoded.Body),
		"metadata", encoded.Attributes[envelope.MetaAttribute],
	)

	return encoded, nil
}

// InterceptReceive implements ReceiveInterceptor
func (i *CodecInterceptor) InterceptReceive(ctx context.Context, msg contracts.Message) (contracts.Message, error) {
	decoded, err := i.engine.DecodeMessage(msg)
	if err != nil {
		return contracts.Message{}, err
	}

	if envelope.HasMetadata(msg.Attributes) {
		i.logger.Debug("decoded inbound message",
			"encodedBytes", len(msg.Body),
			"rawBytes", len(decoded.Body),
		)
	}

	return decoded, nil
}

// Name implements Interceptor
func (i *CodecInterceptor) Name() string {
	return "CodecInterceptor"
}
