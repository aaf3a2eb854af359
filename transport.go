package envelo

import (
	"context"

	"github.com/envelo/envelo-go/contracts"
)

// Transport moves messages to and from named queues. Implementations are
// plain carriers: the codec and interceptors run in the Client, so a
// transport only ever sees fully prepared messages.
type Transport interface {
	// Send delivers one message to the named queue.
	Send(ctx context.Context, queue string, msg contracts.Message) error

	// Receive fetches up to max messages from the named queue,
	// requesting at least the attributes named in attributeNames. Fewer
	// messages than max, including none, may be returned.
	Receive(ctx context.Context, queue string, max int, attributeNames []string) ([]contracts.Message, error)

	// Close releases the transport's resources.
	Close() error
}
