package complaintflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InboundMessage is one delivery of one queue message. It lives for a single
// processing cycle and is never persisted.
type InboundMessage struct {
	ID       string
	Body     string
	AckToken string
	// ReceiveCount is the transport's delivery counter (ApproximateReceiveCount), 0 when unknown.
	ReceiveCount int
}

// ComplaintProcessedEvent announces that a complaint finished processing upstream.
// All fields are required; DecodeEvent never returns a partially populated value.
type ComplaintProcessedEvent struct {
	ComplaintID   uuid.UUID `json:"ComplaintId"`
	CustomerEmail string    `json:"CustomerEmail"`
	ComplaintType string    `json:"ComplaintType"`
	ProcessedAt   time.Time `json:"ProcessedAt"`
}

// Dispatcher triggers the notification for a decoded event. It must report
// success or failure synchronously; a failed dispatch is retried through redelivery,
// so implementations must tolerate duplicate invocations.
type Dispatcher interface {
	Dispatch(ctx context.Context, event ComplaintProcessedEvent) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, event ComplaintProcessedEvent) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, event ComplaintProcessedEvent) error {
	return f(ctx, event)
}

// DispatchMiddleware wraps a Dispatcher with a cross-cutting concern such as
// logging, tracing or circuit breaking.
type DispatchMiddleware func(next Dispatcher) Dispatcher

// Chain wraps d with mws. The first middleware is the outermost.
func Chain(d Dispatcher, mws ...DispatchMiddleware) Dispatcher {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// Queue is the receive/acknowledge contract the Processor drives.
type Queue interface {
	// Receive long-polls for up to one batch. An empty slice is a successful poll.
	Receive(ctx context.Context) ([]InboundMessage, error)
	// Delete acknowledges one delivery. Deleting an already deleted or expired
	// token is not an error.
	Delete(ctx context.Context, ackToken string) error
}

// MessageReport describes what happened to one message.
type MessageReport struct {
	MessageID    string
	ReceiveCount int
	Outcome      Outcome
	Kind         FailureKind
	Err          error
	Deleted      bool
}

// Observer receives one callback per processed message and per poll.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObservePoll(received int, duration time.Duration, err error)
	ObserveMessage(report MessageReport, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObservePoll(int, time.Duration, error)       {}
func (nopObserver) ObserveMessage(MessageReport, time.Duration) {}
