package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow"
	"github.com/hatsunemiku3939/complaintflow/pkg/tracing"
)

// EmailDispatcher simulates the customer e-mail by writing it to the log.
// Swap it for a real mail provider behind the same interface.
type EmailDispatcher struct {
	logger *zap.Logger
}

var _ complaintflow.Dispatcher = (*EmailDispatcher)(nil)

// NewEmailDispatcher returns a dispatcher logging to logger. A nil logger discards output.
func NewEmailDispatcher(logger *zap.Logger) *EmailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailDispatcher{logger: logger}
}

// Dispatch logs the rendered acknowledgement for the event's customer.
func (d *EmailDispatcher) Dispatch(ctx context.Context, event complaintflow.ComplaintProcessedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, span := tracing.Tracer().Start(ctx, "notify.email")
	defer span.End()
	span.SetAttributes(tracing.ComplaintAttrs(event.ComplaintID.String(), event.ComplaintType)...)

	d.logger.Info(">>> simulating e-mail delivery",
		zap.String("to", event.CustomerEmail),
		zap.String("complaint_id", event.ComplaintID.String()),
		zap.String("body", Body(event)),
	)
	return nil
}

// Body renders the customer-facing acknowledgement text.
func Body(event complaintflow.ComplaintProcessedEvent) string {
	return "Your complaint about '" + event.ComplaintType + "' has been received and is being processed."
}
