package complaintflow

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs the duration and result of every dispatch.
func LoggingMiddleware(logger *zap.Logger) DispatchMiddleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, event ComplaintProcessedEvent) error {
			start := time.Now()
			err := next.Dispatch(ctx, event)
			fields := []zap.Field{
				zap.String("complaint_id", event.ComplaintID.String()),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				logger.Debug("dispatch returned error", append(fields, zap.Error(err))...)
				return err
			}
			logger.Info("notification dispatched", fields...)
			return nil
		})
	}
}
