package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow"
)

// ErrCircuitOpen is returned while the breaker rejects dispatches.
var ErrCircuitOpen = errors.New("notification circuit open")

// BreakerSettings configures NewBreaker. Zero fields take defaults.
type BreakerSettings struct {
	Name             string
	MaxFailures      uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// Breaker stops calling a failing notification provider for OpenTimeout after
// MaxFailures consecutive failures. Rejected messages stay on the queue.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[struct{}]
	logger *zap.Logger
}

// NewBreaker builds a Breaker that logs every state transition.
func NewBreaker(s BreakerSettings, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Name == "" {
		s.Name = "notification"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 3
	}

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    60 * time.Second,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A cancelled dispatch says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker[struct{}](settings),
		logger: logger,
	}
}

// State reports the breaker state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Middleware wraps a dispatcher with the breaker.
func (b *Breaker) Middleware() complaintflow.DispatchMiddleware {
	return func(next complaintflow.Dispatcher) complaintflow.Dispatcher {
		return complaintflow.DispatcherFunc(func(ctx context.Context, event complaintflow.ComplaintProcessedEvent) error {
			_, err := b.cb.Execute(func() (struct{}, error) {
				return struct{}{}, next.Dispatch(ctx, event)
			})
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return errors.Join(ErrCircuitOpen, err)
			}
			return err
		})
	}
}
