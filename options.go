package complaintflow

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultDispatchTimeout bounds a single dispatch call. Keep it below the
	// queue's visibility timeout so a slow dispatch does not overlap a redelivery.
	DefaultDispatchTimeout = 30 * time.Second
	// DefaultReceiveErrorBackoff is the pause after a failed receive.
	DefaultReceiveErrorBackoff = 2 * time.Second
)

// ProcessorOption configures a Processor at construction time.
type ProcessorOption func(*Processor)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver installs a metrics observer.
func WithObserver(o Observer) ProcessorOption {
	return func(p *Processor) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithTracer sets the tracer used for per-message spans.
func WithTracer(t trace.Tracer) ProcessorOption {
	return func(p *Processor) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithDispatchTimeout bounds each dispatch call. Zero disables the bound.
func WithDispatchTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.dispatchTimeout = d }
}

// WithReceiveErrorBackoff sets the pause after a failed receive.
func WithReceiveErrorBackoff(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.receiveErrorBackoff = d }
}

// WithDispatchMiddleware wraps the dispatcher. The first middleware is the outermost.
func WithDispatchMiddleware(mws ...DispatchMiddleware) ProcessorOption {
	return func(p *Processor) { p.middlewares = append(p.middlewares, mws...) }
}
