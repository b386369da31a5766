package complaintflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/hatsunemiku3939/complaintflow"

// Processor drains the notification queue: receive, unwrap, decode, dispatch, acknowledge.
// A Processor runs a single sequential loop; scale out by running more processes.
type Processor struct {
	queue      Queue
	dispatcher Dispatcher

	logger   *zap.Logger
	observer Observer
	tracer   trace.Tracer

	middlewares         []DispatchMiddleware
	dispatchTimeout     time.Duration
	receiveErrorBackoff time.Duration
}

// NewProcessor creates a Processor reading from queue and notifying through dispatcher.
func NewProcessor(queue Queue, dispatcher Dispatcher, opts ...ProcessorOption) *Processor {
	p := &Processor{
		queue:               queue,
		dispatcher:          dispatcher,
		logger:              zap.NewNop(),
		observer:            nopObserver{},
		tracer:              otel.Tracer(tracerName),
		dispatchTimeout:     DefaultDispatchTimeout,
		receiveErrorBackoff: DefaultReceiveErrorBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.dispatcher = Chain(p.dispatcher, p.middlewares...)
	return p
}

// Run polls until ctx is cancelled and then returns nil. Transport, decode and
// dispatch errors are logged and never end the loop.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info("notification consumer started")

	for {
		// Before polling, check if a shutdown has been initiated.
		if ctx.Err() != nil {
			p.logger.Info("shutdown initiated, no longer polling for new messages")
			return nil
		}

		if _, err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Error("failed to receive messages, retrying",
				zap.Error(err),
				zap.Duration("backoff", p.receiveErrorBackoff),
			)
			sleepCtx(ctx, p.receiveErrorBackoff)
		}
	}
}

// PollOnce performs one receive and processes the returned batch in order.
// Only a receive failure is returned; per-message failures are in the reports.
func (p *Processor) PollOnce(ctx context.Context) ([]MessageReport, error) {
	start := time.Now()
	msgs, err := p.queue.Receive(ctx)
	p.observer.ObservePoll(len(msgs), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if len(msgs) == 0 {
		p.logger.Debug("no messages in queue")
		return nil, nil
	}

	p.logger.Info("received messages", zap.Int("count", len(msgs)))

	// A received batch is always finished so every message gets its ack decision,
	// even when shutdown is signalled mid-batch.
	batchCtx := context.WithoutCancel(ctx)

	reports := make([]MessageReport, 0, len(msgs))
	for _, msg := range msgs {
		reports = append(reports, p.ProcessMessage(batchCtx, msg))
	}
	return reports, nil
}

// ProcessMessage runs the full pipeline for one message and makes exactly one
// ack decision for it.
func (p *Processor) ProcessMessage(ctx context.Context, msg InboundMessage) MessageReport {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "complaintflow.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "aws_sqs"),
			attribute.String("messaging.message.id", msg.ID),
			attribute.Int("messaging.aws_sqs.receive_count", msg.ReceiveCount),
		),
	)
	defer span.End()

	log := p.logger.With(
		zap.String("message_id", msg.ID),
		zap.Int("receive_count", msg.ReceiveCount),
	)

	kind, err := p.handle(ctx, msg, log)
	decision := Classify(kind)
	report := MessageReport{
		MessageID:    msg.ID,
		ReceiveCount: msg.ReceiveCount,
		Outcome:      decision.Outcome,
		Kind:         kind,
		Err:          err,
	}

	switch {
	case kind.Poison():
		log.Warn("discarding poison message", zap.Stringer("kind", kind), zap.Error(err))
	case kind != FailNone:
		log.Error("failed to dispatch notification, message not deleted", zap.Stringer("kind", kind), zap.Error(err))
	}

	if decision.ShouldDelete {
		if derr := p.queue.Delete(ctx, msg.AckToken); derr != nil {
			report.Outcome = OutcomeTransportFailure
			report.Err = errors.Join(err, derr)
			log.Error("failed to delete message", zap.Error(derr))
		} else {
			report.Deleted = true
			log.Debug("deleted message")
		}
	} else {
		log.Info("retrying message later, visibility timeout will expire")
	}

	span.SetAttributes(
		attribute.String("complaintflow.outcome", report.Outcome.String()),
		attribute.String("complaintflow.failure_kind", kind.String()),
	)
	if report.Err != nil {
		span.RecordError(report.Err)
		span.SetStatus(codes.Error, report.Err.Error())
	}

	p.observer.ObserveMessage(report, time.Since(start))
	return report
}

func (p *Processor) handle(ctx context.Context, msg InboundMessage, log *zap.Logger) (FailureKind, error) {
	payload, err := Unwrap(msg.Body)
	if err != nil {
		return KindOf(err), err
	}

	event, err := DecodeEvent(payload)
	if err != nil {
		return KindOf(err), err
	}

	log.Info("complaint processed event received",
		zap.String("complaint_id", event.ComplaintID.String()),
		zap.String("complaint_type", event.ComplaintType),
	)
	return p.dispatch(ctx, event)
}

func (p *Processor) dispatch(ctx context.Context, event ComplaintProcessedEvent) (kind FailureKind, err error) {
	if p.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.dispatchTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			kind = FailDispatchPanic
			err = fmt.Errorf("%w: %w: %v", ErrDispatch, ErrDispatchPanic, r)
		}
	}()

	if derr := p.dispatcher.Dispatch(ctx, event); derr != nil {
		return FailDispatchError, fmt.Errorf("%w: %w", ErrDispatch, derr)
	}
	return FailNone, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
