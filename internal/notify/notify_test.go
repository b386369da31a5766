package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hatsunemiku3939/complaintflow"
)

func testEvent() complaintflow.ComplaintProcessedEvent {
	return complaintflow.ComplaintProcessedEvent{
		ComplaintID:   uuid.MustParse("b3b5c6d2-1f4e-4a8b-9c3d-2e1f0a9b8c7d"),
		CustomerEmail: "a@b.com",
		ComplaintType: "Billing",
		ProcessedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEmailDispatcher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewEmailDispatcher(zap.New(core))

	require.NoError(t, d.Dispatch(context.Background(), testEvent()))

	entries := logs.FilterMessage(">>> simulating e-mail delivery").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@b.com", fields["to"])
	assert.Equal(t, "b3b5c6d2-1f4e-4a8b-9c3d-2e1f0a9b8c7d", fields["complaint_id"])
	assert.Contains(t, fields["body"], "'Billing'")
}

func TestEmailDispatcherHonoursCancellation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewEmailDispatcher(zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.Dispatch(ctx, testEvent()), context.Canceled)
	assert.Zero(t, logs.Len())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, nil)

	calls := 0
	failing := complaintflow.DispatcherFunc(func(context.Context, complaintflow.ComplaintProcessedEvent) error {
		calls++
		return errors.New("provider down")
	})
	d := complaintflow.Chain(failing, b.Middleware())

	for i := 0; i < 2; i++ {
		err := d.Dispatch(context.Background(), testEvent())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, "open", b.State())

	err := d.Dispatch(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls, "open breaker must not call the provider")
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := NewBreaker(BreakerSettings{MaxFailures: 1}, nil)
	d := complaintflow.Chain(complaintflow.DispatcherFunc(func(context.Context, complaintflow.ComplaintProcessedEvent) error {
		return context.Canceled
	}), b.Middleware())

	assert.ErrorIs(t, d.Dispatch(context.Background(), testEvent()), context.Canceled)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerRetainsMessageWhenOpen(t *testing.T) {
	b := NewBreaker(BreakerSettings{MaxFailures: 1, OpenTimeout: time.Minute}, nil)
	q := &recordingQueue{}
	p := complaintflow.NewProcessor(q, complaintflow.DispatcherFunc(func(context.Context, complaintflow.ComplaintProcessedEvent) error {
		return errors.New("provider down")
	}), complaintflow.WithDispatchMiddleware(b.Middleware()))

	body := `{"Message":"{\"ComplaintId\":\"b3b5c6d2-1f4e-4a8b-9c3d-2e1f0a9b8c7d\",\"CustomerEmail\":\"a@b.com\",\"ComplaintType\":\"Billing\",\"ProcessedAt\":\"2024-01-01T00:00:00Z\"}"}`
	for i := 0; i < 2; i++ {
		report := p.ProcessMessage(context.Background(), complaintflow.InboundMessage{ID: "m1", Body: body, AckToken: "r1"})
		assert.Equal(t, complaintflow.OutcomeRetainedForRetry, report.Outcome)
	}
	assert.Empty(t, q.deleted)
	assert.Equal(t, "open", b.State())
}

type recordingQueue struct {
	deleted []string
}

func (q *recordingQueue) Receive(context.Context) ([]complaintflow.InboundMessage, error) {
	return nil, nil
}

func (q *recordingQueue) Delete(_ context.Context, token string) error {
	q.deleted = append(q.deleted, token)
	return nil
}
