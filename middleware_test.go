package complaintflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChainOrder(t *testing.T) {
	var seen []string

	mw := func(name string) DispatchMiddleware {
		return func(next Dispatcher) Dispatcher {
			return DispatcherFunc(func(ctx context.Context, e ComplaintProcessedEvent) error {
				seen = append(seen, name+":pre")
				err := next.Dispatch(ctx, e)
				seen = append(seen, name+":post")
				return err
			})
		}
	}

	d := Chain(DispatcherFunc(func(context.Context, ComplaintProcessedEvent) error {
		seen = append(seen, "dispatch")
		return nil
	}), mw("outer"), mw("inner"))

	require.NoError(t, d.Dispatch(context.Background(), ComplaintProcessedEvent{}))
	assert.Equal(t, []string{"outer:pre", "inner:pre", "dispatch", "inner:post", "outer:post"}, seen)
}

func TestChainWithoutMiddleware(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, Chain(dispatcher).Dispatch(context.Background(), ComplaintProcessedEvent{}))
	dispatcher.AssertExpectations(t)
}

func TestMiddlewareErrorRetainsMessage(t *testing.T) {
	mockClient := new(MockSQSClient)
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	reject := func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, e ComplaintProcessedEvent) error {
			if err := next.Dispatch(ctx, e); err != nil {
				return err
			}
			return errors.New("post-dispatch hook failed")
		})
	}
	p := NewProcessor(newTestQueue(t, mockClient), dispatcher, WithDispatchMiddleware(reject))

	report := p.ProcessMessage(context.Background(), InboundMessage{ID: "m1", Body: snsBody(t, validPayload()), AckToken: "r1"})

	assert.Equal(t, OutcomeRetainedForRetry, report.Outcome)
	mockClient.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	id := uuid.New()

	ok := LoggingMiddleware(zap.New(core))(DispatcherFunc(func(context.Context, ComplaintProcessedEvent) error { return nil }))
	require.NoError(t, ok.Dispatch(context.Background(), ComplaintProcessedEvent{ComplaintID: id}))

	entries := logs.FilterMessage("notification dispatched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, id.String(), entries[0].ContextMap()["complaint_id"])

	cause := errors.New("smtp down")
	failing := LoggingMiddleware(zap.New(core))(DispatcherFunc(func(context.Context, ComplaintProcessedEvent) error { return cause }))
	assert.ErrorIs(t, failing.Dispatch(context.Background(), ComplaintProcessedEvent{ComplaintID: id}), cause)
	assert.Equal(t, 1, logs.FilterMessage("dispatch returned error").Len())
}
