package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatsunemiku3939/complaintflow"
	"github.com/hatsunemiku3939/complaintflow/internal/notify"
	"github.com/hatsunemiku3939/complaintflow/pkg/metrics"
)

func TestOpsRouter(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	require.NoError(t, err)
	recorder.ObserveMessage(complaintflow.MessageReport{Outcome: complaintflow.OutcomeDispatched}, time.Millisecond)

	r := newOpsRouter(registry, notify.NewBreaker(notify.BreakerSettings{}, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive","notification_circuit":"closed"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `complaintflow_consumer_messages_total{kind="none",outcome="dispatched"} 1`)
}
