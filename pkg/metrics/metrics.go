package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hatsunemiku3939/complaintflow"
)

const namespace = "complaintflow"

// Recorder exports processor activity as Prometheus metrics.
type Recorder struct {
	pollsTotal       *prometheus.CounterVec
	pollSeconds      prometheus.Histogram
	receivedTotal    prometheus.Counter
	messagesTotal    *prometheus.CounterVec
	processSeconds   *prometheus.HistogramVec
	redeliveredTotal prometheus.Counter
}

var _ complaintflow.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		pollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "polls_total",
				Help:      "Receive calls by result.",
			},
			[]string{"result"}, // messages|empty|error
		),
		pollSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "poll_seconds",
				Help:      "Latency of one long-poll receive call.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 25},
			},
		),
		receivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "messages_received_total",
				Help:      "Messages returned by receive calls.",
			},
		),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "messages_total",
				Help:      "Processed messages by outcome and failure kind.",
			},
			[]string{"outcome", "kind"},
		),
		processSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "process_seconds",
				Help:      "End-to-end latency to process one message, including the ack.",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		redeliveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "redeliveries_total",
				Help:      "Messages processed with a receive count above one.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		r.pollsTotal,
		r.pollSeconds,
		r.receivedTotal,
		r.messagesTotal,
		r.processSeconds,
		r.redeliveredTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObservePoll(received int, d time.Duration, err error) {
	r.pollSeconds.Observe(d.Seconds())
	switch {
	case err != nil:
		r.pollsTotal.WithLabelValues("error").Inc()
	case received == 0:
		r.pollsTotal.WithLabelValues("empty").Inc()
	default:
		r.pollsTotal.WithLabelValues("messages").Inc()
		r.receivedTotal.Add(float64(received))
	}
}

func (r *Recorder) ObserveMessage(report complaintflow.MessageReport, d time.Duration) {
	outcome := report.Outcome.String()
	r.messagesTotal.WithLabelValues(outcome, report.Kind.String()).Inc()
	r.processSeconds.WithLabelValues(outcome).Observe(d.Seconds())
	if report.ReceiveCount > 1 {
		r.redeliveredTotal.Inc()
	}
}
