package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow"
	"github.com/hatsunemiku3939/complaintflow/internal/notify"
	"github.com/hatsunemiku3939/complaintflow/pkg/config"
	"github.com/hatsunemiku3939/complaintflow/pkg/logger"
	"github.com/hatsunemiku3939/complaintflow/pkg/metrics"
	"github.com/hatsunemiku3939/complaintflow/pkg/tracing"
)

func main() {
	cfg := config.LoadWorker()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.ServiceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	sqsClient, err := config.NewSQSClient(ctx, cfg.AWS)
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}

	queue, err := complaintflow.NewQueueClient(sqsClient, complaintflow.QueueConfig{
		QueueURL:    cfg.QueueURL,
		WaitSeconds: int32(cfg.WaitSeconds),
		MaxMessages: int32(cfg.MaxMessages),
	}, log)
	if err != nil {
		log.Fatal("failed to create queue client", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	breaker := notify.NewBreaker(notify.BreakerSettings{
		MaxFailures: uint32(cfg.BreakerMaxFailures),
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, log)

	processor := complaintflow.NewProcessor(queue, notify.NewEmailDispatcher(log),
		complaintflow.WithLogger(log),
		complaintflow.WithObserver(recorder),
		complaintflow.WithTracer(tracing.Tracer()),
		complaintflow.WithDispatchTimeout(cfg.DispatchTimeout),
		complaintflow.WithReceiveErrorBackoff(cfg.ReceiveErrorBackoff),
		complaintflow.WithDispatchMiddleware(
			complaintflow.LoggingMiddleware(log),
			breaker.Middleware(),
		),
	)

	ops := &http.Server{
		Addr:              ":" + cfg.OpsPort,
		Handler:           newOpsRouter(registry, breaker),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("ops server listening", zap.String("addr", ops.Addr))
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops server failed", zap.Error(err))
		}
	}()

	log.Info("starting notification worker",
		zap.String("queue_url", cfg.QueueURL),
		zap.Int("wait_seconds", cfg.WaitSeconds),
		zap.Int("max_messages", cfg.MaxMessages),
	)
	if err := processor.Run(ctx); err != nil {
		log.Error("worker stopped unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		log.Error("ops server shutdown error", zap.Error(err))
	}

	log.Info("worker stopped")
}

func newOpsRouter(registry *prometheus.Registry, breaker *notify.Breaker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "notification_circuit": breaker.State()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	return r
}
