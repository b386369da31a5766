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
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow/internal/ingest"
	"github.com/hatsunemiku3939/complaintflow/pkg/config"
	"github.com/hatsunemiku3939/complaintflow/pkg/logger"
	"github.com/hatsunemiku3939/complaintflow/pkg/tracing"
)

func main() {
	cfg := config.LoadAPI()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	gin.SetMode(gin.ReleaseMode)
	router := ingest.NewRouter(ingest.RouterDeps{
		ComplaintHandler: ingest.NewComplaintHandler(ingest.NewSQSPublisher(sqsClient, cfg.QueueURL, log), log),
		Logger:           log,
		ServiceName:      cfg.ServiceName,
		RateLimit:        cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting complaint api", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}
