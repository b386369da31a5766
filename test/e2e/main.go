package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow"
)

// E2EDispatcher logs a marker line per dispatched event. The test script
// checks the log output for these markers.
func E2EDispatcher(log *zap.Logger) complaintflow.Dispatcher {
	return complaintflow.DispatcherFunc(func(ctx context.Context, event complaintflow.ComplaintProcessedEvent) error {
		log.Info("E2E_DISPATCHED",
			zap.String("complaint_id", event.ComplaintID.String()),
			zap.String("customer_email", event.CustomerEmail),
			zap.String("complaint_type", event.ComplaintType),
		)
		// If enabled, force a dispatch failure to exercise redelivery.
		if os.Getenv("E2E_DISPATCH_FORCE_ERR") == "1" {
			return errors.New("e2e dispatcher forced error")
		}
		return nil
	})
}

func E2EMiddleware(log *zap.Logger) complaintflow.DispatchMiddleware {
	return func(next complaintflow.Dispatcher) complaintflow.Dispatcher {
		return complaintflow.DispatcherFunc(func(ctx context.Context, event complaintflow.ComplaintProcessedEvent) error {
			log.Info("E2E_MW_BEFORE", zap.String("complaint_id", event.ComplaintID.String()))
			err := next.Dispatch(ctx, event)
			if err != nil {
				log.Info("E2E_MW_AFTER_ERR", zap.Error(err))
			} else {
				log.Info("E2E_MW_AFTER_OK", zap.String("complaint_id", event.ComplaintID.String()))
			}
			return err
		})
	}
}

// reportObserver logs one line per message outcome so poison discards are
// visible to the test script too.
type reportObserver struct {
	log *zap.Logger
}

func (o reportObserver) ObservePoll(int, time.Duration, error) {}

func (o reportObserver) ObserveMessage(r complaintflow.MessageReport, _ time.Duration) {
	o.log.Info("E2E_OUTCOME",
		zap.String("message_id", r.MessageID),
		zap.Stringer("outcome", r.Outcome),
		zap.Stringer("kind", r.Kind),
		zap.Bool("deleted", r.Deleted),
	)
}

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	appCtx, cancelApp := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelApp()

	awsEndpointURL := os.Getenv("AWS_ENDPOINT_URL")
	if awsEndpointURL == "" {
		log.Fatal("AWS_ENDPOINT_URL environment variable is not set")
	}

	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           awsEndpointURL,
			SigningRegion: region,
			PartitionID:   "aws",
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(appCtx, config.WithEndpointResolverWithOptions(customResolver))
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}

	queue, err := complaintflow.NewQueueClient(sqs.NewFromConfig(cfg), complaintflow.QueueConfig{
		QueueURL:    os.Getenv("SQS_QUEUE_URL"),
		WaitSeconds: 2,
		MaxMessages: 10,
	}, log)
	if err != nil {
		log.Fatal("failed to create queue client", zap.Error(err))
	}

	processor := complaintflow.NewProcessor(queue, E2EDispatcher(log),
		complaintflow.WithLogger(log),
		complaintflow.WithObserver(reportObserver{log: log}),
		complaintflow.WithReceiveErrorBackoff(500*time.Millisecond),
		complaintflow.WithDispatchMiddleware(E2EMiddleware(log)),
	)

	if err := processor.Run(appCtx); err != nil {
		log.Error("processor stopped", zap.Error(err))
	}

	log.Info("application has shut down")
}
