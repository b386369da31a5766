package complaintflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// --- SQS Queue Configuration ---
const (
	// DefaultWaitSeconds enables SQS long polling, reducing cost and empty responses.
	DefaultWaitSeconds = 20
	// DefaultMaxMessages is the batch size of one ReceiveMessage call.
	DefaultMaxMessages = 1
	// DefaultDeleteTimeout sets a client-side timeout for the DeleteMessage API call.
	DefaultDeleteTimeout = 5 * time.Second

	maxWaitSeconds = 20
	maxBatchSize   = 10
)

// SQSClient defines the SQS operations needed by QueueClient.
// This allows for easier testing by mocking the SQS client.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// QueueConfig configures a QueueClient. Zero values fall back to the defaults above.
type QueueConfig struct {
	QueueURL      string
	WaitSeconds   int32
	MaxMessages   int32
	DeleteTimeout time.Duration
}

func (c QueueConfig) withDefaults() QueueConfig {
	if c.WaitSeconds <= 0 {
		c.WaitSeconds = DefaultWaitSeconds
	}
	if c.WaitSeconds > maxWaitSeconds {
		c.WaitSeconds = maxWaitSeconds
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}
	if c.MaxMessages > maxBatchSize {
		c.MaxMessages = maxBatchSize
	}
	if c.DeleteTimeout <= 0 {
		c.DeleteTimeout = DefaultDeleteTimeout
	}
	return c
}

// QueueClient implements Queue on top of SQS.
type QueueClient struct {
	client SQSClient
	cfg    QueueConfig
	logger *zap.Logger
}

// NewQueueClient creates a QueueClient. It fails when cfg has no queue URL.
func NewQueueClient(client SQSClient, cfg QueueConfig, logger *zap.Logger) (*QueueClient, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, ErrMissingQueueURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueClient{
		client: client,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}, nil
}

// Config returns the effective configuration after defaults were applied.
func (q *QueueClient) Config() QueueConfig { return q.cfg }

// Receive long-polls the queue. The call is bound to ctx, so cancelling ctx
// interrupts the wait instead of letting it run for the full window.
func (q *QueueClient) Receive(ctx context.Context) ([]InboundMessage, error) {
	output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.cfg.QueueURL),
		MaxNumberOfMessages: q.cfg.MaxMessages,
		WaitTimeSeconds:     q.cfg.WaitSeconds,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: receive: %w", ErrTransport, err)
	}
	if output == nil || len(output.Messages) == 0 {
		return nil, nil
	}

	msgs := make([]InboundMessage, 0, len(output.Messages))
	for _, m := range output.Messages {
		msgs = append(msgs, toInboundMessage(m))
	}
	return msgs, nil
}

// Delete acknowledges one delivery. It runs on a context detached from ctx's
// cancellation so that acknowledgements still go out during shutdown.
// A stale token (already deleted or expired) is logged and treated as success.
func (q *QueueClient) Delete(ctx context.Context, ackToken string) error {
	if ackToken == "" {
		return fmt.Errorf("%w: delete: empty ack token", ErrTransport)
	}

	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.cfg.DeleteTimeout)
	defer cancel()

	_, err := q.client.DeleteMessage(deleteCtx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.cfg.QueueURL),
		ReceiptHandle: aws.String(ackToken),
	})
	if err == nil {
		return nil
	}
	if isStaleReceipt(err) {
		q.logger.Warn("ack token already deleted or expired, ignoring", zap.Error(err))
		return nil
	}
	return fmt.Errorf("%w: delete: %w", ErrTransport, err)
}

func toInboundMessage(m types.Message) InboundMessage {
	msg := InboundMessage{
		ID:       aws.ToString(m.MessageId),
		Body:     aws.ToString(m.Body),
		AckToken: aws.ToString(m.ReceiptHandle),
	}
	if v, ok := m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			msg.ReceiveCount = n
		}
	}
	return msg
}

func isStaleReceipt(err error) bool {
	var invalid *types.ReceiptHandleIsInvalid
	if errors.As(err, &invalid) {
		return true
	}
	var notInflight *types.MessageNotInflight
	if errors.As(err, &notInflight) {
		return true
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ReceiptHandleIsInvalid", "MessageNotInflight", "AWS.SimpleQueueService.MessageNotInflight":
		return true
	case "InvalidParameterValue":
		// SQS reports expired handles as InvalidParameterValue.
		return strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "receipt handle")
	}
	return false
}
