package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/hatsunemiku3939/complaintflow/pkg/jsonschema"
	"github.com/hatsunemiku3939/complaintflow/pkg/logger"
	"github.com/hatsunemiku3939/complaintflow/pkg/tracing"
)

var ErrPublish = errors.New("publish complaint")

// ComplaintSchema is the contract of messages written to the complaint queue.
var ComplaintSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "ComplaintId": { "type": "string", "minLength": 36, "maxLength": 36 },
    "CustomerName": { "type": "string", "minLength": 1 },
    "CustomerEmail": { "type": "string", "minLength": 3 },
    "ComplaintType": { "type": "string", "minLength": 1 },
    "Description": { "type": "string", "minLength": 10, "maxLength": 1000 },
    "SubmittedAt": { "type": "string" }
  },
  "required": ["ComplaintId", "CustomerName", "CustomerEmail", "ComplaintType", "Description", "SubmittedAt"]
}`

var complaintSchema = jsonschema.MustCompile("complaint", ComplaintSchema)

// Publisher hands an accepted complaint to asynchronous processing.
type Publisher interface {
	Publish(ctx context.Context, c Complaint) error
}

// SQSSender is the subset of the SQS client used for publishing.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher writes complaints to an SQS queue as JSON, carrying the trace
// context and correlation id as message attributes.
type SQSPublisher struct {
	client   SQSSender
	queueURL string
	logger   *zap.Logger
}

func NewSQSPublisher(client SQSSender, queueURL string, logger *zap.Logger) *SQSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQSPublisher{client: client, queueURL: queueURL, logger: logger}
}

func (p *SQSPublisher) Publish(ctx context.Context, c Complaint) error {
	ctx, span := tracing.Tracer().Start(ctx, "sqs.publish")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "aws_sqs"),
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("complaint.id", c.ComplaintID.String()),
	)

	body, err := json.Marshal(c)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: marshal: %w", ErrPublish, err)
	}
	if err := complaintSchema.Validate(body); err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: messageAttributes(ctx),
	})
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: send: %w", ErrPublish, err)
	}

	var messageID string
	if out != nil {
		messageID = aws.ToString(out.MessageId)
	}
	logger.FromContext(ctx, p.logger).Debug("complaint published",
		zap.String("complaint_id", c.ComplaintID.String()),
		zap.String("message_id", messageID),
	)
	return nil
}

func messageAttributes(ctx context.Context) map[string]types.MessageAttributeValue {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		carrier["correlation_id"] = id
	}
	if len(carrier) == 0 {
		return nil
	}

	attrs := make(map[string]types.MessageAttributeValue, len(carrier))
	for k, v := range carrier {
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	return attrs
}
