package complaintflow

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testQueueURL    = "https://sqs.us-east-1.amazonaws.com/000000000000/notifications"
	testComplaintID = "b3b5c6d2-1f4e-4a8b-9c3d-2e1f0a9b8c7d"
)

// --- Mock SQSClient ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

// --- Mock Dispatcher ---

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event ComplaintProcessedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Test Helper Functions ---

func createSQSMessage(id, body, receiptHandle string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		Body:          aws.String(body),
		ReceiptHandle: aws.String(receiptHandle),
	}
}

func eventPayload(complaintID, email, complaintType, processedAt string) string {
	return fmt.Sprintf(`{"ComplaintId":%q,"CustomerEmail":%q,"ComplaintType":%q,"ProcessedAt":%q}`,
		complaintID, email, complaintType, processedAt)
}

func validPayload() string {
	return eventPayload(testComplaintID, "a@b.com", "Billing", "2024-01-01T00:00:00Z")
}

// snsBody wraps payload the way SNS delivers it to an SQS subscription.
func snsBody(t *testing.T, payload string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"Type":      "Notification",
		"MessageId": "sns-1",
		"TopicArn":  "arn:aws:sns:us-east-1:000000000000:complaint-processed",
		"Message":   payload,
		"Timestamp": "2024-01-01T00:00:01.000Z",
	})
	require.NoError(t, err)
	return string(raw)
}

func deleteInput(receiptHandle string) *sqs.DeleteMessageInput {
	return &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(testQueueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}
}

func newTestQueue(t *testing.T, client SQSClient) *QueueClient {
	t.Helper()
	q, err := NewQueueClient(client, QueueConfig{QueueURL: testQueueURL}, nil)
	require.NoError(t, err)
	return q
}
