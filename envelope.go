package complaintflow

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hatsunemiku3939/complaintflow/pkg/jsonschema"
)

// EnvelopeSchema describes the SNS notification wrapper delivered to SQS
// subscriptions. Only Message is required; the other SNS fields are informational.
var EnvelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "Type": { "type": "string" },
    "MessageId": { "type": "string" },
    "TopicArn": { "type": "string" },
    "Timestamp": { "type": "string" },
    "Message": { "type": "string" }
  },
  "required": ["Message"]
}`

var envelopeSchema = jsonschema.MustCompile("sns envelope", EnvelopeSchema)

// snsEnvelope is the outer layer of a notification queue message.
type snsEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Timestamp string `json:"Timestamp"`
	Message   string `json:"Message"`
}

// Unwrap extracts the inner payload from an SNS envelope body. Every failure is a
// *PoisonError: malformed structure cannot heal on redelivery.
func Unwrap(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", poison(FailEmptyBody, ErrEmptyBody, "body is empty or whitespace")
	}

	if err := envelopeSchema.ValidateString(body); err != nil {
		if errors.Is(err, jsonschema.ErrSchemaValidationSystem) {
			return "", poison(FailEnvelopeParse, ErrInvalidEnvelope, "%v", err)
		}
		return "", poison(FailEnvelopeSchema, ErrInvalidEnvelope, "%v", err)
	}

	var env snsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return "", poison(FailEnvelopeParse, ErrInvalidEnvelope, "%v", err)
	}

	if strings.TrimSpace(env.Message) == "" {
		return "", poison(FailEmptyPayload, ErrEmptyPayload, "envelope Message is empty or whitespace")
	}
	return env.Message, nil
}
