package complaintflow

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hatsunemiku3939/complaintflow/pkg/jsonschema"
)

// EventSchema describes the ComplaintProcessedEvent wire format.
var EventSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "ComplaintId": { "type": "string", "minLength": 1 },
    "CustomerEmail": { "type": "string", "minLength": 1 },
    "ComplaintType": { "type": "string", "minLength": 1 },
    "ProcessedAt": { "type": "string", "minLength": 1 }
  },
  "required": ["ComplaintId", "CustomerEmail", "ComplaintType", "ProcessedAt"]
}`

var eventSchema = jsonschema.MustCompile("complaint processed event", EventSchema)

// zoneless timestamps are accepted and read as UTC.
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

type wireEvent struct {
	ComplaintID   string `json:"ComplaintId"`
	CustomerEmail string `json:"CustomerEmail"`
	ComplaintType string `json:"ComplaintType"`
	ProcessedAt   string `json:"ProcessedAt"`
}

// DecodeEvent decodes and validates an inner payload. It has no side effects.
// Every failure is a *PoisonError.
func DecodeEvent(payload string) (ComplaintProcessedEvent, error) {
	if err := eventSchema.ValidateString(payload); err != nil {
		if errors.Is(err, jsonschema.ErrSchemaValidationSystem) {
			return ComplaintProcessedEvent{}, poison(FailPayloadSchema, ErrInvalidEvent, "payload is not JSON: %v", err)
		}
		return ComplaintProcessedEvent{}, poison(FailPayloadSchema, ErrInvalidEvent, "%v", err)
	}

	var w wireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return ComplaintProcessedEvent{}, poison(FailPayloadSchema, ErrInvalidEvent, "%v", err)
	}

	id, err := uuid.Parse(strings.TrimSpace(w.ComplaintID))
	if err != nil {
		return ComplaintProcessedEvent{}, poison(FailInvalidField, ErrInvalidEvent, "ComplaintId %q: %v", w.ComplaintID, err)
	}
	if id == uuid.Nil {
		return ComplaintProcessedEvent{}, poison(FailInvalidField, ErrInvalidEvent, "ComplaintId is the nil UUID")
	}

	email := strings.TrimSpace(w.CustomerEmail)
	if email == "" {
		return ComplaintProcessedEvent{}, poison(FailInvalidField, ErrInvalidEvent, "CustomerEmail is blank")
	}
	complaintType := strings.TrimSpace(w.ComplaintType)
	if complaintType == "" {
		return ComplaintProcessedEvent{}, poison(FailInvalidField, ErrInvalidEvent, "ComplaintType is blank")
	}

	processedAt, err := parseTimestamp(strings.TrimSpace(w.ProcessedAt))
	if err != nil {
		return ComplaintProcessedEvent{}, poison(FailInvalidField, ErrInvalidEvent, "ProcessedAt %q: %v", w.ProcessedAt, err)
	}

	return ComplaintProcessedEvent{
		ComplaintID:   id,
		CustomerEmail: email,
		ComplaintType: complaintType,
		ProcessedAt:   processedAt,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	if local, lerr := time.ParseInLocation(localTimestampLayout, s, time.UTC); lerr == nil {
		return local, nil
	}
	return time.Time{}, err
}
