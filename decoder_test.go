package complaintflow

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_Valid(t *testing.T) {
	event, err := DecodeEvent(validPayload())
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse(testComplaintID), event.ComplaintID)
	assert.Equal(t, "a@b.com", event.CustomerEmail)
	assert.Equal(t, "Billing", event.ComplaintType)
	assert.True(t, event.ProcessedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, event.ProcessedAt.Location())
}

func TestDecodeEvent_TimestampForms(t *testing.T) {
	want := time.Date(2024, 3, 5, 12, 30, 15, 123456700, time.UTC)

	tests := []struct {
		name string
		ts   string
	}{
		{"utc with fraction", "2024-03-05T12:30:15.1234567Z"},
		{"offset is normalised to utc", "2024-03-05T14:30:15.1234567+02:00"},
		{"zoneless read as utc", "2024-03-05T12:30:15.1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent(eventPayload(testComplaintID, "a@b.com", "Billing", tt.ts))
			require.NoError(t, err)
			assert.True(t, event.ProcessedAt.Equal(want), "got %v", event.ProcessedAt)
			assert.Equal(t, time.UTC, event.ProcessedAt.Location())
		})
	}
}

func TestDecodeEvent_Poison(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind FailureKind
	}{
		{"not json", "not-json", FailPayloadSchema},
		{"json string", `"hello"`, FailPayloadSchema},
		{"empty object", `{}`, FailPayloadSchema},
		{"missing ComplaintId", `{"CustomerEmail":"a@b.com","ComplaintType":"Billing","ProcessedAt":"2024-01-01T00:00:00Z"}`, FailPayloadSchema},
		{"missing CustomerEmail", `{"ComplaintId":"` + testComplaintID + `","ComplaintType":"Billing","ProcessedAt":"2024-01-01T00:00:00Z"}`, FailPayloadSchema},
		{"missing ComplaintType", `{"ComplaintId":"` + testComplaintID + `","CustomerEmail":"a@b.com","ProcessedAt":"2024-01-01T00:00:00Z"}`, FailPayloadSchema},
		{"missing ProcessedAt", `{"ComplaintId":"` + testComplaintID + `","CustomerEmail":"a@b.com","ComplaintType":"Billing"}`, FailPayloadSchema},
		{"wrong type", `{"ComplaintId":42,"CustomerEmail":"a@b.com","ComplaintType":"Billing","ProcessedAt":"2024-01-01T00:00:00Z"}`, FailPayloadSchema},
		{"empty email", eventPayload(testComplaintID, "", "Billing", "2024-01-01T00:00:00Z"), FailPayloadSchema},
		{"non uuid id", eventPayload("b3b5...", "a@b.com", "Billing", "2024-01-01T00:00:00Z"), FailInvalidField},
		{"nil uuid", eventPayload(uuid.Nil.String(), "a@b.com", "Billing", "2024-01-01T00:00:00Z"), FailInvalidField},
		{"blank email", eventPayload(testComplaintID, "   ", "Billing", "2024-01-01T00:00:00Z"), FailInvalidField},
		{"blank type", eventPayload(testComplaintID, "a@b.com", " ", "2024-01-01T00:00:00Z"), FailInvalidField},
		{"malformed timestamp", eventPayload(testComplaintID, "a@b.com", "Billing", "yesterday"), FailInvalidField},
		{"date only", eventPayload(testComplaintID, "a@b.com", "Billing", "2024-01-01"), FailInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent(tt.payload)
			require.Error(t, err)
			assert.Equal(t, ComplaintProcessedEvent{}, event, "no partially populated event")
			assert.True(t, errors.Is(err, ErrInvalidEvent))
			assert.True(t, IsPoison(err))
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}
