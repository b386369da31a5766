package complaintflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		wantKind FailureKind
		wantErr  error
	}{
		{name: "minimal envelope", body: `{"Message":"{\"a\":1}"}`, want: `{"a":1}`},
		{name: "full sns envelope", body: snsBody(t, "hello"), want: "hello"},
		{name: "empty body", body: "", wantKind: FailEmptyBody, wantErr: ErrEmptyBody},
		{name: "whitespace body", body: " \n\t ", wantKind: FailEmptyBody, wantErr: ErrEmptyBody},
		{name: "not json", body: "not-json", wantKind: FailEnvelopeParse, wantErr: ErrInvalidEnvelope},
		{name: "json array", body: `["Message"]`, wantKind: FailEnvelopeSchema, wantErr: ErrInvalidEnvelope},
		{name: "missing Message", body: `{"Subject":"x"}`, wantKind: FailEnvelopeSchema, wantErr: ErrInvalidEnvelope},
		{name: "Message not a string", body: `{"Message":{"ComplaintId":"x"}}`, wantKind: FailEnvelopeSchema, wantErr: ErrInvalidEnvelope},
		{name: "lowercase key", body: `{"message":"x"}`, wantKind: FailEnvelopeSchema, wantErr: ErrInvalidEnvelope},
		{name: "empty Message", body: `{"Message":""}`, wantKind: FailEmptyPayload, wantErr: ErrEmptyPayload},
		{name: "whitespace Message", body: `{"Message":"   "}`, wantKind: FailEmptyPayload, wantErr: ErrEmptyPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unwrap(tt.body)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			assert.True(t, IsPoison(err))
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}
