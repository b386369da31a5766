package complaintflow

// FailureKind enumerates where in the pipeline a message failed.
type FailureKind int

const (
	// FailNone indicates no failure occurred.
	FailNone FailureKind = iota
	// FailEmptyBody indicates the message body was empty or whitespace.
	FailEmptyBody
	// FailEnvelopeSchema indicates the body did not match the SNS envelope shape.
	FailEnvelopeSchema
	// FailEnvelopeParse indicates the body matched the schema but could not be unmarshalled.
	FailEnvelopeParse
	// FailEmptyPayload indicates the envelope carried an empty or whitespace Message.
	FailEmptyPayload
	// FailPayloadSchema indicates the inner payload did not match the event schema.
	FailPayloadSchema
	// FailInvalidField indicates a required event field was present but unusable.
	FailInvalidField
	// FailDispatchError indicates the dispatcher returned an error.
	FailDispatchError
	// FailDispatchPanic indicates the dispatcher panicked.
	FailDispatchPanic
)

var failureKindNames = map[FailureKind]string{
	FailNone:           "none",
	FailEmptyBody:      "empty_body",
	FailEnvelopeSchema: "envelope_schema",
	FailEnvelopeParse:  "envelope_parse",
	FailEmptyPayload:   "empty_payload",
	FailPayloadSchema:  "payload_schema",
	FailInvalidField:   "invalid_field",
	FailDispatchError:  "dispatch_error",
	FailDispatchPanic:  "dispatch_panic",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Poison reports whether the kind is a structural failure that redelivery cannot fix.
func (k FailureKind) Poison() bool {
	switch k {
	case FailEmptyBody, FailEnvelopeSchema, FailEnvelopeParse, FailEmptyPayload, FailPayloadSchema, FailInvalidField:
		return true
	default:
		return false
	}
}

// Outcome is the result of processing one delivery of one message.
type Outcome int

const (
	// OutcomeDispatched means the event was dispatched and the message acknowledged.
	OutcomeDispatched Outcome = iota
	// OutcomeDiscardedPoison means the message was malformed and deleted without dispatch.
	OutcomeDiscardedPoison
	// OutcomeRetainedForRetry means dispatch failed and the message was left for redelivery.
	OutcomeRetainedForRetry
	// OutcomeTransportFailure means the delete decided for the message could not be performed.
	OutcomeTransportFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeDiscardedPoison:
		return "discarded_poison"
	case OutcomeRetainedForRetry:
		return "retained_for_retry"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Decision is the ack decision derived from a failure kind.
type Decision struct {
	Outcome      Outcome
	ShouldDelete bool
}

// Classify maps a pipeline failure to its ack decision. Poison is deleted,
// success is deleted, dispatch failures are retained for redelivery.
// OutcomeTransportFailure is never returned here; it is assigned when the
// delete decided by Classify fails.
func Classify(kind FailureKind) Decision {
	switch {
	case kind == FailNone:
		return Decision{Outcome: OutcomeDispatched, ShouldDelete: true}
	case kind.Poison():
		return Decision{Outcome: OutcomeDiscardedPoison, ShouldDelete: true}
	default:
		return Decision{Outcome: OutcomeRetainedForRetry, ShouldDelete: false}
	}
}
