// Package event defines HighwayEvent, the closed sum of domain events
// produced by pure EraRuntime state transitions and replayed by the
// supervisor as side effects.
package event

import (
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// Kind identifies which HighwayEvent variant an Event carries.
type Kind uint8

const (
	// KindCreatedEra signals a new child era has been produced.
	KindCreatedEra Kind = iota
	// KindCreatedLambdaMessage signals a new lambda message was produced.
	KindCreatedLambdaMessage
	// KindCreatedLambdaResponse signals a new lambda-response message was
	// produced.
	KindCreatedLambdaResponse
	// KindCreatedOmegaMessage signals a new omega message was produced.
	KindCreatedOmegaMessage
)

// String renders the Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindCreatedEra:
		return "created-era"
	case KindCreatedLambdaMessage:
		return "created-lambda-message"
	case KindCreatedLambdaResponse:
		return "created-lambda-response"
	case KindCreatedOmegaMessage:
		return "created-omega-message"
	default:
		return "unknown"
	}
}

// Event is a single HighwayEvent value. Exactly one of Era or Message is
// populated, selected by Kind -- modeled as a tagged struct rather than an
// interface, since Go has no native sum types and the event set is small
// and fixed.
type Event struct {
	Kind Kind

	// Era is populated iff Kind == KindCreatedEra.
	Era api.Era

	// Message is populated for the three CreatedXMessage variants.
	Message message.Message
}

// NewCreatedEra constructs a CreatedEra event. Era carries the full
// persisted record produced by the runtime so the supervisor can
// add_era/load it without a second round-trip to storage.
func NewCreatedEra(era api.Era) Event {
	return Event{Kind: KindCreatedEra, Era: era}
}

// NewCreatedLambdaMessage constructs a CreatedLambdaMessage event.
func NewCreatedLambdaMessage(m message.Message) Event {
	return Event{Kind: KindCreatedLambdaMessage, Message: m}
}

// NewCreatedLambdaResponse constructs a CreatedLambdaResponse event.
func NewCreatedLambdaResponse(m message.Message) Event {
	return Event{Kind: KindCreatedLambdaResponse, Message: m}
}

// NewCreatedOmegaMessage constructs a CreatedOmegaMessage event.
func NewCreatedOmegaMessage(m message.Message) Event {
	return Event{Kind: KindCreatedOmegaMessage, Message: m}
}
