// Package agenda defines the finite ordered set of delayed actions an era
// runtime requests, and the closed sum of action kinds a runtime can
// schedule against itself.
package agenda

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
)

// ActionKind is the closed sum of delayed-action variants a runtime may
// schedule.
type ActionKind uint8

const (
	// ActionStartRound requests the runtime start the given round.
	ActionStartRound ActionKind = iota
	// ActionCreateOmegaMessage requests the runtime emit its omega message
	// for the given round.
	ActionCreateOmegaMessage
	// ActionCreateLambdaResponse requests the runtime emit its response to
	// the round leader's lambda message.
	ActionCreateLambdaResponse
)

// Action is a single closed-sum delayed-action variant. Round identifies
// the round (by start tick) the action concerns; it is the only payload
// field, matching the three variants enumerated in the spec (StartRound,
// CreateOmegaMessage, CreateLambdaResponse), each of which carries exactly
// a round identifier.
type Action struct {
	Kind  ActionKind
	Round clock.Tick
}

// Digest computes the stable digest used to key the supervisor's
// scheduling table on (era_hash, digest) per the spec's "Scheduling key
// equality" design note, so DelayedAction payloads need not themselves be
// comparable.
func (a Action) Digest() hash.Hash {
	// cbor.Marshal of a small fixed-shape struct is deterministic: map
	// keys are canonicalized by the struct's field order, and there are no
	// floats or non-deterministic container types involved.
	enc, err := cbor.Marshal(a)
	if err != nil {
		// Action only contains plain integers; marshaling cannot fail.
		panic(err)
	}
	return hash.FromBytes(enc)
}

// DelayedAction pairs an Action with the tick it should fire at.
type DelayedAction struct {
	Tick   clock.Tick
	Action Action
}

// Key is the (era hash, action digest) scheduling-table key for this
// delayed action, given the era it was scheduled against.
func (d DelayedAction) Key(era hash.Hash) Key {
	return Key{Era: era, ActionDigest: d.Action.Digest()}
}

// Key identifies a single live scheduling-table entry.
type Key struct {
	Era          hash.Hash
	ActionDigest hash.Hash
}

// Agenda is the ordered set of delayed actions a runtime currently wants.
// Two distinct actions scheduled at the same tick fire independently and
// in no guaranteed relative order.
type Agenda []DelayedAction

// Empty reports whether the agenda has no pending actions, i.e. whether
// the era that produced it is finished.
func (a Agenda) Empty() bool {
	return len(a) == 0
}
