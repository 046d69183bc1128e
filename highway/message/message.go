// Package message defines the normalized view of a consensus message that
// the era supervisor and era runtimes operate on.
package message

import (
	"golang.org/x/crypto/ed25519"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
)

// Kind identifies which of the three scheduled message kinds (plus the
// block/ballot wrapper) a Message carries.
type Kind uint8

const (
	// KindLambda is the round-leader's proposal message.
	KindLambda Kind = iota
	// KindLambdaResponse is a non-leader validator's response to a lambda.
	KindLambdaResponse
	// KindOmega is the end-of-round summary message.
	KindOmega
	// KindBallot is a vote message with no associated block.
	KindBallot
	// KindBlock is a proposal message carrying a new block.
	KindBlock
)

// String renders the Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindLambda:
		return "lambda"
	case KindLambdaResponse:
		return "lambda-response"
	case KindOmega:
		return "omega"
	case KindBallot:
		return "ballot"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Message is the supervisor/runtime's normalized view of an inbound or
// locally produced consensus message.
type Message struct {
	// Hash identifies this message.
	Hash hash.Hash
	// ParentHash is the hash of the message this one builds on, empty iff
	// this message has no parent. An era's first messages name the era's
	// key block hash as their parent; an empty parent is accepted only in
	// the genesis era.
	ParentHash hash.Hash
	// EraKeyBlockHash identifies the era that issued (or will issue) this
	// message.
	EraKeyBlockHash hash.Hash
	// RoundID is the round this message belongs to, given as the round's
	// absolute start tick.
	RoundID clock.Tick
	// ValidatorID is the opaque identity of the message's signer.
	ValidatorID ValidatorID
	// Kind is the message's kind.
	Kind Kind
}

// ValidatorID is the opaque identity of a bonded validator. It is never
// used to verify or produce signatures here -- signature verification
// happens upstream, before a block reaches this package -- only as a
// comparable map key.
type ValidatorID [ed25519.PublicKeySize]byte

// String renders the validator ID for logging.
func (v ValidatorID) String() string {
	return hash.Hash(v).String()
}

// ValidatorIDFromPublicKey converts an ed25519 public key into the opaque
// ValidatorID map-key type used throughout this package.
func ValidatorIDFromPublicKey(pk ed25519.PublicKey) (ValidatorID, bool) {
	var v ValidatorID
	if len(pk) != ed25519.PublicKeySize {
		return v, false
	}
	copy(v[:], pk)
	return v, true
}
