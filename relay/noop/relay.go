// Package noop implements a Relaying adapter that discards every hash it
// is given. Useful as a placeholder wiring target in tests and tooling
// that don't care about relay traffic at all, as distinct from
// relay/logging which at least records what would have been sent.
package noop

import (
	"context"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

// Relay is a Relaying implementation that does nothing.
type Relay struct{}

var _ api.Relaying = Relay{}

// New constructs a Relay.
func New() Relay {
	return Relay{}
}

// Relay discards hashes.
func (Relay) Relay(ctx context.Context, hashes []hash.Hash) {}
