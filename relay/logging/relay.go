// Package logging implements a Relaying adapter that logs every relayed
// hash instead of actually broadcasting it, for use where a real gossip
// substrate has not been wired in.
package logging

import (
	"context"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	loglib "github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

// Relay is a fire-and-forget, log-only Relaying implementation.
type Relay struct {
	logger *loglib.Logger
}

var _ api.Relaying = (*Relay)(nil)

// New constructs a Relay.
func New() *Relay {
	return &Relay{logger: loglib.GetLogger("relay/logging")}
}

// Relay logs each hash at debug level; per the Relaying contract, this
// never fails and never blocks the caller.
func (r *Relay) Relay(ctx context.Context, hashes []hash.Hash) {
	for _, h := range hashes {
		r.logger.Debug("relay", "hash", h.String())
	}
}
