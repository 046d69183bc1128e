// Package api defines the data types and external-collaborator contracts
// the era supervisor and era runtimes are built against: the persisted Era
// record, and the EraStorage / Relaying / ForkChoiceManager interfaces.
package api

import (
	"context"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// Era is the persisted description of a time-bounded sub-DAG of consensus
// messages: its key block hash, parent, tick bounds, bonded-validator
// snapshot, and leader-schedule seed.
type Era struct {
	// KeyBlockHash is the era's primary identifier: the hash of the switch
	// block that opened it.
	KeyBlockHash hash.Hash
	// ParentKeyBlockHash is empty iff this is the genesis era.
	ParentKeyBlockHash hash.Hash
	// StartTick is the first tick at which this era's rounds may run.
	StartTick clock.Tick
	// EndTick is the tick at which this era stops scheduling new rounds.
	EndTick clock.Tick
	// BondedValidators is the snapshot of validators bonded for this era.
	BondedValidators []message.ValidatorID
	// LeaderSeed seeds this era's leader-selection schedule.
	LeaderSeed hash.Hash
}

// IsGenesis reports whether this era has no parent.
func (e Era) IsGenesis() bool {
	return e.ParentKeyBlockHash.IsEmpty()
}

// EraStorage is the external collaborator contract for era persistence.
// It is the only store contract this core depends on directly; block and
// finality stores belong to layers the supervisor does not itself own, so
// they are not modeled here.
type EraStorage interface {
	// AddEra is an idempotent upsert keyed by KeyBlockHash.
	AddEra(ctx context.Context, era Era) error
	// GetEra returns the era or ErrNotFound.
	GetEra(ctx context.Context, keyBlockHash hash.Hash) (Era, error)
	// GetChildren returns the set of eras whose ParentKeyBlockHash is hash;
	// empty if none.
	GetChildren(ctx context.Context, keyBlockHash hash.Hash) ([]Era, error)
	// GetChildlessEras returns the set of eras with no recorded children --
	// the current tips of the era tree.
	GetChildlessEras(ctx context.Context) ([]Era, error)
}

// Relaying is the external collaborator contract for broadcasting locally
// produced message hashes to peers. Fire-and-forget: errors are non-fatal
// and must be logged by the implementation, never surfaced to the
// supervisor.
type Relaying interface {
	Relay(ctx context.Context, hashes []hash.Hash)
}

// ForkChoiceManager is the external collaborator contract consulted for
// parent selection. UpdateLatestMessage is idempotent per (era, m.Hash):
// the real implementation reconciles with its own persisted state on first
// observation per era.
type ForkChoiceManager interface {
	UpdateLatestMessage(ctx context.Context, eraKeyBlockHash hash.Hash, m message.Message)
}
