package eradb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

func TestMemoryAddAndGetEra(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	e := api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 16}
	require.NoError(t, store.AddEra(ctx, e))

	got, err := store.GetEra(ctx, e.KeyBlockHash)
	require.NoError(t, err)
	require.Equal(t, e.KeyBlockHash, got.KeyBlockHash)
	require.Equal(t, e.EndTick, got.EndTick)
}

func TestMemoryGetEraNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.GetEra(ctx, hash.FromBytes([]byte("missing")))
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestMemoryAddEraIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	e := api.Era{KeyBlockHash: hash.FromBytes([]byte("e")), EndTick: 16}
	require.NoError(t, store.AddEra(ctx, e))

	e.EndTick = 32
	require.NoError(t, store.AddEra(ctx, e))

	got, err := store.GetEra(ctx, e.KeyBlockHash)
	require.NoError(t, err)
	require.Equal(t, e.EndTick, got.EndTick)
}

func TestMemoryGetChildrenAndChildlessEras(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	genesis := api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 16}
	child := api.Era{
		KeyBlockHash:       hash.FromBytes([]byte("child")),
		ParentKeyBlockHash: genesis.KeyBlockHash,
		StartTick:          16,
		EndTick:            32,
	}
	require.NoError(t, store.AddEra(ctx, genesis))
	require.NoError(t, store.AddEra(ctx, child))

	children, err := store.GetChildren(ctx, genesis.KeyBlockHash)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, child.KeyBlockHash, children[0].KeyBlockHash)

	tips, err := store.GetChildlessEras(ctx)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	require.Equal(t, child.KeyBlockHash, tips[0].KeyBlockHash)
}

func TestMemoryBondedValidatorsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var v1, v2 message.ValidatorID
	v1[0], v2[0] = 1, 2
	e := api.Era{
		KeyBlockHash:     hash.FromBytes([]byte("with-validators")),
		EndTick:          16,
		BondedValidators: []message.ValidatorID{v1, v2},
	}
	require.NoError(t, store.AddEra(ctx, e))

	got, err := store.GetEra(ctx, e.KeyBlockHash)
	require.NoError(t, err)
	require.Equal(t, e.BondedValidators, got.BondedValidators)
}
