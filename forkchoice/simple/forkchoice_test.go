package simple

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

func TestUpdateLatestMessageRecordsPerValidator(t *testing.T) {
	ctx := context.Background()
	fc := New()

	era := hash.FromBytes([]byte("era"))
	var v1, v2 message.ValidatorID
	v1[0], v2[0] = 1, 2

	m1 := message.Message{Hash: hash.FromBytes([]byte("m1")), ValidatorID: v1}
	m2 := message.Message{Hash: hash.FromBytes([]byte("m2")), ValidatorID: v2}
	fc.UpdateLatestMessage(ctx, era, m1)
	fc.UpdateLatestMessage(ctx, era, m2)

	got1, ok := fc.LatestMessage(era, v1)
	require.True(t, ok)
	require.Equal(t, m1.Hash, got1.Hash)

	got2, ok := fc.LatestMessage(era, v2)
	require.True(t, ok)
	require.Equal(t, m2.Hash, got2.Hash)
}

func TestUpdateLatestMessageOverwritesSameValidator(t *testing.T) {
	ctx := context.Background()
	fc := New()

	era := hash.FromBytes([]byte("era"))
	var v1 message.ValidatorID
	v1[0] = 1

	fc.UpdateLatestMessage(ctx, era, message.Message{Hash: hash.FromBytes([]byte("m1")), ValidatorID: v1, RoundID: 0})
	fc.UpdateLatestMessage(ctx, era, message.Message{Hash: hash.FromBytes([]byte("m2")), ValidatorID: v1, RoundID: 4})

	got, ok := fc.LatestMessage(era, v1)
	require.True(t, ok)
	require.Equal(t, hash.FromBytes([]byte("m2")), got.Hash)
}

func TestUpdateCount(t *testing.T) {
	ctx := context.Background()
	fc := New()
	era := hash.FromBytes([]byte("era"))
	var v1 message.ValidatorID

	for i := 0; i < 3; i++ {
		fc.UpdateLatestMessage(ctx, era, message.Message{ValidatorID: v1, RoundID: clock.Tick(i)})
	}
	require.Equal(t, 3, fc.UpdateCount())
}
