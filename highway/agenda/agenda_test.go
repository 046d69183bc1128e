package agenda

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
)

func TestActionDigestDeterministic(t *testing.T) {
	a := Action{Kind: ActionStartRound, Round: 16}
	b := Action{Kind: ActionStartRound, Round: 16}
	require.Equal(t, a.Digest(), b.Digest())
}

func TestActionDigestDistinguishesKindAndRound(t *testing.T) {
	base := Action{Kind: ActionStartRound, Round: 16}
	diffKind := Action{Kind: ActionCreateOmegaMessage, Round: 16}
	diffRound := Action{Kind: ActionStartRound, Round: 32}

	require.NotEqual(t, base.Digest(), diffKind.Digest())
	require.NotEqual(t, base.Digest(), diffRound.Digest())
}

func TestDelayedActionKey(t *testing.T) {
	era := hash.FromBytes([]byte("era"))
	otherEra := hash.FromBytes([]byte("other-era"))
	da := DelayedAction{Tick: 16, Action: Action{Kind: ActionStartRound, Round: 16}}

	k1 := da.Key(era)
	k2 := da.Key(era)
	require.Equal(t, k1, k2)

	k3 := da.Key(otherEra)
	require.NotEqual(t, k1, k3, "the same action digest under a different era is a distinct key")
}

func TestAgendaEmpty(t *testing.T) {
	require.True(t, Agenda(nil).Empty())
	require.True(t, Agenda{}.Empty())
	require.False(t, Agenda{{Tick: 1}}.Empty())
}
