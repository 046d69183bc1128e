package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/forkchoice/simple"
	"github.com/casperlabs/highway-era-supervisor/highway/agenda"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/era"
	"github.com/casperlabs/highway-era-supervisor/highway/event"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
	"github.com/casperlabs/highway-era-supervisor/relay/logging"
	"github.com/casperlabs/highway-era-supervisor/storage/eradb"
)

// stubRuntime is a scripted era.EraRuntime used where tests need full
// control over an entry's behavior without going through the timer-driven
// agenda path.
type stubRuntime struct {
	era    api.Era
	active bool
}

func (s *stubRuntime) InitAgenda() agenda.Agenda {
	if !s.active {
		return nil
	}
	return agenda.Agenda{{Tick: s.era.StartTick, Action: agenda.Action{Kind: agenda.ActionStartRound, Round: s.era.StartTick}}}
}
func (s *stubRuntime) Validate(message.Message) error               { return nil }
func (s *stubRuntime) HandleMessage(message.Message) []event.Event  { return nil }
func (s *stubRuntime) HandleAgenda(agenda.Action) ([]event.Event, agenda.Agenda) {
	return nil, nil
}
func (s *stubRuntime) Era() api.Era { return s.era }

func testConfig() Config {
	return Config{
		Storage:    eradb.NewMemory(),
		Relay:      logging.New(),
		ForkChoice: simple.New(),
		Clock:      clock.NewFakeSource(0),
		HighwayConf: clock.HighwayConf{
			TickUnit:          time.Hour, // fibers for any future tick never fire during these tests
			InitRoundExponent: 2,
		},
	}
}

func TestLoadDeduplicatesConcurrentCallers(t *testing.T) {
	cfg := testConfig()
	genesis := api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 1 << 20}
	cfg.GenesisSummary = genesis
	require.NoError(t, cfg.Storage.AddEra(context.Background(), genesis))

	var starts int32
	cfg.NewRuntime = func(e api.Era) era.EraRuntime {
		atomic.AddInt32(&starts, 1)
		return &stubRuntime{era: e}
	}

	s := New(cfg)
	defer s.Shutdown()

	const n = 32
	var wg sync.WaitGroup
	entries := make([]*entry, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.load(context.Background(), genesis.KeyBlockHash)
			require.NoError(t, err)
			entries[i] = e
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&starts), "the runtime factory must be invoked exactly once per era")
	for i := 1; i < n; i++ {
		require.Same(t, entries[0], entries[i], "every caller must observe the same entry instance")
	}
}

func TestHandleCreatedEraPersistsLoadsAndLinksParent(t *testing.T) {
	cfg := testConfig()
	genesis := api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 1 << 20}
	cfg.GenesisSummary = genesis
	require.NoError(t, cfg.Storage.AddEra(context.Background(), genesis))
	cfg.NewRuntime = func(e api.Era) era.EraRuntime { return &stubRuntime{era: e} }

	s := New(cfg)
	defer s.Shutdown()

	ctx := context.Background()
	parent, err := s.load(ctx, genesis.KeyBlockHash)
	require.NoError(t, err)

	child := api.Era{
		KeyBlockHash:       hash.FromBytes([]byte("child")),
		ParentKeyBlockHash: genesis.KeyBlockHash,
		StartTick:          genesis.EndTick,
		EndTick:            genesis.EndTick + 16,
	}
	s.handleEvents(ctx, []event.Event{event.NewCreatedEra(child)})

	persisted, err := cfg.Storage.GetEra(ctx, child.KeyBlockHash)
	require.NoError(t, err)
	require.Equal(t, child.KeyBlockHash, persisted.KeyBlockHash)

	require.Len(t, s.Eras(), 2)
	require.Contains(t, parent.childList(), child.KeyBlockHash)
}

func TestPropagateLatestMessageUpdatesWholeSubtree(t *testing.T) {
	cfg := testConfig()
	fc := simple.New()
	cfg.ForkChoice = fc
	cfg.NewRuntime = func(e api.Era) era.EraRuntime { return &stubRuntime{era: e} }

	s := New(cfg)
	defer s.Shutdown()

	root := hash.FromBytes([]byte("root"))
	child1 := hash.FromBytes([]byte("child1"))
	grandchild := hash.FromBytes([]byte("grandchild"))

	s.eras = map[hash.Hash]*entry{
		root:       newEntry(&stubRuntime{era: api.Era{KeyBlockHash: root}}, []hash.Hash{child1}),
		child1:     newEntry(&stubRuntime{era: api.Era{KeyBlockHash: child1}}, []hash.Hash{grandchild}),
		grandchild: newEntry(&stubRuntime{era: api.Era{KeyBlockHash: grandchild}}, nil),
	}

	var v message.ValidatorID
	v[0] = 1
	m := message.Message{Hash: hash.FromBytes([]byte("m")), EraKeyBlockHash: root, ValidatorID: v}

	s.propagateLatestMessage(context.Background(), m)

	require.Equal(t, 3, fc.UpdateCount())
	for _, h := range []hash.Hash{root, child1, grandchild} {
		got, ok := fc.LatestMessage(h, v)
		require.True(t, ok, "era %s should have received the latest message", h.String())
		require.Equal(t, m.Hash, got.Hash)
	}
}

func TestShutdownCancelsOutstandingFibersAndIsIdempotent(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	var cancelled int32
	s.scheduleMu.Lock()
	for i := 0; i < 3; i++ {
		key := agenda.Key{Era: hash.FromBytes([]byte{byte(i)})}
		s.schedule[key] = func() { atomic.AddInt32(&cancelled, 1) }
	}
	s.scheduleMu.Unlock()

	require.NoError(t, s.Shutdown())
	require.Equal(t, int32(3), atomic.LoadInt32(&cancelled))
	require.Empty(t, s.schedule)

	// Idempotent: a second call is a no-op, not a re-cancellation.
	require.NoError(t, s.Shutdown())
	require.Equal(t, int32(3), atomic.LoadInt32(&cancelled))
}

func TestValidateAndAddBlockRejectsAfterShutdown(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)
	require.NoError(t, s.Shutdown())

	err := s.ValidateAndAddBlock(context.Background(), message.Message{})
	require.ErrorIs(t, err, api.ErrShuttingDown)
}

func TestValidateAndAddBlockRejectsMalformedBlock(t *testing.T) {
	cfg := testConfig()
	genesis := api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 1 << 20}
	cfg.GenesisSummary = genesis
	cfg.NewRuntime = func(e api.Era) era.EraRuntime { return &stubRuntime{era: e} }
	s := New(cfg)
	defer s.Shutdown()

	err := s.ValidateAndAddBlock(context.Background(), "not a message")
	require.ErrorIs(t, err, api.ErrMalformed)
}

func TestOpenBootstrapsActiveGenesisOnly(t *testing.T) {
	cfg := testConfig()
	cfg.GenesisSummary = api.Era{KeyBlockHash: hash.FromBytes([]byte("genesis")), EndTick: 1 << 20}
	cfg.NewRuntime = func(e api.Era) era.EraRuntime { return &stubRuntime{era: e, active: true} }

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Shutdown()

	eras := s.Eras()
	require.Len(t, eras, 1)
	require.Equal(t, cfg.GenesisSummary.KeyBlockHash, eras[0].KeyBlockHash)
}
