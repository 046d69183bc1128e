// Package supervisor implements the EraSupervisor: the orchestrator that
// owns the era map, the scheduling table, the shutdown flag, and the
// load-semaphore that together turn a stream of inbound blocks and
// scheduled agenda actions into running per-era runtimes.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"

	"github.com/casperlabs/highway-era-supervisor/common/clock"
	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/common/metrics"
	"github.com/casperlabs/highway-era-supervisor/common/pubsub"
	"github.com/casperlabs/highway-era-supervisor/highway/agenda"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/era"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// BlockParser converts an externally-defined block representation into the
// supervisor's normalized Message view. ValidateAndAddBlock wraps any
// error it returns in api.ErrMalformed.
type BlockParser func(block interface{}) (message.Message, error)

// BlockExecutor is an optional, integrator-supplied block execution/
// validation hook invoked after Validate and before propagateLatestMessage.
type BlockExecutor func(ctx context.Context, m message.Message) error

// RuntimeFactory constructs the EraRuntime bound to era. Injected so the
// supervisor never depends on the concrete era.Runtime type directly.
type RuntimeFactory func(e api.Era) era.EraRuntime

// Config bundles the EraSupervisor's external collaborators and
// configuration.
type Config struct {
	Storage    api.EraStorage
	Relay      api.Relaying
	ForkChoice api.ForkChoiceManager

	Clock           clock.Source
	HighwayConf     clock.HighwayConf
	GenesisSummary  api.Era
	BondedValidator *message.ValidatorID

	NewRuntime RuntimeFactory
	ParseBlock BlockParser
	Execute    BlockExecutor

	Metrics *metrics.Collectors
}

// Supervisor is the EraSupervisor.
type Supervisor struct {
	cfg    Config
	logger *logging.Logger

	isShutdown int32

	erasMu sync.RWMutex
	eras   map[hash.Hash]*entry

	scheduleMu sync.Mutex
	schedule   map[agenda.Key]context.CancelFunc

	loadSem chan struct{}

	fibersWG sync.WaitGroup

	// events is broadcast into on every processed event but has no
	// subscribe path exposed on Supervisor yet; kept as forward-compat
	// infrastructure for an eventual external observer API.
	events *pubsub.Broker
}

// New constructs a Supervisor. It does not perform startup bootstrap; call
// Bootstrap to reconstruct the active frontier from storage, or use Open
// to do both in one call.
func New(cfg Config) *Supervisor {
	if cfg.NewRuntime == nil {
		cfg.NewRuntime = func(e api.Era) era.EraRuntime {
			return era.New(e, era.Config{Conf: cfg.HighwayConf, Clock: cfg.Clock, Bonded: cfg.BondedValidator})
		}
	}
	if cfg.ParseBlock == nil {
		cfg.ParseBlock = DefaultBlockParser
	}
	return &Supervisor{
		cfg:      cfg,
		logger:   logging.GetLogger("supervisor"),
		eras:     make(map[hash.Hash]*entry),
		schedule: make(map[agenda.Key]context.CancelFunc),
		loadSem:  make(chan struct{}, 1),
		events:   pubsub.NewBroker(false),
	}
}

// Open constructs a Supervisor and immediately runs startup bootstrap. The
// caller must Shutdown it on release regardless of exit path.
func Open(ctx context.Context, cfg Config) (*Supervisor, error) {
	s := New(cfg)
	if err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Supervisor) shuttingDown() bool {
	return atomic.LoadInt32(&s.isShutdown) != 0
}

// ValidateAndAddBlock is the supervisor's main inbound entry point.
func (s *Supervisor) ValidateAndAddBlock(ctx context.Context, block interface{}) error {
	if s.shuttingDown() {
		return api.ErrShuttingDown
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "EraSupervisor.ValidateAndAddBlock")
	defer span.Finish()

	m, err := s.cfg.ParseBlock(block)
	if err != nil {
		return fmt.Errorf("%w: %s", api.ErrMalformed, err)
	}

	ent, err := s.load(ctx, m.EraKeyBlockHash)
	if err != nil {
		return err
	}

	ent.mu.Lock()
	verr := ent.runtime.Validate(m)
	ent.mu.Unlock()
	if verr != nil {
		return api.NewInvalidBlockError(verr)
	}

	if s.cfg.Execute != nil {
		if err := s.cfg.Execute(ctx, m); err != nil {
			return api.NewStorageFailureError(err)
		}
	}

	s.propagateLatestMessage(ctx, m)

	ent.mu.Lock()
	events := ent.runtime.HandleMessage(m)
	ent.mu.Unlock()

	s.handleEvents(ctx, events)

	// Re-check: a shutdown concurrent with this call must still be
	// observable to the caller, even though the work above already
	// happened -- the supervisor does not roll back best-effort in-flight
	// calls.
	if s.shuttingDown() {
		return api.ErrShuttingDown
	}
	return nil
}

// Eras returns a point-in-time snapshot of every loaded era entry. Not
// ordered.
func (s *Supervisor) Eras() []Entry {
	s.erasMu.RLock()
	defer s.erasMu.RUnlock()

	out := make([]Entry, 0, len(s.eras))
	for _, e := range s.eras {
		out = append(out, e.snapshot())
	}
	return out
}

// Shutdown sets the shutdown flag and cancels every outstanding scheduled
// fiber. Idempotent after the first call.
func (s *Supervisor) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&s.isShutdown, 0, 1) {
		return nil
	}

	s.scheduleMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.schedule))
	for k, cancel := range s.schedule {
		cancels = append(cancels, cancel)
		delete(s.schedule, k)
	}
	s.scheduleMu.Unlock()

	var merr *multierror.Error
	for _, cancel := range cancels {
		func() {
			defer func() {
				if r := recover(); r != nil {
					merr = multierror.Append(merr, fmt.Errorf("panic cancelling fiber: %v", r))
				}
			}()
			cancel()
		}()
	}

	s.logger.Info("shutdown: cancelled outstanding fibers", "count", len(cancels))
	return merr.ErrorOrNil()
}

func (s *Supervisor) metrics() {
	if s.cfg.Metrics == nil {
		return
	}
	s.erasMu.RLock()
	numEras := len(s.eras)
	s.erasMu.RUnlock()
	s.scheduleMu.Lock()
	numSched := len(s.schedule)
	s.scheduleMu.Unlock()

	s.cfg.Metrics.LoadedEras.Set(float64(numEras))
	s.cfg.Metrics.ScheduleEntries.Set(float64(numSched))
}
