package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/casperlabs/highway-era-supervisor/highway/agenda"
)

// schedule spawns one cancellable timer fiber per delayed action in ag.
// Each fiber, when fired, removes its own schedule entry before running
// the runtime's HandleAgenda and re-scheduling any follow-up agenda it
// returns.
func (s *Supervisor) schedule(ctx context.Context, ent *entry, ag agenda.Agenda) {
	for _, da := range ag {
		s.scheduleOne(ctx, ent, da)
	}
}

func (s *Supervisor) scheduleOne(ctx context.Context, ent *entry, da agenda.DelayedAction) {
	eraHash := ent.runtime.Era().KeyBlockHash
	key := da.Key(eraHash)

	fiberCtx, cancel := context.WithCancel(ctx)

	s.scheduleMu.Lock()
	if _, dup := s.schedule[key]; dup {
		s.scheduleMu.Unlock()
		cancel()
		panic(fmt.Sprintf("supervisor: BUG: duplicate schedule key for era %s", eraHash))
	}
	s.schedule[key] = cancel
	s.scheduleMu.Unlock()
	s.metrics()

	now := s.cfg.Clock.Now()
	delay := s.cfg.HighwayConf.TicksToDuration(da.Tick.Sub(now))

	s.fibersWG.Add(1)
	go s.runFiber(fiberCtx, key, ent, da.Action, delay)
}

func (s *Supervisor) runFiber(ctx context.Context, key agenda.Key, ent *entry, action agenda.Action, delay time.Duration) {
	defer s.fibersWG.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.scheduleMu.Lock()
	delete(s.schedule, key)
	s.scheduleMu.Unlock()
	s.metrics()

	if s.shuttingDown() {
		// A fiber that fires after shutdown is set must still be safe:
		// skip the mutation entirely rather than replay into a torn-down
		// supervisor.
		return
	}

	s.runAgendaAction(ctx, ent, action)
}

func (s *Supervisor) runAgendaAction(ctx context.Context, ent *entry, action agenda.Action) {
	defer func() {
		if r := recover(); r != nil {
			// A panicking agenda handler is caught, logged, and swallowed.
			// The fiber is not rescheduled; recovery relies on the next
			// scheduled round.
			s.logger.Error("scheduled action panicked",
				"era", ent.runtime.Era().KeyBlockHash.String(),
				"err", r,
			)
		}
	}()

	ent.mu.Lock()
	events, next := ent.runtime.HandleAgenda(action)
	ent.mu.Unlock()

	s.handleEvents(ctx, events)
	s.schedule(ctx, ent, next)
}
