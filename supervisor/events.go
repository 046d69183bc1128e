package supervisor

import (
	"context"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
	"github.com/casperlabs/highway-era-supervisor/highway/event"
	"github.com/casperlabs/highway-era-supervisor/highway/message"
)

// handleEvents replays runtime-produced events in emission order.
func (s *Supervisor) handleEvents(ctx context.Context, events []event.Event) {
	for _, ev := range events {
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.EventsProcessed.WithLabelValues(ev.Kind.String()).Inc()
		}
		s.events.Broadcast(ev)

		switch ev.Kind {
		case event.KindCreatedEra:
			s.handleCreatedEra(ctx, ev.Era)
		case event.KindCreatedLambdaMessage, event.KindCreatedLambdaResponse, event.KindCreatedOmegaMessage:
			s.handleCreatedMessage(ctx, ev)
		default:
			s.logger.Error("handle_events: unknown event kind", "kind", ev.Kind)
		}
	}
}

func (s *Supervisor) handleCreatedEra(ctx context.Context, newEra api.Era) {
	s.logger.Info("handle_events: created era",
		"era", newEra.KeyBlockHash.String(),
		"parent", newEra.ParentKeyBlockHash.String(),
	)

	// The new era must be durable before load/start can fetch it back out
	// of storage; AddEra is an idempotent upsert so this is safe even if
	// the era was already persisted by a concurrent path.
	if err := s.cfg.Storage.AddEra(ctx, newEra); err != nil {
		s.logger.Error("handle_events: failed to persist created era",
			"era", newEra.KeyBlockHash.String(),
			"err", err,
		)
		return
	}

	if _, err := s.load(ctx, newEra.KeyBlockHash); err != nil {
		s.logger.Error("handle_events: failed to load created era",
			"era", newEra.KeyBlockHash.String(),
			"err", err,
		)
		return
	}

	if parent := s.lookup(newEra.ParentKeyBlockHash); parent != nil {
		parent.addChild(newEra.KeyBlockHash)
	}
}

func (s *Supervisor) handleCreatedMessage(ctx context.Context, ev event.Event) {
	m := ev.Message
	s.logger.Debug("handle_events: created message", "kind", ev.Kind, "hash", m.Hash.String())

	s.cfg.Relay.Relay(ctx, []hash.Hash{m.Hash})
	s.propagateLatestMessage(ctx, m)
}

// propagateLatestMessage tells the fork-choice manager about m for its
// own era and for every in-memory descendant era, loading each
// encountered child as traversal proceeds so no branch is silently
// skipped because it happens to be cold in memory.
func (s *Supervisor) propagateLatestMessage(ctx context.Context, m message.Message) {
	s.cfg.ForkChoice.UpdateLatestMessage(ctx, m.EraKeyBlockHash, m)

	descendants := bfsDescendants(m.EraKeyBlockHash, func(h hash.Hash) []hash.Hash {
		ent, err := s.load(ctx, h)
		if err != nil {
			s.logger.Error("propagate_latest_message: failed to load descendant",
				"era", h.String(), "err", err)
			return nil
		}
		return ent.childList()
	})

	for _, d := range descendants {
		s.cfg.ForkChoice.UpdateLatestMessage(ctx, d, m)
	}
}
