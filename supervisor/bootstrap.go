package supervisor

import (
	"context"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

// Bootstrap reconstructs the active frontier of eras from persisted state.
// It is idempotent: calling it more than once is safe, since AddEra/load
// are themselves idempotent, but callers should only need to call it once,
// right after New.
func (s *Supervisor) Bootstrap(ctx context.Context) error {
	if err := s.cfg.Storage.AddEra(ctx, s.cfg.GenesisSummary); err != nil {
		return err
	}

	tips, err := s.cfg.Storage.GetChildlessEras(ctx)
	if err != nil {
		return err
	}

	// Every tip is walked, not just the active ones: a childless tip that
	// has itself already finished can still have an active parent running
	// overlapping rounds past the child's birth, and that parent is by
	// definition not itself a childless tip, so it would never be
	// discovered if inactive tips were skipped before walking.
	active := make(map[hash.Hash]struct{})
	visited := make(map[hash.Hash]struct{})
	for _, tip := range tips {
		if err := s.walkActiveAncestors(ctx, tip, active, visited); err != nil {
			return err
		}
	}

	for h := range active {
		if _, err := s.load(ctx, h); err != nil {
			return err
		}
	}

	return nil
}

// walkActiveAncestors walks upward from era (tip → parent → … → genesis),
// adding every active ancestor to active, deduplicated via visited so
// ancestors shared by multiple tips are only walked once. The walk goes
// all the way to genesis regardless of intermediate inactive ancestors,
// because a finished tip whose parent is still active must keep ticking,
// and an inactive grandparent does not imply an inactive great-grandparent.
func (s *Supervisor) walkActiveAncestors(ctx context.Context, era api.Era, active, visited map[hash.Hash]struct{}) error {
	for {
		if _, ok := visited[era.KeyBlockHash]; ok {
			return nil
		}
		visited[era.KeyBlockHash] = struct{}{}
		if s.isActive(era) {
			active[era.KeyBlockHash] = struct{}{}
		}

		if era.IsGenesis() {
			return nil
		}
		parent, err := s.cfg.Storage.GetEra(ctx, era.ParentKeyBlockHash)
		if err != nil {
			return err
		}
		era = parent
	}
}

// isActive reports whether era's initial agenda would be non-empty,
// without registering the throwaway runtime used to check it.
func (s *Supervisor) isActive(era api.Era) bool {
	return !s.cfg.NewRuntime(era).InitAgenda().Empty()
}
