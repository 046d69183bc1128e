package supervisor

import (
	"context"
	"fmt"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
)

// load is the deduplicated-instantiation entry point: double-checked
// against the eras map, serialized through loadSem so start runs at most
// once per key block hash for the supervisor's lifetime.
func (s *Supervisor) load(ctx context.Context, keyBlockHash hash.Hash) (*entry, error) {
	if e := s.lookup(keyBlockHash); e != nil {
		return e, nil
	}

	select {
	case s.loadSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.loadSem }()

	if e := s.lookup(keyBlockHash); e != nil {
		return e, nil
	}

	return s.start(ctx, keyBlockHash)
}

func (s *Supervisor) lookup(keyBlockHash hash.Hash) *entry {
	s.erasMu.RLock()
	defer s.erasMu.RUnlock()
	return s.eras[keyBlockHash]
}

// start fetches the era from storage, builds its runtime, records known
// children, inserts it into the eras map, and schedules its initial
// agenda. The caller must hold loadSem and must have already re-checked
// that keyBlockHash is absent from eras.
func (s *Supervisor) start(ctx context.Context, keyBlockHash hash.Hash) (*entry, error) {
	e, err := s.cfg.Storage.GetEra(ctx, keyBlockHash)
	if err != nil {
		return nil, err
	}

	runtime := s.cfg.NewRuntime(e)
	ag := runtime.InitAgenda()

	children, err := s.cfg.Storage.GetChildren(ctx, keyBlockHash)
	if err != nil {
		return nil, err
	}
	childHashes := make([]hash.Hash, 0, len(children))
	for _, c := range children {
		childHashes = append(childHashes, c.KeyBlockHash)
	}

	ent := newEntry(runtime, childHashes)

	s.erasMu.Lock()
	if _, dup := s.eras[keyBlockHash]; dup {
		s.erasMu.Unlock()
		// The loadSem guarantees this is unreachable; a duplicate insert
		// here is a programmer error, not a recoverable race.
		panic(fmt.Sprintf("supervisor: BUG: era %s started twice", keyBlockHash))
	}
	s.eras[keyBlockHash] = ent
	s.erasMu.Unlock()

	s.logger.Debug("start: era loaded", "era", keyBlockHash.String(), "agenda_len", len(ag))
	s.metrics()

	s.schedule(ctx, ent, ag)

	return ent, nil
}
