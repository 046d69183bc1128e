package eradb

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/casperlabs/highway-era-supervisor/common/hash"
	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

var eraPrefix = []byte("era/")

// eraStore is the backend-agnostic highway/api.EraStorage implementation.
// Records are CBOR-encoded for deterministic, schema-stable persistence.
type eraStore struct {
	logger *logging.Logger
	kv     kvStore
}

var _ api.EraStorage = (*eraStore)(nil)

func eraKey(h hash.Hash) []byte {
	return append(append([]byte{}, eraPrefix...), h[:]...)
}

// AddEra is an idempotent upsert keyed by KeyBlockHash.
func (s *eraStore) AddEra(ctx context.Context, era api.Era) error {
	enc, err := cbor.Marshal(era)
	if err != nil {
		return fmt.Errorf("eradb: encode era: %w", err)
	}
	if err := s.kv.Set(eraKey(era.KeyBlockHash), enc); err != nil {
		return api.NewStorageFailureError(err)
	}
	return nil
}

// GetEra returns the era or api.ErrNotFound.
func (s *eraStore) GetEra(ctx context.Context, keyBlockHash hash.Hash) (api.Era, error) {
	raw, err := s.kv.Get(eraKey(keyBlockHash))
	if err != nil {
		return api.Era{}, api.NewStorageFailureError(err)
	}
	if raw == nil {
		return api.Era{}, api.ErrNotFound
	}
	var era api.Era
	if err := cbor.Unmarshal(raw, &era); err != nil {
		return api.Era{}, fmt.Errorf("eradb: decode era: %w", err)
	}
	return era, nil
}

// GetChildren returns the set of eras whose parent is keyBlockHash.
func (s *eraStore) GetChildren(ctx context.Context, keyBlockHash hash.Hash) ([]api.Era, error) {
	var children []api.Era
	err := s.kv.Iterate(eraPrefix, func(_ []byte, value []byte) error {
		var era api.Era
		if err := cbor.Unmarshal(value, &era); err != nil {
			return fmt.Errorf("eradb: decode era: %w", err)
		}
		if era.ParentKeyBlockHash == keyBlockHash {
			children = append(children, era)
		}
		return nil
	})
	if err != nil {
		return nil, api.NewStorageFailureError(err)
	}
	return children, nil
}

// GetChildlessEras returns the current tips of the era tree.
func (s *eraStore) GetChildlessEras(ctx context.Context) ([]api.Era, error) {
	var all []api.Era
	parents := make(map[hash.Hash]struct{})

	err := s.kv.Iterate(eraPrefix, func(_ []byte, value []byte) error {
		var era api.Era
		if err := cbor.Unmarshal(value, &era); err != nil {
			return fmt.Errorf("eradb: decode era: %w", err)
		}
		all = append(all, era)
		if !era.ParentKeyBlockHash.IsEmpty() {
			parents[era.ParentKeyBlockHash] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, api.NewStorageFailureError(err)
	}

	var tips []api.Era
	for _, era := range all {
		if _, hasChild := parents[era.KeyBlockHash]; !hasChild {
			tips = append(tips, era)
		}
	}
	return tips, nil
}

// Close releases the underlying backend.
func (s *eraStore) Close() error {
	return s.kv.Close()
}
