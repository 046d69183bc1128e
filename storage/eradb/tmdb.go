package eradb

import (
	dbm "github.com/tendermint/tm-db"

	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

// tmdbKV adapts a tm-db DB to kvStore.
type tmdbKV struct {
	db dbm.DB
}

func (k tmdbKV) Get(key []byte) ([]byte, error) {
	return k.db.Get(key)
}

func (k tmdbKV) Set(key, value []byte) error {
	return k.db.Set(key, value)
}

func (k tmdbKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	end := prefixUpperBound(prefix)
	it, err := k.db.Iterator(prefix, end)
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

func (k tmdbKV) Close() error {
	return k.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, for use as a tm-db Iterator's exclusive end bound.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	// All 0xff: unbounded above.
	return nil
}

// NewMemory constructs an EraStorage backed by tm-db's in-memory DB
// implementation. Used by tests, and by cmd/highwayd when no data_dir is
// configured.
func NewMemory() api.EraStorage {
	return &eraStore{
		logger: logging.GetLogger("storage/eradb"),
		kv:     tmdbKV{db: dbm.NewMemDB()},
	}
}
