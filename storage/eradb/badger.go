package eradb

import (
	badger "github.com/dgraph-io/badger/v2"

	"github.com/casperlabs/highway-era-supervisor/common/logging"
	"github.com/casperlabs/highway-era-supervisor/highway/api"
)

// badgerKV adapts a badger.DB to kvStore.
type badgerKV struct {
	db *badger.DB
}

func (k badgerKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte{}, val...)
			return nil
		})
	})
	return out, err
}

func (k badgerKV) Set(key, value []byte) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (k badgerKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	return k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := append([]byte{}, item.KeyCopy(nil)...)
			var value []byte
			if err := item.Value(func(val []byte) error {
				value = append([]byte{}, val...)
				return nil
			}); err != nil {
				return err
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (k badgerKV) Close() error {
	return k.db.Close()
}

// NewBadgerDB opens (creating if absent) an on-disk badger database at dir
// and returns an EraStorage backed by it, for cmd/highwayd's persistent
// deployment path.
func NewBadgerDB(dir string) (api.EraStorage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &eraStore{
		logger: logging.GetLogger("storage/eradb"),
		kv:     badgerKV{db: db},
	}, nil
}
